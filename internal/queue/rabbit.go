package queue

import (
	"encoding/json"
	"log"

	"github.com/streadway/amqp"
)

type jobEnvelope struct {
	CampaignID int `json:"campaign_id"`
}

// RabbitQueue publishes and consumes dispatch jobs over RabbitMQ. One durable
// queue per topic.
type RabbitQueue struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewRabbitQueue(url string) (*RabbitQueue, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	return &RabbitQueue{conn: conn, ch: ch}, nil
}

func (q *RabbitQueue) Close() {
	q.ch.Close()
	q.conn.Close()
}

func (q *RabbitQueue) declare(topic string) (amqp.Queue, error) {
	return q.ch.QueueDeclare(
		topic,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
}

func (q *RabbitQueue) Publish(topic string, payload int) error {
	queue, err := q.declare(topic)
	if err != nil {
		return err
	}

	body, err := json.Marshal(jobEnvelope{CampaignID: payload})
	if err != nil {
		return err
	}

	return q.ch.Publish(
		"",
		queue.Name,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

// Subscribe consumes the topic until the channel closes. Delivery is acked
// after the handler returns; a handler error nacks without requeue, since a
// dispatch job is not safe to blindly re-run (the dispatcher's own
// per-recipient idempotency covers crash recovery instead).
func (q *RabbitQueue) Subscribe(topic string, handler func(payload int) error) error {
	queue, err := q.declare(topic)
	if err != nil {
		return err
	}

	msgs, err := q.ch.Consume(
		queue.Name,
		"",
		false, // autoAck = false for reliability
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return err
	}

	go func() {
		for d := range msgs {
			var job jobEnvelope
			if err := json.Unmarshal(d.Body, &job); err != nil {
				log.Println("Invalid job:", err)
				d.Ack(false)
				continue
			}

			if err := handler(job.CampaignID); err != nil {
				log.Println("Dispatch job failed for campaign", job.CampaignID, ":", err)
				d.Nack(false, false)
				continue
			}

			d.Ack(false)
		}
	}()

	return nil
}

var _ Queue = (*RabbitQueue)(nil)

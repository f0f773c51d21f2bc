package queue

import (
	"fmt"
	"log"
	"sync"
)

// TopicDispatch carries campaign ids from the approval scheduler to the
// dispatch worker.
const TopicDispatch = "campaign_dispatch"

// Queue interface
type Queue interface {
	Publish(topic string, payload int) error
	Subscribe(topic string, handler func(payload int) error) error
}

// InMemoryQueue runs handlers in-process. Used by tests and single-process
// dev mode; production uses RabbitQueue.
type InMemoryQueue struct {
	mu       sync.Mutex
	handlers map[string][]func(payload int) error
}

// NewInMemoryQueue creates a new queue
func NewInMemoryQueue() *InMemoryQueue {
	return &InMemoryQueue{
		handlers: make(map[string][]func(payload int) error),
	}
}

// Publish sends a message to all subscribers
func (q *InMemoryQueue) Publish(topic string, payload int) error {
	q.mu.Lock()
	handlers := q.handlers[topic]
	q.mu.Unlock()

	if len(handlers) == 0 {
		return fmt.Errorf("no subscribers for topic %s", topic)
	}

	for _, handler := range handlers {
		go func(h func(int) error) {
			if err := h(payload); err != nil {
				log.Printf("handler for %s failed on payload %d: %v\n", topic, payload, err)
			}
		}(handler)
	}

	return nil
}

// Subscribe adds a handler for a topic
func (q *InMemoryQueue) Subscribe(topic string, handler func(payload int) error) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.handlers[topic] = append(q.handlers[topic], handler)
	return nil
}

var _ Queue = (*InMemoryQueue)(nil)

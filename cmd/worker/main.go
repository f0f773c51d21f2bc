// cmd/worker/main.go
package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/waveleap/broadcast-backend/internal/config"
	"github.com/waveleap/broadcast-backend/internal/db"
	"github.com/waveleap/broadcast-backend/internal/gateway"
	"github.com/waveleap/broadcast-backend/internal/queue"
	"github.com/waveleap/broadcast-backend/internal/repository"
	"github.com/waveleap/broadcast-backend/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, relying on OS environment variables")
	}

	cfg := config.Load()
	db.Init()

	campaignRepo := &repository.CampaignRepository{DB: db.DB}

	billing := &service.BillingService{
		BillingRepo:  &repository.BillingRepository{DB: db.DB},
		CampaignRepo: campaignRepo,
		Cfg:          cfg,
	}

	dispatcher := &service.DispatchService{
		Gateway:      gateway.NewClient(cfg.GatewayBaseURL, cfg.GatewayToken),
		CampaignRepo: campaignRepo,
		ContactRepo:  &repository.ContactRepository{DB: db.DB},
		DeliveryRepo: &repository.DeliveryRepository{DB: db.DB},
		TemplateRepo: &repository.TemplateRepository{DB: db.DB},
		Billing:      billing,
		Cfg:          cfg,
	}

	dispatchQueue, err := queue.NewRabbitQueue(cfg.AMQPURL)
	if err != nil {
		log.Fatal("Failed to connect to RabbitMQ:", err)
	}
	defer dispatchQueue.Close()

	if err := dispatchQueue.Subscribe(queue.TopicDispatch, dispatcher.Dispatch); err != nil {
		log.Fatal("Failed to register consumer:", err)
	}

	log.Println("Worker running, waiting for dispatch jobs...")

	forever := make(chan bool)
	<-forever
}

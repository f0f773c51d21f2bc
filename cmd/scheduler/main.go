// cmd/scheduler/main.go
package main

import (
	"log"
	"os"
	"strconv"
	"time"

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

	cadence := 15 * time.Second
	if v := os.Getenv("SCHEDULER_CADENCE_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cadence = time.Duration(n) * time.Second
		}
	}

	dispatchQueue, err := queue.NewRabbitQueue(cfg.AMQPURL)
	if err != nil {
		log.Fatal("Failed to connect to RabbitMQ:", err)
	}
	defer dispatchQueue.Close()

	approvals := &service.ApprovalService{
		Gateway:      gateway.NewClient(cfg.GatewayBaseURL, cfg.GatewayToken),
		QueueRepo:    &repository.ApprovalQueueRepository{DB: db.DB},
		TemplateRepo: &repository.TemplateRepository{DB: db.DB},
		CampaignRepo: &repository.CampaignRepository{DB: db.DB},
		Dispatch:     dispatchQueue,
		Cfg:          cfg,
	}

	log.Println("Approval scheduler running, cadence:", cadence)

	ticker := time.NewTicker(cadence)
	defer ticker.Stop()

	for range ticker.C {
		if err := approvals.Run(cfg.BatchLimit); err != nil {
			log.Println("⚠️ approval run failed:", err)
		}
	}
}

// cmd/server/main.go
package main

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/waveleap/broadcast-backend/internal/config"
	"github.com/waveleap/broadcast-backend/internal/controller"
	"github.com/waveleap/broadcast-backend/internal/db"
	"github.com/waveleap/broadcast-backend/internal/gateway"
	"github.com/waveleap/broadcast-backend/internal/handler"
	"github.com/waveleap/broadcast-backend/internal/repository"
	"github.com/waveleap/broadcast-backend/internal/service"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, relying on OS environment variables")
	}

	cfg := config.Load()
	db.Init()

	gw := gateway.NewClient(cfg.GatewayBaseURL, cfg.GatewayToken)

	campaignRepo := &repository.CampaignRepository{DB: db.DB}
	contactRepo := &repository.ContactRepository{DB: db.DB}
	templateRepo := &repository.TemplateRepository{DB: db.DB}
	queueRepo := &repository.ApprovalQueueRepository{DB: db.DB}
	deliveryRepo := &repository.DeliveryRepository{DB: db.DB}
	billingRepo := &repository.BillingRepository{DB: db.DB}

	provisioner := &service.TemplateService{
		Gateway:      gw,
		TemplateRepo: templateRepo,
		QueueRepo:    queueRepo,
		CampaignRepo: campaignRepo,
		Cfg:          cfg,
	}

	campaignService := &service.CampaignService{
		CampaignRepo: campaignRepo,
		ContactRepo:  contactRepo,
		BillingRepo:  billingRepo,
		DeliveryRepo: deliveryRepo,
		Provisioner:  provisioner,
		Cfg:          cfg,
	}

	campaignController := &controller.CampaignController{
		CampaignService: campaignService,
	}

	campaignHandler := &handler.CampaignHandler{
		Service: campaignService,
	}

	r := chi.NewRouter()

	// Campaign routes
	r.Post("/campaigns/send", campaignController.InitiateCampaign)
	r.Get("/campaigns", campaignController.ListCampaigns)
	r.Post("/campaigns/{id}/cancel", campaignController.CancelCampaign)
	r.Get("/campaigns/{id}", campaignHandler.GetCampaignWithStats)
	r.Get("/campaigns/{id}/deliveries", campaignHandler.ListDeliveries)

	log.Println("🚀 Server running on :8080")
	log.Fatal(http.ListenAndServe(":8080", r))
}

package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/joho/godotenv"

	"phacetnode/internal/api"
	"phacetnode/internal/api/handlers"
	"phacetnode/internal/api/middleware"
	"phacetnode/internal/engine/actions"
	"phacetnode/internal/engine/trigger"
	"phacetnode/internal/phacet"
	"phacetnode/internal/platform/auth"
	"phacetnode/internal/platform/config"
	"phacetnode/internal/platform/database"
	"phacetnode/internal/platform/repositories"
	"phacetnode/internal/pkg/logger"
)

func main() {
	// .env is optional; config falls back to config.yaml plus env vars.
	godotenv.Load()

	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.Logging)

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	// Repositories
	subRepo := repositories.NewSubscriptionRepository(db)

	// Remote API client
	client := phacet.NewClient(cfg.Phacet, phacet.StaticCredential(cfg.Phacet.APIToken))

	// Engine components
	dispatcher := actions.NewDispatcher(client)
	lifecycle := trigger.NewLifecycle(subRepo, client, cfg.Server.PublicURL)
	pipeline := trigger.NewPipeline(client)
	forwarder := trigger.NewEngineForwarder(cfg.Engine)

	// Services
	tokenSvc := auth.NewTokenService(cfg.Auth)

	// Handlers
	actionHandler, err := handlers.NewActionHandler(dispatcher)
	if err != nil {
		log.Fatalf("Failed to build action handler: %v", err)
	}
	subscriptionHandler := handlers.NewSubscriptionHandler(lifecycle, cfg.Trigger)
	deliveryHandler := handlers.NewDeliveryHandler(subRepo, pipeline, forwarder)
	optionsHandler := handlers.NewOptionsHandler(client)
	healthHandler := handlers.NewHealthHandler(db)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(tokenSvc, cfg.Auth.APIKeyHash)

	// Router
	deps := &api.Dependencies{
		ActionHandler:       actionHandler,
		SubscriptionHandler: subscriptionHandler,
		DeliveryHandler:     deliveryHandler,
		OptionsHandler:      optionsHandler,
		HealthHandler:       healthHandler,
		AuthMiddleware:      authMiddleware,
	}
	router := api.NewRouter(deps)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Server starting on %s", addr)
	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

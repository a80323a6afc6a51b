package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"

	apiserver "github.com/dcm-project/orchestration-router/internal/api_server"
	"github.com/dcm-project/orchestration-router/internal/config"
	"github.com/dcm-project/orchestration-router/internal/handlers"
	"github.com/dcm-project/orchestration-router/internal/healthcheck"
	"github.com/dcm-project/orchestration-router/internal/invoker"
	"github.com/dcm-project/orchestration-router/internal/logging"
	"github.com/dcm-project/orchestration-router/internal/router"
	"github.com/dcm-project/orchestration-router/internal/service"
	"github.com/dcm-project/orchestration-router/internal/store"
	log "github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logging.Setup(cfg.Service)

	// Initialize database
	db, err := store.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	dataStore := store.NewStore(db)
	defer dataStore.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Background health prober; invoker outcomes feed it too
	prober := healthcheck.NewProber(dataStore.Policy(), cfg.HealthCheck)
	prober.Start(ctx)
	defer prober.Stop()

	resolver := router.NewResolver(prober)
	inv := invoker.New(cfg.Router, prober)

	policyService := service.NewPolicyService(dataStore)
	orchestrationService := service.NewOrchestrationService(dataStore, resolver, inv, cfg.Router)

	if err := policyService.EnsureSeedPolicy(ctx, cfg.Seed); err != nil {
		log.Fatalf("Failed to seed policy: %v", err)
	}

	handler := handlers.NewHandler(policyService, orchestrationService, prober)

	// Start server
	listener, err := net.Listen("tcp", cfg.Service.Address)
	if err != nil {
		log.Fatalf("Failed to listen: %v", err)
	}

	srv := apiserver.New(cfg, listener, handler)

	log.Infof("Starting server on %s", listener.Addr().String())
	if err := srv.Run(ctx); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/otolor/clinic-client/internal/events"
	"github.com/otolor/clinic-client/internal/httpserver"
	"github.com/otolor/clinic-client/pkg/config"
	"github.com/otolor/clinic-client/pkg/logging"
	"github.com/otolor/clinic-client/pkg/rbac"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	config.MustNonEmpty(cfg.APIBaseURL, "API_BASE_URL")

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)

	policy := rbac.DefaultPolicy()
	if cfg.PolicyPath != "" {
		loaded, err := rbac.Load(cfg.PolicyPath)
		if err != nil {
			log.Fatalf("load rbac policy: %v", err)
		}
		policy = loaded
	}

	var sink events.Sink = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		k := events.NewKafka(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		defer k.Close()
		sink = k
	}

	srv := httpserver.New(cfg, policy, sink, logger)
	logger.Info("gateway listening", "addr", cfg.ListenAddr, "backend", cfg.APIBaseURL)
	if err := srv.Start(cfg.ListenAddr); err != nil {
		log.Fatalf("gateway stopped: %v", err)
	}
}

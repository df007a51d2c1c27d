package main

import (
	"flag"
	"log"
	"net/http"

	"go.uber.org/zap"

	"github.com/hamed0406/tenonchecker/internal/config"
	"github.com/hamed0406/tenonchecker/internal/httpapi"
	"github.com/hamed0406/tenonchecker/internal/logging"
	"github.com/hamed0406/tenonchecker/internal/tenon"
)

func main() {
	configPath := flag.String("config", "tenon.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}
	logger, err := logging.NewLogger(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	client, err := tenon.New(cfg.Tenon(), tenon.WithLogger(logger.Named("tenon")))
	if err != nil {
		logger.Fatal("tenon_client", zap.Error(err))
	}
	api := httpapi.NewServer(logger, client)

	logger.Info("api_listen",
		zap.String("addr", cfg.Addr),
		zap.String("endpoint", client.Endpoint()),
		zap.Bool("auth", len(cfg.PublicAPIKeys) > 0),
	)
	if err := http.ListenAndServe(cfg.Addr, api.Router(cfg.PublicAPIKeys, cfg.AllowedOrigins)); err != nil {
		logger.Fatal("api_stopped", zap.Error(err))
	}
}

package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/driverbook/internal/infrastructure/config"
	"github.com/GriffinCanCode/driverbook/internal/infrastructure/logging"
	"github.com/GriffinCanCode/driverbook/internal/infrastructure/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Flags override the environment
	flag.StringVar(&cfg.Server.Port, "port", cfg.Server.Port, "Server port")
	flag.StringVar(&cfg.Server.Host, "host", cfg.Server.Host, "Listen host")
	flag.StringVar(&cfg.Catalog.Path, "data", cfg.Catalog.Path, "Driver records file (json, yaml or toml)")
	flag.StringVar(&cfg.Catalog.URL, "data-url", cfg.Catalog.URL, "Remote driver records URL (takes precedence over -data)")
	flag.StringVar(&cfg.Widget.BundlePath, "widget", cfg.Widget.BundlePath, "Widget bundle path")
	flag.BoolVar(&cfg.Logging.Development, "dev", cfg.Logging.Development, "Development mode (colored logs, debug level)")
	flag.Parse()

	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.Logging.Level
	logCfg.Development = cfg.Logging.Development
	if cfg.Logging.Development {
		logCfg.Level = "debug"
	}
	logger := logging.NewOrNop(logCfg)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg, logger)
	srv.Warm(ctx)

	if err := srv.Run(ctx); err != nil {
		logger.Error("Server error", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("Server stopped")
}

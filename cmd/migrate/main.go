package main

import (
	"flag"

	"go.uber.org/zap"

	"github.com/nguyenhieubp/InvoiceFlowServer-sub004/internal/infrastructure/config"
	"github.com/nguyenhieubp/InvoiceFlowServer-sub004/internal/infrastructure/logger"
	"github.com/nguyenhieubp/InvoiceFlowServer-sub004/internal/infrastructure/persistence"
)

func main() {
	var logLevel string
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	log := logger.New(&logger.Config{
		Level:  logLevel,
		Format: "console",
		Output: "stdout",
	})
	defer func() {
		_ = log.Sync()
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	if err := db.Migrate(); err != nil {
		log.Fatal("Migration failed", zap.Error(err))
	}
	log.Info("Schema migrated", zap.String("driver", cfg.Database.Driver))
}

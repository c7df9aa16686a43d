package main

import (
	"flag"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/pageza/recipeshare/backend/config"
	"github.com/pageza/recipeshare/backend/internal/database"
	"github.com/pageza/recipeshare/backend/internal/logger"
)

func main() {
	// Parse command line flags
	rollback := flag.Bool("rollback", false, "Rollback migrations instead of applying them")
	steps := flag.Int("steps", 1, "Number of migrations to roll back")
	flag.Parse()

	zlog := logger.New(logger.Config{Level: "info", Development: true})
	defer zlog.Sync()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		cfg, err := config.Load()
		if err != nil {
			log.Fatalf("failed to load configuration: %v", err)
		}
		dsn = cfg.PostgresDSN()
	}

	m, err := database.NewMigrator(dsn, zlog)
	if err != nil {
		zlog.Fatal("failed to prepare migrations", zap.Error(err))
	}
	defer m.Close()

	if *rollback {
		if err := m.Down(*steps); err != nil {
			zlog.Fatal("rollback failed", zap.Error(err))
		}
	} else if err := m.Up(); err != nil {
		zlog.Fatal("migration failed", zap.Error(err))
	}

	version, dirty, err := m.Version()
	if err != nil {
		zlog.Fatal("failed to read schema version", zap.Error(err))
	}
	zlog.Info("Schema version", zap.Uint("version", version), zap.Bool("dirty", dirty))
}

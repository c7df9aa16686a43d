package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/pageza/recipeshare/backend/config"
	"github.com/pageza/recipeshare/backend/internal/clock"
	"github.com/pageza/recipeshare/backend/internal/database"
)

// Open connects the backend selected by cfg.StoreBackend. SQL backends are
// migrated before they are returned.
func Open(ctx context.Context, cfg *config.Config, clk clock.Clock, log *zap.Logger) (Store, error) {
	switch cfg.StoreBackend {
	case config.StoreFirestore:
		log.Info("Connecting to Firestore", zap.String("project", cfg.FirestoreProjectID))
		return NewFirestoreStore(ctx, cfg.FirestoreProjectID, clk)
	case config.StorePostgres, config.StoreSQLite:
		db, err := database.Open(cfg, log)
		if err != nil {
			return nil, err
		}
		store := NewGormStore(db, clk)
		dsn := ""
		if cfg.StoreBackend == config.StorePostgres {
			dsn = cfg.PostgresDSN()
		}
		if err := database.RunMigrations(db, dsn, log, Models()...); err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

package migrate

import (
	"context"
	"fmt"

	"github.com/mercagoods/storefront-backend/pkg/config"
	"github.com/mercagoods/storefront-backend/pkg/db"
	"github.com/mercagoods/storefront-backend/pkg/db/models"
	"github.com/mercagoods/storefront-backend/pkg/logger"
)

// MaybeRunDev applies the schema automatically when the app runs in dev mode
// and the feature flag is enabled. Postgres goes through goose; sqlite (local
// development) uses GORM auto-migration since the SQL files are
// Postgres-specific.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "driver": cfg.DB.Driver})

	if cfg.DB.Driver == "sqlite" {
		logg.Info(ctx, "running GORM auto-migration (dev sqlite)")
		return client.DB().WithContext(ctx).AutoMigrate(
			&models.Product{},
			&models.ProductVariant{},
			&models.Order{},
			&models.OrderLineItem{},
			&models.User{},
		)
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	logg.Info(ctx, "running goose migrations (dev auto-run)")
	if err := Up(ctx, sqlDB); err != nil {
		return err
	}
	logg.Info(ctx, "goose migrations completed")
	return nil
}

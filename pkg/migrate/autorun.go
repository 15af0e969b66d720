package migrate

import (
	"context"
	"fmt"

	"github.com/tripledger/tripledger-backend/pkg/config"
	"github.com/tripledger/tripledger-backend/pkg/db"
	"github.com/tripledger/tripledger-backend/pkg/db/models"
	"github.com/tripledger/tripledger-backend/pkg/logger"
)

// MaybeRunDev executes migrations automatically when the app is running in dev
// mode and the feature flag is enabled. SQLite setups (local hacking, CI) use
// gorm's AutoMigrate since the SQL migrations target Postgres types.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	meta := map[string]any{"env": cfg.App.Env, "dir": DefaultDir, "driver": cfg.DB.Driver}
	ctx = logg.WithFields(ctx, meta)

	if cfg.FeatureFlags.UseSQLite {
		logg.Info(ctx, "running gorm auto-migration (sqlite dev mode)")
		if err := client.DB().WithContext(ctx).AutoMigrate(
			&models.Group{},
			&models.Member{},
			&models.Expense{},
			&models.ExpenseSplit{},
			&models.Settlement{},
			&models.Budget{},
			&models.BudgetCategory{},
		); err != nil {
			return fmt.Errorf("gorm auto-migrate: %w", err)
		}
		logg.Info(ctx, "gorm auto-migration completed")
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	logg.Info(ctx, "running Goose migrations (dev auto-run)")
	if err := Run(ctx, sqlDB, cfg.DB.Driver, DefaultDir, "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	logg.Info(ctx, "Goose migrations completed")
	return nil
}

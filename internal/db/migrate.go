package db

import (
	"github.com/vostra/vostra-backend/internal/app/model"
	"github.com/vostra/vostra-backend/pkg/logger"
)

// Migrate runs database migrations
func Migrate() error {
	logger.Info("Running database migrations...")

	models := []interface{}{
		&model.Product{},
		&model.ProductVariant{},
		&model.Size{},
		&model.Stock{},
		&model.Cart{},
		&model.CartLine{},
	}

	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// Package store persists countdown events and settings.
package store

import (
	"context"
	"fmt"

	"countdown/internal/config"
	"countdown/internal/logger"
	"countdown/pkg/models"
)

// Store loads and saves the whole event collection and the settings record.
type Store interface {
	LoadEvents(ctx context.Context) ([]models.Event, error)
	SaveEvents(ctx context.Context, events []models.Event) error
	LoadSettings(ctx context.Context) (models.Settings, error)
	SaveSettings(ctx context.Context, s models.Settings) error
	Close() error
}

// Open returns the backend named by driver rooted at dataDir.
func Open(ctx context.Context, driver, dataDir string) (Store, error) {
	logger.Debug("open store", "driver", driver, "dir", dataDir)
	switch driver {
	case "", config.StorageJSON:
		return NewJSONStore(dataDir), nil
	case config.StorageSQLite:
		s, err := OpenSQLite(ctx, dataDir)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}

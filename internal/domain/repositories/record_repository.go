// Package repositories defines interfaces for domain persistence.
package repositories

import (
	"context"

	"github.com/reglet-dev/machinist/internal/domain/entities"
	"github.com/reglet-dev/machinist/internal/domain/values"
)

// RecordRepository defines the interface for persisting built fixtures.
type RecordRepository interface {
	entities.Persister

	// FindByID retrieves a stored record by its unique ID.
	FindByID(ctx context.Context, id values.RecordID) (*entities.StoredRecord, error)

	// FindByModel retrieves stored records of a model, oldest first.
	FindByModel(ctx context.Context, model string) ([]*entities.StoredRecord, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) int
}

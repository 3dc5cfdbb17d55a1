// Package memory provides in-memory implementations of domain repositories.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/reglet-dev/machinist/internal/domain/entities"
	"github.com/reglet-dev/machinist/internal/domain/repositories"
	"github.com/reglet-dev/machinist/internal/domain/values"
)

// Ensure interface compliance
var _ repositories.RecordRepository = (*RecordRepository)(nil)

// IDAttribute is the attribute Persist fills with the record ID when the
// object does not carry one.
const IDAttribute = "id"

// RecordRepository is an in-memory implementation of RecordRepository.
// Useful for tests and for fixtures that only live as long as the process.
type RecordRepository struct {
	records map[values.RecordID]*entities.StoredRecord
	mu      sync.RWMutex
}

// NewRecordRepository creates a new in-memory repository.
func NewRecordRepository() *RecordRepository {
	return &RecordRepository{
		records: make(map[values.RecordID]*entities.StoredRecord),
	}
}

// Persist stores a copy of obj under a new record ID.
func (r *RecordRepository) Persist(ctx context.Context, model string, obj entities.Object) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	id := values.NewRecordID()
	if v, ok := obj.Attribute(IDAttribute); !ok || v == nil {
		if err := obj.SetAttribute(IDAttribute, id.String()); err != nil {
			return fmt.Errorf("assigning record id: %w", err)
		}
	}

	stored, err := entities.NewStoredRecord(id, model, obj)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[id] = stored
	return nil
}

// FindByID retrieves a stored record by its unique ID.
func (r *RecordRepository) FindByID(_ context.Context, id values.RecordID) (*entities.StoredRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.records[id]
	if !ok {
		return nil, fmt.Errorf("record not found: %s", id)
	}
	return stored.Clone(), nil
}

// FindByModel retrieves stored records of a model, oldest first.
func (r *RecordRepository) FindByModel(_ context.Context, model string) ([]*entities.StoredRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matches []*entities.StoredRecord
	for _, stored := range r.records {
		if stored.Model == model {
			matches = append(matches, stored.Clone())
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].SavedAt.Equal(matches[j].SavedAt) {
			return matches[i].ID.String() < matches[j].ID.String()
		}
		return matches[i].SavedAt.Before(matches[j].SavedAt)
	})

	return matches, nil
}

// Count returns the number of stored records.
func (r *RecordRepository) Count(_ context.Context) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

package repository

import (
	"context"
	"sync"
	"time"

	"wisefido-fields/internal/domain"

	"github.com/google/uuid"
)

// MemoryFieldResponsesRepo in-memory 字段回答仓储
type MemoryFieldResponsesRepo struct {
	mu        sync.RWMutex
	responses map[string]map[string]domain.FieldResponse // userID -> fieldID -> response
}

func NewMemoryFieldResponsesRepo() *MemoryFieldResponsesRepo {
	return &MemoryFieldResponsesRepo{
		responses: map[string]map[string]domain.FieldResponse{},
	}
}

var _ FieldResponsesRepository = (*MemoryFieldResponsesRepo)(nil)

func (r *MemoryFieldResponsesRepo) ListByUser(_ context.Context, userID string) ([]domain.FieldResponse, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]domain.FieldResponse, 0)
	for _, resp := range r.responses[userID] {
		all = append(all, resp)
	}
	return all, nil
}

func (r *MemoryFieldResponsesRepo) UpsertMany(_ context.Context, userID string, upserts []ResponseUpsert) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	byField, ok := r.responses[userID]
	if !ok {
		byField = map[string]domain.FieldResponse{}
		r.responses[userID] = byField
	}

	now := time.Now()
	for _, u := range upserts {
		existing, ok := byField[u.FieldID]
		if !ok {
			existing = domain.FieldResponse{
				ResponseID: uuid.New().String(),
				UserID:     userID,
				FieldID:    u.FieldID,
				CreatedAt:  now,
			}
		}
		existing.Value = u.Value
		existing.UpdatedAt = now
		byField[u.FieldID] = existing
	}
	return nil
}

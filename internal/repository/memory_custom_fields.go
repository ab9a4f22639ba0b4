package repository

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"wisefido-fields/internal/domain"

	"github.com/google/uuid"
)

// MemoryCustomFieldsRepo supports local dev and service tests when DB is disabled.
type MemoryCustomFieldsRepo struct {
	mu     sync.RWMutex
	fields map[string]domain.CustomField // fieldID -> CustomField
}

func NewMemoryCustomFieldsRepo() *MemoryCustomFieldsRepo {
	return &MemoryCustomFieldsRepo{
		fields: map[string]domain.CustomField{},
	}
}

var _ CustomFieldsRepository = (*MemoryCustomFieldsRepo)(nil)

func (r *MemoryCustomFieldsRepo) GetField(_ context.Context, fieldID string) (*domain.CustomField, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.fields[fieldID]
	if !ok {
		return nil, nil
	}
	return &f, nil
}

func (r *MemoryCustomFieldsRepo) ListByCompany(_ context.Context, companyID string) ([]domain.CustomField, error) {
	return r.list(companyID, false), nil
}

func (r *MemoryCustomFieldsRepo) ListActiveByCompany(_ context.Context, companyID string) ([]domain.CustomField, error) {
	return r.list(companyID, true), nil
}

func (r *MemoryCustomFieldsRepo) list(companyID string, activeOnly bool) []domain.CustomField {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]domain.CustomField, 0)
	for _, f := range r.fields {
		if f.CompanyID != companyID {
			continue
		}
		if activeOnly && !f.IsActive {
			continue
		}
		all = append(all, f)
	}
	// display_order 相同则按创建时间兜底，保持稳定
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Order != all[j].Order {
			return all[i].Order < all[j].Order
		}
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})
	return all
}

func (r *MemoryCustomFieldsRepo) CreateField(_ context.Context, field *domain.CustomField) (*domain.CustomField, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if field.FieldID == "" {
		field.FieldID = uuid.New().String()
	}
	now := time.Now()
	field.CreatedAt = now
	field.UpdatedAt = now
	r.fields[field.FieldID] = *field
	return field, nil
}

func (r *MemoryCustomFieldsRepo) UpdateField(_ context.Context, field *domain.CustomField) (*domain.CustomField, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.fields[field.FieldID]
	if !ok || existing.CompanyID != field.CompanyID {
		return nil, sql.ErrNoRows
	}
	field.CreatedAt = existing.CreatedAt
	field.UpdatedAt = time.Now()
	r.fields[field.FieldID] = *field
	return field, nil
}

func (r *MemoryCustomFieldsRepo) DeleteField(_ context.Context, companyID, fieldID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.fields[fieldID]
	if !ok || existing.CompanyID != companyID {
		return sql.ErrNoRows
	}
	delete(r.fields, fieldID)
	return nil
}

func (r *MemoryCustomFieldsRepo) Reorder(_ context.Context, companyID string, fieldIDs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, fieldID := range fieldIDs {
		f, ok := r.fields[fieldID]
		if !ok || f.CompanyID != companyID {
			continue
		}
		f.Order = i
		f.UpdatedAt = time.Now()
		r.fields[fieldID] = f
	}
	return nil
}

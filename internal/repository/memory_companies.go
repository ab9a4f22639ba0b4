package repository

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"wisefido-fields/internal/domain"

	"github.com/google/uuid"
)

// MemoryCompaniesRepo in-memory 公司仓储
type MemoryCompaniesRepo struct {
	mu        sync.RWMutex
	companies map[string]domain.Company
}

func NewMemoryCompaniesRepo() *MemoryCompaniesRepo {
	return &MemoryCompaniesRepo{companies: map[string]domain.Company{}}
}

var _ CompaniesRepository = (*MemoryCompaniesRepo)(nil)

func (r *MemoryCompaniesRepo) AddCompany(company domain.Company) domain.Company {
	r.mu.Lock()
	defer r.mu.Unlock()

	if company.CompanyID == "" {
		company.CompanyID = uuid.New().String()
	}
	if company.Status == "" {
		company.Status = "active"
	}
	now := time.Now()
	company.CreatedAt = now
	company.UpdatedAt = now
	r.companies[company.CompanyID] = company
	return company
}

func (r *MemoryCompaniesRepo) GetCompany(_ context.Context, companyID string) (*domain.Company, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.companies[companyID]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *MemoryCompaniesRepo) UpdateCompany(_ context.Context, company *domain.Company) (*domain.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.companies[company.CompanyID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	company.CreatedAt = existing.CreatedAt
	company.UpdatedAt = time.Now()
	r.companies[company.CompanyID] = *company
	return company, nil
}

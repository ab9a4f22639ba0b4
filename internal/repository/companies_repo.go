package repository

import (
	"context"

	"wisefido-fields/internal/domain"
)

// CompaniesRepository 公司 Repository 接口
type CompaniesRepository interface {
	// GetCompany 按 ID 查找；不存在返回 (nil, nil)
	GetCompany(ctx context.Context, companyID string) (*domain.Company, error)
	UpdateCompany(ctx context.Context, company *domain.Company) (*domain.Company, error)
}

package service

import (
	"context"
	"fmt"
	"strings"

	"wisefido-fields/internal/cache"
	"wisefido-fields/internal/domain"
	"wisefido-fields/internal/repository"

	"go.uber.org/zap"
)

// CompanyService 公司资料读写，读路径走缓存
type CompanyService struct {
	companiesRepo repository.CompaniesRepository
	companyCache  *cache.CompanyCache
	logger        *zap.Logger
}

// NewCompanyService 创建公司服务
func NewCompanyService(
	companiesRepo repository.CompaniesRepository,
	companyCache *cache.CompanyCache,
	logger *zap.Logger,
) *CompanyService {
	return &CompanyService{
		companiesRepo: companiesRepo,
		companyCache:  companyCache,
		logger:        logger,
	}
}

// GetCompany 查询公司资料（本公司成员均可读）
func (s *CompanyService) GetCompany(ctx context.Context, actor domain.User) (*domain.Company, error) {
	if actor.CompanyID == "" {
		return nil, fmt.Errorf("%w: user has no company", domain.ErrBadRequest)
	}

	if company := s.companyCache.Get(ctx, actor.CompanyID); company != nil {
		return company, nil
	}

	company, err := s.companiesRepo.GetCompany(ctx, actor.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	if company == nil {
		return nil, fmt.Errorf("%w: company %s", domain.ErrNotFound, actor.CompanyID)
	}

	s.companyCache.Set(ctx, company)
	return company, nil
}

// UpdateCompanyRequest 更新公司资料（nil 表示不改）
type UpdateCompanyRequest struct {
	Actor    domain.User
	Name     *string
	Document *string
}

// UpdateCompany 更新公司资料（仅 owner），落库后同步清缓存
func (s *CompanyService) UpdateCompany(ctx context.Context, req UpdateCompanyRequest) (*domain.Company, error) {
	if req.Actor.Role != domain.RoleOwner {
		return nil, fmt.Errorf("%w: only the owner can update the company", domain.ErrForbidden)
	}
	if req.Actor.CompanyID == "" {
		return nil, fmt.Errorf("%w: user has no company", domain.ErrBadRequest)
	}

	company, err := s.companiesRepo.GetCompany(ctx, req.Actor.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	if company == nil {
		return nil, fmt.Errorf("%w: company %s", domain.ErrNotFound, req.Actor.CompanyID)
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if len(name) < 2 {
			return nil, fmt.Errorf("%w: company name must have at least 2 characters", domain.ErrBadRequest)
		}
		company.Name = name
	}
	if req.Document != nil {
		company.Document = strings.TrimSpace(*req.Document)
	}

	updated, err := s.companiesRepo.UpdateCompany(ctx, company)
	if err != nil {
		return nil, fmt.Errorf("failed to update company: %w", err)
	}

	s.companyCache.Invalidate(ctx, updated.CompanyID)

	s.logger.Info("Company updated", zap.String("company_id", updated.CompanyID))
	return updated, nil
}

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"wisefido-fields/internal/domain"
	"wisefido-fields/internal/store"

	"go.uber.org/zap"
)

const companyPrefix = "company:"

// CompanyCache 公司快照缓存
type CompanyCache struct {
	kv     store.KV
	ttl    time.Duration
	logger *zap.Logger
}

// NewCompanyCache 创建公司快照缓存
func NewCompanyCache(kv store.KV, ttl time.Duration, logger *zap.Logger) *CompanyCache {
	return &CompanyCache{kv: kv, ttl: ttl, logger: logger}
}

// Get 读公司快照；nil 表示 miss（含缓存故障）
func (c *CompanyCache) Get(ctx context.Context, companyID string) *domain.Company {
	raw, err := c.kv.Get(ctx, companyPrefix+companyID)
	if err != nil {
		if !errors.Is(err, store.ErrMiss) {
			c.logger.Error("Failed to read company cache",
				zap.String("company_id", companyID),
				zap.Error(err),
			)
		}
		return nil
	}

	var company domain.Company
	if err := json.Unmarshal([]byte(raw), &company); err != nil {
		c.logger.Error("Failed to decode company cache",
			zap.String("company_id", companyID),
			zap.Error(err),
		)
		return nil
	}
	return &company
}

// Set 写公司快照
func (c *CompanyCache) Set(ctx context.Context, company *domain.Company) {
	if company == nil {
		return
	}
	data, err := json.Marshal(company)
	if err != nil {
		c.logger.Error("Failed to encode company cache",
			zap.String("company_id", company.CompanyID),
			zap.Error(err),
		)
		return
	}
	if err := c.kv.Set(ctx, companyPrefix+company.CompanyID, string(data), c.ttl); err != nil {
		c.logger.Error("Failed to write company cache",
			zap.String("company_id", company.CompanyID),
			zap.Error(err),
		)
	}
}

// Invalidate 清掉公司快照
func (c *CompanyCache) Invalidate(ctx context.Context, companyID string) {
	if err := c.kv.Delete(ctx, companyPrefix+companyID); err != nil {
		c.logger.Error("Failed to invalidate company cache",
			zap.String("company_id", companyID),
			zap.Error(err),
		)
		return
	}
	c.logger.Debug("Company cache invalidated", zap.String("company_id", companyID))
}

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

// active 列表和 all 列表各占一个缓存项：前者给终端用户，后者给管理端
const (
	fieldsActivePrefix = "custom-fields:active:"
	fieldsAllPrefix    = "custom-fields:all:"
)

// FieldsCache 公司字段列表缓存
// 缓存故障一律吞掉：读当作 miss，写当作 no-op，业务正确性不依赖缓存
type FieldsCache struct {
	kv     store.KV
	ttl    time.Duration
	logger *zap.Logger
}

// NewFieldsCache 创建字段列表缓存
func NewFieldsCache(kv store.KV, ttl time.Duration, logger *zap.Logger) *FieldsCache {
	return &FieldsCache{kv: kv, ttl: ttl, logger: logger}
}

// GetActive 读 active 字段列表；第二个返回值为 false 表示 miss
func (c *FieldsCache) GetActive(ctx context.Context, companyID string) ([]domain.CustomField, bool) {
	return c.get(ctx, fieldsActivePrefix+companyID)
}

// GetAll 读全部字段列表
func (c *FieldsCache) GetAll(ctx context.Context, companyID string) ([]domain.CustomField, bool) {
	return c.get(ctx, fieldsAllPrefix+companyID)
}

// SetActive 写 active 字段列表
func (c *FieldsCache) SetActive(ctx context.Context, companyID string, fields []domain.CustomField) {
	c.set(ctx, fieldsActivePrefix+companyID, fields)
}

// SetAll 写全部字段列表
func (c *FieldsCache) SetAll(ctx context.Context, companyID string, fields []domain.CustomField) {
	c.set(ctx, fieldsAllPrefix+companyID, fields)
}

// Invalidate 同时清掉公司的 active/all 两个列表
// 字段的任何增删改/重排之后、use-case 返回之前必须调用
func (c *FieldsCache) Invalidate(ctx context.Context, companyID string) {
	keys := []string{fieldsActivePrefix + companyID, fieldsAllPrefix + companyID}
	if err := c.kv.DeleteMany(ctx, keys); err != nil {
		c.logger.Error("Failed to invalidate fields cache",
			zap.String("company_id", companyID),
			zap.Error(err),
		)
		return
	}
	c.logger.Debug("Fields cache invalidated", zap.String("company_id", companyID))
}

func (c *FieldsCache) get(ctx context.Context, key string) ([]domain.CustomField, bool) {
	raw, err := c.kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, store.ErrMiss) {
			c.logger.Error("Failed to read fields cache", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var fields []domain.CustomField
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		c.logger.Error("Failed to decode fields cache", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return fields, true
}

func (c *FieldsCache) set(ctx context.Context, key string, fields []domain.CustomField) {
	if fields == nil {
		fields = []domain.CustomField{}
	}
	data, err := json.Marshal(fields)
	if err != nil {
		c.logger.Error("Failed to encode fields cache", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.kv.Set(ctx, key, string(data), c.ttl); err != nil {
		c.logger.Error("Failed to write fields cache", zap.String("key", key), zap.Error(err))
		return
	}
	c.logger.Debug("Fields cached", zap.String("key", key), zap.Int("count", len(fields)))
}

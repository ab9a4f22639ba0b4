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

const userStatePrefix = "user_state:"

// CachedUserState 用户资料 + 当前订阅的组合快照
// CachedAt（毫秒）用于应用层二次过期判断，独立于 Redis 自身的 TTL，
// 防止 wrapper 与存储端 TTL 配置漂移时读到过期数据
type CachedUserState struct {
	User         domain.User          `json:"user"`
	Subscription *domain.Subscription `json:"subscription"`
	CachedAt     int64                `json:"cached_at"`
}

// UserStateCache 按 userID 缓存用户组合状态
type UserStateCache struct {
	kv     store.KV
	ttl    time.Duration
	logger *zap.Logger

	// now 可注入，测试里用来推进应用层过期
	now func() time.Time
}

// NewUserStateCache 创建用户状态缓存
func NewUserStateCache(kv store.KV, ttl time.Duration, logger *zap.Logger) *UserStateCache {
	return &UserStateCache{kv: kv, ttl: ttl, logger: logger, now: time.Now}
}

func (c *UserStateCache) key(userID string) string {
	return userStatePrefix + userID
}

// Get 读用户状态；nil 表示 miss
// CachedAt 超过 TTL 时主动删掉并按 miss 处理，而不是信任存储端的过期
func (c *UserStateCache) Get(ctx context.Context, userID string) *CachedUserState {
	raw, err := c.kv.Get(ctx, c.key(userID))
	if err != nil {
		if !errors.Is(err, store.ErrMiss) {
			c.logger.Error("Failed to read user state cache",
				zap.String("user_id", userID),
				zap.Error(err),
			)
		}
		return nil
	}

	var state CachedUserState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		c.logger.Error("Failed to decode user state cache",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return nil
	}

	age := c.now().UnixMilli() - state.CachedAt
	if age > c.ttl.Milliseconds() {
		c.Invalidate(ctx, userID)
		return nil
	}
	return &state
}

// Set 写用户状态快照
func (c *UserStateCache) Set(ctx context.Context, user domain.User, subscription *domain.Subscription) {
	state := CachedUserState{
		User:         user,
		Subscription: subscription,
		CachedAt:     c.now().UnixMilli(),
	}
	data, err := json.Marshal(state)
	if err != nil {
		c.logger.Error("Failed to encode user state cache",
			zap.String("user_id", user.UserID),
			zap.Error(err),
		)
		return
	}
	if err := c.kv.Set(ctx, c.key(user.UserID), string(data), c.ttl); err != nil {
		c.logger.Error("Failed to write user state cache",
			zap.String("user_id", user.UserID),
			zap.Error(err),
		)
		return
	}
	c.logger.Debug("User state cached",
		zap.String("user_id", user.UserID),
		zap.Duration("ttl", c.ttl),
	)
}

// Invalidate 清掉单个用户的状态
func (c *UserStateCache) Invalidate(ctx context.Context, userID string) {
	if err := c.kv.Delete(ctx, c.key(userID)); err != nil {
		c.logger.Error("Failed to invalidate user state cache",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return
	}
	c.logger.Debug("User state cache invalidated", zap.String("user_id", userID))
}

// InvalidateMany 批量清理（如整个公司的用户变更套餐后）
func (c *UserStateCache) InvalidateMany(ctx context.Context, userIDs []string) {
	if len(userIDs) == 0 {
		return
	}
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, c.key(id))
	}
	if err := c.kv.DeleteMany(ctx, keys); err != nil {
		c.logger.Error("Failed to invalidate user state caches",
			zap.Int("count", len(userIDs)),
			zap.Error(err),
		)
		return
	}
	c.logger.Debug("User state caches invalidated", zap.Int("count", len(userIDs)))
}

// InvalidateAll 全量清理（全局策略变更后）
func (c *UserStateCache) InvalidateAll(ctx context.Context) {
	count, err := c.kv.DeleteByPattern(ctx, userStatePrefix+"*")
	if err != nil {
		c.logger.Error("Failed to invalidate all user state caches", zap.Error(err))
		return
	}
	c.logger.Info("All user state caches invalidated", zap.Int("count", count))
}

// Stats 透传底层 KV 统计
func (c *UserStateCache) Stats(ctx context.Context) (store.KVStats, error) {
	return c.kv.Stats(ctx)
}

package service

import (
	"context"
	"fmt"

	"wisefido-fields/internal/cache"
	"wisefido-fields/internal/domain"
	"wisefido-fields/internal/repository"

	"go.uber.org/zap"
)

// FeatureService 套餐功能门禁
// 所有字段相关 use-case 在授权之后、动手之前都要先问它
type FeatureService struct {
	subsRepo  repository.SubscriptionsRepository
	usersRepo repository.UsersRepository
	userCache *cache.UserStateCache
	logger    *zap.Logger
}

// NewFeatureService 创建功能门禁服务
func NewFeatureService(
	subsRepo repository.SubscriptionsRepository,
	usersRepo repository.UsersRepository,
	userCache *cache.UserStateCache,
	logger *zap.Logger,
) *FeatureService {
	return &FeatureService{
		subsRepo:  subsRepo,
		usersRepo: usersRepo,
		userCache: userCache,
		logger:    logger,
	}
}

// CurrentSubscription 取用户当前订阅，经 user_state 缓存 read-through
// 成员账号（CreatedBy 非空）自己没有订阅时回退到创建者的订阅
func (s *FeatureService) CurrentSubscription(ctx context.Context, user domain.User) (*domain.Subscription, error) {
	if state := s.userCache.Get(ctx, user.UserID); state != nil {
		return state.Subscription, nil
	}

	sub, err := s.subsRepo.FindCurrentByUser(ctx, user.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve subscription: %w", err)
	}

	if sub == nil && user.CreatedBy != "" {
		owner, err := s.usersRepo.GetUser(ctx, user.CreatedBy)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve account owner: %w", err)
		}
		if owner != nil {
			sub, err = s.subsRepo.FindCurrentByUser(ctx, owner.UserID)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve owner subscription: %w", err)
			}
		}
	}

	s.userCache.Set(ctx, user, sub)
	return sub, nil
}

// HasFeature 判断用户当前套餐是否包含指定功能
// 没有订阅、订阅失效都视为没有该功能（不是错误）
func (s *FeatureService) HasFeature(ctx context.Context, user domain.User, featureKey string) (bool, error) {
	sub, err := s.CurrentSubscription(ctx, user)
	if err != nil {
		return false, err
	}
	if sub == nil || !sub.IsActive() {
		return false, nil
	}

	has, err := s.subsRepo.PlanHasFeature(ctx, sub.Plan.Slug, featureKey)
	if err != nil {
		return false, fmt.Errorf("failed to check plan feature: %w", err)
	}

	s.logger.Debug("Feature gate resolved",
		zap.String("user_id", user.UserID),
		zap.String("plan_slug", sub.Plan.Slug),
		zap.String("feature", featureKey),
		zap.Bool("has_feature", has),
	)
	return has, nil
}

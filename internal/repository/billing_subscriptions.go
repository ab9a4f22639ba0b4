package repository

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"wisefido-fields/internal/domain"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// BillingSubscriptionsRepository 通过计费服务 HTTP API 查询订阅/套餐
// 与 PostgresSubscriptionsRepository 实现同一接口，部署时二选一
type BillingSubscriptionsRepository struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// billingSubscriptionResponse 计费服务的订阅响应
type billingSubscriptionResponse struct {
	Subscription *struct {
		ID        string     `json:"id"`
		UserID    string     `json:"user_id"`
		Status    string     `json:"status"`
		PlanID    string     `json:"plan_id"`
		StartDate *time.Time `json:"start_date"`
		EndDate   *time.Time `json:"end_date"`
		Plan      struct {
			ID       string   `json:"id"`
			Slug     string   `json:"slug"`
			Name     string   `json:"name"`
			Features []string `json:"features"`
		} `json:"plan"`
	} `json:"subscription"`
}

type billingFeatureResponse struct {
	HasFeature bool `json:"has_feature"`
}

// NewBillingSubscriptionsRepository 创建计费服务客户端
func NewBillingSubscriptionsRepository(baseURL, apiKey string, logger *zap.Logger) *BillingSubscriptionsRepository {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetHeader("Accept", "application/json")
	if apiKey != "" {
		client.SetHeader("Authorization", "Bearer "+apiKey)
	}

	return &BillingSubscriptionsRepository{
		httpClient: client,
		logger:     logger,
	}
}

var _ SubscriptionsRepository = (*BillingSubscriptionsRepository)(nil)

func (r *BillingSubscriptionsRepository) FindCurrentByUser(ctx context.Context, userID string) (*domain.Subscription, error) {
	if userID == "" {
		return nil, nil
	}

	var body billingSubscriptionResponse
	resp, err := r.httpClient.R().
		SetContext(ctx).
		SetPathParam("userID", userID).
		SetResult(&body).
		Get("/api/v1/subscriptions/current/{userID}")
	if err != nil {
		return nil, fmt.Errorf("billing request failed: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, nil
	}
	if resp.IsError() {
		return nil, fmt.Errorf("billing returned status %d", resp.StatusCode())
	}
	if body.Subscription == nil {
		return nil, nil
	}

	s := body.Subscription
	return &domain.Subscription{
		SubscriptionID: s.ID,
		UserID:         s.UserID,
		Status:         s.Status,
		PlanID:         s.PlanID,
		StartDate:      s.StartDate,
		EndDate:        s.EndDate,
		Plan: domain.Plan{
			PlanID:   s.Plan.ID,
			Slug:     s.Plan.Slug,
			Name:     s.Plan.Name,
			Features: s.Plan.Features,
		},
	}, nil
}

func (r *BillingSubscriptionsRepository) PlanHasFeature(ctx context.Context, planSlug, featureKey string) (bool, error) {
	if planSlug == "" || featureKey == "" {
		return false, nil
	}

	var body billingFeatureResponse
	resp, err := r.httpClient.R().
		SetContext(ctx).
		SetPathParam("slug", planSlug).
		SetQueryParam("feature", featureKey).
		SetResult(&body).
		Get("/api/v1/plans/{slug}/features")
	if err != nil {
		return false, fmt.Errorf("billing request failed: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return false, nil
	}
	if resp.IsError() {
		return false, fmt.Errorf("billing returned status %d", resp.StatusCode())
	}

	r.logger.Debug("Plan feature resolved via billing",
		zap.String("plan_slug", planSlug),
		zap.String("feature", featureKey),
		zap.Bool("has_feature", body.HasFeature),
	)
	return body.HasFeature, nil
}

package repository

import (
	"context"
	"database/sql"
	"fmt"

	"wisefido-fields/internal/domain"

	"github.com/lib/pq"
)

// PostgresSubscriptionsRepository 订阅/套餐查询实现
type PostgresSubscriptionsRepository struct {
	db *sql.DB
}

// NewPostgresSubscriptionsRepository 创建订阅 Repository
func NewPostgresSubscriptionsRepository(db *sql.DB) *PostgresSubscriptionsRepository {
	return &PostgresSubscriptionsRepository{db: db}
}

var _ SubscriptionsRepository = (*PostgresSubscriptionsRepository)(nil)

func (r *PostgresSubscriptionsRepository) FindCurrentByUser(ctx context.Context, userID string) (*domain.Subscription, error) {
	if userID == "" {
		return nil, nil
	}

	query := `
		SELECT
			s.subscription_id::text,
			s.user_id::text,
			s.status,
			s.plan_id::text,
			s.start_date,
			s.end_date,
			p.plan_id::text,
			p.slug,
			p.name,
			p.features
		FROM subscriptions s
		JOIN plans p ON p.plan_id = s.plan_id
		WHERE s.user_id = $1 AND s.status = 'active'
		ORDER BY s.start_date DESC NULLS LAST
		LIMIT 1`

	var sub domain.Subscription
	var startDate, endDate sql.NullTime
	var features pq.StringArray

	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&sub.SubscriptionID,
		&sub.UserID,
		&sub.Status,
		&sub.PlanID,
		&startDate,
		&endDate,
		&sub.Plan.PlanID,
		&sub.Plan.Slug,
		&sub.Plan.Name,
		&features,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find current subscription: %w", err)
	}

	if startDate.Valid {
		sub.StartDate = &startDate.Time
	}
	if endDate.Valid {
		sub.EndDate = &endDate.Time
	}
	sub.Plan.Features = []string(features)
	return &sub, nil
}

func (r *PostgresSubscriptionsRepository) PlanHasFeature(ctx context.Context, planSlug, featureKey string) (bool, error) {
	if planSlug == "" || featureKey == "" {
		return false, nil
	}

	query := `
		SELECT EXISTS (
			SELECT 1
			FROM plans
			WHERE slug = $1 AND $2 = ANY(features)
		)`

	var has bool
	if err := r.db.QueryRowContext(ctx, query, planSlug, featureKey).Scan(&has); err != nil {
		return false, fmt.Errorf("failed to check plan feature: %w", err)
	}
	return has, nil
}

package domain

import "time"

// PlanFeatureCustomFields 自定义字段功能的 feature key
const PlanFeatureCustomFields = "custom_fields"

// Plan 订阅套餐
type Plan struct {
	PlanID   string   `json:"plan_id"`
	Slug     string   `json:"slug"`
	Name     string   `json:"name"`
	Features []string `json:"features"`
}

// Subscription 用户当前订阅（对应 subscriptions 表，JOIN plans）
type Subscription struct {
	SubscriptionID string     `db:"subscription_id" json:"subscription_id"`
	UserID         string     `db:"user_id" json:"user_id"`
	Status         string     `db:"status" json:"status"`
	PlanID         string     `db:"plan_id" json:"plan_id"`
	StartDate      *time.Time `db:"start_date" json:"start_date"`
	EndDate        *time.Time `db:"end_date" json:"end_date"`
	Plan           Plan       `json:"plan"`
}

// IsActive 订阅是否处于有效期内
func (s *Subscription) IsActive() bool {
	if s.Status != "active" {
		return false
	}
	if s.EndDate != nil && s.EndDate.Before(time.Now()) {
		return false
	}
	return true
}

package repository

import (
	"context"

	"wisefido-fields/internal/domain"
)

// CustomFieldsRepository 自定义字段 Repository 接口
// 所有方法都以 companyID 为租户边界；跨公司访问在这里就被挡住
type CustomFieldsRepository interface {
	// GetField 按 ID 查找（不限公司，调用方负责比对 CompanyID）
	GetField(ctx context.Context, fieldID string) (*domain.CustomField, error)
	// ListByCompany 返回公司全部字段，按 display_order 升序
	ListByCompany(ctx context.Context, companyID string) ([]domain.CustomField, error)
	// ListActiveByCompany 只返回 is_active=true 的字段，按 display_order 升序
	ListActiveByCompany(ctx context.Context, companyID string) ([]domain.CustomField, error)
	CreateField(ctx context.Context, field *domain.CustomField) (*domain.CustomField, error)
	UpdateField(ctx context.Context, field *domain.CustomField) (*domain.CustomField, error)
	DeleteField(ctx context.Context, companyID, fieldID string) error
	// Reorder 给出的 fieldIDs 依次赋 display_order 0..N-1；
	// 未出现在列表里的字段保持原有顺序值不变
	Reorder(ctx context.Context, companyID string, fieldIDs []string) error
}

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

// FieldsService 字段配置管理（owner 侧）
// 每个变更操作在返回前同步清掉公司的两个列表缓存
type FieldsService struct {
	fieldsRepo  repository.CustomFieldsRepository
	featureSvc  *FeatureService
	fieldsCache *cache.FieldsCache
	logger      *zap.Logger
}

// NewFieldsService 创建字段管理服务
func NewFieldsService(
	fieldsRepo repository.CustomFieldsRepository,
	featureSvc *FeatureService,
	fieldsCache *cache.FieldsCache,
	logger *zap.Logger,
) *FieldsService {
	return &FieldsService{
		fieldsRepo:  fieldsRepo,
		featureSvc:  featureSvc,
		fieldsCache: fieldsCache,
		logger:      logger,
	}
}

// ListFieldsRequest 查询字段列表请求
type ListFieldsRequest struct {
	Actor           domain.User
	IncludeInactive bool
}

// ListFieldsResult 查询字段列表响应
// HasFeature=false 是一等结果而不是错误：前端据此区分「没配置」和「没权益」
type ListFieldsResult struct {
	Fields     []domain.CustomField `json:"fields"`
	HasFeature bool                 `json:"has_feature"`
}

// ListFields 查询公司字段列表（owner/manager）
// 缓存路径：先查列表缓存，miss 再查库并回填
func (s *FieldsService) ListFields(ctx context.Context, req ListFieldsRequest) (*ListFieldsResult, error) {
	if !req.Actor.CanManageFields() {
		return nil, fmt.Errorf("%w: only owners and managers can list custom fields", domain.ErrForbidden)
	}
	if req.Actor.CompanyID == "" {
		return nil, fmt.Errorf("%w: user has no company", domain.ErrBadRequest)
	}

	hasFeature, err := s.featureSvc.HasFeature(ctx, req.Actor, domain.PlanFeatureCustomFields)
	if err != nil {
		return nil, err
	}
	if !hasFeature {
		return &ListFieldsResult{Fields: []domain.CustomField{}, HasFeature: false}, nil
	}

	companyID := req.Actor.CompanyID

	if req.IncludeInactive {
		if fields, ok := s.fieldsCache.GetAll(ctx, companyID); ok {
			return &ListFieldsResult{Fields: fields, HasFeature: true}, nil
		}
		fields, err := s.fieldsRepo.ListByCompany(ctx, companyID)
		if err != nil {
			return nil, fmt.Errorf("failed to list custom fields: %w", err)
		}
		s.fieldsCache.SetAll(ctx, companyID, fields)
		return &ListFieldsResult{Fields: fields, HasFeature: true}, nil
	}

	if fields, ok := s.fieldsCache.GetActive(ctx, companyID); ok {
		return &ListFieldsResult{Fields: fields, HasFeature: true}, nil
	}
	fields, err := s.fieldsRepo.ListActiveByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list custom fields: %w", err)
	}
	s.fieldsCache.SetActive(ctx, companyID, fields)
	return &ListFieldsResult{Fields: fields, HasFeature: true}, nil
}

// CreateFieldRequest 创建字段请求
type CreateFieldRequest struct {
	Actor         domain.User
	Label         string
	Type          domain.FieldType
	Placeholder   string
	HelpText      string
	IsRequired    bool
	Options       []string
	AllowMultiple bool
	Validation    *domain.FieldValidation
	FileConfig    *domain.FileConfig
}

// CreateField 创建字段（仅 owner）
func (s *FieldsService) CreateField(ctx context.Context, req CreateFieldRequest) (*domain.CustomField, error) {
	if req.Actor.Role != domain.RoleOwner {
		return nil, fmt.Errorf("%w: only the owner can create custom fields", domain.ErrForbidden)
	}
	if req.Actor.CompanyID == "" {
		return nil, fmt.Errorf("%w: user has no company", domain.ErrBadRequest)
	}

	sub, err := s.featureSvc.CurrentSubscription(ctx, req.Actor)
	if err != nil {
		return nil, err
	}
	if sub == nil || !sub.IsActive() {
		return nil, fmt.Errorf("%w: subscription is not active", domain.ErrForbidden)
	}
	hasFeature, err := s.featureSvc.HasFeature(ctx, req.Actor, domain.PlanFeatureCustomFields)
	if err != nil {
		return nil, err
	}
	if !hasFeature {
		return nil, fmt.Errorf("%w: current plan does not include custom fields", domain.ErrForbidden)
	}

	if err := validateFieldConfig(req.Type, req.Label, req.Options, req.FileConfig); err != nil {
		return nil, err
	}

	// 新字段排在最后
	existing, err := s.fieldsRepo.ListByCompany(ctx, req.Actor.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list custom fields: %w", err)
	}
	maxOrder := -1
	for _, f := range existing {
		if f.Order > maxOrder {
			maxOrder = f.Order
		}
	}

	field := &domain.CustomField{
		CompanyID:   req.Actor.CompanyID,
		Label:       strings.TrimSpace(req.Label),
		Type:        req.Type,
		Placeholder: strings.TrimSpace(req.Placeholder),
		HelpText:    strings.TrimSpace(req.HelpText),
		IsRequired:  req.IsRequired,
		Validation:  req.Validation,
		Order:       maxOrder + 1,
		IsActive:    true,
	}
	// 类型不匹配的配置直接丢弃，不落库
	if req.Type == domain.FieldTypeSelect {
		field.Options = req.Options
	}
	if req.Type == domain.FieldTypeSelect || req.Type == domain.FieldTypeCheckbox {
		field.AllowMultiple = req.AllowMultiple
	}
	if req.Type == domain.FieldTypeFile {
		field.FileConfig = normalizeFileConfig(req.FileConfig)
	}

	created, err := s.fieldsRepo.CreateField(ctx, field)
	if err != nil {
		return nil, fmt.Errorf("failed to create custom field: %w", err)
	}

	s.fieldsCache.Invalidate(ctx, req.Actor.CompanyID)

	s.logger.Info("Custom field created",
		zap.String("company_id", created.CompanyID),
		zap.String("field_id", created.FieldID),
		zap.String("type", string(created.Type)),
	)
	return created, nil
}

// UpdateFieldRequest 更新字段请求（nil 表示不改）
type UpdateFieldRequest struct {
	Actor         domain.User
	FieldID       string
	Label         *string
	Type          *domain.FieldType
	Placeholder   *string
	HelpText      *string
	IsRequired    *bool
	Options       []string
	AllowMultiple *bool
	Validation    *domain.FieldValidation
	FileConfig    *domain.FileConfig
	IsActive      *bool
}

// UpdateField 更新字段（仅 owner，且字段必须属于自己公司）
func (s *FieldsService) UpdateField(ctx context.Context, req UpdateFieldRequest) (*domain.CustomField, error) {
	if req.Actor.Role != domain.RoleOwner {
		return nil, fmt.Errorf("%w: only the owner can update custom fields", domain.ErrForbidden)
	}
	if req.Actor.CompanyID == "" {
		return nil, fmt.Errorf("%w: user has no company", domain.ErrBadRequest)
	}

	existing, err := s.fieldsRepo.GetField(ctx, req.FieldID)
	if err != nil {
		return nil, fmt.Errorf("failed to get custom field: %w", err)
	}
	if existing == nil {
		return nil, fmt.Errorf("%w: custom field %s", domain.ErrNotFound, req.FieldID)
	}
	if existing.CompanyID != req.Actor.CompanyID {
		return nil, fmt.Errorf("%w: custom field belongs to another company", domain.ErrForbidden)
	}

	// 生效类型 = 请求里的新类型，否则沿用旧类型
	newType := existing.Type
	if req.Type != nil {
		newType = *req.Type
	}
	newLabel := existing.Label
	if req.Label != nil {
		newLabel = *req.Label
	}
	newOptions := existing.Options
	if req.Options != nil {
		newOptions = req.Options
	}
	newFileConfig := existing.FileConfig
	if req.FileConfig != nil {
		newFileConfig = req.FileConfig
	}
	if err := validateFieldConfig(newType, newLabel, newOptions, newFileConfig); err != nil {
		return nil, err
	}

	updated := *existing
	updated.Type = newType
	updated.Label = strings.TrimSpace(newLabel)
	if req.Placeholder != nil {
		updated.Placeholder = strings.TrimSpace(*req.Placeholder)
	}
	if req.HelpText != nil {
		updated.HelpText = strings.TrimSpace(*req.HelpText)
	}
	if req.IsRequired != nil {
		updated.IsRequired = *req.IsRequired
	}
	if req.Validation != nil {
		updated.Validation = req.Validation
	}
	if req.IsActive != nil {
		updated.IsActive = *req.IsActive
	}

	if newType == domain.FieldTypeSelect {
		updated.Options = newOptions
	} else {
		updated.Options = nil
	}
	if req.AllowMultiple != nil && (newType == domain.FieldTypeSelect || newType == domain.FieldTypeCheckbox) {
		updated.AllowMultiple = *req.AllowMultiple
	}
	if newType != domain.FieldTypeSelect && newType != domain.FieldTypeCheckbox {
		updated.AllowMultiple = false
	}
	if newType == domain.FieldTypeFile {
		updated.FileConfig = normalizeFileConfig(newFileConfig)
	} else {
		updated.FileConfig = nil
	}

	result, err := s.fieldsRepo.UpdateField(ctx, &updated)
	if err != nil {
		return nil, fmt.Errorf("failed to update custom field: %w", err)
	}

	s.fieldsCache.Invalidate(ctx, req.Actor.CompanyID)

	s.logger.Info("Custom field updated",
		zap.String("company_id", result.CompanyID),
		zap.String("field_id", result.FieldID),
	)
	return result, nil
}

// DeleteFieldRequest 删除字段请求
type DeleteFieldRequest struct {
	Actor   domain.User
	FieldID string
}

// DeleteField 删除字段（仅 owner，且字段必须属于自己公司）
// 字段的历史回答留给仓储层处理，这里不关心
func (s *FieldsService) DeleteField(ctx context.Context, req DeleteFieldRequest) error {
	if req.Actor.Role != domain.RoleOwner {
		return fmt.Errorf("%w: only the owner can delete custom fields", domain.ErrForbidden)
	}
	if req.Actor.CompanyID == "" {
		return fmt.Errorf("%w: user has no company", domain.ErrBadRequest)
	}

	existing, err := s.fieldsRepo.GetField(ctx, req.FieldID)
	if err != nil {
		return fmt.Errorf("failed to get custom field: %w", err)
	}
	if existing == nil {
		return fmt.Errorf("%w: custom field %s", domain.ErrNotFound, req.FieldID)
	}
	if existing.CompanyID != req.Actor.CompanyID {
		return fmt.Errorf("%w: custom field belongs to another company", domain.ErrForbidden)
	}

	if err := s.fieldsRepo.DeleteField(ctx, req.Actor.CompanyID, req.FieldID); err != nil {
		return fmt.Errorf("failed to delete custom field: %w", err)
	}

	s.fieldsCache.Invalidate(ctx, req.Actor.CompanyID)

	s.logger.Info("Custom field deleted",
		zap.String("company_id", req.Actor.CompanyID),
		zap.String("field_id", req.FieldID),
	)
	return nil
}

// ReorderFieldsRequest 重排字段请求
type ReorderFieldsRequest struct {
	Actor    domain.User
	FieldIDs []string
}

// ReorderFields 重排字段（仅 owner）
// 不存在/别家公司的 id 静默丢弃；过滤后为空才报错。
// 未提交的字段保持旧的 display_order 不变（可能与新序号撞号，列表排序稳定即可）
func (s *FieldsService) ReorderFields(ctx context.Context, req ReorderFieldsRequest) error {
	if req.Actor.Role != domain.RoleOwner {
		return fmt.Errorf("%w: only the owner can reorder custom fields", domain.ErrForbidden)
	}
	if req.Actor.CompanyID == "" {
		return fmt.Errorf("%w: user has no company", domain.ErrBadRequest)
	}
	if len(req.FieldIDs) == 0 {
		return fmt.Errorf("%w: field_ids is required", domain.ErrBadRequest)
	}

	existing, err := s.fieldsRepo.ListByCompany(ctx, req.Actor.CompanyID)
	if err != nil {
		return fmt.Errorf("failed to list custom fields: %w", err)
	}
	owned := make(map[string]bool, len(existing))
	for _, f := range existing {
		owned[f.FieldID] = true
	}

	// 过滤 + 去重，保持提交顺序
	seen := make(map[string]bool, len(req.FieldIDs))
	filtered := make([]string, 0, len(req.FieldIDs))
	for _, id := range req.FieldIDs {
		if !owned[id] || seen[id] {
			continue
		}
		seen[id] = true
		filtered = append(filtered, id)
	}
	if len(filtered) == 0 {
		return fmt.Errorf("%w: no valid field ids to reorder", domain.ErrBadRequest)
	}

	if err := s.fieldsRepo.Reorder(ctx, req.Actor.CompanyID, filtered); err != nil {
		return fmt.Errorf("failed to reorder custom fields: %w", err)
	}

	s.fieldsCache.Invalidate(ctx, req.Actor.CompanyID)

	s.logger.Info("Custom fields reordered",
		zap.String("company_id", req.Actor.CompanyID),
		zap.Int("count", len(filtered)),
	)
	return nil
}

// validateFieldConfig 创建/更新共用的配置校验
// file 字段未显式给的配置项由 normalizeFileConfig 补默认值，这里只校验给了的
func validateFieldConfig(fieldType domain.FieldType, label string, options []string, fileConfig *domain.FileConfig) error {
	if !fieldType.Valid() {
		return fmt.Errorf("%w: invalid field type %q", domain.ErrBadRequest, fieldType)
	}

	if len(strings.TrimSpace(label)) < 2 {
		return fmt.Errorf("%w: label must have at least 2 characters", domain.ErrBadRequest)
	}

	if fieldType == domain.FieldTypeSelect {
		if len(options) < 2 {
			return fmt.Errorf("%w: select fields need at least 2 options", domain.ErrBadRequest)
		}
		unique := make(map[string]bool, len(options))
		for _, opt := range options {
			key := strings.ToLower(strings.TrimSpace(opt))
			if unique[key] {
				return fmt.Errorf("%w: duplicate options are not allowed", domain.ErrBadRequest)
			}
			unique[key] = true
		}
	}

	if fieldType == domain.FieldTypeFile && fileConfig != nil {
		if fileConfig.MaxFileSize != 0 && (fileConfig.MaxFileSize < 1 || fileConfig.MaxFileSize > 10) {
			return fmt.Errorf("%w: max file size must be between 1 and 10 MB", domain.ErrBadRequest)
		}
		if fileConfig.MaxFiles != 0 && (fileConfig.MaxFiles < 1 || fileConfig.MaxFiles > 5) {
			return fmt.Errorf("%w: max files must be between 1 and 5", domain.ErrBadRequest)
		}
	}

	return nil
}

// normalizeFileConfig 补默认值：5MB、单文件、图片+PDF
func normalizeFileConfig(fc *domain.FileConfig) *domain.FileConfig {
	out := domain.FileConfig{
		MaxFileSize:  5,
		MaxFiles:     1,
		AllowedTypes: []string{"image/*", "application/pdf"},
	}
	if fc != nil {
		if fc.MaxFileSize != 0 {
			out.MaxFileSize = fc.MaxFileSize
		}
		if fc.MaxFiles != 0 {
			out.MaxFiles = fc.MaxFiles
		}
		if len(fc.AllowedTypes) > 0 {
			out.AllowedTypes = fc.AllowedTypes
		}
	}
	return &out
}

package service

import (
	"context"
	"fmt"

	"wisefido-fields/internal/cache"
	"wisefido-fields/internal/domain"
	"wisefido-fields/internal/repository"

	"go.uber.org/zap"
)

// ResponsesService 员工侧字段填写
type ResponsesService struct {
	fieldsRepo    repository.CustomFieldsRepository
	responsesRepo repository.FieldResponsesRepository
	usersRepo     repository.UsersRepository
	featureSvc    *FeatureService
	fieldsCache   *cache.FieldsCache
	logger        *zap.Logger
}

// NewResponsesService 创建字段填写服务
func NewResponsesService(
	fieldsRepo repository.CustomFieldsRepository,
	responsesRepo repository.FieldResponsesRepository,
	usersRepo repository.UsersRepository,
	featureSvc *FeatureService,
	fieldsCache *cache.FieldsCache,
	logger *zap.Logger,
) *ResponsesService {
	return &ResponsesService{
		fieldsRepo:    fieldsRepo,
		responsesRepo: responsesRepo,
		usersRepo:     usersRepo,
		featureSvc:    featureSvc,
		fieldsCache:   fieldsCache,
		logger:        logger,
	}
}

// MyFieldsResult 员工自己的字段 + 已填的值
// 未绑定公司或套餐没有该权益时返回空列表 + HasFeature=false，不报错
type MyFieldsResult struct {
	Fields     []domain.FieldWithValue `json:"fields"`
	HasFeature bool                    `json:"has_feature"`
}

// GetMyFields 查询自己需要填写的激活字段及已填内容
func (s *ResponsesService) GetMyFields(ctx context.Context, actor domain.User) (*MyFieldsResult, error) {
	if actor.CompanyID == "" {
		return &MyFieldsResult{Fields: []domain.FieldWithValue{}, HasFeature: false}, nil
	}

	hasFeature, err := s.featureSvc.HasFeature(ctx, actor, domain.PlanFeatureCustomFields)
	if err != nil {
		return nil, err
	}
	if !hasFeature {
		return &MyFieldsResult{Fields: []domain.FieldWithValue{}, HasFeature: false}, nil
	}

	fields, err := s.activeFields(ctx, actor.CompanyID)
	if err != nil {
		return nil, err
	}

	responses, err := s.responsesRepo.ListByUser(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list field responses: %w", err)
	}

	return &MyFieldsResult{Fields: joinValues(fields, responses), HasFeature: true}, nil
}

// SaveMyFieldsRequest 保存自己填写的字段值
type SaveMyFieldsRequest struct {
	Actor  domain.User
	Values []repository.ResponseUpsert
}

// SaveMyFields 保存字段值
// 整批先校验后落库：任何一条不合法整批都不写。
// 不属于本公司激活字段的 fieldId 静默忽略
func (s *ResponsesService) SaveMyFields(ctx context.Context, req SaveMyFieldsRequest) error {
	if req.Actor.CompanyID == "" {
		return fmt.Errorf("%w: user has no company", domain.ErrBadRequest)
	}

	hasFeature, err := s.featureSvc.HasFeature(ctx, req.Actor, domain.PlanFeatureCustomFields)
	if err != nil {
		return err
	}
	if !hasFeature {
		return fmt.Errorf("%w: current plan does not include custom fields", domain.ErrForbidden)
	}

	fields, err := s.activeFields(ctx, req.Actor.CompanyID)
	if err != nil {
		return err
	}
	byID := make(map[string]*domain.CustomField, len(fields))
	for i := range fields {
		byID[fields[i].FieldID] = &fields[i]
	}

	accepted := make([]repository.ResponseUpsert, 0, len(req.Values))
	for _, v := range req.Values {
		field, ok := byID[v.FieldID]
		if !ok {
			continue
		}
		if err := ValidateFieldValue(field, v.Value); err != nil {
			return err
		}
		accepted = append(accepted, v)
	}
	if len(accepted) == 0 {
		return nil
	}

	if err := s.responsesRepo.UpsertMany(ctx, req.Actor.UserID, accepted); err != nil {
		return fmt.Errorf("failed to save field responses: %w", err)
	}

	s.logger.Info("Field responses saved",
		zap.String("company_id", req.Actor.CompanyID),
		zap.String("user_id", req.Actor.UserID),
		zap.Int("count", len(accepted)),
	)
	return nil
}

// UserInfo 管理端查看他人字段时附带的用户摘要
type UserInfo struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// UserFieldsResult 某个员工的全部字段（含停用）+ 已填值
type UserFieldsResult struct {
	User   UserInfo                `json:"user"`
	Fields []domain.FieldWithValue `json:"fields"`
}

// GetUserFields 管理端查看某个员工的字段填写情况（owner/manager）
// 返回全部字段（含停用的），停用字段上的历史回答仍可见
func (s *ResponsesService) GetUserFields(ctx context.Context, actor domain.User, targetUserID string) (*UserFieldsResult, error) {
	if !actor.CanManageFields() {
		return nil, fmt.Errorf("%w: only owners and managers can view user fields", domain.ErrForbidden)
	}
	if actor.CompanyID == "" {
		return nil, fmt.Errorf("%w: user has no company", domain.ErrBadRequest)
	}

	target, err := s.usersRepo.GetUser(ctx, targetUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if target == nil {
		return nil, fmt.Errorf("%w: user %s", domain.ErrNotFound, targetUserID)
	}
	if target.CompanyID != actor.CompanyID {
		return nil, fmt.Errorf("%w: user belongs to another company", domain.ErrForbidden)
	}

	fields, err := s.allFields(ctx, actor.CompanyID)
	if err != nil {
		return nil, err
	}

	responses, err := s.responsesRepo.ListByUser(ctx, target.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list field responses: %w", err)
	}

	return &UserFieldsResult{
		User: UserInfo{
			UserID: target.UserID,
			Name:   target.Name,
			Email:  target.Email,
			Role:   string(target.Role),
		},
		Fields: joinValues(fields, responses),
	}, nil
}

// activeFields 激活字段列表，缓存旁路
func (s *ResponsesService) activeFields(ctx context.Context, companyID string) ([]domain.CustomField, error) {
	if fields, ok := s.fieldsCache.GetActive(ctx, companyID); ok {
		return fields, nil
	}
	fields, err := s.fieldsRepo.ListActiveByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list custom fields: %w", err)
	}
	s.fieldsCache.SetActive(ctx, companyID, fields)
	return fields, nil
}

// allFields 全部字段列表（含停用），缓存旁路
func (s *ResponsesService) allFields(ctx context.Context, companyID string) ([]domain.CustomField, error) {
	if fields, ok := s.fieldsCache.GetAll(ctx, companyID); ok {
		return fields, nil
	}
	fields, err := s.fieldsRepo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list custom fields: %w", err)
	}
	s.fieldsCache.SetAll(ctx, companyID, fields)
	return fields, nil
}

// joinValues 把字段定义和用户已填的值拼在一起，保持字段顺序
func joinValues(fields []domain.CustomField, responses []domain.FieldResponse) []domain.FieldWithValue {
	byField := make(map[string]*string, len(responses))
	for i := range responses {
		byField[responses[i].FieldID] = responses[i].Value
	}
	out := make([]domain.FieldWithValue, 0, len(fields))
	for _, f := range fields {
		out = append(out, domain.FieldWithValue{
			CustomField: f,
			Value:       byField[f.FieldID],
		})
	}
	return out
}

package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"wisefido-fields/internal/cache"
	"wisefido-fields/internal/domain"
	"wisefido-fields/internal/repository"
	"wisefido-fields/internal/store"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// countingFieldsRepo 包一层计数，用来断言缓存命中时没有打到仓储
type countingFieldsRepo struct {
	repository.CustomFieldsRepository
	listCalls atomic.Int64
}

func (r *countingFieldsRepo) ListActiveByCompany(ctx context.Context, companyID string) ([]domain.CustomField, error) {
	r.listCalls.Add(1)
	return r.CustomFieldsRepository.ListActiveByCompany(ctx, companyID)
}

func (r *countingFieldsRepo) ListByCompany(ctx context.Context, companyID string) ([]domain.CustomField, error) {
	r.listCalls.Add(1)
	return r.CustomFieldsRepository.ListByCompany(ctx, companyID)
}

type fieldsFixture struct {
	svc        *FieldsService
	fieldsRepo *repository.MemoryCustomFieldsRepo
	counting   *countingFieldsRepo
	subsRepo   *repository.MemorySubscriptionsRepo
	usersRepo  *repository.MemoryUsersRepo
	mr         *miniredis.Miniredis
	owner      domain.User
	manager    domain.User
	staff      domain.User
}

func newFieldsFixture(t *testing.T) *fieldsFixture {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	kv := store.NewRedisKV(client, 2*time.Second)
	logger := zap.NewNop()

	fieldsRepo := repository.NewMemoryCustomFieldsRepo()
	counting := &countingFieldsRepo{CustomFieldsRepository: fieldsRepo}
	subsRepo := repository.NewMemorySubscriptionsRepo()
	usersRepo := repository.NewMemoryUsersRepo()

	userCache := cache.NewUserStateCache(kv, 2*time.Minute, logger)
	fieldsCache := cache.NewFieldsCache(kv, 5*time.Minute, logger)

	featureSvc := NewFeatureService(subsRepo, usersRepo, userCache, logger)
	svc := NewFieldsService(counting, featureSvc, fieldsCache, logger)

	owner := usersRepo.AddUser(domain.User{UserID: "owner-1", CompanyID: "co-1", Role: domain.RoleOwner, Name: "Owner", IsActive: true})
	manager := usersRepo.AddUser(domain.User{UserID: "mgr-1", CompanyID: "co-1", Role: domain.RoleManager, Name: "Manager", CreatedBy: "owner-1", IsActive: true})
	staff := usersRepo.AddUser(domain.User{UserID: "staff-1", CompanyID: "co-1", Role: domain.RoleUser, Name: "Staff", CreatedBy: "owner-1", IsActive: true})

	subsRepo.SetPlanFeatures("business", []string{domain.PlanFeatureCustomFields, "reports"})
	subsRepo.SetPlanFeatures("starter", []string{"reports"})
	subsRepo.SetSubscription(owner.UserID, domain.Subscription{
		SubscriptionID: "sub-1",
		UserID:         owner.UserID,
		Status:         "active",
		Plan:           domain.Plan{PlanID: "plan-1", Slug: "business", Features: []string{domain.PlanFeatureCustomFields, "reports"}},
	})

	return &fieldsFixture{
		svc:        svc,
		fieldsRepo: fieldsRepo,
		counting:   counting,
		subsRepo:   subsRepo,
		usersRepo:  usersRepo,
		mr:         mr,
		owner:      owner,
		manager:    manager,
		staff:      staff,
	}
}

func (f *fieldsFixture) createField(t *testing.T, req CreateFieldRequest) *domain.CustomField {
	t.Helper()
	if req.Actor.UserID == "" {
		req.Actor = f.owner
	}
	field, err := f.svc.CreateField(context.Background(), req)
	require.NoError(t, err)
	return field
}

func TestCreateField_AssignsIncrementingOrder(t *testing.T) {
	f := newFieldsFixture(t)

	first := f.createField(t, CreateFieldRequest{Label: "Nome completo", Type: domain.FieldTypeText})
	second := f.createField(t, CreateFieldRequest{Label: "Telefone", Type: domain.FieldTypePhone})

	assert.Equal(t, 0, first.Order)
	assert.Equal(t, 1, second.Order)
	assert.True(t, first.IsActive)
	assert.Equal(t, "co-1", first.CompanyID)
}

func TestCreateField_OnlyOwner(t *testing.T) {
	f := newFieldsFixture(t)

	_, err := f.svc.CreateField(context.Background(), CreateFieldRequest{
		Actor: f.manager, Label: "Nome", Type: domain.FieldTypeText,
	})
	assert.True(t, errors.Is(err, domain.ErrForbidden))

	_, err = f.svc.CreateField(context.Background(), CreateFieldRequest{
		Actor: f.staff, Label: "Nome", Type: domain.FieldTypeText,
	})
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

func TestCreateField_RequiresFeature(t *testing.T) {
	f := newFieldsFixture(t)

	f.subsRepo.SetSubscription(f.owner.UserID, domain.Subscription{
		SubscriptionID: "sub-1",
		UserID:         f.owner.UserID,
		Status:         "active",
		Plan:           domain.Plan{PlanID: "plan-2", Slug: "starter", Features: []string{"reports"}},
	})

	_, err := f.svc.CreateField(context.Background(), CreateFieldRequest{
		Actor: f.owner, Label: "Nome", Type: domain.FieldTypeText,
	})
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

func TestCreateField_Validation(t *testing.T) {
	f := newFieldsFixture(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  CreateFieldRequest
	}{
		{"short label", CreateFieldRequest{Label: " a ", Type: domain.FieldTypeText}},
		{"bad type", CreateFieldRequest{Label: "Campo", Type: domain.FieldType("richtext")}},
		{"select one option", CreateFieldRequest{Label: "Setor", Type: domain.FieldTypeSelect, Options: []string{"TI"}}},
		{"select dup options", CreateFieldRequest{Label: "Setor", Type: domain.FieldTypeSelect, Options: []string{"TI", " ti "}}},
		{"file size too big", CreateFieldRequest{Label: "Anexo", Type: domain.FieldTypeFile, FileConfig: &domain.FileConfig{MaxFileSize: 11}}},
		{"file count too big", CreateFieldRequest{Label: "Anexo", Type: domain.FieldTypeFile, FileConfig: &domain.FileConfig{MaxFiles: 6}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.req.Actor = f.owner
			_, err := f.svc.CreateField(ctx, tc.req)
			assert.True(t, errors.Is(err, domain.ErrBadRequest), "case %s: got %v", tc.name, err)
		})
	}
}

func TestCreateField_FileDefaults(t *testing.T) {
	f := newFieldsFixture(t)

	field := f.createField(t, CreateFieldRequest{Label: "Anexo", Type: domain.FieldTypeFile})

	require.NotNil(t, field.FileConfig)
	assert.Equal(t, 5, field.FileConfig.MaxFileSize)
	assert.Equal(t, 1, field.FileConfig.MaxFiles)
	assert.Equal(t, []string{"image/*", "application/pdf"}, field.FileConfig.AllowedTypes)
}

func TestCreateField_DropsConfigForOtherTypes(t *testing.T) {
	f := newFieldsFixture(t)

	field := f.createField(t, CreateFieldRequest{
		Label:      "Nome",
		Type:       domain.FieldTypeText,
		Options:    []string{"a", "b"},
		FileConfig: &domain.FileConfig{MaxFiles: 3},
	})

	assert.Empty(t, field.Options)
	assert.Nil(t, field.FileConfig)
}

func TestListFields_CacheAside(t *testing.T) {
	f := newFieldsFixture(t)
	ctx := context.Background()

	f.createField(t, CreateFieldRequest{Label: "Nome", Type: domain.FieldTypeText})

	before := f.counting.listCalls.Load()
	res, err := f.svc.ListFields(ctx, ListFieldsRequest{Actor: f.owner})
	require.NoError(t, err)
	assert.Len(t, res.Fields, 1)
	assert.True(t, res.HasFeature)

	// 第二次同样的查询应命中缓存，不再打仓储
	res2, err := f.svc.ListFields(ctx, ListFieldsRequest{Actor: f.owner})
	require.NoError(t, err)
	require.Len(t, res2.Fields, 1)
	assert.Equal(t, res.Fields[0].FieldID, res2.Fields[0].FieldID)
	assert.Equal(t, before+1, f.counting.listCalls.Load())
}

func TestListFields_NoFeatureReturnsEmpty(t *testing.T) {
	f := newFieldsFixture(t)

	f.subsRepo.RemoveSubscription(f.owner.UserID)

	res, err := f.svc.ListFields(context.Background(), ListFieldsRequest{Actor: f.owner})
	require.NoError(t, err)
	assert.False(t, res.HasFeature)
	assert.Empty(t, res.Fields)
}

func TestListFields_ManagerAllowedStaffForbidden(t *testing.T) {
	f := newFieldsFixture(t)
	ctx := context.Background()

	_, err := f.svc.ListFields(ctx, ListFieldsRequest{Actor: f.manager})
	assert.NoError(t, err)

	_, err = f.svc.ListFields(ctx, ListFieldsRequest{Actor: f.staff})
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

func TestListFields_NoCompany(t *testing.T) {
	f := newFieldsFixture(t)

	orphan := f.usersRepo.AddUser(domain.User{UserID: "orphan-1", Role: domain.RoleOwner})
	_, err := f.svc.ListFields(context.Background(), ListFieldsRequest{Actor: orphan})
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestUpdateField_TenantIsolation(t *testing.T) {
	f := newFieldsFixture(t)
	ctx := context.Background()

	field := f.createField(t, CreateFieldRequest{Label: "Nome", Type: domain.FieldTypeText})

	// 别家公司的 owner 拿不到这个字段
	otherOwner := f.usersRepo.AddUser(domain.User{UserID: "owner-2", CompanyID: "co-2", Role: domain.RoleOwner})
	f.subsRepo.SetSubscription(otherOwner.UserID, domain.Subscription{
		SubscriptionID: "sub-2",
		UserID:         otherOwner.UserID,
		Status:         "active",
		Plan:           domain.Plan{PlanID: "plan-1", Slug: "business"},
	})

	_, err := f.svc.UpdateField(ctx, UpdateFieldRequest{Actor: otherOwner, FieldID: field.FieldID, Label: strPtr("Hacked")})
	assert.True(t, errors.Is(err, domain.ErrForbidden))

	err = f.svc.DeleteField(ctx, DeleteFieldRequest{Actor: otherOwner, FieldID: field.FieldID})
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

func TestUpdateField_TypeChangeRevalidates(t *testing.T) {
	f := newFieldsFixture(t)
	ctx := context.Background()

	field := f.createField(t, CreateFieldRequest{Label: "Setor", Type: domain.FieldTypeText})

	// 改成 select 但没给选项，按生效类型校验要拒绝
	newType := domain.FieldTypeSelect
	_, err := f.svc.UpdateField(ctx, UpdateFieldRequest{Actor: f.owner, FieldID: field.FieldID, Type: &newType})
	assert.True(t, errors.Is(err, domain.ErrBadRequest))

	updated, err := f.svc.UpdateField(ctx, UpdateFieldRequest{
		Actor:   f.owner,
		FieldID: field.FieldID,
		Type:    &newType,
		Options: []string{"Vendas", "TI"},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.FieldTypeSelect, updated.Type)
	assert.Equal(t, []string{"Vendas", "TI"}, updated.Options)

	// 换回 text 时 select 专属配置被清掉
	backToText := domain.FieldTypeText
	updated, err = f.svc.UpdateField(ctx, UpdateFieldRequest{Actor: f.owner, FieldID: field.FieldID, Type: &backToText})
	require.NoError(t, err)
	assert.Empty(t, updated.Options)
}

func TestUpdateField_NotFound(t *testing.T) {
	f := newFieldsFixture(t)

	_, err := f.svc.UpdateField(context.Background(), UpdateFieldRequest{Actor: f.owner, FieldID: "missing"})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestMutationsInvalidateCache(t *testing.T) {
	f := newFieldsFixture(t)
	ctx := context.Background()

	field := f.createField(t, CreateFieldRequest{Label: "Nome", Type: domain.FieldTypeText})

	// 预热缓存
	_, err := f.svc.ListFields(ctx, ListFieldsRequest{Actor: f.owner})
	require.NoError(t, err)

	inactive := false
	_, err = f.svc.UpdateField(ctx, UpdateFieldRequest{Actor: f.owner, FieldID: field.FieldID, IsActive: &inactive})
	require.NoError(t, err)

	// 更新后立即可见停用状态，说明缓存被清了
	res, err := f.svc.ListFields(ctx, ListFieldsRequest{Actor: f.owner})
	require.NoError(t, err)
	assert.Empty(t, res.Fields)

	all, err := f.svc.ListFields(ctx, ListFieldsRequest{Actor: f.owner, IncludeInactive: true})
	require.NoError(t, err)
	require.Len(t, all.Fields, 1)
	assert.False(t, all.Fields[0].IsActive)
}

func TestDeleteField(t *testing.T) {
	f := newFieldsFixture(t)
	ctx := context.Background()

	field := f.createField(t, CreateFieldRequest{Label: "Nome", Type: domain.FieldTypeText})

	require.NoError(t, f.svc.DeleteField(ctx, DeleteFieldRequest{Actor: f.owner, FieldID: field.FieldID}))

	err := f.svc.DeleteField(ctx, DeleteFieldRequest{Actor: f.owner, FieldID: field.FieldID})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestReorderFields(t *testing.T) {
	f := newFieldsFixture(t)
	ctx := context.Background()

	a := f.createField(t, CreateFieldRequest{Label: "Campo A", Type: domain.FieldTypeText})
	b := f.createField(t, CreateFieldRequest{Label: "Campo B", Type: domain.FieldTypeText})
	c := f.createField(t, CreateFieldRequest{Label: "Campo C", Type: domain.FieldTypeText})

	// 乱序 + 不存在的 id + 重复 id：无效项静默丢弃
	err := f.svc.ReorderFields(ctx, ReorderFieldsRequest{
		Actor:    f.owner,
		FieldIDs: []string{c.FieldID, "ghost", a.FieldID, c.FieldID, b.FieldID},
	})
	require.NoError(t, err)

	res, err := f.svc.ListFields(ctx, ListFieldsRequest{Actor: f.owner})
	require.NoError(t, err)
	require.Len(t, res.Fields, 3)
	assert.Equal(t, c.FieldID, res.Fields[0].FieldID)
	assert.Equal(t, a.FieldID, res.Fields[1].FieldID)
	assert.Equal(t, b.FieldID, res.Fields[2].FieldID)
	assert.Equal(t, []int{0, 1, 2}, []int{res.Fields[0].Order, res.Fields[1].Order, res.Fields[2].Order})

	// 同样的顺序再来一次是幂等的
	err = f.svc.ReorderFields(ctx, ReorderFieldsRequest{
		Actor:    f.owner,
		FieldIDs: []string{c.FieldID, a.FieldID, b.FieldID},
	})
	require.NoError(t, err)

	again, err := f.svc.ListFields(ctx, ListFieldsRequest{Actor: f.owner})
	require.NoError(t, err)
	assert.Equal(t, res.Fields, again.Fields)
}

func TestReorderFields_BadRequests(t *testing.T) {
	f := newFieldsFixture(t)
	ctx := context.Background()

	err := f.svc.ReorderFields(ctx, ReorderFieldsRequest{Actor: f.owner, FieldIDs: nil})
	assert.True(t, errors.Is(err, domain.ErrBadRequest))

	err = f.svc.ReorderFields(ctx, ReorderFieldsRequest{Actor: f.owner, FieldIDs: []string{"ghost-1", "ghost-2"}})
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

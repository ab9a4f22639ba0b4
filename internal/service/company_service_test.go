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

type countingCompaniesRepo struct {
	repository.CompaniesRepository
	getCalls atomic.Int64
}

func (r *countingCompaniesRepo) GetCompany(ctx context.Context, companyID string) (*domain.Company, error) {
	r.getCalls.Add(1)
	return r.CompaniesRepository.GetCompany(ctx, companyID)
}

func newCompanyFixture(t *testing.T) (*CompanyService, *repository.MemoryCompaniesRepo, *countingCompaniesRepo) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	kv := store.NewRedisKV(client, 2*time.Second)
	logger := zap.NewNop()

	repo := repository.NewMemoryCompaniesRepo()
	counting := &countingCompaniesRepo{CompaniesRepository: repo}
	companyCache := cache.NewCompanyCache(kv, 5*time.Minute, logger)

	return NewCompanyService(counting, companyCache, logger), repo, counting
}

func TestGetCompany_ReadThrough(t *testing.T) {
	svc, repo, counting := newCompanyFixture(t)
	ctx := context.Background()

	repo.AddCompany(domain.Company{CompanyID: "co-1", Name: "Acme", Status: "active"})
	owner := domain.User{UserID: "owner-1", CompanyID: "co-1", Role: domain.RoleOwner}

	company, err := svc.GetCompany(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, "Acme", company.Name)
	assert.Equal(t, int64(1), counting.getCalls.Load())

	company, err = svc.GetCompany(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, "Acme", company.Name)
	assert.Equal(t, int64(1), counting.getCalls.Load())
}

func TestGetCompany_NotFound(t *testing.T) {
	svc, _, _ := newCompanyFixture(t)

	actor := domain.User{UserID: "u-1", CompanyID: "ghost", Role: domain.RoleOwner}
	_, err := svc.GetCompany(context.Background(), actor)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestUpdateCompany_InvalidatesCache(t *testing.T) {
	svc, repo, _ := newCompanyFixture(t)
	ctx := context.Background()

	repo.AddCompany(domain.Company{CompanyID: "co-1", Name: "Acme", Status: "active"})
	owner := domain.User{UserID: "owner-1", CompanyID: "co-1", Role: domain.RoleOwner}

	// 预热缓存
	_, err := svc.GetCompany(ctx, owner)
	require.NoError(t, err)

	updated, err := svc.UpdateCompany(ctx, UpdateCompanyRequest{Actor: owner, Name: strPtr("Acme Ltda")})
	require.NoError(t, err)
	assert.Equal(t, "Acme Ltda", updated.Name)

	// 更新后读到的必须是新名字
	company, err := svc.GetCompany(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, "Acme Ltda", company.Name)
}

func TestUpdateCompany_Authorization(t *testing.T) {
	svc, repo, _ := newCompanyFixture(t)
	ctx := context.Background()

	repo.AddCompany(domain.Company{CompanyID: "co-1", Name: "Acme", Status: "active"})

	manager := domain.User{UserID: "mgr-1", CompanyID: "co-1", Role: domain.RoleManager}
	_, err := svc.UpdateCompany(ctx, UpdateCompanyRequest{Actor: manager, Name: strPtr("Nope")})
	assert.True(t, errors.Is(err, domain.ErrForbidden))

	owner := domain.User{UserID: "owner-1", CompanyID: "co-1", Role: domain.RoleOwner}
	_, err = svc.UpdateCompany(ctx, UpdateCompanyRequest{Actor: owner, Name: strPtr(" x ")})
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wisefido-fields/internal/cache"
	"wisefido-fields/internal/config"
	"wisefido-fields/internal/domain"
	httpapi "wisefido-fields/internal/http"
	"wisefido-fields/internal/logger"
	"wisefido-fields/internal/repository"
	"wisefido-fields/internal/service"
	"wisefido-fields/internal/store"

	"github.com/go-redis/redis/v8"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "wisefido-fields")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	kv := store.NewRedisKV(redisClient, cfg.Cache.OpTimeout)

	companyCache := cache.NewCompanyCache(kv, cfg.Cache.CompanyTTL, log)
	fieldsCache := cache.NewFieldsCache(kv, cfg.Cache.FieldsTTL, log)
	userCache := cache.NewUserStateCache(kv, cfg.Cache.UserStateTTL, log)

	// DB 可用走 Postgres，否则回退内存仓储（本地联调用）
	var db *sql.DB
	if cfg.DBEnabled {
		if d, err := sql.Open("postgres", cfg.Database.GetDSN()); err == nil {
			if err := d.Ping(); err == nil {
				db = d
				log.Info("DB enabled for wisefido-fields")
			} else {
				d.Close()
				log.Warn("DB enabled but connection failed, falling back to memory repos", zap.Error(err))
			}
		} else {
			log.Warn("DB open failed, falling back to memory repos", zap.Error(err))
		}
	}

	var (
		fieldsRepo    repository.CustomFieldsRepository
		responsesRepo repository.FieldResponsesRepository
		usersRepo     repository.UsersRepository
		companiesRepo repository.CompaniesRepository
		subsRepo      repository.SubscriptionsRepository
	)
	if db != nil {
		fieldsRepo = repository.NewPostgresCustomFieldsRepository(db)
		responsesRepo = repository.NewPostgresFieldResponsesRepository(db)
		usersRepo = repository.NewPostgresUsersRepository(db)
		companiesRepo = repository.NewPostgresCompaniesRepository(db)
		subsRepo = repository.NewPostgresSubscriptionsRepository(db)
	} else {
		memFields := repository.NewMemoryCustomFieldsRepo()
		memResponses := repository.NewMemoryFieldResponsesRepo()
		memUsers := repository.NewMemoryUsersRepo()
		memCompanies := repository.NewMemoryCompaniesRepo()
		memSubs := repository.NewMemorySubscriptionsRepo()
		seedDevData(memCompanies, memUsers, memSubs)

		fieldsRepo = memFields
		responsesRepo = memResponses
		usersRepo = memUsers
		companiesRepo = memCompanies
		subsRepo = memSubs
	}

	// 配置了外部计费服务时，订阅查询走计费 API 而不是库表
	if cfg.Billing.Enabled {
		subsRepo = repository.NewBillingSubscriptionsRepository(cfg.Billing.BaseURL, cfg.Billing.APIKey, log)
		log.Info("Billing API enabled for subscription lookups", zap.String("base_url", cfg.Billing.BaseURL))
	}

	featureSvc := service.NewFeatureService(subsRepo, usersRepo, userCache, log)
	fieldsSvc := service.NewFieldsService(fieldsRepo, featureSvc, fieldsCache, log)
	responsesSvc := service.NewResponsesService(fieldsRepo, responsesRepo, usersRepo, featureSvc, fieldsCache, log)
	companySvc := service.NewCompanyService(companiesRepo, companyCache, log)

	router := httpapi.NewRouter(log)
	router.RegisterFieldsRoutes(httpapi.NewFieldsHandler(fieldsSvc, usersRepo, log))
	router.RegisterResponsesRoutes(httpapi.NewResponsesHandler(responsesSvc, usersRepo, log))
	router.RegisterCompanyRoutes(httpapi.NewCompanyHandler(companySvc, usersRepo, log))
	router.RegisterAdminRoutes(httpapi.NewAdminHandler(userCache, usersRepo, log))
	router.RegisterHealthRoutes()

	srv := service.NewServer(cfg.HTTP.Addr, router, log)

	_, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		cancel()
	case err := <-errCh:
		log.Error("HTTP server exited", zap.Error(err))
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
	_ = redisClient.Close()
	if db != nil {
		_ = db.Close()
	}
}

// seedDevData 内存模式下种一套可登录的公司/用户/套餐
func seedDevData(
	companies *repository.MemoryCompaniesRepo,
	users *repository.MemoryUsersRepo,
	subs *repository.MemorySubscriptionsRepo,
) {
	companies.AddCompany(domain.Company{
		CompanyID: "00000000-0000-0000-0000-000000000001",
		Name:      "Dev Company",
		Status:    "active",
	})
	owner := users.AddUser(domain.User{
		UserID:    "00000000-0000-0000-0000-000000000011",
		CompanyID: "00000000-0000-0000-0000-000000000001",
		Name:      "Dev Owner",
		Email:     "owner@dev.local",
		Role:      domain.RoleOwner,
		IsActive:  true,
	})
	users.AddUser(domain.User{
		UserID:    "00000000-0000-0000-0000-000000000012",
		CompanyID: "00000000-0000-0000-0000-000000000001",
		Name:      "Dev Staff",
		Email:     "staff@dev.local",
		Role:      domain.RoleUser,
		CreatedBy: owner.UserID,
		IsActive:  true,
	})
	subs.SetPlanFeatures("business", []string{domain.PlanFeatureCustomFields})
	subs.SetSubscription(owner.UserID, domain.Subscription{
		SubscriptionID: "00000000-0000-0000-0000-000000000021",
		UserID:         owner.UserID,
		Status:         "active",
		Plan: domain.Plan{
			PlanID:   "00000000-0000-0000-0000-000000000031",
			Slug:     "business",
			Name:     "Business",
			Features: []string{domain.PlanFeatureCustomFields},
		},
	})
}

package httpapi

import (
	"net/http"

	"wisefido-fields/internal/cache"
	"wisefido-fields/internal/repository"

	"go.uber.org/zap"
)

// AdminHandler 运维端点：缓存观测 / 清理
type AdminHandler struct {
	actorResolver
	userCache *cache.UserStateCache
	logger    *zap.Logger
}

// NewAdminHandler 创建运维 Handler
func NewAdminHandler(userCache *cache.UserStateCache, usersRepo repository.UsersRepository, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		actorResolver: actorResolver{usersRepo: usersRepo, logger: logger},
		userCache:     userCache,
		logger:        logger,
	}
}

type cacheStatsResponse struct {
	TotalKeys   int64  `json:"total_keys"`
	MemoryUsage string `json:"memory_usage"`
}

// GET /fields/api/v1/admin/cache/stats
func (h *AdminHandler) CacheStats(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.resolve(w, r)
	if !ok {
		return
	}
	if !actor.CanManageFields() {
		writeJSON(w, http.StatusForbidden, Fail("forbidden"))
		return
	}

	stats, err := h.userCache.Stats(r.Context())
	if err != nil {
		h.logger.Error("Failed to read cache stats", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, Ok(cacheStatsResponse{
		TotalKeys:   stats.TotalKeys,
		MemoryUsage: stats.MemoryUsage,
	}))
}

// POST /fields/api/v1/admin/cache/user-state/clear
// 套餐批量变更后由运营触发，主动清掉全部用户状态缓存
func (h *AdminHandler) ClearUserStateCache(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.resolve(w, r)
	if !ok {
		return
	}
	if !actor.CanManageFields() {
		writeJSON(w, http.StatusForbidden, Fail("forbidden"))
		return
	}

	h.userCache.InvalidateAll(r.Context())
	writeJSON(w, http.StatusOK, Ok(map[string]bool{"cleared": true}))
}

package httpapi

import (
	"net/http"

	"wisefido-fields/internal/domain"
	"wisefido-fields/internal/repository"

	"go.uber.org/zap"
)

// 身份由网关解析后通过 X-User-Id 传入，这里只负责加载用户。
// 没有头或用户不存在一律 401。

const userIDHeader = "X-User-Id"

type actorResolver struct {
	usersRepo repository.UsersRepository
	logger    *zap.Logger
}

// resolve 从请求头加载当前用户；失败时已写好响应，调用方直接 return
func (a *actorResolver) resolve(w http.ResponseWriter, r *http.Request) (domain.User, bool) {
	userID := r.Header.Get(userIDHeader)
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, Fail("missing user identity"))
		return domain.User{}, false
	}

	user, err := a.usersRepo.GetUser(r.Context(), userID)
	if err != nil {
		a.logger.Error("Failed to load user", zap.String("user_id", userID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("internal error"))
		return domain.User{}, false
	}
	if user == nil || !user.IsActive {
		writeJSON(w, http.StatusUnauthorized, Fail("unknown user"))
		return domain.User{}, false
	}
	return *user, true
}

package httpapi

import (
	"errors"
	"net/http"

	"wisefido-fields/internal/domain"

	"go.uber.org/zap"
)

// Result 统一响应信封
// - code: 2000 成功，-1 失败
// - type: 'success' | 'error'
// - message: string
// - result: any
type Result[T any] struct {
	Code    int    `json:"code"`
	Type    string `json:"type"`
	Message string `json:"message"`
	Result  T      `json:"result"`
}

const (
	ResultSuccess = 2000
	ResultError   = -1
)

func Ok[T any](result T) Result[T] {
	return Result[T]{Code: ResultSuccess, Type: "success", Message: "ok", Result: result}
}

func Fail(message string) Result[any] {
	return Result[any]{Code: ResultError, Type: "error", Message: message, Result: nil}
}

// writeServiceError 按领域错误分类映射 HTTP 状态码
// 内部错误不把细节透给前端，只打日志
func writeServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrBadRequest):
		writeJSON(w, http.StatusBadRequest, Fail(err.Error()))
	case errors.Is(err, domain.ErrForbidden):
		writeJSON(w, http.StatusForbidden, Fail(err.Error()))
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, Fail(err.Error()))
	default:
		logger.Error("Request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("internal error"))
	}
}

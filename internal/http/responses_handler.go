package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"wisefido-fields/internal/repository"
	"wisefido-fields/internal/service"

	"go.uber.org/zap"
)

// ResponsesHandler 字段填写 API（员工自己填、管理端查看）
type ResponsesHandler struct {
	actorResolver
	responsesSvc *service.ResponsesService
	logger       *zap.Logger
}

// NewResponsesHandler 创建字段填写 Handler
func NewResponsesHandler(responsesSvc *service.ResponsesService, usersRepo repository.UsersRepository, logger *zap.Logger) *ResponsesHandler {
	return &ResponsesHandler{
		actorResolver: actorResolver{usersRepo: usersRepo, logger: logger},
		responsesSvc:  responsesSvc,
		logger:        logger,
	}
}

// GET /fields/api/v1/my-fields
func (h *ResponsesHandler) GetMyFields(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.resolve(w, r)
	if !ok {
		return
	}

	res, err := h.responsesSvc.GetMyFields(r.Context(), actor)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(res))
}

type valuePayload struct {
	FieldID string  `json:"field_id"`
	Value   *string `json:"value"`
}

// PUT /fields/api/v1/my-fields
func (h *ResponsesHandler) SaveMyFields(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.resolve(w, r)
	if !ok {
		return
	}

	var payload struct {
		Values []valuePayload `json:"values"`
	}
	if err := readBodyJSON(r, &payload); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	values := make([]repository.ResponseUpsert, 0, len(payload.Values))
	for _, v := range payload.Values {
		values = append(values, repository.ResponseUpsert{FieldID: v.FieldID, Value: v.Value})
	}

	if err := h.responsesSvc.SaveMyFields(r.Context(), service.SaveMyFieldsRequest{Actor: actor, Values: values}); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]bool{"saved": true}))
}

// GET /fields/api/v1/users/{id}/fields
func (h *ResponsesHandler) GetUserFields(w http.ResponseWriter, r *http.Request, userID string) {
	actor, ok := h.resolve(w, r)
	if !ok {
		return
	}

	res, err := h.responsesSvc.GetUserFields(r.Context(), actor, userID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(res))
}

// GET /fields/api/v1/users/{id}/fields/export
// 导出该员工的字段填写情况为 xlsx
func (h *ResponsesHandler) ExportUserFields(w http.ResponseWriter, r *http.Request, userID string) {
	actor, ok := h.resolve(w, r)
	if !ok {
		return
	}

	res, err := h.responsesSvc.GetUserFields(r.Context(), actor, userID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	data, err := GenerateUserFieldsExport(res)
	if err != nil {
		h.logger.Error("Failed to generate export", zap.String("user_id", userID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("internal error"))
		return
	}

	filename := fmt.Sprintf("user-fields-%s-%s.xlsx", userID, time.Now().Format("20060102"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

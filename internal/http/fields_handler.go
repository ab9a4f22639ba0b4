package httpapi

import (
	"net/http"

	"wisefido-fields/internal/domain"
	"wisefido-fields/internal/repository"
	"wisefido-fields/internal/service"

	"go.uber.org/zap"
)

// FieldsHandler 字段配置管理 API（owner 侧）
type FieldsHandler struct {
	actorResolver
	fieldsSvc *service.FieldsService
	logger    *zap.Logger
}

// NewFieldsHandler 创建字段管理 Handler
func NewFieldsHandler(fieldsSvc *service.FieldsService, usersRepo repository.UsersRepository, logger *zap.Logger) *FieldsHandler {
	return &FieldsHandler{
		actorResolver: actorResolver{usersRepo: usersRepo, logger: logger},
		fieldsSvc:     fieldsSvc,
		logger:        logger,
	}
}

// GET /fields/api/v1/fields?include_inactive=true
func (h *FieldsHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.resolve(w, r)
	if !ok {
		return
	}

	res, err := h.fieldsSvc.ListFields(r.Context(), service.ListFieldsRequest{
		Actor:           actor,
		IncludeInactive: r.URL.Query().Get("include_inactive") == "true",
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(res))
}

type fieldPayload struct {
	Label         string                  `json:"label"`
	Type          domain.FieldType        `json:"type"`
	Placeholder   string                  `json:"placeholder"`
	HelpText      string                  `json:"help_text"`
	IsRequired    bool                    `json:"is_required"`
	Options       []string                `json:"options"`
	AllowMultiple bool                    `json:"allow_multiple"`
	Validation    *domain.FieldValidation `json:"validation"`
	FileConfig    *domain.FileConfig      `json:"file_config"`
}

// POST /fields/api/v1/fields
func (h *FieldsHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.resolve(w, r)
	if !ok {
		return
	}

	var payload fieldPayload
	if err := readBodyJSON(r, &payload); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	field, err := h.fieldsSvc.CreateField(r.Context(), service.CreateFieldRequest{
		Actor:         actor,
		Label:         payload.Label,
		Type:          payload.Type,
		Placeholder:   payload.Placeholder,
		HelpText:      payload.HelpText,
		IsRequired:    payload.IsRequired,
		Options:       payload.Options,
		AllowMultiple: payload.AllowMultiple,
		Validation:    payload.Validation,
		FileConfig:    payload.FileConfig,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(field))
}

type fieldUpdatePayload struct {
	Label         *string                 `json:"label"`
	Type          *domain.FieldType       `json:"type"`
	Placeholder   *string                 `json:"placeholder"`
	HelpText      *string                 `json:"help_text"`
	IsRequired    *bool                   `json:"is_required"`
	Options       []string                `json:"options"`
	AllowMultiple *bool                   `json:"allow_multiple"`
	Validation    *domain.FieldValidation `json:"validation"`
	FileConfig    *domain.FileConfig      `json:"file_config"`
	IsActive      *bool                   `json:"is_active"`
}

// PUT /fields/api/v1/fields/{id}
func (h *FieldsHandler) Update(w http.ResponseWriter, r *http.Request, fieldID string) {
	actor, ok := h.resolve(w, r)
	if !ok {
		return
	}

	var payload fieldUpdatePayload
	if err := readBodyJSON(r, &payload); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	field, err := h.fieldsSvc.UpdateField(r.Context(), service.UpdateFieldRequest{
		Actor:         actor,
		FieldID:       fieldID,
		Label:         payload.Label,
		Type:          payload.Type,
		Placeholder:   payload.Placeholder,
		HelpText:      payload.HelpText,
		IsRequired:    payload.IsRequired,
		Options:       payload.Options,
		AllowMultiple: payload.AllowMultiple,
		Validation:    payload.Validation,
		FileConfig:    payload.FileConfig,
		IsActive:      payload.IsActive,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(field))
}

// DELETE /fields/api/v1/fields/{id}
func (h *FieldsHandler) Delete(w http.ResponseWriter, r *http.Request, fieldID string) {
	actor, ok := h.resolve(w, r)
	if !ok {
		return
	}

	if err := h.fieldsSvc.DeleteField(r.Context(), service.DeleteFieldRequest{Actor: actor, FieldID: fieldID}); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]bool{"deleted": true}))
}

// PUT /fields/api/v1/fields/reorder
func (h *FieldsHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.resolve(w, r)
	if !ok {
		return
	}

	var payload struct {
		FieldIDs []string `json:"field_ids"`
	}
	if err := readBodyJSON(r, &payload); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	if err := h.fieldsSvc.ReorderFields(r.Context(), service.ReorderFieldsRequest{Actor: actor, FieldIDs: payload.FieldIDs}); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]bool{"reordered": true}))
}

package httpapi

import (
	"net/http"

	"wisefido-fields/internal/repository"
	"wisefido-fields/internal/service"

	"go.uber.org/zap"
)

// CompanyHandler 公司资料 API
type CompanyHandler struct {
	actorResolver
	companySvc *service.CompanyService
	logger     *zap.Logger
}

// NewCompanyHandler 创建公司 Handler
func NewCompanyHandler(companySvc *service.CompanyService, usersRepo repository.UsersRepository, logger *zap.Logger) *CompanyHandler {
	return &CompanyHandler{
		actorResolver: actorResolver{usersRepo: usersRepo, logger: logger},
		companySvc:    companySvc,
		logger:        logger,
	}
}

// GET /fields/api/v1/company
func (h *CompanyHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.resolve(w, r)
	if !ok {
		return
	}

	company, err := h.companySvc.GetCompany(r.Context(), actor)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(company))
}

// PUT /fields/api/v1/company
func (h *CompanyHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.resolve(w, r)
	if !ok {
		return
	}

	var payload struct {
		Name     *string `json:"name"`
		Document *string `json:"document"`
	}
	if err := readBodyJSON(r, &payload); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	company, err := h.companySvc.UpdateCompany(r.Context(), service.UpdateCompanyRequest{
		Actor:    actor,
		Name:     payload.Name,
		Document: payload.Document,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(company))
}

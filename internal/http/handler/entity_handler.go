package handler

import (
	"fmt"
	"net/http"

	"github.com/straye-as/expense-gateway/internal/domain"
	"github.com/straye-as/expense-gateway/internal/service"
	"go.uber.org/zap"
)

// EntityHandler handles HTTP requests for the selectable collections
type EntityHandler struct {
	entityService *service.EntityService
	logger        *zap.Logger
}

// NewEntityHandler creates a new EntityHandler
func NewEntityHandler(entityService *service.EntityService, logger *zap.Logger) *EntityHandler {
	return &EntityHandler{
		entityService: entityService,
		logger:        logger,
	}
}

// ListContacts godoc
// @Summary List all contacts
// @Description Returns every non-archived contact, read to pagination exhaustion
// @Tags Entities
// @Produce json
// @Success 200 {object} domain.EntityListResponse
// @Failure 500 {object} domain.ProxyError
// @Router /contacts [get]
func (h *EntityHandler) ListContacts(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, domain.KindContact)
}

// ListCompanies godoc
// @Summary List all companies
// @Description Returns every non-archived company, read to pagination exhaustion
// @Tags Entities
// @Produce json
// @Success 200 {object} domain.EntityListResponse
// @Failure 500 {object} domain.ProxyError
// @Router /companies [get]
func (h *EntityHandler) ListCompanies(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, domain.KindCompany)
}

// ListGames godoc
// @Summary List all games
// @Description Returns every non-archived game record, read to pagination exhaustion
// @Tags Entities
// @Produce json
// @Success 200 {object} domain.EntityListResponse
// @Failure 500 {object} domain.ProxyError
// @Router /games [get]
func (h *EntityHandler) ListGames(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, domain.KindGame)
}

func (h *EntityHandler) list(w http.ResponseWriter, r *http.Request, kind domain.EntityKind) {
	resp, err := h.entityService.List(r.Context(), kind)
	if err != nil {
		h.logger.Error("entity list failed",
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
		respondProxyError(w, fmt.Sprintf("Failed to fetch %s", kind), err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

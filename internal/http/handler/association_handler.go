package handler

import (
	"encoding/json"
	"net/http"

	"github.com/straye-as/expense-gateway/internal/domain"
	"github.com/straye-as/expense-gateway/internal/service"
	"go.uber.org/zap"
)

// AssociationHandler handles HTTP requests for association creation
type AssociationHandler struct {
	associationService *service.AssociationService
	logger             *zap.Logger
}

// NewAssociationHandler creates a new AssociationHandler
func NewAssociationHandler(associationService *service.AssociationService, logger *zap.Logger) *AssociationHandler {
	return &AssociationHandler{
		associationService: associationService,
		logger:             logger,
	}
}

// associationBody tolerates both the generic entityId key and the historical
// kind-specific keys the first form client sent.
type associationBody struct {
	ExpenseID string `json:"expenseId"`
	EntityID  string `json:"entityId"`
	ContactID string `json:"contactId"`
	CompanyID string `json:"companyId"`
	GameID    string `json:"gameId"`
}

func (b *associationBody) entityID(kind domain.EntityKind) string {
	if b.EntityID != "" {
		return b.EntityID
	}
	switch kind {
	case domain.KindContact:
		return b.ContactID
	case domain.KindCompany:
		return b.CompanyID
	case domain.KindGame:
		return b.GameID
	}
	return ""
}

// CreateContactAssociation godoc
// @Summary Associate a contact with an expense
// @Tags Associations
// @Accept json
// @Produce json
// @Param request body domain.CreateAssociationRequest true "Expense and contact ids"
// @Success 200 {object} domain.CreateAssociationResponse
// @Failure 400 {object} domain.APIError
// @Failure 500 {object} domain.ProxyError
// @Router /create-association [post]
func (h *AssociationHandler) CreateContactAssociation(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, domain.KindContact)
}

// CreateCompanyAssociation godoc
// @Summary Associate a company with an expense
// @Tags Associations
// @Accept json
// @Produce json
// @Param request body domain.CreateAssociationRequest true "Expense and company ids"
// @Success 200 {object} domain.CreateAssociationResponse
// @Failure 400 {object} domain.APIError
// @Failure 500 {object} domain.ProxyError
// @Router /create-company-association [post]
func (h *AssociationHandler) CreateCompanyAssociation(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, domain.KindCompany)
}

// CreateGameAssociation godoc
// @Summary Associate a game with an expense
// @Tags Associations
// @Accept json
// @Produce json
// @Param request body domain.CreateAssociationRequest true "Expense and game ids"
// @Success 200 {object} domain.CreateAssociationResponse
// @Failure 400 {object} domain.APIError
// @Failure 500 {object} domain.ProxyError
// @Router /create-game-association [post]
func (h *AssociationHandler) CreateGameAssociation(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, domain.KindGame)
}

func (h *AssociationHandler) create(w http.ResponseWriter, r *http.Request, kind domain.EntityKind) {
	var body associationBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req := domain.CreateAssociationRequest{
		ExpenseID: body.ExpenseID,
		EntityID:  body.entityID(kind),
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	resp, err := h.associationService.Create(r.Context(), kind, req.ExpenseID, req.EntityID)
	if err != nil {
		h.logger.Error("association creation failed",
			zap.String("kind", string(kind)),
			zap.String("expense_id", req.ExpenseID),
			zap.Error(err),
		)
		respondProxyError(w, "Failed to create association", err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

package service

import (
	"context"
	"fmt"

	"github.com/straye-as/expense-gateway/internal/config"
	"github.com/straye-as/expense-gateway/internal/crm"
	"github.com/straye-as/expense-gateway/internal/domain"
	"go.uber.org/zap"
)

// AssociationService creates typed edges between a selected entity and a
// newly created expense record. Edges always run entity -> expense: the
// association paths are rooted at the entity's collection with the
// portal-qualified expense type on the far side.
type AssociationService struct {
	crm    *crm.Client
	cfg    *config.CRMConfig
	logger *zap.Logger
}

// NewAssociationService creates a new AssociationService instance
func NewAssociationService(crmClient *crm.Client, cfg *config.CRMConfig, logger *zap.Logger) *AssociationService {
	return &AssociationService{
		crm:    crmClient,
		cfg:    cfg,
		logger: logger,
	}
}

// Create associates one selected entity with one expense record. The
// association type id comes from configuration when overridden for the kind;
// otherwise the first entry of the CRM's vocabulary between the two object
// types is used, matching the CRM's own default-label convention.
func (s *AssociationService) Create(ctx context.Context, kind domain.EntityKind, expenseID, entityID string) (*domain.CreateAssociationResponse, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	fromType := s.objectType(kind)
	toType := s.cfg.ExpenseAssociationObject

	typeID, err := s.resolveTypeID(ctx, kind, fromType, toType)
	if err != nil {
		return nil, err
	}

	if err := s.crm.CreateAssociation(ctx, fromType, toType, typeID, entityID, expenseID); err != nil {
		return nil, err
	}

	s.logger.Info("association created",
		zap.String("kind", string(kind)),
		zap.String("expense_id", expenseID),
		zap.String("entity_id", entityID),
		zap.String("type_id", typeID),
	)

	return &domain.CreateAssociationResponse{Success: true, TypeID: typeID}, nil
}

func (s *AssociationService) resolveTypeID(ctx context.Context, kind domain.EntityKind, fromType, toType string) (string, error) {
	if override, ok := s.cfg.AssociationTypeOverrides[string(kind)]; ok && override != "" {
		return override, nil
	}

	types, err := s.crm.AssociationTypes(ctx, fromType, toType)
	if err != nil {
		return "", err
	}
	if len(types) == 0 {
		return "", fmt.Errorf("%w: %s -> %s", ErrNoAssociationType, fromType, toType)
	}

	return types[0].ID, nil
}

func (s *AssociationService) objectType(kind domain.EntityKind) string {
	switch kind {
	case domain.KindContact:
		return s.cfg.ContactsObject
	case domain.KindCompany:
		return s.cfg.CompaniesObject
	case domain.KindGame:
		return s.cfg.GamesObject
	}
	return string(kind)
}

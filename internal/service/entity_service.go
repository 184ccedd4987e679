package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/straye-as/expense-gateway/internal/config"
	"github.com/straye-as/expense-gateway/internal/crm"
	"github.com/straye-as/expense-gateway/internal/domain"
	"go.uber.org/zap"
)

// kindSpec describes how one selectable collection is fetched and projected:
// which CRM properties to request and how to reduce them to a display label.
type kindSpec struct {
	properties []string
	label      func(props map[string]string) string
}

var kindSpecs = map[domain.EntityKind]kindSpec{
	domain.KindContact: {
		properties: []string{"firstname", "lastname", "email"},
		label: func(p map[string]string) string {
			return domain.PersonLabel(p["firstname"], p["lastname"])
		},
	},
	domain.KindCompany: {
		properties: []string{"name"},
		label:      func(p map[string]string) string { return p["name"] },
	},
	domain.KindGame: {
		properties: []string{"name"},
		label:      func(p map[string]string) string { return p["name"] },
	},
}

type cachedList struct {
	results   []domain.SelectableEntity
	fetchedAt time.Time
}

// EntityService serves the selectable collections backing the expense form.
// Every list call reads the CRM collection to exhaustion and projects each
// record down to {id, label}; a short-lived snapshot cache absorbs repeated
// fetches from the form.
type EntityService struct {
	crm      *crm.Client
	cfg      *config.CRMConfig
	entities *config.EntitiesConfig
	logger   *zap.Logger

	mu    sync.RWMutex
	cache map[domain.EntityKind]cachedList
}

// NewEntityService creates a new EntityService instance
func NewEntityService(crmClient *crm.Client, cfg *config.CRMConfig, entities *config.EntitiesConfig, logger *zap.Logger) *EntityService {
	return &EntityService{
		crm:      crmClient,
		cfg:      cfg,
		entities: entities,
		logger:   logger,
		cache:    make(map[domain.EntityKind]cachedList),
	}
}

// List returns the full selectable set for one kind. Records whose label
// projects to the empty string are kept; the form renders them as blank rows
// the same way the CRM picker does.
//
// The games collection carries a configured static fallback: when the CRM
// list call fails and a fallback roster exists, the roster is served instead
// of the error.
func (s *EntityService) List(ctx context.Context, kind domain.EntityKind) (*domain.EntityListResponse, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	if cached, ok := s.fromCache(kind); ok {
		return &domain.EntityListResponse{Total: len(cached), Results: cached}, nil
	}

	results, err := s.fetch(ctx, kind)
	if err != nil {
		if fallback := s.fallbackFor(kind); fallback != nil {
			s.logger.Warn("serving static fallback roster",
				zap.String("kind", string(kind)),
				zap.Int("count", len(fallback)),
				zap.Error(err),
			)
			return &domain.EntityListResponse{Total: len(fallback), Results: fallback}, nil
		}
		return nil, err
	}

	s.store(kind, results)

	return &domain.EntityListResponse{Total: len(results), Results: results}, nil
}

// Warm refreshes the snapshot cache for every kind. Used by the scheduled
// warm job; per-kind failures are logged and do not abort the others.
func (s *EntityService) Warm(ctx context.Context) {
	for _, kind := range domain.AssociationOrder {
		results, err := s.fetch(ctx, kind)
		if err != nil {
			s.logger.Warn("entity cache warm failed",
				zap.String("kind", string(kind)),
				zap.Error(err),
			)
			continue
		}

		s.store(kind, results)
		s.logger.Info("entity cache warmed",
			zap.String("kind", string(kind)),
			zap.Int("count", len(results)),
		)
	}
}

func (s *EntityService) fetch(ctx context.Context, kind domain.EntityKind) ([]domain.SelectableEntity, error) {
	spec := kindSpecs[kind]

	objects, err := s.crm.ListObjects(ctx, s.objectType(kind), spec.properties, s.cfg.PageLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", kind, err)
	}

	results := make([]domain.SelectableEntity, 0, len(objects))
	for _, obj := range objects {
		results = append(results, domain.SelectableEntity{
			ID:    obj.ID,
			Label: spec.label(obj.Properties),
		})
	}

	s.logger.Debug("fetched entity collection",
		zap.String("kind", string(kind)),
		zap.Int("total", len(results)),
	)

	return results, nil
}

// objectType maps a kind to its configured CRM object type name.
func (s *EntityService) objectType(kind domain.EntityKind) string {
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

func (s *EntityService) fallbackFor(kind domain.EntityKind) []domain.SelectableEntity {
	if kind != domain.KindGame || len(s.entities.GameFallback) == 0 {
		return nil
	}

	results := make([]domain.SelectableEntity, 0, len(s.entities.GameFallback))
	for _, f := range s.entities.GameFallback {
		results = append(results, domain.SelectableEntity{ID: f.ID, Label: f.Label})
	}
	return results
}

func (s *EntityService) fromCache(kind domain.EntityKind) ([]domain.SelectableEntity, bool) {
	ttl := s.entities.CacheTTLDuration()
	if ttl <= 0 {
		return nil, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	cached, ok := s.cache[kind]
	if !ok || time.Since(cached.fetchedAt) > ttl {
		return nil, false
	}
	return cached.results, true
}

func (s *EntityService) store(kind domain.EntityKind, results []domain.SelectableEntity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[kind] = cachedList{results: results, fetchedAt: time.Now()}
}

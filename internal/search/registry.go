// Package search implements the incremental-search state behind the expense
// form's entity pickers. Each registry instance owns independent per-kind
// lists; nothing is shared between instances, so several forms can coexist
// in one process.
package search

import (
	"context"
	"strings"
	"sync"

	"github.com/straye-as/expense-gateway/internal/domain"
	"go.uber.org/zap"
)

// EntityFetcher supplies the full selectable set for one kind. Satisfied by
// apiclient.Client.
type EntityFetcher interface {
	ListEntities(ctx context.Context, kind domain.EntityKind) ([]domain.SelectableEntity, error)
}

// list is the state of one picker: the full fetched set, the live filtered
// view, the query text and the current selection.
type list struct {
	full     []domain.SelectableEntity
	filtered []domain.SelectableEntity
	query    string
	selected *domain.SelectableEntity
	open     bool
}

// Registry maintains the selectable lists for every configured kind, each
// with its own selection state and dropdown visibility.
type Registry struct {
	fetcher EntityFetcher
	logger  *zap.Logger

	mu    sync.Mutex
	lists map[domain.EntityKind]*list
}

// NewRegistry creates a registry over the given fetcher for the given kinds.
// An empty kinds slice registers the full default set.
func NewRegistry(fetcher EntityFetcher, logger *zap.Logger, kinds ...domain.EntityKind) *Registry {
	if len(kinds) == 0 {
		kinds = domain.AssociationOrder
	}

	lists := make(map[domain.EntityKind]*list, len(kinds))
	for _, k := range kinds {
		lists[k] = &list{}
	}

	return &Registry{
		fetcher: fetcher,
		logger:  logger,
		lists:   lists,
	}
}

// Load fetches the full set for one kind, replacing any previous set
// wholesale. A fetch failure leaves the picker usable with an empty set;
// the error is reported for the caller's banner but never panics the form.
func (r *Registry) Load(ctx context.Context, kind domain.EntityKind) error {
	l := r.list(kind)
	if l == nil {
		return nil
	}

	entities, err := r.fetcher.ListEntities(ctx, kind)

	r.mu.Lock()
	defer r.mu.Unlock()

	if err != nil {
		r.logger.Warn("entity load failed, picker starts empty",
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
		l.full = nil
		l.filtered = nil
		return err
	}

	l.full = entities
	l.filtered = entities
	return nil
}

// LoadAll loads every registered kind. Per-kind failures are independent;
// the first error is returned after all loads ran.
func (r *Registry) LoadAll(ctx context.Context) error {
	var firstErr error
	for _, kind := range domain.AssociationOrder {
		if r.list(kind) == nil {
			continue
		}
		if err := r.Load(ctx, kind); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Filter applies a case-folded substring match over labels and opens the
// dropdown. An empty query shows the full set, matching the on-focus and
// text-deleted behaviors. Source order is preserved.
func (r *Registry) Filter(kind domain.EntityKind, query string) []domain.SelectableEntity {
	l := r.list(kind)
	if l == nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	l.query = query
	l.open = true

	if query == "" {
		l.filtered = l.full
		return l.filtered
	}

	needle := strings.ToLower(query)
	filtered := make([]domain.SelectableEntity, 0, len(l.full))
	for _, e := range l.full {
		if strings.Contains(strings.ToLower(e.Label), needle) {
			filtered = append(filtered, e)
		}
	}

	l.filtered = filtered
	return filtered
}

// Select records the selection for one kind, replaces the query text with
// the selected label and hides the dropdown. Other kinds are untouched.
// Selecting an id absent from the current set reports false and changes
// nothing.
func (r *Registry) Select(kind domain.EntityKind, id string) bool {
	l := r.list(kind)
	if l == nil {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range l.full {
		if l.full[i].ID == id {
			selected := l.full[i]
			l.selected = &selected
			l.query = selected.Label
			l.filtered = l.full
			l.open = false
			return true
		}
	}

	return false
}

// Clear nulls the selection and the query text for one kind.
func (r *Registry) Clear(kind domain.EntityKind) {
	l := r.list(kind)
	if l == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	l.selected = nil
	l.query = ""
	l.filtered = l.full
	l.open = false
}

// ClearAll clears every kind. Used by the post-submission form reset.
func (r *Registry) ClearAll() {
	for kind := range r.lists {
		r.Clear(kind)
	}
}

// DismissOutside hides all open dropdowns without touching selections or
// query text. Item selection runs before outside-dismiss in the form's event
// order, so a click on an item is never swallowed here.
func (r *Registry) DismissOutside() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, l := range r.lists {
		l.open = false
	}
}

// Selection returns the current selection for one kind, when any.
func (r *Registry) Selection(kind domain.EntityKind) (domain.SelectableEntity, bool) {
	l := r.list(kind)
	if l == nil {
		return domain.SelectableEntity{}, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if l.selected == nil {
		return domain.SelectableEntity{}, false
	}
	return *l.selected, true
}

// Visible returns the entities the dropdown currently shows.
func (r *Registry) Visible(kind domain.EntityKind) []domain.SelectableEntity {
	l := r.list(kind)
	if l == nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return l.filtered
}

// Open reports whether the dropdown for one kind is showing.
func (r *Registry) Open(kind domain.EntityKind) bool {
	l := r.list(kind)
	if l == nil {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return l.open
}

// Query returns the current query text for one kind.
func (r *Registry) Query(kind domain.EntityKind) string {
	l := r.list(kind)
	if l == nil {
		return ""
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return l.query
}

func (r *Registry) list(kind domain.EntityKind) *list {
	return r.lists[kind]
}

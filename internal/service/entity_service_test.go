package service_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/straye-as/expense-gateway/internal/config"
	"github.com/straye-as/expense-gateway/internal/crm"
	"github.com/straye-as/expense-gateway/internal/domain"
	"github.com/straye-as/expense-gateway/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func entityConfig(srv *httptest.Server) *config.CRMConfig {
	return &config.CRMConfig{
		BaseURL:         srv.URL,
		AccessToken:     "test-token",
		ContactsObject:  "contacts",
		CompaniesObject: "companies",
		GamesObject:     "games",
		PageLimit:       100,
		RequestTimeout:  5,
	}
}

func TestEntityService_ContactLabelsTrimMissingParts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/crm/v3/objects/contacts", r.URL.Path)
		fmt.Fprint(w, `{"results":[
			{"id":"1","properties":{"firstname":"Lee","lastname":""}},
			{"id":"2","properties":{"lastname":"Amy"}},
			{"id":"3","properties":{"firstname":"Bob","lastname":"Stone"}}
		]}`)
	}))
	defer srv.Close()

	cfg := entityConfig(srv)
	svc := service.NewEntityService(crm.NewClient(cfg, zap.NewNop()), cfg, &config.EntitiesConfig{}, zap.NewNop())

	resp, err := svc.List(context.Background(), domain.KindContact)
	require.NoError(t, err)
	require.Equal(t, 3, resp.Total)

	assert.Equal(t, "Lee", resp.Results[0].Label)
	assert.Equal(t, "Amy", resp.Results[1].Label)
	assert.Equal(t, "Bob Stone", resp.Results[2].Label)
}

func TestEntityService_CompanyLabelUsesName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/crm/v3/objects/companies", r.URL.Path)
		assert.Equal(t, []string{"name"}, r.URL.Query()["properties"])
		fmt.Fprint(w, `{"results":[{"id":"10","properties":{"name":"Acme AS"}}]}`)
	}))
	defer srv.Close()

	cfg := entityConfig(srv)
	svc := service.NewEntityService(crm.NewClient(cfg, zap.NewNop()), cfg, &config.EntitiesConfig{}, zap.NewNop())

	resp, err := svc.List(context.Background(), domain.KindCompany)
	require.NoError(t, err)
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, "Acme AS", resp.Results[0].Label)
}

func TestEntityService_UnknownKindRejected(t *testing.T) {
	cfg := &config.CRMConfig{BaseURL: "http://unused", AccessToken: "x"}
	svc := service.NewEntityService(crm.NewClient(cfg, zap.NewNop()), cfg, &config.EntitiesConfig{}, zap.NewNop())

	_, err := svc.List(context.Background(), domain.EntityKind("deals"))
	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrUnknownKind)
}

func TestEntityService_GameFallbackServedOnUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	cfg := entityConfig(srv)
	entities := &config.EntitiesConfig{
		GameFallback: []config.FallbackEntity{
			{ID: "g1", Label: "Home opener"},
			{ID: "g2", Label: "Away derby"},
		},
	}
	svc := service.NewEntityService(crm.NewClient(cfg, zap.NewNop()), cfg, entities, zap.NewNop())

	resp, err := svc.List(context.Background(), domain.KindGame)
	require.NoError(t, err)
	require.Equal(t, 2, resp.Total)
	assert.Equal(t, "Home opener", resp.Results[0].Label)

	// contacts have no fallback: the same upstream failure surfaces
	_, err = svc.List(context.Background(), domain.KindContact)
	require.Error(t, err)
}

func TestEntityService_CacheServesSecondRead(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		fmt.Fprint(w, `{"results":[{"id":"1","properties":{"firstname":"Lee"}}]}`)
	}))
	defer srv.Close()

	cfg := entityConfig(srv)
	svc := service.NewEntityService(crm.NewClient(cfg, zap.NewNop()), cfg, &config.EntitiesConfig{CacheTTL: 300}, zap.NewNop())

	_, err := svc.List(context.Background(), domain.KindContact)
	require.NoError(t, err)
	_, err = svc.List(context.Background(), domain.KindContact)
	require.NoError(t, err)

	assert.Equal(t, 1, hits)
}

func TestEntityService_WarmPopulatesAllKinds(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		fmt.Fprint(w, `{"results":[]}`)
	}))
	defer srv.Close()

	cfg := entityConfig(srv)
	svc := service.NewEntityService(crm.NewClient(cfg, zap.NewNop()), cfg, &config.EntitiesConfig{CacheTTL: 300}, zap.NewNop())

	svc.Warm(context.Background())

	assert.Equal(t, []string{
		"/crm/v3/objects/contacts",
		"/crm/v3/objects/companies",
		"/crm/v3/objects/games",
	}, paths)

	// warmed snapshots satisfy reads without new upstream calls
	_, err := svc.List(context.Background(), domain.KindCompany)
	require.NoError(t, err)
	assert.Len(t, paths, 3)
}

package router_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/straye-as/expense-gateway/internal/apiclient"
	"github.com/straye-as/expense-gateway/internal/config"
	"github.com/straye-as/expense-gateway/internal/crm"
	"github.com/straye-as/expense-gateway/internal/domain"
	"github.com/straye-as/expense-gateway/internal/http/handler"
	"github.com/straye-as/expense-gateway/internal/http/middleware"
	"github.com/straye-as/expense-gateway/internal/http/router"
	"github.com/straye-as/expense-gateway/internal/search"
	"github.com/straye-as/expense-gateway/internal/service"
	"github.com/straye-as/expense-gateway/internal/spool"
	"github.com/straye-as/expense-gateway/internal/submit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newGateway assembles the full HTTP stack over a fake CRM.
func newGateway(t *testing.T, crmSrv *httptest.Server, staticDir string) *httptest.Server {
	t.Helper()

	cfg := &config.Config{
		App: config.AppConfig{Name: "Expense Gateway", Environment: "development", Port: 3000},
		CRM: config.CRMConfig{
			BaseURL:                  crmSrv.URL,
			AccessToken:              "test-token",
			ExpenseObject:            "expenses",
			ExpenseAssociationObject: "p44120672_expenses",
			ContactsObject:           "contacts",
			CompaniesObject:          "companies",
			GamesObject:              "games",
			ReceiptFolderName:        "expense-receipts",
			PageLimit:                100,
			RequestTimeout:           5,
		},
		Upload:    config.UploadConfig{MaxUploadSizeMB: 5, TempDir: t.TempDir()},
		RateLimit: config.RateLimitConfig{Enabled: false},
		Static:    config.StaticConfig{Dir: staticDir, IndexFile: "index.html"},
	}

	log := zap.NewNop()
	crmClient := crm.NewClient(&cfg.CRM, log)

	sp, err := spool.New(cfg.Upload.TempDir, log)
	require.NoError(t, err)

	entityService := service.NewEntityService(crmClient, &cfg.CRM, &cfg.Entities, log)
	expenseService := service.NewExpenseService(crmClient, &cfg.CRM, sp, log)
	associationService := service.NewAssociationService(crmClient, &cfg.CRM, log)

	rt := router.NewRouter(
		cfg,
		log,
		middleware.NewRateLimiter(&cfg.RateLimit, log),
		handler.NewExpenseHandler(expenseService, &cfg.Upload, log),
		handler.NewEntityHandler(entityService, log),
		handler.NewAssociationHandler(associationService, log),
	)

	srv := httptest.NewServer(rt.Setup())
	t.Cleanup(srv.Close)
	return srv
}

func TestRouter_HealthEndpoint(t *testing.T) {
	crmSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer crmSrv.Close()

	gw := newGateway(t, crmSrv, "")

	resp, err := http.Get(gw.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouter_StaticFallbackServesIndexForClientRoutes(t *testing.T) {
	crmSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer crmSrv.Close()

	staticDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(staticDir, "index.html"), []byte("<html>form</html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(staticDir, "app.js"), []byte("console.log(1)"), 0o644))

	gw := newGateway(t, crmSrv, staticDir)

	// real asset served as-is
	resp, err := http.Get(gw.URL + "/app.js")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// unmatched client route falls back to the index document
	resp, err = http.Get(gw.URL + "/expenses/new")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// unmatched API paths stay 404 instead of leaking the index page
	resp, err = http.Get(gw.URL + "/api/nope")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// TestEndToEnd_SubmissionWithoutSelections walks the whole chain: registry
// load through the gateway, an orchestrated submit with no selections, and
// the created CRM record carrying the amount mirror.
func TestEndToEnd_SubmissionWithoutSelections(t *testing.T) {
	var createdProps map[string]string
	var associationCalls int

	crmSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/crm/v3/objects/expenses" && r.Method == http.MethodPost:
			var body struct {
				Properties map[string]string `json:"properties"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			createdProps = body.Properties
			fmt.Fprint(w, `{"id":"exp-42"}`)
		case r.Method == http.MethodGet:
			fmt.Fprint(w, `{"results":[{"id":"1","properties":{"firstname":"Lee"}}]}`)
		default:
			associationCalls++
			fmt.Fprint(w, `{}`)
		}
	}))
	defer crmSrv.Close()

	gw := newGateway(t, crmSrv, "")
	client := apiclient.NewClient(gw.URL)

	registry := search.NewRegistry(client, zap.NewNop())
	require.NoError(t, registry.LoadAll(context.Background()))

	orchestrator := submit.NewOrchestrator(client, registry, zap.NewNop())

	result, err := orchestrator.Submit(context.Background(), domain.ExpenseProperties{
		Amount:      "42.50",
		ExpenseName: "Team dinner",
		PaymentType: "visa",
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, "exp-42", result.ExpenseID)
	assert.Empty(t, result.Associations)
	assert.Zero(t, associationCalls)

	assert.Equal(t, "42.50", createdProps["amount"])
	assert.Equal(t, "42.50", createdProps["visa_total"])
}

// TestEndToEnd_SelectionDrivesOneAssociation covers the happy path with one
// selected contact: exactly one association call follows the create.
func TestEndToEnd_SelectionDrivesOneAssociation(t *testing.T) {
	var batchCreates []string

	crmSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/crm/v3/objects/expenses":
			fmt.Fprint(w, `{"id":"exp-1"}`)
		case r.URL.Path == "/crm/v3/associations/contacts/p44120672_expenses/types":
			fmt.Fprint(w, `{"results":[{"id":"5","name":"contact_to_expense"}]}`)
		case r.URL.Path == "/crm/v3/associations/contacts/p44120672_expenses/batch/create":
			batchCreates = append(batchCreates, r.URL.Path)
			fmt.Fprint(w, `{"status":"COMPLETE"}`)
		case r.Method == http.MethodGet:
			fmt.Fprint(w, `{"results":[{"id":"c1","properties":{"firstname":"Lee"}}]}`)
		default:
			t.Fatalf("unexpected call %s %s", r.Method, r.URL.Path)
		}
	}))
	defer crmSrv.Close()

	gw := newGateway(t, crmSrv, "")
	client := apiclient.NewClient(gw.URL)

	registry := search.NewRegistry(client, zap.NewNop())
	require.NoError(t, registry.LoadAll(context.Background()))
	require.True(t, registry.Select(domain.KindContact, "c1"))

	orchestrator := submit.NewOrchestrator(client, registry, zap.NewNop())

	result, err := orchestrator.Submit(context.Background(), domain.ExpenseProperties{Amount: "99.00"}, nil)

	require.NoError(t, err)
	require.Len(t, result.Associations, 1)
	assert.True(t, result.Associations[0].Created)
	assert.Len(t, batchCreates, 1)

	// selections cleared after a successful cycle
	_, ok := registry.Selection(domain.KindContact)
	assert.False(t, ok)
}

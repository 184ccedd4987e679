package service_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/straye-as/expense-gateway/internal/config"
	"github.com/straye-as/expense-gateway/internal/crm"
	"github.com/straye-as/expense-gateway/internal/domain"
	"github.com/straye-as/expense-gateway/internal/service"
	"github.com/straye-as/expense-gateway/internal/spool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func crmConfig(srv *httptest.Server) *config.CRMConfig {
	return &config.CRMConfig{
		BaseURL:           srv.URL,
		AccessToken:       "test-token",
		ExpenseObject:     "expenses",
		ReceiptFolderName: "expense-receipts",
		PageLimit:         100,
		RequestTimeout:    5,
	}
}

func newExpenseService(t *testing.T, srv *httptest.Server) (*service.ExpenseService, string) {
	t.Helper()

	spoolDir := t.TempDir()
	sp, err := spool.New(spoolDir, zap.NewNop())
	require.NoError(t, err)

	cfg := crmConfig(srv)
	return service.NewExpenseService(crm.NewClient(cfg, zap.NewNop()), cfg, sp, zap.NewNop()), spoolDir
}

func requireEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "spooled attachments must be removed")
}

func TestExpenseService_SubmitWithoutAttachments(t *testing.T) {
	var created map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/crm/v3/objects/expenses", r.URL.Path)

		var body struct {
			Properties map[string]string `json:"properties"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		created = body.Properties

		fmt.Fprint(w, `{"id":"exp-1"}`)
	}))
	defer srv.Close()

	svc, _ := newExpenseService(t, srv)

	resp, err := svc.Submit(context.Background(), &domain.SubmitExpenseRequest{
		Properties: domain.ExpenseProperties{
			Amount:      "42.50",
			ExpenseName: "Team dinner",
			PaymentType: "visa",
		},
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, "exp-1", resp.Expense.ID)
	assert.Equal(t, "Expense submitted successfully", resp.Message)
	assert.Empty(t, resp.FileURLs)

	assert.Equal(t, "42.50", created["amount"])
	assert.Equal(t, "42.50", created["visa_total"])
	assert.NotEmpty(t, created["submission_id"])
}

func TestExpenseService_UploadPrecedesCreateAndSubstitutesURL(t *testing.T) {
	var calls []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.URL.Path)

		switch {
		case r.URL.Path == "/filemanager/api/v3/folders" && r.Method == http.MethodGet:
			fmt.Fprint(w, `{"objects":[{"id":222,"name":"expense-receipts"}]}`)
		case r.URL.Path == "/files/v3/files":
			require.NoError(t, r.ParseMultipartForm(1<<20))
			assert.Equal(t, "222", r.FormValue("folderId"))
			fmt.Fprint(w, `{"id":"f1","url":"https://cdn.example.com/r1.jpg"}`)
		case r.URL.Path == "/crm/v3/objects/expenses":
			var body struct {
				Properties map[string]string `json:"properties"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "https://cdn.example.com/r1.jpg", body.Properties["receipt_photo_1"])
			fmt.Fprint(w, `{"id":"exp-2"}`)
		default:
			t.Fatalf("unexpected call %s %s", r.Method, r.URL.Path)
		}
	}))
	defer srv.Close()

	svc, spoolDir := newExpenseService(t, srv)

	resp, err := svc.Submit(context.Background(), &domain.SubmitExpenseRequest{
		Properties: domain.ExpenseProperties{Amount: "10", PaymentType: "visa"},
	}, []service.Attachment{
		{Field: "receipt_photo_1", Filename: "r1.jpg", Data: strings.NewReader("jpeg-bytes")},
	})

	require.NoError(t, err)
	assert.Equal(t, "exp-2", resp.Expense.ID)

	require.Len(t, resp.FileURLs, 1)
	assert.Equal(t, "receipt_photo_1", resp.FileURLs[0].FieldName)
	assert.Equal(t, "https://cdn.example.com/r1.jpg", resp.FileURLs[0].URL)

	// upload happens before the create
	assert.Equal(t, []string{
		"/filemanager/api/v3/folders",
		"/files/v3/files",
		"/crm/v3/objects/expenses",
	}, calls)

	requireEmptyDir(t, spoolDir)
}

func TestExpenseService_SpoolCleanedOnUploadFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/filemanager/api/v3/folders":
			fmt.Fprint(w, `{"objects":[{"id":222,"name":"expense-receipts"}]}`)
		case "/files/v3/files":
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"message":"upload backend unavailable"}`)
		default:
			t.Fatalf("unexpected call %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	svc, spoolDir := newExpenseService(t, srv)

	_, err := svc.Submit(context.Background(), &domain.SubmitExpenseRequest{
		Properties: domain.ExpenseProperties{Amount: "10"},
	}, []service.Attachment{
		{Field: "receipt_photo_1", Filename: "r1.jpg", Data: strings.NewReader("jpeg-bytes")},
	})

	require.Error(t, err)
	requireEmptyDir(t, spoolDir)
}

func TestExpenseService_SpoolCleanedOnCreateFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/filemanager/api/v3/folders":
			fmt.Fprint(w, `{"objects":[{"id":222,"name":"expense-receipts"}]}`)
		case "/files/v3/files":
			fmt.Fprint(w, `{"id":"f1","url":"https://cdn.example.com/r1.jpg"}`)
		case "/crm/v3/objects/expenses":
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"message":"Property amount is required"}`)
		default:
			t.Fatalf("unexpected call %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	svc, spoolDir := newExpenseService(t, srv)

	_, err := svc.Submit(context.Background(), &domain.SubmitExpenseRequest{
		Properties: domain.ExpenseProperties{},
	}, []service.Attachment{
		{Field: "receipt_photo_1", Filename: "r1.jpg", Data: strings.NewReader("jpeg-bytes")},
	})

	require.Error(t, err)
	requireEmptyDir(t, spoolDir)
}

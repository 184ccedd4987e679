package router

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/straye-as/expense-gateway/internal/config"
	"github.com/straye-as/expense-gateway/internal/http/handler"
	"github.com/straye-as/expense-gateway/internal/http/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	_ "github.com/straye-as/expense-gateway/docs" // Import generated swagger docs
)

type Router struct {
	cfg                *config.Config
	logger             *zap.Logger
	rateLimiter        *middleware.RateLimiter
	expenseHandler     *handler.ExpenseHandler
	entityHandler      *handler.EntityHandler
	associationHandler *handler.AssociationHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	rateLimiter *middleware.RateLimiter,
	expenseHandler *handler.ExpenseHandler,
	entityHandler *handler.EntityHandler,
	associationHandler *handler.AssociationHandler,
) *Router {
	return &Router{
		cfg:                cfg,
		logger:             logger,
		rateLimiter:        rateLimiter,
		expenseHandler:     expenseHandler,
		entityHandler:      entityHandler,
		associationHandler: associationHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.Limit)

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Swagger documentation
	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	// API routes consumed by the expense form
	r.Route("/api", func(r chi.Router) {
		r.Post("/submit-expense", rt.expenseHandler.SubmitExpense)

		r.Get("/contacts", rt.entityHandler.ListContacts)
		r.Get("/companies", rt.entityHandler.ListCompanies)
		r.Get("/games", rt.entityHandler.ListGames)

		r.Post("/create-association", rt.associationHandler.CreateContactAssociation)
		r.Post("/create-company-association", rt.associationHandler.CreateCompanyAssociation)
		r.Post("/create-game-association", rt.associationHandler.CreateGameAssociation)
	})

	// Static form assets with an index fallback for client-side routing
	if rt.cfg.Static.Dir != "" {
		rt.mountStatic(r)
	}

	return r
}

// mountStatic serves the form's static assets. Any path that matches no file
// and no API route falls back to the index document so the client-side
// router owns navigation.
func (rt *Router) mountStatic(r chi.Router) {
	dir := rt.cfg.Static.Dir
	index := filepath.Join(dir, rt.cfg.Static.IndexFile)
	fileServer := http.FileServer(http.Dir(dir))

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		if strings.HasPrefix(req.URL.Path, "/api/") {
			http.NotFound(w, req)
			return
		}

		path := filepath.Join(dir, filepath.Clean("/"+req.URL.Path))
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			fileServer.ServeHTTP(w, req)
			return
		}

		http.ServeFile(w, req, index)
	})
}

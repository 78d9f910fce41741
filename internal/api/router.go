package api

import (
	"net/http"

	"github.com/pdcommons/service/internal/export"
	"github.com/pdcommons/service/internal/middleware"
	"github.com/pdcommons/service/internal/repository"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// RouterConfig carries everything the HTTP surface depends on.
type RouterConfig struct {
	JWTSecret   []byte
	Users       repository.UserRepository
	BulkUploads *BulkUploadsHandler
	BaseFields  *BaseFieldsHandler
	Proposals   *ProposalsHandler
	Export      *export.Handler
	Logger      *zap.Logger
}

// NewRouter assembles the REST surface. All routes require authentication.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(middleware.Auth(cfg.JWTSecret, cfg.Users, cfg.Logger))

	r.Route("/bulkUploads", func(r chi.Router) {
		r.Post("/", cfg.BulkUploads.Create)
		r.Get("/", cfg.BulkUploads.List)
	})
	r.Route("/baseFields", func(r chi.Router) {
		r.Get("/", cfg.BaseFields.List)
		r.Post("/", cfg.BaseFields.Create)
	})
	r.Route("/proposals", func(r chi.Router) {
		r.Get("/", cfg.Proposals.List)
		r.Get("/{proposalId}", cfg.Proposals.Get)
	})
	r.Get("/opportunities/{opportunityId}/export", cfg.Export.Export)

	return r
}

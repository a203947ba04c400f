package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/oscelab/osce-review/internal/api/handler"
	customMiddleware "github.com/oscelab/osce-review/internal/api/middleware"
	"github.com/oscelab/osce-review/internal/config"
	"github.com/oscelab/osce-review/internal/metrics"
	"github.com/oscelab/osce-review/internal/session"
)

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, store *session.Store, m *metrics.Metrics) (http.Handler, error) {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"X-Request-ID", "Content-Disposition"},
		MaxAge:         300,
	}))

	maxUploadBytes := cfg.Snapshots.MaxUploadMB << 20

	// Initialize handlers
	sessionHandler := handler.NewSessionHandler(store, m, cfg.Session.DefaultDurationMinutes)
	transcriptHandler := handler.NewTranscriptHandler(store, m)
	rubricHandler := handler.NewRubricHandler(store)
	suggestionHandler := handler.NewSuggestionHandler(store, m)
	reportHandler := handler.NewReportHandler(store, cfg.Mail.Recipient)
	exportHandler := handler.NewExportHandler(store, m, maxUploadBytes)
	snapshotHandler, err := handler.NewSnapshotHandler(store, m, cfg.Snapshots.Dir, maxUploadBytes)
	if err != nil {
		return nil, fmt.Errorf("initialize snapshot handler: %w", err)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", handler.HealthCheck)

		r.Route("/session", func(r chi.Router) {
			r.Get("/", sessionHandler.State)
			r.Post("/user", sessionHandler.SetUser)
			r.Post("/start", sessionHandler.Start)
			r.Post("/end", sessionHandler.End)
			r.Post("/clear", sessionHandler.Clear)
			r.Post("/resolve-pending", sessionHandler.ResolvePending)
			r.Get("/export", exportHandler.Export)
			r.Post("/import", exportHandler.Import)
		})

		r.Post("/transcript", transcriptHandler.Append)
		r.Put("/rubric/{itemID}", rubricHandler.SetStatus)

		r.Route("/suggestion", func(r chi.Router) {
			r.Post("/", suggestionHandler.Propose)
			r.Post("/accept", suggestionHandler.Accept)
			r.Post("/reject", suggestionHandler.Reject)
		})

		r.Route("/report", func(r chi.Router) {
			r.Get("/summary", reportHandler.Summary)
			r.Get("/email", reportHandler.Email)
		})

		r.Post("/snapshots", snapshotHandler.Upload)
	})

	if cfg.Metrics.Enabled {
		r.Method(http.MethodGet, cfg.Metrics.Path, m.Handler())
	}

	return r, nil
}

package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/atlasfit/gym-crm-platform/internal/forms"
	httpmiddleware "github.com/atlasfit/gym-crm-platform/internal/http/middleware"
	"github.com/atlasfit/gym-crm-platform/internal/ingest"
	"github.com/atlasfit/gym-crm-platform/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger             *logging.Logger
	FormsHandler       *forms.Handler
	WebhookHandler     *ingest.Handler
	MetricsHandler     http.Handler
	AdminAuthSecret    string
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints (webhooks, health checks)
	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)
		if cfg.WebhookHandler != nil {
			public.Route("/webhooks/facebook/leads", func(wh chi.Router) {
				wh.Use(httpmiddleware.RateLimit(10, 30))
				wh.Get("/", cfg.WebhookHandler.Verify)
				wh.Post("/", cfg.WebhookHandler.Receive)
			})
		}
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	// Org-scoped mapping configuration endpoints
	if cfg.FormsHandler != nil {
		r.Group(func(tenant chi.Router) {
			tenant.Use(requireOrgID)
			if cfg.AdminAuthSecret != "" {
				tenant.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			}
			tenant.Route("/forms/{formID}/mappings", func(fm chi.Router) {
				fm.Get("/", cfg.FormsHandler.GetMappings)
				fm.Put("/", cfg.FormsHandler.SaveMappings)
				fm.Post("/detect", cfg.FormsHandler.DetectMappings)
				fm.Post("/suggest", cfg.FormsHandler.SuggestMappings)
			})
		})
	}

	return r
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/salt-byte/cinematic-mirror/backend/internal/handler/catalog"
	"github.com/salt-byte/cinematic-mirror/backend/internal/handler/consultation"
	"github.com/salt-byte/cinematic-mirror/backend/internal/handler/interview"
	"github.com/salt-byte/cinematic-mirror/backend/internal/metrics"
	middlewarePkg "github.com/salt-byte/cinematic-mirror/backend/internal/middleware"
	"github.com/salt-byte/cinematic-mirror/backend/internal/model/character"
	consultationService "github.com/salt-byte/cinematic-mirror/backend/internal/service/consultation"
	interviewService "github.com/salt-byte/cinematic-mirror/backend/internal/service/interview"
	"github.com/salt-byte/cinematic-mirror/backend/pkg/utils"
)

// Dependencies 路由所需的服务
type Dependencies struct {
	Characters   character.Store
	Interview    *interviewService.Service
	Consultation *consultationService.Service
	Auth         *middlewarePkg.Authenticator
	// RateLimiter may be nil.
	RateLimiter *middlewarePkg.RateLimiter
	// Metrics may be nil, in which case /metrics is not mounted.
	Metrics *metrics.Metrics
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			utils.RespondData(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		catalog.New(deps.Characters).RegisterRoutes(api)

		api.Group(func(private chi.Router) {
			private.Use(deps.Auth.Middleware)
			if deps.RateLimiter != nil {
				private.Use(deps.RateLimiter.Middleware)
			}

			interview.New(deps.Interview).RegisterRoutes(private)
			consultation.New(deps.Consultation).RegisterRoutes(private)
		})
	})

	return r
}

package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/secmon-lab/polyconn/pkg/usecase"
)

type Server struct {
	router   *chi.Mux
	uc       *usecase.UseCases
	safeMode bool
}

type Options func(*Server)

// WithSafeMode rejects every DELETE request with blocked_by_policy
func WithSafeMode(enabled bool) Options {
	return func(s *Server) {
		s.safeMode = enabled
	}
}

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		uc:     uc,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)
	if s.safeMode {
		r.Use(safeModeMiddleware)
	}

	r.Get("/health", healthHandler)

	r.Route("/connections", func(r chi.Router) {
		r.Get("/", s.listConnections)
		r.Post("/", s.createConnection)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getConnection)
			r.Patch("/", s.updateConnection)
			r.Delete("/", s.deleteConnection)

			r.Get("/data-sources", s.listDataSources)
			r.Post("/data-sources", s.createDataSource)
			r.Delete("/data-sources/{dsId}", s.deleteDataSource)

			r.Get("/discover", s.discover)
			r.Get("/data", s.fetchData)
		})
	})

	r.Route("/endpoints", func(r chi.Router) {
		r.Get("/", s.listEndpoints)
		r.Get("/{provider}", s.providerEndpoints)
		r.Get("/{provider}/info", s.providerInfo)
	})

	r.Get("/environment/services", s.environmentServices)
	r.Get("/activities", s.listActivities)

	r.Route("/pipelines", func(r chi.Router) {
		r.Get("/", s.listPipelines)
		r.Post("/", s.createPipeline)
		r.Get("/{id}", s.getPipeline)
		r.Patch("/{id}", s.updatePipeline)
		r.Delete("/{id}", s.deletePipeline)
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

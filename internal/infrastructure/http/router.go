package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/amirhosseinghanipour/taskboard/internal/infrastructure/http/handlers"
	"github.com/amirhosseinghanipour/taskboard/internal/infrastructure/http/middleware"
)

const apiVersion = "1"

type RouterConfig struct {
	BoardHandler  *handlers.BoardHandler
	HealthHandler http.Handler
	Log           zerolog.Logger
	Secure        func(http.Handler) http.Handler
	CORSOrigins   []string
	IPRateLimit   func(http.Handler) http.Handler
	Metrics       bool // expose /metrics
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimid.RequestID)
	r.Use(chimid.RealIP)
	r.Use(loggerMiddleware(cfg.Log))
	r.Use(chimid.Recoverer)
	if cfg.Metrics {
		r.Use(middleware.PrometheusMiddleware)
	}
	if cfg.Secure != nil {
		r.Use(cfg.Secure)
	}
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(chimid.SetHeader("X-API-Version", apiVersion))

	if cfg.HealthHandler != nil {
		r.Get("/health", cfg.HealthHandler.ServeHTTP)
	} else {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
	}
	if cfg.Metrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(chimid.AllowContentType("application/json"))
		r.Use(chimid.SetHeader("Content-Type", "application/json"))
		if cfg.IPRateLimit != nil {
			r.Use(cfg.IPRateLimit)
		}
		h := cfg.BoardHandler
		r.Get("/setup", h.Setup)
		r.Post("/project", h.CreateProject)
		r.Delete("/project", h.DeleteProject)
		r.Post("/task", h.AddTask)
		r.Patch("/task", h.UpdateTask)
		// {id} is a user id for GET and a project id for DELETE and /tasks.
		r.Get("/projects/{id}", h.ListProjects)
		r.Delete("/projects/{id}", h.DeleteTasks)
		r.Get("/projects/{id}/tasks", h.ListTasks)
	})

	return r
}

func loggerMiddleware(log zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := chimid.GetReqID(r.Context())
			log.Info().
				Str("request_id", reqID).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Msg("request")
			next.ServeHTTP(w, r)
		})
	}
}

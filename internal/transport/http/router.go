package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"moments_api/internal/handler"
	"moments_api/internal/httputil"
	"moments_api/internal/metrics"
	authmw "moments_api/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	AuthHandler     *handler.AuthHandler
	PostHandler     *handler.PostHandler
	CommentHandler  *handler.CommentHandler
	LikeHandler     *handler.LikeHandler
	FollowerHandler *handler.FollowerHandler
	ProfileHandler  *handler.ProfileHandler
	TokenParser     authmw.TokenParser
	Logger          logrus.FieldLogger
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(authmw.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	r.Use(metrics.InstrumentHandler)

	// Health check endpoint (useful for deployment/monitoring)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	// Every API route resolves the viewer; anonymous requests may read.
	r.Group(func(r chi.Router) {
		r.Use(authmw.Authenticate(cfg.TokenParser))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", cfg.AuthHandler.Register)
			r.Post("/login", cfg.AuthHandler.Login)
			r.Post("/refresh", cfg.AuthHandler.Refresh)
			r.Post("/logout", cfg.AuthHandler.Logout)
			r.Post("/logout-all", cfg.AuthHandler.LogoutAll)
		})
		r.Get("/me", cfg.AuthHandler.Me)

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", cfg.PostHandler.List)
			r.Post("/", cfg.PostHandler.Create)
			r.Get("/{id:[0-9]+}", cfg.PostHandler.Get)
			r.Put("/{id:[0-9]+}", cfg.PostHandler.Update)
			r.Delete("/{id:[0-9]+}", cfg.PostHandler.Delete)
		})

		r.Route("/comments", func(r chi.Router) {
			r.Get("/", cfg.CommentHandler.List)
			r.Post("/", cfg.CommentHandler.Create)
			r.Get("/{id:[0-9]+}", cfg.CommentHandler.Get)
			r.Put("/{id:[0-9]+}", cfg.CommentHandler.Update)
			r.Delete("/{id:[0-9]+}", cfg.CommentHandler.Delete)
		})

		r.Route("/likes", func(r chi.Router) {
			r.Get("/", cfg.LikeHandler.List)
			r.Post("/", cfg.LikeHandler.Create)
			r.Get("/{id:[0-9]+}", cfg.LikeHandler.Get)
			r.Delete("/{id:[0-9]+}", cfg.LikeHandler.Delete)
		})

		r.Route("/followers", func(r chi.Router) {
			r.Get("/", cfg.FollowerHandler.List)
			r.Post("/", cfg.FollowerHandler.Create)
			r.Get("/{id:[0-9]+}", cfg.FollowerHandler.Get)
			r.Delete("/{id:[0-9]+}", cfg.FollowerHandler.Delete)
		})

		r.Route("/profiles", func(r chi.Router) {
			r.Get("/", cfg.ProfileHandler.List)
			r.Get("/{id:[0-9]+}", cfg.ProfileHandler.Get)
			r.Put("/{id:[0-9]+}", cfg.ProfileHandler.Update)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteNotFound(w, "Not found.")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed.")
	})

	return r
}

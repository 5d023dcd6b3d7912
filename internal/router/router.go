package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"snagdef/internal/config"
	"snagdef/internal/handler"
	"snagdef/internal/middleware"
	"snagdef/internal/websocket"
)

type Handlers struct {
	Auth   *handler.AuthHandler
	Agents *handler.AgentsHandler
}

func New(cfg *config.Config, authMiddleware *middleware.AuthMiddleware, h Handlers, hub *websocket.Hub) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"SnagDef Backend Running"}`))
	})
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/auth", func(auth chi.Router) {
		auth.Use(middleware.Timeout(cfg.RequestTimeout))

		auth.Post("/register", h.Auth.Register)
		auth.Post("/login", h.Auth.Login)
		auth.Post("/refresh", h.Auth.Refresh)
		auth.With(authMiddleware.RequireAuth, authMiddleware.RequireAdmin).Get("/admin-only", h.Auth.AdminOnly)
	})

	r.Route("/agents", func(agents chi.Router) {
		agents.Use(middleware.Timeout(cfg.RequestTimeout))
		agents.Use(authMiddleware.RequireAuth)

		agents.Post("/recon", h.Agents.Recon)
		agents.Post("/threat-detect", h.Agents.ThreatDetect)
		agents.Post("/incident-response", h.Agents.IncidentResponse)
		agents.Post("/forensics", h.Agents.Forensics)
	})

	// The alert stream bypasses the timeout wrapper: connections are
	// long-lived and the upgrade needs the raw response writer.
	r.Get("/ws/alerts", func(w http.ResponseWriter, r *http.Request) {
		websocket.ServeWS(hub, w, r)
	})

	return r
}

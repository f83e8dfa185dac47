// Package server hosts the dashboard HTTP surface: the OAuth login flow,
// the session-gated API, and the live event feed.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/guildkeeper/guildkeeper/internal/auth"
	"github.com/guildkeeper/guildkeeper/internal/logging"
	"golang.org/x/oauth2"
)

// Config holds server configuration.
type Config struct {
	Host     string
	Port     int
	AllowAll bool // allow all CORS origins (dev mode)
}

// Server is the dashboard HTTP server. Feature packages register their
// routes on the authenticated router group.
type Server struct {
	cfg        Config
	sessions   *auth.Sessions
	router     chi.Router
	httpServer *http.Server
}

// New creates the server and mounts the login flow. register is called
// with the session-gated router group; feature packages add their API
// routes there.
func New(cfg Config, oauthConf *oauth2.Config, sessions *auth.Sessions, register func(chi.Router)) *Server {
	s := &Server{cfg: cfg, sessions: sessions}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	auth.RegisterRoutes(r, oauthConf, sessions)

	r.Group(func(r chi.Router) {
		r.Use(sessions.RequireSession)
		register(r)
	})

	s.router = r
	return s
}

// Router returns the chi router, mainly for tests.
func (s *Server) Router() chi.Router { return s.router }

// Start begins listening on the configured address.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log := logging.GetLogger("server")
	log.Info().Str("addr", addr).Msg("dashboard listening")
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

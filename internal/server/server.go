// Package server exposes portfolio charts over HTTP
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/app"
	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/common"
)

// Server wraps the HTTP server and application reference.
type Server struct {
	app    *app.App
	router *gin.Engine
	server *http.Server
	logger *common.Logger
}

// NewServer creates a new HTTP REST API server.
func NewServer(a *app.App) *Server {
	if a.Config.IsProduction() || a.Config.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		app:    a,
		logger: a.Logger,
	}
	s.router = s.setupRouter()

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", a.Config.Server.Host, a.Config.Server.Port),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the HTTP handler for testing.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server (blocking).
func (s *Server) Start() error {
	s.logger.Info().
		Str("addr", s.server.Addr).
		Msg("Starting REST API server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Package server exposes the requirements pipeline as a single-page web form
// and a small JSON API.
package server

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/karolswdev/reqsmith/internal/pipeline"
	"github.com/karolswdev/reqsmith/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

const shutdownTimeout = 10 * time.Second

// Config holds the web front end settings.
type Config struct {
	Addr           string
	AllowedOrigins []string
	Version        string
	// SecureCookie marks the session cookie Secure; set when served over TLS.
	SecureCookie bool
}

// Server serves the form and API over one pipeline.
type Server struct {
	cfg      Config
	pipeline *pipeline.Pipeline
	sessions *session.Manager
	engine   *gin.Engine
}

// New builds the router. It does not start listening.
func New(cfg Config, p *pipeline.Pipeline, sessions *session.Manager) *Server {
	s := &Server{cfg: cfg, pipeline: p, sessions: sessions}

	engine := gin.New()
	engine.HandleMethodNotAllowed = true
	engine.SetHTMLTemplate(template.Must(template.ParseFS(templateFS, "templates/*.html")))
	engine.Use(gin.Recovery(), requestLogger())
	if len(cfg.AllowedOrigins) > 0 {
		engine.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.AllowedOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost},
			AllowHeaders:     []string{"Content-Type", RequestIDHeader, SessionHeader},
			ExposeHeaders:    []string{RequestIDHeader, SessionHeader, "Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	NewHealthHandler("reqsmith", cfg.Version, sessions.Store()).RegisterRoutes(engine)

	app := engine.Group("/", sessionBinder(sessions, cfg.SecureCookie))
	s.Register(app)

	s.engine = engine
	return s
}

// Register attaches the form and API routes to rg.
func (s *Server) Register(rg *gin.RouterGroup) {
	rg.GET("/", s.index)
	rg.POST("/generate", s.generate)
	rg.GET("/export", s.export)
	rg.POST("/ticket", s.ticket)

	api := rg.Group("/api/v1")
	api.GET("/options", s.options)
	api.GET("/document", s.document)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run listens on cfg.Addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.cfg.Addr).Msg("Listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Info().Msg("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

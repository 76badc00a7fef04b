package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ziadkadry99/flinsight/internal/compliance"
	"github.com/ziadkadry99/flinsight/internal/logger"
	"github.com/ziadkadry99/flinsight/internal/metrics"
)

// Config holds server configuration.
type Config struct {
	Port           int
	AllowedOrigins []string
	// RequestTimeout bounds every non-streaming request. Zero means 120s.
	RequestTimeout time.Duration
}

// Server is the flinsight HTTP API.
type Server struct {
	cfg        Config
	svc        *compliance.Service
	weather    compliance.WeatherReporter
	router     chi.Router
	httpServer *http.Server
}

// New creates a server backed by svc. weather may be nil, in which case
// every observation renders as N/A.
func New(cfg Config, svc *compliance.Service, weather compliance.WeatherReporter) *Server {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 120 * time.Second
	}
	s := &Server{
		cfg:     cfg,
		svc:     svc,
		weather: weather,
	}
	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.Middleware)
	r.Use(middleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "no route for "+r.Method+" "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", r.Method+" is not allowed on "+r.URL.Path)
	})

	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.cfg.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))

		// The websocket outlives any request timeout.
		r.Get("/chat/ws", s.handleChatWebSocket)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(s.cfg.RequestTimeout))

			r.Get("/health", handleHealth)
			r.Get("/aircraft", s.handleAircraft)
			r.Post("/weather_at", s.handleWeatherAt)
			r.Post("/analyze-flight", s.handleAnalyzeFlight)
			r.Get("/regulations", s.handleRegulations)
			r.Get("/fetch-faa-updates", s.handleFAAUpdates)
			r.Post("/generate-action-items", s.handleGenerateActionItems)
			r.Get("/action-items", s.handleListActionItems)
			r.Post("/chat", s.handleChat)
		})
	})

	return r
}

// Router returns the chi router.
func (s *Server) Router() chi.Router { return s.router }

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info().Str("addr", addr).Msg("flinsight server listening")
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MeKo-Tech/cropkit/internal/editor"
	"github.com/MeKo-Tech/cropkit/internal/loader"
)

// Config holds server configuration.
type Config struct {
	Host           string
	Port           int
	CORSOrigin     string
	MaxUploadMB    int64
	SessionTimeout time.Duration
	EditorOptions  editor.Options
	LoaderConfig   loader.Config
	RateLimit      RateLimitConfig
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerMinute int
	RequestsPerHour   int
}

// Server hosts interactive crop editing sessions over HTTP and WebSocket.
type Server struct {
	sessions    *sessionRegistry
	loader      *loader.Loader
	editorOpts  editor.Options
	corsOrigin  string
	maxUploadMB int64
	rateLimiter *RateLimiter
}

// NewServer creates a session server from config.
func NewServer(config Config) *Server {
	timeout := config.SessionTimeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	s := &Server{
		sessions:    newSessionRegistry(timeout),
		loader:      loader.New(config.LoaderConfig),
		editorOpts:  config.EditorOptions,
		corsOrigin:  config.CORSOrigin,
		maxUploadMB: config.MaxUploadMB,
	}
	if config.RateLimit.Enabled {
		s.rateLimiter = NewRateLimiter(config.RateLimit.RequestsPerMinute, config.RateLimit.RequestsPerHour)
	}
	return s
}

// Close tears down all live sessions, cancelling any in-flight image loads.
func (s *Server) Close() error {
	s.sessions.closeAll()
	return nil
}

// SetupRoutes configures the HTTP routes.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.corsMiddleware(s.healthHandler))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("POST /session", s.corsMiddleware(s.rateLimitMiddleware(s.createSessionHandler)))
	mux.HandleFunc("GET /session/{id}", s.corsMiddleware(s.sessionStateHandler))
	mux.HandleFunc("DELETE /session/{id}", s.corsMiddleware(s.deleteSessionHandler))
	mux.HandleFunc("POST /session/{id}/reset", s.corsMiddleware(s.controlHandler((*editor.Editor).Reset)))
	mux.HandleFunc("POST /session/{id}/flip-x", s.corsMiddleware(s.controlHandler((*editor.Editor).FlipX)))
	mux.HandleFunc("POST /session/{id}/flip-y", s.corsMiddleware(s.controlHandler((*editor.Editor).FlipY)))
	mux.HandleFunc("POST /session/{id}/rotate-right", s.corsMiddleware(s.controlHandler((*editor.Editor).RotateRight)))
	mux.HandleFunc("POST /session/{id}/save", s.corsMiddleware(s.saveHandler))
	mux.HandleFunc("GET /session/{id}/gestures", s.gestureSocketHandler)
}

// HealthResponse reports server liveness.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// SessionResponse describes a session to API clients.
type SessionResponse struct {
	ID      string                   `json:"id"`
	Loaded  bool                     `json:"loaded"`
	Error   string                   `json:"error,omitempty"`
	Image   *editor.ImageLayerStyle  `json:"image,omitempty"`
	Overlay *editor.CropOverlayStyle `json:"overlay,omitempty"`
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

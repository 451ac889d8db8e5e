// Package server exposes the ticket ingestion service over HTTP.
package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/KUKARAF/ordning/internal/calendar"
	"github.com/KUKARAF/ordning/internal/pipeline"
	"github.com/KUKARAF/ordning/internal/ticket"
)

// Server holds the HTTP server state and dependencies.
type Server struct {
	service     *pipeline.Service
	corsOrigin  string
	maxUploadMB int64
	uploadDir   string
	rateLimiter *RateLimiter
	authSecret  []byte
}

// Config holds server configuration.
type Config struct {
	CORSOrigin  string
	MaxUploadMB int64
	UploadDir   string
	RateLimiter *RateLimiter

	// AuthSecret, when set, makes mutating endpoints require a bearer
	// token signed with this key.
	AuthSecret []byte
}

// TicketResponse wraps a single ticket record.
type TicketResponse struct {
	Success bool           `json:"success"`
	Ticket  *ticket.Ticket `json:"ticket,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// TicketListResponse wraps a list of ticket records.
type TicketListResponse struct {
	Success bool            `json:"success"`
	Tickets []ticket.Ticket `json:"tickets"`
	Count   int             `json:"count"`
}

// EventResponse wraps a calendar event derived from a ticket.
type EventResponse struct {
	Success bool            `json:"success"`
	Event   *calendar.Event `json:"event,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// StatsResponse wraps the store statistics.
type StatsResponse struct {
	Success bool           `json:"success"`
	Stats   pipeline.Stats `json:"stats"`
}

// HealthResponse reports server health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Time    string `json:"time"`
}

// ErrorResponse is the JSON body of failed requests.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// NewServer creates a server around an existing ingestion service.
func NewServer(svc *pipeline.Service, config Config) *Server {
	uploadDir := config.UploadDir
	if uploadDir == "" {
		uploadDir = "uploads"
	}
	return &Server{
		service:     svc,
		corsOrigin:  config.CORSOrigin,
		maxUploadMB: config.MaxUploadMB,
		uploadDir:   uploadDir,
		rateLimiter: config.RateLimiter,
		authSecret:  config.AuthSecret,
	}
}

// SetupRoutes configures the HTTP routes. Mutating routes go through the
// auth middleware, which is a no-op unless an auth secret is configured.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /ingest", s.corsMiddleware(s.authMiddleware(s.rateLimitMiddleware(s.ingestHandler))))
	mux.HandleFunc("GET /tickets", s.corsMiddleware(s.listTicketsHandler))
	mux.HandleFunc("GET /tickets/{id}", s.corsMiddleware(s.getTicketHandler))
	mux.HandleFunc("GET /tickets/{id}/event", s.corsMiddleware(s.eventHandler))
	mux.HandleFunc("POST /tickets/{id}/reprocess", s.corsMiddleware(s.authMiddleware(s.reprocessHandler)))
	mux.HandleFunc("DELETE /tickets/{id}", s.corsMiddleware(s.authMiddleware(s.deleteTicketHandler)))
	mux.HandleFunc("GET /stats", s.corsMiddleware(s.statsHandler))
	mux.HandleFunc("GET /health", s.corsMiddleware(s.healthHandler))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("OPTIONS /", s.corsMiddleware(func(w http.ResponseWriter, r *http.Request) {}))
}

package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/KUKARAF/ordning/internal/calendar"
	"github.com/KUKARAF/ordning/internal/pipeline"
	"github.com/KUKARAF/ordning/internal/ticket"
	"github.com/KUKARAF/ordning/internal/version"
)

// healthHandler returns server health status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:  "healthy",
		Version: version.Version,
		Time:    time.Now().UTC().Format(time.RFC3339),
	}

	s.writeJSON(w, http.StatusOK, response)
}

// ingestHandler accepts a multipart PDF upload and runs it through the
// ingestion pipeline. Duplicate uploads are rejected with 409.
func (s *Server) ingestHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadMB*1024*1024)

	if err := r.ParseMultipartForm(s.maxUploadMB * 1024 * 1024); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "too large") {
			s.writeError(w, "File too large", http.StatusRequestEntityTooLarge)
		} else {
			s.writeError(w, "Failed to parse form data", http.StatusBadRequest)
		}
		return
	}

	file, header, err := r.FormFile("pdf")
	if err != nil {
		s.writeError(w, "No PDF file provided", http.StatusBadRequest)
		return
	}
	defer func() { _ = file.Close() }()

	if header.Size > s.maxUploadMB*1024*1024 {
		s.writeError(w, "File too large", http.StatusRequestEntityTooLarge)
		return
	}

	// The pipeline reads from disk, so spool the upload first. The file is
	// kept afterwards: reprocessing re-reads it from this path.
	path, err := s.spoolUpload(file, header.Filename)
	if err != nil {
		s.writeError(w, "Failed to store upload", http.StatusInternalServerError)
		return
	}
	uploadSizeBytes.Observe(float64(header.Size))

	start := time.Now()
	t, err := s.service.Ingest(r.Context(), path)
	if errors.Is(err, pipeline.ErrTicketExists) {
		_ = os.Remove(path)
		ingestTotal.WithLabelValues("duplicate").Inc()
		s.writeError(w, "Ticket already ingested", http.StatusConflict)
		return
	}
	if err != nil {
		ingestTotal.WithLabelValues("error").Inc()
		s.writeError(w, fmt.Sprintf("Ingestion failed: %v", err), http.StatusInternalServerError)
		return
	}
	ingestDuration.Observe(time.Since(start).Seconds())
	if t.Processed {
		ingestTotal.WithLabelValues("ok").Inc()
	} else {
		ingestTotal.WithLabelValues("failed").Inc()
	}

	s.writeJSON(w, http.StatusCreated, TicketResponse{Success: true, Ticket: t})
}

// spoolUpload writes the uploaded file under the upload directory using a
// unique name that keeps the original filename recognizable.
func (s *Server) spoolUpload(file io.Reader, filename string) (string, error) {
	if err := os.MkdirAll(s.uploadDir, 0o750); err != nil {
		return "", err
	}

	base := filepath.Base(filename)
	if base == "." || base == "/" || base == "" {
		base = "upload.pdf"
	}
	path := filepath.Join(s.uploadDir, uuid.NewString()[:8]+"_"+base)

	out, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, file); err != nil {
		_ = os.Remove(path)
		return "", err
	}
	return path, nil
}

// listTicketsHandler returns stored tickets, optionally filtered by query
// parameters: mode, location, processed, from/to (RFC 3339 dates).
func (s *Server) listTicketsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var (
		tickets []ticket.Ticket
		err     error
	)
	switch {
	case q.Get("mode") != "":
		tickets, err = s.service.ListByTravelMode(ticket.TravelMode(strings.ToUpper(q.Get("mode"))))
	case q.Get("location") != "":
		tickets, err = s.service.ListByLocation(q.Get("location"))
	case q.Get("from") != "" || q.Get("to") != "":
		var start, end time.Time
		start, end, err = parseDateRange(q.Get("from"), q.Get("to"))
		if err != nil {
			s.writeError(w, err.Error(), http.StatusBadRequest)
			return
		}
		tickets, err = s.service.ListByDateRange(start, end)
	default:
		tickets, err = s.service.List()
	}
	if err != nil {
		s.writeError(w, "Failed to list tickets", http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, http.StatusOK, TicketListResponse{
		Success: true,
		Tickets: tickets,
		Count:   len(tickets),
	})
}

func parseDateRange(from, to string) (time.Time, time.Time, error) {
	start := time.Time{}
	end := time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)

	var err error
	if from != "" {
		if start, err = time.Parse(time.RFC3339, from); err != nil {
			return start, end, fmt.Errorf("invalid 'from' timestamp: %s", from)
		}
	}
	if to != "" {
		if end, err = time.Parse(time.RFC3339, to); err != nil {
			return start, end, fmt.Errorf("invalid 'to' timestamp: %s", to)
		}
	}
	return start, end, nil
}

// getTicketHandler returns a single ticket by id.
func (s *Server) getTicketHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := s.ticketID(w, r)
	if !ok {
		return
	}

	t, err := s.service.Get(id)
	if errors.Is(err, pipeline.ErrTicketNotFound) {
		s.writeError(w, "Ticket not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.writeError(w, "Failed to load ticket", http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, http.StatusOK, TicketResponse{Success: true, Ticket: t})
}

// eventHandler derives a calendar event from a stored ticket. Tickets
// without a departure time cannot become events and yield 422.
func (s *Server) eventHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := s.ticketID(w, r)
	if !ok {
		return
	}

	t, err := s.service.Get(id)
	if errors.Is(err, pipeline.ErrTicketNotFound) {
		s.writeError(w, "Ticket not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.writeError(w, "Failed to load ticket", http.StatusInternalServerError)
		return
	}

	event, err := calendar.EventFromTicket(t)
	if errors.Is(err, calendar.ErrNoDeparture) {
		s.writeError(w, "Ticket has no departure time", http.StatusUnprocessableEntity)
		return
	}
	if err != nil {
		s.writeError(w, "Failed to build event", http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, http.StatusOK, EventResponse{Success: true, Event: event})
}

// reprocessHandler re-runs extraction for a stored ticket.
func (s *Server) reprocessHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := s.ticketID(w, r)
	if !ok {
		return
	}

	t, err := s.service.Reprocess(r.Context(), id)
	if errors.Is(err, pipeline.ErrTicketNotFound) {
		s.writeError(w, "Ticket not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.writeError(w, fmt.Sprintf("Reprocessing failed: %v", err), http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, http.StatusOK, TicketResponse{Success: true, Ticket: t})
}

// deleteTicketHandler removes a stored ticket.
func (s *Server) deleteTicketHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := s.ticketID(w, r)
	if !ok {
		return
	}

	err := s.service.Delete(id)
	if errors.Is(err, pipeline.ErrTicketNotFound) {
		s.writeError(w, "Ticket not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.writeError(w, "Failed to delete ticket", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// statsHandler returns counts of stored tickets.
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := s.service.Stats()
	if err != nil {
		s.writeError(w, "Failed to compute statistics", http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, http.StatusOK, StatsResponse{Success: true, Stats: stats})
}

// ticketID parses the {id} path segment, writing a 400 on failure.
func (s *Server) ticketID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	raw := r.PathValue("id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		s.writeError(w, fmt.Sprintf("Invalid ticket id: %s", raw), http.StatusBadRequest)
		return 0, false
	}
	return uint(id), true
}

// writeJSON writes a JSON response with the given status code.
func (s *Server) writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding response: %v\n", err)
	}
}

// writeError writes a JSON error response.
func (s *Server) writeError(w http.ResponseWriter, message string, statusCode int) {
	s.writeJSON(w, statusCode, ErrorResponse{Success: false, Error: message})
}

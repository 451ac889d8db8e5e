package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/KUKARAF/ordning/internal/store"
	"github.com/KUKARAF/ordning/internal/ticket"
)

var (
	// ErrTicketExists is returned when a document's fingerprint is already
	// stored. The new record is discarded, not merged.
	ErrTicketExists = errors.New("ticket already exists")

	// ErrTicketNotFound is returned for operations on an unknown ticket id.
	ErrTicketNotFound = errors.New("ticket not found")
)

// Service is the deduplication and persistence gate around the Processor.
type Service struct {
	processor *Processor
	store     store.Store
}

// NewService builds a service persisting pipeline output to st.
func NewService(processor *Processor, st store.Store) *Service {
	return &Service{processor: processor, store: st}
}

// Ingest processes the document behind ref and stores the resulting
// record. A non-empty fingerprint that is already stored rejects the insert
// with ErrTicketExists. Records with an empty fingerprint (the byte read
// failed upstream) bypass the duplicate check entirely, so repeated failed
// attempts stay individually visible.
func (s *Service) Ingest(ctx context.Context, ref string) (*ticket.Ticket, error) {
	t := s.processor.Process(ctx, ref)

	if t.FileHash != "" {
		existing, err := s.store.GetByFileHash(t.FileHash)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			slog.Info("rejected duplicate ticket", "file", t.FileName, "existing_id", existing.ID)
			return nil, fmt.Errorf("%w: %s", ErrTicketExists, t.FileName)
		}
	}

	if err := s.store.Insert(&t); err != nil {
		return nil, err
	}
	slog.Info("stored ticket", "id", t.ID, "file", t.FileName, "processed", t.Processed)
	return &t, nil
}

// Reprocess re-runs the full pipeline against the stored file reference of
// an existing record and overwrites its fields in place, keeping the id.
// The duplicate check is not re-run: the fingerprint already belongs to
// this record.
func (s *Service) Reprocess(ctx context.Context, id uint) (*ticket.Ticket, error) {
	existing, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("%w: id %d", ErrTicketNotFound, id)
	}

	t := s.processor.Process(ctx, existing.FilePath)
	t.ID = id
	if err := s.store.Update(&t); err != nil {
		return nil, err
	}
	slog.Info("reprocessed ticket", "id", id, "processed", t.Processed)
	return &t, nil
}

// Delete removes a stored record outright. Deleting an unknown id is
// reported, never silently ignored.
func (s *Service) Delete(id uint) error {
	existing, err := s.store.Get(id)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("%w: id %d", ErrTicketNotFound, id)
	}
	return s.store.Delete(id)
}

// Get returns a stored record by id.
func (s *Service) Get(id uint) (*ticket.Ticket, error) {
	t, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("%w: id %d", ErrTicketNotFound, id)
	}
	return t, nil
}

// List returns all stored records, most recently processed first.
func (s *Service) List() ([]ticket.Ticket, error) { return s.store.All() }

// ListByTravelMode filters records by travel mode.
func (s *Service) ListByTravelMode(mode ticket.TravelMode) ([]ticket.Ticket, error) {
	return s.store.ByTravelMode(mode)
}

// ListByLocation filters records whose endpoints contain location.
func (s *Service) ListByLocation(location string) ([]ticket.Ticket, error) {
	return s.store.ByLocation(location)
}

// ListByDateRange returns records departing inside the window.
func (s *Service) ListByDateRange(start, end time.Time) ([]ticket.Ticket, error) {
	return s.store.ByDateRange(start, end)
}

// CleanupFailed deletes every record marked unprocessed.
func (s *Service) CleanupFailed() error { return s.store.DeleteUnprocessed() }

// Stats summarizes the stored records.
type Stats struct {
	Total       int64 `json:"total"`
	Processed   int64 `json:"processed"`
	Unprocessed int64 `json:"unprocessed"`
}

// Stats returns record counts partitioned by processing outcome.
func (s *Service) Stats() (Stats, error) {
	total, err := s.store.Count()
	if err != nil {
		return Stats{}, err
	}
	processed, err := s.store.CountProcessed()
	if err != nil {
		return Stats{}, err
	}
	unprocessed, err := s.store.CountUnprocessed()
	if err != nil {
		return Stats{}, err
	}
	return Stats{Total: total, Processed: processed, Unprocessed: unprocessed}, nil
}

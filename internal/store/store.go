// Package store persists ticket records in a local SQLite database via
// GORM. It is the external collaborator behind the deduplication gate: the
// gate's check-then-insert is not atomic here, concurrent ingestion of
// byte-identical documents can race (documented behavior).
package store

import (
	"time"

	"github.com/KUKARAF/ordning/internal/auth"
	"github.com/KUKARAF/ordning/internal/ticket"
)

// Store abstracts the underlying database implementation.
type Store interface {
	// Insert persists a new ticket and assigns its ID.
	Insert(t *ticket.Ticket) error
	// Update overwrites the stored ticket with the same ID.
	Update(t *ticket.Ticket) error
	// Get returns the ticket with the given ID, or nil when absent.
	Get(id uint) (*ticket.Ticket, error)
	// GetByFileHash returns the ticket with the given fingerprint, or nil
	// when absent.
	GetByFileHash(hash string) (*ticket.Ticket, error)

	// All returns every stored ticket, most recently processed first.
	All() ([]ticket.Ticket, error)
	Processed() ([]ticket.Ticket, error)
	Unprocessed() ([]ticket.Ticket, error)
	ByTravelMode(mode ticket.TravelMode) ([]ticket.Ticket, error)
	// ByLocation matches a substring against either trip endpoint.
	ByLocation(location string) ([]ticket.Ticket, error)
	// ByDateRange returns tickets departing inside [start, end], earliest first.
	ByDateRange(start, end time.Time) ([]ticket.Ticket, error)

	Delete(id uint) error
	DeleteAll() error
	// DeleteUnprocessed removes all failed records in one sweep.
	DeleteUnprocessed() error

	Count() (int64, error)
	CountProcessed() (int64, error)
	CountUnprocessed() (int64, error)

	// Auth session persistence, consumed by the account-sync feature.
	SaveToken(rec *auth.TokenRecord) error
	LoadToken() (*auth.TokenRecord, error)
	ClearTokens() error

	Close() error
}

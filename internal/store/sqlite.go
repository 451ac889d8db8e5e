package store

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/KUKARAF/ordning/internal/auth"
	"github.com/KUKARAF/ordning/internal/ticket"
)

// SQLiteStore implements Store on a local SQLite database.
type SQLiteStore struct {
	db *gorm.DB
}

// OpenSQLite opens (creating if necessary) the database at path and runs
// schema migration. Use ":memory:" for an ephemeral database in tests.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	if err := db.AutoMigrate(&ticket.Ticket{}, &auth.TokenRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	slog.Debug("opened ticket database", "path", path)
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Insert(t *ticket.Ticket) error {
	if err := s.db.Create(t).Error; err != nil {
		return fmt.Errorf("failed to insert ticket: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Update(t *ticket.Ticket) error {
	// Save writes all fields, including zero values, which is what
	// reprocessing needs: stale extracted fields must be cleared.
	if err := s.db.Save(t).Error; err != nil {
		return fmt.Errorf("failed to update ticket %d: %w", t.ID, err)
	}
	return nil
}

func (s *SQLiteStore) Get(id uint) (*ticket.Ticket, error) {
	var t ticket.Ticket
	err := s.db.First(&t, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load ticket %d: %w", id, err)
	}
	return &t, nil
}

func (s *SQLiteStore) GetByFileHash(hash string) (*ticket.Ticket, error) {
	var t ticket.Ticket
	err := s.db.Where("file_hash = ?", hash).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up fingerprint: %w", err)
	}
	return &t, nil
}

func (s *SQLiteStore) All() ([]ticket.Ticket, error) {
	return s.list(s.db.Order("processed_at DESC"))
}

func (s *SQLiteStore) Processed() ([]ticket.Ticket, error) {
	return s.list(s.db.Where("processed = ?", true).Order("processed_at DESC"))
}

func (s *SQLiteStore) Unprocessed() ([]ticket.Ticket, error) {
	return s.list(s.db.Where("processed = ?", false).Order("processed_at DESC"))
}

func (s *SQLiteStore) ByTravelMode(mode ticket.TravelMode) ([]ticket.Ticket, error) {
	return s.list(s.db.Where("travel_mode = ?", string(mode)).Order("processed_at DESC"))
}

func (s *SQLiteStore) ByLocation(location string) ([]ticket.Ticket, error) {
	pattern := "%" + location + "%"
	return s.list(s.db.
		Where("departure_location LIKE ? OR arrival_location LIKE ?", pattern, pattern).
		Order("processed_at DESC"))
}

func (s *SQLiteStore) ByDateRange(start, end time.Time) ([]ticket.Ticket, error) {
	return s.list(s.db.
		Where("departure_time >= ? AND departure_time <= ?", start, end).
		Order("departure_time ASC"))
}

func (s *SQLiteStore) list(tx *gorm.DB) ([]ticket.Ticket, error) {
	var tickets []ticket.Ticket
	if err := tx.Find(&tickets).Error; err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	return tickets, nil
}

func (s *SQLiteStore) Delete(id uint) error {
	if err := s.db.Delete(&ticket.Ticket{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete ticket %d: %w", id, err)
	}
	return nil
}

func (s *SQLiteStore) DeleteAll() error {
	if err := s.db.Where("1 = 1").Delete(&ticket.Ticket{}).Error; err != nil {
		return fmt.Errorf("failed to delete tickets: %w", err)
	}
	return nil
}

func (s *SQLiteStore) DeleteUnprocessed() error {
	if err := s.db.Where("processed = ?", false).Delete(&ticket.Ticket{}).Error; err != nil {
		return fmt.Errorf("failed to delete unprocessed tickets: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Count() (int64, error) {
	return s.count(s.db.Model(&ticket.Ticket{}))
}

func (s *SQLiteStore) CountProcessed() (int64, error) {
	return s.count(s.db.Model(&ticket.Ticket{}).Where("processed = ?", true))
}

func (s *SQLiteStore) CountUnprocessed() (int64, error) {
	return s.count(s.db.Model(&ticket.Ticket{}).Where("processed = ?", false))
}

func (s *SQLiteStore) count(tx *gorm.DB) (int64, error) {
	var n int64
	if err := tx.Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count tickets: %w", err)
	}
	return n, nil
}

// SaveToken replaces the stored auth token. Only one session is kept.
func (s *SQLiteStore) SaveToken(rec *auth.TokenRecord) error {
	if err := s.db.Where("1 = 1").Delete(&auth.TokenRecord{}).Error; err != nil {
		return fmt.Errorf("failed to clear previous tokens: %w", err)
	}
	if err := s.db.Create(rec).Error; err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

func (s *SQLiteStore) LoadToken() (*auth.TokenRecord, error) {
	var rec auth.TokenRecord
	err := s.db.Order("id DESC").First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load token: %w", err)
	}
	return &rec, nil
}

func (s *SQLiteStore) ClearTokens() error {
	if err := s.db.Where("1 = 1").Delete(&auth.TokenRecord{}).Error; err != nil {
		return fmt.Errorf("failed to clear tokens: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

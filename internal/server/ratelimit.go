package server

import (
	"fmt"
	"sync"
	"time"
)

// RateLimiter throttles ingestion uploads per client.
type RateLimiter struct {
	mu sync.Mutex

	uploadsPerMinute int
	maxUploadsPerDay int
	maxDataPerDay    int64 // bytes

	clients map[string]*clientUsage
}

// clientUsage tracks upload activity for a single client IP.
type clientUsage struct {
	uploadsLastMinute int
	uploadsToday      int
	dataToday         int64

	lastUploadTime time.Time
	dayStartTime   time.Time
}

// NewRateLimiter creates a rate limiter with the given limits. A zero limit
// disables that particular check.
func NewRateLimiter(uploadsPerMinute, maxUploadsPerDay int, maxDataPerDay int64) *RateLimiter {
	return &RateLimiter{
		uploadsPerMinute: uploadsPerMinute,
		maxUploadsPerDay: maxUploadsPerDay,
		maxDataPerDay:    maxDataPerDay,
		clients:          make(map[string]*clientUsage),
	}
}

// Allow checks whether an upload of dataSize bytes from clientID is permitted
// and, if so, records it.
func (rl *RateLimiter) Allow(clientID string, dataSize int64) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	usage, ok := rl.clients[clientID]
	if !ok {
		usage = &clientUsage{lastUploadTime: now, dayStartTime: now}
		rl.clients[clientID] = usage
	}

	rl.resetCountersIfNeeded(usage, now)

	if rl.uploadsPerMinute > 0 && usage.uploadsLastMinute >= rl.uploadsPerMinute {
		return &RateLimitError{
			Type:       "minute",
			Limit:      rl.uploadsPerMinute,
			RetryAfter: time.Minute - now.Sub(usage.lastUploadTime),
		}
	}

	if rl.maxUploadsPerDay > 0 && usage.uploadsToday >= rl.maxUploadsPerDay {
		return &QuotaExceededError{
			Type:   "uploads",
			Limit:  int64(rl.maxUploadsPerDay),
			Used:   int64(usage.uploadsToday),
			Resets: nextMidnight(now),
		}
	}

	if rl.maxDataPerDay > 0 && usage.dataToday+dataSize > rl.maxDataPerDay {
		return &QuotaExceededError{
			Type:   "data",
			Limit:  rl.maxDataPerDay,
			Used:   usage.dataToday,
			Resets: nextMidnight(now),
		}
	}

	usage.uploadsLastMinute++
	usage.uploadsToday++
	usage.dataToday += dataSize
	usage.lastUploadTime = now

	return nil
}

func (rl *RateLimiter) resetCountersIfNeeded(usage *clientUsage, now time.Time) {
	if now.Day() != usage.dayStartTime.Day() || now.Month() != usage.dayStartTime.Month() {
		usage.uploadsToday = 0
		usage.dataToday = 0
		usage.dayStartTime = now
	}
	if now.Sub(usage.lastUploadTime) >= time.Minute {
		usage.uploadsLastMinute = 0
	}
}

func nextMidnight(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())
}

// RateLimitError reports a per-minute rate violation.
type RateLimitError struct {
	Type       string
	Limit      int
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s (limit: %d, retry after: %v)", e.Type, e.Limit, e.RetryAfter)
}

// QuotaExceededError reports a daily quota violation.
type QuotaExceededError struct {
	Type   string
	Limit  int64
	Used   int64
	Resets time.Time
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("quota exceeded for %s (used: %d, limit: %d, resets: %s)",
		e.Type, e.Used, e.Limit, e.Resets.Format(time.RFC3339))
}

package services

import (
	"context"
	"time"

	apperrors "github.com/jmrodillon/portfolio-backend/errors"
	"github.com/jmrodillon/portfolio-backend/store"
	"github.com/jmrodillon/portfolio-backend/types"
)

// Defaults for the submission rate limit: 5 submissions per rolling hour
// per submitter IP.
const (
	DefaultRateLimitMax    = 5
	DefaultRateLimitWindow = time.Hour
)

// RateLimitService enforces a sliding-window submission counter persisted in
// the blob store alongside the data it guards, keyed as ratelimit/<ip>. The
// window rolls over lazily on first use after expiry; there is no background
// sweep. The read-increment-write is not atomic against concurrent requests
// from the same IP, so the window can nominally be exceeded by the degree of
// concurrency. Accepted, not corrected.
type RateLimitService struct {
	store  store.BlobStore
	max    int
	window time.Duration

	// now is swappable in tests to simulate window expiry.
	now func() time.Time
}

// NewRateLimitService creates a limiter allowing max submissions per window.
func NewRateLimitService(blobStore store.BlobStore, max int, window time.Duration) *RateLimitService {
	if max <= 0 {
		max = DefaultRateLimitMax
	}
	if window <= 0 {
		window = DefaultRateLimitWindow
	}
	return &RateLimitService{
		store:  blobStore,
		max:    max,
		window: window,
		now:    time.Now,
	}
}

func rateLimitKey(ip string) string {
	return "ratelimit/" + ip
}

// CheckAndIncrement records one submission attempt for ip. It returns a
// RateLimited error without writing anything when the window is exhausted.
// An empty ip means the submitter could not be identified; the limiter then
// allows the request without keeping state.
func (s *RateLimitService) CheckAndIncrement(ctx context.Context, ip string) error {
	if ip == "" {
		return nil
	}

	key := rateLimitKey(ip)
	now := s.now().UnixMilli()

	state := types.RateLimitState{Count: 0, ResetAt: now + s.window.Milliseconds()}
	if _, err := s.store.GetJSON(ctx, key, store.Strong, &state); err != nil {
		if !store.IsDecodeError(err) {
			return apperrors.NewStorageError(err)
		}
		// A malformed counter document is replaced with a fresh window
		// rather than blocking submissions; it guards the data, it is
		// not the data.
		state = types.RateLimitState{Count: 0, ResetAt: now + s.window.Milliseconds()}
	}

	if now > state.ResetAt {
		state.Count = 0
		state.ResetAt = now + s.window.Milliseconds()
	}

	if state.Count >= s.max {
		return apperrors.RateLimited()
	}

	state.Count++
	if err := s.store.SetJSON(ctx, key, state); err != nil {
		return apperrors.NewStorageError(err)
	}
	return nil
}

// Package redisblob implements store.BlobStore on Redis. Documents are whole
// JSON strings under a shared key prefix. Strong reads always hit the primary
// client; eventual reads prefer an optional read replica and fall back to the
// primary when none is configured.
package redisblob

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/jmrodillon/portfolio-backend/store"
)

// DefaultPrefix is the key namespace shared by all testimonial documents.
const DefaultPrefix = "testimonials:"

// BlobStore is a Redis-backed store.BlobStore.
type BlobStore struct {
	primary *redis.Client
	replica *redis.Client
	prefix  string
}

// New creates a BlobStore on the given primary client. replica may be nil;
// eventual reads then use the primary as well.
func New(primary *redis.Client, replica *redis.Client) *BlobStore {
	return &BlobStore{
		primary: primary,
		replica: replica,
		prefix:  DefaultPrefix,
	}
}

// WithPrefix returns a copy of the store using a different key prefix.
// Used by tests to isolate namespaces.
func (s *BlobStore) WithPrefix(prefix string) *BlobStore {
	clone := *s
	clone.prefix = prefix
	return &clone
}

func (s *BlobStore) key(key string) string {
	return s.prefix + key
}

func (s *BlobStore) reader(consistency store.Consistency) *redis.Client {
	if consistency == store.Eventual && s.replica != nil {
		return s.replica
	}
	return s.primary
}

// GetJSON implements store.BlobStore.
func (s *BlobStore) GetJSON(ctx context.Context, key string, consistency store.Consistency, into interface{}) (bool, error) {
	raw, err := s.reader(consistency).Get(ctx, s.key(key)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get %q: %w", key, err)
	}

	if err := json.Unmarshal([]byte(raw), into); err != nil {
		return true, &store.DecodeError{Key: key, Err: err}
	}
	return true, nil
}

// SetJSON implements store.BlobStore. Writes always go to the primary and
// replace the whole document.
func (s *BlobStore) SetJSON(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %q: %w", key, err)
	}
	if err := s.primary.Set(ctx, s.key(key), data, 0).Err(); err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

// Ping verifies connectivity to the primary. Used by the readiness probe.
func (s *BlobStore) Ping(ctx context.Context) error {
	return s.primary.Ping(ctx).Err()
}

var _ store.BlobStore = (*BlobStore)(nil)

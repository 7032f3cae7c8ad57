// Package store defines the key-value blob access contract shared by the
// testimonial services. Implementations persist whole JSON documents under
// string keys; there is no partial update and no locking. Mutating callers
// pair a strong read with an immediate write to narrow (not eliminate) the
// lost-update window.
package store

import (
	"context"
	"errors"
	"fmt"
)

// Consistency selects the read path for a Get.
type Consistency int

const (
	// Eventual reads may return a stale prior value for lower latency.
	// Used by the high-traffic public read.
	Eventual Consistency = iota
	// Strong reads reflect the latest completed write. Used everywhere
	// state is mutated.
	Strong
)

// BlobStore provides read-modify-write access to named JSON documents.
type BlobStore interface {
	// GetJSON unmarshals the document at key into into. It reports
	// found=false with a nil error when the key does not exist. A document
	// that exists but cannot be unmarshaled into into is an error.
	GetJSON(ctx context.Context, key string, consistency Consistency, into interface{}) (found bool, err error)

	// SetJSON replaces the document at key with the JSON encoding of value.
	SetJSON(ctx context.Context, key string, value interface{}) error
}

// DecodeError reports a document that exists but does not have the shape the
// caller asked for. Callers choose per read path whether this is fatal
// (mutation paths, operator reads) or coerced to an empty result (the public
// read). The stored bytes are never repaired or overwritten on decode
// failure.
type DecodeError struct {
	Key string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %q: %v", e.Key, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// IsDecodeError reports whether err (or anything it wraps) is a DecodeError.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}

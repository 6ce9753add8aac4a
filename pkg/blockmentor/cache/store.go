// Package cache stores model answers keyed by a digest of the flowchart
// they describe, so an unchanged project is not sent to the model twice.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"
)

// Store persists cached answers.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the value for key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error

	// List returns metadata for every entry, oldest write first.
	List(ctx context.Context) ([]Info, error)

	// Close releases any resources (connections, files).
	Close() error
}

// Info describes an entry without loading its value.
type Info struct {
	Key       string
	Sequence  int
	UpdatedAt time.Time
	Size      int64
}

// Sentinel errors for cache operations.
var (
	ErrNotFound    = errors.New("cache entry not found")
	ErrStoreClosed = errors.New("cache store closed")
)

// Key derives a cache key from a namespace and the inputs that determine
// an answer, e.g. Key("describe", model, flowchartText).
func Key(namespace string, parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return namespace + ":" + hex.EncodeToString(h.Sum(nil))
}

// Open returns a MemoryStore for ":memory:" and a SQLiteStore for any other
// path. An empty path disables caching and returns nil.
func Open(path string) (Store, error) {
	switch path {
	case "":
		return nil, nil
	case ":memory:":
		return NewMemoryStore(), nil
	default:
		s, err := NewSQLiteStore(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

// Package cache provides the result cache for placement solves.
//
// Solves are deterministic for a fixed problem, configuration, and seed, so
// their results can be cached by a hash over those three inputs. Backends:
//   - file: JSON entries with TTL under a local directory (CLI default)
//   - redis: shared cache for server deployments
//   - null: caching disabled
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// Cache stores solve results keyed by problem hash.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key was
	// present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL; a non-positive TTL stores the
	// value without expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Key derives the cache key for one solve from the problem text, the solver
// configuration, and the seed.
func Key(problem []byte, cfg any, seed uint64) string {
	cfgData, _ := json.Marshal(cfg)
	h := sha256.New()
	h.Write(problem)
	h.Write(cfgData)
	fmt.Fprintf(h, "%d", seed)
	return "solve:" + hex.EncodeToString(h.Sum(nil))
}

// Hash computes a SHA-256 hash of the input data as a 64-character hex
// string.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

package transfer

import (
	"fmt"
	"sync"
)

// DataCache guarantees at-most-once execution of side-effecting import
// steps within a single job, and exposes previously computed mappings
// (e.g. source-album-id → destination-album-id) to later steps.
//
// One cache instance belongs to exactly one job and is never shared across
// jobs. Implementations must be safe for concurrent use.
type DataCache interface {
	// RunOnce executes sideEffect at most once for the given key.
	//
	// If the key already succeeded, the cached value is returned without
	// invoking sideEffect. On failure the error is recorded and returned,
	// nothing is cached, and a later RunOnce with the same key will try
	// again. Failures never poison lookups of other keys.
	RunOnce(key string, sideEffect func() (string, error)) (string, error)

	// Lookup retrieves a previously cached value for the key.
	Lookup(key string) (string, bool)
}

// MemoryCache is the in-process DataCache used for single-run jobs.
//
// The lock is held across sideEffect execution: a job's walk is sequential,
// so contention only arises when external callers inspect the cache.
type MemoryCache struct {
	mu       sync.Mutex
	values   map[string]string
	failures map[string]error
}

// NewMemoryCache creates an empty MemoryCache for one job.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		values:   make(map[string]string),
		failures: make(map[string]error),
	}
}

// RunOnce implements [DataCache].
func (c *MemoryCache) RunOnce(key string, sideEffect func() (string, error)) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if v, ok := c.values[key]; ok {
		return v, nil
	}

	v, err := sideEffect()
	if err != nil {
		c.failures[key] = err
		return "", fmt.Errorf("run once %q: %w", key, err)
	}

	c.values[key] = v
	delete(c.failures, key)
	return v, nil
}

// Lookup implements [DataCache].
func (c *MemoryCache) Lookup(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[key]
	return v, ok
}

// LastFailure returns the most recent recorded failure for the key, if the
// key has failed and not succeeded since.
func (c *MemoryCache) LastFailure(key string) (error, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	err, ok := c.failures[key]
	return err, ok
}

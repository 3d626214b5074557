// Package cache holds the process-wide table of schema-derived mapping
// state. Snapshots are immutable once published: a reload builds a fresh
// snapshot and swaps it in atomically, so concurrent consent requests
// never observe a partially rebuilt table.
package cache

import (
	"context"
	"fmt"
	"sync"

	"github.com/golang/groupcache/lru"

	"github.com/project-kessel/spice/internal/schema"
)

// Snapshot is everything derived from one identity schema version: the
// walker's pointer table, the parsed scope configuration, and the
// warnings produced while building both. Snapshots are read-only.
type Snapshot struct {
	SchemaID string
	Pointers *schema.ScopePointers
	Scopes   *schema.ScopeConfigs
	Warnings []schema.Warning
}

// Loader builds a snapshot for a schema ID, typically by fetching the
// schema document and running the walker and parser over it.
type Loader func(ctx context.Context, schemaID string) (*Snapshot, error)

// SchemaCache caches snapshots per schema ID, bounded by an LRU.
// Reads are the common path; loads happen only when an identity with an
// uncached schema shows up or after an eviction.
type SchemaCache struct {
	load Loader

	// lru.Cache is not safe for concurrent use, and even lookups mutate
	// its recency list, so hits need the write lock too.
	mu  sync.Mutex
	lru *lru.Cache
}

// New creates a schema cache holding at most maxEntries snapshots.
// maxEntries <= 0 means unbounded.
func New(maxEntries int, load Loader) *SchemaCache {
	return &SchemaCache{
		load: load,
		lru:  lru.New(maxEntries),
	}
}

// Get returns the snapshot for a schema ID, loading it on first use.
// Concurrent misses for the same ID may load more than once; the last
// published snapshot wins, which is harmless because snapshots for one
// schema ID are equivalent.
func (c *SchemaCache) Get(ctx context.Context, schemaID string) (*Snapshot, error) {
	c.mu.Lock()
	cached, ok := c.lru.Get(schemaID)
	c.mu.Unlock()
	if ok {
		return cached.(*Snapshot), nil
	}

	// Load outside the lock: schema fetches can hit the network.
	snapshot, err := c.load(ctx, schemaID)
	if err != nil {
		return nil, fmt.Errorf("failed to load schema %s: %w", schemaID, err)
	}

	c.mu.Lock()
	c.lru.Add(schemaID, snapshot)
	c.mu.Unlock()

	return snapshot, nil
}

// Invalidate drops the snapshot for a schema ID so the next Get rebuilds it.
func (c *SchemaCache) Invalidate(schemaID string) {
	c.mu.Lock()
	c.lru.Remove(schemaID)
	c.mu.Unlock()
}

// Len returns the number of cached snapshots.
func (c *SchemaCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

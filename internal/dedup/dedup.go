// Package dedup canonicalizes frozen strings: equal content in the same
// encoding resolves to one shared rope, so later equality checks can stop at
// pointer comparison.
package dedup

import (
	"errors"
	"sync/atomic"

	"github.com/hashicorp/golang-lru/v2"

	"ropes/internal/intern"
	"ropes/internal/rope"
)

// DefaultCapacity bounds the number of cached ropes.
const DefaultCapacity = 4096

// ErrCapacity reports a non-positive capacity.
var ErrCapacity = errors.New("dedup: capacity must be positive")

type key struct {
	hash uint64
	enc  int
}

// Cache maps rope content to a canonical instance. Interned literals take
// precedence; everything else is kept in a bounded LRU. It is safe for
// concurrent use.
type Cache struct {
	table  *intern.Table
	ropes  *lru.Cache[key, *rope.Rope]
	hits   atomic.Uint64
	misses atomic.Uint64
}

// Stats is a snapshot of cache activity.
type Stats struct {
	Hits   uint64
	Misses uint64
	Len    int
}

// New returns a cache holding up to capacity ropes. table may be nil.
func New(capacity int, table *intern.Table) (*Cache, error) {
	if capacity <= 0 {
		return nil, ErrCapacity
	}
	ropes, err := lru.New[key, *rope.Rope](capacity)
	if err != nil {
		return nil, err
	}
	return &Cache{table: table, ropes: ropes}, nil
}

// Dedup returns the canonical rope equal to r, registering r when none is
// known. Ropes whose hash collides with a different cached rope replace it.
func (c *Cache) Dedup(r *rope.Rope) *rope.Rope {
	if lit, ok := c.interned(r); ok {
		c.hits.Add(1)
		return lit
	}
	k := key{hash: r.Hash(), enc: r.Encoding().Index()}
	if prev, ok := c.ropes.Get(k); ok && rope.Equal(prev, r) {
		c.hits.Add(1)
		return prev
	}
	c.misses.Add(1)
	c.ropes.Add(k, r)
	return r
}

// Contains reports whether Dedup would resolve r to an existing rope, without
// touching recency.
func (c *Cache) Contains(r *rope.Rope) bool {
	if _, ok := c.interned(r); ok {
		return true
	}
	prev, ok := c.ropes.Peek(key{hash: r.Hash(), enc: r.Encoding().Index()})
	return ok && rope.Equal(prev, r)
}

func (c *Cache) interned(r *rope.Rope) (*rope.Rope, bool) {
	if c.table == nil || r.ByteLength() > c.table.MaxLen() {
		return nil, false
	}
	return c.table.LookupBytes(r.Encoding(), r.Materialize().Bytes())
}

// Stats returns hit and miss counts and the current size.
func (c *Cache) Stats() Stats {
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load(), Len: c.ropes.Len()}
}

// Purge drops every cached rope. Interned literals are unaffected.
func (c *Cache) Purge() {
	c.ropes.Purge()
}

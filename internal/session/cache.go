// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tonguedex Contributors

package session

import (
	"sync"
	"time"
)

// Cache is the in-memory tier of the session store, keyed by token hash.
// Implementations must be safe for concurrent use. The Manager owns the
// consistency rules; the cache just remembers what it was told.
type Cache interface {
	Get(tokenHash string) (*Session, bool)
	Put(session *Session)
	Delete(tokenHash string)

	// PurgeExpired drops every cached session expired at the given
	// time and returns how many were dropped.
	PurgeExpired(now time.Time) int
}

// MemoryCache implements Cache with a mutex-guarded map.
//
// It is constructed per process and injected, never shared through a
// package-level variable, so tests can build isolated instances.
type MemoryCache struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemoryCache creates an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{sessions: make(map[string]*Session)}
}

// Get returns the cached session for a token hash, if any.
func (c *MemoryCache) Get(tokenHash string) (*Session, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.sessions[tokenHash]
	return s, ok
}

// Put stores a session under its token hash, replacing any prior entry.
func (c *MemoryCache) Put(session *Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions[session.TokenHash] = session
}

// Delete removes a session. Removing an absent entry is a no-op.
func (c *MemoryCache) Delete(tokenHash string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, tokenHash)
}

// PurgeExpired drops expired entries.
func (c *MemoryCache) PurgeExpired(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	purged := 0
	for hash, s := range c.sessions {
		if s.IsExpiredAt(now) {
			delete(c.sessions, hash)
			purged++
		}
	}
	return purged
}

// Len returns the number of cached sessions.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.sessions)
}

// Compile-time interface check.
var _ Cache = (*MemoryCache)(nil)

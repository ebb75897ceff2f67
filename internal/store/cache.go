package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"

	"ecg-synth/internal/model"
)

// DefaultCacheTTL is used when NewResultCache gets a non-positive ttl.
const DefaultCacheTTL = time.Hour

type cacheEntry struct {
	result    *model.SimulationResult
	expiresAt time.Time
}

// ResultCache keeps recent results in memory. Runs are deterministic for a given
// config, so a hit is identical to a fresh run.
// A nil *ResultCache is a valid, always-missing cache.
type ResultCache struct {
	mu    sync.RWMutex
	store map[string]*cacheEntry
	ttl   time.Duration
	now   func() time.Time

	done     chan struct{}
	stopOnce sync.Once
}

// NewResultCache starts a cache with a background sweep of expired entries.
// Call Close to stop it.
func NewResultCache(ttl time.Duration) *ResultCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	c := &ResultCache{
		store: make(map[string]*cacheEntry),
		ttl:   ttl,
		now:   time.Now,
		done:  make(chan struct{}),
	}
	go c.cleanup(min(ttl, 5*time.Minute))
	return c
}

// Get retrieves a cached result if present and not expired.
func (c *ResultCache) Get(key string) (*model.SimulationResult, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.store[key]
	if !ok || c.now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.result, true
}

// Set stores a result under key.
func (c *ResultCache) Set(key string, res *model.SimulationResult) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.store[key] = &cacheEntry{
		result:    res,
		expiresAt: c.now().Add(c.ttl),
	}
}

// Len counts stored entries, including expired ones not yet swept.
func (c *ResultCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

// Clear removes all entries.
func (c *ResultCache) Clear() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store = make(map[string]*cacheEntry)
}

// Close stops the cleanup goroutine. It is safe to call more than once.
func (c *ResultCache) Close() {
	if c == nil {
		return
	}
	c.stopOnce.Do(func() { close(c.done) })
}

func (c *ResultCache) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

func (c *ResultCache) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for key, entry := range c.store {
		if now.After(entry.expiresAt) {
			delete(c.store, key)
		}
	}
}

// CacheKey hashes the JSON form of cfg. encoding/json sorts map keys, so equal
// configs always produce the same key.
func CacheKey(cfg model.SimulationConfig) string {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return ""
	}
	hash := sha256.Sum256(raw)
	return hex.EncodeToString(hash[:])
}

package folio

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/eringen/folio/markdown"
)

// RenderCache keeps rendered post bodies keyed by post id. An entry is only
// served while its content hash matches the post being rendered and its TTL
// has not expired.
type RenderCache struct {
	mu      sync.RWMutex
	entries map[string]renderEntry
	ttl     time.Duration
	render  func([]byte) []byte
	now     func() time.Time
}

type renderEntry struct {
	hash    string
	html    []byte
	fetched time.Time
}

// NewRenderCache creates a RenderCache that renders with markdown.Render.
func NewRenderCache(ttl time.Duration) *RenderCache {
	return &RenderCache{
		entries: make(map[string]renderEntry),
		ttl:     ttl,
		render:  markdown.Render,
		now:     time.Now,
	}
}

func contentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

func (c *RenderCache) valid(e renderEntry, hash string) bool {
	return e.hash == hash && c.now().Sub(e.fetched) < c.ttl
}

// HTML returns the rendered body of p. It tries a read lock first and only
// takes the write lock when rendering.
func (c *RenderCache) HTML(p Post) []byte {
	hash := contentHash(p.Content)

	c.mu.RLock()
	e, ok := c.entries[p.ID]
	c.mu.RUnlock()
	if ok && c.valid(e, hash) {
		return e.html
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[p.ID]; ok && c.valid(e, hash) {
		return e.html
	}
	html := c.render([]byte(p.Content))
	c.entries[p.ID] = renderEntry{hash: hash, html: html, fetched: c.now()}
	return html
}

// Invalidate drops the entry for id.
func (c *RenderCache) Invalidate(id string) {
	c.mu.Lock()
	delete(c.entries, id)
	c.mu.Unlock()
}

// Clear drops every entry.
func (c *RenderCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]renderEntry)
	c.mu.Unlock()
}

// Len reports the number of cached entries.
func (c *RenderCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

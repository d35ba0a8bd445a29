package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"trf/internal/domain"
	"trf/internal/port"
)

// ScoreCache keeps recent external scorer results keyed by scorer and text.
// Eviction is least-recently-used; entries also expire after ttl.
type ScoreCache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
	order   []string
	maxSize int
	ttl     time.Duration
	now     func() time.Time
	hits    int
	misses  int
}

type cacheEntry struct {
	scores    []domain.ExternalScore
	timestamp time.Time
}

func NewScoreCache(maxSize int, ttl time.Duration) *ScoreCache {
	if maxSize <= 0 {
		maxSize = 100
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &ScoreCache{
		entries: make(map[string]*cacheEntry),
		order:   make([]string, 0, maxSize),
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
	}
}

func cacheKey(scorer, text string) string {
	h := sha256.New()
	h.Write([]byte(scorer))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil)[:16])
}

func (c *ScoreCache) Get(scorer, text string) ([]domain.ExternalScore, bool) {
	key := cacheKey(scorer, text)

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.entries[key]
	if !exists {
		c.misses++
		return nil, false
	}

	if c.now().Sub(entry.timestamp) > c.ttl {
		delete(c.entries, key)
		c.removeFromOrder(key)
		c.misses++
		return nil, false
	}

	c.moveToEnd(key)
	c.hits++
	return cloneScores(entry.scores), true
}

func (c *ScoreCache) Put(scorer, text string, scores []domain.ExternalScore) {
	key := cacheKey(scorer, text)

	c.mu.Lock()
	defer c.mu.Unlock()

	entry := &cacheEntry{
		scores:    cloneScores(scores),
		timestamp: c.now(),
	}

	if _, exists := c.entries[key]; exists {
		c.entries[key] = entry
		c.moveToEnd(key)
		return
	}

	if len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	c.entries[key] = entry
	c.order = append(c.order, key)
}

func (c *ScoreCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns hit and miss counts since creation.
func (c *ScoreCache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}

func (c *ScoreCache) evictOldest() {
	if len(c.order) == 0 {
		return
	}
	oldest := c.order[0]
	c.order = c.order[1:]
	delete(c.entries, oldest)
}

func (c *ScoreCache) moveToEnd(key string) {
	c.removeFromOrder(key)
	c.order = append(c.order, key)
}

func (c *ScoreCache) removeFromOrder(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

func cloneScores(scores []domain.ExternalScore) []domain.ExternalScore {
	out := make([]domain.ExternalScore, len(scores))
	for i, s := range scores {
		out[i] = domain.ExternalScore{Ordinal: s.Ordinal}
		if s.Value != nil {
			v := *s.Value
			out[i].Value = &v
		}
	}
	return out
}

// CachedLanguageModel answers repeated texts from a ScoreCache.
// Failed calls are never cached.
type CachedLanguageModel struct {
	model port.LanguageModel
	cache *ScoreCache
}

func NewCachedLanguageModel(model port.LanguageModel, cache *ScoreCache) *CachedLanguageModel {
	return &CachedLanguageModel{
		model: model,
		cache: cache,
	}
}

func (m *CachedLanguageModel) Name() string {
	return m.model.Name()
}

func (m *CachedLanguageModel) Fingerprint() (string, error) {
	return m.model.Fingerprint()
}

// ScoreText keys the cache on the scorer's fingerprint, so a rebuilt model
// never answers from entries computed by its predecessor.
func (m *CachedLanguageModel) ScoreText(ctx context.Context, text string) ([]domain.ExternalScore, error) {
	fp, err := m.model.Fingerprint()
	if err != nil {
		return nil, &domain.ScorerError{Scorer: m.model.Name(), Err: err}
	}
	if scores, hit := m.cache.Get(fp, text); hit {
		return scores, nil
	}

	scores, err := m.model.ScoreText(ctx, text)
	if err != nil {
		return nil, err
	}

	m.cache.Put(fp, text, scores)
	return scores, nil
}

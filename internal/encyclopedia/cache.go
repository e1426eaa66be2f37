// Copyright (c) 2025 NexuBible
// SPDX-License-Identifier: AGPL-3.0-or-later

package encyclopedia

import (
	"fmt"
	"sync"

	"github.com/nexubible/bibliacore/internal/kvstore"
)

// cacheKey is the kv key holding the whole entryID → answer map.
const cacheKey = "encyclopedia_ai_cache"

// AICache persists AI deep-dive answers per entry so repeat visits avoid a
// network call. Last write per entry wins; the map never expires.
type AICache struct {
	mu sync.Mutex
	kv *kvstore.Store
}

// NewAICache returns a cache backed by kv.
func NewAICache(kv *kvstore.Store) *AICache {
	return &AICache{kv: kv}
}

// Get returns the cached answer for an entry, if any. Read failures report
// a miss.
func (c *AICache) Get(entryID string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries, err := c.loadLocked()
	if err != nil {
		return "", false
	}
	text, ok := entries[entryID]
	return text, ok
}

// Save stores the answer for an entry, overwriting any previous one.
func (c *AICache) Save(entryID, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries, err := c.loadLocked()
	if err != nil {
		return fmt.Errorf("load ai cache: %w", err)
	}
	entries[entryID] = text

	if err := c.kv.PutJSON(cacheKey, entries); err != nil {
		return fmt.Errorf("save ai cache: %w", err)
	}
	return nil
}

// loadLocked reads the cache map, treating absence as empty.
func (c *AICache) loadLocked() (map[string]string, error) {
	entries := make(map[string]string)
	found, err := c.kv.GetJSON(cacheKey, &entries)
	if err != nil {
		return nil, err
	}
	if !found {
		return make(map[string]string), nil
	}
	return entries, nil
}

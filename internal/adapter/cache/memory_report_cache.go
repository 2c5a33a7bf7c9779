package cache

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/sladash/sladash/internal/ports"
)

// MemoryReportCache is an in-memory ReportCache used in tests and when
// Redis is disabled. Entries expire lazily on read.
type MemoryReportCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// NewMemoryReportCache creates an empty in-memory report cache
func NewMemoryReportCache() *MemoryReportCache {
	return &MemoryReportCache{entries: make(map[string]memoryEntry)}
}

var _ ports.ReportCache = (*MemoryReportCache)(nil)

// Get loads a cached report into v; the bool reports a hit
func (c *MemoryReportCache) Get(ctx context.Context, key string, v interface{}) (bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return false, nil
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return false, nil
	}

	if err := json.Unmarshal(entry.data, v); err != nil {
		return false, err
	}
	return true, nil
}

// Set stores a computed report under key for ttl
func (c *MemoryReportCache) Set(ctx context.Context, key string, v interface{}, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	entry := memoryEntry{data: data}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}

	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
	return nil
}

// InvalidateDataset drops every cached report for a dataset, plus the
// cross-dataset overview pages that include it.
func (c *MemoryReportCache) InvalidateDataset(ctx context.Context, datasetID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.entries {
		if strings.HasPrefix(key, "report:"+datasetID+":") || strings.HasPrefix(key, "report:overview:") {
			delete(c.entries, key)
		}
	}
	return nil
}

// Len reports the number of live entries, used by tests
func (c *MemoryReportCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

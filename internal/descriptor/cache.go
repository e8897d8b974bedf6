package descriptor

import (
	"context"
	"slices"
	"sync"
)

type cachedRecords struct {
	records []Record
	total   int
}

// CachedReader memoizes query results until Invalidate is called. Errors are
// not cached.
type CachedReader struct {
	reader  Reader
	mu      sync.RWMutex
	entries map[Filter]cachedRecords
}

func NewCachedReader(reader Reader) *CachedReader {
	return &CachedReader{
		reader:  reader,
		entries: make(map[Filter]cachedRecords),
	}
}

func (c *CachedReader) GetRecords(ctx context.Context, filter Filter) ([]Record, int, error) {
	c.mu.RLock()
	entry, ok := c.entries[filter]
	c.mu.RUnlock()
	if ok {
		return slices.Clone(entry.records), entry.total, nil
	}

	records, total, err := c.reader.GetRecords(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	c.mu.Lock()
	c.entries[filter] = cachedRecords{records: slices.Clone(records), total: total}
	c.mu.Unlock()

	return records, total, nil
}

func (c *CachedReader) Invalidate() {
	c.mu.Lock()
	clear(c.entries)
	c.mu.Unlock()
}

var _ Reader = (*CachedReader)(nil)

package ingest

import (
	"sync"

	"quill/internal/extractor"
)

// runCache hands the extraction payload from the fetch stage to the storing
// and importing stages of the same job. It is in-memory only: a daemon
// restart drops it, and the stale-job sweep fails any job that was mid-run,
// so a later stage never observes a payload from a different process.
type runCache struct {
	mu       sync.Mutex
	payloads map[int64]*fetched
}

// fetched is everything the fetch stage produced for one job.
type fetched struct {
	payload   *extractor.NovelPayload
	cover     []byte
	coverType string
	created   bool
}

func newRunCache() *runCache {
	return &runCache{payloads: make(map[int64]*fetched)}
}

func (c *runCache) put(jobID int64, f *fetched) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.payloads[jobID] = f
}

func (c *runCache) get(jobID int64) (*fetched, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	f, ok := c.payloads[jobID]
	return f, ok
}

func (c *runCache) drop(jobID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.payloads, jobID)
}

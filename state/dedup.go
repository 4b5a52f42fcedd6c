package state

import (
	"sync"
	"time"
)

// DedupCache remembers recently seen message IDs for a fixed retention
// window. Admission is a single atomic check-and-set; removal is a periodic
// sweep decoupled from the hot path (see workers.DedupJanitor).
//
// An entry whose deadline passed but which has not been swept yet is treated
// as absent on admission, so a sweep running late never blocks a legitimate
// resend outside the window.
type DedupCache struct {
	mu        sync.Mutex
	retention time.Duration
	deadlines map[string]time.Time // messageID -> expiry deadline
	clock     func() time.Time
}

func NewDedupCache(retention time.Duration) *DedupCache {
	return &DedupCache{
		retention: retention,
		deadlines: make(map[string]time.Time),
		clock:     time.Now,
	}
}

// TryAdmit reports whether this call is the first admission of messageID
// within the retention window. Duplicates inside the window are rejected
// without refreshing the deadline.
func (c *DedupCache) TryAdmit(messageID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock()
	if deadline, ok := c.deadlines[messageID]; ok && now.Before(deadline) {
		return false
	}
	c.deadlines[messageID] = now.Add(c.retention)
	return true
}

// evict drops one entry regardless of its deadline. Nothing on the relay
// path evicts explicitly; expiry is lazy admission plus the janitor sweep.
func (c *DedupCache) evict(messageID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.deadlines, messageID)
}

// Sweep removes every expired entry and returns how many were dropped.
func (c *DedupCache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock()
	removed := 0
	for id, deadline := range c.deadlines {
		if !now.Before(deadline) {
			delete(c.deadlines, id)
			removed++
		}
	}
	return removed
}

func (c *DedupCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.deadlines)
}

package couponcheck

import "sync"

// verdictCache memoizes definitive validation verdicts for the lifetime of
// the process. It is safe for concurrent use; indeterminate outcomes are
// never stored so a later attempt can retry the pricing API.
type verdictCache struct {
	mu       sync.RWMutex
	verdicts map[string]bool
}

func newVerdictCache() *verdictCache {
	return &verdictCache{verdicts: make(map[string]bool)}
}

// Get returns the cached verdict for key and whether one exists.
func (c *verdictCache) Get(key string) (bool, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	verdict, ok := c.verdicts[key]
	return verdict, ok
}

// Set stores a definitive verdict for key.
func (c *verdictCache) Set(key string, isFree bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.verdicts[key] = isFree
}

// Len returns the number of cached verdicts.
func (c *verdictCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.verdicts)
}

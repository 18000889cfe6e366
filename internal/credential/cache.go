package credential

import (
	"sync"

	"neatauth/internal/nn"
)

// networkCache holds compiled networks keyed by genome fingerprint. When full
// it evicts the oldest insertion.
type networkCache struct {
	mu      sync.Mutex
	size    int
	entries map[string]*nn.Network
	order   []string
}

func newNetworkCache(size int) *networkCache {
	return &networkCache{size: size, entries: make(map[string]*nn.Network)}
}

func (c *networkCache) get(fingerprint string) (*nn.Network, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	network, ok := c.entries[fingerprint]
	return network, ok
}

// put stores network and returns the resulting entry count.
func (c *networkCache) put(fingerprint string, network *nn.Network) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.size <= 0 {
		return 0
	}
	if _, ok := c.entries[fingerprint]; ok {
		return len(c.entries)
	}
	for len(c.order) >= c.size {
		delete(c.entries, c.order[0])
		c.order = c.order[1:]
	}
	c.entries[fingerprint] = network
	c.order = append(c.order, fingerprint)
	return len(c.entries)
}

func (c *networkCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

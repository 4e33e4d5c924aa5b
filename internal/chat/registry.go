package chat

import "sync"

// Registry is the single source of truth for "is this user currently
// reachable". It maps an identity to the one client representing it.
// All methods are safe for concurrent use from many sessions.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]*Client
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]*Client)}
}

// Register inserts or replaces the entry for identity. A replaced
// client is simply no longer looked up; the registry never closes it.
func (r *Registry) Register(identity string, c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[identity] = c
}

// Unregister removes the entry for identity only if it still points at
// the caller's client. A stale close from a superseded connection must
// not evict the registration of the session that replaced it.
func (r *Registry) Unregister(identity string, c *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.conns[identity]; ok && current == c {
		delete(r.conns, identity)
		return true
	}
	return false
}

// Lookup returns the live client for identity, if any. Never blocks.
func (r *Registry) Lookup(identity string) (*Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.conns[identity]
	return c, ok
}

// Count reports how many identities are currently registered.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

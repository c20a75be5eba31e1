package realtime

import "sync"

// -----------------------------------------------------------------------------

// Registry maps open connections to the coin ids they subscribed to.
// Every read and write goes through one RWMutex; readers get copies.
type Registry struct {
	mu   sync.RWMutex
	subs map[string][]string
}

// -----------------------------------------------------------------------------

func NewRegistry() *Registry {
	return &Registry{subs: make(map[string][]string)}
}

// -----------------------------------------------------------------------------

// Add registers connID with an empty subscription and returns the number of
// connections afterwards.
func (r *Registry) Add(connID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs[connID] = []string{}
	return len(r.subs)
}

// -----------------------------------------------------------------------------

// Remove drops connID and returns the number of connections left.
func (r *Registry) Remove(connID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.subs, connID)
	return len(r.subs)
}

// -----------------------------------------------------------------------------

// Replace swaps the whole subscription set of connID. It reports false when
// connID is not registered (already disconnected).
func (r *Registry) Replace(connID string, coinIDs []string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.subs[connID]; !ok {
		return false
	}
	r.subs[connID] = append([]string{}, coinIDs...)
	return true
}

// -----------------------------------------------------------------------------

func (r *Registry) Subscriptions(connID string) ([]string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	coins, ok := r.subs[connID]
	if !ok {
		return nil, false
	}
	return append([]string{}, coins...), true
}

// -----------------------------------------------------------------------------

// Snapshot returns a deep copy that is safe to iterate while connections come and go.
func (r *Registry) Snapshot() map[string][]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string][]string, len(r.subs))
	for id, coins := range r.subs {
		out[id] = append([]string{}, coins...)
	}
	return out
}

// -----------------------------------------------------------------------------

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs)
}

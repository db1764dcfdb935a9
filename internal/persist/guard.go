package persist

import "sync"

// Guard is the reentrancy latch around remote applies. While a remote
// payload is being applied to local state, the resulting change
// notifications must not be written back out, or two instances would ping
// each other's writes forever.
type Guard struct {
	mu       sync.Mutex
	applying bool
}

// Enter marks the start of a remote apply. It reports false if one is
// already in progress, in which case the caller must not apply.
func (g *Guard) Enter() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.applying {
		return false
	}
	g.applying = true
	return true
}

// Leave marks the end of a remote apply.
func (g *Guard) Leave() {
	g.mu.Lock()
	g.applying = false
	g.mu.Unlock()
}

// Idle reports whether no remote apply is in progress.
func (g *Guard) Idle() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return !g.applying
}

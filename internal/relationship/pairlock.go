package relationship

import (
	"sync"

	"campusmatch/backend/internal/models"
)

type pairKey struct {
	a, b uint
}

// PairLock serializes transitions per unordered user pair. Entries are created
// on demand and reference counted so the map does not grow with every pair
// ever seen. Transitions on different pairs proceed fully in parallel.
type PairLock struct {
	mu    sync.Mutex
	pairs map[pairKey]*pairEntry
}

type pairEntry struct {
	mu   sync.Mutex
	refs int
}

// NewPairLock creates an empty PairLock.
func NewPairLock() *PairLock {
	return &PairLock{
		pairs: make(map[pairKey]*pairEntry),
	}
}

// Lock acquires the mutex for the unordered pair (u, v) and returns the
// function that releases it.
func (p *PairLock) Lock(u, v uint) func() {
	a, b := models.CanonicalPair(u, v)
	key := pairKey{a: a, b: b}

	p.mu.Lock()
	entry, ok := p.pairs[key]
	if !ok {
		entry = &pairEntry{}
		p.pairs[key] = entry
	}
	entry.refs++
	p.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		p.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(p.pairs, key)
		}
		p.mu.Unlock()
	}
}

package importer

import (
	"sync"

	"github.com/nordicgem/diamond-indexer/internal/domain"
)

// Guard tracks in-flight refreshes per feed type. At most one refresh per
// type may run at a time; a second request is rejected up front rather than
// queued. The two feed types are independent flags, so a natural and a lab
// refresh may run concurrently.
type Guard struct {
	mu       sync.Mutex
	inFlight map[domain.FeedType]bool
}

// NewGuard creates an empty guard
func NewGuard() *Guard {
	return &Guard{inFlight: make(map[domain.FeedType]bool)}
}

// TryAcquire atomically claims the refresh slot for a feed type. Returns
// false when a refresh of that type is already running.
func (g *Guard) TryAcquire(feedType domain.FeedType) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.inFlight[feedType] {
		return false
	}
	g.inFlight[feedType] = true
	return true
}

// Release frees the refresh slot for a feed type
func (g *Guard) Release(feedType domain.FeedType) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.inFlight, feedType)
}

// InProgress reports whether a refresh of the given type is running
func (g *Guard) InProgress(feedType domain.FeedType) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.inFlight[feedType]
}

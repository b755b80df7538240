package guard

import (
	"sync/atomic"
	"time"

	"github.com/philipp01105/ulog/core"
)

// Guard is a re-entrant mutual exclusion lock with bounded acquisition.
// The zero value is not usable; create one with New.
type Guard struct {
	sem      chan struct{}
	owner    atomic.Int64 // goroutine id of the holder, 0 when free
	depth    int          // touched only by the owner
	maxDepth int
}

// New creates a guard allowing up to maxDepth nested acquisitions by the
// owner. maxDepth is clamped to 1..core.MaxNestingDepth.
func New(maxDepth int) *Guard {
	if maxDepth <= 0 || maxDepth > core.MaxNestingDepth {
		maxDepth = core.MaxNestingDepth
	}
	return &Guard{
		sem:      make(chan struct{}, 1),
		maxDepth: maxDepth,
	}
}

// Acquire takes the guard for the calling goroutine
func (g *Guard) Acquire(timeout time.Duration) error {
	id := goid()
	if g.owner.Load() == id {
		if g.depth >= g.maxDepth {
			return core.ErrNestingDepth
		}
		g.depth++
		return nil
	}

	select {
	case g.sem <- struct{}{}:
	default:
		if err := g.wait(timeout); err != nil {
			return err
		}
	}

	g.owner.Store(id)
	g.depth = 1
	return nil
}

// wait blocks on the semaphore according to timeout
func (g *Guard) wait(timeout time.Duration) error {
	switch {
	case timeout == 0:
		return core.ErrLocked
	case timeout < 0:
		g.sem <- struct{}{}
		return nil
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case g.sem <- struct{}{}:
		return nil
	case <-timer.C:
		return core.ErrLocked
	}
}

// Release gives up one level of ownership. The guard becomes free once the
// outermost acquisition is released.
func (g *Guard) Release() error {
	if g.owner.Load() != goid() {
		return core.ErrNotOwner
	}
	g.depth--
	if g.depth > 0 {
		return nil
	}
	g.owner.Store(0)
	<-g.sem
	return nil
}

// Depth returns the nesting depth held by the calling goroutine, or 0 if
// it does not own the guard.
func (g *Guard) Depth() int {
	if g.owner.Load() != goid() {
		return 0
	}
	return g.depth
}

// Held reports whether the calling goroutine owns the guard
func (g *Guard) Held() bool {
	return g.owner.Load() == goid()
}

// MaxDepth returns the configured nesting bound
func (g *Guard) MaxDepth() int {
	return g.maxDepth
}

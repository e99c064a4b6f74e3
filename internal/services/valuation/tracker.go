package valuation

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrSuperseded reports that a newer query for the same view started before
// this one finished. Its result must not be applied.
var ErrSuperseded = errors.New("query superseded by a newer request")

type inflight struct {
	tag    string
	cancel context.CancelFunc
}

// QueryTracker tags each chart query with the view it was issued for. Starting
// a query cancels the previous one for that view, and only the newest tag may
// commit its result.
type QueryTracker struct {
	mu    sync.Mutex
	views map[string]inflight
}

// NewQueryTracker creates an empty tracker.
func NewQueryTracker() *QueryTracker {
	return &QueryTracker{views: make(map[string]inflight)}
}

// Begin registers a query for view and returns its context and tag.
func (t *QueryTracker) Begin(ctx context.Context, view string) (context.Context, string) {
	qctx, cancel := context.WithCancel(ctx)
	tag := uuid.NewString()

	t.mu.Lock()
	if prev, ok := t.views[view]; ok {
		prev.cancel()
	}
	t.views[view] = inflight{tag: tag, cancel: cancel}
	t.mu.Unlock()

	return qctx, tag
}

// Commit releases the query's context and reports whether tag is still the
// newest query for view.
func (t *QueryTracker) Commit(view, tag string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	cur, ok := t.views[view]
	if !ok || cur.tag != tag {
		return false
	}
	cur.cancel()
	delete(t.views, view)
	return true
}

// InFlight returns the number of views with an uncommitted query.
func (t *QueryTracker) InFlight() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.views)
}

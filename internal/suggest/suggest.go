// Package suggest runs the debounced lookup behind the registration form's
// autocomplete. Keystrokes arrive faster than the store should be queried,
// so each one restarts a quiet-period timer, and a generation counter makes
// sure results land in the order they were asked for - a slow, superseded
// lookup can never overwrite a newer one.
package suggest

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/Renessey/Solaris/internal/model"
)

// Searcher is the lookup the engine debounces, normally
// (*service.Service).Search.
type Searcher interface {
	Search(ctx context.Context, query string) ([]model.Suggestion, error)
}

// Engine debounces suggestion lookups for one interactive session. It is
// safe for concurrent use, though a session normally drives it from a
// single goroutine.
type Engine struct {
	search  Searcher
	delay   time.Duration
	timeout time.Duration
	apply   func([]model.Suggestion)

	mu      sync.Mutex
	gen     uint64 // latest scheduled lookup
	applied uint64 // latest lookup whose results were delivered
	timer   *time.Timer
	stopped bool
}

// New constructs an Engine. delay is the debounce quiet period; timeout
// bounds each store round-trip (zero disables the bound); apply receives
// every delivered result set, including the empty ones.
func New(search Searcher, delay, timeout time.Duration, apply func([]model.Suggestion)) *Engine {
	return &Engine{
		search:  search,
		delay:   delay,
		timeout: timeout,
		apply:   apply,
	}
}

// Keystroke registers the current input value. Any pending lookup is
// cancelled; a new one fires after the quiet period unless another
// keystroke arrives first. The underlying Searcher already short-circuits
// sub-2-character queries, but the engine clears the visible result set for
// them immediately instead of waiting out the debounce.
func (e *Engine) Keystroke(query string) {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return
	}
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.gen++
	gen := e.gen
	if utf8.RuneCountInString(strings.TrimSpace(query)) < 2 {
		// Too short to search: clear the visible set right away, no
		// debounce, no store call.
		e.applied = gen
		e.mu.Unlock()
		e.apply(nil)
		return
	}
	e.timer = time.AfterFunc(e.delay, func() {
		e.lookup(gen, query)
	})
	e.mu.Unlock()
}

// Stop cancels any pending lookup and prevents further deliveries.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.stopped = true
}

func (e *Engine) lookup(gen uint64, query string) {
	e.mu.Lock()
	if e.stopped || gen != e.gen {
		// A newer keystroke superseded this lookup before it fired.
		e.mu.Unlock()
		return
	}
	e.mu.Unlock()

	ctx := context.Background()
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	results, err := e.search.Search(ctx, query)
	if err != nil {
		// Suggestions are advisory: a failed read degrades to an empty
		// set rather than surfacing an error mid-keystroke.
		results = nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped || gen <= e.applied || gen != e.gen {
		// Either a newer lookup already delivered, or one is scheduled;
		// this response is stale and must not be applied.
		return
	}
	e.applied = gen
	e.apply(results)
}

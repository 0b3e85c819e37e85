// Package datasource implements the incremental search-and-paginate
// controller behind every list view in the dashboard.
//
// A Controller turns a changing (search term, filter set, page) tuple into a
// safely sequenced series of cancellable fetches: the raw search term is
// debounced before it commits, committed changes reset pagination, a newer
// request supersedes (cancels) the previous one, page 1 replaces the result
// set while later pages append, and failures are classified so the owning
// view knows whether to show an inline error or hand off to the setup flow.
//
// The controller is a plain state machine with no timers or goroutines of
// its own. Its owner (a bubbletea view) schedules the debounce timer with
// the token SetSearch returns, runs each Fetch on whatever executor it
// likes, and feeds the outcome back through Resolve. All methods must be
// called from the single owning goroutine; the only concurrency in play is
// overlapping in-flight requests, which the generation counter and context
// cancellation resolve in favor of the newest.
package datasource

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

// Request is the resolved query handed to a fetch function.
type Request struct {
	Page    int
	PerPage int
	Search  string
	Filters []Filter
}

// Filter returns the value of the named filter, or "" when unset.
func (r Request) Filter(name string) string {
	for _, f := range r.Filters {
		if f.Name == name {
			return f.Value
		}
	}
	return ""
}

// FetchFunc retrieves one page of results for a resolved query.
type FetchFunc[T any] func(ctx context.Context, req Request) ([]T, error)

// Options configures a Controller.
type Options[T any] struct {
	Fetch    FetchFunc[T]
	PerPage  int           // defaults to 20
	Debounce time.Duration // defaults to 350ms

	// Filters seeds the filter set before the first fetch, for views whose
	// toggles default to on (e.g. "humans only").
	Filters []Filter

	// FallbackError is shown when a failure carries no backend detail.
	FallbackError string

	// OnAuthRequired is the "mark auth failed" collaborator, invoked once
	// per gitlab_token_required failure. Typically raises authflow.Flag.
	OnAuthRequired func()

	// OnSessionExpired is the "clear session token" collaborator, invoked
	// once per login_required failure.
	OnSessionExpired func()
}

// Fetch is a dispatched request. Run Do on any executor and hand the result
// to Controller.Resolve together with Gen. Ctrl names the issuing controller
// instance: generation counters restart at zero for every controller, so a
// result from a closed instance can carry a generation the replacement is
// also using. Routing layers must check Ctrl against the live controller's
// ID before resolving.
type Fetch[T any] struct {
	Gen     uint64
	Ctrl    uint64
	Request Request

	ctx context.Context
	fn  FetchFunc[T]
}

// Do executes the fetch. The embedded context is cancelled if a newer fetch
// supersedes this one or the controller closes.
func (f *Fetch[T]) Do() ([]T, error) {
	return f.fn(f.ctx, f.Request)
}

// Controller is one list view's data controller. Not safe for concurrent
// use; see the package comment.
type Controller[T any] struct {
	opts Options[T]
	id   uint64

	rawTerm       string
	committedTerm string
	filters       []Filter
	page          int

	items   []T
	loading bool
	hasMore bool
	err     *FetchError

	debounceVer uint64
	gen         uint64 // generation of the live request
	cancel      context.CancelFunc
	pendingKey  string
	pendingPage int
	lastKey     string // key of the last successful fetch

	sentinel *Sentinel
	closed   bool
}

// ctrlSeq mints process-unique controller identities.
var ctrlSeq atomic.Uint64

// New creates a controller around the given fetch function.
func New[T any](opts Options[T]) *Controller[T] {
	if opts.PerPage <= 0 {
		opts.PerPage = 20
	}
	if opts.Debounce <= 0 {
		opts.Debounce = 350 * time.Millisecond
	}
	return &Controller[T]{
		opts:    opts,
		id:      ctrlSeq.Add(1),
		page:    1,
		filters: append([]Filter(nil), opts.Filters...),
	}
}

// Start issues the initial page-1 fetch.
func (c *Controller[T]) Start() *Fetch[T] {
	return c.dispatch()
}

// SetSearch records a keystroke-level term update and returns the debounce
// token for it. The owner should call CommitSearch with that token after
// DebounceDelay; tokens from superseded keystrokes are ignored there.
func (c *Controller[T]) SetSearch(raw string) uint64 {
	c.rawTerm = raw
	c.debounceVer++
	return c.debounceVer
}

// CommitSearch commits the raw term if token is still current. Returns the
// fetch to run, or nil when the token is stale or nothing changed.
// An empty term is a real value: clearing the search box commits "" and
// refetches the unfiltered list.
func (c *Controller[T]) CommitSearch(token uint64) *Fetch[T] {
	if c.closed || token != c.debounceVer {
		return nil
	}
	if c.rawTerm == c.committedTerm {
		return nil
	}
	c.committedTerm = c.rawTerm
	c.page = 1
	return c.dispatch()
}

// SetFilter sets or replaces a named filter flag and refetches from page 1.
// An empty value removes the flag. Returns nil when the value is unchanged.
func (c *Controller[T]) SetFilter(name, value string) *Fetch[T] {
	if c.closed {
		return nil
	}
	changed := false
	if value == "" {
		for i, f := range c.filters {
			if f.Name == name {
				c.filters = append(c.filters[:i], c.filters[i+1:]...)
				changed = true
				break
			}
		}
	} else {
		found := false
		for i, f := range c.filters {
			if f.Name == name {
				found = true
				if f.Value != value {
					c.filters[i].Value = value
					changed = true
				}
				break
			}
		}
		if !found {
			c.filters = append(c.filters, Filter{Name: name, Value: value})
			changed = true
		}
	}
	if !changed {
		return nil
	}
	c.page = 1
	return c.dispatch()
}

// Filter returns the current value of a named filter flag, empty when unset.
func (c *Controller[T]) Filter(name string) string {
	for _, f := range c.filters {
		if f.Name == name {
			return f.Value
		}
	}
	return ""
}

// Retry re-issues the current query after a failure. The skip check does not
// apply because failed fetches never record their key.
func (c *Controller[T]) Retry() *Fetch[T] {
	if c.closed {
		return nil
	}
	return c.dispatch()
}

// NextPage advances pagination. A no-op while a fetch is in flight or when
// the last page came back short — which includes the error state, since
// failures force hasMore false. That makes the scroll trigger inert until
// the user changes the query or retries.
func (c *Controller[T]) NextPage() *Fetch[T] {
	if c.closed || c.loading || !c.hasMore {
		return nil
	}
	c.page++
	return c.dispatch()
}

// BindSentinel wires a visibility sentinel to NextPage. Rebinding (or
// binding a fresh sentinel after a view re-render) disconnects the previous
// one so a single scroll can't fire twice. start receives the fetch to run
// whenever the trigger passes its guards.
func (c *Controller[T]) BindSentinel(s *Sentinel, start func(*Fetch[T])) {
	if c.sentinel != nil {
		c.sentinel.disconnect()
	}
	c.sentinel = s
	s.onVisible = func() {
		if f := c.NextPage(); f != nil {
			start(f)
		}
	}
}

// dispatch issues a fetch for the current (page, term, filters) tuple,
// superseding any live request. Returns nil on the idempotent-skip path:
// same key as the last successful fetch with results already in hand.
func (c *Controller[T]) dispatch() *Fetch[T] {
	key := queryKey(c.page, c.committedTerm, c.filters)
	if key == c.lastKey && len(c.items) > 0 {
		return nil
	}

	// Supersede: whatever the old request eventually resolves to is dropped.
	if c.cancel != nil {
		c.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.gen++
	c.pendingKey = key
	c.pendingPage = c.page
	c.loading = true
	c.err = nil

	req := Request{
		Page:    c.page,
		PerPage: c.opts.PerPage,
		Search:  c.committedTerm,
		Filters: append([]Filter(nil), c.filters...),
	}
	return &Fetch[T]{Gen: c.gen, Ctrl: c.id, Request: req, ctx: ctx, fn: c.opts.Fetch}
}

// Resolve feeds a completed fetch back into the controller. Outcomes from
// superseded generations are dropped unconditionally, success or failure.
func (c *Controller[T]) Resolve(gen uint64, items []T, err error) {
	if c.closed || gen != c.gen {
		return
	}
	c.loading = false

	if err != nil {
		if errors.Is(err, context.Canceled) {
			// Cancellation is not a failure.
			return
		}
		c.fail(err)
		return
	}

	if c.pendingPage == 1 {
		c.items = items
	} else {
		c.items = append(c.items, items...)
	}
	c.hasMore = len(items) == c.opts.PerPage
	c.lastKey = c.pendingKey
	c.err = nil // success always clears a stale error banner
}

// fail classifies a failure and applies its side effects. Accumulated items
// stay untouched: a failed page-2 fetch must not blank out page 1.
func (c *Controller[T]) fail(err error) {
	c.hasMore = false
	c.err = Classify(err, c.opts.FallbackError)

	switch c.err.Kind {
	case ErrAuthRequired:
		if c.opts.OnAuthRequired != nil {
			c.opts.OnAuthRequired()
		}
	case ErrSessionExpired:
		if c.opts.OnSessionExpired != nil {
			c.opts.OnSessionExpired()
		}
	}
}

// Close cancels any live request and detaches the sentinel. Resolutions
// arriving afterwards are dropped.
func (c *Controller[T]) Close() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if c.sentinel != nil {
		c.sentinel.disconnect()
		c.sentinel = nil
	}
	c.closed = true
}

// ID returns this controller instance's process-unique identity.
func (c *Controller[T]) ID() uint64 { return c.id }

// Items returns the accumulated result set.
func (c *Controller[T]) Items() []T { return c.items }

// Loading reports whether a fetch is in flight.
func (c *Controller[T]) Loading() bool { return c.loading }

// HasMore reports whether another page is believed to exist.
func (c *Controller[T]) HasMore() bool { return c.hasMore }

// Err returns the classified error from the last fetch, nil when healthy.
func (c *Controller[T]) Err() *FetchError { return c.err }

// Term returns the committed search term.
func (c *Controller[T]) Term() string { return c.committedTerm }

// RawTerm returns the as-typed search term, which may not be committed yet.
func (c *Controller[T]) RawTerm() string { return c.rawTerm }

// Page returns the current page cursor.
func (c *Controller[T]) Page() int { return c.page }

// DebounceDelay returns the configured debounce interval for the owner's
// timer.
func (c *Controller[T]) DebounceDelay() time.Duration { return c.opts.Debounce }

package datasource

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeDetailError struct {
	detail string
}

func (e fakeDetailError) Error() string       { return "api error: " + e.detail }
func (e fakeDetailError) ErrorDetail() string { return e.detail }

func newTestController(opts Options[string]) *Controller[string] {
	if opts.Fetch == nil {
		opts.Fetch = func(ctx context.Context, req Request) ([]string, error) {
			return nil, nil
		}
	}
	if opts.PerPage == 0 {
		opts.PerPage = 20
	}
	return New(opts)
}

func page(n, count int) []string {
	items := make([]string, count)
	for i := range items {
		items[i] = fmt.Sprintf("p%d-%d", n, i)
	}
	return items
}

func TestStartFetchesFirstPage(t *testing.T) {
	t.Parallel()
	c := newTestController(Options[string]{
		Filters: []Filter{{Name: "humans", Value: "true"}},
	})

	f := c.Start()
	require.NotNil(t, f, "initial fetch should dispatch")
	require.Equal(t, 1, f.Request.Page)
	require.Equal(t, 20, f.Request.PerPage)
	require.Equal(t, "", f.Request.Search)
	require.Equal(t, "true", f.Request.Filter("humans"))
	require.True(t, c.Loading())

	c.Resolve(f.Gen, page(1, 20), nil)
	require.False(t, c.Loading())
	require.Len(t, c.Items(), 20)
	require.True(t, c.HasMore(), "a full page means more may exist")
	require.Nil(t, c.Err())
}

func TestDebounceOnlyLatestTokenCommits(t *testing.T) {
	t.Parallel()
	c := newTestController(Options[string]{})

	t1 := c.SetSearch("a")
	t2 := c.SetSearch("ab")
	t3 := c.SetSearch("abc")

	require.Nil(t, c.CommitSearch(t1), "superseded token must not commit")
	require.Nil(t, c.CommitSearch(t2), "superseded token must not commit")

	f := c.CommitSearch(t3)
	require.NotNil(t, f, "latest token commits exactly once")
	require.Equal(t, "abc", f.Request.Search)
	require.Equal(t, 1, f.Request.Page)
	require.Equal(t, "abc", c.Term())

	// The same token firing again (duplicate timer) changes nothing.
	require.Nil(t, c.CommitSearch(t3))
}

func TestClearingSearchCommitsEmptyTerm(t *testing.T) {
	t.Parallel()
	c := newTestController(Options[string]{})

	f := c.CommitSearch(c.SetSearch("abc"))
	require.NotNil(t, f)
	c.Resolve(f.Gen, page(1, 5), nil)

	f = c.CommitSearch(c.SetSearch(""))
	require.NotNil(t, f, "clearing the box is a real term change")
	require.Equal(t, "", f.Request.Search)
}

func TestSupersededFetchIsCancelledAndDropped(t *testing.T) {
	t.Parallel()
	c := newTestController(Options[string]{})

	f1 := c.Start()
	require.NotNil(t, f1)

	f2 := c.SetFilter("membership", "true")
	require.NotNil(t, f2)
	require.Greater(t, f2.Gen, f1.Gen)
	require.ErrorIs(t, f1.ctx.Err(), context.Canceled, "older in-flight request must be cancelled")
	require.NoError(t, f2.ctx.Err())

	// The stale outcome arrives anyway; it must not land.
	c.Resolve(f1.Gen, page(1, 20), nil)
	require.Empty(t, c.Items())
	require.True(t, c.Loading(), "still waiting on the live request")

	c.Resolve(f2.Gen, page(1, 3), nil)
	require.Len(t, c.Items(), 3)
	require.False(t, c.HasMore())
}

func TestPaginationAppendsUntilShortPage(t *testing.T) {
	t.Parallel()
	c := newTestController(Options[string]{})

	f := c.Start()
	c.Resolve(f.Gen, page(1, 20), nil)
	require.True(t, c.HasMore())

	f = c.NextPage()
	require.NotNil(t, f)
	require.Equal(t, 2, f.Request.Page)
	c.Resolve(f.Gen, page(2, 7), nil)

	require.Len(t, c.Items(), 27, "later pages append")
	require.Equal(t, "p1-0", c.Items()[0])
	require.Equal(t, "p2-6", c.Items()[26])
	require.False(t, c.HasMore(), "a short page is the end of the list")
	require.Nil(t, c.NextPage(), "no further pages after a short page")
}

func TestNextPageIsInertWhileLoading(t *testing.T) {
	t.Parallel()
	c := newTestController(Options[string]{})

	f := c.Start()
	c.Resolve(f.Gen, page(1, 20), nil)

	f = c.NextPage()
	require.NotNil(t, f)
	require.Nil(t, c.NextPage(), "no duplicate fetch while one is in flight")
	require.Nil(t, c.NextPage())

	c.Resolve(f.Gen, page(2, 20), nil)
	require.NotNil(t, c.NextPage(), "trigger re-arms after the fetch lands")
}

func TestQueryChangeResetsPagination(t *testing.T) {
	t.Parallel()
	c := newTestController(Options[string]{})

	f := c.Start()
	c.Resolve(f.Gen, page(1, 20), nil)
	f = c.NextPage()
	c.Resolve(f.Gen, page(2, 20), nil)
	require.Len(t, c.Items(), 40)

	f = c.CommitSearch(c.SetSearch("query"))
	require.NotNil(t, f)
	require.Equal(t, 1, f.Request.Page, "a committed term change restarts at page 1")

	c.Resolve(f.Gen, page(1, 4), nil)
	require.Len(t, c.Items(), 4, "page 1 replaces, never merges")
}

func TestFailureKeepsItemsAndDisablesMore(t *testing.T) {
	t.Parallel()
	c := newTestController(Options[string]{FallbackError: "failed to load users"})

	f := c.Start()
	c.Resolve(f.Gen, page(1, 20), nil)

	f = c.NextPage()
	c.Resolve(f.Gen, nil, errors.New("connection refused"))

	require.Len(t, c.Items(), 20, "a failed page 2 must not blank out page 1")
	require.False(t, c.HasMore(), "failure makes the scroll trigger inert")
	require.Nil(t, c.NextPage())
	require.NotNil(t, c.Err())
	require.Equal(t, ErrGeneric, c.Err().Kind)

	// Retry re-issues the same query even though the key is unchanged.
	f = c.Retry()
	require.NotNil(t, f)
	require.Equal(t, 2, f.Request.Page)
	c.Resolve(f.Gen, page(2, 20), nil)
	require.Nil(t, c.Err(), "success clears the error")
	require.Len(t, c.Items(), 40)
	require.True(t, c.HasMore())
}

func TestAuthRequiredClassification(t *testing.T) {
	t.Parallel()
	calls := 0
	c := newTestController(Options[string]{
		FallbackError:  "failed to load users",
		OnAuthRequired: func() { calls++ },
	})

	f := c.Start()
	c.Resolve(f.Gen, nil, fakeDetailError{detail: detailGitLabTokenRequired})

	require.Equal(t, 1, calls, "auth collaborator fires once per failure")
	require.NotNil(t, c.Err())
	require.Equal(t, ErrAuthRequired, c.Err().Kind)
	require.Empty(t, c.Err().Message, "setup flow takes over; no inline message")
	require.False(t, c.HasMore())
}

func TestSessionExpiredClassification(t *testing.T) {
	t.Parallel()
	calls := 0
	c := newTestController(Options[string]{
		OnSessionExpired: func() { calls++ },
	})

	f := c.Start()
	c.Resolve(f.Gen, nil, fakeDetailError{detail: detailLoginRequired})

	require.Equal(t, 1, calls)
	require.Equal(t, ErrSessionExpired, c.Err().Kind)
	require.NotEmpty(t, c.Err().Message, "session expiry still shows a message")
}

func TestGenericErrorMessageFallbackChain(t *testing.T) {
	t.Parallel()

	c := newTestController(Options[string]{FallbackError: "failed to load projects"})
	f := c.Start()
	c.Resolve(f.Gen, nil, fakeDetailError{detail: "project quota exceeded"})
	require.Equal(t, "project quota exceeded", c.Err().Message, "backend detail wins")

	c = newTestController(Options[string]{FallbackError: "failed to load projects"})
	f = c.Start()
	c.Resolve(f.Gen, nil, errors.New("dial tcp: timeout"))
	require.Equal(t, "failed to load projects", c.Err().Message, "fallback covers detail-less errors")

	c = newTestController(Options[string]{})
	f = c.Start()
	c.Resolve(f.Gen, nil, errors.New("dial tcp: timeout"))
	require.Equal(t, "dial tcp: timeout", c.Err().Message)
}

func TestCancellationIsNotAFailure(t *testing.T) {
	t.Parallel()
	c := newTestController(Options[string]{})

	f := c.Start()
	c.Resolve(f.Gen, nil, context.Canceled)

	require.Nil(t, c.Err())
	require.False(t, c.Loading())

	c.Resolve(f.Gen, nil, fmt.Errorf("fetch users: %w", context.Canceled))
	require.Nil(t, c.Err(), "wrapped cancellation is still a cancellation")
}

func TestIdempotentSkipAfterSuccess(t *testing.T) {
	t.Parallel()
	c := newTestController(Options[string]{})

	f := c.Start()
	c.Resolve(f.Gen, page(1, 5), nil)

	require.Nil(t, c.Retry(), "same key with results in hand is a no-op")

	// A different filter set is a different key.
	require.NotNil(t, c.SetFilter("humans", "false"))
}

func TestSetFilterToggleAndRemoval(t *testing.T) {
	t.Parallel()
	c := newTestController(Options[string]{
		Filters: []Filter{{Name: "humans", Value: "true"}},
	})
	f := c.Start()
	c.Resolve(f.Gen, page(1, 5), nil)

	require.Nil(t, c.SetFilter("humans", "true"), "unchanged value is a no-op")

	f = c.SetFilter("humans", "false")
	require.NotNil(t, f)
	require.Equal(t, "false", f.Request.Filter("humans"))
	require.Equal(t, 1, f.Request.Page)
	c.Resolve(f.Gen, page(1, 5), nil)

	f = c.SetFilter("humans", "")
	require.NotNil(t, f, "removing a flag refetches")
	require.Equal(t, "", f.Request.Filter("humans"))
	require.Equal(t, "", c.Filter("humans"))

	require.Nil(t, c.SetFilter("humans", ""), "removing an absent flag is a no-op")
}

func TestSentinelDrivesPagination(t *testing.T) {
	t.Parallel()
	c := newTestController(Options[string]{})

	var started []*Fetch[string]
	s := &Sentinel{}
	c.BindSentinel(s, func(f *Fetch[string]) { started = append(started, f) })

	f := c.Start()
	c.Resolve(f.Gen, page(1, 20), nil)

	s.Visible()
	require.Len(t, started, 1, "visible sentinel advances to the next page")
	require.Equal(t, 2, started[0].Request.Page)

	s.Visible()
	s.Visible()
	require.Len(t, started, 1, "trigger is inert while the fetch is in flight")

	c.Resolve(started[0].Gen, page(2, 3), nil)
	s.Visible()
	require.Len(t, started, 1, "short page means no further trigger")
}

func TestRebindingSentinelDisconnectsOld(t *testing.T) {
	t.Parallel()
	c := newTestController(Options[string]{})

	var started []*Fetch[string]
	old := &Sentinel{}
	c.BindSentinel(old, func(f *Fetch[string]) { started = append(started, f) })

	fresh := &Sentinel{}
	c.BindSentinel(fresh, func(f *Fetch[string]) { started = append(started, f) })

	f := c.Start()
	c.Resolve(f.Gen, page(1, 20), nil)

	old.Visible()
	require.Empty(t, started, "stale sentinel must not fire")
	fresh.Visible()
	require.Len(t, started, 1)
}

func TestCloseDropsEverything(t *testing.T) {
	t.Parallel()
	c := newTestController(Options[string]{})

	f := c.Start()
	c.Close()

	require.ErrorIs(t, f.ctx.Err(), context.Canceled, "close cancels the live request")

	c.Resolve(f.Gen, page(1, 20), nil)
	require.Empty(t, c.Items(), "resolutions after close are dropped")

	require.Nil(t, c.NextPage())
	require.Nil(t, c.Retry())
	require.Nil(t, c.CommitSearch(c.SetSearch("x")))
	require.Nil(t, c.SetFilter("humans", "true"))
}

func TestControllerInstancesHaveDistinctIdentity(t *testing.T) {
	t.Parallel()
	a := newTestController(Options[string]{})
	b := newTestController(Options[string]{})

	require.NotEqual(t, a.ID(), b.ID(), "replacement controllers must be distinguishable")

	fa := a.Start()
	fb := b.Start()
	require.Equal(t, a.ID(), fa.Ctrl, "a fetch names its issuing controller")
	require.Equal(t, b.ID(), fb.Ctrl)
	require.Equal(t, fa.Gen, fb.Gen, "generations alone cannot tell instances apart")
}

func TestFetchRequestSnapshotsFilters(t *testing.T) {
	t.Parallel()
	c := newTestController(Options[string]{
		Filters: []Filter{{Name: "humans", Value: "true"}},
	})

	f1 := c.Start()
	f2 := c.SetFilter("humans", "false")

	require.Equal(t, "true", f1.Request.Filter("humans"), "dispatched request keeps its own filter copy")
	require.Equal(t, "false", f2.Request.Filter("humans"))
}

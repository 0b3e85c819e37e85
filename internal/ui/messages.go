package ui

import (
	"labdash/internal/domain"
	"labdash/internal/eventbus"
)

// EventMsg wraps a domain event forwarded from the event bus
type EventMsg struct {
	Event eventbus.DomainEvent
}

// paneID identifies which list pane a message belongs to. Users and the
// schedule form's user picker share an item type, so the generation counter
// alone is not enough to route a result.
type paneID string

const (
	paneUsers   paneID = "users"
	paneProject paneID = "projects"
	paneMembers paneID = "members"
	panePicker  paneID = "picker"
)

// searchDebounceMsg fires after the debounce delay to commit a search term.
// The token is checked against the controller's current one; stale timers
// (the user kept typing) commit nothing.
type searchDebounceMsg struct {
	pane  paneID
	token uint64
}

// fetchResolvedMsg carries a completed page fetch back to its controller.
// src is the issuing controller's identity; panes are rebuilt (members
// navigation, setup save, form reopen) while old fetches may still be in
// flight, and the replacement controller reuses the same pane ID and low
// generation numbers.
type fetchResolvedMsg[T any] struct {
	pane  paneID
	src   uint64
	gen   uint64
	items []T
	err   error
}

// schedulesLoadedMsg contains the schedule list fetch result
type schedulesLoadedMsg struct {
	schedules []domain.Schedule
	err       error
}

// scheduleSavedMsg contains the result of a create or update
type scheduleSavedMsg struct {
	schedule *domain.Schedule
	err      error
}

// scheduleDeletedMsg contains the result of a delete
type scheduleDeletedMsg struct {
	id  string
	err error
}

// scheduleRanMsg contains the result of a run-now trigger
type scheduleRanMsg struct {
	id  string
	err error
}

// setupSavedMsg signals that backend URL / token were saved and the client
// must be rebuilt
type setupSavedMsg struct{}

// helpPagerMsg contains the result of the help pager command
type helpPagerMsg struct {
	err error
}

// statusClearMsg expires a transient status-bar message
type statusClearMsg struct {
	seq int
}

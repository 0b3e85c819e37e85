package domain

// EventType represents the type of domain event
type EventType string

// Event types
const (
	EventAuthRequired    EventType = "AuthRequired"
	EventSessionExpired  EventType = "SessionExpired"
	EventError           EventType = "Error"
	EventScheduleSaved   EventType = "ScheduleSaved"
	EventScheduleDeleted EventType = "ScheduleDeleted"
	EventScheduleRun     EventType = "ScheduleRun"
	EventConfigLoaded    EventType = "ConfigLoaded"
	EventConfigSaved     EventType = "ConfigSaved"
	EventTokenUpdated    EventType = "TokenUpdated"
)

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	Type() EventType
}

// AuthRequiredEvent is emitted when the backend reports the GitLab token
// is missing or rejected and the user must reconfigure
type AuthRequiredEvent struct{}

func (e AuthRequiredEvent) Type() EventType { return EventAuthRequired }

// SessionExpiredEvent is emitted when the backend reports the login session
// is no longer valid
type SessionExpiredEvent struct{}

func (e SessionExpiredEvent) Type() EventType { return EventSessionExpired }

// ErrorEvent is emitted when an error occurs
type ErrorEvent struct {
	Message string
	Err     error
}

func (e ErrorEvent) Type() EventType { return EventError }

// ScheduleSavedEvent is emitted when a schedule is created or updated
type ScheduleSavedEvent struct {
	Schedule Schedule
}

func (e ScheduleSavedEvent) Type() EventType { return EventScheduleSaved }

// ScheduleDeletedEvent is emitted when a schedule is removed
type ScheduleDeletedEvent struct {
	ScheduleID string
}

func (e ScheduleDeletedEvent) Type() EventType { return EventScheduleDeleted }

// ScheduleRunEvent is emitted when a schedule is triggered manually
type ScheduleRunEvent struct {
	ScheduleID string
}

func (e ScheduleRunEvent) Type() EventType { return EventScheduleRun }

// ConfigLoadedEvent is emitted when configuration is loaded
type ConfigLoadedEvent struct {
	BaseURL string
}

func (e ConfigLoadedEvent) Type() EventType { return EventConfigLoaded }

// ConfigSavedEvent is emitted when configuration is saved
type ConfigSavedEvent struct{}

func (e ConfigSavedEvent) Type() EventType { return EventConfigSaved }

// TokenUpdatedEvent is emitted when the access token changes
type TokenUpdatedEvent struct{}

func (e TokenUpdatedEvent) Type() EventType { return EventTokenUpdated }

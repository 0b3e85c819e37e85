package eventbus

import (
	"log"
	"runtime/debug"
	"sync"

	"labdash/internal/domain"
)

// Re-export domain types for convenience
type DomainEvent = domain.DomainEvent
type EventType = domain.EventType

// Event type constants
const (
	EventAuthRequired    = domain.EventAuthRequired
	EventSessionExpired  = domain.EventSessionExpired
	EventError           = domain.EventError
	EventScheduleSaved   = domain.EventScheduleSaved
	EventScheduleDeleted = domain.EventScheduleDeleted
	EventScheduleRun     = domain.EventScheduleRun
	EventConfigLoaded    = domain.EventConfigLoaded
	EventConfigSaved     = domain.EventConfigSaved
	EventTokenUpdated    = domain.EventTokenUpdated
)

// Re-export domain event types
type AuthRequiredEvent = domain.AuthRequiredEvent
type SessionExpiredEvent = domain.SessionExpiredEvent
type ErrorEvent = domain.ErrorEvent
type ScheduleSavedEvent = domain.ScheduleSavedEvent
type ScheduleDeletedEvent = domain.ScheduleDeletedEvent
type ScheduleRunEvent = domain.ScheduleRunEvent
type ConfigLoadedEvent = domain.ConfigLoadedEvent
type ConfigSavedEvent = domain.ConfigSavedEvent
type TokenUpdatedEvent = domain.TokenUpdatedEvent

// EventHandler is a function that handles domain events
type EventHandler func(DomainEvent)

// EventBus is the interface for the event bus
type EventBus interface {
	Publish(event DomainEvent)
	Subscribe(eventType EventType, handler EventHandler) func()
	Stop()
}

// bus is the concrete implementation of EventBus
type bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]int
	byID     map[int]EventHandler
	nextID   int

	eventChan chan DomainEvent
	wg        sync.WaitGroup
	quit      chan struct{}
	stopOnce  sync.Once
}

// New creates a new event bus
func New() EventBus {
	b := &bus{
		handlers:  make(map[EventType][]int),
		byID:      make(map[int]EventHandler),
		eventChan: make(chan DomainEvent, 256),
		quit:      make(chan struct{}),
	}

	b.wg.Add(1)
	go b.dispatch()

	return b
}

// Publish publishes an event to all subscribers
func (b *bus) Publish(event DomainEvent) {
	log.Printf("EventBus: publishing %s", event.Type())

	select {
	case b.eventChan <- event:
	default:
		log.Printf("EventBus: channel full, dropping %s", event.Type())
	}
}

// Subscribe subscribes to events of a specific type.
// Returns an unsubscribe function.
func (b *bus) Subscribe(eventType EventType, handler EventHandler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.byID[id] = handler
	b.handlers[eventType] = append(b.handlers[eventType], id)

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		delete(b.byID, id)
		ids := b.handlers[eventType]
		for i, hid := range ids {
			if hid == id {
				b.handlers[eventType] = append(ids[:i], ids[i+1:]...)
				break
			}
		}
	}
}

// Stop shuts down the dispatch loop. Pending events are discarded.
func (b *bus) Stop() {
	b.stopOnce.Do(func() {
		close(b.quit)
		b.wg.Wait()
	})
}

// dispatch handles event distribution to subscribers
func (b *bus) dispatch() {
	defer b.wg.Done()

	for {
		select {
		case event := <-b.eventChan:
			b.mu.RLock()
			ids := b.handlers[event.Type()]
			handlers := make([]EventHandler, 0, len(ids))
			for _, id := range ids {
				if h, ok := b.byID[id]; ok {
					handlers = append(handlers, h)
				}
			}
			b.mu.RUnlock()

			for _, handler := range handlers {
				b.call(handler, event)
			}

		case <-b.quit:
			return
		}
	}
}

// call invokes a single handler, recovering from panics so one bad
// subscriber cannot take down the dispatch loop
func (b *bus) call(h EventHandler, event DomainEvent) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("EventBus: handler panic for %s: %v\nStack: %s", event.Type(), r, debug.Stack())
		}
	}()
	h(event)
}

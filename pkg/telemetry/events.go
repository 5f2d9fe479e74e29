package telemetry

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Event is a timeline record of something that happened during a run.
type Event struct {
	// ID is the unique identifier for this event.
	ID string `json:"id"`

	// Timestamp is when the event occurred.
	Timestamp time.Time `json:"timestamp"`

	// Type is the event type.
	Type string `json:"type"`

	// RunID is the run this event belongs to.
	RunID string `json:"run_id"`

	// Actor is the actor name, if the event belongs to one.
	Actor string `json:"actor,omitempty"`

	// Message is a human-readable event message.
	Message string `json:"message"`

	// Level is the event severity (info, warning, error).
	Level string `json:"level"`
}

// Event type constants.
const (
	EventTypeRunStarted     = "run.started"
	EventTypeRunCompleted   = "run.completed"
	EventTypeRunFailed      = "run.failed"
	EventTypeActorStarted   = "actor.started"
	EventTypeActorCompleted = "actor.completed"
	EventTypeActorFailed    = "actor.failed"
	EventTypeActorSkipped   = "actor.skipped"
	EventTypePolicyDenied   = "policy.denied"
)

// EventPublisher records run events in memory and mirrors them through the
// structured log. The orchestrator is single-process and stateless between
// invocations, so events live only for one run.
type EventPublisher struct {
	mu     sync.Mutex
	runID  string
	events []Event
	log    zerolog.Logger
}

// NewEventPublisher creates a publisher for a fresh run ID.
func NewEventPublisher(log zerolog.Logger) *EventPublisher {
	return &EventPublisher{
		runID: uuid.New().String(),
		log:   log,
	}
}

// RunID returns the run this publisher records for.
func (p *EventPublisher) RunID() string { return p.runID }

// Publish records one event.
func (p *EventPublisher) Publish(eventType, actor, message, level string) {
	event := Event{
		ID:        uuid.New().String(),
		Timestamp: time.Now(),
		Type:      eventType,
		RunID:     p.runID,
		Actor:     actor,
		Message:   message,
		Level:     level,
	}

	p.mu.Lock()
	p.events = append(p.events, event)
	p.mu.Unlock()

	entry := p.log.Info()
	switch level {
	case "warning":
		entry = p.log.Warn()
	case "error":
		entry = p.log.Error()
	}
	entry.Str("event", eventType).Str("run_id", p.runID).
		Str("actor", actor).Msg(message)
}

// Events returns a copy of everything published so far.
func (p *EventPublisher) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Event, len(p.events))
	copy(out, p.events)
	return out
}

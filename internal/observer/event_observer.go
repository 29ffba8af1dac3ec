package observer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// PipelineEvent represents one step of the upload/generation pipeline
type PipelineEvent struct {
	EventType      EventType              `json:"event_type"`
	Timestamp      time.Time              `json:"timestamp"`
	SessionID      string                 `json:"session_id"`
	ProcessingTime time.Duration          `json:"processing_time"`
	Success        bool                   `json:"success"`
	ErrorMessage   string                 `json:"error_message,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// EventType represents the type of pipeline event
type EventType string

const (
	// ImagesUploaded when an upload batch has been stored and analyzed
	ImagesUploaded EventType = "images_uploaded"
	// ImageAnalyzed when a single ad hoc analysis finishes
	ImageAnalyzed EventType = "image_analyzed"
	// ImageRemoved when an image leaves the working set
	ImageRemoved EventType = "image_removed"
	// CombinationsGenerated when a generation request completes
	CombinationsGenerated EventType = "combinations_generated"
	// GenerationFailed when a generation request errors out
	GenerationFailed EventType = "generation_failed"
)

// Observer defines the interface for event observers
type Observer interface {
	OnEvent(ctx context.Context, event PipelineEvent)
	GetObserverName() string
}

// Subject defines the interface for event publishers
type Subject interface {
	Subscribe(observer Observer)
	NotifyObservers(ctx context.Context, event PipelineEvent)
}

// EventBus is a simple synchronous Subject implementation
type EventBus struct {
	mu        sync.RWMutex
	observers []Observer
}

// NewEventBus creates an empty event bus
func NewEventBus() *EventBus {
	return &EventBus{}
}

// Subscribe registers an observer
func (b *EventBus) Subscribe(observer Observer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.observers = append(b.observers, observer)
}

// NotifyObservers delivers an event to every subscriber in order
func (b *EventBus) NotifyObservers(ctx context.Context, event PipelineEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, o := range b.observers {
		o.OnEvent(ctx, event)
	}
}

// LoggingObserver logs pipeline events as structured entries
type LoggingObserver struct {
	logger *logrus.Logger
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver(logger *logrus.Logger) Observer {
	return &LoggingObserver{logger: logger}
}

// OnEvent logs the event with its metadata
func (o *LoggingObserver) OnEvent(_ context.Context, event PipelineEvent) {
	entry := o.logger.WithFields(logrus.Fields{
		"event_type":         event.EventType,
		"session_id":         event.SessionID,
		"processing_time_ms": event.ProcessingTime.Milliseconds(),
		"success":            event.Success,
	})
	for k, v := range event.Metadata {
		entry = entry.WithField(k, v)
	}
	if event.Success {
		entry.Info("Pipeline event")
	} else {
		entry.WithField("error", event.ErrorMessage).Warn("Pipeline event failed")
	}
}

// GetObserverName returns the observer name
func (o *LoggingObserver) GetObserverName() string {
	return "logging_observer"
}

// CountingObserver tracks per-event-type totals, exposed on the health
// endpoint as a lightweight activity summary.
type CountingObserver struct {
	mu     sync.Mutex
	counts map[EventType]int64
}

// NewCountingObserver creates a new counting observer
func NewCountingObserver() *CountingObserver {
	return &CountingObserver{counts: make(map[EventType]int64)}
}

// OnEvent increments the counter for the event type
func (o *CountingObserver) OnEvent(_ context.Context, event PipelineEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.counts[event.EventType]++
}

// GetObserverName returns the observer name
func (o *CountingObserver) GetObserverName() string {
	return "counting_observer"
}

// Snapshot returns a copy of the current counters
func (o *CountingObserver) Snapshot() map[EventType]int64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make(map[EventType]int64, len(o.counts))
	for k, v := range o.counts {
		out[k] = v
	}
	return out
}

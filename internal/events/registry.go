package events

import (
	"encoding/json"
	"fmt"
)

// Summarizer is implemented by events that can describe themselves in one line.
type Summarizer interface {
	Summary() string
}

// Registry decodes stored payloads back into concrete event types.
type Registry struct {
	factories map[string]func() Event
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]func() Event)}
}

// Register maps eventType to a constructor for its zero value.
func (r *Registry) Register(eventType string, factory func() Event) {
	r.factories[eventType] = factory
}

// Decode unmarshals raw into its registered concrete type.
func (r *Registry) Decode(raw RawEvent) (Event, error) {
	factory, ok := r.factories[raw.EventType]
	if !ok {
		return nil, fmt.Errorf("unknown event type: %s", raw.EventType)
	}

	e := factory()
	if err := json.Unmarshal([]byte(raw.Payload), e); err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", raw.EventType, err)
	}
	return e, nil
}

// Describe returns a one-line summary of raw. Events that cannot be
// decoded or have no summary fall back to their type.
func (r *Registry) Describe(raw RawEvent) string {
	e, err := r.Decode(raw)
	if err != nil {
		return raw.EventType
	}
	if s, ok := e.(Summarizer); ok {
		return s.Summary()
	}
	return raw.EventType
}

// DefaultRegistry knows every event the application publishes.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for t, f := range map[string]func() Event{
		EventDownloadStarted:    func() Event { return &DownloadStarted{} },
		EventDownloadCompleted:  func() Event { return &DownloadCompleted{} },
		EventDownloadFailed:     func() Event { return &DownloadFailed{} },
		EventAssetImported:      func() Event { return &AssetImported{} },
		EventAssetDeleted:       func() Event { return &AssetDeleted{} },
		EventStatusConnected:    func() Event { return &StatusConnected{} },
		EventStatusDisconnected: func() Event { return &StatusDisconnected{} },
		EventStatusSaved:        func() Event { return &StatusSaved{} },
		EventStatusAccessLost:   func() Event { return &StatusAccessLost{} },
	} {
		r.Register(t, f)
	}
	return r
}

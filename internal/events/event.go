// Package events is the in-process activity bus. Published events are
// persisted to SQLite and back the "recent activity" view.
package events

import "time"

// Event is anything the bus can carry and the log can store.
type Event interface {
	EventType() string
	EntityType() string // EntityDownload, EntityAsset or EntityStatus
	EntityID() int64    // 0 when the entity has no row yet
	OccurredAt() time.Time
}

// BaseEvent is embedded by every concrete event and carries the routing fields.
type BaseEvent struct {
	Type      string    `json:"type"`
	Entity    string    `json:"entity_type"`
	ID        int64     `json:"entity_id"`
	Timestamp time.Time `json:"occurred_at"`
}

func (e BaseEvent) EventType() string     { return e.Type }
func (e BaseEvent) EntityType() string    { return e.Entity }
func (e BaseEvent) EntityID() int64       { return e.ID }
func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }

// NewBaseEvent stamps an event of eventType about entityType/entityID with the
// current time.
func NewBaseEvent(eventType, entityType string, entityID int64) BaseEvent {
	return BaseEvent{Type: eventType, Entity: entityType, ID: entityID, Timestamp: time.Now()}
}

package events

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// EventLog is the SQLite-backed activity history.
type EventLog struct {
	db *sql.DB
}

// NewEventLog creates an activity history over a migrated database.
func NewEventLog(db *sql.DB) *EventLog {
	return &EventLog{db: db}
}

// Append stores e with its JSON payload and returns the row ID.
func (l *EventLog) Append(e Event) (int64, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return 0, fmt.Errorf("marshal %s: %w", e.EventType(), err)
	}

	res, err := l.db.Exec(`
		INSERT INTO events (event_type, entity_type, entity_id, payload, occurred_at)
		VALUES (?, ?, ?, ?, ?)`,
		e.EventType(), e.EntityType(), e.EntityID(), string(payload), e.OccurredAt(),
	)
	if err != nil {
		return 0, fmt.Errorf("append %s: %w", e.EventType(), err)
	}
	return res.LastInsertId()
}

// RawEvent is a stored event with its undecoded payload.
type RawEvent struct {
	ID         int64     `json:"id"`
	EventType  string    `json:"type"`
	EntityType string    `json:"entity_type"`
	EntityID   int64     `json:"entity_id"`
	Payload    string    `json:"payload"`
	OccurredAt time.Time `json:"occurred_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// Query selects events from the log. Zero fields do not filter.
type Query struct {
	Types      []string
	EntityType string
	EntityID   int64 // only used with EntityType
	Since      time.Time
	Limit      int
	// OldestFirst orders by insertion; the default is newest first.
	OldestFirst bool
}

func (q Query) where() (string, []any) {
	var conds []string
	var args []any

	if len(q.Types) > 0 {
		conds = append(conds, "event_type IN (?"+strings.Repeat(", ?", len(q.Types)-1)+")")
		for _, t := range q.Types {
			args = append(args, t)
		}
	}
	if q.EntityType != "" {
		conds = append(conds, "entity_type = ? AND entity_id = ?")
		args = append(args, q.EntityType, q.EntityID)
	}
	if !q.Since.IsZero() {
		conds = append(conds, "occurred_at >= ?")
		args = append(args, q.Since)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// List returns the events matching q.
func (l *EventLog) List(q Query) ([]RawEvent, error) {
	where, args := q.where()
	query := `SELECT id, event_type, entity_type, entity_id, payload, occurred_at, created_at FROM events` + where
	if q.OldestFirst {
		query += ` ORDER BY id ASC`
	} else {
		query += ` ORDER BY id DESC`
	}
	if q.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, q.Limit)
	}

	rows, err := l.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []RawEvent
	for rows.Next() {
		var e RawEvent
		if err := rows.Scan(&e.ID, &e.EventType, &e.EntityType, &e.EntityID, &e.Payload, &e.OccurredAt, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Recent returns the newest limit events; 20 when limit is not positive.
func (l *EventLog) Recent(limit int) ([]RawEvent, error) {
	if limit <= 0 {
		limit = 20
	}
	return l.List(Query{Limit: limit})
}

// ForEntity returns the history of one entity, oldest first.
func (l *EventLog) ForEntity(entityType string, entityID int64) ([]RawEvent, error) {
	return l.List(Query{EntityType: entityType, EntityID: entityID, OldestFirst: true})
}

// Prune deletes events that occurred more than olderThan ago.
func (l *EventLog) Prune(olderThan time.Duration) (int64, error) {
	res, err := l.db.Exec(`DELETE FROM events WHERE occurred_at < ?`, time.Now().Add(-olderThan))
	if err != nil {
		return 0, fmt.Errorf("prune events: %w", err)
	}
	return res.RowsAffected()
}

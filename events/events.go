// Package events announces changes to categories and transactions.
package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

type Type string

const (
	Created Type = "created"
	Updated Type = "updated"
	Deleted Type = "deleted"
)

type Entity string

const (
	EntityCategory    Entity = "category"
	EntityTransaction Entity = "transaction"
)

// Event is the message body published after a successful write.
type Event struct {
	Type      Type      `json:"type"`
	Entity    Entity    `json:"entity"`
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}

func New(t Type, entity Entity, id, userID int64) Event {
	return Event{Type: t, Entity: entity, ID: id, UserID: userID, Timestamp: time.Now().UTC()}
}

// RoutingKey is "<entity>.<type>", e.g. "transaction.created".
func (e Event) RoutingKey() string {
	return string(e.Entity) + "." + string(e.Type)
}

func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func FromJSON(data []byte) (Event, error) {
	var e Event
	err := json.Unmarshal(data, &e)
	return e, err
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Noop drops every event. It is used when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
func (Noop) Close() error                         { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	Err    error
}

func (r *Recorder) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.events = append(r.events, e)
	return nil
}

func (r *Recorder) Close() error { return nil }

// Events returns a copy of what has been published so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

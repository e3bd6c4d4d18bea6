package amqp

import (
	"encoding/json"
	"time"
)

// Actions an entry event can carry.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// EntryEvent announces a mutation of one record. It carries only the table
// and id; consumers fetch the current row from storage themselves.
type EntryEvent struct {
	Store      string    `json:"store"`
	ID         int64     `json:"id"`
	Action     string    `json:"action"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewEntryEvent stamps an event with the current time.
func NewEntryEvent(store string, id int64, action string) *EntryEvent {
	return &EntryEvent{
		Store:      store,
		ID:         id,
		Action:     action,
		OccurredAt: time.Now().UTC(),
	}
}

func (e *EntryEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func EntryEventFromJSON(data []byte) (*EntryEvent, error) {
	var ev EntryEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

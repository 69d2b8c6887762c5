package realtime

import (
	"encoding/json"
	"strings"

	"github.com/five82/circle/internal/apperr"
	"github.com/five82/circle/internal/rows"
)

// Kind is the change type carried by a feed event.
type Kind string

const (
	KindInsert Kind = "INSERT"
	KindUpdate Kind = "UPDATE"
	KindDelete Kind = "DELETE"
)

// Event is one decoded change: Insert, Update or Delete.
type Event interface {
	Kind() Kind
	// Record is the row that identifies the entity: new for inserts and
	// updates, old for deletes.
	Record() rows.Row
	isEvent()
}

// Insert carries the inserted row.
type Insert struct {
	New rows.Row
}

// Update carries the new row and, when the table publishes it, the old one.
type Update struct {
	New rows.Row
	Old rows.Row
}

// Delete carries the removed row (at least its key columns).
type Delete struct {
	Old rows.Row
}

func (Insert) Kind() Kind { return KindInsert }
func (Update) Kind() Kind { return KindUpdate }
func (Delete) Kind() Kind { return KindDelete }

func (e Insert) Record() rows.Row { return e.New }
func (e Update) Record() rows.Row { return e.New }
func (e Delete) Record() rows.Row { return e.Old }

func (Insert) isEvent() {}
func (Update) isEvent() {}
func (Delete) isEvent() {}

// Payload is the wire shape of a change.
type Payload struct {
	EventType string         `json:"eventType"`
	New       map[string]any `json:"new,omitempty"`
	Old       map[string]any `json:"old,omitempty"`
}

// Decode parses and validates a change payload.
func Decode(raw []byte) (Event, error) {
	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, apperr.Shape("decode change: %v", err)
	}
	return FromPayload(p)
}

// FromPayload validates p and returns the matching Event.
func FromPayload(p Payload) (Event, error) {
	switch Kind(strings.ToUpper(strings.TrimSpace(p.EventType))) {
	case KindInsert:
		if len(p.New) == 0 {
			return nil, apperr.Shape("insert without new record")
		}
		return Insert{New: rows.Row(p.New)}, nil
	case KindUpdate:
		if len(p.New) == 0 {
			return nil, apperr.Shape("update without new record")
		}
		return Update{New: rows.Row(p.New), Old: rows.Row(p.Old)}, nil
	case KindDelete:
		if len(p.Old) == 0 {
			return nil, apperr.Shape("delete without old record")
		}
		return Delete{Old: rows.Row(p.Old)}, nil
	default:
		return nil, apperr.Shape("unknown event type %q", p.EventType)
	}
}

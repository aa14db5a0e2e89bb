package buffer

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	EntityTask = "task"
	EntityTag  = "tag"

	OperationCreate = "create"
	OperationUpdate = "update"
	OperationDelete = "delete"
)

// Item represents a mutation waiting to reach the remote document store.
// Tag items drain before task items so a synced task never references a
// tag the remote has not seen.
type Item struct {
	ID        string          `json:"id"`
	Entity    string          `json:"entity"`
	Operation string          `json:"operation"`
	TargetID  string          `json:"target_id"`
	Data      json.RawMessage `json:"data,omitempty"`
	Priority  int             `json:"priority"`
	Retries   int             `json:"retries"`
	Timestamp time.Time       `json:"timestamp"`

	bucketKey []byte
}

func (i *Item) normalize() {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.Priority <= 0 {
		switch i.Entity {
		case EntityTag:
			i.Priority = 1
		default:
			i.Priority = 2
		}
	}
	if i.Timestamp.IsZero() {
		i.Timestamp = time.Now()
	}
}

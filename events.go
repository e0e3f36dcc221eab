package main

import (
	"time"

	"github.com/ssau-fiit/waveot/operations"
)

const (
	eventSnapshot = "snapshot"
	eventChanged  = "changed"
	eventRemoved  = "removed"
	eventInserted = "inserted"
)

// Event is what socket subscribers receive. Start and End are inclusive
// positions in the pending queue; Operations holds the affected operations
// for snapshot, changed and inserted events.
type Event struct {
	Type       string           `json:"type"`
	Start      int              `json:"start"`
	End        int              `json:"end"`
	Operations []map[string]any `json:"operations,omitempty"`
	Timestamp  time.Time        `json:"timestamp"`
}

func newEvent(typ string, start, end int, ops []*operations.Operation) Event {
	ev := Event{Type: typ, Start: start, End: end, Timestamp: time.Now()}
	for _, op := range ops {
		ev.Operations = append(ev.Operations, op.Serialize())
	}
	return ev
}

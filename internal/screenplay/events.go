// internal/screenplay/events.go
package screenplay

import (
	"time"
)

// EventType identifies a document state transition.
type EventType string

const (
	EventScriptSet        EventType = "script_set"
	EventLinesReplaced    EventType = "lines_replaced"
	EventEditUndone       EventType = "edit_undone"
	EventHistoryCleared   EventType = "history_cleared"
	EventScriptCleared    EventType = "script_cleared"
	EventSelectionChanged EventType = "selection_changed"
)

// Event is a discrete notification emitted after a mutation has been
// applied. Consumers observe the post-mutation snapshot only.
type Event struct {
	Type       EventType `json:"type"`
	Timestamp  time.Time `json:"timestamp"`
	StartIndex int       `json:"start_index,omitempty"`
	EndIndex   int       `json:"end_index,omitempty"`
	LineCount  int       `json:"line_count"`
	EntryID    string    `json:"entry_id,omitempty"`
}

// Subscriber receives document events. Callbacks run synchronously on
// the mutating goroutine, after the mutation completed; they must not
// call back into the document.
type Subscriber func(Event)

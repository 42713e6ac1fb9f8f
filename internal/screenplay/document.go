// internal/screenplay/document.go
package screenplay

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/slavodej/screenwright/internal/models"
)

var (
	ErrRangeOutOfBounds = errors.New("line range out of bounds")
	ErrEmptyDocument    = errors.New("document has no lines")
)

// MaxHistoryEntries bounds the edit history; the oldest entries are
// evicted silently once the cap is reached.
const MaxHistoryEntries = 50

// ContextRadius is how many lines around a selection are handed to the
// rewrite collaborator.
const ContextRadius = 5

// DefaultPromptLabel is recorded on history entries when the caller
// supplied no prompt.
const DefaultPromptLabel = "Manual edit"

var editSeq uint64

func nextEntryID() string {
	seq := atomic.AddUint64(&editSeq, 1)
	return fmt.Sprintf("edit_%d_%d", time.Now().UnixNano(), seq)
}

// Document owns an ordered sequence of typed screenplay lines together
// with the active selection and the edit history. It is an explicit,
// owned state object: there is no package-level instance, and state
// changes are emitted as discrete events to subscribers instead of
// being observed through shared mutation.
//
// All mutations are synchronous, atomic state transitions. The mutex
// serializes the HTTP goroutines into the single logical mutator the
// model assumes.
type Document struct {
	mu sync.Mutex

	lines      []models.ScriptLine
	characters []string
	scenes     []models.Scene
	format     string

	selection *models.Selection
	history   []models.EditHistoryEntry

	subscribers []Subscriber
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{}
}

// Subscribe registers a callback for document events.
func (d *Document) Subscribe(fn Subscriber) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.subscribers = append(d.subscribers, fn)
}

// emit must be called with the mutex held, after the mutation applied.
func (d *Document) emit(ev Event) {
	ev.Timestamp = time.Now()
	ev.LineCount = len(d.lines)
	for _, fn := range d.subscribers {
		fn(ev)
	}
}

// SetScript atomically replaces the whole document state, resetting the
// selection and the edit history. Input is trusted: the ingestion layer
// already validated it.
func (d *Document) SetScript(lines []models.ScriptLine, characters []string, scenes []models.Scene, format string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.lines = append([]models.ScriptLine(nil), lines...)
	d.characters = append([]string(nil), characters...)
	d.scenes = append([]models.Scene(nil), scenes...)
	d.format = format
	d.selection = nil
	d.history = nil

	d.emit(Event{Type: EventScriptSet})
}

// ClearScript drops all document state.
func (d *Document) ClearScript() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.lines = nil
	d.characters = nil
	d.scenes = nil
	d.format = ""
	d.selection = nil
	d.history = nil

	d.emit(Event{Type: EventScriptCleared})
}

// Replace substitutes the line range [start, end] with the classified
// lines of newText and records a reversible history entry. The whole
// splice and history push happen together or, on a precondition
// violation, nothing changes at all.
//
// The active selection is NOT touched: it is stale after this returns
// and the caller is expected to clear it.
func (d *Document) Replace(start, end int, newText, promptLabel string) (models.EditHistoryEntry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if start < 0 || start > end || end >= len(d.lines) {
		return models.EditHistoryEntry{}, fmt.Errorf("%w: [%d, %d] of %d lines", ErrRangeOutOfBounds, start, end, len(d.lines))
	}

	originalLines := append([]models.ScriptLine(nil), d.lines[start:end+1]...)
	originalText := joinContent(originalLines)

	// Seed the classifier with the type of the line immediately before
	// the replaced range, so the first new segment is typed in context.
	var prev models.LineType
	if start > 0 {
		prev = d.lines[start-1].Type
	}
	newLines := ClassifyBlock(newText, prev)

	if promptLabel == "" {
		promptLabel = DefaultPromptLabel
	}

	entry := models.EditHistoryEntry{
		ID:            nextEntryID(),
		Timestamp:     time.Now(),
		StartIndex:    start,
		EndIndex:      end,
		OriginalLines: originalLines,
		NewLines:      append([]models.ScriptLine(nil), newLines...),
		OriginalText:  originalText,
		NewText:       newText,
		Prompt:        promptLabel,
	}

	d.lines = splice(d.lines, start, end+1, newLines)

	d.history = append([]models.EditHistoryEntry{entry}, d.history...)
	if len(d.history) > MaxHistoryEntries {
		d.history = d.history[:MaxHistoryEntries]
	}

	d.emit(Event{
		Type:       EventLinesReplaced,
		StartIndex: start,
		EndIndex:   end,
		EntryID:    entry.ID,
	})

	return entry, nil
}

// UndoEdit reverses the history entry with the given id by splicing the
// original lines back over the span the entry's replacement currently
// covers. Unknown ids are a no-op, which makes double-undo and stale
// ids harmless. The entry is consumed regardless of outcome.
//
// The splice point is the entry's recorded StartIndex. If an unrelated
// later edit shifted that region, the restore lands at a stale offset;
// that drift is accepted as a bounded-correctness trade-off, and the
// indices are clamped so a drifted undo degrades silently instead of
// panicking.
func (d *Document) UndoEdit(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	idx := -1
	for i := range d.history {
		if d.history[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}

	entry := d.history[idx]
	d.history = append(d.history[:idx], d.history[idx+1:]...)

	from := entry.StartIndex
	if from > len(d.lines) {
		from = len(d.lines)
	}
	to := from + len(entry.NewLines)
	if to > len(d.lines) {
		to = len(d.lines)
	}

	d.lines = splice(d.lines, from, to, entry.OriginalLines)

	d.emit(Event{
		Type:       EventEditUndone,
		StartIndex: entry.StartIndex,
		EndIndex:   entry.EndIndex,
		EntryID:    entry.ID,
	})

	return true
}

// ClearHistory empties the edit history without touching the lines.
func (d *Document) ClearHistory() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.history = nil
	d.emit(Event{Type: EventHistoryCleared})
}

// SetSelection resolves the two line-index anchors reported by the
// presentation layer into the minimal covering range and records it.
// Returns nil when either anchor is missing (selection rejected).
func (d *Document) SetSelection(startAnchor, endAnchor int) *models.Selection {
	d.mu.Lock()
	defer d.mu.Unlock()

	sel := resolveSelection(startAnchor, endAnchor, len(d.lines))
	if sel == nil {
		return nil
	}
	sel.Text = joinContent(d.lines[sel.StartIndex : sel.EndIndex+1])
	d.selection = sel

	d.emit(Event{
		Type:       EventSelectionChanged,
		StartIndex: sel.StartIndex,
		EndIndex:   sel.EndIndex,
	})

	out := *sel
	return &out
}

// ClearSelection drops the active selection.
func (d *Document) ClearSelection() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.selection == nil {
		return
	}
	d.selection = nil
	d.emit(Event{Type: EventSelectionChanged, StartIndex: -1, EndIndex: -1})
}

// Selection returns a copy of the active selection, or nil.
func (d *Document) Selection() *models.Selection {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.selection == nil {
		return nil
	}
	out := *d.selection
	return &out
}

// ContextAround returns up to radius lines on each side of [start, end]
// joined by newlines, for the rewrite collaborator.
func (d *Document) ContextAround(start, end, radius int) string {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.lines) == 0 || start < 0 || end < start {
		return ""
	}

	from := start - radius
	if from < 0 {
		from = 0
	}
	to := end + radius
	if to >= len(d.lines) {
		to = len(d.lines) - 1
	}
	if from > to {
		return ""
	}
	return joinContent(d.lines[from : to+1])
}

// Lines returns a copy of the current line sequence.
func (d *Document) Lines() []models.ScriptLine {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]models.ScriptLine(nil), d.lines...)
}

// LineCount reports the current number of lines.
func (d *Document) LineCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.lines)
}

// Characters returns a copy of the character list from ingestion.
func (d *Document) Characters() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.characters...)
}

// Scenes returns a copy of the scene index from ingestion. Scenes are
// not recomputed after edits.
func (d *Document) Scenes() []models.Scene {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]models.Scene(nil), d.scenes...)
}

// Format reports the ingestion format hint ("pdf", "fdx" or "").
func (d *Document) Format() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.format
}

// History returns a copy of the edit history, most recent first.
func (d *Document) History() []models.EditHistoryEntry {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]models.EditHistoryEntry(nil), d.history...)
}

// splice replaces lines[from:to] with replacement, never sharing the
// backing array with the previous sequence.
func splice(lines []models.ScriptLine, from, to int, replacement []models.ScriptLine) []models.ScriptLine {
	out := make([]models.ScriptLine, 0, len(lines)-(to-from)+len(replacement))
	out = append(out, lines[:from]...)
	out = append(out, replacement...)
	out = append(out, lines[to:]...)
	return out
}

func joinContent(lines []models.ScriptLine) string {
	parts := make([]string, len(lines))
	for i, l := range lines {
		parts[i] = l.Content
	}
	return strings.Join(parts, "\n")
}

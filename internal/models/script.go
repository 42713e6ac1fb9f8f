// internal/models/script.go
package models

import (
	"time"
)

// LineType is the semantic role of a screenplay line.
type LineType string

const (
	LineHeading       LineType = "heading"
	LineCharacter     LineType = "character"
	LineDialogue      LineType = "dialogue"
	LineParenthetical LineType = "parenthetical"
	LineAction        LineType = "action"
)

// ScriptLine is one typed line of the document. Instances are immutable
// once created; the document replaces them wholesale via splices.
type ScriptLine struct {
	Type         LineType `json:"type"`
	Content      string   `json:"content"`
	OriginalText string   `json:"original_text"`
}

// Scene is a back-reference into the line sequence marking the position
// of a heading line. It is derived at ingestion time and not recomputed
// after edits.
type Scene struct {
	Name      string `json:"name"`
	LineIndex int    `json:"lineIndex"`
}

// Selection is a contiguous line range chosen by the user, valid for the
// sequence as it was when the selection was taken. It becomes stale the
// moment the sequence is mutated; the caller is responsible for clearing
// it after an edit.
type Selection struct {
	Text       string `json:"text"`
	StartIndex int    `json:"startIndex"`
	EndIndex   int    `json:"endIndex"`
}

// EditHistoryEntry records one reversible line-range replacement.
// OriginalLines always has exactly EndIndex-StartIndex+1 entries as
// measured when the entry was created; NewLines is whatever the
// classifier produced and may differ in length.
type EditHistoryEntry struct {
	ID            string       `json:"id"`
	Timestamp     time.Time    `json:"timestamp"`
	StartIndex    int          `json:"startIndex"`
	EndIndex      int          `json:"endIndex"`
	OriginalLines []ScriptLine `json:"originalLines"`
	NewLines      []ScriptLine `json:"newLines"`
	OriginalText  string       `json:"originalText"`
	NewText       string       `json:"newText"`
	Prompt        string       `json:"prompt"`
}

// ParseResult is what the ingestion layer hands to the document store.
type ParseResult struct {
	Lines      []ScriptLine `json:"lines"`
	Characters []string     `json:"characters"`
	Scenes     []Scene      `json:"scenes"`
	Format     string       `json:"format"` // "pdf", "fdx" or ""
}

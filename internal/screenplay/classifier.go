// internal/screenplay/classifier.go
package screenplay

import (
	"regexp"
	"strings"

	"github.com/slavodej/screenwright/internal/models"
)

// Scene heading prefixes (INT., EXT., INT/EXT., I/E., etc.)
var sceneHeadingRe = regexp.MustCompile(`(?i)^(INT\.|EXT\.|INT/EXT\.|I/E\.|INT\./EXT\.|EXT\./INT\.)`)

// Prose that interrupts a dialogue run: transition keywords, or a
// subject followed by a third-person action verb.
var (
	transitionRe = regexp.MustCompile(`(?i)\b(REVEAL|CUT TO|ON:|DISSOLVE TO|FADE|PAN TO)`)
	actionVerbRe = regexp.MustCompile(`(?i)^\w[\w']*(?:\s+\w[\w']*)?\s+(says|turns|moves|walks|looks|stares|enters|exits)\b`)
)

const maxCharacterCueLen = 45

// classifierRule is one predicate/result pair of the classification
// policy. Rules are evaluated top to bottom; the first match wins.
type classifierRule struct {
	name  string
	match func(text string, prev models.LineType) (models.LineType, bool)
}

// classifierRules is the classification policy in priority order. The
// order is the contract: tests pin it down, not "correct" screenplay
// semantics. It is a heuristic and intentionally misreads edge cases
// (a short all-caps action sentence reads as a character cue).
var classifierRules = []classifierRule{
	{
		name: "scene heading",
		match: func(text string, _ models.LineType) (models.LineType, bool) {
			if sceneHeadingRe.MatchString(text) && text == strings.ToUpper(text) {
				return models.LineHeading, true
			}
			return "", false
		},
	},
	{
		name: "parenthetical",
		match: func(text string, _ models.LineType) (models.LineType, bool) {
			if strings.HasPrefix(text, "(") && strings.HasSuffix(text, ")") {
				return models.LineParenthetical, true
			}
			return "", false
		},
	},
	{
		name: "character cue",
		match: func(text string, _ models.LineType) (models.LineType, bool) {
			if text == strings.ToUpper(text) &&
				len(text) <= maxCharacterCueLen &&
				!strings.Contains(text, ".") {
				return models.LineCharacter, true
			}
			return "", false
		},
	},
	{
		name: "dialogue after cue",
		match: func(_ string, prev models.LineType) (models.LineType, bool) {
			if prev == models.LineCharacter || prev == models.LineParenthetical {
				return models.LineDialogue, true
			}
			return "", false
		},
	},
	{
		name: "dialogue continuation",
		match: func(text string, prev models.LineType) (models.LineType, bool) {
			if prev != models.LineDialogue {
				return "", false
			}
			if transitionRe.MatchString(text) || actionVerbRe.MatchString(text) {
				return models.LineAction, true
			}
			return models.LineDialogue, true
		},
	},
	{
		name: "default action",
		match: func(_ string, _ models.LineType) (models.LineType, bool) {
			return models.LineAction, true
		},
	},
}

// ClassifyLine assigns a type to a single trimmed segment given the type
// of the immediately preceding segment ("" when there is none).
func ClassifyLine(text string, prev models.LineType) models.LineType {
	for _, rule := range classifierRules {
		if typ, ok := rule.match(text, prev); ok {
			return typ
		}
	}
	return models.LineAction
}

// ClassifyBlock turns a block of free text into typed lines. Segments
// are split on newlines; segments that are empty after trimming are
// dropped and never become lines. Type assignment is stateful within
// the call: each segment sees the type assigned to the segment before
// it, starting from prev.
func ClassifyBlock(text string, prev models.LineType) []models.ScriptLine {
	segments := strings.Split(text, "\n")
	lines := make([]models.ScriptLine, 0, len(segments))

	for _, segment := range segments {
		trimmed := strings.TrimSpace(segment)
		if trimmed == "" {
			continue
		}
		typ := ClassifyLine(trimmed, prev)
		lines = append(lines, models.ScriptLine{
			Type:         typ,
			Content:      trimmed,
			OriginalText: segment,
		})
		prev = typ
	}

	return lines
}

// internal/screenplay/history.go
package screenplay

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/slavodej/screenwright/internal/models"
)

// EntryDiff renders a compact line-oriented diff between the replaced
// text and its replacement, for history display. Removed lines are
// prefixed with "-", inserted lines with "+", unchanged lines with " ".
func EntryDiff(entry models.EditHistoryEntry) string {
	dmp := diffmatchpatch.New()

	a, b, lineArray := dmp.DiffLinesToChars(entry.OriginalText, entry.NewText)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var sb strings.Builder
	for _, diff := range diffs {
		prefix := " "
		switch diff.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		}
		for _, line := range strings.Split(strings.TrimRight(diff.Text, "\n"), "\n") {
			sb.WriteString(prefix)
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

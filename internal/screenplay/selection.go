// internal/screenplay/selection.go
package screenplay

import (
	"github.com/slavodej/screenwright/internal/models"
)

// resolveSelection maps the two anchors discovered by the presentation
// layer (the nearest line-index-tagged ancestor of each selection
// endpoint, or a negative value when none was found) to the minimal
// covering line range. Taking min/max tolerates backward selections,
// i.e. dragging from a later line to an earlier one. A missing anchor
// rejects the selection: nil, no error.
func resolveSelection(startAnchor, endAnchor, lineCount int) *models.Selection {
	if startAnchor < 0 || endAnchor < 0 {
		return nil
	}

	start, end := startAnchor, endAnchor
	if start > end {
		start, end = end, start
	}
	if end >= lineCount {
		return nil
	}

	return &models.Selection{StartIndex: start, EndIndex: end}
}

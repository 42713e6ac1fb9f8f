// internal/parser/text.go
package parser

import (
	"github.com/slavodej/screenwright/internal/models"
	"github.com/slavodej/screenwright/internal/screenplay"
)

// ParseText classifies raw screenplay text line by line with the same
// heuristic classifier the editor uses for replacement text.
func ParseText(content string) *models.ParseResult {
	lines := screenplay.ClassifyBlock(content, "")
	characters, scenes := collectMetadata(lines)

	return &models.ParseResult{
		Lines:      lines,
		Characters: characters,
		Scenes:     scenes,
		Format:     "",
	}
}

// internal/parser/pdf.go
package parser

import (
	"bytes"
	"strings"

	"github.com/ledongthuc/pdf"

	apperrors "github.com/slavodej/screenwright/internal/errors"
	"github.com/slavodej/screenwright/internal/models"
	"github.com/slavodej/screenwright/internal/screenplay"
)

// ParsePDF extracts text rows from a PDF and classifies them with the
// heuristic classifier. Plain extraction loses the positional hints a
// layout-aware parser would have, so the content heuristics carry the
// whole classification; that matches how replacement text is typed
// after an edit.
func ParsePDF(content []byte) (result *models.ParseResult, err error) {
	// The pdf package panics on some malformed files; surface those as
	// validation failures instead of crashing the upload path.
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = apperrors.NewValidationError("invalid or corrupted PDF file", nil)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, apperrors.NewValidationError("invalid or corrupted PDF file", err)
	}

	lines := make([]models.ScriptLine, 0)
	var prev models.LineType

	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}

		for _, row := range rows {
			var sb strings.Builder
			for _, word := range row.Content {
				sb.WriteString(word.S)
			}
			text := strings.TrimSpace(sb.String())
			if text == "" {
				continue
			}

			lineType := screenplay.ClassifyLine(text, prev)
			lines = append(lines, models.ScriptLine{
				Type:         lineType,
				Content:      text,
				OriginalText: text,
			})
			prev = lineType
		}
	}

	characters, scenes := collectMetadata(lines)
	return &models.ParseResult{
		Lines:      lines,
		Characters: characters,
		Scenes:     scenes,
		Format:     "pdf",
	}, nil
}

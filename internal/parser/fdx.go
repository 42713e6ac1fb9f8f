// internal/parser/fdx.go
package parser

import (
	"encoding/xml"
	"strings"

	apperrors "github.com/slavodej/screenwright/internal/errors"
	"github.com/slavodej/screenwright/internal/models"
)

// fdxDocument is the subset of the Final Draft XML schema this parser
// reads: paragraphs with a Type attribute and text runs.
type fdxDocument struct {
	XMLName    xml.Name       `xml:"FinalDraft"`
	Paragraphs []fdxParagraph `xml:"Content>Paragraph"`
}

type fdxParagraph struct {
	Type string   `xml:"Type,attr"`
	Text []string `xml:"Text"`
}

// ParseFDX reads a Final Draft (.fdx) file. FDX carries explicit
// paragraph types, so no heuristics are involved; unknown paragraph
// types fall back to action.
func ParseFDX(content []byte) (*models.ParseResult, error) {
	var doc fdxDocument
	if err := xml.Unmarshal(content, &doc); err != nil {
		return nil, apperrors.NewValidationError("invalid FDX file", err)
	}

	lines := make([]models.ScriptLine, 0, len(doc.Paragraphs))
	for _, paragraph := range doc.Paragraphs {
		fullText := strings.TrimSpace(strings.Join(paragraph.Text, ""))
		if fullText == "" {
			continue
		}

		lineType := models.LineAction
		switch paragraph.Type {
		case "Scene Heading":
			lineType = models.LineHeading
		case "Character":
			lineType = models.LineCharacter
		case "Dialogue":
			lineType = models.LineDialogue
		case "Parenthetical":
			lineType = models.LineParenthetical
		}

		lines = append(lines, models.ScriptLine{
			Type:         lineType,
			Content:      fullText,
			OriginalText: fullText,
		})
	}

	characters, scenes := collectMetadata(lines)
	return &models.ParseResult{
		Lines:      lines,
		Characters: characters,
		Scenes:     scenes,
		Format:     "fdx",
	}, nil
}

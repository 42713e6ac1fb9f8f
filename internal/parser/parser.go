// internal/parser/parser.go
package parser

import (
	"path/filepath"
	"sort"
	"strings"

	apperrors "github.com/slavodej/screenwright/internal/errors"
	"github.com/slavodej/screenwright/internal/models"
)

// MaxFileSize caps script uploads at 10 MB, checked before any parsing.
const MaxFileSize = 10 * 1024 * 1024

// Parse turns an uploaded script file into the initial document state.
// The format is chosen by file extension: .fdx, .pdf, or plain text
// (.txt / .fountain).
func Parse(filename string, content []byte) (*models.ParseResult, error) {
	if len(content) == 0 {
		return nil, apperrors.NewValidationError("empty file provided", nil)
	}
	if len(content) > MaxFileSize {
		return nil, apperrors.NewValidationError("file too large, maximum size is 10MB", nil)
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".fdx":
		return ParseFDX(content)
	case ".pdf":
		return ParsePDF(content)
	case ".txt", ".fountain":
		return ParseText(string(content)), nil
	default:
		return nil, apperrors.NewValidationError("unsupported file format, please upload PDF, FDX, TXT or Fountain", nil)
	}
}

// collectMetadata derives the scene index and the character list from a
// typed line sequence: scenes point back at heading lines, characters
// are the deduplicated, sorted set of cue texts.
func collectMetadata(lines []models.ScriptLine) ([]string, []models.Scene) {
	seen := make(map[string]bool)
	characters := make([]string, 0)
	scenes := make([]models.Scene, 0)

	for i, line := range lines {
		switch line.Type {
		case models.LineHeading:
			scenes = append(scenes, models.Scene{Name: line.Content, LineIndex: i})
		case models.LineCharacter:
			if !seen[line.Content] {
				seen[line.Content] = true
				characters = append(characters, line.Content)
			}
		}
	}

	sort.Strings(characters)
	return characters, scenes
}

package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/slavodej/screenwright/internal/errors"
	"github.com/slavodej/screenwright/internal/models"
	"github.com/slavodej/screenwright/internal/screenplay"
	"github.com/slavodej/screenwright/internal/storage"
)

func newExportFixture(t *testing.T) (*ExportService, *screenplay.Document) {
	t.Helper()

	fileStorage, err := storage.NewFileStorage(t.TempDir())
	require.NoError(t, err)

	doc := screenplay.NewDocument()
	doc.SetScript([]models.ScriptLine{
		{Type: models.LineHeading, Content: "INT. KITCHEN - DAY", OriginalText: "INT. KITCHEN - DAY"},
		{Type: models.LineCharacter, Content: "JOHN", OriginalText: "JOHN"},
		{Type: models.LineParenthetical, Content: "(whispering)", OriginalText: "(whispering)"},
		{Type: models.LineDialogue, Content: "We need to leave now.", OriginalText: "We need to leave now."},
		{Type: models.LineAction, Content: "Mary turns toward the door.", OriginalText: "Mary turns toward the door."},
	}, []string{"JOHN"}, []models.Scene{{Name: "INT. KITCHEN - DAY", LineIndex: 0}}, "fdx")

	return NewExportService(fileStorage), doc
}

func TestExport_PlainText(t *testing.T) {
	svc, doc := newExportFixture(t)

	result, err := svc.Export("script_1", doc, "txt")
	require.NoError(t, err)

	assert.Equal(t, "txt", result.Format)
	assert.Equal(t, "text/plain; charset=utf-8", result.ContentType)
	assert.Equal(t, "INT. KITCHEN - DAY\nJOHN\n(whispering)\nWe need to leave now.\nMary turns toward the door.\n", result.Content)
	assert.True(t, strings.HasPrefix(result.FilePath, "exports/script_1_"))
}

func TestExport_Fountain(t *testing.T) {
	svc, doc := newExportFixture(t)

	result, err := svc.Export("script_1", doc, "fountain")
	require.NoError(t, err)

	// Blank line before the character cue so a Fountain reader sees a
	// dialogue block, none before the first heading.
	assert.True(t, strings.HasPrefix(result.Content, "INT. KITCHEN - DAY\n"))
	assert.Contains(t, result.Content, "\n\nJOHN\n(whispering)\nWe need to leave now.\n")
}

func TestExport_PDF(t *testing.T) {
	svc, doc := newExportFixture(t)

	result, err := svc.Export("script_1", doc, "pdf")
	require.NoError(t, err)

	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, strings.HasPrefix(result.Content, "%PDF"))
}

func TestExport_ArtifactPersisted(t *testing.T) {
	fileStorage, err := storage.NewFileStorage(t.TempDir())
	require.NoError(t, err)
	svc := NewExportService(fileStorage)

	doc := screenplay.NewDocument()
	doc.SetScript([]models.ScriptLine{
		{Type: models.LineAction, Content: "Rain.", OriginalText: "Rain."},
	}, nil, nil, "")

	result, err := svc.Export("script_2", doc, "txt")
	require.NoError(t, err)

	filename := strings.TrimPrefix(result.FilePath, "exports/")
	assert.True(t, fileStorage.FileExists("exports", filename))

	saved, err := fileStorage.LoadFile("exports", filename)
	require.NoError(t, err)
	assert.Equal(t, result.Content, string(saved))
}

func TestExport_Rejections(t *testing.T) {
	svc, doc := newExportFixture(t)

	_, err := svc.Export("script_1", doc, "docx")
	assert.True(t, apperrors.IsValidationError(err))

	empty := screenplay.NewDocument()
	_, err = svc.Export("script_3", empty, "txt")
	assert.True(t, apperrors.IsValidationError(err))
}

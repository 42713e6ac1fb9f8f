// internal/services/export_service.go
package services

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	apperrors "github.com/slavodej/screenwright/internal/errors"
	"github.com/slavodej/screenwright/internal/models"
	"github.com/slavodej/screenwright/internal/screenplay"
	"github.com/slavodej/screenwright/internal/storage"
	"github.com/slavodej/screenwright/internal/utils"
)

const exportsDir = "exports"

// ExportService renders the current state of a document into a
// downloadable artifact. Rendered files are kept under the storage
// root so repeat downloads don't re-render.
type ExportService struct {
	storage *storage.FileStorage
}

// NewExportService creates an export service on top of file storage.
func NewExportService(fileStorage *storage.FileStorage) *ExportService {
	return &ExportService{storage: fileStorage}
}

// Export renders the document in the requested format ("txt",
// "fountain" or "pdf") and saves the artifact.
func (s *ExportService) Export(scriptID string, doc *screenplay.Document, format string) (*models.ExportResult, error) {
	lines := doc.Lines()
	if len(lines) == 0 {
		return nil, apperrors.NewValidationError("nothing to export: script is empty", nil)
	}

	var (
		content     []byte
		contentType string
		ext         string
	)

	switch format {
	case "txt":
		content = []byte(renderPlainText(lines))
		contentType = "text/plain; charset=utf-8"
		ext = "txt"
	case "fountain":
		content = []byte(renderFountain(lines))
		contentType = "text/plain; charset=utf-8"
		ext = "fountain"
	case "pdf":
		pdfBytes, err := renderPDF(lines)
		if err != nil {
			return nil, apperrors.NewProcessingError("failed to render PDF", err)
		}
		content = pdfBytes
		contentType = "application/pdf"
		ext = "pdf"
	default:
		return nil, apperrors.NewValidationError(fmt.Sprintf("unsupported export format: %s", format), nil)
	}

	filename := fmt.Sprintf("%s_%d.%s", scriptID, time.Now().Unix(), ext)
	if err := s.storage.SaveFile(exportsDir, filename, content); err != nil {
		return nil, apperrors.NewProcessingError("failed to save export", err)
	}

	utils.GetLogger().Info("script exported", map[string]interface{}{
		"script_id": scriptID,
		"format":    format,
		"bytes":     len(content),
	})

	return &models.ExportResult{
		FilePath:    exportsDir + "/" + filename,
		Format:      format,
		ContentType: contentType,
		Content:     string(content),
		CreatedAt:   time.Now(),
	}, nil
}

// renderPlainText joins the raw line text, one line per element.
func renderPlainText(lines []models.ScriptLine) string {
	var sb strings.Builder
	for _, line := range lines {
		sb.WriteString(line.Content)
		sb.WriteString("\n")
	}
	return sb.String()
}

// renderFountain emits Fountain markup: blank line before scene
// headings and character cues so a Fountain reader re-derives the same
// element structure.
func renderFountain(lines []models.ScriptLine) string {
	var sb strings.Builder
	for i, line := range lines {
		switch line.Type {
		case models.LineHeading, models.LineCharacter:
			if i > 0 {
				sb.WriteString("\n")
			}
		}
		sb.WriteString(line.Content)
		sb.WriteString("\n")
	}
	return sb.String()
}

// Screenplay page geometry in millimetres for a US Letter page set in
// 12pt Courier.
const (
	pdfLeftAction        = 38.0
	pdfLeftCharacter     = 106.0
	pdfLeftParenthetical = 90.0
	pdfLeftDialogue      = 70.0
	pdfRightMargin       = 25.0
	pdfTopMargin         = 25.0
	pdfLineHeight        = 5.0
)

func renderPDF(lines []models.ScriptLine) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "Letter", "")
	pdf.SetMargins(pdfLeftAction, pdfTopMargin, pdfRightMargin)
	pdf.SetAutoPageBreak(true, pdfTopMargin)
	pdf.AddPage()
	pdf.SetFont("Courier", "", 12)

	pageWidth, _ := pdf.GetPageSize()

	for _, line := range lines {
		left := pdfLeftAction
		text := line.Content

		switch line.Type {
		case models.LineHeading:
			text = strings.ToUpper(text)
			pdf.Ln(pdfLineHeight)
		case models.LineCharacter:
			left = pdfLeftCharacter
			text = strings.ToUpper(text)
			pdf.Ln(pdfLineHeight)
		case models.LineParenthetical:
			left = pdfLeftParenthetical
		case models.LineDialogue:
			left = pdfLeftDialogue
		}

		pdf.SetLeftMargin(left)
		pdf.SetX(left)
		width := pageWidth - left - pdfRightMargin
		pdf.MultiCell(width, pdfLineHeight, text, "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// internal/api/handlers.go
package api

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/slavodej/screenwright/internal/config"
	apperrors "github.com/slavodej/screenwright/internal/errors"
	"github.com/slavodej/screenwright/internal/llm"
	"github.com/slavodej/screenwright/internal/models"
	"github.com/slavodej/screenwright/internal/parser"
	"github.com/slavodej/screenwright/internal/screenplay"
	"github.com/slavodej/screenwright/internal/services"
	"github.com/slavodej/screenwright/internal/utils"
)

// Handler serves the editor API.
type Handler struct {
	Documents *services.DocumentService
	Rewrites  *services.RewriteService
	Exports   *services.ExportService
	Hub       *EventHub
	Response  *ResponseHelper
}

// NewHandler wires the handler onto its services.
func NewHandler(documents *services.DocumentService, rewrites *services.RewriteService, exports *services.ExportService) *Handler {
	return &Handler{
		Documents: documents,
		Rewrites:  rewrites,
		Exports:   exports,
		Hub:       NewEventHub(),
		Response:  NewResponseHelper(),
	}
}

// ReplaceRequest replaces an inclusive line range with new text.
type ReplaceRequest struct {
	StartIndex int    `json:"start_index"`
	EndIndex   int    `json:"end_index"`
	Text       string `json:"text"`
	Prompt     string `json:"prompt,omitempty"`
}

// SelectionRequest carries the two line-index anchors of a drag.
type SelectionRequest struct {
	StartIndex int `json:"start_index"`
	EndIndex   int `json:"end_index"`
}

// ScriptRewriteRequest rewrites the active selection of a script.
type ScriptRewriteRequest struct {
	Prompt string `json:"prompt"`
	Apply  bool   `json:"apply,omitempty"`
}

// scriptPayload is the full document snapshot returned to clients.
type scriptPayload struct {
	ScriptID   string              `json:"script_id"`
	Lines      []models.ScriptLine `json:"lines"`
	Characters []string            `json:"characters"`
	Scenes     []models.Scene      `json:"scenes"`
	Format     string              `json:"format"`
	LineCount  int                 `json:"line_count"`
}

func snapshotPayload(id string, doc *screenplay.Document) scriptPayload {
	lines := doc.Lines()
	return scriptPayload{
		ScriptID:   id,
		Lines:      lines,
		Characters: doc.Characters(),
		Scenes:     doc.Scenes(),
		Format:     doc.Format(),
		LineCount:  len(lines),
	}
}

// Health reports server liveness and basic state.
func (h *Handler) Health(c *gin.Context) {
	h.Response.Success(c, gin.H{
		"status":       "ok",
		"open_scripts": h.Documents.Count(),
		"providers":    llm.ListProviders(),
		"timestamp":    time.Now().Format(time.RFC3339),
	})
}

// UploadScript ingests a screenplay file and opens a document for it.
func (h *Handler) UploadScript(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.Response.BadRequest(c, "missing file upload")
		return
	}
	defer file.Close()

	if header.Size > config.MaxUploadSize {
		h.Response.Error(c, 413, "FILE_TOO_LARGE", "file exceeds the 10 MB upload limit")
		return
	}

	content, err := io.ReadAll(io.LimitReader(file, config.MaxUploadSize+1))
	if err != nil {
		h.Response.InternalError(c, "failed to read upload")
		return
	}
	if int64(len(content)) > config.MaxUploadSize {
		h.Response.Error(c, 413, "FILE_TOO_LARGE", "file exceeds the 10 MB upload limit")
		return
	}

	result, err := parser.Parse(header.Filename, content)
	if err != nil {
		h.Response.AppError(c, err)
		return
	}

	id, doc := h.Documents.CreateFromParse(result)
	h.Hub.Attach(id, doc)

	h.Response.Created(c, snapshotPayload(id, doc))
}

// GetScript returns the current document snapshot.
func (h *Handler) GetScript(c *gin.Context) {
	id := c.Param("id")
	doc, err := h.Documents.Get(id)
	if err != nil {
		h.Response.AppError(c, err)
		return
	}

	h.Response.Success(c, snapshotPayload(id, doc))
}

// CloseScript drops a document.
func (h *Handler) CloseScript(c *gin.Context) {
	if err := h.Documents.Close(c.Param("id")); err != nil {
		h.Response.AppError(c, err)
		return
	}
	h.Response.Success(c, nil, "script closed")
}

// ReplaceLines splices new text over a line range and records the edit.
func (h *Handler) ReplaceLines(c *gin.Context) {
	doc, err := h.Documents.Get(c.Param("id"))
	if err != nil {
		h.Response.AppError(c, err)
		return
	}

	var req ReplaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "invalid request body", err.Error())
		return
	}

	entry, err := doc.Replace(req.StartIndex, req.EndIndex, req.Text, req.Prompt)
	if err != nil {
		h.Response.BadRequest(c, err.Error())
		return
	}

	h.Response.Success(c, gin.H{
		"entry":      entry,
		"line_count": doc.LineCount(),
	})
}

// SetSelection records the selected line range.
func (h *Handler) SetSelection(c *gin.Context) {
	doc, err := h.Documents.Get(c.Param("id"))
	if err != nil {
		h.Response.AppError(c, err)
		return
	}

	var req SelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "invalid request body", err.Error())
		return
	}

	sel := doc.SetSelection(req.StartIndex, req.EndIndex)
	if sel == nil {
		h.Response.BadRequest(c, "selection anchors are missing or out of range")
		return
	}

	h.Response.Success(c, sel)
}

// GetSelection returns the active selection, if any.
func (h *Handler) GetSelection(c *gin.Context) {
	doc, err := h.Documents.Get(c.Param("id"))
	if err != nil {
		h.Response.AppError(c, err)
		return
	}

	h.Response.Success(c, gin.H{"selection": doc.Selection()})
}

// ClearSelection drops the active selection.
func (h *Handler) ClearSelection(c *gin.Context) {
	doc, err := h.Documents.Get(c.Param("id"))
	if err != nil {
		h.Response.AppError(c, err)
		return
	}

	doc.ClearSelection()
	h.Response.Success(c, nil, "selection cleared")
}

// RewriteSelection sends the active selection to the rewrite
// collaborator. With apply=true the replacement is spliced into the
// document in the same request; otherwise the text is only returned and
// the document is untouched.
func (h *Handler) RewriteSelection(c *gin.Context) {
	doc, err := h.Documents.Get(c.Param("id"))
	if err != nil {
		h.Response.AppError(c, err)
		return
	}

	var req ScriptRewriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "invalid request body", err.Error())
		return
	}

	sel := doc.Selection()
	if sel == nil {
		h.Response.BadRequest(c, "no active selection to rewrite")
		return
	}

	rewritten, err := h.Rewrites.Rewrite(c.Request.Context(), models.RewriteRequest{
		Selection:  sel.Text,
		Prompt:     req.Prompt,
		Context:    doc.ContextAround(sel.StartIndex, sel.EndIndex, screenplay.ContextRadius),
		FileFormat: doc.Format(),
	})
	if err != nil {
		h.Response.AppError(c, err)
		return
	}

	response := gin.H{"rewritten_text": rewritten}

	if req.Apply {
		entry, err := doc.Replace(sel.StartIndex, sel.EndIndex, rewritten, req.Prompt)
		if err != nil {
			// The selection went stale between resolve and splice.
			h.Response.BadRequest(c, err.Error())
			return
		}
		doc.ClearSelection()
		response["entry"] = entry
		response["line_count"] = doc.LineCount()
	}

	h.Response.Success(c, response)
}

// RewriteText is the stateless rewrite endpoint: selection, prompt and
// context all arrive in the request body, no open script needed.
func (h *Handler) RewriteText(c *gin.Context) {
	var req models.RewriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "invalid request body", err.Error())
		return
	}

	rewritten, err := h.Rewrites.Rewrite(c.Request.Context(), req)
	if err != nil {
		h.Response.AppError(c, err)
		return
	}

	h.Response.Success(c, models.RewriteResponse{RewrittenText: rewritten})
}

// GetHistory lists the edit history, most recent first. With
// ?diff=true each entry carries a unified line diff.
func (h *Handler) GetHistory(c *gin.Context) {
	doc, err := h.Documents.Get(c.Param("id"))
	if err != nil {
		h.Response.AppError(c, err)
		return
	}

	entries := doc.History()

	if c.Query("diff") == "true" {
		type entryWithDiff struct {
			models.EditHistoryEntry
			Diff string `json:"diff"`
		}
		out := make([]entryWithDiff, len(entries))
		for i, entry := range entries {
			out[i] = entryWithDiff{EditHistoryEntry: entry, Diff: screenplay.EntryDiff(entry)}
		}
		h.Response.Success(c, gin.H{"entries": out, "count": len(out)})
		return
	}

	h.Response.Success(c, gin.H{"entries": entries, "count": len(entries)})
}

// UndoEdit reverses one history entry by id.
func (h *Handler) UndoEdit(c *gin.Context) {
	doc, err := h.Documents.Get(c.Param("id"))
	if err != nil {
		h.Response.AppError(c, err)
		return
	}

	entryID := c.Param("entry_id")
	if !doc.UndoEdit(entryID) {
		h.Response.AppError(c, apperrors.NewNotFoundError("history entry not found", nil))
		return
	}

	h.Response.Success(c, gin.H{
		"undone":     entryID,
		"line_count": doc.LineCount(),
	})
}

// ClearHistory empties the edit history, keeping the lines.
func (h *Handler) ClearHistory(c *gin.Context) {
	doc, err := h.Documents.Get(c.Param("id"))
	if err != nil {
		h.Response.AppError(c, err)
		return
	}

	doc.ClearHistory()
	h.Response.Success(c, nil, "history cleared")
}

// ExportScript renders the document as txt, fountain or pdf.
func (h *Handler) ExportScript(c *gin.Context) {
	id := c.Param("id")
	doc, err := h.Documents.Get(id)
	if err != nil {
		h.Response.AppError(c, err)
		return
	}

	format := c.DefaultQuery("format", "txt")
	result, err := h.Exports.Export(id, doc, format)
	if err != nil {
		h.Response.AppError(c, err)
		return
	}

	h.Response.ExportResponse(c, result)
}

// GetLLMStatus reports the configured rewrite provider.
func (h *Handler) GetLLMStatus(c *gin.Context) {
	cfg := config.GetCurrentConfig()

	status := gin.H{
		"provider":   cfg.LLMProvider,
		"configured": h.Rewrites != nil && h.Rewrites.Provider != nil,
	}
	if h.Rewrites != nil && h.Rewrites.Provider != nil {
		status["name"] = h.Rewrites.Provider.GetName()
		status["models"] = h.Rewrites.Provider.GetSupportedModels()
	}

	h.Response.Success(c, status)
}

// UpdateLLMConfig swaps the rewrite provider configuration at runtime.
func (h *Handler) UpdateLLMConfig(c *gin.Context) {
	var req struct {
		Provider string            `json:"provider"`
		Config   map[string]string `json:"config"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "invalid request body", err.Error())
		return
	}

	provider, err := llm.GetProvider(req.Provider, req.Config)
	if err != nil {
		h.Response.BadRequest(c, "failed to initialize provider", err.Error())
		return
	}

	if err := config.UpdateLLMConfig(req.Provider, req.Config); err != nil {
		h.Response.InternalError(c, "failed to persist provider configuration", err.Error())
		return
	}

	h.Rewrites.Provider = provider
	h.Rewrites.Model = req.Config["default_model"]

	utils.GetLogger().Info("rewrite provider updated", map[string]interface{}{
		"provider": req.Provider,
	})

	h.Response.Success(c, gin.H{"provider": req.Provider}, "provider updated")
}

// ScriptSocket streams document events for one script over WebSocket.
func (h *Handler) ScriptSocket(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.Documents.Get(id); err != nil {
		h.Response.AppError(c, err)
		return
	}

	h.Hub.ServeScript(c, id)
}

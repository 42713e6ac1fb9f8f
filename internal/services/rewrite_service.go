// internal/services/rewrite_service.go
package services

import (
	"context"
	"strings"

	apperrors "github.com/slavodej/screenwright/internal/errors"
	"github.com/slavodej/screenwright/internal/llm"
	"github.com/slavodej/screenwright/internal/models"
	"github.com/slavodej/screenwright/internal/utils"
)

// Input caps for the rewrite collaborator, enforced before any request
// leaves the process.
const (
	MaxPromptLength    = 10 * 1000  // 10KB
	MaxSelectionLength = 50 * 1000  // 50KB
	MaxContextLength   = 100 * 1000 // 100KB
)

const rewriteSystemPromptBase = `You are a professional script editor and screenwriter specializing in screenplay formatting.
%s
CRITICAL FORMATTING RULES:
1. PRESERVE the exact screenplay structure. Each element must be on its own line.
2. Scene headings: ALL CAPS (e.g., "INT. COFFEE SHOP - DAY")
3. Character names: ALL CAPS on their own line before dialogue
4. Dialogue: Normal case, on lines following the character name
5. Parentheticals: In parentheses, on their own line between character name and dialogue
6. Action lines: Normal case, full width
7. Match the input structure exactly:
   - If input is ONLY dialogue text, output ONLY dialogue text (no character name)
   - If input includes character name + dialogue, output character name + dialogue
   - Never add screenplay elements that weren't in the original selection

OUTPUT RULES:
- Output ONLY the rewritten screenplay text
- Maintain line breaks between different elements
- Do NOT add any commentary, explanations, or markdown
- Do NOT wrap the output in code blocks or quotes
- Match the formatting style of the input exactly
- Keep character names on separate lines from dialogue`

const fdxFormatInfo = `
FILE FORMAT: Final Draft (.fdx)
- This is a professional screenplay format
- Character names should be ALL CAPS on their own line
- Dialogue follows immediately after the character name
- Scene headings are ALL CAPS (INT./EXT.)
`

const pdfFormatInfo = `
FILE FORMAT: PDF screenplay
- Standard screenplay formatting applies
- Character names should be ALL CAPS on their own line
- Dialogue follows immediately after the character name
- Scene headings are ALL CAPS (INT./EXT.)
`

// RewriteService asks the configured LLM provider for replacement text.
// It owns prompt construction and input validation; applying the result
// to a document is the caller's business. If the provider call is
// abandoned or fails, no document mutation happens anywhere.
type RewriteService struct {
	Provider llm.Provider
	Model    string
}

// NewRewriteService wraps a configured provider.
func NewRewriteService(provider llm.Provider, model string) *RewriteService {
	return &RewriteService{Provider: provider, Model: model}
}

// Rewrite validates the request, builds the screenplay prompt and
// performs a single completion round trip.
func (s *RewriteService) Rewrite(ctx context.Context, req models.RewriteRequest) (string, error) {
	if err := validateRewriteRequest(req); err != nil {
		return "", err
	}
	if s.Provider == nil {
		return "", apperrors.NewUnreachableError("no rewrite provider configured", nil)
	}

	systemPrompt := buildSystemPrompt(req.FileFormat)
	userMessage := buildUserMessage(req)

	resp, err := s.Provider.CompleteText(ctx, llm.CompletionRequest{
		Prompt:       userMessage,
		SystemPrompt: systemPrompt,
		Temperature:  0.7,
		Model:        s.Model,
	})
	if err != nil {
		utils.GetLogger().Error("rewrite request failed", map[string]interface{}{
			"err": err.Error(),
		})
		return "", err
	}

	text := stripCodeFences(resp.Text)
	if strings.TrimSpace(text) == "" {
		return "", apperrors.NewRejectedError("rewrite service returned empty text", nil)
	}

	utils.GetLogger().Info("rewrite completed", map[string]interface{}{
		"provider": resp.ProviderName,
		"model":    resp.ModelName,
		"tokens":   resp.TokensUsed,
	})

	return text, nil
}

func validateRewriteRequest(req models.RewriteRequest) error {
	if strings.TrimSpace(req.Selection) == "" {
		return apperrors.NewValidationError("selection cannot be empty or whitespace only", nil)
	}
	if len(req.Selection) > MaxSelectionLength {
		return apperrors.NewValidationError("selection too long", nil)
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return apperrors.NewValidationError("prompt cannot be empty or whitespace only", nil)
	}
	if len(req.Prompt) > MaxPromptLength {
		return apperrors.NewValidationError("prompt too long", nil)
	}
	if len(req.Context) > MaxContextLength {
		return apperrors.NewValidationError("context too long", nil)
	}
	switch req.FileFormat {
	case "", "pdf", "fdx":
	default:
		return apperrors.NewValidationError("unknown file format hint", nil)
	}
	return nil
}

func buildSystemPrompt(fileFormat string) string {
	formatInfo := ""
	switch fileFormat {
	case "fdx":
		formatInfo = fdxFormatInfo
	case "pdf":
		formatInfo = pdfFormatInfo
	}
	return strings.Replace(rewriteSystemPromptBase, "%s", formatInfo, 1)
}

func buildUserMessage(req models.RewriteRequest) string {
	context := req.Context
	if strings.TrimSpace(context) == "" {
		context = "No context provided"
	}

	var sb strings.Builder
	sb.WriteString("CONTEXT (surrounding script):\n")
	sb.WriteString(context)
	sb.WriteString("\n\n---\n\nTEXT TO REWRITE:\n")
	sb.WriteString(req.Selection)
	sb.WriteString("\n\n---\n\nINSTRUCTION: ")
	sb.WriteString(strings.TrimSpace(req.Prompt))
	sb.WriteString("\n\nRewrite the text above following the instruction. Preserve screenplay formatting with proper line breaks.")
	return sb.String()
}

// stripCodeFences removes a wrapping markdown fence some models add
// despite instructions.
func stripCodeFences(text string) string {
	s := strings.TrimSpace(text)
	if s == "" {
		return ""
	}
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx >= 0 {
			s = strings.TrimSpace(s[idx+1:])
		}
		if end := strings.LastIndex(s, "```"); end >= 0 {
			s = strings.TrimSpace(s[:end])
		}
	}
	return strings.TrimSpace(s)
}

// internal/models/rewrite.go
package models

// RewriteRequest is what the rewrite collaborator consumes: the
// selected text, a free-text instruction, the surrounding context and
// an optional source-format hint.
type RewriteRequest struct {
	Selection  string `json:"selection"`
	Prompt     string `json:"prompt"`
	Context    string `json:"context,omitempty"`
	FileFormat string `json:"fileFormat,omitempty"` // "pdf", "fdx" or ""
}

// RewriteResponse carries the plain replacement text.
type RewriteResponse struct {
	RewrittenText string `json:"rewritten_text"`
}

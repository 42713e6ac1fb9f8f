// internal/models/export.go
package models

import (
	"time"
)

// ExportResult describes a rendered download artifact.
type ExportResult struct {
	FilePath    string    `json:"file_path"`
	Format      string    `json:"format"`
	ContentType string    `json:"content_type"`
	Content     string    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

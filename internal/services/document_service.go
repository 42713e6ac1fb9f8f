// internal/services/document_service.go
package services

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	apperrors "github.com/slavodej/screenwright/internal/errors"
	"github.com/slavodej/screenwright/internal/models"
	"github.com/slavodej/screenwright/internal/screenplay"
	"github.com/slavodej/screenwright/internal/utils"
)

var ErrScriptNotFound = apperrors.NewNotFoundError("script not found", nil)

var scriptSeq uint64

// DocumentService holds the live screenplay documents of the process,
// keyed by opaque script id. Documents exist only in memory: closing
// the process discards them.
type DocumentService struct {
	mu   sync.RWMutex
	docs map[string]*screenplay.Document
}

// NewDocumentService creates an empty registry.
func NewDocumentService() *DocumentService {
	return &DocumentService{
		docs: make(map[string]*screenplay.Document),
	}
}

// CreateFromParse opens a new document seeded with an ingestion result
// and returns its id.
func (s *DocumentService) CreateFromParse(result *models.ParseResult) (string, *screenplay.Document) {
	id := fmt.Sprintf("script_%d_%d", time.Now().UnixNano(), atomic.AddUint64(&scriptSeq, 1))

	doc := screenplay.NewDocument()
	doc.SetScript(result.Lines, result.Characters, result.Scenes, result.Format)

	s.mu.Lock()
	s.docs[id] = doc
	s.mu.Unlock()

	utils.GetLogger().Info("script opened", map[string]interface{}{
		"script_id": id,
		"format":    result.Format,
		"lines":     len(result.Lines),
		"scenes":    len(result.Scenes),
	})

	return id, doc
}

// Get resolves a document by id.
func (s *DocumentService) Get(id string) (*screenplay.Document, error) {
	s.mu.RLock()
	doc, exists := s.docs[id]
	s.mu.RUnlock()

	if !exists {
		return nil, ErrScriptNotFound
	}
	return doc, nil
}

// Close drops a document from the registry.
func (s *DocumentService) Close(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.docs[id]; !exists {
		return ErrScriptNotFound
	}
	delete(s.docs, id)

	utils.GetLogger().Info("script closed", map[string]interface{}{
		"script_id": id,
	})
	return nil
}

// Count reports how many documents are open.
func (s *DocumentService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

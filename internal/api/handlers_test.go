package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slavodej/screenwright/internal/di"
	"github.com/slavodej/screenwright/internal/llm"
	"github.com/slavodej/screenwright/internal/models"
	"github.com/slavodej/screenwright/internal/services"
	"github.com/slavodej/screenwright/internal/storage"
)

const sampleScript = `INT. KITCHEN - DAY
JOHN
(whispering)
We need to leave now.
Mary turns toward the door.
MARY
Where would we even go?`

type stubProvider struct {
	text string
	err  error
}

func (p *stubProvider) Initialize(config map[string]string) error { return nil }
func (p *stubProvider) GetName() string                           { return "stub" }
func (p *stubProvider) GetSupportedModels() []string              { return []string{"stub-1"} }

func (p *stubProvider) CompleteText(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	if p.err != nil {
		return nil, p.err
	}
	return &llm.CompletionResponse{Text: p.text, ProviderName: "stub"}, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
	Message string          `json:"message"`
}

func setupTestRouter(t *testing.T, provider llm.Provider) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)
	t.Setenv("DATA_DIR", t.TempDir())
	t.Setenv("LOG_DIR", t.TempDir())

	fileStorage, err := storage.NewFileStorage(t.TempDir())
	require.NoError(t, err)

	container := di.GetContainer()
	container.Register("storage", fileStorage)
	container.Register("documents", services.NewDocumentService())
	container.Register("rewrite", services.NewRewriteService(provider, "stub-1"))
	container.Register("export", services.NewExportService(fileStorage))

	router, err := SetupRouter()
	require.NoError(t, err)
	return router
}

func doRequest(t *testing.T, router *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func uploadScript(t *testing.T, router *gin.Engine) string {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "script.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte(sampleScript))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))

	var payload struct {
		ScriptID string `json:"script_id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	require.NotEmpty(t, payload.ScriptID)
	return payload.ScriptID
}

func TestHealth(t *testing.T) {
	router := setupTestRouter(t, &stubProvider{text: "ok"})

	w, env := doRequest(t, router, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
}

func TestUploadAndGetScript(t *testing.T) {
	router := setupTestRouter(t, &stubProvider{text: "ok"})

	id := uploadScript(t, router)

	w, env := doRequest(t, router, http.MethodGet, "/api/scripts/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var payload struct {
		Lines      []models.ScriptLine `json:"lines"`
		Characters []string            `json:"characters"`
		LineCount  int                 `json:"line_count"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	assert.Equal(t, 7, payload.LineCount)
	assert.Equal(t, models.LineHeading, payload.Lines[0].Type)
	assert.Equal(t, []string{"JOHN", "MARY"}, payload.Characters)
}

func TestGetScript_NotFound(t *testing.T) {
	router := setupTestRouter(t, &stubProvider{text: "ok"})

	w, env := doRequest(t, router, http.MethodGet, "/api/scripts/script_nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestReplaceHistoryUndoFlow(t *testing.T) {
	router := setupTestRouter(t, &stubProvider{text: "ok"})
	id := uploadScript(t, router)

	w, env := doRequest(t, router, http.MethodPost, "/api/scripts/"+id+"/replace", ReplaceRequest{
		StartIndex: 3,
		EndIndex:   3,
		Text:       "We leave tonight. No arguments.",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var replaced struct {
		Entry models.EditHistoryEntry `json:"entry"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &replaced))
	assert.NotEmpty(t, replaced.Entry.ID)
	assert.Equal(t, "Manual edit", replaced.Entry.Prompt)

	w, env = doRequest(t, router, http.MethodGet, "/api/scripts/"+id+"/history?diff=true", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var history struct {
		Count   int `json:"count"`
		Entries []struct {
			ID   string `json:"id"`
			Diff string `json:"diff"`
		} `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &history))
	require.Equal(t, 1, history.Count)
	assert.Equal(t, replaced.Entry.ID, history.Entries[0].ID)
	assert.Contains(t, history.Entries[0].Diff, "-We need to leave now.")
	assert.Contains(t, history.Entries[0].Diff, "+We leave tonight. No arguments.")

	w, _ = doRequest(t, router, http.MethodPost, "/api/scripts/"+id+"/history/"+replaced.Entry.ID+"/undo", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Undone entry is consumed: a second undo is a 404.
	w, _ = doRequest(t, router, http.MethodPost, "/api/scripts/"+id+"/history/"+replaced.Entry.ID+"/undo", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReplace_OutOfBounds(t *testing.T) {
	router := setupTestRouter(t, &stubProvider{text: "ok"})
	id := uploadScript(t, router)

	w, env := doRequest(t, router, http.MethodPost, "/api/scripts/"+id+"/replace", ReplaceRequest{
		StartIndex: 5,
		EndIndex:   99,
		Text:       "nope",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)
}

func TestSelectionAndRewriteFlow(t *testing.T) {
	router := setupTestRouter(t, &stubProvider{text: "JOHN\nWe leave. Right now."})
	id := uploadScript(t, router)

	w, env := doRequest(t, router, http.MethodPost, "/api/scripts/"+id+"/selection", SelectionRequest{
		StartIndex: 3,
		EndIndex:   1,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var sel models.Selection
	require.NoError(t, json.Unmarshal(env.Data, &sel))
	assert.Equal(t, 1, sel.StartIndex) // reverse drag normalized
	assert.Equal(t, 3, sel.EndIndex)

	w, env = doRequest(t, router, http.MethodPost, "/api/scripts/"+id+"/rewrite", ScriptRewriteRequest{
		Prompt: "Make it more urgent.",
		Apply:  true,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var rewritten struct {
		RewrittenText string                  `json:"rewritten_text"`
		Entry         models.EditHistoryEntry `json:"entry"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &rewritten))
	assert.Equal(t, "JOHN\nWe leave. Right now.", rewritten.RewrittenText)
	assert.Equal(t, "Make it more urgent.", rewritten.Entry.Prompt)

	// Applying the rewrite cleared the selection.
	w, env = doRequest(t, router, http.MethodGet, "/api/scripts/"+id+"/selection", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var selState struct {
		Selection *models.Selection `json:"selection"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &selState))
	assert.Nil(t, selState.Selection)
}

func TestRewrite_NoSelection(t *testing.T) {
	router := setupTestRouter(t, &stubProvider{text: "ok"})
	id := uploadScript(t, router)

	w, _ := doRequest(t, router, http.MethodPost, "/api/scripts/"+id+"/rewrite", ScriptRewriteRequest{
		Prompt: "anything",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSelection_RejectsMissingAnchor(t *testing.T) {
	router := setupTestRouter(t, &stubProvider{text: "ok"})
	id := uploadScript(t, router)

	w, _ := doRequest(t, router, http.MethodPost, "/api/scripts/"+id+"/selection", SelectionRequest{
		StartIndex: -1,
		EndIndex:   2,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatelessRewrite(t *testing.T) {
	router := setupTestRouter(t, &stubProvider{text: "Better line."})

	w, env := doRequest(t, router, http.MethodPost, "/api/rewrite", models.RewriteRequest{
		Selection: "Some line.",
		Prompt:    "Improve it.",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.RewriteResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, "Better line.", resp.RewrittenText)
}

func TestRewrite_ErrorStatuses(t *testing.T) {
	unreachable := setupTestRouter(t, nil) // no provider configured
	id := uploadScript(t, unreachable)

	_, _ = doRequest(t, unreachable, http.MethodPost, "/api/scripts/"+id+"/selection", SelectionRequest{StartIndex: 0, EndIndex: 1})
	w, env := doRequest(t, unreachable, http.MethodPost, "/api/scripts/"+id+"/rewrite", ScriptRewriteRequest{Prompt: "x"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "SERVICE_UNREACHABLE", env.Error.Code)
}

func TestExportEndpoint(t *testing.T) {
	router := setupTestRouter(t, &stubProvider{text: "ok"})
	id := uploadScript(t, router)

	req := httptest.NewRequest(http.MethodGet, "/api/scripts/"+id+"/export?format=txt", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, w.Body.String(), "INT. KITCHEN - DAY\nJOHN\n")
}

func TestCloseScript(t *testing.T) {
	router := setupTestRouter(t, &stubProvider{text: "ok"})
	id := uploadScript(t, router)

	w, _ := doRequest(t, router, http.MethodDelete, "/api/scripts/"+id, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = doRequest(t, router, http.MethodGet, "/api/scripts/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

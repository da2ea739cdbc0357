package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SandhanuDulmeth/Health-Triage/internal/config"
	"github.com/SandhanuDulmeth/Health-Triage/internal/domain"
	"github.com/SandhanuDulmeth/Health-Triage/internal/service"
)

type stubAnalyzer struct {
	err error
}

func (s *stubAnalyzer) Analyze(ctx context.Context, history []domain.ChatMessage, hint *domain.LocationHint) (*domain.AnalysisResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.AnalysisResult{Text: "🚨 Safety note: nothing urgent."}, nil
}

func newTestServer(analyzer service.Analyzer) http.Handler {
	sessions := service.NewSessionService(analyzer, nil, nil, nil, nil)
	srv := NewServer(&config.Config{Port: 0}, sessions)
	return srv.Handler()
}

func do(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func createSession(t *testing.T, handler http.Handler) domain.TriageSession {
	t.Helper()
	rec := do(t, handler, "POST", "/api/sessions", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var session domain.TriageSession
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	return session
}

func TestHealthz(t *testing.T) {
	handler := newTestServer(&stubAnalyzer{})
	rec := do(t, handler, "GET", "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateAndGetSession(t *testing.T) {
	handler := newTestServer(&stubAnalyzer{})
	session := createSession(t, handler)

	assert.Equal(t, domain.StatusIdle, session.Status)
	assert.Empty(t, session.Messages)

	rec := do(t, handler, "GET", "/api/sessions/"+session.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetUnknownSession(t *testing.T) {
	handler := newTestServer(&stubAnalyzer{})
	rec := do(t, handler, "GET", "/api/sessions/00000000-0000-0000-0000-000000000000", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmitRoundTrip(t *testing.T) {
	handler := newTestServer(&stubAnalyzer{})
	session := createSession(t, handler)

	rec := do(t, handler, "POST", "/api/sessions/"+session.ID+"/messages", map[string]any{
		"text":      "my wrist hurts",
		"painLevel": 7,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var got domain.TriageSession
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, domain.StatusResult, got.Status)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, domain.RoleUser, got.Messages[0].Role)
	assert.Equal(t, domain.RoleModel, got.Messages[1].Role)
}

func TestSubmitEmptyRejected(t *testing.T) {
	handler := newTestServer(&stubAnalyzer{})
	session := createSession(t, handler)

	rec := do(t, handler, "POST", "/api/sessions/"+session.ID+"/messages", map[string]any{
		"text": "",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, handler, "GET", "/api/sessions/"+session.ID, nil)
	var got domain.TriageSession
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Empty(t, got.Messages)
	assert.Equal(t, domain.StatusIdle, got.Status)
}

func TestSubmitProviderFailure(t *testing.T) {
	handler := newTestServer(&stubAnalyzer{err: domain.ErrAnalysisUnavailable})
	session := createSession(t, handler)

	rec := do(t, handler, "POST", "/api/sessions/"+session.ID+"/messages", map[string]any{
		"text": "help",
	})
	require.Equal(t, http.StatusBadGateway, rec.Code)

	var body struct {
		Error   string                `json:"error"`
		Session *domain.TriageSession `json:"session"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "could not reach the service", body.Error)
	require.NotNil(t, body.Session)
	assert.Equal(t, domain.StatusError, body.Session.Status)
	// the just-submitted user message is retained for retry
	assert.Len(t, body.Session.Messages, 1)
}

func TestResetEndpoint(t *testing.T) {
	handler := newTestServer(&stubAnalyzer{})
	session := createSession(t, handler)

	rec := do(t, handler, "POST", "/api/sessions/"+session.ID+"/messages", map[string]any{"text": "hello"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, handler, "POST", "/api/sessions/"+session.ID+"/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got domain.TriageSession
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Empty(t, got.Messages)
	assert.Equal(t, domain.StatusIdle, got.Status)
}

func TestSelectFileEndpoint(t *testing.T) {
	handler := newTestServer(&stubAnalyzer{})

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "wound.png")
	require.NoError(t, err)
	part.Write([]byte{0x89, 0x50, 0x4e, 0x47})
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/api/attachments", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var att domain.MediaAttachment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &att))
	assert.Equal(t, domain.AttachmentImage, att.Type)
	assert.NotEmpty(t, att.Data)
}

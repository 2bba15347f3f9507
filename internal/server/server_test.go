package server

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/medscribe/visitflow/internal/appointment"
	"github.com/medscribe/visitflow/internal/audio"
	"github.com/medscribe/visitflow/internal/logger"
	"github.com/medscribe/visitflow/internal/store"
	"github.com/medscribe/visitflow/internal/summary"
	"github.com/medscribe/visitflow/internal/transcribe"
)

type memStore struct {
	appts map[string]*store.Appointment
}

func (m *memStore) Get(ctx context.Context, uid, id string) (*store.Appointment, error) {
	appt, ok := m.appts[uid+"/"+id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *appt
	return &cp, nil
}

func (m *memStore) Update(ctx context.Context, uid, id string, fields map[string]any) error {
	appt, ok := m.appts[uid+"/"+id]
	if !ok {
		return nil
	}
	if v, ok := fields["notes"].(string); ok {
		appt.Notes = v
	}
	if v, ok := fields["rawTranscript"].(string); ok {
		appt.RawTranscript = v
	}
	if v, ok := fields["status"].(string); ok {
		appt.Status = v
	}
	return nil
}

type memBlob struct{}

func (memBlob) Put(ctx context.Context, path string, data []byte, ct string) (string, error) {
	return "gs://b/" + path, nil
}
func (memBlob) Get(ctx context.Context, path string) ([]byte, error) {
	return nil, errors.New("not found")
}
func (memBlob) DeleteByPrefix(ctx context.Context, prefix string) error { return nil }

type echoTranscriber struct{}

func (echoTranscriber) TranscribeChunk(ctx context.Context, b []byte, format string) (transcribe.Fragment, error) {
	return transcribe.Fragment{Text: "spoken text"}, nil
}
func (echoTranscriber) Render(f transcribe.Fragment) string { return f.Text }

type passPCM struct{}

func (passPCM) Normalize(ctx context.Context, b []byte, format string) ([]byte, error) {
	return b, nil
}

type onePieceSplitter struct{}

func (onePieceSplitter) Split(ctx context.Context, pcm []byte) ([]audio.Chunk, error) {
	return []audio.Chunk{{Index: 0, Data: pcm}}, nil
}

type stubSummarizer struct{}

func (stubSummarizer) GenerateSummary(ctx context.Context, corpus, ver string) (summary.Structured, error) {
	return &summary.SummaryV13{Summary: "ok", Title: "t"}, nil
}
func (stubSummarizer) GenerateQuestions(ctx context.Context, transcript string) ([]string, error) {
	return []string{"q1"}, nil
}

type allowVerifier struct{}

func (allowVerifier) Verify(ctx context.Context, idToken string) (string, error) {
	if idToken == "good" {
		return "u1", nil
	}
	return "", errors.New("bad token")
}

func newTestServer(appts map[string]*store.Appointment) *Server {
	gin.SetMode(gin.TestMode)
	log := logger.New("error")
	svc := appointment.NewService(
		&memStore{appts: appts}, memBlob{}, echoTranscriber{}, passPCM{},
		onePieceSplitter{}, stubSummarizer{}, log, "1.3",
	)
	return New(svc, allowVerifier{}, log)
}

func do(t *testing.T, srv *Server, method, path, token string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestHealthzNoAuth(t *testing.T) {
	srv := newTestServer(nil)
	if w := do(t, srv, http.MethodGet, "/healthz", "", nil, ""); w.Code != http.StatusOK {
		t.Errorf("healthz status = %d", w.Code)
	}
}

func TestAuthRequired(t *testing.T) {
	srv := newTestServer(map[string]*store.Appointment{})

	w := do(t, srv, http.MethodPost, "/api/v1/appointments/a1/questions", "", nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
	w = do(t, srv, http.MethodPost, "/api/v1/appointments/a1/questions", "wrong", nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestProcessMissingAppointment(t *testing.T) {
	srv := newTestServer(map[string]*store.Appointment{})

	w := do(t, srv, http.MethodPost, "/api/v1/appointments/nope/process", "good", nil, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestProcessEmptyAppointment(t *testing.T) {
	srv := newTestServer(map[string]*store.Appointment{"u1/a1": {}})

	w := do(t, srv, http.MethodPost, "/api/v1/appointments/a1/process", "good", nil, "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for empty corpus", w.Code)
	}
}

func TestProcessSuccess(t *testing.T) {
	srv := newTestServer(map[string]*store.Appointment{"u1/a1": {Notes: "knee pain"}})

	w := do(t, srv, http.MethodPost, "/api/v1/appointments/a1/process", "good", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"schemaVersion":"1.3"`) {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestUpdateNotes(t *testing.T) {
	appts := map[string]*store.Appointment{"u1/a1": {}}
	srv := newTestServer(appts)

	body := bytes.NewBufferString(`{"notes": "new patient notes"}`)
	w := do(t, srv, http.MethodPut, "/api/v1/appointments/a1/notes", "good", body, "application/json")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if appts["u1/a1"].Notes != "new patient notes" {
		t.Errorf("notes = %q", appts["u1/a1"].Notes)
	}
}

func TestUploadChunkMultipart(t *testing.T) {
	appts := map[string]*store.Appointment{"u1/a1": {}}
	srv := newTestServer(appts)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "chunk0.webm")
	if err != nil {
		t.Fatal(err)
	}
	part.Write([]byte{1, 2, 3})
	mw.Close()

	w := do(t, srv, http.MethodPost, "/api/v1/appointments/a1/chunks", "good", &buf, mw.FormDataContentType())
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "spoken text") {
		t.Errorf("body = %s", w.Body.String())
	}
	if appts["u1/a1"].RawTranscript != "spoken text" {
		t.Errorf("rawTranscript = %q", appts["u1/a1"].RawTranscript)
	}
}

func TestUploadChunkMissingFile(t *testing.T) {
	srv := newTestServer(map[string]*store.Appointment{"u1/a1": {}})

	w := do(t, srv, http.MethodPost, "/api/v1/appointments/a1/chunks", "good", nil, "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

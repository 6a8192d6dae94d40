package sessions

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/llm"
	"resume-builder/internal/shared/server/middleware"
	"resume-builder/resume/editor"
	"resume-builder/resume/model"
)

type fakeEnhancer struct {
	err   error
	calls int
}

func (f *fakeEnhancer) Enhance(ctx context.Context, doc model.Document) (model.Document, error) {
	f.calls++
	if f.err != nil {
		return model.Document{}, f.err
	}
	out := doc.Clone()
	out.PersonalInfo.Summary = "Enhanced: " + doc.PersonalInfo.Summary
	return out, nil
}

type fakePDF struct{}

func (fakePDF) Render(ctx context.Context, doc model.Document) ([]byte, error) {
	return []byte("%PDF-1.4 " + doc.PersonalInfo.Name), nil
}

func newTestRouter(enh editor.Enhancer) (*gin.Engine, *editor.Store) {
	gin.SetMode(gin.TestMode)
	store := editor.NewStore(time.Hour, nil)
	h := NewHandler(store, enh, fakePDF{})

	r := gin.New()
	r.Use(middleware.RequestID())
	h.RegisterRoutes(r.Group("/api/v1"))
	return r, store
}

func do(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeView(t *testing.T, w *httptest.ResponseRecorder) editor.View {
	t.Helper()
	var view editor.View
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode view: %v (%s)", err, w.Body.String())
	}
	return view
}

func createSession(t *testing.T, r *gin.Engine, body any) editor.View {
	t.Helper()
	w := do(t, r, http.MethodPost, "/api/v1/sessions", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	return decodeView(t, w)
}

func TestCreateSessionBlankAndSample(t *testing.T) {
	r, store := newTestRouter(&fakeEnhancer{})

	blank := createSession(t, r, nil)
	if blank.State != editor.StateIdle || len(blank.Document.Experience) != 1 {
		t.Fatalf("unexpected blank session: %+v", blank)
	}

	sample := createSession(t, r, map[string]any{"sample": true})
	if sample.Document.PersonalInfo.Name != "Alex Thompson" {
		t.Fatalf("expected sample document, got %+v", sample.Document.PersonalInfo)
	}
	if store.Len() != 2 {
		t.Fatalf("expected 2 sessions, got %d", store.Len())
	}
}

func TestCreateSessionFromDocumentWithEmptySection(t *testing.T) {
	r, _ := newTestRouter(&fakeEnhancer{})
	doc := model.Sample()
	doc.Experience = []model.Experience{}

	view := createSession(t, r, map[string]any{"document": doc})
	if len(view.Document.Experience) != 1 || !view.Document.Experience[0].IsBlank() {
		t.Fatalf("expected one blank experience entry, got %+v", view.Document.Experience)
	}

	w := do(t, r, http.MethodPut, "/api/v1/sessions/"+view.ID+"/entries/experience/0", map[string]any{"field": "company", "value": "Acme"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected padded entry to be editable, got %d: %s", w.Code, w.Body.String())
	}
}

func TestCreateSessionRejectsInvalidDocument(t *testing.T) {
	r, _ := newTestRouter(&fakeEnhancer{})
	w := do(t, r, http.MethodPost, "/api/v1/sessions", map[string]any{"document": map[string]any{"skills": []string{}}})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestEditFieldsAndEntries(t *testing.T) {
	r, _ := newTestRouter(&fakeEnhancer{})
	view := createSession(t, r, nil)
	base := "/api/v1/sessions/" + view.ID

	w := do(t, r, http.MethodPut, base+"/personal", map[string]any{"field": "name", "value": "Jamie Doe"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if got := decodeView(t, w).Document.PersonalInfo.Name; got != "Jamie Doe" {
		t.Fatalf("expected name to be set, got %q", got)
	}

	w = do(t, r, http.MethodPost, base+"/entries/experience", nil)
	if w.Code != http.StatusCreated || len(decodeView(t, w).Document.Experience) != 2 {
		t.Fatalf("expected a second experience entry, got %d: %s", w.Code, w.Body.String())
	}

	w = do(t, r, http.MethodPut, base+"/entries/experience/1", map[string]any{"field": "company", "value": "Acme"})
	if w.Code != http.StatusOK || decodeView(t, w).Document.Experience[1].Company != "Acme" {
		t.Fatalf("expected company to be set, got %d: %s", w.Code, w.Body.String())
	}

	w = do(t, r, http.MethodPut, base+"/entries/skills/0", map[string]any{"value": "Go"})
	if w.Code != http.StatusOK || decodeView(t, w).Document.Skills[0] != "Go" {
		t.Fatalf("expected skill to be set, got %d: %s", w.Code, w.Body.String())
	}

	w = do(t, r, http.MethodDelete, base+"/entries/experience/0", nil)
	doc := decodeView(t, w).Document
	if len(doc.Experience) != 1 || doc.Experience[0].Company != "Acme" {
		t.Fatalf("expected remaining entry to be Acme, got %+v", doc.Experience)
	}
}

func TestEditValidationErrors(t *testing.T) {
	r, _ := newTestRouter(&fakeEnhancer{})
	view := createSession(t, r, nil)
	base := "/api/v1/sessions/" + view.ID

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
	}{
		{name: "unknown field", method: http.MethodPut, path: base + "/personal", body: map[string]any{"field": "age", "value": "3"}, status: http.StatusBadRequest},
		{name: "missing value", method: http.MethodPut, path: base + "/personal", body: map[string]any{"field": "name"}, status: http.StatusBadRequest},
		{name: "index out of range", method: http.MethodPut, path: base + "/entries/education/4", body: map[string]any{"field": "school", "value": "x"}, status: http.StatusBadRequest},
		{name: "bad index", method: http.MethodDelete, path: base + "/entries/education/x", status: http.StatusBadRequest},
		{name: "unknown section", method: http.MethodPost, path: base + "/entries/awards", status: http.StatusBadRequest},
		{name: "unknown session", method: http.MethodGet, path: "/api/v1/sessions/nope", status: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, r, tt.method, tt.path, tt.body)
			if w.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, w.Code, w.Body.String())
			}
		})
	}
}

func TestSubmitApplyReject(t *testing.T) {
	enh := &fakeEnhancer{}
	r, _ := newTestRouter(enh)
	view := createSession(t, r, map[string]any{"sample": true})
	base := "/api/v1/sessions/" + view.ID

	w := do(t, r, http.MethodPost, base+"/submit", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var env struct {
		Success bool        `json:"success"`
		Content editor.View `json:"content"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if !env.Success || env.Content.State != editor.StateReviewing || env.Content.Candidate == nil {
		t.Fatalf("expected reviewing state with candidate, got %+v", env.Content)
	}

	w = do(t, r, http.MethodPut, base+"/personal", map[string]any{"field": "name", "value": "x"})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected edits to be locked during review, got %d", w.Code)
	}
	w = do(t, r, http.MethodPost, base+"/submit", nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected second submit to conflict, got %d", w.Code)
	}

	w = do(t, r, http.MethodGet, base+"/preview?format=text", nil)
	if !strings.Contains(w.Body.String(), "Enhanced: ") {
		t.Fatalf("expected preview to show the candidate, got %s", w.Body.String())
	}

	w = do(t, r, http.MethodPost, base+"/apply", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	applied := decodeView(t, w)
	if applied.State != editor.StateIdle || !strings.HasPrefix(applied.Document.PersonalInfo.Summary, "Enhanced: ") {
		t.Fatalf("expected candidate to be applied, got %+v", applied)
	}

	w = do(t, r, http.MethodPost, base+"/reject", nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected reject without candidate to conflict, got %d", w.Code)
	}
}

func TestSubmitFailureKeepsDocument(t *testing.T) {
	enh := &fakeEnhancer{err: llm.NewError(llm.KindTimeout, "model request timed out")}
	r, _ := newTestRouter(enh)
	view := createSession(t, r, map[string]any{"sample": true})
	base := "/api/v1/sessions/" + view.ID

	w := do(t, r, http.MethodPost, base+"/submit", nil)
	if w.Code != http.StatusGatewayTimeout {
		t.Fatalf("expected 504, got %d: %s", w.Code, w.Body.String())
	}
	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode failure: %v", err)
	}
	if resp["code"] != string(llm.KindTimeout) || resp["retryable"] != true {
		t.Fatalf("unexpected failure envelope: %v", resp)
	}

	w = do(t, r, http.MethodGet, base, nil)
	got := decodeView(t, w)
	if got.State != editor.StateIdle || got.Document.PersonalInfo.Summary != view.Document.PersonalInfo.Summary {
		t.Fatalf("expected untouched idle session, got %+v", got)
	}
	if got.LastError == "" {
		t.Fatalf("expected last error to be recorded")
	}
}

type panickingEnhancer struct{}

func (panickingEnhancer) Enhance(context.Context, model.Document) (model.Document, error) {
	panic("provider client bug")
}

func TestSubmitPanicLeavesSessionIdle(t *testing.T) {
	r, _ := newTestRouter(panickingEnhancer{})
	view := createSession(t, r, map[string]any{"sample": true})
	base := "/api/v1/sessions/" + view.ID

	w := do(t, r, http.MethodPost, base+"/submit", nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d: %s", w.Code, w.Body.String())
	}

	got := decodeView(t, do(t, r, http.MethodGet, base, nil))
	if got.State != editor.StateIdle {
		t.Fatalf("expected idle session after panic, got %s", got.State)
	}
	w = do(t, r, http.MethodPut, base+"/personal", map[string]any{"field": "name", "value": "Jamie"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected session to stay editable, got %d", w.Code)
	}
}

func TestSubmitUntaggedError(t *testing.T) {
	r, _ := newTestRouter(&fakeEnhancer{err: errors.New("boom")})
	view := createSession(t, r, nil)
	w := do(t, r, http.MethodPost, "/api/v1/sessions/"+view.ID+"/submit", nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

func TestPreviewFormats(t *testing.T) {
	r, _ := newTestRouter(&fakeEnhancer{})
	view := createSession(t, r, map[string]any{"sample": true})
	base := "/api/v1/sessions/" + view.ID + "/preview"

	w := do(t, r, http.MethodGet, base, nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"sections"`) {
		t.Fatalf("unexpected json preview: %d %s", w.Code, w.Body.String())
	}

	w = do(t, r, http.MethodGet, base+"?format=html", nil)
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("unexpected html content type %q", ct)
	}

	w = do(t, r, http.MethodGet, base+"?format=docx", nil)
	if cd := w.Header().Get("Content-Disposition"); cd != `attachment; filename="Alex_Thompson_resume.docx"` {
		t.Fatalf("unexpected content disposition %q", cd)
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("PK")) {
		t.Fatalf("expected zip body")
	}

	w = do(t, r, http.MethodGet, base+"?format=pdf", nil)
	if ct := w.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("unexpected pdf content type %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); cd != `attachment; filename="Alex_Thompson_resume.pdf"` {
		t.Fatalf("unexpected content disposition %q", cd)
	}

	w = do(t, r, http.MethodGet, base+"?format=rtf", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unsupported format, got %d", w.Code)
	}
}

func TestDeleteSession(t *testing.T) {
	r, store := newTestRouter(&fakeEnhancer{})
	view := createSession(t, r, nil)

	w := do(t, r, http.MethodDelete, "/api/v1/sessions/"+view.ID, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if store.Len() != 0 {
		t.Fatalf("expected session to be removed")
	}
	w = do(t, r, http.MethodDelete, "/api/v1/sessions/"+view.ID, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

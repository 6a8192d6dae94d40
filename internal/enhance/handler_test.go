package enhance

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/llm"
	"resume-builder/internal/runs"
	"resume-builder/internal/shared/server/middleware"
	"resume-builder/resume/model"
)

func newTestRouter(t *testing.T, fc *fakeCompleter, key string) (*gin.Engine, *runs.MemoryRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc, repo, _ := newTestService(t, fc)
	svc.Gateway = NewGateway(fc, staticKey(key), testSettings())

	r := gin.New()
	r.Use(middleware.RequestID())
	NewHandler(svc, repo).RegisterRoutes(r.Group("/api/v1"))
	return r, repo
}

func postEnhance(t *testing.T, r *gin.Engine, body []byte) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/enhance", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v (%s)", err, w.Body.String())
	}
	return w, resp
}

func sampleBody(t *testing.T) []byte {
	t.Helper()
	b, err := json.Marshal(model.Sample())
	if err != nil {
		t.Fatalf("marshal sample: %v", err)
	}
	return b
}

func TestEnhanceEndpointSuccess(t *testing.T) {
	fc := &fakeCompleter{reply: sampleJSON(t)}
	r, _ := newTestRouter(t, fc, "k")

	w, resp := postEnhance(t, r, sampleBody(t))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if resp["success"] != true || resp["format"] != "json" {
		t.Fatalf("unexpected envelope: %v", resp)
	}
	content, ok := resp["content"].(map[string]any)
	if !ok {
		t.Fatalf("expected content object, got %T", resp["content"])
	}
	for _, key := range []string{"personalInfo", "experience", "education", "extraCurriculars", "skills"} {
		if _, ok := content[key]; !ok {
			t.Fatalf("content missing %q", key)
		}
	}
}

func TestEnhanceEndpointRejectsInvalidBody(t *testing.T) {
	fc := &fakeCompleter{reply: sampleJSON(t)}
	r, _ := newTestRouter(t, fc, "k")

	w, resp := postEnhance(t, r, []byte(`{"personalInfo":{}}`))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if resp["success"] != false || resp["code"] != "invalid_request" {
		t.Fatalf("unexpected envelope: %v", resp)
	}
	if _, ok := resp["violations"].([]any); !ok {
		t.Fatalf("expected field violations, got %v", resp["violations"])
	}
	if fc.callCount() != 0 {
		t.Fatalf("expected no model call, got %d", fc.callCount())
	}

	w, _ = postEnhance(t, r, []byte(`not json`))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", w.Code)
	}
}

func TestEnhanceEndpointFailureStatuses(t *testing.T) {
	upstream := llm.NewError(llm.KindUpstream, "invalid api key")
	upstream.StatusCode = 401

	tests := []struct {
		name      string
		fc        *fakeCompleter
		key       string
		status    int
		code      llm.Kind
		retryable bool
	}{
		{name: "missing credential", fc: &fakeCompleter{}, key: "", status: http.StatusInternalServerError, code: llm.KindConfiguration},
		{name: "upstream", fc: &fakeCompleter{err: upstream}, key: "k", status: http.StatusBadGateway, code: llm.KindUpstream, retryable: true},
		{name: "unparseable", fc: &fakeCompleter{reply: "sorry"}, key: "k", status: http.StatusBadGateway, code: llm.KindContentParse},
		{name: "schema", fc: &fakeCompleter{reply: `{"skills":[]}`}, key: "k", status: http.StatusBadGateway, code: llm.KindSchema},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newTestRouter(t, tt.fc, tt.key)
			w, resp := postEnhance(t, r, sampleBody(t))
			if w.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, w.Code, w.Body.String())
			}
			if resp["success"] != false || resp["code"] != string(tt.code) {
				t.Fatalf("unexpected envelope: %v", resp)
			}
			if resp["retryable"] != tt.retryable {
				t.Fatalf("expected retryable=%v, got %v", tt.retryable, resp["retryable"])
			}
			if ts, _ := resp["timestamp"].(string); ts == "" {
				t.Fatalf("expected timestamp")
			}
		})
	}
}

func TestEnhanceEndpointReturnsRawReply(t *testing.T) {
	const prose = "Sorry, I cannot help with that résumé today."
	r, _ := newTestRouter(t, &fakeCompleter{reply: prose}, "k")

	w, resp := postEnhance(t, r, sampleBody(t))
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}
	if resp["details"] != prose {
		t.Fatalf("expected raw reply in details, got %v", resp["details"])
	}
	if _, ok := resp["violations"]; ok {
		t.Fatalf("expected no violations for a parse failure, got %v", resp["violations"])
	}
}

func TestEnhanceEndpointSchemaFailureKeepsRawAndViolations(t *testing.T) {
	const reply = `Here you go: {"skills":["Go"]}`
	r, _ := newTestRouter(t, &fakeCompleter{reply: reply}, "k")

	w, resp := postEnhance(t, r, sampleBody(t))
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}
	if resp["details"] != reply {
		t.Fatalf("expected raw reply in details, got %v", resp["details"])
	}
	if v, ok := resp["violations"].([]any); !ok || len(v) == 0 {
		t.Fatalf("expected schema violations, got %v", resp["violations"])
	}
}

func TestEnhanceEndpointUpstreamStatus(t *testing.T) {
	upstream := llm.NewError(llm.KindUpstream, "rate limited")
	upstream.StatusCode = 429
	r, _ := newTestRouter(t, &fakeCompleter{err: upstream}, "k")

	w, resp := postEnhance(t, r, sampleBody(t))
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}
	if resp["upstreamStatus"] != float64(429) {
		t.Fatalf("expected upstreamStatus 429, got %v", resp["upstreamStatus"])
	}
	if _, ok := resp["details"]; ok {
		t.Fatalf("expected no details for an upstream error, got %v", resp["details"])
	}
}

func TestStatusFor(t *testing.T) {
	cases := map[llm.Kind]int{
		llm.KindConfiguration:  http.StatusInternalServerError,
		llm.KindTimeout:        http.StatusGatewayTimeout,
		llm.KindUpstream:       http.StatusBadGateway,
		llm.KindUpstreamFormat: http.StatusBadGateway,
		llm.KindContentParse:   http.StatusBadGateway,
		llm.KindSchema:         http.StatusBadGateway,
	}
	for kind, want := range cases {
		if got := StatusFor(kind); got != want {
			t.Fatalf("StatusFor(%s) = %d, want %d", kind, got, want)
		}
	}
}

func TestRunsEndpoints(t *testing.T) {
	fc := &fakeCompleter{reply: sampleJSON(t)}
	r, repo := newTestRouter(t, fc, "k")

	w, _ := postEnhance(t, r, sampleBody(t))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	list, err := repo.List(context.Background(), 10, 0)
	if err != nil || len(list) != 1 {
		t.Fatalf("expected one run, got %v (%v)", list, err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs?limit=5", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var page struct {
		Runs []runs.Run `json:"runs"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode runs: %v", err)
	}
	if len(page.Runs) != 1 || page.Runs[0].ID != list[0].ID {
		t.Fatalf("unexpected runs page: %+v", page.Runs)
	}
	if page.Runs[0].RequestID == "" {
		t.Fatalf("expected request id on run")
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/runs/"+list[0].ID, nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/runs/missing", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

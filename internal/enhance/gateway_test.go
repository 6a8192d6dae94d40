package enhance

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-builder/internal/llm"
	"resume-builder/resume/model"
)

type fakeCompleter struct {
	mu      sync.Mutex
	reply   string
	err     error
	block   bool
	calls   int
	lastReq llm.CompletionRequest
}

func (f *fakeCompleter) Complete(ctx context.Context, req llm.CompletionRequest) (llm.Completion, error) {
	f.mu.Lock()
	f.calls++
	f.lastReq = req
	f.mu.Unlock()
	if f.block {
		<-ctx.Done()
		return llm.Completion{}, ctx.Err()
	}
	if f.err != nil {
		return llm.Completion{}, f.err
	}
	return llm.Completion{Content: f.reply, Model: req.Model}, nil
}

func (f *fakeCompleter) Name() string { return "deepseek" }

func (f *fakeCompleter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func staticKey(key string) CredentialFunc {
	return func() (string, bool) { return key, key != "" }
}

func testSettings() Settings {
	return Settings{
		Provider:      "deepseek",
		Model:         "deepseek-chat",
		CredentialEnv: "DEEPSEEK_API_KEY",
		Timeout:       time.Second,
		Temperature:   0.3,
		TopP:          0.95,
		MaxTokens:     4000,
	}
}

func sampleJSON(t *testing.T) string {
	t.Helper()
	out, err := json.Marshal(model.Sample())
	require.NoError(t, err)
	return string(out)
}

func TestAttemptWithoutCredentialMakesNoCall(t *testing.T) {
	fc := &fakeCompleter{reply: "{}"}
	gw := NewGateway(fc, staticKey(""), testSettings())

	_, err := gw.Attempt(context.Background(), model.Sample())
	require.Error(t, err)
	assert.Equal(t, llm.KindConfiguration, llm.KindOf(err))
	assert.Contains(t, err.Error(), "DeepSeek API key not configured (DEEPSEEK_API_KEY)")
	assert.Equal(t, 0, fc.callCount())
}

func TestAttemptReadsCredentialEachCall(t *testing.T) {
	t.Setenv("TEST_ENHANCE_KEY", "")
	fc := &fakeCompleter{reply: sampleJSON(t)}
	gw := NewGateway(fc, EnvCredential("TEST_ENHANCE_KEY"), testSettings())

	_, err := gw.Attempt(context.Background(), model.Sample())
	assert.Equal(t, llm.KindConfiguration, llm.KindOf(err))

	t.Setenv("TEST_ENHANCE_KEY", "rotated")
	_, err = gw.Attempt(context.Background(), model.Sample())
	require.NoError(t, err)
	assert.Equal(t, "rotated", fc.lastReq.APIKey)
}

func TestAttemptPassesSamplingSettings(t *testing.T) {
	fc := &fakeCompleter{reply: sampleJSON(t)}
	gw := NewGateway(fc, staticKey("k"), testSettings())

	res, err := gw.Attempt(context.Background(), model.Sample())
	require.NoError(t, err)
	assert.Equal(t, "deepseek-chat", fc.lastReq.Model)
	assert.Equal(t, 4000, fc.lastReq.MaxTokens)
	assert.InDelta(t, 0.3, fc.lastReq.Temperature, 0.001)
	assert.InDelta(t, 0.95, fc.lastReq.TopP, 0.001)
	assert.NotEmpty(t, res.PromptHash)
	assert.Equal(t, model.Sample().PersonalInfo.Name, res.Document.PersonalInfo.Name)
}

func TestAttemptSalvagesWrappedJSON(t *testing.T) {
	fc := &fakeCompleter{reply: "Here is your improved resume:\n```json\n" + sampleJSON(t) + "\n```\nGood luck!"}
	gw := NewGateway(fc, staticKey("k"), testSettings())

	doc, err := gw.Enhance(context.Background(), model.Blank())
	require.NoError(t, err)
	assert.Equal(t, "Alex Thompson", doc.PersonalInfo.Name)
}

func TestAttemptStrictParseWinsOverSalvage(t *testing.T) {
	// The whole reply is valid JSON, so no span is carved out of it even
	// though it contains an object.
	fc := &fakeCompleter{reply: "[" + sampleJSON(t) + "]"}
	gw := NewGateway(fc, staticKey("k"), testSettings())

	_, err := gw.Enhance(context.Background(), model.Sample())
	require.Error(t, err)
	assert.Equal(t, llm.KindSchema, llm.KindOf(err))
}

func TestAttemptMissingKeyIsSchemaError(t *testing.T) {
	reply := `{"personalInfo":{"name":"A","email":"","phone":"","location":"","summary":""},"experience":[],"education":[],"skills":[]}`
	fc := &fakeCompleter{reply: reply}
	gw := NewGateway(fc, staticKey("k"), testSettings())

	res, err := gw.Attempt(context.Background(), model.Sample())
	require.Error(t, err)
	e, ok := llm.AsError(err)
	require.True(t, ok)
	assert.Equal(t, llm.KindSchema, e.Kind)
	assert.Equal(t, reply, e.Raw)
	assert.Equal(t, reply, res.Raw)
	assert.False(t, e.Retryable())
}

func TestAttemptUnparseableReply(t *testing.T) {
	fc := &fakeCompleter{reply: "I cannot help with that."}
	gw := NewGateway(fc, staticKey("k"), testSettings())

	_, err := gw.Attempt(context.Background(), model.Sample())
	e, ok := llm.AsError(err)
	require.True(t, ok)
	assert.Equal(t, llm.KindContentParse, e.Kind)
	assert.Equal(t, "I cannot help with that.", e.Raw)
}

func TestAttemptTimesOut(t *testing.T) {
	fc := &fakeCompleter{block: true}
	settings := testSettings()
	settings.Timeout = 20 * time.Millisecond
	gw := NewGateway(fc, staticKey("k"), settings)

	_, err := gw.Attempt(context.Background(), model.Sample())
	require.Error(t, err)
	assert.Equal(t, llm.KindTimeout, llm.KindOf(err))
	e, _ := llm.AsError(err)
	assert.True(t, e.Retryable())
}

func TestAttemptKeepsProviderErrors(t *testing.T) {
	upstream := llm.NewError(llm.KindUpstream, "invalid api key")
	upstream.StatusCode = 401
	fc := &fakeCompleter{err: upstream}
	gw := NewGateway(fc, staticKey("k"), testSettings())

	_, err := gw.Attempt(context.Background(), model.Sample())
	e, ok := llm.AsError(err)
	require.True(t, ok)
	assert.Equal(t, 401, e.StatusCode)
	assert.Equal(t, "invalid api key", e.Message)
}

func TestBuildPromptCarriesSchemaAndDocument(t *testing.T) {
	doc := model.Sample()
	p, err := BuildPrompt(doc, "", "")
	require.NoError(t, err)
	assert.NotEmpty(t, p.System)
	assert.Contains(t, p.User, `"extraCurriculars"`)
	assert.Contains(t, p.User, "ResumeDocument")
	assert.Contains(t, p.User, doc.PersonalInfo.Name)
	assert.NotContains(t, p.User, "{{")

	override, err := BuildPrompt(doc, "v1", "Be terse.")
	require.NoError(t, err)
	assert.Equal(t, "Be terse.", override.System)
	assert.Equal(t, p.User, override.User)
	assert.NotEqual(t, p.Hash(), override.Hash())
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		want    string
		wantErr bool
	}{
		{name: "strict object", reply: ` {"a":1} `, want: `{"a":1}`},
		{name: "strict scalar", reply: `"text"`, want: `"text"`},
		{name: "wrapped", reply: "Sure! {\"a\":{\"b\":2}} done", want: `{"a":{"b":2}}`},
		{name: "no braces", reply: "nothing here", wantErr: true},
		{name: "malformed span", reply: "x {\"a\": } y", wantErr: true},
		{name: "reversed braces", reply: "} {", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.reply)
			if tt.wantErr {
				require.Error(t, err)
				e, ok := llm.AsError(err)
				require.True(t, ok)
				assert.Equal(t, llm.KindContentParse, e.Kind)
				assert.Equal(t, tt.reply, e.Raw)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, strings.TrimSpace(string(got)))
		})
	}
}

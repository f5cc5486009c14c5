package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/scenedsl/pkg/errors"
	"github.com/matzehuels/scenedsl/pkg/generate"
	"github.com/matzehuels/scenedsl/pkg/observability"
	"github.com/matzehuels/scenedsl/pkg/pipeline"
	"github.com/matzehuels/scenedsl/pkg/session/memory"
)

const trainingJSON = `{"scene": [{
	"name": "1. Button", "type": "FRAME",
	"node": {"children": [
		{"name": "1. Blue button", "type": "RECTANGLE", "node": {"color": {"r": 0, "g": 0, "b": 1}, "position": {"x": 0, "y": 0}, "width": 100, "height": 50}},
		{"name": "2. Make it red", "type": "RECTANGLE", "node": {"color": {"r": 1, "g": 0, "b": 0}, "position": {"x": 0, "y": 0}, "width": 100, "height": 50}}
	]}
}]}`

const boxJSON = `{"name": "Box", "type": "RECTANGLE", "node": {"color": "#0000ff", "position": {"x": 50, "y": 60}, "width": 100, "height": 50}}`

func newTestServer(t *testing.T, gen generate.Generator) *Server {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{})
	runner := pipeline.NewRunner(memory.NewStore(), gen, logger)
	return New(runner, logger)
}

func do(t *testing.T, s *Server, method, path, body string, header ...string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec, out
}

func saveTraining(t *testing.T, s *Server) string {
	t.Helper()
	rec, out := do(t, s, http.MethodPost, "/save-scene", trainingJSON)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	id, _ := out["sessionId"].(string)
	require.NotEmpty(t, id)
	return id
}

func errorCode(out map[string]any) string {
	e, _ := out["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

func TestHealthcheck(t *testing.T) {
	s := newTestServer(t, nil)
	for _, m := range []string{http.MethodGet, http.MethodPost} {
		rec, out := do(t, s, m, "/healthcheck", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ok", out["status"])
	}
}

func TestCORS(t *testing.T) {
	s := newTestServer(t, nil)

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/convert/primary", nil)
		req.Header.Set("Origin", "https://www.figma.com")
		req.Header.Set("Access-Control-Request-Method", "POST")
		req.Header.Set("Access-Control-Request-Headers", SessionHeader)
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("simple request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/healthcheck", nil)
		req.Header.Set("Origin", "null")
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestSaveScene(t *testing.T) {
	s := newTestServer(t, nil)
	rec, out := do(t, s, http.MethodPost, "/save-scene", trainingJSON)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(out["primary_prompt_prefix"].(string), "Blue button\n"))
	assert.Contains(t, out["edit_prompt_prefix"], "Modification: Make it red")
	assert.Len(t, out["scene"], 1)
}

func TestSaveSceneBadTraining(t *testing.T) {
	s := newTestServer(t, nil)
	rec, out := do(t, s, http.MethodPost, "/save-scene", `{"scene": [{"name": "x", "type": "FRAME", "node": {"children": []}}]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, string(errors.ErrCodeExampleCount), errorCode(out))
}

func TestBadJSON(t *testing.T) {
	s := newTestServer(t, nil)
	rec, out := do(t, s, http.MethodPost, "/dsl/encode", `{"scene": `)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(errors.ErrCodeInvalidInput), errorCode(out))
}

func TestConvertPrimary(t *testing.T) {
	gen := generate.Func(func(context.Context, string) (string, error) {
		return "name: Box\ntype: RECTANGLE\nnode:\n  color: '#ff0000'\n  position: {x: 0, y: 0}\n  width: 100\n  height: 50\n```", nil
	})
	s := newTestServer(t, gen)
	id := saveTraining(t, s)

	rec, out := do(t, s, http.MethodPost, "/convert/primary", `{"prompt": "a red box", "sessionId": "`+id+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	nodes, ok := out["outputScene"].([]any)
	require.True(t, ok)
	require.Len(t, nodes, 1)
	node := nodes[0].(map[string]any)["node"].(map[string]any)
	assert.Equal(t, 400.0, node["width"])
	assert.Equal(t, map[string]any{"x": 200.0, "y": 200.0}, node["position"])
	assert.Equal(t, map[string]any{"r": 1.0, "g": 0.0, "b": 0.0}, node["color"])
}

func TestConvertPrimarySessionHeader(t *testing.T) {
	gen := generate.Func(func(context.Context, string) (string, error) {
		return "name: Box\ntype: RECTANGLE\nnode:\n  position: {x: 0, y: 0}\n  width: 100\n  height: 50\n", nil
	})
	s := newTestServer(t, gen)
	id := saveTraining(t, s)

	rec, _ := do(t, s, http.MethodPost, "/convert/primary", `{"prompt": "box"}`, SessionHeader, id)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, out := do(t, s, http.MethodPost, "/convert/primary", `{"prompt": "box"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(errors.ErrCodeInvalidInput), errorCode(out))

	s.SetDefaultSession(id)
	rec, _ = do(t, s, http.MethodPost, "/convert/primary", `{"prompt": "box"}`)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestConvertUnknownSession(t *testing.T) {
	s := newTestServer(t, generate.Func(func(context.Context, string) (string, error) { return "", nil }))
	rec, out := do(t, s, http.MethodPost, "/convert/primary",
		`{"prompt": "box", "sessionId": "6ba7b810-9dad-11d1-80b4-00c04fd430c8"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, string(errors.ErrCodeSessionNotFound), errorCode(out))
}

func TestConvertRateLimited(t *testing.T) {
	s := newTestServer(t, generate.Func(func(context.Context, string) (string, error) {
		return "", &errors.RateLimitedError{RetryAfter: 7}
	}))
	id := saveTraining(t, s)
	rec, out := do(t, s, http.MethodPost, "/convert/primary", `{"prompt": "box", "sessionId": "`+id+`"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "7", rec.Header().Get("Retry-After"))
	assert.Equal(t, string(errors.ErrCodeRateLimited), errorCode(out))
}

func TestConvertEdit(t *testing.T) {
	gen := generate.Func(func(context.Context, string) (string, error) {
		return "node:\n  color: '#ff0000'\n```\n", nil
	})
	s := newTestServer(t, gen)
	id := saveTraining(t, s)

	body := `{"prompt": "make it red", "sessionId": "` + id + `", "scene": [` + boxJSON + `]}`
	rec, out := do(t, s, http.MethodPost, "/convert/edit", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, 50.0, out["x"])
	assert.Equal(t, 60.0, out["y"])
	nodes := out["outputScene"].([]any)
	require.Len(t, nodes, 1)
	node := nodes[0].(map[string]any)["node"].(map[string]any)
	assert.Equal(t, map[string]any{"r": 1.0, "g": 0.0, "b": 0.0}, node["color"])
	assert.Equal(t, map[string]any{"x": 50.0, "y": 60.0}, node["position"])
}

func TestEncodeDecode(t *testing.T) {
	s := newTestServer(t, nil)

	rec, out := do(t, s, http.MethodPost, "/dsl/encode", `{"scene": `+boxJSON+`}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	text := out["dsl"].(string)
	assert.True(t, strings.HasPrefix(text, "name: Box\n"), text)
	assert.Equal(t, map[string]any{"x": 50.0, "y": 60.0, "width": 100.0}, out["frame"])

	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(map[string]any{"dsl": text, "frame": out["frame"]}))
	rec, out = do(t, s, http.MethodPost, "/dsl/decode", buf.String())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	node := out["scene"].(map[string]any)
	assert.Equal(t, "Box", node["name"])
	assert.Equal(t, map[string]any{"x": 50.0, "y": 60.0}, node["node"].(map[string]any)["position"])
}

func TestDecodeMalformed(t *testing.T) {
	s := newTestServer(t, nil)
	rec, out := do(t, s, http.MethodPost, "/dsl/decode", `{"dsl": "name: [unclosed"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, string(errors.ErrCodeMalformedSceneShape), errorCode(out))
}

func TestEncodeDegenerate(t *testing.T) {
	s := newTestServer(t, nil)
	rec, out := do(t, s, http.MethodPost, "/dsl/encode", `{"scene": []}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, string(errors.ErrCodeDegenerateScene), errorCode(out))
}

func TestDiffApply(t *testing.T) {
	s := newTestServer(t, nil)
	red := strings.Replace(boxJSON, "#0000ff", "#ff0000", 1)

	rec, out := do(t, s, http.MethodPost, "/diff", `{"a": `+boxJSON+`, "b": `+red+`}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, map[string]any{"node": map[string]any{"color": "#ff0000"}}, out["patch"])
	assert.Equal(t, "node:\n  color: '#ff0000'\n", out["dsl"])

	rec, out = do(t, s, http.MethodPost, "/apply", `{"scene": `+boxJSON+`, "patch": {"node": {"color": "#ff0000"}}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	node := out["scene"].(map[string]any)["node"].(map[string]any)
	assert.Equal(t, map[string]any{"r": 1.0, "g": 0.0, "b": 0.0}, node["color"])

	rec, _ = do(t, s, http.MethodPost, "/apply", `{"scene": `+boxJSON+`, "dsl": "node:\n  color: '#ff0000'\n"}`)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, out = do(t, s, http.MethodPost, "/apply", `{"scene": `+boxJSON+`, "patch": {}, "dsl": "a: 1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(errors.ErrCodeInvalidInput), errorCode(out))
}

func TestStats(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	observability.Reset()
	t.Cleanup(observability.Reset)
	counters := observability.NewCounters()
	counters.Install()
	s.SetCounters(counters)

	rec, _ = do(t, s, http.MethodPost, "/dsl/encode", `{"scene": `+boxJSON+`}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec, _ = do(t, s, http.MethodPost, "/dsl/encode", `{"scene": []}`)
	require.NotEqual(t, http.StatusOK, rec.Code)

	rec, out := do(t, s, http.MethodGet, "/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2.0, out["conversions"])
	assert.Equal(t, 1.0, out["conversionErrors"])
	assert.Equal(t, 0.0, out["generations"])
}

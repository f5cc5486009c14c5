package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/matzehuels/scenedsl/pkg/core/diff"
	"github.com/matzehuels/scenedsl/pkg/core/geometry"
	"github.com/matzehuels/scenedsl/pkg/core/scene"
	"github.com/matzehuels/scenedsl/pkg/errors"
)

// frameJSON is the wire form of geometry.Frame.
type frameJSON struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Width float64 `json:"width"`
}

func toFrameJSON(f geometry.Frame) frameJSON {
	return frameJSON{X: f.TopLeft.X, Y: f.TopLeft.Y, Width: f.Width}
}

func (f frameJSON) geometry() geometry.Frame {
	return geometry.Frame{TopLeft: scene.Point{X: f.X, Y: f.Y}, Width: f.Width}
}

func (s *Server) sessionID(r *http.Request, body string) string {
	if id := strings.TrimSpace(body); id != "" {
		return id
	}
	if id := strings.TrimSpace(r.Header.Get(SessionHeader)); id != "" {
		return id
	}
	return s.DefaultSession()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	c := s.counters.Load()
	if c == nil {
		http.NotFound(w, r)
		return
	}
	s.writeJSON(w, http.StatusOK, c.Snapshot())
}

type saveSceneRequest struct {
	Scene scene.Scene `json:"scene"`
}

type saveSceneResponse struct {
	SessionID     string      `json:"sessionId"`
	Scene         scene.Scene `json:"scene"`
	PrimaryPrefix string      `json:"primary_prompt_prefix"`
	EditPrefix    string      `json:"edit_prompt_prefix"`
	ExpiresAt     *time.Time  `json:"expiresAt,omitempty"`
}

func (s *Server) handleSaveScene(w http.ResponseWriter, r *http.Request) {
	var req saveSceneRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	sess, err := s.runner.SaveScene(r.Context(), req.Scene)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp := saveSceneResponse{
		SessionID:     sess.ID,
		Scene:         sess.Training,
		PrimaryPrefix: sess.PrimaryPrefix,
		EditPrefix:    sess.EditPrefix,
	}
	if !sess.ExpiresAt.IsZero() {
		resp.ExpiresAt = &sess.ExpiresAt
	}
	s.writeJSON(w, http.StatusOK, resp)
}

type primaryRequest struct {
	Prompt    string `json:"prompt"`
	SessionID string `json:"sessionId"`
}

type outputResponse struct {
	OutputScene scene.Scene `json:"outputScene"`
}

func (s *Server) handleConvertPrimary(w http.ResponseWriter, r *http.Request) {
	var req primaryRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	out, err := s.runner.ConvertPrimary(r.Context(), s.sessionID(r, req.SessionID), req.Prompt)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, outputResponse{OutputScene: out})
}

type editRequest struct {
	Prompt    string      `json:"prompt"`
	Scene     scene.Scene `json:"scene"`
	SessionID string      `json:"sessionId"`
}

type editResponse struct {
	OutputScene scene.Scene `json:"outputScene"`
	X           float64     `json:"x"`
	Y           float64     `json:"y"`
}

func (s *Server) handleConvertEdit(w http.ResponseWriter, r *http.Request) {
	var req editRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.runner.ConvertEdit(r.Context(), s.sessionID(r, req.SessionID), req.Prompt, req.Scene)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, editResponse{
		OutputScene: res.Scene,
		X:           res.Origin.X,
		Y:           res.Origin.Y,
	})
}

type encodeRequest struct {
	Scene scene.Scene `json:"scene"`
}

type encodeResponse struct {
	DSL   string    `json:"dsl"`
	Frame frameJSON `json:"frame"`
}

func (s *Server) handleEncode(w http.ResponseWriter, r *http.Request) {
	var req encodeRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.runner.Encode(r.Context(), req.Scene)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, encodeResponse{DSL: res.DSL, Frame: toFrameJSON(res.Frame)})
}

type decodeRequest struct {
	DSL   string     `json:"dsl"`
	Frame *frameJSON `json:"frame"`
}

type sceneResponse struct {
	Scene scene.Scene `json:"scene"`
}

func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	var req decodeRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	frame := s.runner.Frame
	if req.Frame != nil {
		frame = req.Frame.geometry()
	}
	out, err := s.runner.Decode(r.Context(), req.DSL, frame)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sceneResponse{Scene: out})
}

type diffRequest struct {
	A scene.Scene `json:"a"`
	B scene.Scene `json:"b"`
}

type diffResponse struct {
	Patch   diff.Patch   `json:"patch"`
	DSL     string       `json:"dsl"`
	Summary diff.Summary `json:"summary"`
}

func (s *Server) handleDiff(w http.ResponseWriter, r *http.Request) {
	var req diffRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.runner.Diff(r.Context(), req.A, req.B)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	text, err := diff.Marshal(p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, diffResponse{Patch: p, DSL: string(text), Summary: p.Summarize()})
}

type applyRequest struct {
	Scene scene.Scene `json:"scene"`
	Patch any         `json:"patch"`
	DSL   string      `json:"dsl"`
}

func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	var req applyRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	var (
		p   diff.Patch
		err error
	)
	switch {
	case req.Patch != nil && req.DSL != "":
		err = errors.New(errors.ErrCodeInvalidInput, "give either patch or dsl, not both")
	case req.DSL != "":
		p, err = diff.Unmarshal([]byte(req.DSL))
	default:
		p, err = diff.FromValue(req.Patch)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out, err := s.runner.Apply(r.Context(), req.Scene, p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sceneResponse{Scene: out})
}

package pipeline

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/scenedsl/pkg/core/diff"
	"github.com/matzehuels/scenedsl/pkg/core/dsl"
	"github.com/matzehuels/scenedsl/pkg/core/geometry"
	"github.com/matzehuels/scenedsl/pkg/core/scene"
	"github.com/matzehuels/scenedsl/pkg/errors"
	"github.com/matzehuels/scenedsl/pkg/generate"
	"github.com/matzehuels/scenedsl/pkg/observability"
	"github.com/matzehuels/scenedsl/pkg/prompt"
	"github.com/matzehuels/scenedsl/pkg/session"
)

// Runner executes conversions against a session store and a generator.
//
// The Runner holds no per-request state; multiple goroutines can share one.
// Training data lives only in the session store.
type Runner struct {
	Sessions   session.Store
	Generator  generate.Generator
	Logger     *log.Logger
	Frame      geometry.Frame // placement of brand-new scenes
	SessionTTL time.Duration
}

// NewRunner creates a runner. A nil generator makes ConvertPrimary and
// ConvertEdit fail with GENERATION_FAILED; a nil logger logs to the default
// charm logger.
func NewRunner(sessions session.Store, gen generate.Generator, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Sessions:   sessions,
		Generator:  gen,
		Logger:     logger,
		Frame:      geometry.DefaultFrame(),
		SessionTTL: session.DefaultTTL,
	}
}

// SaveScene derives the prompt prefixes from training and stores both in a
// new session.
func (r *Runner) SaveScene(ctx context.Context, training scene.Scene) (*session.Session, error) {
	if r.Sessions == nil {
		return nil, errors.New(errors.ErrCodeInternal, "no session store configured")
	}
	prefixes, err := prompt.Build(training)
	if err != nil {
		return nil, err
	}
	sess, err := session.New(training, prefixes.Primary, prefixes.Edit, r.SessionTTL)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create session")
	}
	if err := r.Sessions.Set(ctx, sess); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "store session")
	}
	r.Logger.Info("saved training scene",
		"session", sess.ID,
		"frames", training.Len(),
		"primary_bytes", len(prefixes.Primary),
		"edit_bytes", len(prefixes.Edit))
	return sess, nil
}

// Session resolves a session by ID.
func (r *Runner) Session(ctx context.Context, id string) (*session.Session, error) {
	if err := errors.ValidateSessionID(id); err != nil {
		return nil, err
	}
	if r.Sessions == nil {
		return nil, errors.New(errors.ErrCodeInternal, "no session store configured")
	}
	sess, err := r.Sessions.Get(ctx, id)
	if stderrors.Is(err, session.ErrExpired) {
		return nil, errors.Wrap(errors.ErrCodeSessionExpired, err, "session %s expired", id)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "load session")
	}
	if sess == nil {
		return nil, errors.New(errors.ErrCodeSessionNotFound, "session %s not found", id)
	}
	return sess, nil
}

// ConvertPrimary asks the generator for a new scene matching request and
// places it in the runner's frame. The result is always a list.
func (r *Runner) ConvertPrimary(ctx context.Context, sessionID, request string) (scene.Scene, error) {
	if err := errors.ValidatePrompt(request); err != nil {
		return scene.Scene{}, err
	}
	sess, err := r.Session(ctx, sessionID)
	if err != nil {
		return scene.Scene{}, err
	}

	var out scene.Scene
	err = r.observe(ctx, OpPrimary, 0, func() error {
		query := prefixes(sess).PrimaryQuery(request)
		text, err := r.generate(ctx, query)
		if err != nil {
			return err
		}
		s, err := dsl.Decode(prompt.ExtractDSL(text), r.Frame)
		if err != nil {
			return err
		}
		if s.Len() == 0 {
			return errors.New(errors.ErrCodeGenerationFailed, "model returned an empty scene")
		}
		out = s.AsList()
		return nil
	})
	if err != nil {
		return scene.Scene{}, err
	}
	r.Logger.Info("converted primary request", "session", sessionID, "nodes", out.Count())
	return out, nil
}

// ConvertEdit asks the generator how current should change according to
// request and applies the proposed patch. Only the first node of a list is
// edited.
func (r *Runner) ConvertEdit(ctx context.Context, sessionID, request string, current scene.Scene) (*EditResult, error) {
	if err := errors.ValidatePrompt(request); err != nil {
		return nil, err
	}
	if current.Len() == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "scene to edit is empty")
	}
	sess, err := r.Session(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	target := scene.SingleNode(current.Nodes[0])
	var res *EditResult
	err = r.observe(ctx, OpEdit, target.Count(), func() error {
		frame, err := geometry.FrameOf(target)
		if err != nil {
			return err
		}
		query, err := prefixes(sess).EditQuery(request, target)
		if err != nil {
			return err
		}
		text, err := r.generate(ctx, query)
		if err != nil {
			return err
		}
		patch, err := diff.Unmarshal([]byte(prompt.ExtractDSL(text)))
		if err != nil {
			return err
		}
		edited, err := diff.Apply(target, patch)
		if err != nil {
			return err
		}
		res = &EditResult{Scene: edited.AsList(), Origin: frame.TopLeft, Patch: patch}
		return nil
	})
	if err != nil {
		return nil, err
	}
	r.Logger.Info("converted edit request",
		"session", sessionID,
		"changes", len(res.Patch.Summarize().Paths))
	return res, nil
}

// Encode converts s to DSL text.
func (r *Runner) Encode(ctx context.Context, s scene.Scene) (*EncodeResult, error) {
	var res *EncodeResult
	err := r.observe(ctx, OpEncode, s.Count(), func() error {
		text, frame, err := dsl.Encode(s)
		if err != nil {
			return err
		}
		res = &EncodeResult{DSL: text, Frame: frame}
		return nil
	})
	return res, err
}

// Decode converts DSL text to a scene placed in frame.
func (r *Runner) Decode(ctx context.Context, text string, frame geometry.Frame) (scene.Scene, error) {
	if err := errors.ValidateFrameWidth(frame.Width); err != nil {
		return scene.Scene{}, err
	}
	var out scene.Scene
	err := r.observe(ctx, OpDecode, 0, func() error {
		s, err := dsl.Decode(text, frame)
		out = s
		return err
	})
	return out, err
}

// Diff computes the patch that turns a into b.
func (r *Runner) Diff(ctx context.Context, a, b scene.Scene) (diff.Patch, error) {
	var p diff.Patch
	err := r.observe(ctx, OpDiff, a.Count()+b.Count(), func() error {
		var err error
		p, err = diff.Diff(a, b)
		return err
	})
	return p, err
}

// Apply replays p onto a.
func (r *Runner) Apply(ctx context.Context, a scene.Scene, p diff.Patch) (scene.Scene, error) {
	var out scene.Scene
	err := r.observe(ctx, OpApply, a.Count(), func() error {
		var err error
		out, err = diff.Apply(a, p)
		return err
	})
	return out, err
}

// Close releases the session store.
func (r *Runner) Close() error {
	if r.Sessions != nil {
		return r.Sessions.Close()
	}
	return nil
}

func (r *Runner) generate(ctx context.Context, query string) (string, error) {
	if r.Generator == nil {
		return "", errors.New(errors.ErrCodeGenerationFailed, "no text generator configured")
	}
	start := time.Now()
	text, err := r.Generator.Generate(ctx, query)
	if err != nil {
		return "", err
	}
	r.Logger.Debug("generated completion",
		"prompt_bytes", len(query),
		"output_bytes", len(text),
		"duration", time.Since(start))
	return text, nil
}

func (r *Runner) observe(ctx context.Context, op string, nodes int, fn func() error) error {
	hooks := observability.Conversion()
	hooks.OnConvertStart(ctx, op, nodes)
	start := time.Now()
	err := fn()
	hooks.OnConvertComplete(ctx, op, nodes, time.Since(start), err)
	if err != nil {
		r.Logger.Debug("conversion failed", "op", op, "error", err)
	}
	return err
}

func prefixes(sess *session.Session) prompt.Prefixes {
	return prompt.Prefixes{Primary: sess.PrimaryPrefix, Edit: sess.EditPrefix}
}

package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/matzehuels/scenedsl/pkg/errors"
)

const sessionExt = ".json"

// FileStore keeps each session in <dir>/<id>.json. Writes go through a
// temporary file and a rename, so a crashed write never leaves a truncated
// session behind and readers need no lock.
type FileStore struct {
	dir string
}

// NewFileStore opens the store at dir, creating it with owner-only
// permissions since sessions hold the client's training scenes.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "session dir is empty")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(id string) (string, error) {
	if err := errors.ValidateSessionID(id); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, id+sessionExt), nil
}

// expiry reads only the expires_at field of a session file.
func expiry(data []byte) (time.Time, error) {
	var head struct {
		ExpiresAt time.Time `json:"expires_at"`
	}
	err := json.Unmarshal(data, &head)
	return head.ExpiresAt, err
}

func (s *FileStore) Get(ctx context.Context, id string) (*Session, error) {
	path, err := s.path(id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session %s: %w", id, err)
	}

	if exp, err := expiry(data); err == nil && !exp.IsZero() && time.Now().After(exp) {
		_ = os.Remove(path)
		return nil, ErrExpired
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("parse session %s: %w", id, err)
	}
	return &sess, nil
}

func (s *FileStore) Set(ctx context.Context, sess *Session) error {
	path, err := s.path(sess.ID)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".session-*")
	if err != nil {
		return fmt.Errorf("write session %s: %w", sess.ID, err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write session %s: %w", sess.ID, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write session %s: %w", sess.ID, err)
	}
	return os.Rename(tmp.Name(), path)
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	path, err := s.path(id)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session %s: %w", id, err)
	}
	return nil
}

// Cleanup removes expired session files. Files it cannot read or parse are
// left alone.
func (s *FileStore) Cleanup(ctx context.Context) error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("read session dir: %w", err)
	}
	now := time.Now()
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != sessionExt {
			continue
		}
		path := filepath.Join(s.dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if exp, err := expiry(data); err == nil && !exp.IsZero() && now.After(exp) {
			_ = os.Remove(path)
		}
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

// Path returns the session directory.
func (s *FileStore) Path() string {
	return s.dir
}

var _ Store = (*FileStore)(nil)

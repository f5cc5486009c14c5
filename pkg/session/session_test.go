package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/scenedsl/pkg/core/color"
	"github.com/matzehuels/scenedsl/pkg/core/scene"
)

func training() scene.Scene {
	return scene.List(scene.Node{
		Name: "1. Button",
		Kind: scene.KindFrame,
		Props: scene.Props{Children: []scene.Node{{
			Name: "Before",
			Kind: scene.KindRectangle,
			Props: scene.Props{
				Color:    &color.RGB{R: 1},
				Position: scene.Point{X: 10, Y: 20},
				Width:    30,
				Height:   40,
			},
		}}},
	})
}

func TestNew(t *testing.T) {
	sess, err := New(training(), "primary", "edit", time.Hour)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := uuid.Parse(sess.ID); err != nil {
		t.Errorf("ID %q is not a UUID: %v", sess.ID, err)
	}
	if sess.IsExpired() {
		t.Error("fresh session should not be expired")
	}
	if ttl := sess.TTL(); ttl <= 0 || ttl > time.Hour {
		t.Errorf("TTL = %v, want (0, 1h]", ttl)
	}

	other, _ := New(training(), "", "", 0)
	if other.ID == sess.ID {
		t.Error("session IDs should be unique")
	}
	if !other.ExpiresAt.IsZero() || other.IsExpired() || other.TTL() != 0 {
		t.Error("zero ttl should never expire")
	}
}

func TestNewCopiesTraining(t *testing.T) {
	tr := training()
	sess, _ := New(tr, "", "", time.Hour)
	tr.Nodes[0].Name = "changed"
	if sess.Training.Nodes[0].Name != "1. Button" {
		t.Error("session should hold its own copy of the training scene")
	}
}

func TestIsExpired(t *testing.T) {
	s := &Session{ExpiresAt: time.Now().Add(-time.Second)}
	if !s.IsExpired() {
		t.Error("past ExpiresAt should be expired")
	}
	if s.TTL() != 0 {
		t.Errorf("expired TTL = %v, want 0", s.TTL())
	}
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	defer store.Close()

	got, err := store.Get(ctx, uuid.NewString())
	if err != nil || got != nil {
		t.Fatalf("Get(missing) = %v, %v; want nil, nil", got, err)
	}

	sess, _ := New(training(), "primary prefix", "edit prefix", time.Hour)
	if err := store.Set(ctx, sess); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err = store.Get(ctx, sess.ID)
	if err != nil || got == nil {
		t.Fatalf("Get = %v, %v", got, err)
	}
	if got.PrimaryPrefix != "primary prefix" || got.EditPrefix != "edit prefix" {
		t.Errorf("prefixes not preserved: %+v", got)
	}
	if !got.ExpiresAt.Equal(sess.ExpiresAt) {
		t.Errorf("ExpiresAt = %v, want %v", got.ExpiresAt, sess.ExpiresAt)
	}
	if !reflect.DeepEqual(got.Training, sess.Training) {
		t.Errorf("training scene not preserved:\n got %+v\nwant %+v", got.Training, sess.Training)
	}

	if err := store.Delete(ctx, sess.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got, _ := store.Get(ctx, sess.ID); got != nil {
		t.Error("session should be gone after Delete")
	}
	if err := store.Delete(ctx, sess.ID); err != nil {
		t.Errorf("Delete(missing): %v", err)
	}
}

func TestFileStoreExpired(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	sess, _ := New(training(), "", "", time.Hour)
	sess.ExpiresAt = time.Now().Add(-time.Minute)
	if err := store.Set(ctx, sess); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if _, err := store.Get(ctx, sess.ID); !errors.Is(err, ErrExpired) {
		t.Errorf("Get(expired) error = %v, want ErrExpired", err)
	}
	if _, err := os.Stat(filepath.Join(dir, sess.ID+".json")); !os.IsNotExist(err) {
		t.Error("expired session file should be removed")
	}
}

func TestFileStoreCleanup(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	live, _ := New(training(), "", "", time.Hour)
	dead, _ := New(training(), "", "", time.Hour)
	dead.ExpiresAt = time.Now().Add(-time.Minute)
	forever, _ := New(training(), "", "", 0)
	for _, s := range []*Session{live, dead, forever} {
		if err := store.Set(ctx, s); err != nil {
			t.Fatalf("Set: %v", err)
		}
	}

	if err := store.Cleanup(ctx); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 2 {
		t.Errorf("Cleanup left %d files, want 2", len(entries))
	}
	if store.Path() != dir {
		t.Errorf("Path() = %q, want %q", store.Path(), dir)
	}
}

func TestFileStoreRejectsBadIDs(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	for _, id := range []string{"", "../escape", "not-a-uuid"} {
		if _, err := store.Get(ctx, id); err == nil {
			t.Errorf("Get(%q) accepted an invalid id", id)
		}
		if err := store.Delete(ctx, id); err == nil {
			t.Errorf("Delete(%q) accepted an invalid id", id)
		}
	}
	if err := store.Set(ctx, &Session{ID: "../escape"}); err == nil {
		t.Error("Set accepted an invalid id")
	}
	if entries, _ := os.ReadDir(dir); len(entries) != 0 {
		t.Errorf("store wrote %d files for invalid ids", len(entries))
	}
}

func TestNewFileStoreEmptyDir(t *testing.T) {
	if _, err := NewFileStore(""); err == nil {
		t.Error("NewFileStore(\"\") should fail")
	}
}

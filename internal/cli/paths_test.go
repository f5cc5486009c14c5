package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, ".cache", appName); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestCacheDirXDG(t *testing.T) {
	custom := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", custom)

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if want := filepath.Join(custom, appName); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestDataDir(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "")

	dir, err := dataDir()
	if err != nil {
		t.Fatalf("dataDir() error: %v", err)
	}
	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, ".local", "share", appName); dir != want {
		t.Errorf("dataDir() = %q, want %q", dir, want)
	}
}

func TestDataDirXDG(t *testing.T) {
	custom := t.TempDir()
	t.Setenv("XDG_DATA_HOME", custom)

	dir, err := dataDir()
	if err != nil {
		t.Fatalf("dataDir() error: %v", err)
	}
	if want := filepath.Join(custom, appName); dir != want {
		t.Errorf("dataDir() = %q, want %q", dir, want)
	}
}

func TestCachePathCommand(t *testing.T) {
	custom := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", custom)

	out, _, err := execute(t, newTestCLI(t), "", "cache", "path")
	if err != nil {
		t.Fatalf("cache path: %v", err)
	}
	if want := filepath.Join(custom, appName) + "\n"; out != want {
		t.Errorf("cache path = %q, want %q", out, want)
	}
}

func TestCachePathFromConfig(t *testing.T) {
	dir := t.TempDir()
	c := newTestCLI(t)
	c.ConfigPath = writeFile(t, "config.toml", "[cache]\ndir = \""+filepath.ToSlash(dir)+"\"\n")

	out, _, err := execute(t, c, "", "cache", "path")
	if err != nil {
		t.Fatalf("cache path: %v", err)
	}
	if out != filepath.ToSlash(dir)+"\n" {
		t.Errorf("cache path = %q, want %q", out, dir)
	}
}

package buildinfo

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestFillFromBuildInfo(t *testing.T) {
	bi := &debug.BuildInfo{
		Main: debug.Module{Version: "v0.3.1"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
			{Key: "vcs.modified", Value: "true"},
		},
	}
	got := fill(Info{Version: "dev", Commit: "none", Date: "unknown"}, bi)
	want := Info{Version: "v0.3.1", Commit: "abc123", Date: "2026-01-02T03:04:05Z", Modified: true}
	if got != want {
		t.Errorf("fill = %+v, want %+v", got, want)
	}
	if got.Short() != "v0.3.1+dirty" {
		t.Errorf("Short = %q", got.Short())
	}
}

func TestFillKeepsStampedValues(t *testing.T) {
	bi := &debug.BuildInfo{
		Main:     debug.Module{Version: "(devel)"},
		Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "abc123"}},
	}
	got := fill(Info{Version: "v1.0.0", Commit: "fff", Date: "today"}, bi)
	if got.Version != "v1.0.0" || got.Commit != "fff" || got.Date != "today" {
		t.Errorf("stamped values overwritten: %+v", got)
	}
}

func TestTemplate(t *testing.T) {
	tmpl := Template()
	if !strings.HasPrefix(tmpl, "{{.Name}} version: ") || !strings.HasSuffix(tmpl, "\n") {
		t.Errorf("Template = %q", tmpl)
	}
}

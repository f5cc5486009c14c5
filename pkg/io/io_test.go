package io

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/scenedsl/pkg/core/scene"
	"github.com/matzehuels/scenedsl/pkg/errors"
)

const sample = `[
  {
    "name": "1. Card",
    "type": "FRAME",
    "node": {
      "clipsContent": true,
      "children": [
        {
          "name": "Title",
          "type": "TEXT",
          "node": {
            "characters": "Hello",
            "color": "#000000",
            "position": {"x": 10, "y": 20},
            "width": 80,
            "height": 16,
            "fontSize": 12
          }
        }
      ]
    }
  }
]`

func TestReadJSON(t *testing.T) {
	s, err := ReadJSON(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if s.Single || s.Len() != 1 {
		t.Fatalf("want a one-node list, got %+v", s)
	}
	card := s.Nodes[0]
	if card.Kind != scene.KindFrame || card.Props.Extra["clipsContent"] != true {
		t.Errorf("card = %+v", card)
	}
	title := card.Props.Children[0]
	if *title.Props.Characters != "Hello" || *title.Props.FontSize != 12 {
		t.Errorf("title = %+v", title.Props)
	}
}

func TestReadJSONSingleNode(t *testing.T) {
	s, err := ReadJSON(strings.NewReader(`{"name": "A", "type": "ELLIPSE", "node": {"position": {"x": 0, "y": 0}, "width": 1, "height": 1}}`))
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if !s.Single {
		t.Error("lone node should decode as Single")
	}
	var buf bytes.Buffer
	if err := WriteJSON(s, &buf); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "{") {
		t.Errorf("lone node should export as an object, got %s", buf.String())
	}
}

func TestReadJSONErrors(t *testing.T) {
	tests := map[string]struct {
		input string
		code  errors.Code
	}{
		"syntax":    {`[{"name": `, errors.ErrCodeMalformedSceneShape},
		"not nodes": {`[1, 2]`, errors.ErrCodeMalformedSceneShape},
		"bad color": {`{"name": "A", "type": "RECTANGLE", "node": {"color": "#12345", "position": {"x": 0, "y": 0}, "width": 1, "height": 1}}`, errors.ErrCodeMalformedColor},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ReadJSON(strings.NewReader(tt.input))
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	s, err := ReadJSON(strings.NewReader(sample))
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "scene.json")
	if err := ExportJSON(s, path); err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	back, err := ImportJSON(path)
	if err != nil {
		t.Fatalf("ImportJSON: %v", err)
	}

	var a, b bytes.Buffer
	if err := WriteJSON(s, &a); err != nil {
		t.Fatal(err)
	}
	if err := WriteJSON(back, &b); err != nil {
		t.Fatal(err)
	}
	if a.String() != b.String() {
		t.Errorf("round trip changed output:\n%s\nvs\n%s", a.String(), b.String())
	}
}

func TestImportJSONMissingFile(t *testing.T) {
	_, err := ImportJSON(filepath.Join(t.TempDir(), "missing.json"))
	var pe *os.PathError
	if !errors.As(err, &pe) || !os.IsNotExist(pe) {
		t.Errorf("err = %v, want a not-exist path error", err)
	}
}

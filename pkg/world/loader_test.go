package world

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/DanJbk/tilequest/pkg/entity"
)

const testMapJSON = `{
  "width": 4,
  "height": 3,
  "layers": [
    {
      "name": "on_ground",
      "type": "tilelayer",
      "width": 4,
      "data": [1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 0]
    },
    {
      "name": "collision",
      "type": "tilelayer",
      "width": 4,
      "data": [0, 0, 0, 9, 0, 9, 0, 0, 0, 0, 0, 0]
    },
    {
      "name": "above_ground",
      "type": "tilelayer",
      "width": 4,
      "data": [0, 0, 0, 0, 0, 0, 7, 0, 0, 0, 0, 0]
    },
    {
      "name": "metadata",
      "type": "objectgroup",
      "objects": [
        {"name": "player", "x": 0, "y": 0},
        {
          "name": "Apple",
          "x": 32,
          "y": 16,
          "properties": [
            {"name": "color", "type": "string", "value": "red"},
            {"name": "bites", "type": "int", "value": 0},
            {"name": "fresh", "type": "bool", "value": true}
          ]
        },
        {"name": "Ghost", "x": 48, "y": 32}
      ]
    }
  ]
}`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

func writeTestMap(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "map.json")
	if err := os.WriteFile(path, []byte(testMapJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	w, err := Load(writeTestMap(t), testLogger())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if w.Width() != 4 || w.Height() != 3 {
		t.Errorf("map size = %dx%d, want 4x3", w.Width(), w.Height())
	}
	if w.Player == nil || w.Player.Pos != (entity.Vec2{X: 0, Y: 0}) {
		t.Errorf("player start = %+v, want origin", w.Player.Pos)
	}

	// The ghost has no backing tile on any layer and is skipped.
	if len(w.Objects()) != 1 {
		t.Fatalf("got %d entities, want 1", len(w.Objects()))
	}

	apple := w.Objects()[0]
	if apple.Name() != "Apple" {
		t.Fatalf("entity name = %q", apple.Name())
	}
	if apple.Pos != (entity.Vec2{X: 2, Y: 1}) {
		t.Errorf("apple pos = %+v, want (2,1)", apple.Pos)
	}
	if v, ok := apple.Property("color"); !ok || v.AsString() != "red" {
		t.Errorf("color = %v", v)
	}
	if v, ok := apple.Property("bites"); !ok || v.Kind() != entity.KindInt {
		t.Errorf("bites should be an int, got %v", v)
	}
	if v, ok := apple.Property("fresh"); !ok || !v.AsBool() {
		t.Errorf("fresh = %v", v)
	}
}

func TestLoad_StaticCollisions(t *testing.T) {
	w, err := Load(writeTestMap(t), testLogger())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	blocked := w.BlockedCells()
	if !blocked[Cell{X: 3, Y: 0}] {
		t.Error("collision cell (3,0) should be blocked")
	}
	if !blocked[Cell{X: 1, Y: 1}] {
		t.Error("collision cell (1,1) should be blocked")
	}
	// The apple sits on the above_ground layer; its cell blocks while active.
	if !blocked[Cell{X: 2, Y: 1}] {
		t.Error("apple cell should be blocked")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json"), testLogger()); err == nil {
		t.Error("expected error for missing map file")
	}
}

func TestLoad_MissingMetadataLayer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`{"width":1,"height":1,"layers":[]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path, testLogger()); err == nil {
		t.Error("expected error for map without metadata layer")
	}
}

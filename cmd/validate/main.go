package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/DanJbk/tilequest/pkg/world"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <map.json>\n", os.Args[0])
		os.Exit(1)
	}

	filename := os.Args[1]
	validator := &MapValidator{}

	if err := validator.validateFile(filename); err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	if len(validator.warnings) > 0 {
		fmt.Printf("\nMap file is valid, with %d warning(s).\n", len(validator.warnings))
		return
	}
	fmt.Println("\nMap file is valid!")
}

type MapValidator struct {
	warnings []string
}

func (v *MapValidator) warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	v.warnings = append(v.warnings, msg)
	fmt.Println("  warning: " + msg)
}

func (v *MapValidator) validateFile(filename string) error {
	fmt.Printf("Validating %s...\n", filename)

	if !strings.HasSuffix(filepath.Base(filename), ".json") {
		return fmt.Errorf("map file must be a Tiled JSON export: %s", filepath.Base(filename))
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	w, err := world.Load(filename, log)
	if err != nil {
		return err
	}

	fmt.Printf("\nMap: %dx%d tiles\n", w.Width(), w.Height())
	fmt.Printf("Player start: (%d, %d)\n", int(w.Player.Pos.X), int(w.Player.Pos.Y))

	if int(w.Player.Pos.X) >= w.Width() || int(w.Player.Pos.Y) >= w.Height() {
		v.warn("player start is outside the map")
	}
	blocked := w.BlockedCells()
	if blocked[world.Cell{X: int(w.Player.Pos.X), Y: int(w.Player.Pos.Y)}] {
		v.warn("player start is on a blocked cell")
	}

	fmt.Printf("\nEntities (%d):\n", len(w.Objects()))
	seen := map[string]bool{}
	for _, e := range w.Objects() {
		kind := "object"
		if e.IsNPC() {
			kind = "npc"
		}
		fmt.Printf("  %-20s %-7s (%d, %d) %d properties\n",
			e.Name(), kind, int(e.Pos.X), int(e.Pos.Y), len(e.Properties()))

		if e.Name() == "" {
			v.warn("entity at (%d, %d) has no name and cannot be targeted", int(e.Pos.X), int(e.Pos.Y))
		}
		if seen[e.Name()] {
			v.warn("duplicate entity name %q; snapshots restore by name", e.Name())
		}
		seen[e.Name()] = true

		if e.IsNPC() && len(e.Items()) == 0 {
			v.warn("npc %q has an empty inventory and nothing to trade", e.Name())
		}
	}

	return nil
}

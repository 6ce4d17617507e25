package world

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/DanJbk/tilequest/pkg/entity"
)

// TileSize converts Tiled pixel coordinates to tile units.
const TileSize = 16

// Layer names the loader understands. The metadata object layer defines the
// dynamic entities; the tile layers below it are probed, in listed order, to
// find the visual tile backing each entity.
const (
	layerMetadata    = "metadata"
	layerCollision   = "collision"
	layerNPCs        = "npcs"
	layerAboveGround = "above_ground"
	layerOnGround    = "on_ground"
)

var entityLayerProbeOrder = []string{layerNPCs, layerAboveGround, layerCollision, layerOnGround}

type tiledMap struct {
	Width  int          `json:"width"`
	Height int          `json:"height"`
	Layers []tiledLayer `json:"layers"`
}

type tiledLayer struct {
	Name    string        `json:"name"`
	Type    string        `json:"type"`
	Width   int           `json:"width"`
	Data    []int         `json:"data"`
	Objects []tiledObject `json:"objects"`
}

type tiledObject struct {
	Name       string          `json:"name"`
	X          float64         `json:"x"`
	Y          float64         `json:"y"`
	Properties []tiledProperty `json:"properties"`
}

type tiledProperty struct {
	Name  string          `json:"name"`
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

func (l *tiledLayer) at(x, y int) int {
	i := y*l.Width + x
	if i < 0 || i >= len(l.Data) {
		return 0
	}
	return l.Data[i]
}

func (l *tiledLayer) clear(x, y int) {
	i := y*l.Width + x
	if i >= 0 && i < len(l.Data) {
		l.Data[i] = 0
	}
}

// Load reads a Tiled JSON map export and assembles the world: static
// collision cells from the collision layer, one entity per metadata object
// backed by a visual tile, and the player at the metadata "player" start.
func Load(path string, logger *slog.Logger) (*World, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read map file: %w", err)
	}

	var tm tiledMap
	if err := json.Unmarshal(data, &tm); err != nil {
		return nil, fmt.Errorf("failed to parse map file: %w", err)
	}

	layers := make(map[string]*tiledLayer, len(tm.Layers))
	for i := range tm.Layers {
		layers[tm.Layers[i].Name] = &tm.Layers[i]
	}

	metadata, ok := layers[layerMetadata]
	if !ok {
		return nil, fmt.Errorf("map has no %q object layer", layerMetadata)
	}

	// Static collisions come off the collision layer before entity cells are
	// cleared; BlockedCells filters them dynamically afterwards.
	static := make(map[Cell]bool)
	if collision, ok := layers[layerCollision]; ok {
		for y := 0; y < tm.Height; y++ {
			for x := 0; x < tm.Width; x++ {
				if collision.at(x, y) != 0 {
					static[Cell{X: x, Y: y}] = true
				}
			}
		}
	}

	playerStart := entity.Vec2{X: 2, Y: 2}
	var objects []*entity.Entity

	for _, obj := range metadata.Objects {
		gx := int(obj.X / TileSize)
		gy := int(obj.Y / TileSize)

		if obj.Name == "player" {
			playerStart = entity.Vec2{X: float64(gx), Y: float64(gy)}
			continue
		}

		backing := probeEntityTile(layers, gx, gy)
		if backing == "" {
			logger.Warn("metadata object has no backing tile, skipping",
				"name", obj.Name, "x", gx, "y", gy)
			continue
		}

		props, err := convertProperties(obj.Properties)
		if err != nil {
			return nil, fmt.Errorf("object %q: %w", obj.Name, err)
		}

		e := entity.New(obj.Name, entity.Vec2{X: float64(gx), Y: float64(gy)}, props)
		objects = append(objects, e)
		logger.Debug("loaded entity", "name", obj.Name, "x", gx, "y", gy, "layer", backing)
	}

	player := NewPlayer(playerStart)
	return New(player, objects, tm.Width, tm.Height, static), nil
}

// probeEntityTile finds which visual layer backs the cell and clears it
// there, so the tile is drawn as the entity rather than as terrain. Returns
// the layer name, or "" when no layer covers the cell.
func probeEntityTile(layers map[string]*tiledLayer, x, y int) string {
	for _, name := range entityLayerProbeOrder {
		l, ok := layers[name]
		if !ok {
			continue
		}
		if l.at(x, y) != 0 {
			l.clear(x, y)
			return name
		}
	}
	return ""
}

func convertProperties(props []tiledProperty) ([]entity.Prop, error) {
	out := make([]entity.Prop, 0, len(props))
	for _, p := range props {
		var v entity.Value
		if err := json.Unmarshal(p.Value, &v); err != nil {
			return nil, fmt.Errorf("property %q: %w", p.Name, err)
		}
		out = append(out, entity.Prop{Key: p.Name, Value: v})
	}
	return out, nil
}

// NewPlayer constructs the player entity. There is exactly one per session,
// built once at world load.
func NewPlayer(start entity.Vec2) *entity.Entity {
	return entity.New("John Skiss", start, []entity.Prop{
		{Key: "background", Value: entity.String("A thief, spent a life stealing and sneaking through the big cities.")},
		{Key: "strength", Value: entity.String("average person strength, will often fail tasks that require brute force")},
		{Key: "inventory", Value: entity.String("lockpick, dagger, dark cloak")},
	})
}

// Package world holds the live game world: the player, the interactable
// entities loaded from map metadata, and the collision footprint that the
// movement code checks against.
package world

import (
	"sort"

	"github.com/DanJbk/tilequest/pkg/entity"
)

// Cell is a map grid coordinate.
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// World is the single mutable game world for a session. All mutation happens
// on the simulation goroutine; there is no internal locking.
type World struct {
	Player *entity.Entity

	objects []*entity.Entity
	width   int
	height  int
	static  map[Cell]bool
}

// New assembles a world. The objects slice order is preserved so entities
// stay addressable by stable index even after being picked up.
func New(player *entity.Entity, objects []*entity.Entity, width, height int, static map[Cell]bool) *World {
	if static == nil {
		static = make(map[Cell]bool)
	}
	return &World{
		Player:  player,
		objects: objects,
		width:   width,
		height:  height,
		static:  static,
	}
}

func (w *World) Width() int  { return w.width }
func (w *World) Height() int { return w.height }

// Objects returns the entity roster in stable index order.
func (w *World) Objects() []*entity.Entity { return w.objects }

// Object returns the entity at a stable index, or nil when out of range.
func (w *World) Object(i int) *entity.Entity {
	if i < 0 || i >= len(w.objects) {
		return nil
	}
	return w.objects[i]
}

// IndexOf returns the stable index of e, or -1.
func (w *World) IndexOf(e *entity.Entity) int {
	for i, o := range w.objects {
		if o == e {
			return i
		}
	}
	return -1
}

// FindByName returns the first entity whose name matches exactly, or nil.
func (w *World) FindByName(name string) *entity.Entity {
	for _, o := range w.objects {
		if o.Name() == name {
			return o
		}
	}
	return nil
}

// Nearby returns active entities within radius of from, closest first.
// Inactive (picked up) entities never appear in proximity results.
func (w *World) Nearby(from *entity.Entity, radius float64) []*entity.Entity {
	var out []*entity.Entity
	for _, o := range w.objects {
		if o == from || !o.Active {
			continue
		}
		if entity.Distance(from, o) < radius {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return entity.Distance(from, out[i]) < entity.Distance(from, out[j])
	})
	return out
}

// EntityAt returns the active entity standing on the given cell, or nil.
// Used by the UI to turn a targeted cell into a turn tag.
func (w *World) EntityAt(c Cell) *entity.Entity {
	for _, o := range w.objects {
		if !o.Active {
			continue
		}
		if int(o.Pos.X) == c.X && int(o.Pos.Y) == c.Y {
			return o
		}
	}
	return nil
}

// BlockedCells recomputes the impassable set: static map collisions minus
// cells whose entity has been picked up, plus the cells of active entities.
func (w *World) BlockedCells() map[Cell]bool {
	blocked := make(map[Cell]bool, len(w.static))
	for c := range w.static {
		occupiedByGone := false
		for _, o := range w.objects {
			if !o.Active && int(o.Pos.X) == c.X && int(o.Pos.Y) == c.Y {
				occupiedByGone = true
				break
			}
		}
		if !occupiedByGone {
			blocked[c] = true
		}
	}
	for _, o := range w.objects {
		if o.Active {
			blocked[Cell{X: int(o.Pos.X), Y: int(o.Pos.Y)}] = true
		}
	}
	return blocked
}

// StepPlayer moves the player one tile along each requested axis, x first
// then y, dropping any component that would land on a blocked or out-of-map
// cell. Axis separation lets the player slide along walls.
func (w *World) StepPlayer(dx, dy int) {
	blocked := w.BlockedCells()

	tryStep := func(x, y float64) bool {
		c := Cell{X: int(x), Y: int(y)}
		if c.X < 0 || c.Y < 0 || c.X >= w.width || c.Y >= w.height {
			return false
		}
		return !blocked[c]
	}

	if dx != 0 && tryStep(w.Player.Pos.X+float64(dx), w.Player.Pos.Y) {
		w.Player.Pos.X += float64(dx)
	}
	if dy != 0 && tryStep(w.Player.Pos.X, w.Player.Pos.Y+float64(dy)) {
		w.Player.Pos.Y += float64(dy)
	}
}

package world

import (
	"github.com/DanJbk/tilequest/pkg/entity"
)

// Snapshot is the JSON-serializable session state: everything that can have
// changed since world load. Static map data is not part of it; a snapshot is
// restored onto a world freshly loaded from the same map.
type Snapshot struct {
	Player  EntityState   `json:"player"`
	Objects []EntityState `json:"objects"`
}

// EntityState captures one entity's mutable state.
type EntityState struct {
	Name       string          `json:"name"`
	Pos        entity.Vec2     `json:"pos"`
	Active     bool            `json:"active"`
	Properties []PropertyState `json:"properties,omitempty"`
	Inventory  []ItemState     `json:"inventory,omitempty"`
}

// PropertyState is one bag entry, order-preserving.
type PropertyState struct {
	Key   string       `json:"key"`
	Value entity.Value `json:"value"`
}

// ItemState is an owned inventory item with its own (flat) property bag.
type ItemState struct {
	Name       string          `json:"name"`
	Properties []PropertyState `json:"properties,omitempty"`
}

// TakeSnapshot captures the current session state.
func (w *World) TakeSnapshot() *Snapshot {
	snap := &Snapshot{Player: captureEntity(w.Player)}
	for _, o := range w.objects {
		snap.Objects = append(snap.Objects, captureEntity(o))
	}
	return snap
}

func captureEntity(e *entity.Entity) EntityState {
	st := EntityState{
		Name:   e.Name(),
		Pos:    e.Pos,
		Active: e.Active,
	}
	for _, p := range e.Properties() {
		st.Properties = append(st.Properties, PropertyState{Key: p.Key, Value: p.Value})
	}
	for _, item := range e.Items() {
		is := ItemState{Name: item.Name()}
		for _, p := range item.Properties() {
			is.Properties = append(is.Properties, PropertyState{Key: p.Key, Value: p.Value})
		}
		st.Inventory = append(st.Inventory, is)
	}
	return st
}

// RestoreSnapshot applies a snapshot onto a world loaded from the same map.
// Entities are matched by name; snapshot entries with no matching entity are
// ignored, and property updates follow the SetProperty contract (existing
// keys only), so a snapshot cannot widen an entity's schema. Flags and
// properties are restored for every entity before any inventory is relinked,
// so picked-up world entities keep their identity across save/load.
func (w *World) RestoreSnapshot(snap *Snapshot) {
	if snap == nil {
		return
	}

	type pending struct {
		e  *entity.Entity
		st EntityState
	}
	restores := []pending{{w.Player, snap.Player}}
	for _, st := range snap.Objects {
		if e := w.FindByName(st.Name); e != nil {
			restores = append(restores, pending{e, st})
		}
	}

	for _, p := range restores {
		p.e.Pos = p.st.Pos
		p.e.Active = p.st.Active
		for _, prop := range p.st.Properties {
			p.e.SetProperty(prop.Key, prop.Value)
		}
	}
	for _, p := range restores {
		restoreInventory(w, p.e, p.st)
	}
}

func restoreInventory(w *World, e *entity.Entity, st EntityState) {
	for _, old := range e.ItemNames() {
		e.RemoveItem(old)
	}
	for _, is := range st.Inventory {
		// A picked-up world entity keeps its identity across save/load;
		// anything else (initial kit items) is rebuilt from the snapshot.
		if existing := w.FindByName(is.Name); existing != nil && !existing.Active {
			e.AddItem(existing)
			continue
		}
		props := make([]entity.Prop, 0, len(is.Properties))
		for _, p := range is.Properties {
			props = append(props, entity.Prop{Key: p.Key, Value: p.Value})
		}
		e.AddItem(entity.New(is.Name, entity.Vec2{}, props))
	}
}

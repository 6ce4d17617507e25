package entity

import (
	"math"
	"strings"
)

// ReachDistance is the proximity threshold, in tile units, inside which an
// entity counts as a reachable target for look, pickup and interaction.
const ReachDistance = 4.0

// Reserved property keys. "name" is the entity's identity and is carried as a
// dedicated field rather than a bag entry; "npc" marks conversational actors.
// Keys starting with HiddenPrefix are invisible properties: excluded from
// descriptions unless explicitly requested.
const (
	KeyName      = "name"
	KeyNPC       = "npc"
	HiddenPrefix = "_"
)

// Vec2 is a position in map-tile units.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Distance returns the Euclidean distance between two positions.
func (v Vec2) Distance(o Vec2) float64 {
	dx := v.X - o.X
	dy := v.Y - o.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Prop is one entry of an entity's ordered property bag.
type Prop struct {
	Key   string
	Value Value
}

// Entity is a world object or actor: a name, a position, an ordered bag of
// primitive properties and an owned inventory. Entities are constructed once
// at world-load time and never destroyed; picking one up flips Active to
// false and moves it into the actor's inventory.
type Entity struct {
	name   string
	Pos    Vec2
	Active bool

	keys  []string
	props map[string]Value

	inventory []*Entity
}

// New constructs an entity. The name is immutable afterwards. Props keep
// their given order for every later description dump. An "inventory" prop
// holding a comma-separated item list is split into owned item entities
// instead of entering the bag.
func New(name string, pos Vec2, props []Prop) *Entity {
	e := &Entity{
		name:   name,
		Pos:    pos,
		Active: true,
		props:  make(map[string]Value, len(props)),
	}
	for _, p := range props {
		if p.Key == KeyName {
			continue
		}
		if p.Key == "inventory" && p.Value.Kind() == KindString {
			for _, item := range strings.Split(p.Value.AsString(), ",") {
				item = strings.TrimSpace(item)
				if item != "" {
					e.AddItem(New(item, Vec2{}, nil))
				}
			}
			continue
		}
		if _, dup := e.props[p.Key]; dup {
			continue
		}
		e.keys = append(e.keys, p.Key)
		e.props[p.Key] = p.Value
	}
	return e
}

func (e *Entity) Name() string { return e.name }

// IsNPC reports whether the entity carries the npc role marker.
func (e *Entity) IsNPC() bool {
	_, ok := e.props[KeyNPC]
	return ok
}

// Property returns the value for key, if present.
func (e *Entity) Property(key string) (Value, bool) {
	v, ok := e.props[key]
	return v, ok
}

// SetProperty updates an existing property and reports whether it applied.
// Keys not already on the entity are dropped: the resolver never introduces
// new keys, which keeps the schema stable against prompt-injected output.
func (e *Entity) SetProperty(key string, v Value) bool {
	if _, ok := e.props[key]; !ok {
		return false
	}
	e.props[key] = v
	return true
}

// Properties returns the bag in insertion order.
func (e *Entity) Properties() []Prop {
	out := make([]Prop, 0, len(e.keys))
	for _, k := range e.keys {
		out = append(out, Prop{Key: k, Value: e.props[k]})
	}
	return out
}

// Distance returns the Euclidean distance between two entities.
func Distance(a, b *Entity) float64 {
	return a.Pos.Distance(b.Pos)
}

// Inventory membership. The inventory is a set: no duplicates by name, and an
// item belongs to at most one inventory at a time (transfer goes through
// RemoveItem on the old owner first). Insertion order is kept so inventory
// summaries are stable.

// AddItem adds an item to the inventory if no item of that name is present.
func (e *Entity) AddItem(item *Entity) bool {
	if e.FindItem(item.name) != nil {
		return false
	}
	e.inventory = append(e.inventory, item)
	return true
}

// RemoveItem removes the named item and returns it, or nil if absent.
func (e *Entity) RemoveItem(name string) *Entity {
	for i, item := range e.inventory {
		if item.name == name {
			e.inventory = append(e.inventory[:i], e.inventory[i+1:]...)
			return item
		}
	}
	return nil
}

// FindItem returns the named item, or nil.
func (e *Entity) FindItem(name string) *Entity {
	for _, item := range e.inventory {
		if item.name == name {
			return item
		}
	}
	return nil
}

// Items returns the owned items in insertion order.
func (e *Entity) Items() []*Entity {
	out := make([]*Entity, len(e.inventory))
	copy(out, e.inventory)
	return out
}

// ItemNames returns the names of owned items in insertion order.
func (e *Entity) ItemNames() []string {
	names := make([]string, 0, len(e.inventory))
	for _, item := range e.inventory {
		names = append(names, item.name)
	}
	return names
}

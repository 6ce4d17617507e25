package world

import (
	"testing"

	"github.com/DanJbk/tilequest/pkg/entity"
)

func testWorld() *World {
	player := NewPlayer(entity.Vec2{X: 2, Y: 2})
	objects := []*entity.Entity{
		entity.New("Apple", entity.Vec2{X: 3, Y: 2}, []entity.Prop{
			{Key: "color", Value: entity.String("red")},
		}),
		entity.New("Old Well", entity.Vec2{X: 9, Y: 9}, []entity.Prop{
			{Key: "depth", Value: entity.Int(12)},
		}),
		entity.New("Trader Ghila", entity.Vec2{X: 2, Y: 4}, []entity.Prop{
			{Key: entity.KeyNPC, Value: entity.Bool(true)},
			{Key: "inventory", Value: entity.String("rope, lantern")},
		}),
	}
	static := map[Cell]bool{
		{X: 5, Y: 2}: true,
		{X: 3, Y: 2}: true, // the apple's own collision cell
	}
	return New(player, objects, 12, 12, static)
}

func TestNearby(t *testing.T) {
	w := testWorld()

	got := w.Nearby(w.Player, entity.ReachDistance)
	if len(got) != 2 {
		t.Fatalf("got %d nearby entities, want 2", len(got))
	}
	// Closest first: Apple at distance 1, the trader at distance 2.
	if got[0].Name() != "Apple" || got[1].Name() != "Trader Ghila" {
		t.Errorf("unexpected order: %s, %s", got[0].Name(), got[1].Name())
	}
}

func TestNearby_ExcludesInactive(t *testing.T) {
	w := testWorld()
	apple := w.FindByName("Apple")
	apple.Active = false

	for _, e := range w.Nearby(w.Player, entity.ReachDistance) {
		if e == apple {
			t.Error("inactive entity should be excluded from proximity queries")
		}
	}
}

func TestBlockedCells_PickupFreesCell(t *testing.T) {
	w := testWorld()
	appleCell := Cell{X: 3, Y: 2}

	if !w.BlockedCells()[appleCell] {
		t.Fatal("apple cell should be blocked while the apple is in the world")
	}

	w.FindByName("Apple").Active = false
	if w.BlockedCells()[appleCell] {
		t.Error("apple cell should be passable after pickup")
	}

	// Entities with no static collision cell still block while active.
	if !w.BlockedCells()[Cell{X: 2, Y: 4}] {
		t.Error("active npc should block its cell")
	}
}

func TestStepPlayer(t *testing.T) {
	w := testWorld()

	// East is blocked by the apple; north is open.
	w.StepPlayer(1, -1)
	if w.Player.Pos.X != 2 {
		t.Errorf("player x = %v, want 2 (blocked)", w.Player.Pos.X)
	}
	if w.Player.Pos.Y != 1 {
		t.Errorf("player y = %v, want 1", w.Player.Pos.Y)
	}

	// Map edge clamps movement.
	w.StepPlayer(0, -1)
	w.StepPlayer(0, -1)
	if w.Player.Pos.Y != 0 {
		t.Errorf("player y = %v, want 0", w.Player.Pos.Y)
	}
	w.StepPlayer(0, -1)
	if w.Player.Pos.Y != 0 {
		t.Errorf("player should not leave the map, y = %v", w.Player.Pos.Y)
	}
}

func TestEntityAt(t *testing.T) {
	w := testWorld()

	if e := w.EntityAt(Cell{X: 3, Y: 2}); e == nil || e.Name() != "Apple" {
		t.Error("expected the apple at (3,2)")
	}
	if e := w.EntityAt(Cell{X: 0, Y: 0}); e != nil {
		t.Errorf("expected no entity at (0,0), got %s", e.Name())
	}

	w.FindByName("Apple").Active = false
	if w.EntityAt(Cell{X: 3, Y: 2}) != nil {
		t.Error("picked-up entity should not be targetable")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	w := testWorld()

	// Simulate a session: pick up the apple, change a property, move.
	apple := w.FindByName("Apple")
	apple.Active = false
	w.Player.AddItem(apple)
	w.FindByName("Old Well").SetProperty("depth", entity.Int(3))
	w.Player.Pos = entity.Vec2{X: 6, Y: 7}

	snap := w.TakeSnapshot()

	// Restore onto a fresh world from the same map.
	w2 := testWorld()
	w2.RestoreSnapshot(snap)

	if w2.Player.Pos != (entity.Vec2{X: 6, Y: 7}) {
		t.Errorf("player pos = %v", w2.Player.Pos)
	}
	apple2 := w2.FindByName("Apple")
	if apple2.Active {
		t.Error("apple should stay picked up after restore")
	}
	if w2.Player.FindItem("Apple") != apple2 {
		t.Error("player inventory should hold the world's apple entity")
	}
	if v, _ := w2.FindByName("Old Well").Property("depth"); v.AsInt() != 3 {
		t.Errorf("depth = %v, want 3", v)
	}

	// Initial kit items survive the round trip.
	if w2.Player.FindItem("lockpick") == nil {
		t.Error("player kit should survive restore")
	}
}

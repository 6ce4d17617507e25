package entity

import (
	"math"
	"testing"
)

func TestDistance(t *testing.T) {
	a := New("apple", Vec2{X: 1, Y: 2}, nil)
	b := New("barrel", Vec2{X: 4, Y: 6}, nil)

	if got := Distance(a, b); got != 5 {
		t.Errorf("Distance(a,b) = %v, want 5", got)
	}
	if Distance(a, b) != Distance(b, a) {
		t.Error("Distance should be symmetric")
	}
	if got := Distance(a, a); got != 0 {
		t.Errorf("Distance(a,a) = %v, want 0", got)
	}
}

func TestDistance_Fractional(t *testing.T) {
	a := New("a", Vec2{X: 0.5, Y: 0}, nil)
	b := New("b", Vec2{X: 2.0, Y: 2.0}, nil)
	want := math.Sqrt(1.5*1.5 + 4.0)
	if got := Distance(a, b); math.Abs(got-want) > 1e-9 {
		t.Errorf("Distance = %v, want %v", got, want)
	}
}

func TestSetProperty_OnlyExistingKeys(t *testing.T) {
	e := New("door", Vec2{}, []Prop{
		{Key: "locked", Value: Bool(true)},
		{Key: "material", Value: String("oak")},
	})

	if ok := e.SetProperty("locked", Bool(false)); !ok {
		t.Error("SetProperty on existing key should apply")
	}
	if v, _ := e.Property("locked"); v.AsBool() {
		t.Error("locked should be false after update")
	}

	// Absent keys are dropped without changing the key set.
	before := len(e.Properties())
	if ok := e.SetProperty("hinges", String("rusty")); ok {
		t.Error("SetProperty on absent key should be a no-op")
	}
	if got := len(e.Properties()); got != before {
		t.Errorf("key set size changed from %d to %d", before, got)
	}
}

func TestSetProperty_Idempotent(t *testing.T) {
	e := New("door", Vec2{}, []Prop{{Key: "locked", Value: Bool(true)}})

	e.SetProperty("locked", Bool(false))
	first := e.Describe(DescribeOptions{})
	e.SetProperty("locked", Bool(false))
	second := e.Describe(DescribeOptions{})

	if first != second {
		t.Errorf("repeated SetProperty changed observable state: %q vs %q", first, second)
	}
}

func TestNew_InventoryStringSplitsIntoItems(t *testing.T) {
	e := New("John Skiss", Vec2{}, []Prop{
		{Key: "background", Value: String("a thief")},
		{Key: "inventory", Value: String("lockpick, dagger, dark cloak")},
	})

	names := e.ItemNames()
	want := []string{"lockpick", "dagger", "dark cloak"}
	if len(names) != len(want) {
		t.Fatalf("got %d items, want %d", len(names), len(want))
	}
	for i, n := range want {
		if names[i] != n {
			t.Errorf("item %d = %q, want %q", i, names[i], n)
		}
	}

	// The raw inventory string must not leak into the property bag.
	if _, ok := e.Property("inventory"); ok {
		t.Error("inventory should not remain a bag property")
	}
}

func TestInventory_SetSemantics(t *testing.T) {
	e := New("chest", Vec2{}, nil)
	coin := New("coin", Vec2{}, nil)

	if !e.AddItem(coin) {
		t.Fatal("first add should succeed")
	}
	if e.AddItem(New("coin", Vec2{}, nil)) {
		t.Error("duplicate name should be rejected")
	}
	if got := e.RemoveItem("coin"); got != coin {
		t.Error("RemoveItem should return the owned item")
	}
	if e.RemoveItem("coin") != nil {
		t.Error("second removal should return nil")
	}
}

func TestDescribe(t *testing.T) {
	e := New("Apple", Vec2{}, []Prop{
		{Key: "color", Value: String("red")},
		{Key: "weight", Value: Float(0.3)},
		{Key: "bites", Value: Int(0)},
		{Key: "_secret", Value: String("poisoned")},
		{Key: KeyNPC, Value: Bool(false)},
	})

	tests := []struct {
		name string
		opts DescribeOptions
		want string
	}{
		{
			name: "hidden excluded by default",
			opts: DescribeOptions{},
			want: "- color: red\n- weight: 0.3\n- bites: 0\n- npc: false",
		},
		{
			name: "hidden included on request",
			opts: DescribeOptions{IncludeHidden: true},
			want: "- color: red\n- weight: 0.3\n- bites: 0\n- _secret: poisoned\n- npc: false",
		},
		{
			name: "exclude keys and include name",
			opts: DescribeOptions{IncludeName: true, ExcludeKeys: []string{KeyNPC, "bites"}},
			want: "- name: Apple\n- color: red\n- weight: 0.3",
		},
		{
			name: "empty inventory line is emitted",
			opts: DescribeOptions{IncludeInventory: true, ExcludeKeys: []string{"color", "weight", "bites", KeyNPC}},
			want: "- inventory: empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.Describe(tt.opts); got != tt.want {
				t.Errorf("Describe() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDescribe_InventorySummary(t *testing.T) {
	e := New("trader", Vec2{}, []Prop{{Key: "mood", Value: String("wary")}})
	e.AddItem(New("rope", Vec2{}, nil))
	e.AddItem(New("lantern", Vec2{}, nil))

	want := "- mood: wary\n- inventory: rope, lantern"
	if got := e.Describe(DescribeOptions{IncludeInventory: true}); got != want {
		t.Errorf("Describe() = %q, want %q", got, want)
	}
}

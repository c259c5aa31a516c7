package mpobj

import (
	"math"
	"slices"
	"testing"
)

func TestEqual(t *testing.T) {
	a := newTestArena(t)
	b := newTestArena(t)

	tests := []struct {
		name string
		x, y Value
		want bool
	}{
		{"nil", Value{}, Value{}, true},
		{"bool", Bool(true), Bool(true), true},
		{"bool differs", Bool(true), Bool(false), false},
		{"int", Int(1), Uint(1), true},
		{"int sign", Int(-1), Int(1), false},
		{"int vs double", Int(1), Float(1), false},
		{"double", Float(0.5), Float(0.5), true},
		{"string across arenas", a.NewString("x"), b.NewString("x"), true},
		{"string vs binary", a.NewString("x"), a.NewBinary([]byte("x")), false},
		{"ext", a.NewExt(1, []byte{1}), b.NewExt(1, []byte{1}), true},
		{"ext type", a.NewExt(1, []byte{1}), b.NewExt(2, []byte{1}), false},
		{"array", a.NewArray(Int(1), a.NewString("s")), b.NewArray(Int(1), b.NewString("s")), true},
		{"array length", a.NewArray(Int(1)), b.NewArray(Int(1), Int(2)), false},
		{"empty array", a.NewArray(), b.NewArray(), true},
		{"map", a.NewMap(Pair{Int(1), Int(2)}), b.NewMap(Pair{Int(1), Int(2)}), true},
		{"map order", a.NewMap(Pair{Int(1), Int(2)}, Pair{Int(3), Int(4)}), b.NewMap(Pair{Int(3), Int(4)}, Pair{Int(1), Int(2)}), false},
		{"map duplicates", a.NewMap(Pair{Int(1), Int(2)}, Pair{Int(1), Int(2)}), b.NewMap(Pair{Int(1), Int(2)}), false},
		{"map vs array", a.NewMap(), a.NewArray(), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eq(t, tt.x.Equal(tt.y), tt.want)
			eq(t, tt.y.Equal(tt.x), tt.want)
		})
	}
}

func TestEqualScalar(t *testing.T) {
	eq(t, Int(1).EqualScalar(1), true)
	eq(t, Int(1).EqualScalar(uint8(1)), true)
	eq(t, Int(-1).EqualScalar(int64(-1)), true)
	eq(t, Int(1).EqualScalar(1.0), false)
	eq(t, Float(1).EqualScalar(1.0), true)
	eq(t, Bool(true).EqualScalar(true), true)
	eq(t, Value{}.EqualScalar(nil), true)
	eq(t, Int(1).EqualScalar("1"), false)
}

func TestCompare(t *testing.T) {
	a := newTestArena(t)
	sorted := []Value{
		Value{},
		Bool(false),
		Bool(true),
		Int(math.MinInt64),
		Int(-1),
		Int(0),
		Uint(math.MaxUint64),
		Float(-1),
		Float(2),
		a.NewString("a"),
		a.NewString("ab"),
		a.NewString("b"),
		a.NewBinary(nil),
		a.NewArray(),
		a.NewArray(Int(1)),
		a.NewArray(Int(1), Int(0)),
		a.NewMap(Pair{Int(1), Int(1)}),
		a.NewExt(-1, nil),
		a.NewExt(1, []byte{0}),
	}
	shuffled := slices.Clone(sorted)
	slices.Reverse(shuffled)
	slices.SortStableFunc(shuffled, Compare)
	for i := range sorted {
		if !shuffled[i].Equal(sorted[i]) {
			t.Errorf("position %d: got %v, wanted %v", i, shuffled[i], sorted[i])
		}
	}
	for i, v := range sorted {
		eq(t, Compare(v, v), 0)
		if i > 0 {
			eq(t, Compare(sorted[i-1], v), -1)
			eq(t, Compare(v, sorted[i-1]), 1)
		}
	}
}

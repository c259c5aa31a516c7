package mpobj

import (
	"encoding/json"
	"math"
	"testing"
)

func TestValue_String(t *testing.T) {
	a := newTestArena(t)
	tests := []struct {
		v    Value
		want string
	}{
		{Value{}, "nil"},
		{Bool(true), "true"},
		{Int(42), "42"},
		{Int(-7), "-7"},
		{Uint(math.MaxUint64), "18446744073709551615"},
		{Float(1.5), "1.5"},
		{Float(0.1), "0.1"},
		{a.NewString("a\"b"), `"a\"b"`},
		{a.NewBinary([]byte{1, 'x'}), `b"\x01x"`},
		{a.NewExt(5, []byte{1, 2}), "ext(5:0102)"},
		{a.NewExt(-1, nil), "ext(-1:)"},
		{a.NewArray(), "[]"},
		{a.NewMap(), "{}"},
		{a.NewArray(Int(1), a.NewArray(Value{})), "[1, [nil]]"},
		{a.NewMap(Pair{a.NewString("k"), Bool(true)}, Pair{Int(1), a.NewMap()}), `{"k"=>true, 1=>{}}`},
	}
	for _, tt := range tests {
		eq(t, tt.v.String(), tt.want)
		eq(t, string(tt.v.AppendText([]byte("> "))), "> "+tt.want)
	}
}

func TestValue_StringReleased(t *testing.T) {
	a := NewArena()
	v := a.NewArray(Int(1))
	a.Release()
	eq(t, v.String(), "<released>")
	eq(t, Int(1).String(), "1")
}

func TestValue_MarshalJSON(t *testing.T) {
	a := newTestArena(t)
	tests := []struct {
		v    Value
		want string
	}{
		{Value{}, `null`},
		{Int(-3), `-3`},
		{Float(0.25), `0.25`},
		{a.NewString("x y"), `"x y"`},
		{a.NewBinary([]byte{1}), `"AQ=="`},
		{a.NewExt(3, []byte{1}), `{"type":3,"data":"AQ=="}`},
		{a.NewMap(Pair{a.NewString("a"), a.NewArray(Int(1), Value{})}), `{"a":[1,null]}`},
		{a.NewMap(Pair{Int(1), Bool(true)}), `[[1,true]]`},
		{a.NewMap(), `{}`},
	}
	for _, tt := range tests {
		raw, err := json.Marshal(tt.v)
		ok(t, err)
		eq(t, string(raw), tt.want)
	}

	if _, err := json.Marshal(Float(math.NaN())); err == nil {
		t.Errorf("MarshalJSON(NaN) succeeded")
	}

	b := NewArena()
	v := b.NewString("x")
	b.Release()
	_, err := v.MarshalJSON()
	isErr(t, err, ErrArenaReleased)
}

func TestDump(t *testing.T) {
	a := newTestArena(t)
	v := a.NewArray(Int(1), a.NewMap(Pair{a.NewString("k"), a.NewArray()}))
	eq(t, Dump(v, 0), "[\n  1\n  {\n    \"k\" => []\n  }\n]\n")
	eq(t, Dump(Int(1), DumpKinds), "(positive integer) 1\n")
	eq(t, Dump(Value{}, DumpAll), "(nil) nil\n")
	eq(t, DumpAll.Contains(DumpArena), true)
	eq(t, DumpKinds.Contains(DumpArena), false)

	out := Dump(a.NewString("s"), DumpArena)
	if out[:len("# arena: chunks = 1")] != "# arena: chunks = 1" {
		t.Errorf("Dump with DumpArena = %q", out)
	}
}

package mpobj

import (
	"errors"
	"strings"
	"testing"
)

func TestCopy_CrossZone(t *testing.T) {
	z1 := NewArena()
	defer z1.Release()
	z2 := NewArena()

	orig := myclass{Num: 1, Str: "custom", Vec: []float64{1.0, 0.1}, Map: map[string][]byte{"one": []byte("two")}}
	src := must(Build(z2, orig))

	c := Copy(z1, src)
	eq(t, c.Arena(), z1)
	eq(t, c.Equal(src), true)

	eq(t, c.Index(2).Index(0).Float(), 1.0)
	kv := c.Index(3).Pairs()[0]
	eq(t, kv.Key.Bytes()[0], byte('o'))
	eq(t, kv.Val.Bytes()[0], byte('t'))

	srcKV := src.Index(3).Pairs()[0]
	distinct := []struct {
		name string
		a, b uintptr
	}{
		{"array", addr(c.Items()), addr(src.Items())},
		{"string", addr(c.Index(1).Bytes()), addr(src.Index(1).Bytes())},
		{"nested array", addr(c.Index(2).Items()), addr(src.Index(2).Items())},
		{"map", addr(c.Index(3).Pairs()), addr(src.Index(3).Pairs())},
		{"map key", addr(kv.Key.Bytes()), addr(srcKV.Key.Bytes())},
		{"map value", addr(kv.Val.Bytes()), addr(srcKV.Val.Bytes())},
	}
	for _, d := range distinct {
		if d.a == d.b {
			t.Errorf("%s: copy shares memory with the source", d.name)
		}
	}

	z2.Release()
	eq(t, src.IsLive(), false)
	deepEqual(t, MustAs[myclass](c), orig)
}

func TestCopy_ExtensionDeclaredLength(t *testing.T) {
	z1 := newTestArena(t)
	z2 := newTestArena(t)

	buf := z1.Alloc(2)
	buf[0], buf[1] = 1, 2
	src := z1.extOf(1, buf[:1])

	c := Copy(z2, src)
	eq(t, c.Len(), 1)
	eq(t, cap(c.Bytes()), 1)
	eq(t, c.Bytes()[0], byte(1))
	eq(t, c.ExtType(), int8(1))
	if addr(c.Bytes()) == addr(src.Bytes()) {
		t.Errorf("copy shares memory with the source")
	}
}

func TestCopy_Primitives(t *testing.T) {
	z := newTestArena(t)
	for _, v := range []Value{Value{}, Bool(true), Int(-1), Uint(1), Float(1)} {
		c := Copy(z, v)
		eq(t, c.Equal(v), true)
		if c.Arena() != nil {
			t.Errorf("Copy(%v) has an arena", v)
		}
	}
}

func TestCopy_EmptyContainers(t *testing.T) {
	z1 := newTestArena(t)
	z2 := newTestArena(t)
	src := z1.NewArray(z1.NewArray(), z1.NewMap(), z1.NewString(""), z1.NewBinary(nil), z1.NewExt(3, nil))
	c := src.CopyTo(z2)
	eq(t, c.String(), `[[], {}, "", b"", ext(3:)]`)
	eq(t, c.Index(0).Arena(), z2)
}

func TestCopy_AllocatesOncePerStorageKind(t *testing.T) {
	z1 := newTestArena(t)
	z2 := newTestArena(t)
	src := must(Build(z1, map[string][]string{"a": {"b", "c"}, "d": {"e"}}))
	Copy(z2, src)
	eq(t, z2.Stats().Allocs, 3)
}

func TestCopy_SameArena(t *testing.T) {
	z := newTestArena(t)
	src := z.NewArray(z.NewString("x"))
	c := Copy(z, src)
	eq(t, c.Equal(src), true)
	if addr(c.Index(0).Bytes()) == addr(src.Index(0).Bytes()) {
		t.Errorf("copy shares memory with the source")
	}
}

func TestCopy_Released(t *testing.T) {
	z1 := NewArena()
	z2 := newTestArena(t)
	src := z1.NewString("x")
	z1.Release()
	isErr(t, panicErr(t, func() { Copy(z2, src) }), ErrArenaReleased)

	live := z2.NewString("y")
	z3 := NewArena()
	z3.Release()
	isErr(t, panicErr(t, func() { Copy(z3, live) }), ErrArenaReleased)
}

func TestCopy_ReleasedNestedNode(t *testing.T) {
	a := newTestArena(t)
	other := NewArenaOpt(ArenaOptions{Poison: true})
	items := a.allocValues(1)
	items[0] = other.NewString("gone")
	v := a.arrayOf(items)
	other.Release()

	dst := newTestArena(t)
	isErr(t, panicErr(t, func() { Copy(dst, v) }), ErrArenaReleased)
	eq(t, dst.Stats().Allocs, 0)
}

func TestCopy_AllocationFailureLeavesNoPartialTree(t *testing.T) {
	src := newTestArena(t)
	dst := NewArenaOpt(ArenaOptions{ChunkSize: 16, MaxSize: 32})
	defer dst.Release()

	v := src.NewArray(src.NewString("short"), src.NewString(strings.Repeat("x", 100)))
	err := panicErr(t, func() { Copy(dst, v) })
	var ae *AllocationError
	if !errors.As(err, &ae) {
		t.Fatalf("err = %v, wanted *AllocationError", err)
	}
	eq(t, dst.Stats().Allocs, 0)
	eq(t, dst.Stats().Used, 0)
}

func TestZoned(t *testing.T) {
	z1 := newTestArena(t)
	z2 := NewArena()

	src := z2.NewArray(z2.NewString("x"), z2.NewMap(Pair{z2.NewString("k"), z2.NewBinary([]byte{1})}))
	z := NewZoned(z1)
	ok(t, z.Set(src))
	eq(t, z.Value.Arena(), z1)
	eq(t, z.Value.Index(1).Pairs()[0].Key.Arena(), z1)
	z2.Release()
	eq(t, z.Value.String(), `["x", {"k"=>b"\x01"}]`)

	ok(t, z.Set(map[string]int{"a": 1}))
	eq(t, z.Value.String(), `{"a"=>1}`)

	own := z1.NewString("own")
	z.SetValue(own)
	eq(t, z.Value.Str(), "own")
	if addr(z.Value.Bytes()) == addr(own.Bytes()) {
		t.Errorf("SetValue shares memory with its argument")
	}

	if err := z.Set(make(chan int)); err == nil {
		t.Errorf("Set(chan) succeeded")
	}
}

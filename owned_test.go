package mpobj

import (
	"testing"
)

func TestOwnedTree(t *testing.T) {
	tree, err := NewOwnedTree([]any{"a", 1})
	ok(t, err)
	eq(t, tree.String(), `["a", 1]`)
	eq(t, tree.Value.Arena(), tree.Arena())

	v := tree.Value
	tree.Release()
	eq(t, v.IsLive(), false)
	eq(t, tree.Value.IsNil(), true)
	tree.Release()

	var nilTree *OwnedTree
	nilTree.Release()

	_, err = NewOwnedTree(make(chan int))
	if err == nil {
		t.Errorf("NewOwnedTree(chan) succeeded")
	}
}

func TestClone(t *testing.T) {
	a := NewArena()
	src := a.NewMap(Pair{a.NewString("k"), a.NewArray(a.NewBinary([]byte{1, 2}))})
	want := src.String()

	c := Clone(src)
	defer c.Release()
	a.Release()

	eq(t, c.String(), want)
	eq(t, c.Value.Arena(), c.Arena())

	p := Clone(Int(5))
	defer p.Release()
	eq(t, p.Value.Int(), int64(5))
}

func TestPools(t *testing.T) {
	a := getArena()
	v := a.NewString("x")
	putArena(a)
	eq(t, a.IsReleased(), false)
	eq(t, v.IsLive(), false)

	big := NewArenaOpt(ArenaOptions{ChunkSize: pooledArenaMaxReserved + 1})
	big.Alloc(1)
	putArena(big)
	eq(t, big.IsReleased(), true)
}

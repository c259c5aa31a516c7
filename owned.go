package mpobj

import (
	"github.com/vmihailenco/msgpack/v5"
)

// OwnedTree is a Value together with the arena that owns it, for returning
// self-contained trees. The tree stays valid until Release.
type OwnedTree struct {
	Value Value
	arena *Arena
}

// NewOwnedTree builds x into a fresh arena.
func NewOwnedTree(x any) (*OwnedTree, error) {
	a := NewArena()
	v, err := Build(a, x)
	if err != nil {
		a.Release()
		return nil, err
	}
	return &OwnedTree{Value: v, arena: a}, nil
}

// Clone deep-copies v into a fresh arena.
func Clone(v Value) *OwnedTree {
	var p copyPlan
	if v.kind.IsCompound() {
		v.mustBeLive("Clone")
		p.measure(v)
	}
	a := NewArenaOpt(ArenaOptions{ChunkSize: max(p.bytes, 64)})
	return &OwnedTree{Value: Copy(a, v), arena: a}
}

func (t *OwnedTree) Arena() *Arena {
	return t.arena
}

// Release drops the tree's memory. Calling it on a nil or already released
// tree does nothing.
func (t *OwnedTree) Release() {
	if t == nil || t.arena == nil {
		return
	}
	t.arena.Release()
	t.Value = Value{}
}

func (t *OwnedTree) String() string {
	return t.Value.String()
}

func (t *OwnedTree) EncodeMsgpack(enc *msgpack.Encoder) error {
	return encodeValue(enc, t.Value)
}

// DecodeMsgpack implements msgpack.CustomDecoder. The previous tree, if any,
// is released.
func (t *OwnedTree) DecodeMsgpack(dec *msgpack.Decoder) error {
	raw, err := dec.DecodeRaw()
	if err != nil {
		return err
	}
	nt, err := Decode(raw)
	if err != nil {
		return err
	}
	t.Release()
	*t = *nt
	return nil
}

// Zoned is a Value being built under the ownership of a given arena. Set and
// SetValue copy whatever they are given into that arena, so a Zoned never
// refers to memory of another arena.
type Zoned struct {
	Value Value
	Arena *Arena
}

// NewZoned returns an empty (Nil) Zoned bound to a.
func NewZoned(a *Arena) *Zoned {
	return &Zoned{Arena: a}
}

// Set assigns x to z. A Value is deep-copied into z.Arena; anything else
// goes through Build.
func (z *Zoned) Set(x any) error {
	if src, ok := x.(Value); ok {
		z.SetValue(src)
		return nil
	}
	v, err := Build(z.Arena, x)
	if err != nil {
		return err
	}
	z.Value = v
	return nil
}

// SetValue deep-copies src into z.Arena, even when src already lives there.
func (z *Zoned) SetValue(src Value) {
	z.Value = Copy(z.Arena, src)
}

func (z *Zoned) EncodeMsgpack(enc *msgpack.Encoder) error {
	return encodeValue(enc, z.Value)
}

// DecodeMsgpack implements msgpack.CustomDecoder, decoding into z.Arena. A
// Zoned without an arena gets a fresh one.
func (z *Zoned) DecodeMsgpack(dec *msgpack.Decoder) error {
	raw, err := dec.DecodeRaw()
	if err != nil {
		return err
	}
	if z.Arena == nil {
		z.Arena = NewArenaOpt(ArenaOptions{ChunkSize: decodeChunkSize(len(raw))})
	}
	v, _, err := DecodeIn(z.Arena, raw)
	if err != nil {
		return err
	}
	z.Value = v
	return nil
}

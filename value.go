package mpobj

import (
	"fmt"
	"math"
)

type Kind uint8

const (
	KindNil Kind = iota
	KindBoolean
	KindPositiveInteger
	KindNegativeInteger
	KindDouble
	KindString
	KindBinary
	KindArray
	KindMap
	KindExtension
)

var kindNames = [...]string{
	KindNil:             "nil",
	KindBoolean:         "boolean",
	KindPositiveInteger: "positive integer",
	KindNegativeInteger: "negative integer",
	KindDouble:          "double",
	KindString:          "string",
	KindBinary:          "binary",
	KindArray:           "array",
	KindMap:             "map",
	KindExtension:       "extension",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// IsCompound reports whether values of this kind keep their payload in an
// arena.
func (k Kind) IsCompound() bool {
	return k >= KindString && k <= KindExtension
}

// Value is a decoded or about-to-be-encoded MessagePack object.
//
// Nil, Boolean, integers and Double are plain values. String, Binary, Array,
// Map and Extension reference memory of the arena they were built in, and
// must not be used after that arena is reset or released; use Copy to move
// a tree into another arena first.
//
// The zero Value is Nil.
type Value struct {
	kind Kind
	ext  int8
	num  uint64 // boolean, integer bits or float64 bits

	arena *Arena
	gen   uint64

	data  []byte  // String, Binary, Extension
	items []Value // Array
	pairs []Pair  // Map
}

// Pair is a single Map entry.
type Pair struct {
	Key Value
	Val Value
}

// Ext is a heap-owned extension value, used when converting between Go
// values and Extension-kind Values.
type Ext struct {
	Type int8
	Data []byte
}

func Nil() Value {
	return Value{}
}

func Bool(b bool) Value {
	v := Value{kind: KindBoolean}
	if b {
		v.num = 1
	}
	return v
}

// Int returns a NegativeInteger value for n < 0 and a PositiveInteger value
// otherwise.
func Int(n int64) Value {
	if n < 0 {
		return Value{kind: KindNegativeInteger, num: uint64(n)}
	}
	return Value{kind: KindPositiveInteger, num: uint64(n)}
}

func Uint(n uint64) Value {
	return Value{kind: KindPositiveInteger, num: n}
}

func Float(f float64) Value {
	return Value{kind: KindDouble, num: math.Float64bits(f)}
}

// Scalar returns the primitive Value for a Go nil, bool, integer or float, or
// a primitive Value itself.
func Scalar(x any) (Value, bool) {
	switch x := x.(type) {
	case nil:
		return Value{}, true
	case Value:
		return x, !x.kind.IsCompound()
	case bool:
		return Bool(x), true
	case int:
		return Int(int64(x)), true
	case int8:
		return Int(int64(x)), true
	case int16:
		return Int(int64(x)), true
	case int32:
		return Int(int64(x)), true
	case int64:
		return Int(x), true
	case uint:
		return Uint(uint64(x)), true
	case uint8:
		return Uint(uint64(x)), true
	case uint16:
		return Uint(uint64(x)), true
	case uint32:
		return Uint(uint64(x)), true
	case uint64:
		return Uint(x), true
	case uintptr:
		return Uint(uint64(x)), true
	case float32:
		return Float(float64(x)), true
	case float64:
		return Float(x), true
	default:
		return Value{}, false
	}
}

func (a *Arena) compound(kind Kind) Value {
	return Value{kind: kind, arena: a, gen: a.gen}
}

// NewString copies s into the arena and returns a String value.
func (a *Arena) NewString(s string) Value {
	v := a.compound(KindString)
	v.data = a.CopyString(s)
	return v
}

// NewStringBytes is like NewString, but takes bytes. No encoding validation
// is done.
func (a *Arena) NewStringBytes(b []byte) Value {
	v := a.compound(KindString)
	v.data = a.CopyBytes(b)
	return v
}

func (a *Arena) NewBinary(b []byte) Value {
	v := a.compound(KindBinary)
	v.data = a.CopyBytes(b)
	return v
}

// NewExt returns an Extension value with the given type tag; its declared
// length is len(data).
func (a *Arena) NewExt(typ int8, data []byte) Value {
	v := a.compound(KindExtension)
	v.ext = typ
	v.data = a.CopyBytes(data)
	return v
}

// NewArray returns an Array of the given items. Items that live in another
// arena are deep-copied into a.
func (a *Arena) NewArray(items ...Value) Value {
	dst := a.allocValues(len(items))
	for i, item := range items {
		dst[i] = a.adopt(item)
	}
	return a.arrayOf(dst)
}

// NewMap returns a Map of the given entries, keeping their order and any
// duplicate keys. Keys and values from other arenas are deep-copied into a.
func (a *Arena) NewMap(pairs ...Pair) Value {
	dst := a.allocPairs(len(pairs))
	for i, p := range pairs {
		dst[i] = Pair{a.adopt(p.Key), a.adopt(p.Val)}
	}
	return a.mapOf(dst)
}

func (a *Arena) arrayOf(items []Value) Value {
	v := a.compound(KindArray)
	v.items = items
	return v
}

func (a *Arena) mapOf(pairs []Pair) Value {
	v := a.compound(KindMap)
	v.pairs = pairs
	return v
}

func (a *Arena) extOf(typ int8, data []byte) Value {
	v := a.compound(KindExtension)
	v.ext = typ
	v.data = data
	return v
}

func (a *Arena) bytesOf(kind Kind, data []byte) Value {
	v := a.compound(kind)
	v.data = data
	return v
}

// adopt returns v if it belongs to the current generation of a, and a deep
// copy in a otherwise.
func (a *Arena) adopt(v Value) Value {
	if !v.kind.IsCompound() || (v.arena == a && v.gen == a.gen) {
		return v
	}
	return Copy(a, v)
}

func (v Value) Kind() Kind {
	return v.kind
}

func (v Value) IsNil() bool {
	return v.kind == KindNil
}

// IsLive reports whether the payload of v can still be read. Primitive values
// are always live.
func (v Value) IsLive() bool {
	if !v.kind.IsCompound() {
		return true
	}
	return v.arena != nil && !v.arena.released && v.arena.gen == v.gen
}

// Arena returns the arena owning the payload of v, or nil for primitives.
func (v Value) Arena() *Arena {
	return v.arena
}

func (v Value) mustBeLive(op string) {
	if !v.IsLive() {
		panic(fmt.Errorf("mpobj: Value.%s on %s: %w", op, v.kind, ErrArenaReleased))
	}
}

func (v Value) mustBe(op string, kinds ...Kind) {
	for _, k := range kinds {
		if v.kind == k {
			if k.IsCompound() {
				v.mustBeLive(op)
			}
			return
		}
	}
	panic(&TypeError{Want: kindList(kinds), Got: v.kind, Path: "Value." + op})
}

func (v Value) Bool() bool {
	v.mustBe("Bool", KindBoolean)
	return v.num != 0
}

func (v Value) Uint() uint64 {
	v.mustBe("Uint", KindPositiveInteger)
	return v.num
}

// Int returns the value of either integer kind. It panics if a
// PositiveInteger does not fit into int64.
func (v Value) Int() int64 {
	v.mustBe("Int", KindNegativeInteger, KindPositiveInteger)
	if v.kind == KindPositiveInteger && v.num > math.MaxInt64 {
		panic(&TypeError{Want: "integer within int64 range", Got: v.kind, Path: "Value.Int", Err: errOutOfRange(v)})
	}
	return int64(v.num)
}

func (v Value) Float() float64 {
	v.mustBe("Float", KindDouble)
	return math.Float64frombits(v.num)
}

// Bytes returns the payload of a String, Binary or Extension value. The
// returned slice is arena memory: do not retain it past the arena's lifetime.
func (v Value) Bytes() []byte {
	v.mustBe("Bytes", KindString, KindBinary, KindExtension)
	return v.data
}

// Str returns a heap copy of a String or Binary payload.
func (v Value) Str() string {
	v.mustBe("Str", KindString, KindBinary)
	return string(v.data)
}

func (v Value) ExtType() int8 {
	v.mustBe("ExtType", KindExtension)
	return v.ext
}

// Items returns the elements of an Array. The slice is arena memory.
func (v Value) Items() []Value {
	v.mustBe("Items", KindArray)
	return v.items
}

func (v Value) Index(i int) Value {
	return v.Items()[i]
}

// Pairs returns the entries of a Map in stored order. The slice is arena
// memory.
func (v Value) Pairs() []Pair {
	v.mustBe("Pairs", KindMap)
	return v.pairs
}

// Lookup returns the value of the first entry whose key is a String or
// Binary equal to key.
func (v Value) Lookup(key string) (Value, bool) {
	for _, p := range v.Pairs() {
		if (p.Key.kind == KindString || p.Key.kind == KindBinary) && string(p.Key.data) == key {
			return p.Val, true
		}
	}
	return Value{}, false
}

// Len returns the payload length of a String, Binary or Extension, or the
// number of Array elements or Map entries.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.Items())
	case KindMap:
		return len(v.Pairs())
	default:
		return len(v.Bytes())
	}
}

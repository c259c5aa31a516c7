package mpobj

import (
	"bytes"
	"cmp"
)

// Equal reports whether v and o have the same kind and structurally equal
// payloads. Arrays and maps compare element by element in stored order, so
// maps holding the same entries in a different order are not equal.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNil:
		return true
	case KindBoolean, KindPositiveInteger, KindNegativeInteger:
		return v.num == o.num
	case KindDouble:
		return v.Float() == o.Float()
	case KindString, KindBinary:
		return bytes.Equal(v.Bytes(), o.Bytes())
	case KindExtension:
		return v.ext == o.ext && bytes.Equal(v.Bytes(), o.Bytes())
	case KindArray:
		a, b := v.Items(), o.Items()
		if len(a) != len(b) {
			return false
		}
		for i := range a {
			if !a[i].Equal(b[i]) {
				return false
			}
		}
		return true
	case KindMap:
		a, b := v.Pairs(), o.Pairs()
		if len(a) != len(b) {
			return false
		}
		for i := range a {
			if !a[i].Key.Equal(b[i].Key) || !a[i].Val.Equal(b[i].Val) {
				return false
			}
		}
		return true
	default:
		panic("unreachable")
	}
}

// EqualScalar compares v with a Go nil, bool, integer or float by first
// turning x into a primitive Value. It returns false for any other x.
func (v Value) EqualScalar(x any) bool {
	s, ok := Scalar(x)
	return ok && v.Equal(s)
}

var kindRanks = [...]int{
	KindNil:             0,
	KindBoolean:         1,
	KindNegativeInteger: 2,
	KindPositiveInteger: 3,
	KindDouble:          4,
	KindString:          5,
	KindBinary:          6,
	KindArray:           7,
	KindMap:             8,
	KindExtension:       9,
}

// Compare orders values by kind (nil, boolean, integers, double, string,
// binary, array, map, extension), then by payload. Negative integers sort
// before positive ones. Compare(a, b) == 0 iff a.Equal(b), except for NaN.
func Compare(a, b Value) int {
	if c := cmp.Compare(kindRanks[a.kind], kindRanks[b.kind]); c != 0 {
		return c
	}
	switch a.kind {
	case KindNil:
		return 0
	case KindBoolean, KindPositiveInteger:
		return cmp.Compare(a.num, b.num)
	case KindNegativeInteger:
		return cmp.Compare(int64(a.num), int64(b.num))
	case KindDouble:
		return cmp.Compare(a.Float(), b.Float())
	case KindString, KindBinary:
		return bytes.Compare(a.Bytes(), b.Bytes())
	case KindExtension:
		if c := cmp.Compare(a.ext, b.ext); c != 0 {
			return c
		}
		return bytes.Compare(a.Bytes(), b.Bytes())
	case KindArray:
		x, y := a.Items(), b.Items()
		for i := range min(len(x), len(y)) {
			if c := Compare(x[i], y[i]); c != 0 {
				return c
			}
		}
		return cmp.Compare(len(x), len(y))
	case KindMap:
		x, y := a.Pairs(), b.Pairs()
		for i := range min(len(x), len(y)) {
			if c := Compare(x[i].Key, y[i].Key); c != 0 {
				return c
			}
			if c := Compare(x[i].Val, y[i].Val); c != 0 {
				return c
			}
		}
		return cmp.Compare(len(x), len(y))
	default:
		panic("unreachable")
	}
}

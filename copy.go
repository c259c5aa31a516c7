package mpobj

// Copy returns a deep copy of src whose payloads all live in dst. Primitive
// values are returned as is. The copy shares no memory with src at any
// depth, so either arena can be released without affecting the other.
//
// The tree is measured first and each kind of storage is allocated once, so
// running out of arena memory panics before anything is written.
func Copy(dst *Arena, src Value) Value {
	if !src.kind.IsCompound() {
		return src
	}
	src.mustBeLive("Copy")
	dst.mustBeLive("Copy")

	var p copyPlan
	p.measure(src)

	c := copier{
		arena:  dst,
		bytes:  dst.allocBytes(p.bytes),
		values: dst.allocValues(p.values),
		pairs:  dst.allocPairs(p.pairs),
	}
	return c.copy(src)
}

// CopyTo is the method form of Copy.
func (v Value) CopyTo(dst *Arena) Value {
	return Copy(dst, v)
}

type copyPlan struct {
	bytes  int
	values int
	pairs  int
}

func (p *copyPlan) measure(v Value) {
	if v.kind.IsCompound() {
		v.mustBeLive("Copy")
	}
	switch v.kind {
	case KindString, KindBinary, KindExtension:
		p.bytes += len(v.data)
	case KindArray:
		p.values += len(v.items)
		for _, item := range v.items {
			p.measure(item)
		}
	case KindMap:
		p.pairs += len(v.pairs)
		for _, e := range v.pairs {
			p.measure(e.Key)
			p.measure(e.Val)
		}
	}
}

type copier struct {
	arena  *Arena
	bytes  []byte
	values []Value
	pairs  []Pair
}

func (c *copier) copy(v Value) Value {
	switch v.kind {
	case KindString, KindBinary, KindExtension:
		n := len(v.data)
		var data []byte
		if n > 0 {
			data = c.bytes[:n:n]
			c.bytes = c.bytes[n:]
			copy(data, v.data)
		}
		r := c.arena.bytesOf(v.kind, data)
		r.ext = v.ext
		return r
	case KindArray:
		n := len(v.items)
		var items []Value
		if n > 0 {
			items = c.values[:n:n]
			c.values = c.values[n:]
		}
		for i, item := range v.items {
			items[i] = c.copy(item)
		}
		return c.arena.arrayOf(items)
	case KindMap:
		n := len(v.pairs)
		var pairs []Pair
		if n > 0 {
			pairs = c.pairs[:n:n]
			c.pairs = c.pairs[n:]
		}
		for i, e := range v.pairs {
			pairs[i] = Pair{c.copy(e.Key), c.copy(e.Val)}
		}
		return c.arena.mapOf(pairs)
	default:
		return v
	}
}

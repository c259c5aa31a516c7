package mpobj

import (
	"fmt"
	"strings"
)

type DumpFlags uint64

const (
	DumpKinds = DumpFlags(1 << iota)
	DumpArena

	DumpAll = DumpFlags(0xFFFFFFFFFFFFFFFF)

	indentStep = "  "
)

func (f DumpFlags) Contains(v DumpFlags) bool {
	return (f & v) == v
}

// Dump renders v over multiple lines, one element per line, for debugging.
// Empty containers and scalars stay on a single line.
func Dump(v Value, f DumpFlags) string {
	var buf strings.Builder
	if f.Contains(DumpArena) && v.arena != nil {
		s := v.arena.Stats()
		fmt.Fprintf(&buf, "# arena: chunks = %d, slabs = %d, reserved = %d, used = %d, allocs = %d, gen = %d\n", s.Chunks, s.Slabs, s.Reserved, s.Used, s.Allocs, s.Generation)
	}
	dumpValue(&buf, "", f, v)
	buf.WriteByte('\n')
	return buf.String()
}

func dumpValue(w *strings.Builder, indent string, f DumpFlags, v Value) {
	if f.Contains(DumpKinds) {
		fmt.Fprintf(w, "(%v) ", v.kind)
	}
	if (v.kind != KindArray && v.kind != KindMap) || !v.IsLive() || v.Len() == 0 {
		w.WriteString(v.String())
		return
	}
	inner := indent + indentStep
	if v.kind == KindArray {
		w.WriteString("[\n")
		for _, item := range v.items {
			w.WriteString(inner)
			dumpValue(w, inner, f, item)
			w.WriteByte('\n')
		}
		w.WriteString(indent)
		w.WriteByte(']')
		return
	}
	w.WriteString("{\n")
	for _, p := range v.pairs {
		w.WriteString(inner)
		dumpValue(w, inner, f, p.Key)
		w.WriteString(" => ")
		dumpValue(w, inner, f, p.Val)
		w.WriteByte('\n')
	}
	w.WriteString(indent)
	w.WriteByte('}')
}

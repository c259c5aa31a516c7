package mpobj

import (
	"testing"
)

func TestBytesBuilder_Basics(t *testing.T) {
	var bb bytesBuilder
	off := bb.Grow(3)
	eq(t, off, 0)
	copy(bb.Buf[off:], []byte{1, 2, 3})
	if cap(bb.Buf) < 16 {
		t.Fatalf("cap(bb.Buf) = %d, wanted >= 16", cap(bb.Buf))
	}

	_, _ = bb.Write([]byte{9, 8})
	deepEqual(t, bb.Buf, []byte{1, 2, 3, 9, 8})

	_ = bb.WriteByte(7)
	deepEqual(t, bb.Buf, []byte{1, 2, 3, 9, 8, 7})
}

func TestEnsureCapacity(t *testing.T) {
	buf := []byte{1, 2}
	grown := ensureCapacity(buf, 40)
	deepEqual(t, grown, []byte{1, 2})
	eq(t, cap(grown), 64)

	same := ensureCapacity(grown, 10)
	eq(t, addr(same), addr(grown))
}

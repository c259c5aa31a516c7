package mpobj

import (
	"context"
	"fmt"
	"log/slog"
	"unsafe"
)

const (
	// DefaultChunkSize is the size of the first byte chunk of a new arena.
	DefaultChunkSize = 8 << 10
	// DefaultMaxChunkSize caps the doubling of byte chunks. Larger requests
	// still succeed and get a chunk of their own.
	DefaultMaxChunkSize = 1 << 20

	minSlabLen = 16
	maxSlabLen = 4096

	poisonByte = 0xDB
)

type ArenaOptions struct {
	ChunkSize    int
	MaxChunkSize int

	// MaxSize limits the total number of bytes the arena may reserve from the
	// Go heap. Zero means no limit. Going over the limit panics with
	// *AllocationError.
	MaxSize int

	// Poison overwrites byte chunks at Reset and Release, which makes any
	// payload still referenced through unsafe code obviously wrong.
	Poison bool

	Logger  *slog.Logger
	Verbose bool
}

// Arena is a bump allocator that owns the variable-length payloads of Value
// trees. Memory is never freed individually; Release drops everything at once
// after running registered finalizers.
//
// Values built in an arena remember the arena and its generation. Accessing
// their payloads after Release or Reset panics with ErrArenaReleased.
//
// Arena is not safe for concurrent mutation. A finished tree can be read
// from multiple goroutines.
type Arena struct {
	chunks []chunk
	values slabList[Value]
	pairs  slabList[Pair]

	finalizers []finalizer

	gen      uint64
	released bool

	nextChunk int
	reserved  int
	used      int
	allocs    int

	opt    ArenaOptions
	logger *slog.Logger
}

type chunk struct {
	buf []byte
	off int
}

type finalizer struct {
	fn     func(target any)
	target any
}

// NewArena returns an arena with default options.
func NewArena() *Arena {
	return NewArenaOpt(ArenaOptions{})
}

func NewArenaOpt(opt ArenaOptions) *Arena {
	if opt.ChunkSize <= 0 {
		opt.ChunkSize = DefaultChunkSize
	}
	if opt.MaxChunkSize <= 0 {
		opt.MaxChunkSize = DefaultMaxChunkSize
	}
	if opt.MaxChunkSize < opt.ChunkSize {
		opt.MaxChunkSize = opt.ChunkSize
	}
	logger := opt.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Arena{
		nextChunk: opt.ChunkSize,
		opt:       opt,
		logger:    logger,
	}
}

// Alloc returns n fresh zeroed bytes aligned to the pointer size. The memory
// stays valid until the arena is reset or released.
func (a *Arena) Alloc(n int) []byte {
	return a.AllocAligned(n, int(unsafe.Sizeof(uintptr(0))))
}

// AllocAligned returns n fresh zeroed bytes whose address is a multiple of
// align, which must be a power of two.
func (a *Arena) AllocAligned(n, align int) []byte {
	a.mustBeLive("AllocAligned")
	if n < 0 {
		panic(fmt.Errorf("mpobj: negative allocation size %d", n))
	}
	if align <= 0 || align&(align-1) != 0 {
		panic(fmt.Errorf("mpobj: alignment %d is not a power of two", align))
	}
	if n == 0 {
		return nil
	}

	if k := len(a.chunks); k > 0 {
		c := &a.chunks[k-1]
		if off, ok := c.fit(n, align); ok {
			return a.take(c, off, n)
		}
	}

	c := a.grow(n + align - 1)
	off, ok := c.fit(n, align)
	if !ok {
		panic("unreachable")
	}
	return a.take(c, off, n)
}

func (a *Arena) allocBytes(n int) []byte {
	return a.AllocAligned(n, 1)
}

func (a *Arena) take(c *chunk, off, n int) []byte {
	c.off = off + n
	a.used += n
	a.allocs++
	return c.buf[off : off+n : off+n]
}

// CopyBytes allocates len(b) bytes and copies b into them.
func (a *Arena) CopyBytes(b []byte) []byte {
	dst := a.allocBytes(len(b))
	copy(dst, b)
	return dst
}

// CopyString is like CopyBytes, but for strings.
func (a *Arena) CopyString(s string) []byte {
	dst := a.allocBytes(len(s))
	copy(dst, s)
	return dst
}

// fit returns the first offset at or after c.off that is aligned in memory.
func (c *chunk) fit(n, align int) (int, bool) {
	if len(c.buf) == 0 {
		return 0, false
	}
	base := uintptr(unsafe.Pointer(unsafe.SliceData(c.buf)))
	mask := uintptr(align - 1)
	off := int((base+uintptr(c.off)+mask)&^mask - base)
	return off, off+n <= len(c.buf)
}

func (a *Arena) grow(need int) *chunk {
	size := max(a.nextChunk, need)
	if need <= a.opt.MaxChunkSize && a.nextChunk < a.opt.MaxChunkSize {
		a.nextChunk = min(a.nextChunk*2, a.opt.MaxChunkSize)
	}
	a.reserve(size)
	a.chunks = append(a.chunks, chunk{buf: make([]byte, size)})
	if a.opt.Verbose {
		a.logger.LogAttrs(context.Background(), slog.LevelDebug, "arena: new chunk", slog.Int("size", size), slog.Int("chunks", len(a.chunks)), slog.Int("reserved", a.reserved))
	}
	return &a.chunks[len(a.chunks)-1]
}

func (a *Arena) reserve(n int) {
	if a.opt.MaxSize > 0 && a.reserved+n > a.opt.MaxSize {
		panic(&AllocationError{Requested: n, Reserved: a.reserved, Limit: a.opt.MaxSize})
	}
	a.reserved += n
}

// AddFinalizer registers fn to be called with target when the arena is reset
// or released. Finalizers run in reverse registration order, before the
// arena's memory is dropped.
func (a *Arena) AddFinalizer(fn func(target any), target any) {
	a.mustBeLive("AddFinalizer")
	if fn == nil {
		panic("mpobj: nil finalizer")
	}
	a.finalizers = append(a.finalizers, finalizer{fn, target})
}

// Adopt ties the lifetime of child to a: child is released when a is reset
// or released.
func (a *Arena) Adopt(child *Arena) {
	if child == a {
		panic("mpobj: arena cannot adopt itself")
	}
	child.mustBeLive("Adopt")
	a.AddFinalizer(releaseArena, child)
}

func releaseArena(target any) {
	target.(*Arena).Release()
}

func (a *Arena) runFinalizers() {
	n := len(a.finalizers)
	for len(a.finalizers) > 0 {
		i := len(a.finalizers) - 1
		f := a.finalizers[i]
		a.finalizers[i] = finalizer{}
		a.finalizers = a.finalizers[:i]
		f.fn(f.target)
	}
	if n > 0 && a.opt.Verbose {
		a.logger.LogAttrs(context.Background(), slog.LevelDebug, "arena: finalizers done", slog.Int("count", n))
	}
}

// Reset runs finalizers, invalidates every Value built in the arena so far
// and makes the memory available again. The largest chunk and slabs are kept.
func (a *Arena) Reset() {
	a.mustBeLive("Reset")
	a.runFinalizers()
	a.poison()

	if k := len(a.chunks); k > 0 {
		last := a.chunks[k-1]
		clear(last.buf)
		last.off = 0
		clear(a.chunks)
		a.chunks = append(a.chunks[:0], last)
	}
	a.values.reset()
	a.pairs.reset()

	a.gen++
	a.used = 0
	a.allocs = 0
	a.reserved = a.footprint()
}

// Release runs finalizers and drops all memory. Any later use of the arena or
// of a Value built in it panics. Releasing twice is a no-op.
func (a *Arena) Release() {
	if a.released {
		return
	}
	a.runFinalizers()
	if a.opt.Verbose {
		a.logger.LogAttrs(context.Background(), slog.LevelDebug, "arena: release", slog.Any("stats", a.Stats()))
	}
	a.poison()
	a.chunks = nil
	a.values = slabList[Value]{}
	a.pairs = slabList[Pair]{}
	a.released = true
	a.gen++
	a.reserved = 0
	a.used = 0
}

// IsReleased reports whether Release has been called.
func (a *Arena) IsReleased() bool {
	return a.released
}

func (a *Arena) poison() {
	if !a.opt.Poison {
		return
	}
	for _, c := range a.chunks {
		for i := range c.buf {
			c.buf[i] = poisonByte
		}
	}
}

func (a *Arena) footprint() int {
	var n int
	for _, c := range a.chunks {
		n += len(c.buf)
	}
	return n + a.values.footprint() + a.pairs.footprint()
}

func (a *Arena) mustBeLive(op string) {
	if a == nil {
		panic(fmt.Errorf("mpobj: %s on nil arena", op))
	}
	if a.released {
		panic(fmt.Errorf("mpobj: Arena.%s: %w", op, ErrArenaReleased))
	}
}

func (a *Arena) allocValues(n int) []Value {
	a.mustBeLive("allocValues")
	return a.values.alloc(a, n)
}

func (a *Arena) allocPairs(n int) []Pair {
	a.mustBeLive("allocPairs")
	return a.pairs.alloc(a, n)
}

// slabList hands out typed sub-slices. Values and pairs hold pointers, so
// they cannot live in byte chunks without hiding those pointers from the GC.
type slabList[T any] struct {
	slabs []slab[T]
	next  int
}

type slab[T any] struct {
	items []T
	off   int
}

func (l *slabList[T]) alloc(a *Arena, n int) []T {
	if n <= 0 {
		return nil
	}
	if k := len(l.slabs); k > 0 {
		s := &l.slabs[k-1]
		if s.off+n <= len(s.items) {
			r := s.items[s.off : s.off+n : s.off+n]
			s.off += n
			a.allocs++
			return r
		}
	}

	size := l.next
	if size == 0 {
		size = minSlabLen
	}
	if n > size {
		size = n
	} else {
		l.next = min(size*2, maxSlabLen)
	}
	var zero T
	a.reserve(size * int(unsafe.Sizeof(zero)))
	l.slabs = append(l.slabs, slab[T]{items: make([]T, size), off: n})
	a.allocs++
	return l.slabs[len(l.slabs)-1].items[:n:n]
}

func (l *slabList[T]) reset() {
	k := len(l.slabs)
	if k == 0 {
		return
	}
	last := l.slabs[k-1]
	clear(last.items)
	last.off = 0
	clear(l.slabs)
	l.slabs = append(l.slabs[:0], last)
}

func (l *slabList[T]) footprint() int {
	var zero T
	var n int
	for _, s := range l.slabs {
		n += len(s.items)
	}
	return n * int(unsafe.Sizeof(zero))
}

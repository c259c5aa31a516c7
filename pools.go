package mpobj

import "sync"

// pooledArenaMaxReserved is the footprint above which an arena is dropped
// instead of going back to the pool.
const pooledArenaMaxReserved = 4 << 20

var arenaPool = &sync.Pool{
	New: func() any {
		return NewArena()
	},
}

func getArena() *Arena {
	return arenaPool.Get().(*Arena)
}

func putArena(a *Arena) {
	if a.reserved > pooledArenaMaxReserved {
		a.Release()
		return
	}
	a.Reset()
	arenaPool.Put(a)
}

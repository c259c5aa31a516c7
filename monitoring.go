package mpobj

import "log/slog"

type ArenaStats struct {
	Chunks int
	Slabs  int

	Reserved int // bytes taken from the Go heap
	Used     int // payload bytes handed out, without alignment padding
	Allocs   int

	Finalizers int
	Generation uint64
	Released   bool
}

// Utilization is Used/Reserved, or 0 for an empty arena.
func (s ArenaStats) Utilization() float64 {
	if s.Reserved == 0 {
		return 0
	}
	return float64(s.Used) / float64(s.Reserved)
}

func (s ArenaStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("chunks", s.Chunks),
		slog.Int("slabs", s.Slabs),
		slog.Int("reserved", s.Reserved),
		slog.Int("used", s.Used),
		slog.Int("allocs", s.Allocs),
		slog.Int("finalizers", s.Finalizers),
		slog.Uint64("gen", s.Generation),
		slog.Bool("released", s.Released),
	)
}

func (a *Arena) Stats() ArenaStats {
	return ArenaStats{
		Chunks:     len(a.chunks),
		Slabs:      len(a.values.slabs) + len(a.pairs.slabs),
		Reserved:   a.reserved,
		Used:       a.used,
		Allocs:     a.allocs,
		Finalizers: len(a.finalizers),
		Generation: a.gen,
		Released:   a.released,
	}
}

package preview

// Stats is a point-in-time snapshot of cache occupancy, for
// diagnostics and tests.
type Stats struct {
	StaticSize       int
	StaticCapacity   int
	AnimatedSize     int
	AnimatedCapacity int
}

// ExtendedStats adds the in-flight fetch counts to Stats.
type ExtendedStats struct {
	Stats
	PendingStatic   int
	PendingAnimated int
}

// Stats reports the current size and fixed capacity of both caches.
// Pure read, no side effects.
func (s *Service) Stats() Stats {
	return Stats{
		StaticSize:       s.static.Len(),
		StaticCapacity:   s.static.Cap(),
		AnimatedSize:     s.animated.Len(),
		AnimatedCapacity: s.animated.Cap(),
	}
}

// ExtendedStats reports Stats plus the number of in-flight fetches per
// registry. The counts are snapshots, not fences: a pending entry
// disappears shortly after its fetch settles.
func (s *Service) ExtendedStats() ExtendedStats {
	return ExtendedStats{
		Stats:           s.Stats(),
		PendingStatic:   s.staticPending.Len(),
		PendingAnimated: s.animatedPending.Len(),
	}
}

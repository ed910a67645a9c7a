package preview

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DefaultPreloadConcurrency bounds the number of simultaneous fetches
// issued by Preload when not overridden.
const DefaultPreloadConcurrency = 8

// Preload warms the static cache for a batch of descriptors and
// returns once every item has settled.
//
// Eligibility is decided in input order; eligible fetches run
// concurrently. A descriptor is skipped when its key is already in the
// static cache, and animated resources are skipped entirely: decoding
// every frame of every animated cursor in a large library up front is
// wasteful, so those load lazily through Animated.
//
// Individual fetch failures are logged and isolated: they never abort
// sibling items and Preload itself never fails. A failed item leaves
// no cache entry, so a later request simply fetches again.
//
// Preload does not consult the pending registries. It is the only
// batch entry point for these keys; overlapping with a concurrent
// Static call for the same key costs at most one duplicate fetch, and
// both writes carry the same payload.
func (s *Service) Preload(ctx context.Context, descs []Descriptor) {
	workers := s.preloadWorkers
	if workers < 1 {
		workers = DefaultPreloadConcurrency
	}

	var g errgroup.Group
	g.SetLimit(workers)

	for _, d := range descs {
		if d.IsAnimated() {
			continue
		}
		key := d.Key()
		if _, ok := s.static.Get(key); ok {
			continue
		}
		g.Go(func() error {
			payload, err := s.fetchStatic(ctx, d)
			if err != nil {
				s.log().Debug("preload item failed", "key", key, "error", err)
				return nil
			}
			s.static.Set(key, payload)
			return nil
		})
	}

	_ = g.Wait() // items never return errors
}

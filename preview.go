// Package preview caches renderable previews for cursor resources.
//
// Producing a preview means decoding a binary cursor file or rendering
// a built-in cursor glyph, which is expensive relative to a map lookup,
// and the same resource is often requested from several places at once
// while a user scrolls a large library. The Service keeps two bounded
// caches, one for static single-frame previews and one for animated
// multi-frame previews, and coalesces concurrent fetches per key so
// the underlying Fetcher sees at most one in-flight fetch per
// resource.
//
// Eviction is by insertion order: when a cache is full, the
// oldest-inserted entry is dropped. Fetch failures are surfaced to
// every waiter, never retried here, and never cached, so a later
// request simply fetches again.
package preview

import (
	"context"
	"log/slog"
	"sync"

	"github.com/cursorkit/preview/cache"
)

// Default capacities. Animated entries hold every frame of a cursor,
// so that cache is kept smaller.
const (
	DefaultStaticCapacity   = 200
	DefaultAnimatedCapacity = 100
)

// Service is the preview cache a process shares across all call sites.
// Construct one with NewService and pass it by reference; tests build
// isolated instances instead of sharing globals.
type Service struct {
	fetcher Fetcher
	logger  *slog.Logger

	staticCap        int
	animatedCap      int
	preloadWorkers   int
	compressAnimated bool

	// staticMu guards the check-then-register sequence for the static
	// path: miss in cache, miss in pending, register flight. Without it
	// two fetches for the same key can race past each other. The cache
	// and registry keep their own locks for individual operations.
	staticMu      sync.Mutex
	static        *cache.Cache[string]
	staticPending *cache.Pending[string]

	animatedMu      sync.Mutex
	animated        *cache.Cache[animatedRecord]
	animatedPending *cache.Pending[Animated]
}

// NewService returns a Service backed by fetcher.
func NewService(fetcher Fetcher, opts ...Option) *Service {
	s := &Service{
		fetcher:     fetcher,
		staticCap:   DefaultStaticCapacity,
		animatedCap: DefaultAnimatedCapacity,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(s)
	}
	s.static = cache.New[string](s.staticCap)
	s.staticPending = cache.NewPending[string]()
	s.animated = cache.New[animatedRecord](s.animatedCap)
	s.animatedPending = cache.NewPending[Animated]()
	return s
}

// log returns the logger, falling back to a discard logger if nil.
func (s *Service) log() *slog.Logger {
	if s.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.logger
}

// Static returns the single-frame preview for d, fetching on a miss.
//
// Concurrent calls for the same key share one fetch: the first caller
// past both the cache and the pending registry initiates it, everyone
// else awaits the same flight. Only the initiator writes the cache.
// ctx only bounds this caller's wait; an abandoned wait does not stop
// the fetch, and its result still lands in the cache for future
// callers.
func (s *Service) Static(ctx context.Context, d Descriptor) (string, error) {
	key := d.Key()

	s.staticMu.Lock()
	if payload, ok := s.static.Get(key); ok {
		s.staticMu.Unlock()
		return payload, nil
	}
	if fl, ok := s.staticPending.Get(key); ok {
		s.staticMu.Unlock()
		return fl.Wait(ctx)
	}
	fl := cache.NewFlight[string]()
	s.staticPending.Add(key, fl)
	s.staticMu.Unlock()

	payload, err := s.fetchStatic(context.WithoutCancel(ctx), d)
	if err != nil {
		s.log().Debug("static preview fetch failed", "key", key, "error", err)
		fl.Settle("", err)
		return "", err
	}
	s.static.Set(key, payload)
	fl.Settle(payload, nil)
	return payload, nil
}

func (s *Service) fetchStatic(ctx context.Context, d Descriptor) (string, error) {
	if d.Path == "" {
		return s.fetcher.FetchSystemPreview(ctx, d.Name)
	}
	return s.fetcher.FetchFilePreview(ctx, d.Path)
}

// Animated returns the multi-frame preview for d, fetching on a miss.
// Coalescing works exactly as in Static, against the animated cache and
// registry. A successful fetch with zero frames is reported as
// ErrNoPreview and not cached.
func (s *Service) Animated(ctx context.Context, d Descriptor) (Animated, error) {
	key := d.Key()

	s.animatedMu.Lock()
	if rec, ok := s.animated.Get(key); ok {
		anim, err := unpackAnimated(rec)
		if err == nil {
			s.animatedMu.Unlock()
			return anim, nil
		}
		// Unreadable record (corrupt compressed frame); drop it and
		// fall through to a fresh fetch.
		s.log().Debug("dropping unreadable animated entry", "key", key, "error", err)
		s.animated.Invalidate(key)
	}
	if fl, ok := s.animatedPending.Get(key); ok {
		s.animatedMu.Unlock()
		return fl.Wait(ctx)
	}
	fl := cache.NewFlight[Animated]()
	s.animatedPending.Add(key, fl)
	s.animatedMu.Unlock()

	anim, err := s.fetcher.FetchAnimatedPreview(context.WithoutCancel(ctx), d.Path)
	if err == nil && anim.Empty() {
		err = ErrNoPreview
	}
	if err != nil {
		s.log().Debug("animated preview fetch failed", "key", key, "error", err)
		fl.Settle(Animated{}, err)
		return Animated{}, err
	}
	s.animated.Set(key, s.packAnimated(anim))
	fl.Settle(anim, nil)
	return anim, nil
}

// Invalidate drops any cached previews for key, static and animated.
// Absent keys are a no-op. In-flight fetches are unaffected; their
// results land when they settle.
func (s *Service) Invalidate(key string) {
	s.static.Invalidate(key)
	s.animated.Invalidate(key)
}

// Clear empties both caches together. Pending fetches are not
// canceled; they settle normally and repopulate the caches.
func (s *Service) Clear() {
	s.static.Clear()
	s.animated.Clear()
}

package preview

import "log/slog"

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used for fetch and preload diagnostics.
// Without it the Service logs nothing.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithStaticCapacity overrides the static cache capacity.
// Values < 1 are ignored.
func WithStaticCapacity(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.staticCap = n
		}
	}
}

// WithAnimatedCapacity overrides the animated cache capacity.
// Values < 1 are ignored.
func WithAnimatedCapacity(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.animatedCap = n
		}
	}
}

// WithPreloadConcurrency sets the number of simultaneous fetches used
// by Preload. Values < 1 use DefaultPreloadConcurrency.
func WithPreloadConcurrency(workers int) Option {
	return func(s *Service) {
		s.preloadWorkers = workers
	}
}

// WithAnimatedCompression stores animated frame payloads
// zstd-compressed. Animated entries hold every frame of a cursor, so
// this trades a little CPU on cache hits for a smaller resident set.
// Off by default.
func WithAnimatedCompression() Option {
	return func(s *Service) {
		s.compressAnimated = true
	}
}

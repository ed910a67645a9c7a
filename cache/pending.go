package cache

import (
	"context"
	"sync"
)

// Flight is a single in-progress fetch whose outcome can be awaited by
// any number of callers. A flight settles exactly once; later Settle
// calls are no-ops.
type Flight[V any] struct {
	once sync.Once
	done chan struct{}
	val  V
	err  error
}

// NewFlight returns an unsettled flight.
func NewFlight[V any]() *Flight[V] {
	return &Flight[V]{done: make(chan struct{})}
}

// Settle records the outcome and releases every waiter.
func (f *Flight[V]) Settle(val V, err error) {
	f.once.Do(func() {
		f.val = val
		f.err = err
		close(f.done)
	})
}

// Done is closed once the flight has settled.
func (f *Flight[V]) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the flight settles or ctx is canceled. A caller
// that abandons its wait does not affect the flight: the fetch still
// settles and its outcome stays available to every other waiter.
func (f *Flight[V]) Wait(ctx context.Context) (V, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero V
		return zero, ctx.Err()
	}
}

// Pending tracks in-flight fetches by cache key so concurrent callers
// for the same key can share one outcome instead of issuing duplicate
// fetches.
//
// Add attaches a completion observer that drops the mapping once the
// flight settles, success or failure, so completed flights never
// linger. Adding a key that is already pending silently replaces the
// old mapping; callers are expected to check Get before Add, since the
// registry tracks state rather than enforcing mutual exclusion.
type Pending[V any] struct {
	mu      sync.Mutex
	flights map[string]*Flight[V]
}

// NewPending returns an empty registry.
func NewPending[V any]() *Pending[V] {
	return &Pending[V]{flights: make(map[string]*Flight[V])}
}

// Has reports whether a fetch is in flight for key.
func (p *Pending[V]) Has(key string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.flights[key]
	return ok
}

// Get returns the in-flight fetch for key, if any.
func (p *Pending[V]) Get(key string) (*Flight[V], bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	f, ok := p.flights[key]
	return f, ok
}

// Add registers f under key and removes the mapping automatically once
// f settles. The removal only fires if the mapping still points at f,
// so a replacement registration is not clobbered by its predecessor's
// observer.
func (p *Pending[V]) Add(key string, f *Flight[V]) {
	p.mu.Lock()
	p.flights[key] = f
	p.mu.Unlock()

	go func() {
		<-f.Done()
		p.mu.Lock()
		if p.flights[key] == f {
			delete(p.flights, key)
		}
		p.mu.Unlock()
	}()
}

// Len returns the number of in-flight fetches.
func (p *Pending[V]) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.flights)
}

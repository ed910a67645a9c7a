package preview

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubFetcher counts calls per operation and can be gated or told to
// fail for specific resources.
type stubFetcher struct {
	mu       sync.Mutex
	system   map[string]int
	file     map[string]int
	animated map[string]int
	fail     map[string]error // keyed by name (system) or path
	failOnce map[string]error
	frames   map[string]Animated // per-path animated result override

	gate chan struct{} // when non-nil, every fetch blocks until closed
}

func newStubFetcher() *stubFetcher {
	return &stubFetcher{
		system:   make(map[string]int),
		file:     make(map[string]int),
		animated: make(map[string]int),
		fail:     make(map[string]error),
		failOnce: make(map[string]error),
		frames:   make(map[string]Animated),
	}
}

func (f *stubFetcher) wait() {
	if f.gate != nil {
		<-f.gate
	}
}

func (f *stubFetcher) outcome(id string) error {
	if err, ok := f.failOnce[id]; ok {
		delete(f.failOnce, id)
		return err
	}
	return f.fail[id]
}

func (f *stubFetcher) FetchSystemPreview(_ context.Context, name string) (string, error) {
	f.wait()
	f.mu.Lock()
	f.system[name]++
	err := f.outcome(name)
	f.mu.Unlock()
	if err != nil {
		return "", err
	}
	return "data:system/" + name, nil
}

func (f *stubFetcher) FetchFilePreview(_ context.Context, path string) (string, error) {
	f.wait()
	f.mu.Lock()
	f.file[path]++
	err := f.outcome(path)
	f.mu.Unlock()
	if err != nil {
		return "", err
	}
	return "data:file/" + path, nil
}

func (f *stubFetcher) FetchAnimatedPreview(_ context.Context, path string) (Animated, error) {
	f.wait()
	f.mu.Lock()
	f.animated[path]++
	err := f.outcome(path)
	anim, override := f.frames[path]
	f.mu.Unlock()
	if err != nil {
		return Animated{}, err
	}
	if override {
		return anim, nil
	}
	return Animated{
		Frames: []string{"data:frame0/" + path, "data:frame1/" + path},
		Delays: []time.Duration{100 * time.Millisecond, 150 * time.Millisecond},
	}, nil
}

func (f *stubFetcher) systemCalls(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.system[name]
}

func (f *stubFetcher) fileCalls(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.file[path]
}

func (f *stubFetcher) animatedCalls(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.animated[path]
}

func TestStaticFetchesOnceAndCaches(t *testing.T) {
	t.Parallel()

	fetcher := newStubFetcher()
	svc := NewService(fetcher)
	d := Descriptor{Name: "custom", Path: "/cursors/custom.cur"}

	first, err := svc.Static(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, "data:file//cursors/custom.cur", first)

	second, err := svc.Static(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, fetcher.fileCalls("/cursors/custom.cur"))
}

func TestStaticSystemDescriptorUsesSystemOperation(t *testing.T) {
	t.Parallel()

	fetcher := newStubFetcher()
	svc := NewService(fetcher)
	d := Descriptor{Name: "Normal"}

	payload, err := svc.Static(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, "data:system/Normal", payload)
	assert.Equal(t, 1, fetcher.systemCalls("Normal"))
	assert.Equal(t, 0, fetcher.fileCalls(""))

	// Invalidating the derived key forces a refetch, proving the entry
	// lived under "system:" + name.
	svc.Invalidate("system:Normal")
	_, err = svc.Static(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, 2, fetcher.systemCalls("Normal"))
}

func TestStaticCoalescesConcurrentCallers(t *testing.T) {
	t.Parallel()

	fetcher := newStubFetcher()
	fetcher.gate = make(chan struct{})
	svc := NewService(fetcher)
	d := Descriptor{Name: "busy", Path: "/cursors/busy.cur"}

	const callers = 10
	results := make(chan string, callers)
	errs := make(chan error, callers)
	for range callers {
		go func() {
			payload, err := svc.Static(context.Background(), d)
			if err != nil {
				errs <- err
				return
			}
			results <- payload
		}()
	}

	// All callers are now either fetching or awaiting the one flight.
	require.Eventually(t, func() bool {
		return svc.ExtendedStats().PendingStatic == 1
	}, time.Second, time.Millisecond)

	close(fetcher.gate)

	for range callers {
		select {
		case payload := <-results:
			assert.Equal(t, "data:file//cursors/busy.cur", payload)
		case err := <-errs:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, fetcher.fileCalls("/cursors/busy.cur"), "coalescing should deduplicate concurrent fetches")
}

func TestStaticFailureNotCachedAndRetriable(t *testing.T) {
	t.Parallel()

	fetcher := newStubFetcher()
	fetchErr := errors.New("decode failed")
	fetcher.failOnce["/cursors/bad.cur"] = fetchErr
	svc := NewService(fetcher)
	d := Descriptor{Name: "bad", Path: "/cursors/bad.cur"}

	_, err := svc.Static(context.Background(), d)
	assert.ErrorIs(t, err, fetchErr)
	assert.Equal(t, 0, svc.Stats().StaticSize, "failures are never cached")

	// No permanent failure marker: the next call fetches again.
	payload, err := svc.Static(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, "data:file//cursors/bad.cur", payload)
	assert.Equal(t, 2, fetcher.fileCalls("/cursors/bad.cur"))
}

func TestStaticFailureFansOutToAllWaiters(t *testing.T) {
	t.Parallel()

	fetcher := newStubFetcher()
	fetcher.gate = make(chan struct{})
	fetchErr := errors.New("render crashed")
	fetcher.fail["/cursors/bad.cur"] = fetchErr
	svc := NewService(fetcher)
	d := Descriptor{Path: "/cursors/bad.cur"}

	const callers = 5
	errs := make(chan error, callers)
	for range callers {
		go func() {
			_, err := svc.Static(context.Background(), d)
			errs <- err
		}()
	}
	require.Eventually(t, func() bool {
		return svc.ExtendedStats().PendingStatic == 1
	}, time.Second, time.Millisecond)
	close(fetcher.gate)

	for range callers {
		assert.ErrorIs(t, <-errs, fetchErr)
	}
	assert.Equal(t, 1, fetcher.fileCalls("/cursors/bad.cur"))
	assert.Equal(t, 0, svc.Stats().StaticSize)
}

func TestAbandonedWaiterDoesNotStopFetch(t *testing.T) {
	t.Parallel()

	fetcher := newStubFetcher()
	fetcher.gate = make(chan struct{})
	svc := NewService(fetcher)
	d := Descriptor{Path: "/cursors/slow.cur"}

	go func() {
		_, _ = svc.Static(context.Background(), d)
	}()
	require.Eventually(t, func() bool {
		return svc.ExtendedStats().PendingStatic == 1
	}, time.Second, time.Millisecond)

	// A second caller gives up while the fetch is in flight.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Static(ctx, d)
	assert.ErrorIs(t, err, context.Canceled)

	// The fetch still completes and the result is cached for everyone else.
	close(fetcher.gate)
	assert.Eventually(t, func() bool {
		return svc.Stats().StaticSize == 1
	}, time.Second, time.Millisecond)
}

func TestAnimatedFetchesOnceAndCaches(t *testing.T) {
	t.Parallel()

	fetcher := newStubFetcher()
	svc := NewService(fetcher)
	d := Descriptor{Name: "spinner", Path: "/cursors/spinner.ani"}

	first, err := svc.Animated(context.Background(), d)
	require.NoError(t, err)
	require.Len(t, first.Frames, 2)
	require.Len(t, first.Delays, 2)

	second, err := svc.Animated(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, fetcher.animatedCalls("/cursors/spinner.ani"))
}

func TestAnimatedCoalescesConcurrentCallers(t *testing.T) {
	t.Parallel()

	fetcher := newStubFetcher()
	fetcher.gate = make(chan struct{})
	svc := NewService(fetcher)
	d := Descriptor{Path: "/cursors/wait.ani"}

	const callers = 8
	results := make(chan Animated, callers)
	errs := make(chan error, callers)
	for range callers {
		go func() {
			anim, err := svc.Animated(context.Background(), d)
			if err != nil {
				errs <- err
				return
			}
			results <- anim
		}()
	}
	require.Eventually(t, func() bool {
		return svc.ExtendedStats().PendingAnimated == 1
	}, time.Second, time.Millisecond)
	close(fetcher.gate)

	for range callers {
		select {
		case anim := <-results:
			assert.Len(t, anim.Frames, 2)
		case err := <-errs:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, fetcher.animatedCalls("/cursors/wait.ani"))
}

func TestAnimatedEmptyResultIsNoPreview(t *testing.T) {
	t.Parallel()

	fetcher := newStubFetcher()
	fetcher.frames["/cursors/empty.ani"] = Animated{}
	svc := NewService(fetcher)
	d := Descriptor{Path: "/cursors/empty.ani"}

	_, err := svc.Animated(context.Background(), d)
	assert.ErrorIs(t, err, ErrNoPreview)
	assert.Equal(t, 0, svc.Stats().AnimatedSize, "empty previews are not cached")

	_, err = svc.Animated(context.Background(), d)
	assert.ErrorIs(t, err, ErrNoPreview)
	assert.Equal(t, 2, fetcher.animatedCalls("/cursors/empty.ani"))
}

func TestAnimatedCompressionRoundTrip(t *testing.T) {
	t.Parallel()

	fetcher := newStubFetcher()
	svc := NewService(fetcher, WithAnimatedCompression())
	d := Descriptor{Path: "/cursors/spinner.ani"}

	first, err := svc.Animated(context.Background(), d)
	require.NoError(t, err)

	// Second read is a cache hit that decompresses the stored frames.
	second, err := svc.Animated(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, fetcher.animatedCalls("/cursors/spinner.ani"))
}

func TestClearEmptiesBothCaches(t *testing.T) {
	t.Parallel()

	fetcher := newStubFetcher()
	svc := NewService(fetcher)

	_, err := svc.Static(context.Background(), Descriptor{Path: "/cursors/a.cur"})
	require.NoError(t, err)
	_, err = svc.Animated(context.Background(), Descriptor{Path: "/cursors/b.ani"})
	require.NoError(t, err)
	require.Equal(t, 1, svc.Stats().StaticSize)
	require.Equal(t, 1, svc.Stats().AnimatedSize)

	svc.Clear()

	stats := svc.Stats()
	assert.Equal(t, 0, stats.StaticSize)
	assert.Equal(t, 0, stats.AnimatedSize)
}

func TestInvalidateDropsBothPreviewKinds(t *testing.T) {
	t.Parallel()

	fetcher := newStubFetcher()
	svc := NewService(fetcher)
	path := "/cursors/pointer.ani"

	_, err := svc.Animated(context.Background(), Descriptor{Path: path})
	require.NoError(t, err)

	svc.Invalidate(path)
	assert.Equal(t, 0, svc.Stats().AnimatedSize)

	// Invalidating an absent key is a no-op.
	svc.Invalidate("never-cached")
}

func TestStatsReportsDefaultCapacities(t *testing.T) {
	t.Parallel()

	svc := NewService(newStubFetcher())
	stats := svc.Stats()
	assert.Equal(t, DefaultStaticCapacity, stats.StaticCapacity)
	assert.Equal(t, DefaultAnimatedCapacity, stats.AnimatedCapacity)
	assert.Equal(t, 0, stats.StaticSize)
	assert.Equal(t, 0, stats.AnimatedSize)
}

func TestStatsReportsConfiguredCapacities(t *testing.T) {
	t.Parallel()

	svc := NewService(newStubFetcher(),
		WithStaticCapacity(10),
		WithAnimatedCapacity(5),
	)
	stats := svc.Stats()
	assert.Equal(t, 10, stats.StaticCapacity)
	assert.Equal(t, 5, stats.AnimatedCapacity)
}

func TestExtendedStatsTracksPendingLifecycle(t *testing.T) {
	t.Parallel()

	fetcher := newStubFetcher()
	fetcher.gate = make(chan struct{})
	svc := NewService(fetcher)

	require.Equal(t, 0, svc.ExtendedStats().PendingStatic)

	go func() {
		_, _ = svc.Static(context.Background(), Descriptor{Path: "/cursors/slow.cur"})
	}()

	require.Eventually(t, func() bool {
		return svc.ExtendedStats().PendingStatic == 1
	}, time.Second, time.Millisecond)

	close(fetcher.gate)

	assert.Eventually(t, func() bool {
		return svc.ExtendedStats().PendingStatic == 0
	}, time.Second, time.Millisecond, "pending count returns to zero once the fetch settles")
}

func TestStaticEvictionBoundedByCapacity(t *testing.T) {
	t.Parallel()

	fetcher := newStubFetcher()
	svc := NewService(fetcher, WithStaticCapacity(3))

	paths := []string{"/c/1.cur", "/c/2.cur", "/c/3.cur", "/c/4.cur"}
	for _, p := range paths {
		_, err := svc.Static(context.Background(), Descriptor{Path: p})
		require.NoError(t, err)
	}

	assert.Equal(t, 3, svc.Stats().StaticSize)

	// The first-inserted entry was evicted; requesting it refetches.
	_, err := svc.Static(context.Background(), Descriptor{Path: "/c/1.cur"})
	require.NoError(t, err)
	assert.Equal(t, 2, fetcher.fileCalls("/c/1.cur"))
	// The rest are still cache hits.
	_, err = svc.Static(context.Background(), Descriptor{Path: "/c/3.cur"})
	require.NoError(t, err)
	assert.Equal(t, 1, fetcher.fileCalls("/c/3.cur"))
}

package catalog_test

import (
	"context"
	"github.com/myrjola/reelguess/internal/catalog"
	"github.com/myrjola/reelguess/internal/errors"
	"github.com/myrjola/reelguess/internal/models"
	"github.com/myrjola/reelguess/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"io"
	"sync"
	"sync/atomic"
	"testing"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// countingStore counts calls and blocks detail lookups until release is closed. Like a database driver, it fails
// lookups whose context is done by the time they proceed.
type countingStore struct {
	catalog.Store
	details atomic.Int32
	genres  atomic.Int32
	entered chan struct{}
	release chan struct{}
	fail    bool
}

func (s *countingStore) EnrichedDetail(ctx context.Context, id int64) (models.Detail, error) {
	s.details.Add(1)
	if s.entered != nil {
		select {
		case s.entered <- struct{}{}:
		default:
		}
	}
	if s.release != nil {
		<-s.release
	}
	if err := ctx.Err(); err != nil {
		return models.Detail{}, err
	}
	if s.fail {
		return models.Detail{}, errors.New("lookup failed")
	}
	return s.Store.EnrichedDetail(ctx, id)
}

func (s *countingStore) GenreNames(ctx context.Context) (map[int64]string, error) {
	s.genres.Add(1)
	return s.Store.GenreNames(ctx)
}

func TestCache_EnrichedDetail(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{Store: catalog.NewMemory(testhelpers.SampleMovies())}
	cache := catalog.NewCache(store, testhelpers.NewLogger(io.Discard))

	d, err := cache.EnrichedDetail(ctx, 603)
	require.NoError(t, err)
	require.True(t, d.Found)
	require.Contains(t, d.Keywords, "hacker")

	d, err = cache.EnrichedDetail(ctx, 603)
	require.NoError(t, err)
	require.True(t, d.Found)
	require.Equal(t, int32(1), store.details.Load())

	missing, err := cache.EnrichedDetail(ctx, 999999)
	require.NoError(t, err)
	require.False(t, missing.Found)
}

func TestCache_ConcurrentLookupsShareOneCall(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{
		Store:   catalog.NewMemory(testhelpers.SampleMovies()),
		release: make(chan struct{}),
	}
	cache := catalog.NewCache(store, testhelpers.NewLogger(io.Discard))

	const lookups = 8
	var (
		wg      sync.WaitGroup
		started sync.WaitGroup
	)
	started.Add(lookups)
	for range lookups {
		wg.Add(1)
		go func() {
			defer wg.Done()
			started.Done()
			d, err := cache.EnrichedDetail(ctx, 862)
			assert.NoError(t, err)
			assert.True(t, d.Found)
		}()
	}
	started.Wait()
	close(store.release)
	wg.Wait()

	// Late arrivals may miss the in-flight call but then hit the memoised record.
	require.LessOrEqual(t, store.details.Load(), int32(lookups))
	d, err := cache.EnrichedDetail(ctx, 862)
	require.NoError(t, err)
	require.True(t, d.Found)
	calls := store.details.Load()
	_, err = cache.EnrichedDetail(ctx, 862)
	require.NoError(t, err)
	require.Equal(t, calls, store.details.Load())
}

func TestCache_CancelledCallerDoesNotFailSharedLookup(t *testing.T) {
	store := &countingStore{
		Store:   catalog.NewMemory(testhelpers.SampleMovies()),
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	cache := catalog.NewCache(store, testhelpers.NewLogger(io.Discard))

	firstCtx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := cache.EnrichedDetail(firstCtx, 603)
		firstErr <- err
	}()
	<-store.entered

	type result struct {
		detail models.Detail
		err    error
	}
	second := make(chan result, 1)
	go func() {
		d, err := cache.EnrichedDetail(context.Background(), 603)
		second <- result{detail: d, err: err}
	}()

	cancel()
	require.ErrorIs(t, <-firstErr, context.Canceled)
	close(store.release)

	got := <-second
	require.NoError(t, got.err)
	require.True(t, got.detail.Found)
}

func TestCache_FailuresAreNotCached(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{Store: catalog.NewMemory(testhelpers.SampleMovies()), fail: true}
	cache := catalog.NewCache(store, testhelpers.NewLogger(io.Discard))

	_, err := cache.EnrichedDetail(ctx, 603)
	require.Error(t, err)

	store.fail = false
	d, err := cache.EnrichedDetail(ctx, 603)
	require.NoError(t, err)
	require.True(t, d.Found)
	require.Equal(t, int32(2), store.details.Load())
}

func TestCache_GenreNames(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{Store: catalog.NewMemory(testhelpers.SampleMovies())}
	cache := catalog.NewCache(store, testhelpers.NewLogger(io.Discard))

	for range 3 {
		genres, err := cache.GenreNames(ctx)
		require.NoError(t, err)
		require.Equal(t, "Science Fiction", genres[878])
	}
	require.Equal(t, int32(1), store.genres.Load())
}

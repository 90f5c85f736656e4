package catalog

import (
	"context"
	"github.com/myrjola/reelguess/internal/errors"
	"github.com/myrjola/reelguess/internal/models"
	"golang.org/x/sync/singleflight"
	"log/slog"
	"strconv"
	"sync"
)

// Cache memoises enriched records and the genre table of a Store.
//
// Concurrent lookups of the same record are collapsed into one Store call. Failed lookups are not cached. Entries
// are never invalidated. Cache is safe for concurrent use.
type Cache struct {
	store  Store
	logger *slog.Logger
	group  singleflight.Group

	mu      sync.RWMutex
	details map[int64]models.Detail
	genres  map[int64]string
}

// NewCache wraps store.
func NewCache(store Store, logger *slog.Logger) *Cache {
	return &Cache{
		store:   store,
		logger:  logger,
		details: make(map[int64]models.Detail),
	}
}

// ListCandidates passes through to the underlying Store.
func (c *Cache) ListCandidates(ctx context.Context, f Filter) ([]models.Item, error) {
	items, err := c.store.ListCandidates(ctx, f)
	if err != nil {
		return nil, errors.Wrap(err, "list candidates")
	}
	return items, nil
}

// EnrichedDetail returns the cached record of id, loading it on first use.
func (c *Cache) EnrichedDetail(ctx context.Context, id int64) (models.Detail, error) {
	c.mu.RLock()
	d, ok := c.details[id]
	c.mu.RUnlock()
	if ok {
		return d, nil
	}

	// The shared load outlives any single caller so that one cancelled request does not fail the others.
	loadCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(strconv.FormatInt(id, 10), func() (any, error) {
		loaded, err := c.store.EnrichedDetail(loadCtx, id)
		if err != nil {
			return models.Detail{}, err
		}
		c.mu.Lock()
		c.details[id] = loaded
		c.mu.Unlock()
		return loaded, nil
	})
	var res singleflight.Result
	select {
	case <-ctx.Done():
		return models.Detail{}, errors.Wrap(ctx.Err(), "wait for detail", slog.Int64("movie_id", id))
	case res = <-ch:
	}
	if res.Err != nil {
		return models.Detail{}, errors.Wrap(res.Err, "load detail", slog.Int64("movie_id", id))
	}
	if res.Shared {
		c.logger.LogAttrs(ctx, slog.LevelDebug, "detail lookup shared", slog.Int64("movie_id", id))
	}
	d, _ = res.Val.(models.Detail)
	return d, nil
}

// GenreNames returns the genre table, loading it on first use. The map must not be modified.
func (c *Cache) GenreNames(ctx context.Context) (map[int64]string, error) {
	c.mu.RLock()
	genres := c.genres
	c.mu.RUnlock()
	if genres != nil {
		return genres, nil
	}

	loadCtx := context.WithoutCancel(ctx)
	v, err, _ := c.group.Do("genres", func() (any, error) {
		loaded, err := c.store.GenreNames(loadCtx)
		if err != nil {
			return nil, err
		}
		if loaded == nil {
			loaded = map[int64]string{}
		}
		c.mu.Lock()
		c.genres = loaded
		c.mu.Unlock()
		return loaded, nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "load genre names")
	}
	genres, _ = v.(map[int64]string)
	return genres, nil
}

package github

import (
	"context"
	"sync"
	"time"

	expirable "github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/Zachkp/portfolio/internal/logging"
)

type cacheResult string

const (
	resultFresh cacheResult = "fresh"
	resultStale cacheResult = "stale"
	resultMiss  cacheResult = "miss"
)

type cached[T any] struct {
	value     T
	fetchedAt time.Time
}

// defaultRefreshBackoff spaces background refreshes of one key so an
// upstream outage does not turn every stale hit into a GitHub call.
const defaultRefreshBackoff = time.Minute

// swrCache serves entries younger than fresh directly, serves entries
// between fresh and stale while refreshing them in the background, and
// fetches synchronously otherwise. Concurrent fetches of one key share a
// single upstream call.
type swrCache[T any] struct {
	name    string
	lru     *expirable.LRU[string, cached[T]]
	group   singleflight.Group
	fresh   time.Duration
	now     func() time.Time
	metrics *Metrics

	refreshTimeout time.Duration
	refreshBackoff time.Duration
	refreshing     sync.WaitGroup

	mu          sync.Mutex
	lastAttempt map[string]time.Time
}

func newSWRCache[T any](name string, fresh, stale time.Duration, m *Metrics) *swrCache[T] {
	if stale < fresh {
		stale = fresh
	}
	return &swrCache[T]{
		name:           name,
		lru:            expirable.NewLRU[string, cached[T]](16, nil, stale),
		fresh:          fresh,
		now:            time.Now,
		metrics:        m,
		refreshTimeout: 30 * time.Second,
		refreshBackoff: defaultRefreshBackoff,
		lastAttempt:    make(map[string]time.Time),
	}
}

// get returns the value for key, its fetch time, and whether it came from
// the cache.
func (c *swrCache[T]) get(ctx context.Context, key string, fetch func(context.Context) (T, error)) (T, time.Time, bool, error) {
	if e, ok := c.lru.Get(key); ok {
		if c.now().Sub(e.fetchedAt) < c.fresh {
			c.metrics.cacheLookup(c.name, resultFresh)
			return e.value, e.fetchedAt, true, nil
		}
		c.metrics.cacheLookup(c.name, resultStale)
		if c.startRefresh(key) {
			c.refreshing.Add(1)
			go c.refresh(key, fetch)
		}
		return e.value, e.fetchedAt, true, nil
	}

	c.metrics.cacheLookup(c.name, resultMiss)
	v, err, _ := c.group.Do(key, func() (any, error) {
		return c.load(ctx, key, fetch)
	})
	if err != nil {
		var zero T
		return zero, time.Time{}, false, err
	}
	e := v.(cached[T])
	return e.value, e.fetchedAt, false, nil
}

// startRefresh reports whether a background refresh of key may begin now,
// and records the attempt if so.
func (c *swrCache[T]) startRefresh(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if last, ok := c.lastAttempt[key]; ok && now.Sub(last) < c.refreshBackoff {
		return false
	}
	c.lastAttempt[key] = now
	return true
}

func (c *swrCache[T]) refresh(key string, fetch func(context.Context) (T, error)) {
	defer c.refreshing.Done()

	ctx, cancel := context.WithTimeout(context.Background(), c.refreshTimeout)
	defer cancel()

	_, err, _ := c.group.Do(key, func() (any, error) {
		return c.load(ctx, key, fetch)
	})
	if err != nil {
		logging.Warn("Background GitHub refresh failed, keeping stale entry",
			zap.String("cache", c.name),
			zap.Error(err),
		)
	}
}

func (c *swrCache[T]) load(ctx context.Context, key string, fetch func(context.Context) (T, error)) (cached[T], error) {
	v, err := fetch(ctx)
	if err != nil {
		return cached[T]{}, err
	}
	e := cached[T]{value: v, fetchedAt: c.now()}
	c.lru.Add(key, e)
	return e, nil
}

func (c *swrCache[T]) purge() {
	c.lru.Purge()

	c.mu.Lock()
	clear(c.lastAttempt)
	c.mu.Unlock()
}

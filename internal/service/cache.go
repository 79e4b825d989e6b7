package service

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/gamma-omg/tenwords/internal/model"
)

// listCache keeps recent ListWords results. Entries are keyed by the
// generation a read started in, so a result read before an invalidation can
// only land under a generation nobody asks for anymore.
type listCache struct {
	cache *ristretto.Cache[string, []model.Word]
	ttl   time.Duration
	gen   atomic.Uint64
}

// newListCache returns a disabled cache when ttl is not positive.
func newListCache(maxKeys, maxCost int64, ttl time.Duration) *listCache {
	lc := &listCache{ttl: ttl}
	if ttl <= 0 {
		return lc
	}

	c, err := ristretto.NewCache(&ristretto.Config[string, []model.Word]{
		NumCounters: max(maxKeys, 1) * 10,
		MaxCost:     max(maxCost, 1),
		BufferItems: 64,
	})
	if err != nil {
		panic(fmt.Sprintf("failed to create list cache: %v", err))
	}

	lc.cache = c
	return lc
}

// Generation must be taken before the storage read whose result is cached.
func (lc *listCache) Generation() uint64 {
	return lc.gen.Load()
}

func (lc *listCache) key(gen uint64, q model.ListQuery) string {
	return fmt.Sprintf("%d|%s|%t|%s|%s|%s|%d", gen, q.Owner, q.All, q.Search, q.Sort, q.Order, q.Limit)
}

func (lc *listCache) Get(gen uint64, q model.ListQuery) ([]model.Word, bool) {
	if lc.cache == nil {
		return nil, false
	}
	return lc.cache.Get(lc.key(gen, q))
}

func (lc *listCache) Set(gen uint64, q model.ListQuery, words []model.Word) {
	if lc.cache == nil {
		return
	}
	lc.cache.SetWithTTL(lc.key(gen, q), words, int64(len(words))+1, lc.ttl)
}

func (lc *listCache) Invalidate() {
	lc.gen.Add(1)
	if lc.cache != nil {
		lc.cache.Clear()
	}
}

// Wait blocks until pending writes are visible to Get.
func (lc *listCache) Wait() {
	if lc.cache != nil {
		lc.cache.Wait()
	}
}

func (lc *listCache) Close() {
	if lc.cache != nil {
		lc.cache.Close()
	}
}

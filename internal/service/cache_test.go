package service

import (
	"testing"
	"time"

	"github.com/gamma-omg/tenwords/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListCache_Disabled(t *testing.T) {
	var lc *listCache
	require.NotPanics(t, func() { lc = newListCache(0, 0, 0) })

	q := model.ListQuery{Owner: "user-1"}
	lc.Set(lc.Generation(), q, []model.Word{{Key: "apple"}})
	lc.Wait()

	_, ok := lc.Get(lc.Generation(), q)
	assert.False(t, ok)

	lc.Invalidate()
	lc.Close()
}

func TestListCache_ZeroSizesAreClamped(t *testing.T) {
	var lc *listCache
	require.NotPanics(t, func() { lc = newListCache(0, 0, time.Minute) })
	defer lc.Close()

	q := model.ListQuery{Owner: "user-1"}
	lc.Set(lc.Generation(), q, nil)
	lc.Wait()

	_, ok := lc.Get(lc.Generation(), q)
	assert.True(t, ok)
}

func TestListCache_StaleGenerationIsUnreachable(t *testing.T) {
	lc := newListCache(100, 100, time.Minute)
	defer lc.Close()

	q := model.ListQuery{Owner: "user-1"}
	gen := lc.Generation()
	lc.Invalidate()

	lc.Set(gen, q, []model.Word{{Key: "stale"}})
	lc.Wait()

	_, ok := lc.Get(lc.Generation(), q)
	assert.False(t, ok)
}

package cache_test

import (
	"context"
	"testing"
	"time"

	"bookheaven/internal/cache"
	"bookheaven/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCache(t *testing.T) (*cache.ListingCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client, err := cache.NewRedisClient(context.Background(), cache.Config{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return cache.NewListingCache(client, time.Minute), mr
}

func TestListingCache_MissThenHit(t *testing.T) {
	c, _ := newCache(t)
	ctx := context.Background()
	q := models.ProductQuery{Brands: []string{"B1"}, ActiveOnly: true, Pagination: &models.Pagination{Page: 2, Limit: 10}}

	page, key, err := c.Get(ctx, q)
	require.NoError(t, err)
	assert.Nil(t, page)
	assert.Regexp(t, `^products:list:0:[0-9a-f]{32}$`, key)

	stored := &models.ProductPage{Products: []models.Product{{ID: "p11", Title: "Dune"}}, Total: 15}
	require.NoError(t, c.Set(ctx, key, stored))

	page, hitKey, err := c.Get(ctx, q)
	require.NoError(t, err)
	require.NotNil(t, page)
	assert.Equal(t, key, hitKey)
	assert.Equal(t, int64(15), page.Total)
	assert.Equal(t, "Dune", page.Products[0].Title)

	other, otherKey, err := c.Get(ctx, models.ProductQuery{ActiveOnly: true})
	require.NoError(t, err)
	assert.Nil(t, other, "different queries use different keys")
	assert.NotEqual(t, key, otherKey)
}

func TestListingCache_InvalidateOrphansPages(t *testing.T) {
	c, _ := newCache(t)
	ctx := context.Background()
	q := models.ProductQuery{}

	_, key, err := c.Get(ctx, q)
	require.NoError(t, err)
	require.NoError(t, c.Set(ctx, key, &models.ProductPage{Total: 3}))
	require.NoError(t, c.Invalidate(ctx))

	page, _, err := c.Get(ctx, q)
	require.NoError(t, err)
	assert.Nil(t, page)
}

func TestListingCache_PageLoadedBeforeInvalidateStaysOrphaned(t *testing.T) {
	c, _ := newCache(t)
	ctx := context.Background()
	q := models.ProductQuery{ActiveOnly: true}

	_, key, err := c.Get(ctx, q)
	require.NoError(t, err)

	// A product is deleted while the listing is being loaded from the store.
	require.NoError(t, c.Invalidate(ctx))
	stale := &models.ProductPage{Products: []models.Product{{ID: "p1", IsDeleted: false}}, Total: 1}
	require.NoError(t, c.Set(ctx, key, stale))

	page, newKey, err := c.Get(ctx, q)
	require.NoError(t, err)
	assert.Nil(t, page, "a page read before the invalidation must not be served")
	assert.NotEqual(t, key, newKey)
}

func TestListingCache_EntriesExpire(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()
	q := models.ProductQuery{}

	_, key, err := c.Get(ctx, q)
	require.NoError(t, err)
	require.NoError(t, c.Set(ctx, key, &models.ProductPage{Total: 1}))
	mr.FastForward(2 * time.Minute)

	page, _, err := c.Get(ctx, q)
	require.NoError(t, err)
	assert.Nil(t, page)
}

func TestNewRedisClientFailsWhenUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := cache.NewRedisClient(context.Background(), cache.Config{Addr: addr})
	assert.ErrorContains(t, err, "failed to connect to Redis")
}

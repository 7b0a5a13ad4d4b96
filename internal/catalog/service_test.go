package catalog_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ariefcatur/go-custom-goods/internal/apperr"
	"github.com/ariefcatur/go-custom-goods/internal/catalog"
	"github.com/ariefcatur/go-custom-goods/internal/redisx"
	"github.com/ariefcatur/go-custom-goods/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newService() (*catalog.Service, *testutil.CatalogStore, *testutil.MemCache) {
	store := testutil.NewCatalogStore()
	cache := testutil.NewMemCache()
	return &catalog.Service{Store: store, Cache: cache, CacheTTL: time.Minute, Log: zap.NewNop()}, store, cache
}

func price(p float64) *float64 { return &p }
func strp(s string) *string     { return &s }

func day(d int) time.Time { return time.Date(2026, 10, d, 0, 0, 0, 0, time.UTC) }

func TestListPremadeOrdering(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newService()
	a := store.SeedPremade("Mug", 12.5, day(1))
	b := store.SeedPremade("Hat", 12.5, day(3))
	c := store.SeedPremade("Tee", 30, day(3))
	d := store.SeedPremade("Pin", 2, day(2))

	byPrice, err := svc.ListPremade(ctx, catalog.SortPrice)
	require.NoError(t, err)
	assert.Equal(t, []int{d, a, b, c}, premadeIDs(byPrice))
	for i := 1; i < len(byPrice); i++ {
		assert.LessOrEqual(t, byPrice[i-1].Price, byPrice[i].Price)
	}

	newest, err := svc.ListPremade(ctx, catalog.ParseSort("whatever"))
	require.NoError(t, err)
	assert.Equal(t, []int{c, b, d, a}, premadeIDs(newest))
	for i := 1; i < len(newest); i++ {
		assert.False(t, newest[i].DateListed.After(newest[i-1].DateListed))
	}
}

func TestCreateListingValidation(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newService()

	cases := []struct {
		name  string
		draft catalog.Draft
	}{
		{"missing title", catalog.Draft{Price: price(10)}},
		{"blank title", catalog.Draft{Title: "  ", Price: price(10)}},
		{"missing price", catalog.Draft{Title: "Mug"}},
		{"negative price", catalog.Draft{Title: "Mug", Price: price(-1)}},
		{"price beyond column", catalog.Draft{Title: "Mug", Price: price(1e9)}},
		{"price just beyond column", catalog.Draft{Title: "Mug", Price: price(100000000)}},
		{"sub-cent price", catalog.Draft{Title: "Mug", Price: price(10.999)}},
		{"three decimals", catalog.Draft{Title: "Mug", Price: price(0.005)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreatePremade(ctx, tc.draft)
			assert.ErrorIs(t, err, apperr.ErrValidation)

			_, err = svc.CreateCustom(ctx, tc.draft)
			assert.ErrorIs(t, err, apperr.ErrValidation)
		})
	}
	assert.Zero(t, store.Mutations)

	_, err := svc.CreateCustom(ctx, catalog.Draft{Title: "Quilt"})
	assert.Equal(t, "Starting price is required", apperr.Message(err, ""))

	_, err = svc.CreatePremade(ctx, catalog.Draft{Title: "Mug", Price: price(10.999)})
	assert.Equal(t, "Price must have at most 2 decimal places", apperr.Message(err, ""))
}

func TestPriceBoundsAccepted(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newService()

	for _, p := range []float64{0, 0.01, 10.99, 19.9, catalog.MaxPrice} {
		l, err := svc.CreatePremade(ctx, catalog.Draft{Title: "Mug", Price: price(p)})
		require.NoError(t, err, "price %v", p)
		assert.Equal(t, p, l.Price)
	}
	assert.Equal(t, 5, store.Mutations)
}

func TestCreatePremadeStoresAsGiven(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService()

	l, err := svc.CreatePremade(ctx, catalog.Draft{
		Title:       " Mug ",
		Description: strp(""),
		ImageLink:   strp("not a url"),
		Price:       price(0),
	})
	require.NoError(t, err)
	assert.Equal(t, "Mug", l.Title)
	assert.Equal(t, "", *l.Description)
	assert.Equal(t, "not a url", *l.ImageLink)
	assert.Zero(t, l.Price)
	assert.False(t, l.DateListed.IsZero())
}

func TestUpdateMissingListing(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newService()
	id := store.SeedPremade("Mug", 10, day(1))
	before, err := store.ListPremade(ctx, catalog.SortNewest)
	require.NoError(t, err)

	_, err = svc.UpdatePremade(ctx, 999, catalog.Draft{Title: "Ghost", Price: price(1)})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	after, err := store.ListPremade(ctx, catalog.SortNewest)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Zero(t, store.Mutations)

	updated, err := svc.UpdatePremade(ctx, id, catalog.Draft{Title: "Big Mug", Price: price(15)})
	require.NoError(t, err)
	assert.Equal(t, 15.0, updated.Price)
	assert.Equal(t, day(1), updated.DateListed)

	assert.ErrorIs(t, svc.DeletePremade(ctx, 999), apperr.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteCustom(ctx, 999), apperr.ErrNotFound)
	_, err = svc.UpdateCustom(ctx, 999, catalog.Draft{Title: "x", Price: price(1)})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestPremadeCacheInvalidation(t *testing.T) {
	ctx := context.Background()
	svc, store, cache := newService()
	store.SeedPremade("Mug", 10, day(1))

	_, err := svc.ListPremade(ctx, catalog.SortPrice)
	require.NoError(t, err)
	_, err = svc.ListPremade(ctx, catalog.SortNewest)
	require.NoError(t, err)
	_, err = svc.ListCustom(ctx)
	require.NoError(t, err)
	assert.True(t, cache.HasCurrent(redisx.KeyPremadeGroup, redisx.PremadeKey("price")))
	assert.True(t, cache.HasCurrent(redisx.KeyPremadeGroup, redisx.PremadeKey("newest")))

	_, err = svc.CreatePremade(ctx, catalog.Draft{Title: "Hat", Price: price(5)})
	require.NoError(t, err)

	assert.False(t, cache.HasCurrent(redisx.KeyPremadeGroup, redisx.PremadeKey("price")))
	assert.False(t, cache.HasCurrent(redisx.KeyPremadeGroup, redisx.PremadeKey("newest")))
	assert.True(t, cache.HasCurrent(redisx.KeyCustom, redisx.KeyCustom), "custom cache is independent")

	list, err := svc.ListPremade(ctx, catalog.SortPrice)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, "Hat", list[0].Title)
}

// slowPremadeStore pauses the first armed ListPremade after its read until
// release is closed.
type slowPremadeStore struct {
	*testutil.CatalogStore
	armed   atomic.Bool
	read    chan struct{}
	release chan struct{}
}

func (s *slowPremadeStore) ListPremade(ctx context.Context, by catalog.Sort) ([]catalog.PremadeListing, error) {
	out, err := s.CatalogStore.ListPremade(ctx, by)
	if s.armed.CompareAndSwap(true, false) {
		close(s.read)
		<-s.release
	}
	return out, err
}

func TestPremadeReadRacingWriteIsNotCached(t *testing.T) {
	ctx := context.Background()
	svc, inner, _ := newService()
	store := &slowPremadeStore{CatalogStore: inner, read: make(chan struct{}), release: make(chan struct{})}
	svc.Store = store
	inner.SeedPremade("Mug", 10, day(1))

	store.armed.Store(true)
	done := make(chan error, 1)
	go func() {
		_, err := svc.ListPremade(ctx, catalog.SortPrice)
		done <- err
	}()
	<-store.read

	_, err := svc.CreatePremade(ctx, catalog.Draft{Title: "Hat", Price: price(5)})
	require.NoError(t, err)
	close(store.release)
	require.NoError(t, <-done)

	list, err := svc.ListPremade(ctx, catalog.SortPrice)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Hat", list[0].Title)
}

func TestCustomListingLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, _, cache := newService()

	l, err := svc.CreateCustom(ctx, catalog.Draft{Title: "Portrait", Price: price(80)})
	require.NoError(t, err)
	assert.Equal(t, 80.0, l.StartingPrice)

	list, err := svc.ListCustom(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, cache.HasCurrent(redisx.KeyCustom, redisx.KeyCustom))

	_, err = svc.UpdateCustom(ctx, l.ID, catalog.Draft{Title: "Portrait", Price: price(95)})
	require.NoError(t, err)
	assert.False(t, cache.HasCurrent(redisx.KeyCustom, redisx.KeyCustom))

	require.NoError(t, svc.DeleteCustom(ctx, l.ID))
	list, err = svc.ListCustom(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestListStoreFailure(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newService()
	store.Err = errors.New("timeout")

	_, err := svc.ListPremade(ctx, catalog.SortNewest)
	assert.ErrorIs(t, err, apperr.ErrStore)
	assert.Equal(t, "Error fetching listings", apperr.Message(err, ""))
}

func premadeIDs(ls []catalog.PremadeListing) []int {
	out := make([]int, 0, len(ls))
	for _, l := range ls {
		out = append(out, l.ID)
	}
	return out
}

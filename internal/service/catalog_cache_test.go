package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/campaign-shop/internal/repository"
	"github.com/d60-Lab/campaign-shop/internal/testutil"
)

func TestCachedCatalog(t *testing.T) {
	db := testutil.NewDB(t)
	shop := testutil.SeedShop(t, db)
	mr, rdb := newMiniredis(t)

	repos := repository.NewRepositories(db)
	cc := NewCachedCatalog(NewCatalogService(repos.Campaigns, repos.Addresses), repos.Campaigns, rdb, time.Minute, time.Hour)
	ctx := context.Background()

	t.Run("campaign read through", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			c, err := cc.GetBySlug(ctx, shop.Campaign.Slug)
			require.NoError(t, err)
			assert.Equal(t, shop.Campaign.ID, c.ID)
			assert.True(t, c.HasProduct(shop.Products[0].ID))
			assert.Equal(t, "499.9", c.Price.String())
		}
		assert.EqualValues(t, 1, cc.Loads().Campaigns)
		assert.True(t, mr.Exists(campaignKey(shop.Campaign.Slug)))

		mr.FastForward(2 * time.Minute)
		_, err := cc.GetBySlug(ctx, shop.Campaign.Slug)
		require.NoError(t, err)
		assert.EqualValues(t, 2, cc.Loads().Campaigns)
	})

	t.Run("not found is not cached", func(t *testing.T) {
		_, err := cc.GetBySlug(ctx, "yok")
		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.False(t, mr.Exists(campaignKey("yok")))
	})

	t.Run("slug change invalidates", func(t *testing.T) {
		_, err := cc.GetBySlug(ctx, shop.Campaign.Slug)
		require.NoError(t, err)

		require.NoError(t, cc.ChangeSlug(ctx, shop.Campaign.ID, "yeni-slug"))
		assert.False(t, mr.Exists(campaignKey(shop.Campaign.Slug)))

		_, err = cc.GetBySlug(ctx, shop.Campaign.Slug)
		var moved *MovedError
		require.True(t, errors.As(err, &moved))
		assert.Equal(t, "yeni-slug", moved.Slug)
	})

	t.Run("address lists", func(t *testing.T) {
		before := cc.Loads().Addresses
		for i := 0; i < 2; i++ {
			ds, err := cc.Districts(ctx, shop.City.ID)
			require.NoError(t, err)
			require.Len(t, ds, 1)
			assert.Equal(t, "Kadıköy", ds[0].Name)
		}
		assert.Equal(t, before+1, cc.Loads().Addresses)
	})

	t.Run("redis down falls back to database", func(t *testing.T) {
		mr.SetError("ERR cache unavailable")
		defer mr.SetError("")
		cities, err := cc.Cities(ctx)
		require.NoError(t, err)
		assert.Len(t, cities, 1)
	})
}

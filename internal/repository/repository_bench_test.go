package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/d60-Lab/campaign-shop/internal/model"
	"github.com/d60-Lab/campaign-shop/internal/repository"
	"github.com/d60-Lab/campaign-shop/internal/testutil"
)

// 条件扣减是下单热点：库存充足时每次一条 UPDATE
func BenchmarkDecrementStock(b *testing.B) {
	db := testutil.NewDB(b)
	shop := testutil.SeedShop(b, db, testutil.WithStock(1<<30))
	repo := repository.NewProductRepository(db)
	ctx := context.Background()
	id := shop.Products[0].ID

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := repo.DecrementStock(ctx, id, 1); err != nil {
			b.Fatalf("decrement: %v", err)
		}
	}
}

func BenchmarkCatalogReads(b *testing.B) {
	db := testutil.NewDB(b)
	shop := testutil.SeedShop(b, db, testutil.WithProducts(12))
	campaigns := repository.NewCampaignRepository(db)
	orders := repository.NewOrderRepository(db)
	ctx := context.Background()

	base := time.Now().Add(-24 * time.Hour)
	for i := 0; i < 500; i++ {
		o := newOrder(shop, fmt.Sprintf("%010d", 2000000000+i), model.OrderStatusNew, base.Add(time.Duration(i)*time.Minute))
		if err := orders.Create(ctx, o); err != nil {
			b.Fatalf("seed order: %v", err)
		}
	}

	b.ResetTimer()
	b.Run("CampaignGetByID", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = campaigns.GetByID(ctx, shop.Campaign.ID)
		}
	})

	b.Run("OrdersListRecent", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = orders.ListRecent(ctx, model.VisibleOrderStatuses, 20)
		}
	})
}

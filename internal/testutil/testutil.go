// Package testutil builds in-memory sqlite databases and storefront fixtures for package tests.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/d60-Lab/campaign-shop/config"
	"github.com/d60-Lab/campaign-shop/internal/model"
	"github.com/d60-Lab/campaign-shop/internal/repository"
	"github.com/d60-Lab/campaign-shop/pkg/database"
)

// NewDB opens a private in-memory sqlite database with the full schema.
// A single connection keeps every statement on the same in-memory database.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	db, err := database.Open(config.DatabaseConfig{
		Driver:       "sqlite",
		DSN:          fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", name),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		LogLevel:     "silent",
	})
	require.NoError(t, err)
	require.NoError(t, repository.InitSchema(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// Shop is a minimal storefront: one active campaign with whitelisted products,
// one foreign product sold only under another campaign, a size and an address chain.
type Shop struct {
	Campaign      *model.Campaign
	Products      []*model.Product
	OtherCampaign *model.Campaign
	Foreign       *model.Product
	Size          *model.SizeOption
	City          *model.City
	District      *model.District
	Neighborhood  *model.Neighborhood
}

type ShopOption func(*shopConfig)

type shopConfig struct {
	minQuantity int
	stock       int
	products    int
	inactive    bool
}

func WithMinQuantity(n int) ShopOption { return func(c *shopConfig) { c.minQuantity = n } }

func WithStock(n int) ShopOption { return func(c *shopConfig) { c.stock = n } }

func WithProducts(n int) ShopOption { return func(c *shopConfig) { c.products = n } }

func Inactive() ShopOption { return func(c *shopConfig) { c.inactive = true } }

// SeedShop writes a Shop into db.
func SeedShop(t testing.TB, db *gorm.DB, opts ...ShopOption) *Shop {
	t.Helper()
	cfg := shopConfig{minQuantity: 1, stock: 10, products: 2}
	for _, opt := range opts {
		opt(&cfg)
	}
	ctx := context.Background()

	size := &model.SizeOption{Name: "M", Slug: "m", Description: "Orta beden", IsActive: true}
	require.NoError(t, db.Create(size).Error)

	campaign := &model.Campaign{
		Title:                   "3 Al 1 Öde Tişört",
		Slug:                    "uc-al-bir-ode",
		Price:                   decimal.RequireFromString("499.90"),
		MinQuantity:             cfg.minQuantity,
		ShippingPrice:           decimal.NewFromInt(100),
		ShippingPriceDiscounted: decimal.NewFromInt(0),
		CODPrice:                decimal.NewFromInt(100),
		CODPriceDiscounted:      decimal.NewFromInt(85),
		IsActive:                !cfg.inactive,
		BannerImage:             "/media/campaigns/banner.jpg",
	}
	require.NoError(t, db.Create(campaign).Error)
	if cfg.inactive {
		// bool false 会被 gorm 视为零值，显式更新
		require.NoError(t, db.Model(campaign).Update("is_active", false).Error)
	}
	require.NoError(t, db.Model(campaign).Association("AvailableSizes").Append(size))

	other := &model.Campaign{
		Title: "Premium Ceket", Slug: "premium-ceket", Price: decimal.NewFromInt(2500), MinQuantity: 1,
		ShippingPrice: decimal.NewFromInt(100), CODPrice: decimal.NewFromInt(100), CODPriceDiscounted: decimal.NewFromInt(85),
		IsActive: true,
	}
	require.NoError(t, db.Create(other).Error)

	campaigns := repository.NewCampaignRepository(db)
	products := make([]*model.Product, 0, cfg.products)
	for i := 0; i < cfg.products; i++ {
		p := &model.Product{
			Name:        fmt.Sprintf("Basic Tişört %d", i+1),
			SKU:         fmt.Sprintf("TS-%03d", i+1),
			Description: "Pamuklu tişört",
			IsActive:    true,
			StockQty:    cfg.stock,
			Images:      []model.ProductImage{{URL: fmt.Sprintf("/media/products/ts-%d.jpg", i+1)}},
		}
		require.NoError(t, db.Create(p).Error)
		require.NoError(t, campaigns.AddProduct(ctx, campaign.ID, p.ID, i))
		products = append(products, p)
	}

	foreign := &model.Product{Name: "Deri Ceket", SKU: "JK-001", IsActive: true, StockQty: cfg.stock}
	require.NoError(t, db.Create(foreign).Error)
	require.NoError(t, campaigns.AddProduct(ctx, other.ID, foreign.ID, 0))

	city := &model.City{Name: "İstanbul", Slug: "istanbul", IsActive: true}
	require.NoError(t, db.Create(city).Error)
	district := &model.District{CityID: city.ID, Name: "Kadıköy", Slug: "kadikoy", IsActive: true}
	require.NoError(t, db.Create(district).Error)
	neighborhood := &model.Neighborhood{DistrictID: district.ID, Name: "Caferağa", Slug: "caferaga", IsActive: true}
	require.NoError(t, db.Create(neighborhood).Error)

	return &Shop{
		Campaign:      campaign,
		Products:      products,
		OtherCampaign: other,
		Foreign:       foreign,
		Size:          size,
		City:          city,
		District:      district,
		Neighborhood:  neighborhood,
	}
}

// StockOf reads the current stock of a product.
func StockOf(t testing.TB, db *gorm.DB, productID uint) int {
	t.Helper()
	var p model.Product
	require.NoError(t, db.Select("stock_qty").First(&p, productID).Error)
	return p.StockQty
}

// CountRows counts rows of a model.
func CountRows(t testing.TB, db *gorm.DB, m interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(m).Count(&n).Error)
	return n
}

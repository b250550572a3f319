package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/d60-Lab/campaign-shop/config"
	"github.com/d60-Lab/campaign-shop/internal/model"
	"github.com/d60-Lab/campaign-shop/internal/repository"
	"github.com/d60-Lab/campaign-shop/internal/service"
	"github.com/d60-Lab/campaign-shop/pkg/auth"
	"github.com/d60-Lab/campaign-shop/pkg/database"
	"github.com/d60-Lab/campaign-shop/pkg/logger"
)

// 演示数据：两个活动、一组尺码、一条完整的地址链和一个后台管理员
var (
	adminUser = flag.String("admin-user", "admin", "后台管理员用户名")
	adminPass = flag.String("admin-pass", "", "后台管理员密码（为空则不创建）")
	stock     = flag.Int("stock", 50, "每个商品的初始库存")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.Log.Level, "console"); err != nil {
		return err
	}
	defer logger.Sync()

	db, err := database.InitDB(cfg)
	if err != nil {
		return err
	}
	if err := repository.InitSchema(db); err != nil {
		return err
	}

	ctx := context.Background()
	repos := repository.NewRepositories(db)

	var campaigns int64
	if err := db.Model(&model.Campaign{}).Count(&campaigns).Error; err != nil {
		return err
	}
	if campaigns > 0 {
		logger.Info("catalog already seeded, skipping", zap.Int64("campaigns", campaigns))
	} else if err := db.Transaction(func(tx *gorm.DB) error {
		return seedCatalog(ctx, tx, *stock)
	}); err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}

	// 首次读取会写入默认设置
	if _, err := repos.Settings.Get(ctx); err != nil {
		return fmt.Errorf("seed settings: %w", err)
	}

	if *adminPass != "" {
		admins := service.NewAdminService(repos.Admins, auth.NewTokenManager(cfg.JWT.Secret, 0))
		u, err := admins.CreateUser(ctx, *adminUser, *adminPass, []string{
			model.PermManageOrders,
			model.PermManageReturns,
			model.PermManageSettings,
			model.PermManageCampaigns,
			model.PermViewDashboard,
		})
		if err != nil {
			return fmt.Errorf("create admin: %w", err)
		}
		logger.Info("admin user created", zap.String("username", u.Username))
	}
	return nil
}

func seedCatalog(ctx context.Context, tx *gorm.DB, stockQty int) error {
	sizes := []*model.SizeOption{
		{Name: "S", Slug: "s", Description: "Küçük beden", IsActive: true},
		{Name: "M", Slug: "m", Description: "Orta beden", IsActive: true},
		{Name: "L", Slug: "l", Description: "Büyük beden", IsActive: true},
		{Name: "XL", Slug: "xl", Description: "Ekstra büyük beden", IsActive: true},
	}
	if err := tx.Create(&sizes).Error; err != nil {
		return err
	}

	campaigns := repository.NewCampaignRepository(tx)
	seeds := []struct {
		campaign *model.Campaign
		base     string
		products []string
	}{
		{
			campaign: &model.Campaign{
				Title: "3 Al 1 Öde Basic Tişört", Slug: "3-al-1-ode-basic-tisort",
				Description: "Üç tişört tek fiyat, kapıda ödeme.",
				Price:       decimal.RequireFromString("499.90"), MinQuantity: 3,
				ShippingPrice: decimal.NewFromInt(100), ShippingPriceDiscounted: decimal.Zero,
				CODPrice: decimal.NewFromInt(100), CODPriceDiscounted: decimal.NewFromInt(85),
				IsActive: true,
			},
			base:     "Basic Tişört",
			products: []string{"Beyaz", "Siyah", "Lacivert", "Gri"},
		},
		{
			campaign: &model.Campaign{
				Title: "2'li Eşofman Takımı", Slug: "2li-esofman-takimi",
				Price: decimal.RequireFromString("899.90"), MinQuantity: 2,
				ShippingPrice: decimal.NewFromInt(100), ShippingPriceDiscounted: decimal.NewFromInt(50),
				CODPrice: decimal.NewFromInt(100), CODPriceDiscounted: decimal.NewFromInt(85),
				IsActive: true,
			},
			base:     "Eşofman Takımı",
			products: []string{"Antrasit", "Haki"},
		},
	}

	for i, s := range seeds {
		if err := campaigns.Create(ctx, s.campaign); err != nil {
			return err
		}
		if err := tx.Model(s.campaign).Association("AvailableSizes").Append(sizes); err != nil {
			return err
		}
		for j, color := range s.products {
			p := &model.Product{
				Name:        s.base + " " + color,
				SKU:         fmt.Sprintf("C%d-%03d", i+1, j+1),
				Description: color,
				IsActive:    true,
				StockQty:    stockQty,
				Images:      []model.ProductImage{{URL: fmt.Sprintf("/media/products/c%d-%d.jpg", i+1, j+1)}},
			}
			if err := tx.Create(p).Error; err != nil {
				return err
			}
			if err := campaigns.AddProduct(ctx, s.campaign.ID, p.ID, j); err != nil {
				return err
			}
		}
		logger.Info("campaign seeded", zap.String("slug", s.campaign.Slug), zap.Int("products", len(s.products)))
	}

	city := &model.City{Name: "İstanbul", Slug: "istanbul", IsActive: true}
	if err := tx.Create(city).Error; err != nil {
		return err
	}
	for _, d := range []struct {
		name, slug    string
		neighborhoods [][2]string
	}{
		{"Kadıköy", "kadikoy", [][2]string{{"Caferağa", "caferaga"}, {"Moda", "moda"}, {"Fenerbahçe", "fenerbahce"}}},
		{"Beşiktaş", "besiktas", [][2]string{{"Levent", "levent"}, {"Etiler", "etiler"}}},
	} {
		district := &model.District{CityID: city.ID, Name: d.name, Slug: d.slug, IsActive: true}
		if err := tx.Create(district).Error; err != nil {
			return err
		}
		for _, n := range d.neighborhoods {
			nb := &model.Neighborhood{DistrictID: district.ID, Name: n[0], Slug: n[1], IsActive: true}
			if err := tx.Create(nb).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

package repository

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/d60-Lab/campaign-shop/internal/model"
)

// Models 需要迁移的全部模型，按依赖顺序
func Models() []interface{} {
	return []interface{}{
		&model.SizeOption{},
		&model.Product{},
		&model.ProductImage{},
		&model.Campaign{},
		&model.CampaignProduct{},
		&model.CampaignRedirect{},
		&model.City{},
		&model.District{},
		&model.Neighborhood{},
		&model.Order{},
		&model.OrderItem{},
		&model.OrderEvent{},
		&model.ReturnRequest{},
		&model.SiteSettings{},
		&model.AdminUser{},
	}
}

// InitSchema 初始化数据库表结构
func InitSchema(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/d60-Lab/campaign-shop/internal/model"
)

// CampaignRepository 活动仓储；活动-商品白名单在此只读
type CampaignRepository interface {
	Create(ctx context.Context, c *model.Campaign) error
	AddProduct(ctx context.Context, campaignID, productID uint, sortOrder int) error
	// GetByID 预加载白名单商品（按 sort_order）与尺码
	GetByID(ctx context.Context, id uint) (*model.Campaign, error)
	GetActiveBySlug(ctx context.Context, slug string) (*model.Campaign, error)
	FirstActive(ctx context.Context) (*model.Campaign, error)
	ListActive(ctx context.Context) ([]*model.Campaign, error)
	// FindRedirect 查找启用中的旧 slug 跳转
	FindRedirect(ctx context.Context, oldSlug string) (*model.CampaignRedirect, error)
	// ChangeSlug 修改 slug 并记录旧 slug 跳转
	ChangeSlug(ctx context.Context, id uint, newSlug string) error
}

type campaignRepository struct{ db *gorm.DB }

func NewCampaignRepository(db *gorm.DB) CampaignRepository { return &campaignRepository{db: db} }

func (r *campaignRepository) Create(ctx context.Context, c *model.Campaign) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *campaignRepository) AddProduct(ctx context.Context, campaignID, productID uint, sortOrder int) error {
	cp := &model.CampaignProduct{CampaignID: campaignID, ProductID: productID, SortOrder: sortOrder}
	return r.db.WithContext(ctx).Omit("Product").Create(cp).Error
}

func (r *campaignRepository) withDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Products", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order, id") }).
		Preload("Products.Product.Images", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order") }).
		Preload("AvailableSizes", "is_active = ?", true)
}

func (r *campaignRepository) GetByID(ctx context.Context, id uint) (*model.Campaign, error) {
	var c model.Campaign
	if err := r.withDetails(r.db.WithContext(ctx)).First(&c, id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *campaignRepository) GetActiveBySlug(ctx context.Context, slug string) (*model.Campaign, error) {
	var c model.Campaign
	err := r.withDetails(r.db.WithContext(ctx)).
		Where("slug = ? AND is_active = ?", slug, true).
		First(&c).Error
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *campaignRepository) FirstActive(ctx context.Context) (*model.Campaign, error) {
	var c model.Campaign
	if err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("id").First(&c).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *campaignRepository) ListActive(ctx context.Context) ([]*model.Campaign, error) {
	var res []*model.Campaign
	err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("id").Find(&res).Error
	return res, err
}

func (r *campaignRepository) FindRedirect(ctx context.Context, oldSlug string) (*model.CampaignRedirect, error) {
	var rd model.CampaignRedirect
	err := r.db.WithContext(ctx).
		Preload("Campaign").
		Where("old_slug = ? AND is_active = ?", oldSlug, true).
		First(&rd).Error
	if err != nil {
		return nil, translate(err)
	}
	return &rd, nil
}

// ChangeSlug 在一个事务内：删除指向新 slug 的旧跳转（防止环），更新 slug，记录旧 slug
func (r *campaignRepository) ChangeSlug(ctx context.Context, id uint, newSlug string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c model.Campaign
		if err := tx.First(&c, id).Error; err != nil {
			return translate(err)
		}
		if c.Slug == newSlug {
			return nil
		}
		oldSlug, oldTitle := c.Slug, c.Title

		if err := tx.Where("old_slug = ? AND campaign_id = ?", newSlug, id).
			Delete(&model.CampaignRedirect{}).Error; err != nil {
			return fmt.Errorf("delete looping redirect: %w", err)
		}
		if err := tx.Model(&c).Update("slug", newSlug).Error; err != nil {
			return fmt.Errorf("update slug: %w", err)
		}
		// 旧 slug 若已指向其他活动，改为指向当前活动
		if err := tx.Where("old_slug = ?", oldSlug).Delete(&model.CampaignRedirect{}).Error; err != nil {
			return err
		}
		rd := &model.CampaignRedirect{
			OldSlug:    oldSlug,
			CampaignID: id,
			OldTitle:   oldTitle,
			IsActive:   true,
		}
		return tx.Omit("Campaign").Create(rd).Error
	})
}

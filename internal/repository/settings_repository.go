package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/campaign-shop/internal/model"
)

type SettingsRepository interface {
	// Get 读取单例设置，不存在时写入默认值
	Get(ctx context.Context) (*model.SiteSettings, error)
	Save(ctx context.Context, s *model.SiteSettings) error
}

type settingsRepository struct{ db *gorm.DB }

func NewSettingsRepository(db *gorm.DB) SettingsRepository { return &settingsRepository{db: db} }

func (r *settingsRepository) Get(ctx context.Context) (*model.SiteSettings, error) {
	def := model.DefaultSiteSettings()
	// 幂等：并发首次读取不会重复插入
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&def).Error; err != nil {
		return nil, err
	}
	var s model.SiteSettings
	if err := r.db.WithContext(ctx).First(&s, model.SiteSettingsID).Error; err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (r *settingsRepository) Save(ctx context.Context, s *model.SiteSettings) error {
	s.ID = model.SiteSettingsID
	return r.db.WithContext(ctx).Save(s).Error
}

package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/campaign-shop/internal/model"
)

type SizeRepository interface {
	WithTx(tx *gorm.DB) SizeRepository
	Create(ctx context.Context, s *model.SizeOption) error
	// GetBySlugs 返回 slug -> 尺码
	GetBySlugs(ctx context.Context, slugs []string) (map[string]*model.SizeOption, error)
}

type sizeRepository struct{ db *gorm.DB }

func NewSizeRepository(db *gorm.DB) SizeRepository { return &sizeRepository{db: db} }

func (r *sizeRepository) WithTx(tx *gorm.DB) SizeRepository { return &sizeRepository{db: tx} }

func (r *sizeRepository) Create(ctx context.Context, s *model.SizeOption) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *sizeRepository) GetBySlugs(ctx context.Context, slugs []string) (map[string]*model.SizeOption, error) {
	res := make(map[string]*model.SizeOption, len(slugs))
	if len(slugs) == 0 {
		return res, nil
	}
	var list []*model.SizeOption
	if err := r.db.WithContext(ctx).Where("slug IN ?", slugs).Find(&list).Error; err != nil {
		return nil, err
	}
	for _, s := range list {
		res[s.Slug] = s
	}
	return res, nil
}

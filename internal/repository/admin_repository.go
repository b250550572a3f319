package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/campaign-shop/internal/model"
)

type AdminRepository interface {
	Create(ctx context.Context, u *model.AdminUser) error
	GetByUsername(ctx context.Context, username string) (*model.AdminUser, error)
}

type adminRepository struct{ db *gorm.DB }

func NewAdminRepository(db *gorm.DB) AdminRepository { return &adminRepository{db: db} }

func (r *adminRepository) Create(ctx context.Context, u *model.AdminUser) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *adminRepository) GetByUsername(ctx context.Context, username string) (*model.AdminUser, error) {
	var u model.AdminUser
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/campaign-shop/internal/model"
)

type ReturnRepository interface {
	WithTx(tx *gorm.DB) ReturnRepository
	Create(ctx context.Context, rr *model.ReturnRequest) error
	GetByID(ctx context.Context, id uint) (*model.ReturnRequest, error)
	ListByOrder(ctx context.Context, orderID uint) ([]*model.ReturnRequest, error)
	// UpdateStatus 仅当当前状态仍为 from 时更新，否则返回 ErrStale
	UpdateStatus(ctx context.Context, id uint, from, to model.ReturnStatus, note string) error
}

type returnRepository struct{ db *gorm.DB }

func NewReturnRepository(db *gorm.DB) ReturnRepository { return &returnRepository{db: db} }

func (r *returnRepository) WithTx(tx *gorm.DB) ReturnRepository { return &returnRepository{db: tx} }

func (r *returnRepository) Create(ctx context.Context, rr *model.ReturnRequest) error {
	return r.db.WithContext(ctx).Omit("Order").Create(rr).Error
}

func (r *returnRepository) GetByID(ctx context.Context, id uint) (*model.ReturnRequest, error) {
	var rr model.ReturnRequest
	if err := r.db.WithContext(ctx).First(&rr, id).Error; err != nil {
		return nil, translate(err)
	}
	return &rr, nil
}

func (r *returnRepository) ListByOrder(ctx context.Context, orderID uint) ([]*model.ReturnRequest, error) {
	var res []*model.ReturnRequest
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("created_at DESC").Find(&res).Error
	return res, err
}

func (r *returnRepository) UpdateStatus(ctx context.Context, id uint, from, to model.ReturnStatus, note string) error {
	updates := map[string]interface{}{"status": to}
	if note != "" {
		updates["admin_note"] = note
	}
	res := r.db.WithContext(ctx).Model(&model.ReturnRequest{}).Where("id = ? AND status = ?", id, from).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStale
	}
	return nil
}

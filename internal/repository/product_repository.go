package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/campaign-shop/internal/model"
)

type ProductRepository interface {
	WithTx(tx *gorm.DB) ProductRepository
	Create(ctx context.Context, p *model.Product) error
	GetByID(ctx context.Context, id uint) (*model.Product, error)
	// GetByIDs 返回 id -> 商品，缺失的 id 不出现在结果中
	GetByIDs(ctx context.Context, ids []uint) (map[uint]*model.Product, error)
	// DecrementStock 条件扣减库存；库存不足时返回 false
	DecrementStock(ctx context.Context, id uint, qty int) (bool, error)
}

type productRepository struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepository{db: db} }

func (r *productRepository) WithTx(tx *gorm.DB) ProductRepository { return &productRepository{db: tx} }

func (r *productRepository) Create(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productRepository) GetByID(ctx context.Context, id uint) (*model.Product, error) {
	var p model.Product
	if err := r.db.WithContext(ctx).Preload("Images").First(&p, id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *productRepository) GetByIDs(ctx context.Context, ids []uint) (map[uint]*model.Product, error) {
	res := make(map[uint]*model.Product, len(ids))
	if len(ids) == 0 {
		return res, nil
	}
	var list []*model.Product
	err := r.db.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order") }).
		Where("id IN ?", ids).
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	for _, p := range list {
		res[p.ID] = p
	}
	return res, nil
}

// DecrementStock 单条 UPDATE ... WHERE stock_qty >= ?，避免先读后写的竞争
func (r *productRepository) DecrementStock(ctx context.Context, id uint, qty int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ? AND stock_qty >= ?", id, qty).
		UpdateColumn("stock_qty", gorm.Expr("stock_qty - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

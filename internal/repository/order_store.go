package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/campaign-shop/internal/model"
)

// GormOrderRepository 基于 gorm 的订单仓储实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) WithTx(tx *gorm.DB) OrderRepository {
	return &GormOrderRepository{db: tx}
}

// Create 创建订单
func (r *GormOrderRepository) Create(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Omit("Items", "Campaign", "CityRef", "DistrictRef", "NeighborhoodRef").Create(order).Error
}

// CreateItems 写入订单行
func (r *GormOrderRepository) CreateItems(ctx context.Context, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit("Product").Create(&items).Error
}

// GetByID 根据订单ID查询订单
func (r *GormOrderRepository) GetByID(ctx context.Context, id uint) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id") }).
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

// GetByTrackingNumber 根据追踪号查询订单
func (r *GormOrderRepository) GetByTrackingNumber(ctx context.Context, trackingNumber string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id") }).
		Where("tracking_number = ?", trackingNumber).
		First(&order).Error
	if err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

func (r *GormOrderRepository) TrackingNumberExists(ctx context.Context, trackingNumber string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("tracking_number = ?", trackingNumber).
		Count(&count).Error
	return count > 0, err
}

// ListRecent 最近订单，预加载城市与订单行商品图片
func (r *GormOrderRepository) ListRecent(ctx context.Context, statuses []model.OrderStatus, limit int) ([]*model.Order, error) {
	var orders []*model.Order
	err := r.db.WithContext(ctx).
		Preload("CityRef").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id") }).
		Preload("Items.Product.Images").
		Where("status IN ?", statuses).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateStatus 更新订单状态
func (r *GormOrderRepository) UpdateStatus(ctx context.Context, id uint, status model.OrderStatus) error {
	res := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateCargo 更新物流字段
func (r *GormOrderRepository) UpdateCargo(ctx context.Context, id uint, firm, trackingCode, barcode string) error {
	res := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"cargo_firm":    firm,
			"tracking_code": trackingCode,
			"cargo_barcode": barcode,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Count 统计订单数量
func (r *GormOrderRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Order{}).Count(&count).Error
	return count, err
}

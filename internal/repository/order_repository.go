package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/campaign-shop/internal/model"
)

// OrderRepository 订单仓储接口
type OrderRepository interface {
	// WithTx 返回绑定到事务的仓储
	WithTx(tx *gorm.DB) OrderRepository

	// Create 创建订单（不含订单行）
	Create(ctx context.Context, order *model.Order) error

	// CreateItems 批量写入订单行
	CreateItems(ctx context.Context, items []model.OrderItem) error

	// GetByID 根据订单ID查询订单（含订单行）
	GetByID(ctx context.Context, id uint) (*model.Order, error)

	// GetByTrackingNumber 根据追踪号查询订单
	GetByTrackingNumber(ctx context.Context, trackingNumber string) (*model.Order, error)

	// TrackingNumberExists 追踪号是否已被占用
	TrackingNumberExists(ctx context.Context, trackingNumber string) (bool, error)

	// ListRecent 按创建时间倒序查询指定状态的最近订单
	ListRecent(ctx context.Context, statuses []model.OrderStatus, limit int) ([]*model.Order, error)

	// UpdateStatus 更新订单状态
	UpdateStatus(ctx context.Context, id uint, status model.OrderStatus) error

	// UpdateCargo 更新物流信息
	UpdateCargo(ctx context.Context, id uint, firm, trackingCode, barcode string) error

	// Count 统计订单数量
	Count(ctx context.Context) (int64, error)
}

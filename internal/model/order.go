package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus 订单状态
type OrderStatus string

const (
	OrderStatusNew        OrderStatus = "new"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusReturn     OrderStatus = "return"
)

// Valid 是否属于固定状态集合
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusNew, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled, OrderStatusReturn:
		return true
	}
	return false
}

// VisibleOrderStatuses 可用于前台展示（social proof）的状态
var VisibleOrderStatuses = []OrderStatus{
	OrderStatusNew, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered,
}

// Order 订单模型；价格字段为下单时快照，之后不再重算
type Order struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	CampaignID *uint     `json:"campaign_id" gorm:"index"`
	Campaign   *Campaign `json:"-" gorm:"constraint:OnDelete:SET NULL"`

	CampaignTitle    string `json:"campaign_title" gorm:"type:varchar(255)"`
	CampaignSlug     string `json:"campaign_slug" gorm:"type:varchar(255)"`
	CampaignImageURL string `json:"campaign_image_url" gorm:"type:varchar(500)"`

	Status OrderStatus `json:"status" gorm:"type:varchar(20);index;not null"`

	CustomerName string `json:"customer_name" gorm:"type:varchar(255);not null"`
	Phone        string `json:"phone" gorm:"type:varchar(20);not null"`

	CityID          *uint         `json:"city_id"`
	CityRef         *City         `json:"-" gorm:"foreignKey:CityID"`
	DistrictID      *uint         `json:"district_id"`
	DistrictRef     *District     `json:"-" gorm:"foreignKey:DistrictID"`
	NeighborhoodID  *uint         `json:"neighborhood_id"`
	NeighborhoodRef *Neighborhood `json:"-" gorm:"foreignKey:NeighborhoodID"`

	// 文本地址字段保留用于兼容
	City        string `json:"city" gorm:"type:varchar(100)"`
	District    string `json:"district" gorm:"type:varchar(100)"`
	FullAddress string `json:"full_address" gorm:"type:text;not null"`

	CampaignPrice decimal.Decimal `json:"campaign_price" gorm:"type:decimal(10,2);not null"`
	CargoPrice    decimal.Decimal `json:"cargo_price" gorm:"type:decimal(10,2);not null"`
	CODFee        decimal.Decimal `json:"cod_fee" gorm:"column:cod_fee;type:decimal(10,2);not null"`
	TotalAmount   decimal.Decimal `json:"total_amount" gorm:"type:decimal(10,2);not null"`

	TrackingNumber string `json:"tracking_number" gorm:"type:varchar(10);uniqueIndex;not null"`

	CargoFirm    string `json:"cargo_firm" gorm:"type:varchar(100)"`
	TrackingCode string `json:"tracking_code" gorm:"type:varchar(100)"`
	CargoBarcode string `json:"cargo_barcode" gorm:"type:varchar(100)"`

	Items []OrderItem `json:"items,omitempty" gorm:"constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderItem 订单行；商品与尺码信息均为快照
type OrderItem struct {
	ID        uint     `json:"id" gorm:"primaryKey"`
	OrderID   uint     `json:"order_id" gorm:"index;not null"`
	ProductID uint     `json:"product_id" gorm:"index;not null"`
	Product   *Product `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Quantity  int      `json:"quantity" gorm:"not null"`

	SelectedSize            string `json:"selected_size" gorm:"type:varchar(50)"`
	SelectedSizeName        string `json:"selected_size_name" gorm:"type:varchar(50)"`
	SelectedSizeDescription string `json:"selected_size_description" gorm:"type:varchar(255)"`

	ProductName        string `json:"product_name" gorm:"type:varchar(255)"`
	ProductSKU         string `json:"product_sku" gorm:"column:product_sku;type:varchar(100)"`
	ProductDescription string `json:"product_description" gorm:"type:text"`
	ProductImageURL    string `json:"product_image_url" gorm:"type:varchar(500)"`
}

func (OrderItem) TableName() string { return "order_items" }

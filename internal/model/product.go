package model

import "time"

// Product 商品；下单链路只修改 StockQty
type Product struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Name        string         `json:"name" gorm:"type:varchar(255);not null"`
	SKU         string         `json:"sku" gorm:"column:sku;type:varchar(100);uniqueIndex;not null"`
	Description string         `json:"description" gorm:"type:text"`
	IsActive    bool           `json:"is_active" gorm:"not null"`
	StockQty    int            `json:"stock_qty" gorm:"not null;default:0"`
	Images      []ProductImage `json:"images,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func (Product) TableName() string { return "products" }

// PrimaryImageURL 排序最靠前的图片
func (p *Product) PrimaryImageURL() string {
	if len(p.Images) == 0 {
		return ""
	}
	best := p.Images[0]
	for _, img := range p.Images[1:] {
		if img.SortOrder < best.SortOrder {
			best = img
		}
	}
	return best.URL
}

type ProductImage struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	ProductID uint   `json:"product_id" gorm:"index;not null"`
	URL       string `json:"url" gorm:"type:varchar(500);not null"`
	SortOrder int    `json:"sort_order" gorm:"not null;default:0"`
}

func (ProductImage) TableName() string { return "product_images" }

package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SizeOption 尺码选项，仅用于展示，不承载价格和库存
type SizeOption struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"type:varchar(50);not null"`
	Slug        string `json:"slug" gorm:"type:varchar(50);uniqueIndex;not null"`
	Description string `json:"description" gorm:"type:varchar(255)"`
	IsActive    bool   `json:"is_active" gorm:"not null"`
}

func (SizeOption) TableName() string { return "size_options" }

// Campaign 活动（套装价 + 最低购买数量）
type Campaign struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	Title       string          `json:"title" gorm:"type:varchar(255);not null"`
	Slug        string          `json:"slug" gorm:"type:varchar(255);uniqueIndex;not null"`
	Description string          `json:"description" gorm:"type:text"`
	BannerImage string          `json:"banner_image" gorm:"type:varchar(500)"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	MinQuantity int             `json:"min_quantity" gorm:"not null"`

	ShippingPrice           decimal.Decimal `json:"shipping_price" gorm:"type:decimal(10,2);not null"`
	ShippingPriceDiscounted decimal.Decimal `json:"shipping_price_discounted" gorm:"type:decimal(10,2);not null"`
	CODPrice                decimal.Decimal `json:"cod_price" gorm:"column:cod_price;type:decimal(10,2);not null"`
	CODPriceDiscounted      decimal.Decimal `json:"cod_price_discounted" gorm:"column:cod_price_discounted;type:decimal(10,2);not null"`

	IsActive bool `json:"is_active" gorm:"index;not null"`

	AvailableSizes []SizeOption       `json:"available_sizes,omitempty" gorm:"many2many:campaign_sizes"`
	Products       []CampaignProduct  `json:"products,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	Redirects      []CampaignRedirect `json:"-" gorm:"constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Campaign) TableName() string { return "campaigns" }

// UnitPrice 套装价按最低数量均摊
func (c *Campaign) UnitPrice() decimal.Decimal {
	if c.MinQuantity > 0 {
		return c.Price.Div(decimal.NewFromInt(int64(c.MinQuantity)))
	}
	return decimal.Zero
}

// CheckoutTotal 结算时收取折扣档运费与货到付款费
func (c *Campaign) CheckoutTotal() decimal.Decimal {
	return c.Price.Add(c.ShippingPriceDiscounted).Add(c.CODPriceDiscounted)
}

// HasProduct 活动白名单中是否包含该商品
func (c *Campaign) HasProduct(productID uint) bool {
	for _, cp := range c.Products {
		if cp.ProductID == productID {
			return true
		}
	}
	return false
}

// CampaignProduct 活动与商品的关联（白名单），带排序
type CampaignProduct struct {
	ID         uint     `json:"id" gorm:"primaryKey"`
	CampaignID uint     `json:"campaign_id" gorm:"index:idx_campaign_product,unique;not null"`
	ProductID  uint     `json:"product_id" gorm:"index:idx_campaign_product,unique;not null"`
	Product    *Product `json:"product,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	SortOrder  int      `json:"sort_order" gorm:"not null;default:0"`
}

func (CampaignProduct) TableName() string { return "campaign_products" }

// CampaignRedirect 旧 slug 到活动的永久跳转
type CampaignRedirect struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	OldSlug    string    `json:"old_slug" gorm:"type:varchar(255);uniqueIndex;not null"`
	CampaignID uint      `json:"campaign_id" gorm:"index;not null"`
	Campaign   *Campaign `json:"-"`
	OldTitle   string    `json:"old_title" gorm:"type:varchar(255)"`
	IsActive   bool      `json:"is_active" gorm:"not null"`
	IsManual   bool      `json:"is_manual" gorm:"not null"`
	CreatedAt  time.Time `json:"created_at" gorm:"index"`
}

func (CampaignRedirect) TableName() string { return "campaign_redirects" }

package model

import "time"

// SiteSettingsID 站点设置为单例
const SiteSettingsID = 1

type SiteSettings struct {
	ID             uint   `json:"-" gorm:"primaryKey"`
	StoreName      string `json:"store_name" gorm:"type:varchar(255)"`
	StoreSlogan    string `json:"store_slogan" gorm:"type:varchar(255)"`
	WhatsappNumber string `json:"whatsapp_number" gorm:"type:varchar(20)"`

	RateLimitCount  int `json:"rate_limit_count" gorm:"not null"`
	RateLimitPeriod int `json:"rate_limit_period" gorm:"not null"` // 秒

	UpdatedAt time.Time `json:"updated_at"`
}

func (SiteSettings) TableName() string { return "site_settings" }

// DefaultSiteSettings 首次读取时写入的默认值
func DefaultSiteSettings() SiteSettings {
	return SiteSettings{
		ID:              SiteSettingsID,
		StoreName:       "Gumbuz Butik",
		RateLimitCount:  5,
		RateLimitPeriod: 600,
	}
}

// RateLimitWindow 限流窗口
func (s *SiteSettings) RateLimitWindow() time.Duration {
	return time.Duration(s.RateLimitPeriod) * time.Second
}

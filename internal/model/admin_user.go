package model

import (
	"strings"
	"time"
)

const (
	PermManageOrders    = "manage_orders"
	PermManageReturns   = "manage_returns"
	PermManageSettings  = "manage_settings"
	PermManageCampaigns = "manage_campaigns"
	PermViewDashboard   = "view_dashboard"
)

// AdminUser 后台用户，权限以逗号分隔存储
type AdminUser struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"type:varchar(150);uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"type:varchar(100);not null"`
	IsActive     bool      `json:"is_active" gorm:"not null"`
	Permissions  string    `json:"-" gorm:"type:varchar(255)"`
	CreatedAt    time.Time `json:"created_at"`
}

func (AdminUser) TableName() string { return "admin_users" }

func (u *AdminUser) PermissionList() []string {
	if u.Permissions == "" {
		return nil
	}
	parts := strings.Split(u.Permissions, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

package repository

import "gorm.io/gorm"

// Repositories 聚合所有仓储，便于在服务层注入
type Repositories struct {
	Campaigns CampaignRepository
	Products  ProductRepository
	Sizes     SizeRepository
	Orders    OrderRepository
	Outbox    OutboxRepository
	Returns   ReturnRepository
	Addresses AddressRepository
	Settings  SettingsRepository
	Admins    AdminRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Campaigns: NewCampaignRepository(db),
		Products:  NewProductRepository(db),
		Sizes:     NewSizeRepository(db),
		Orders:    NewOrderRepository(db),
		Outbox:    NewOutboxRepository(db),
		Returns:   NewReturnRepository(db),
		Addresses: NewAddressRepository(db),
		Settings:  NewSettingsRepository(db),
		Admins:    NewAdminRepository(db),
	}
}

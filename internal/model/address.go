package model

import "time"

// City 省（il）
type City struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(100);uniqueIndex;not null"`
	Slug      string    `json:"slug" gorm:"type:varchar(100);uniqueIndex;not null"`
	IsActive  bool      `json:"is_active" gorm:"not null"`
	CreatedAt time.Time `json:"-"`
}

func (City) TableName() string { return "cities" }

// District 区（ilçe）
type District struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CityID    uint      `json:"city_id" gorm:"uniqueIndex:idx_district_city_name;not null"`
	Name      string    `json:"name" gorm:"type:varchar(100);uniqueIndex:idx_district_city_name;not null"`
	Slug      string    `json:"slug" gorm:"type:varchar(100);not null"`
	IsActive  bool      `json:"is_active" gorm:"not null"`
	CreatedAt time.Time `json:"-"`
}

func (District) TableName() string { return "districts" }

// Neighborhood 街区（mahalle）
type Neighborhood struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	DistrictID uint      `json:"district_id" gorm:"uniqueIndex:idx_neighborhood_district_name;not null"`
	Name       string    `json:"name" gorm:"type:varchar(100);uniqueIndex:idx_neighborhood_district_name;not null"`
	Slug       string    `json:"slug" gorm:"type:varchar(100);not null"`
	IsActive   bool      `json:"is_active" gorm:"not null"`
	CreatedAt  time.Time `json:"-"`
}

func (Neighborhood) TableName() string { return "neighborhoods" }

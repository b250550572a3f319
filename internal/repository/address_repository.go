package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/campaign-shop/internal/model"
)

// AddressRepository 省/区/街区查询（外部数据，只读）
type AddressRepository interface {
	GetCity(ctx context.Context, id uint) (*model.City, error)
	GetDistrict(ctx context.Context, id uint) (*model.District, error)
	GetNeighborhood(ctx context.Context, id uint) (*model.Neighborhood, error)
	ListCities(ctx context.Context) ([]*model.City, error)
	ListDistricts(ctx context.Context, cityID uint) ([]*model.District, error)
	ListNeighborhoods(ctx context.Context, districtID uint) ([]*model.Neighborhood, error)
}

type addressRepository struct{ db *gorm.DB }

func NewAddressRepository(db *gorm.DB) AddressRepository { return &addressRepository{db: db} }

func (r *addressRepository) GetCity(ctx context.Context, id uint) (*model.City, error) {
	var c model.City
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *addressRepository) GetDistrict(ctx context.Context, id uint) (*model.District, error) {
	var d model.District
	if err := r.db.WithContext(ctx).First(&d, id).Error; err != nil {
		return nil, translate(err)
	}
	return &d, nil
}

func (r *addressRepository) GetNeighborhood(ctx context.Context, id uint) (*model.Neighborhood, error) {
	var n model.Neighborhood
	if err := r.db.WithContext(ctx).First(&n, id).Error; err != nil {
		return nil, translate(err)
	}
	return &n, nil
}

func (r *addressRepository) ListCities(ctx context.Context) ([]*model.City, error) {
	var res []*model.City
	err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("name").Find(&res).Error
	return res, err
}

func (r *addressRepository) ListDistricts(ctx context.Context, cityID uint) ([]*model.District, error) {
	var res []*model.District
	err := r.db.WithContext(ctx).Where("city_id = ? AND is_active = ?", cityID, true).Order("name").Find(&res).Error
	return res, err
}

func (r *addressRepository) ListNeighborhoods(ctx context.Context, districtID uint) ([]*model.Neighborhood, error) {
	var res []*model.Neighborhood
	err := r.db.WithContext(ctx).Where("district_id = ? AND is_active = ?", districtID, true).Order("name").Find(&res).Error
	return res, err
}

package service

import (
	"context"
	"errors"
	"time"

	"github.com/d60-Lab/campaign-shop/internal/model"
	"github.com/d60-Lab/campaign-shop/internal/repository"
)

var ErrInvalidSettings = errors.New("invalid settings")

// SettingsUpdate 仅更新非空字段
type SettingsUpdate struct {
	StoreName       *string `json:"store_name"`
	StoreSlogan     *string `json:"store_slogan"`
	WhatsappNumber  *string `json:"whatsapp_number"`
	RateLimitCount  *int    `json:"rate_limit_count" binding:"omitempty,min=0"`
	RateLimitPeriod *int    `json:"rate_limit_period" binding:"omitempty,min=1"`
}

type SettingsService interface {
	RateLimitSettings
	Get(ctx context.Context) (*model.SiteSettings, error)
	Update(ctx context.Context, upd SettingsUpdate) (*model.SiteSettings, error)
}

type settingsService struct {
	repo repository.SettingsRepository
}

func NewSettingsService(repo repository.SettingsRepository) SettingsService {
	return &settingsService{repo: repo}
}

func (s *settingsService) Get(ctx context.Context) (*model.SiteSettings, error) {
	return s.repo.Get(ctx)
}

// RateLimit 每次都读库，不做缓存
func (s *settingsService) RateLimit(ctx context.Context) (int, time.Duration, error) {
	st, err := s.repo.Get(ctx)
	if err != nil {
		return 0, 0, err
	}
	return st.RateLimitCount, st.RateLimitWindow(), nil
}

func (s *settingsService) Update(ctx context.Context, upd SettingsUpdate) (*model.SiteSettings, error) {
	st, err := s.repo.Get(ctx)
	if err != nil {
		return nil, err
	}
	if upd.StoreName != nil {
		st.StoreName = *upd.StoreName
	}
	if upd.StoreSlogan != nil {
		st.StoreSlogan = *upd.StoreSlogan
	}
	if upd.WhatsappNumber != nil {
		st.WhatsappNumber = *upd.WhatsappNumber
	}
	if upd.RateLimitCount != nil {
		if *upd.RateLimitCount < 0 {
			return nil, ErrInvalidSettings
		}
		st.RateLimitCount = *upd.RateLimitCount
	}
	if upd.RateLimitPeriod != nil {
		if *upd.RateLimitPeriod < 1 {
			return nil, ErrInvalidSettings
		}
		st.RateLimitPeriod = *upd.RateLimitPeriod
	}
	if err := s.repo.Save(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/campaign-shop/internal/model"
	"github.com/d60-Lab/campaign-shop/internal/repository"
	"github.com/d60-Lab/campaign-shop/pkg/logger"
)

// CachedCatalog 在 CatalogService 前加一层 Redis 读穿缓存。
// 活动页 TTL 较短（库存展示允许短暂滞后），地址数据几乎不变，TTL 较长。
// 下单链路直接读库，不经过这里。
type CachedCatalog struct {
	CatalogService
	campaigns   repository.CampaignRepository
	cache       redis.Cmdable
	campaignTTL time.Duration
	addressTTL  time.Duration

	campaignLoads atomic.Int64
	addressLoads  atomic.Int64
}

func NewCachedCatalog(inner CatalogService, campaigns repository.CampaignRepository, cache redis.Cmdable, campaignTTL, addressTTL time.Duration) *CachedCatalog {
	return &CachedCatalog{
		CatalogService: inner,
		campaigns:      campaigns,
		cache:          cache,
		campaignTTL:    campaignTTL,
		addressTTL:     addressTTL,
	}
}

func campaignKey(slug string) string { return "catalog:campaign:" + slug }

// GetBySlug 只缓存命中的活动；跳转与未找到每次回源
func (s *CachedCatalog) GetBySlug(ctx context.Context, slug string) (*model.Campaign, error) {
	key := campaignKey(slug)
	var c model.Campaign
	if s.get(ctx, key, &c) {
		return &c, nil
	}
	s.campaignLoads.Add(1)
	out, err := s.CatalogService.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	s.set(ctx, key, out, s.campaignTTL)
	return out, nil
}

// ChangeSlug 修改后清掉新旧两个 slug 的缓存
func (s *CachedCatalog) ChangeSlug(ctx context.Context, campaignID uint, newSlug string) error {
	c, err := s.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		return err
	}
	if err := s.CatalogService.ChangeSlug(ctx, campaignID, newSlug); err != nil {
		return err
	}
	keys := []string{campaignKey(c.Slug), campaignKey(newSlug)}
	if err := s.cache.Del(ctx, keys...).Err(); err != nil {
		logger.Warn("catalog cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
	return nil
}

func (s *CachedCatalog) Cities(ctx context.Context) ([]*model.City, error) {
	return cachedList(ctx, s, "catalog:cities", s.CatalogService.Cities)
}

func (s *CachedCatalog) Districts(ctx context.Context, cityID uint) ([]*model.District, error) {
	return cachedList(ctx, s, fmt.Sprintf("catalog:districts:%d", cityID), func(ctx context.Context) ([]*model.District, error) {
		return s.CatalogService.Districts(ctx, cityID)
	})
}

func (s *CachedCatalog) Neighborhoods(ctx context.Context, districtID uint) ([]*model.Neighborhood, error) {
	return cachedList(ctx, s, fmt.Sprintf("catalog:neighborhoods:%d", districtID), func(ctx context.Context) ([]*model.Neighborhood, error) {
		return s.CatalogService.Neighborhoods(ctx, districtID)
	})
}

func cachedList[T any](ctx context.Context, s *CachedCatalog, key string, load func(context.Context) ([]*T, error)) ([]*T, error) {
	var out []*T
	if s.get(ctx, key, &out) {
		return out, nil
	}
	s.addressLoads.Add(1)
	out, err := load(ctx)
	if err != nil {
		return nil, err
	}
	s.set(ctx, key, out, s.addressTTL)
	return out, nil
}

// get 缓存不可用或数据损坏时视为未命中
func (s *CachedCatalog) get(ctx context.Context, key string, dst interface{}) bool {
	data, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn("catalog cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	return json.Unmarshal(data, dst) == nil
}

func (s *CachedCatalog) set(ctx context.Context, key string, v interface{}, ttl time.Duration) {
	payload, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, payload, ttl).Err(); err != nil {
		logger.Warn("catalog cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// CatalogLoads 统计回源次数
type CatalogLoads struct {
	Campaigns int64
	Addresses int64
}

func (s *CachedCatalog) Loads() CatalogLoads {
	return CatalogLoads{Campaigns: s.campaignLoads.Load(), Addresses: s.addressLoads.Load()}
}

package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/d60-Lab/campaign-shop/internal/model"
	"github.com/d60-Lab/campaign-shop/internal/repository"
)

var ErrInvalidSlug = errors.New("invalid slug")

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// MovedError 旧 slug 命中跳转，Slug 为活动当前的 slug
type MovedError struct {
	Slug string
}

func (e *MovedError) Error() string { return "campaign moved to " + e.Slug }

type CatalogService interface {
	// GetBySlug 返回活动；旧 slug 返回 *MovedError，未找到返回 repository.ErrNotFound
	GetBySlug(ctx context.Context, slug string) (*model.Campaign, error)
	FirstActive(ctx context.Context) (*model.Campaign, error)
	ChangeSlug(ctx context.Context, campaignID uint, newSlug string) error

	Cities(ctx context.Context) ([]*model.City, error)
	Districts(ctx context.Context, cityID uint) ([]*model.District, error)
	Neighborhoods(ctx context.Context, districtID uint) ([]*model.Neighborhood, error)
}

type catalogService struct {
	campaigns repository.CampaignRepository
	addresses repository.AddressRepository
}

func NewCatalogService(campaigns repository.CampaignRepository, addresses repository.AddressRepository) CatalogService {
	return &catalogService{campaigns: campaigns, addresses: addresses}
}

func (s *catalogService) GetBySlug(ctx context.Context, slug string) (*model.Campaign, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	c, err := s.campaigns.GetActiveBySlug(ctx, slug)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	rd, err := s.campaigns.FindRedirect(ctx, slug)
	if err != nil {
		return nil, err
	}
	if rd.Campaign == nil || !rd.Campaign.IsActive || rd.Campaign.Slug == slug {
		return nil, repository.ErrNotFound
	}
	return nil, &MovedError{Slug: rd.Campaign.Slug}
}

func (s *catalogService) FirstActive(ctx context.Context) (*model.Campaign, error) {
	return s.campaigns.FirstActive(ctx)
}

func (s *catalogService) ChangeSlug(ctx context.Context, campaignID uint, newSlug string) error {
	newSlug = strings.ToLower(strings.TrimSpace(newSlug))
	if !slugPattern.MatchString(newSlug) {
		return ErrInvalidSlug
	}
	return s.campaigns.ChangeSlug(ctx, campaignID, newSlug)
}

func (s *catalogService) Cities(ctx context.Context) ([]*model.City, error) {
	return s.addresses.ListCities(ctx)
}

func (s *catalogService) Districts(ctx context.Context, cityID uint) ([]*model.District, error) {
	return s.addresses.ListDistricts(ctx, cityID)
}

func (s *catalogService) Neighborhoods(ctx context.Context, districtID uint) ([]*model.Neighborhood, error) {
	return s.addresses.ListNeighborhoods(ctx, districtID)
}

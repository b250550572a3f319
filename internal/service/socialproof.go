package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/d60-Lab/campaign-shop/internal/model"
	"github.com/d60-Lab/campaign-shop/internal/repository"
)

// ErrNoRecentOrders 没有可展示的订单
var ErrNoRecentOrders = errors.New("no recent orders")

const defaultSampleWindow = 20

// DisplayRecord 前台"最近购买"弹窗所需的脱敏信息
type DisplayRecord struct {
	Name               string `json:"name"`
	Location           string `json:"location"`
	ProductName        string `json:"product_name"`
	ProductDescription string `json:"product_description"`
	ProductImage       string `json:"product_image"`
	TimeAgo            string `json:"time_ago"`
}

// SocialProof samples a recent order for display. It only reads.
type SocialProof struct {
	orders repository.OrderRepository
	window int
	now    func() time.Time

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewSocialProof(orders repository.OrderRepository, window int) *SocialProof {
	if window <= 0 {
		window = defaultSampleWindow
	}
	return &SocialProof{
		orders: orders,
		window: window,
		now:    time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Sample picks uniformly among the most recent visible orders.
func (s *SocialProof) Sample(ctx context.Context) (*DisplayRecord, error) {
	orders, err := s.orders.ListRecent(ctx, model.VisibleOrderStatuses, s.window)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, ErrNoRecentOrders
	}

	s.mu.Lock()
	o := orders[s.rnd.Intn(len(orders))]
	s.mu.Unlock()

	rec := &DisplayRecord{
		Name:     MaskName(o.CustomerName),
		Location: orderLocation(o),
		TimeAgo:  RelativeTime(s.now().Sub(o.CreatedAt)),
	}
	if len(o.Items) > 0 {
		it := o.Items[0]
		rec.ProductName = it.ProductName
		rec.ProductDescription = it.ProductDescription
		rec.ProductImage = it.ProductImageURL
		if it.Product != nil {
			if rec.ProductName == "" {
				rec.ProductName = it.Product.Name
			}
			if rec.ProductImage == "" {
				rec.ProductImage = it.Product.PrimaryImageURL()
			}
		}
	}
	return rec, nil
}

// MaskName keeps the first name and up to two letters of the surname: "Ayşe Kaya" -> "Ayşe Ka***".
// A single-word name keeps only its first letter.
func MaskName(fullName string) string {
	parts := strings.Fields(fullName)
	switch len(parts) {
	case 0:
		return "***"
	case 1:
		return string([]rune(parts[0])[:1]) + "***"
	}
	last := []rune(parts[len(parts)-1])
	if len(last) > 2 {
		last = last[:2]
	}
	return parts[0] + " " + string(last) + "***"
}

func orderLocation(o *model.Order) string {
	if o.CityRef != nil && o.CityRef.Name != "" {
		return o.CityRef.Name
	}
	if city := strings.TrimSpace(o.City); city != "" {
		return city
	}
	return "Türkiye"
}

// RelativeTime 土耳其语相对时间
func RelativeTime(d time.Duration) string {
	switch {
	case d < 5*time.Minute:
		return "şimdi"
	case d < time.Hour:
		return fmt.Sprintf("%d dakika önce", int(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("%d saat önce", int(d/time.Hour))
	default:
		return fmt.Sprintf("%d gün önce", int(d/(24*time.Hour)))
	}
}

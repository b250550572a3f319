package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/d60-Lab/campaign-shop/internal/model"
	"github.com/d60-Lab/campaign-shop/internal/repository"
	"github.com/d60-Lab/campaign-shop/pkg/logger"
	"github.com/d60-Lab/campaign-shop/pkg/sentry"
)

var tracer = otel.Tracer("github.com/d60-Lab/campaign-shop/internal/service")

// PlaceOrderInput 下单请求；ProductIDs 与 Sizes 按下标一一对应
type PlaceOrderInput struct {
	CampaignID     uint
	FirstName      string
	LastName       string
	Phone          string
	CityID         uint
	DistrictID     uint
	NeighborhoodID uint
	AddressDetail  string
	ProductIDs     []uint
	Sizes          []string
	ClientIP       string
}

// LineItems 每个提交的商品对应一件
func (in PlaceOrderInput) LineItems() []LineItem {
	items := make([]LineItem, len(in.ProductIDs))
	for i, id := range in.ProductIDs {
		items[i] = LineItem{ProductID: id}
		if i < len(in.Sizes) {
			items[i].Size = strings.TrimSpace(in.Sizes[i])
		}
	}
	return items
}

// OrderService 下单与订单查询
type OrderService interface {
	PlaceOrder(ctx context.Context, in PlaceOrderInput) (*model.Order, error)
	GetOrder(ctx context.Context, id uint) (*model.Order, error)
	TrackOrder(ctx context.Context, trackingNumber, phone string) (*model.Order, error)
}

type orderService struct {
	db       *gorm.DB
	repos    *repository.Repositories
	limiter  Limiter
	tracking *TrackingNumbers
}

func NewOrderService(db *gorm.DB, repos *repository.Repositories, limiter Limiter) OrderService {
	return &orderService{
		db:       db,
		repos:    repos,
		limiter:  limiter,
		tracking: NewTrackingNumbers(repos.Orders.TrackingNumberExists),
	}
}

type resolvedAddress struct {
	city         *model.City
	district     *model.District
	neighborhood *model.Neighborhood
}

// PlaceOrder runs rate limiting, validation and the all-or-nothing persistence of the order,
// its items, the stock decrements and the outbox event.
func (s *orderService) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*model.Order, error) {
	ctx, span := tracer.Start(ctx, "OrderService.PlaceOrder", trace.WithAttributes(
		attribute.Int64("campaign.id", int64(in.CampaignID)),
		attribute.Int("order.items", len(in.ProductIDs)),
	))
	defer span.End()

	order, err := s.placeOrder(ctx, in)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int64("order.id", int64(order.ID)))
	return order, nil
}

func (s *orderService) placeOrder(ctx context.Context, in PlaceOrderInput) (*model.Order, error) {
	allowed, err := s.limiter.Allow(ctx, in.ClientIP)
	if err != nil {
		return nil, s.internal(ctx, "rate_limit", err, in)
	}
	if !allowed {
		logger.Warn("order attempt rate limited", zap.String("ip", in.ClientIP), zap.Uint("campaign_id", in.CampaignID))
		return nil, newOrderError(ErrTooManyRequests, s.rateLimitMessage(ctx))
	}

	campaign, err := s.repos.Campaigns.GetByID(ctx, in.CampaignID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, newOrderError(ErrNotFound, msgCampaignNotFound)
	}
	if err != nil {
		return nil, s.internal(ctx, "load_campaign", err, in)
	}

	items := in.LineItems()
	if err := ValidateSelection(campaign, items); err != nil {
		if errors.Is(err, ErrSecurityViolation) {
			logger.Warn("suspicious order: product outside campaign whitelist",
				zap.String("ip", in.ClientIP),
				zap.Uint("campaign_id", campaign.ID),
				zap.Uints("submitted", in.ProductIDs),
				zap.Uints("foreign", ForeignProducts(campaign, items)),
			)
		}
		return nil, err
	}

	addr, err := s.resolveAddress(ctx, in)
	if err != nil {
		return nil, err
	}

	quantities := aggregate(items)
	if err := s.precheckStock(ctx, in, quantities); err != nil {
		return nil, err
	}

	for attempt := 0; ; attempt++ {
		trackingNumber, err := s.tracking.Next(ctx)
		if err != nil {
			return nil, s.internal(ctx, "tracking_number", err, in)
		}
		order := buildOrder(campaign, in, addr, trackingNumber)
		err = s.persist(ctx, order, items, quantities)
		if err == nil {
			logger.Info("order placed",
				zap.Uint("order_id", order.ID),
				zap.String("tracking_number", order.TrackingNumber),
				zap.Uint("campaign_id", campaign.ID),
				zap.Int("items", len(order.Items)),
				zap.String("total", order.TotalAmount.StringFixed(2)),
			)
			return order, nil
		}

		var oe *OrderError
		if errors.As(err, &oe) {
			return nil, oe
		}
		// 追踪号在检查后被并发占用，由唯一索引拦截，换号重试
		if errors.Is(err, gorm.ErrDuplicatedKey) && attempt < 2 {
			continue
		}
		return nil, s.internal(ctx, "persist", err, in)
	}
}

// persist 在单个事务中写入订单、订单行、库存扣减与外发事件；任何错误都整体回滚
func (s *orderService) persist(ctx context.Context, order *model.Order, items []LineItem, quantities map[uint]int) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orders := s.repos.Orders.WithTx(tx)
		products := s.repos.Products.WithTx(tx)

		if err := orders.Create(ctx, order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		ids := make([]uint, 0, len(quantities))
		for id := range quantities {
			ids = append(ids, id)
		}
		// 固定加锁顺序，降低并发事务死锁概率
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

		byID, err := products.GetByIDs(ctx, ids)
		if err != nil {
			return fmt.Errorf("load products: %w", err)
		}
		sizes, err := s.repos.Sizes.WithTx(tx).GetBySlugs(ctx, sizeSlugs(items))
		if err != nil {
			return fmt.Errorf("load sizes: %w", err)
		}

		orderItems := make([]model.OrderItem, 0, len(items))
		for _, it := range items {
			p, ok := byID[it.ProductID]
			if !ok {
				return &OrderError{Kind: ErrNotFound, Message: msgProductNotFound, ProductID: it.ProductID}
			}
			oi := model.OrderItem{
				OrderID:            order.ID,
				ProductID:          p.ID,
				Quantity:           1,
				SelectedSize:       it.Size,
				ProductName:        p.Name,
				ProductSKU:         p.SKU,
				ProductDescription: p.Description,
				ProductImageURL:    p.PrimaryImageURL(),
			}
			if size, ok := sizes[it.Size]; ok {
				oi.SelectedSizeName = size.Name
				oi.SelectedSizeDescription = size.Description
			}
			orderItems = append(orderItems, oi)
		}
		if err := orders.CreateItems(ctx, orderItems); err != nil {
			return fmt.Errorf("create order items: %w", err)
		}

		for _, id := range ids {
			ok, err := products.DecrementStock(ctx, id, quantities[id])
			if err != nil {
				return fmt.Errorf("decrement stock of product %d: %w", id, err)
			}
			if !ok {
				return outOfStock(byID[id])
			}
		}

		ev, err := newOrderCreatedEvent(order, len(orderItems))
		if err != nil {
			return err
		}
		if err := s.repos.Outbox.WithTx(tx).Create(ctx, ev); err != nil {
			return fmt.Errorf("write outbox: %w", err)
		}

		order.Items = orderItems
		return nil
	})
}

// precheckStock 事务前快速失败；权威检查仍是事务内的条件更新
func (s *orderService) precheckStock(ctx context.Context, in PlaceOrderInput, quantities map[uint]int) error {
	ids := make([]uint, 0, len(quantities))
	for id := range quantities {
		ids = append(ids, id)
	}
	byID, err := s.repos.Products.GetByIDs(ctx, ids)
	if err != nil {
		return s.internal(ctx, "precheck_stock", err, in)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			return &OrderError{Kind: ErrNotFound, Message: msgProductNotFound, ProductID: id}
		}
		if p.StockQty < quantities[id] {
			return outOfStock(p)
		}
	}
	return nil
}

func (s *orderService) resolveAddress(ctx context.Context, in PlaceOrderInput) (*resolvedAddress, error) {
	addr := &resolvedAddress{}
	var err error
	if in.CityID != 0 {
		if addr.city, err = s.repos.Addresses.GetCity(ctx, in.CityID); err != nil {
			return nil, s.addressError(ctx, err, in)
		}
	}
	if in.DistrictID != 0 {
		if addr.district, err = s.repos.Addresses.GetDistrict(ctx, in.DistrictID); err != nil {
			return nil, s.addressError(ctx, err, in)
		}
	}
	if in.NeighborhoodID != 0 {
		if addr.neighborhood, err = s.repos.Addresses.GetNeighborhood(ctx, in.NeighborhoodID); err != nil {
			return nil, s.addressError(ctx, err, in)
		}
	}
	return addr, nil
}

func (s *orderService) addressError(ctx context.Context, err error, in PlaceOrderInput) error {
	if errors.Is(err, repository.ErrNotFound) {
		return newOrderError(ErrNotFound, msgAddressNotFound)
	}
	return s.internal(ctx, "load_address", err, in)
}

func (s *orderService) rateLimitMessage(ctx context.Context) string {
	minutes := 10
	if st, err := s.repos.Settings.Get(ctx); err == nil && st.RateLimitPeriod > 0 {
		minutes = (st.RateLimitPeriod + 59) / 60
	}
	return fmt.Sprintf(msgTooManyRequests, minutes)
}

// internal 记录完整错误并上报，对外只返回通用信息
func (s *orderService) internal(ctx context.Context, stage string, err error, in PlaceOrderInput) error {
	logger.Error("order placement failed",
		zap.String("stage", stage),
		zap.Uint("campaign_id", in.CampaignID),
		zap.String("ip", in.ClientIP),
		zap.Error(err),
	)
	sentry.CaptureError(ctx, err, map[string]string{"component": "order", "stage": stage})
	return &OrderError{Kind: ErrInternal, Message: msgInternal, Err: err}
}

func (s *orderService) GetOrder(ctx context.Context, id uint) (*model.Order, error) {
	return s.repos.Orders.GetByID(ctx, id)
}

// TrackOrder 追踪号 + 手机号匹配才返回订单
func (s *orderService) TrackOrder(ctx context.Context, trackingNumber, phone string) (*model.Order, error) {
	o, err := s.repos.Orders.GetByTrackingNumber(ctx, strings.TrimSpace(trackingNumber))
	if err != nil {
		return nil, err
	}
	if NormalizePhone(o.Phone) != NormalizePhone(phone) {
		return nil, repository.ErrNotFound
	}
	return o, nil
}

func buildOrder(c *model.Campaign, in PlaceOrderInput, addr *resolvedAddress, trackingNumber string) *model.Order {
	campaignID := c.ID
	order := &model.Order{
		CampaignID:       &campaignID,
		CampaignTitle:    c.Title,
		CampaignSlug:     c.Slug,
		CampaignImageURL: c.BannerImage,
		Status:           model.OrderStatusNew,
		CustomerName:     strings.TrimSpace(strings.TrimSpace(in.FirstName) + " " + strings.TrimSpace(in.LastName)),
		Phone:            NormalizePhone(in.Phone),
		FullAddress:      strings.TrimSpace(in.AddressDetail),
		CampaignPrice:    c.Price,
		CargoPrice:       c.ShippingPriceDiscounted,
		CODFee:           c.CODPriceDiscounted,
		TotalAmount:      c.CheckoutTotal(),
		TrackingNumber:   trackingNumber,
	}
	if addr.city != nil {
		order.CityID = &addr.city.ID
		order.City = addr.city.Name
	}
	if addr.district != nil {
		order.DistrictID = &addr.district.ID
		order.District = addr.district.Name
	}
	if addr.neighborhood != nil {
		order.NeighborhoodID = &addr.neighborhood.ID
		order.FullAddress = strings.TrimSpace(fmt.Sprintf("%s Mah. %s", addr.neighborhood.Name, order.FullAddress))
	}
	return order
}

func newOrderCreatedEvent(o *model.Order, itemCount int) (*model.OrderEvent, error) {
	payload, err := json.Marshal(Notification{
		OrderID:        o.ID,
		TrackingNumber: o.TrackingNumber,
		CampaignTitle:  o.CampaignTitle,
		Customer:       MaskName(o.CustomerName),
		City:           o.City,
		TotalAmount:    o.TotalAmount.StringFixed(2),
		Items:          itemCount,
		CreatedAt:      o.CreatedAt.Format(time.RFC3339),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal order event: %w", err)
	}
	return &model.OrderEvent{
		ID:      uuid.NewString(),
		OrderID: o.ID,
		Type:    model.OrderEventCreated,
		Payload: string(payload),
		Status:  model.OutboxPending,
	}, nil
}

func outOfStock(p *model.Product) *OrderError {
	return &OrderError{Kind: ErrOutOfStock, Message: fmt.Sprintf(msgOutOfStock, p.Name), ProductID: p.ID}
}

func aggregate(items []LineItem) map[uint]int {
	q := make(map[uint]int, len(items))
	for _, it := range items {
		q[it.ProductID]++
	}
	return q
}

func sizeSlugs(items []LineItem) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it.Size == "" {
			continue
		}
		if _, ok := seen[it.Size]; ok {
			continue
		}
		seen[it.Size] = struct{}{}
		out = append(out, it.Size)
	}
	return out
}

// NormalizePhone 只保留数字，去掉国家码与前导 0
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) == 12 && strings.HasPrefix(digits, "90") {
		digits = digits[2:]
	}
	if len(digits) == 11 && strings.HasPrefix(digits, "0") {
		digits = digits[1:]
	}
	return digits
}

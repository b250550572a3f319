package service

import (
	"fmt"

	"github.com/d60-Lab/campaign-shop/internal/model"
)

// LineItem 一个已提交的订单行（每行一件）
type LineItem struct {
	ProductID uint
	Size      string
}

// ValidateSelection checks the basket against the campaign rules and its product whitelist.
// The whitelist check is all-or-nothing: a single foreign product rejects the whole basket.
func ValidateSelection(c *model.Campaign, items []LineItem) error {
	if !c.IsActive {
		return newOrderError(ErrCampaignInactive, msgCampaignInactive)
	}
	if len(items) == 0 {
		return newOrderError(ErrEmptySelection, msgEmptySelection)
	}
	if len(items) < c.MinQuantity {
		return newOrderError(ErrInsufficientQuantity, fmt.Sprintf(msgInsufficientQty, c.MinQuantity))
	}
	for _, it := range items {
		if !c.HasProduct(it.ProductID) {
			return &OrderError{Kind: ErrSecurityViolation, Message: msgSecurityViolation, ProductID: it.ProductID}
		}
	}
	return nil
}

// ForeignProducts 返回不在白名单中的商品（用于安全日志）
func ForeignProducts(c *model.Campaign, items []LineItem) []uint {
	var out []uint
	for _, it := range items {
		if !c.HasProduct(it.ProductID) {
			out = append(out, it.ProductID)
		}
	}
	return out
}

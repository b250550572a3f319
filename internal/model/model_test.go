package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCampaign_UnitPrice(t *testing.T) {
	c := Campaign{Price: decimal.NewFromInt(300), MinQuantity: 3}
	assert.True(t, c.UnitPrice().Equal(decimal.NewFromInt(100)))

	c.MinQuantity = 0
	assert.True(t, c.UnitPrice().IsZero())
}

func TestCampaign_CheckoutTotalUsesDiscountedTier(t *testing.T) {
	c := Campaign{
		Price:                   decimal.RequireFromString("499.90"),
		ShippingPrice:           decimal.NewFromInt(100),
		ShippingPriceDiscounted: decimal.NewFromInt(0),
		CODPrice:                decimal.NewFromInt(100),
		CODPriceDiscounted:      decimal.NewFromInt(85),
	}
	assert.Equal(t, "584.9", c.CheckoutTotal().String())
}

func TestCampaign_HasProduct(t *testing.T) {
	c := Campaign{Products: []CampaignProduct{{ProductID: 1}, {ProductID: 7}}}
	assert.True(t, c.HasProduct(7))
	assert.False(t, c.HasProduct(2))
}

func TestOrderStatus_Valid(t *testing.T) {
	assert.True(t, OrderStatusReturn.Valid())
	assert.False(t, OrderStatus("lost").Valid())
}

func TestReturnStatus_Transitions(t *testing.T) {
	assert.True(t, ReturnStatusPending.CanTransitionTo(ReturnStatusApproved))
	assert.True(t, ReturnStatusPending.CanTransitionTo(ReturnStatusRejected))
	assert.True(t, ReturnStatusApproved.CanTransitionTo(ReturnStatusCompleted))
	assert.False(t, ReturnStatusRejected.CanTransitionTo(ReturnStatusCompleted))
	assert.False(t, ReturnStatusPending.CanTransitionTo(ReturnStatusCompleted))
}

func TestAdminUser_PermissionList(t *testing.T) {
	u := AdminUser{Permissions: "manage_orders, view_dashboard,,"}
	assert.Equal(t, []string{PermManageOrders, PermViewDashboard}, u.PermissionList())
	assert.Nil(t, (&AdminUser{}).PermissionList())
}

func TestProduct_PrimaryImageURL(t *testing.T) {
	p := Product{Images: []ProductImage{{URL: "b.jpg", SortOrder: 2}, {URL: "a.jpg", SortOrder: 1}}}
	assert.Equal(t, "a.jpg", p.PrimaryImageURL())
	assert.Empty(t, (&Product{}).PrimaryImageURL())
}

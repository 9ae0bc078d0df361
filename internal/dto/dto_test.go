package dto

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/GlebRadaev/gofood/internal/domain"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestNewOrderResponse(t *testing.T) {
	at := time.Date(2024, 12, 9, 16, 9, 57, 0, time.UTC)
	order := &domain.Order{
		ID:               7,
		CustomerID:       1,
		RestaurantID:     2,
		Status:           domain.StatusProcessing,
		CustomerStatus:   domain.CustomerStatusPending,
		TotalAmount:      dec("25.5"),
		PlatformFee:      dec("3.83"),
		RestaurantAmount: dec("21.67"),
		CreatedAt:        at,
		UpdatedAt:        at,
		Lines: []domain.OrderLine{
			{ItemName: "Margherita", ItemPrice: dec("12.75"), Quantity: 2},
		},
	}

	resp := NewOrderResponse(order)

	assert.Equal(t, "25.50", resp.TotalAmount)
	assert.Equal(t, "Processing", resp.Status)
	assert.Equal(t, "2024-12-09T16:09:57Z", resp.CreatedAt)
	assert.Equal(t, []OrderLineDTO{{ItemName: "Margherita", ItemPrice: "12.75", Quantity: 2, Subtotal: "25.50"}}, resp.Lines)
}

func TestNewCartResponse(t *testing.T) {
	empty := NewCartResponse(&domain.Cart{CustomerID: 1})
	assert.Equal(t, "0.00", empty.Total)
	assert.NotNil(t, empty.Lines)

	cart := &domain.Cart{CustomerID: 1, RestaurantID: 2, Lines: []domain.PricedLine{
		{
			CartLine: domain.CartLine{CustomerID: 1, MenuItemID: 3, Quantity: 2},
			Item:     domain.MenuItem{ID: 3, RestaurantID: 2, Name: "Margherita", Price: dec("12.75"), Available: true},
		},
		{
			CartLine: domain.CartLine{CustomerID: 1, MenuItemID: 4, Quantity: 1},
			Item:     domain.MenuItem{ID: 4},
		},
	}}
	resp := NewCartResponse(cart)
	assert.Equal(t, "25.50", resp.Total)
	assert.Len(t, resp.Lines, 2)
	assert.False(t, resp.Lines[1].Available)
}

func TestNewBalanceResponse(t *testing.T) {
	resp := NewBalanceResponse(&domain.Account{Kind: domain.AccountCustomer, Balance: dec("100"), Held: dec("25.5")})
	assert.Equal(t, BalanceResponseDTO{Kind: "customer", Balance: "100.00", Held: "25.50", Available: "74.50"}, resp)
}

func TestNewRestaurant(t *testing.T) {
	resp := NewRestaurant(&domain.Restaurant{ID: 4, Name: "Night Owl", OpenTime: 1080, CloseTime: 125})
	assert.Equal(t, RestaurantDTO{ID: 4, Name: "Night Owl", OpenTime: "18:00", CloseTime: "02:05"}, resp)
}

package dto

import (
	"time"

	"github.com/GlebRadaev/gofood/internal/domain"
)

type CreateOrderRequestDTO struct {
	Note string `json:"note,omitempty" example:"no onions"`
}

type TransitionRequestDTO struct {
	Status string `json:"status" example:"Being Prepared" enums:"Being Prepared,Completed,Cancelled"`
}

type OrderLineDTO struct {
	ItemName  string `json:"item_name" example:"Margherita"`
	ItemPrice string `json:"item_price" example:"12.75"`
	Quantity  int    `json:"quantity" example:"2"`
	Subtotal  string `json:"subtotal" example:"25.50"`
}

type OrderResponseDTO struct {
	ID               int            `json:"id" example:"7"`
	CustomerID       int            `json:"customer_id" example:"1"`
	RestaurantID     int            `json:"restaurant_id" example:"2"`
	Status           string         `json:"status" example:"Processing"`
	CustomerStatus   string         `json:"customer_status" example:"Pending"`
	TotalAmount      string         `json:"total_amount" example:"25.50"`
	PlatformFee      string         `json:"platform_fee" example:"3.83"`
	RestaurantAmount string         `json:"restaurant_amount" example:"21.67"`
	Notes            string         `json:"notes,omitempty"`
	Lines            []OrderLineDTO `json:"lines,omitempty"`
	CreatedAt        string         `json:"created_at" example:"2024-12-09T16:09:57+03:00"`
	UpdatedAt        string         `json:"updated_at" example:"2024-12-09T16:09:57+03:00"`
}

func NewOrderResponse(order *domain.Order) OrderResponseDTO {
	resp := OrderResponseDTO{
		ID:               order.ID,
		CustomerID:       order.CustomerID,
		RestaurantID:     order.RestaurantID,
		Status:           string(order.Status),
		CustomerStatus:   string(order.CustomerStatus),
		TotalAmount:      order.TotalAmount.StringFixed(domain.MoneyPlaces),
		PlatformFee:      order.PlatformFee.StringFixed(domain.MoneyPlaces),
		RestaurantAmount: order.RestaurantAmount.StringFixed(domain.MoneyPlaces),
		Notes:            order.Notes,
		CreatedAt:        order.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        order.UpdatedAt.Format(time.RFC3339),
	}
	for _, l := range order.Lines {
		resp.Lines = append(resp.Lines, OrderLineDTO{
			ItemName:  l.ItemName,
			ItemPrice: l.ItemPrice.StringFixed(domain.MoneyPlaces),
			Quantity:  l.Quantity,
			Subtotal:  domain.Round2(l.Subtotal()).StringFixed(domain.MoneyPlaces),
		})
	}
	return resp
}

package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventVersion is bumped whenever OrderEventPayload changes incompatibly.
const EventVersion = "1"

type OrderEventPayload struct {
	OrderID          int             `json:"order_id"`
	CustomerID       int             `json:"customer_id"`
	RestaurantID     int             `json:"restaurant_id"`
	Status           OrderStatus     `json:"status"`
	PreviousStatus   OrderStatus     `json:"previous_status,omitempty"`
	CustomerStatus   CustomerStatus  `json:"customer_status"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	PlatformFee      decimal.Decimal `json:"platform_fee"`
	RestaurantAmount decimal.Decimal `json:"restaurant_amount"`
	OccurredAt       time.Time       `json:"occurred_at"`
}

// NewOrderEvent builds the outbox record for an order. An empty previous status means the order was just created.
func NewOrderEvent(order *Order, previous OrderStatus) (*OrderEvent, error) {
	eventType := EventOrderStatusChanged
	if previous == "" {
		eventType = EventOrderCreated
	}
	now := time.Now().UTC()
	payload, err := json.Marshal(OrderEventPayload{
		OrderID:          order.ID,
		CustomerID:       order.CustomerID,
		RestaurantID:     order.RestaurantID,
		Status:           order.Status,
		PreviousStatus:   previous,
		CustomerStatus:   order.CustomerStatus,
		TotalAmount:      order.TotalAmount,
		PlatformFee:      order.PlatformFee,
		RestaurantAmount: order.RestaurantAmount,
		OccurredAt:       now,
	})
	if err != nil {
		return nil, err
	}
	return &OrderEvent{
		ID:        uuid.New(),
		OrderID:   order.ID,
		Type:      eventType,
		Payload:   payload,
		CreatedAt: now,
	}, nil
}

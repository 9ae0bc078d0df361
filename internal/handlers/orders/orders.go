package orders

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/GlebRadaev/gofood/internal/domain"
	"github.com/GlebRadaev/gofood/internal/dto"
	"github.com/GlebRadaev/gofood/pkg/auth"
	"github.com/GlebRadaev/gofood/pkg/utils"
)

//go:generate mockgen -source=orders.go -destination=mock_orders.go -package=orders

type Service interface {
	CreateOrder(ctx context.Context, actor domain.Identity, note string) (*domain.Order, error)
	TransitionOrder(ctx context.Context, actor domain.Identity, orderID int, target domain.OrderStatus) (*domain.Order, error)
	GetOrder(ctx context.Context, actor domain.Identity, orderID int) (*domain.Order, error)
	ListOrders(ctx context.Context, actor domain.Identity, status domain.OrderStatus) ([]domain.Order, error)
}

type OrderHandler struct {
	orderService Service
}

func New(orderService Service) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

// CreateOrder godoc
//
//	@Summary		Place an order from the cart
//	@Description	Turns the customer's cart into an order, reserves the total on the customer's balance and empties the cart.
//	@Tags			Orders
//	@Accept			json
//	@Produce		json
//	@Param			request			body	dto.CreateOrderRequestDTO	false	"Optional note"
//	@Param			Idempotency-Key	header	string						false	"Replay protection key"
//	@Security		BearerAuth
//	@Success		201	{object}	dto.OrderResponseDTO
//	@Failure		400	{object}	utils.Response	"Invalid request body"
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		402	{object}	utils.Response	"Insufficient balance"
//	@Failure		403	{object}	utils.Response	"Only customers place orders"
//	@Failure		409	{object}	utils.Response	"Concurrent update or replayed request"
//	@Failure		422	{object}	utils.Response	"Empty cart, unavailable item or mixed restaurants"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/orders [post]
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.RequireIdentity(w, r)
	if !ok {
		return
	}

	var req dto.CreateOrderRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	order, err := h.orderService.CreateOrder(r.Context(), actor, req.Note)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dto.NewOrderResponse(order))
}

// TransitionOrder godoc
//
//	@Summary		Change order status
//	@Description	Restaurants accept, reject or complete their orders. Customers may only confirm delivery.
//	@Tags			Orders
//	@Accept			json
//	@Produce		json
//	@Param			orderID			path	int						true	"Order id"
//	@Param			request			body	dto.TransitionRequestDTO	true	"Target status"
//	@Param			Idempotency-Key	header	string					false	"Replay protection key"
//	@Security		BearerAuth
//	@Success		200	{object}	dto.OrderResponseDTO
//	@Failure		400	{object}	utils.Response	"Invalid request"
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		402	{object}	utils.Response	"Insufficient balance"
//	@Failure		403	{object}	utils.Response	"Role may not set this status"
//	@Failure		404	{object}	utils.Response	"Order not found"
//	@Failure		409	{object}	utils.Response	"Transition not allowed from the current status"
//	@Failure		422	{object}	utils.Response	"Unknown status"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/orders/{orderID}/status [post]
func (h *OrderHandler) TransitionOrder(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.RequireIdentity(w, r)
	if !ok {
		return
	}
	orderID, ok := orderIDParam(w, r)
	if !ok {
		return
	}

	var req dto.TransitionRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	target, err := domain.ParseOrderStatus(req.Status)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}

	order, err := h.orderService.TransitionOrder(r.Context(), actor, orderID, target)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewOrderResponse(order))
}

// GetOrder godoc
//
//	@Summary		Get an order
//	@Description	Order with its lines. Visible to its customer and its restaurant only.
//	@Tags			Orders
//	@Produce		json
//	@Param			orderID	path	int	true	"Order id"
//	@Security		BearerAuth
//	@Success		200	{object}	dto.OrderResponseDTO
//	@Failure		400	{object}	utils.Response	"Invalid order id"
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		404	{object}	utils.Response	"Order not found"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/orders/{orderID} [get]
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.RequireIdentity(w, r)
	if !ok {
		return
	}
	orderID, ok := orderIDParam(w, r)
	if !ok {
		return
	}

	order, err := h.orderService.GetOrder(r.Context(), actor, orderID)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewOrderResponse(order))
}

// ListOrders godoc
//
//	@Summary		List orders
//	@Description	Orders placed by the customer or received by the restaurant, newest first.
//	@Tags			Orders
//	@Produce		json
//	@Param			status	query	string	false	"Filter by status"	Enums(Processing, Being Prepared, Completed, Cancelled)
//	@Security		BearerAuth
//	@Success		200	{array}		dto.OrderResponseDTO
//	@Success		204	"No data available"
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		422	{object}	utils.Response	"Unknown status"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/orders [get]
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.RequireIdentity(w, r)
	if !ok {
		return
	}

	var status domain.OrderStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		st, err := domain.ParseOrderStatus(raw)
		if err != nil {
			utils.RespondWithDomainError(w, err)
			return
		}
		status = st
	}

	orders, err := h.orderService.ListOrders(r.Context(), actor, status)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	if len(orders) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	response := make([]dto.OrderResponseDTO, 0, len(orders))
	for i := range orders {
		response = append(response, dto.NewOrderResponse(&orders[i]))
	}
	utils.RespondWithJSON(w, http.StatusOK, response)
}

func orderIDParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	return utils.IDParam(w, r, "orderID", "Invalid order id")
}

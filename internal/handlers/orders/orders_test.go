package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"

	"github.com/GlebRadaev/gofood/internal/domain"
	"github.com/GlebRadaev/gofood/internal/dto"
	"github.com/GlebRadaev/gofood/pkg/auth"
)

var (
	customer   = domain.Identity{UserID: 1, Role: domain.RoleCustomer}
	restaurant = domain.Identity{UserID: 2, Role: domain.RoleRestaurant}
)

func NewMock(t *testing.T) (*OrderHandler, *MockService) {
	ctrl := gomock.NewController(t)
	service := NewMockService(ctrl)
	handler := New(service)
	defer ctrl.Finish()
	return handler, service
}

type errorReader struct{}

func (r *errorReader) Read([]byte) (int, error) {
	return 0, errors.New("simulated read error")
}

func sampleOrder(status domain.OrderStatus) *domain.Order {
	at := time.Date(2024, 12, 9, 16, 9, 57, 0, time.UTC)
	return &domain.Order{
		ID:               7,
		CustomerID:       1,
		RestaurantID:     2,
		Status:           status,
		CustomerStatus:   domain.CustomerStatusFor(status),
		TotalAmount:      decimal.RequireFromString("25.50"),
		PlatformFee:      decimal.RequireFromString("3.83"),
		RestaurantAmount: decimal.RequireFromString("21.67"),
		CreatedAt:        at,
		UpdatedAt:        at,
	}
}

func newRequest(method, target string, body io.Reader, actor *domain.Identity, params map[string]string) *http.Request {
	r := httptest.NewRequest(method, target, body)
	ctx := r.Context()
	if actor != nil {
		ctx = auth.WithIdentity(ctx, *actor)
	}
	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}
	return r.WithContext(ctx)
}

func TestCreateOrderHandler(t *testing.T) {
	handler, service := NewMock(t)

	tests := []struct {
		name          string
		body          io.Reader
		actor         *domain.Identity
		prepareMock   func()
		expectedCode  int
		expectedError string
	}{
		{
			name:  "Order placed with a note",
			body:  bytes.NewBufferString(`{"note":"no onions"}`),
			actor: &customer,
			prepareMock: func() {
				service.EXPECT().CreateOrder(gomock.Any(), customer, "no onions").Return(sampleOrder(domain.StatusProcessing), nil)
			},
			expectedCode: http.StatusCreated,
		},
		{
			name:  "Empty body means no note",
			body:  bytes.NewBufferString(""),
			actor: &customer,
			prepareMock: func() {
				service.EXPECT().CreateOrder(gomock.Any(), customer, "").Return(sampleOrder(domain.StatusProcessing), nil)
			},
			expectedCode: http.StatusCreated,
		},
		{
			name:          "Malformed body",
			body:          bytes.NewBufferString(`{"note":`),
			actor:         &customer,
			prepareMock:   func() {},
			expectedCode:  http.StatusBadRequest,
			expectedError: "Invalid request body",
		},
		{
			name:          "Failed to read request body",
			body:          &errorReader{},
			actor:         &customer,
			prepareMock:   func() {},
			expectedCode:  http.StatusBadRequest,
			expectedError: "Invalid request body",
		},
		{
			name:  "Empty cart",
			body:  bytes.NewBufferString(`{}`),
			actor: &customer,
			prepareMock: func() {
				service.EXPECT().CreateOrder(gomock.Any(), customer, "").Return(nil, domain.ErrEmptyCart)
			},
			expectedCode:  http.StatusUnprocessableEntity,
			expectedError: "cart is empty",
		},
		{
			name:  "Insufficient balance",
			body:  bytes.NewBufferString(`{}`),
			actor: &customer,
			prepareMock: func() {
				service.EXPECT().CreateOrder(gomock.Any(), customer, "").Return(nil, domain.ErrInsufficientBalance)
			},
			expectedCode:  http.StatusPaymentRequired,
			expectedError: "insufficient balance",
		},
		{
			name:  "Restaurant may not order",
			body:  bytes.NewBufferString(`{}`),
			actor: &restaurant,
			prepareMock: func() {
				service.EXPECT().CreateOrder(gomock.Any(), restaurant, "").Return(nil, domain.ErrForbidden)
			},
			expectedCode: http.StatusForbidden,
		},
		{
			name:  "Creation failure hides the cause",
			body:  bytes.NewBufferString(`{}`),
			actor: &customer,
			prepareMock: func() {
				service.EXPECT().CreateOrder(gomock.Any(), customer, "").
					Return(nil, fmt.Errorf("%w: %w", domain.ErrOrderCreation, errors.New("conn reset")))
			},
			expectedCode:  http.StatusInternalServerError,
			expectedError: "Internal server error",
		},
		{
			name:          "No identity",
			body:          bytes.NewBufferString(`{}`),
			prepareMock:   func() {},
			expectedCode:  http.StatusUnauthorized,
			expectedError: "Unauthorized",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			r := newRequest(http.MethodPost, "/api/orders", tt.body, tt.actor, nil)
			w := httptest.NewRecorder()

			handler.CreateOrder(w, r)

			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedError != "" {
				assert.Contains(t, w.Body.String(), tt.expectedError)
			}
			if tt.expectedCode == http.StatusCreated {
				var body dto.OrderResponseDTO
				require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
				assert.Equal(t, dto.NewOrderResponse(sampleOrder(domain.StatusProcessing)), body)
			}
		})
	}
}

func TestTransitionOrderHandler(t *testing.T) {
	handler, service := NewMock(t)

	tests := []struct {
		name          string
		orderID       string
		body          string
		actor         domain.Identity
		prepareMock   func()
		expectedCode  int
		expectedError string
	}{
		{
			name:    "Restaurant accepts",
			orderID: "7",
			body:    `{"status":"Being Prepared"}`,
			actor:   restaurant,
			prepareMock: func() {
				service.EXPECT().TransitionOrder(gomock.Any(), restaurant, 7, domain.StatusBeingPrepared).
					Return(sampleOrder(domain.StatusBeingPrepared), nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:    "Customer confirms delivery",
			orderID: "7",
			body:    `{"status":"Completed"}`,
			actor:   customer,
			prepareMock: func() {
				service.EXPECT().TransitionOrder(gomock.Any(), customer, 7, domain.StatusCompleted).
					Return(sampleOrder(domain.StatusCompleted), nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:          "Unknown status",
			orderID:       "7",
			body:          `{"status":"Shipped"}`,
			actor:         restaurant,
			prepareMock:   func() {},
			expectedCode:  http.StatusUnprocessableEntity,
			expectedError: "unknown order status",
		},
		{
			name:          "Invalid order id",
			orderID:       "abc",
			body:          `{"status":"Completed"}`,
			actor:         restaurant,
			prepareMock:   func() {},
			expectedCode:  http.StatusBadRequest,
			expectedError: "Invalid order id",
		},
		{
			name:          "Malformed body",
			orderID:       "7",
			body:          `status=Completed`,
			actor:         restaurant,
			prepareMock:   func() {},
			expectedCode:  http.StatusBadRequest,
			expectedError: "Invalid request body",
		},
		{
			name:    "Transition not allowed",
			orderID: "7",
			body:    `{"status":"Completed"}`,
			actor:   restaurant,
			prepareMock: func() {
				service.EXPECT().TransitionOrder(gomock.Any(), restaurant, 7, domain.StatusCompleted).
					Return(nil, fmt.Errorf("%w: Processing -> Completed", domain.ErrInvalidTransition))
			},
			expectedCode:  http.StatusConflict,
			expectedError: "invalid order status transition",
		},
		{
			name:    "Customer may not cancel",
			orderID: "7",
			body:    `{"status":"Cancelled"}`,
			actor:   customer,
			prepareMock: func() {
				service.EXPECT().TransitionOrder(gomock.Any(), customer, 7, domain.StatusCancelled).Return(nil, domain.ErrForbidden)
			},
			expectedCode: http.StatusForbidden,
		},
		{
			name:    "Order of someone else",
			orderID: "8",
			body:    `{"status":"Cancelled"}`,
			actor:   restaurant,
			prepareMock: func() {
				service.EXPECT().TransitionOrder(gomock.Any(), restaurant, 8, domain.StatusCancelled).Return(nil, domain.ErrOrderNotFound)
			},
			expectedCode:  http.StatusNotFound,
			expectedError: "order not found",
		},
		{
			name:    "Serialization conflict",
			orderID: "7",
			body:    `{"status":"Being Prepared"}`,
			actor:   restaurant,
			prepareMock: func() {
				service.EXPECT().TransitionOrder(gomock.Any(), restaurant, 7, domain.StatusBeingPrepared).Return(nil, domain.ErrConcurrentUpdate)
			},
			expectedCode:  http.StatusConflict,
			expectedError: "retry",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			r := newRequest(http.MethodPost, "/api/orders/"+tt.orderID+"/status", bytes.NewBufferString(tt.body),
				&tt.actor, map[string]string{"orderID": tt.orderID})
			w := httptest.NewRecorder()

			handler.TransitionOrder(w, r)

			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedError != "" {
				assert.Contains(t, w.Body.String(), tt.expectedError)
			}
		})
	}
}

func TestGetOrderHandler(t *testing.T) {
	handler, service := NewMock(t)

	tests := []struct {
		name         string
		orderID      string
		prepareMock  func()
		expectedCode int
	}{
		{
			name:    "Order with lines",
			orderID: "7",
			prepareMock: func() {
				order := sampleOrder(domain.StatusProcessing)
				order.Lines = []domain.OrderLine{{ItemName: "Margherita", ItemPrice: decimal.RequireFromString("12.75"), Quantity: 2}}
				service.EXPECT().GetOrder(gomock.Any(), customer, 7).Return(order, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:    "Not found",
			orderID: "9",
			prepareMock: func() {
				service.EXPECT().GetOrder(gomock.Any(), customer, 9).Return(nil, domain.ErrOrderNotFound)
			},
			expectedCode: http.StatusNotFound,
		},
		{
			name:         "Negative id",
			orderID:      "-1",
			prepareMock:  func() {},
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			r := newRequest(http.MethodGet, "/api/orders/"+tt.orderID, nil, &customer, map[string]string{"orderID": tt.orderID})
			w := httptest.NewRecorder()

			handler.GetOrder(w, r)

			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedCode == http.StatusOK {
				var body dto.OrderResponseDTO
				require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
				assert.Len(t, body.Lines, 1)
				assert.Equal(t, "25.50", body.Lines[0].Subtotal)
			}
		})
	}
}

func TestListOrdersHandler(t *testing.T) {
	handler, service := NewMock(t)

	tests := []struct {
		name          string
		query         string
		prepareMock   func()
		expectedCode  int
		expectedCount int
	}{
		{
			name: "All orders",
			prepareMock: func() {
				service.EXPECT().ListOrders(gomock.Any(), restaurant, domain.OrderStatus("")).Return([]domain.Order{
					*sampleOrder(domain.StatusProcessing),
					*sampleOrder(domain.StatusCompleted),
				}, nil)
			},
			expectedCode:  http.StatusOK,
			expectedCount: 2,
		},
		{
			name:  "Filtered by status",
			query: "?status=Being+Prepared",
			prepareMock: func() {
				service.EXPECT().ListOrders(gomock.Any(), restaurant, domain.StatusBeingPrepared).
					Return([]domain.Order{*sampleOrder(domain.StatusBeingPrepared)}, nil)
			},
			expectedCode:  http.StatusOK,
			expectedCount: 1,
		},
		{
			name:         "Unknown status filter",
			query:        "?status=lost",
			prepareMock:  func() {},
			expectedCode: http.StatusUnprocessableEntity,
		},
		{
			name: "No data",
			prepareMock: func() {
				service.EXPECT().ListOrders(gomock.Any(), restaurant, domain.OrderStatus("")).Return(nil, nil)
			},
			expectedCode: http.StatusNoContent,
		},
		{
			name: "Internal error",
			prepareMock: func() {
				service.EXPECT().ListOrders(gomock.Any(), restaurant, domain.OrderStatus("")).Return(nil, errors.New("db down"))
			},
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			r := newRequest(http.MethodGet, "/api/orders"+tt.query, nil, &restaurant, nil)
			w := httptest.NewRecorder()

			handler.ListOrders(w, r)

			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedCode == http.StatusOK {
				var body []dto.OrderResponseDTO
				require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
				assert.Len(t, body, tt.expectedCount)
			}
		})
	}
}

package balance

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"

	"github.com/GlebRadaev/gofood/internal/domain"
	"github.com/GlebRadaev/gofood/internal/dto"
	"github.com/GlebRadaev/gofood/pkg/auth"
)

func NewMock(t *testing.T) (*BalanceHandler, *MockService) {
	ctrl := gomock.NewController(t)
	service := NewMockService(ctrl)
	handler := New(service)
	defer ctrl.Finish()
	return handler, service
}

func TestGetBalanceHandler(t *testing.T) {
	handler, service := NewMock(t)
	customer := domain.Identity{UserID: 1, Role: domain.RoleCustomer}

	tests := []struct {
		name          string
		actor         *domain.Identity
		prepareMock   func()
		expectedCode  int
		expectedError string
		expectedBody  *dto.BalanceResponseDTO
	}{
		{
			name:  "Customer with a hold",
			actor: &customer,
			prepareMock: func() {
				service.EXPECT().GetBalance(gomock.Any(), customer).Return(&domain.Account{
					Kind:    domain.AccountCustomer,
					OwnerID: 1,
					Balance: decimal.RequireFromString("100"),
					Held:    decimal.RequireFromString("25.50"),
				}, nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: &dto.BalanceResponseDTO{Kind: "customer", Balance: "100.00", Held: "25.50", Available: "74.50"},
		},
		{
			name:  "Account missing",
			actor: &customer,
			prepareMock: func() {
				service.EXPECT().GetBalance(gomock.Any(), customer).
					Return(nil, fmt.Errorf("%w: customer 1", domain.ErrAccountNotFound))
			},
			expectedCode:  http.StatusInternalServerError,
			expectedError: "Internal server error",
		},
		{
			name:  "Database error",
			actor: &customer,
			prepareMock: func() {
				service.EXPECT().GetBalance(gomock.Any(), customer).Return(nil, errors.New("db down"))
			},
			expectedCode:  http.StatusInternalServerError,
			expectedError: "Internal server error",
		},
		{
			name:          "No identity",
			prepareMock:   func() {},
			expectedCode:  http.StatusUnauthorized,
			expectedError: "Unauthorized",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			r := httptest.NewRequest(http.MethodGet, "/api/balance", nil)
			if tt.actor != nil {
				r = r.WithContext(auth.WithIdentity(r.Context(), *tt.actor))
			}
			w := httptest.NewRecorder()

			handler.GetBalance(w, r)

			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedError != "" {
				assert.Contains(t, w.Body.String(), tt.expectedError)
			}
			if tt.expectedBody != nil {
				var body dto.BalanceResponseDTO
				assert.NoError(t, json.NewDecoder(w.Body).Decode(&body))
				assert.Equal(t, *tt.expectedBody, body)
			}
		})
	}
}

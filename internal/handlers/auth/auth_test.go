package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"

	"github.com/GlebRadaev/gofood/internal/domain"
	"github.com/GlebRadaev/gofood/internal/dto"
	"github.com/GlebRadaev/gofood/internal/service/authservice"
)

func NewMock(t *testing.T) (*AuthHandler, *MockService) {
	ctrl := gomock.NewController(t)
	service := NewMockService(ctrl)
	handler := New(service)
	defer ctrl.Finish()
	return handler, service
}

func TestRegisterHandler(t *testing.T) {
	handler, service := NewMock(t)
	customer := &domain.User{ID: 1, Login: "newuser", Role: domain.RoleCustomer}

	tests := []struct {
		name          string
		body          string
		prepareMock   func()
		expectedCode  int
		expectedError string
	}{
		{
			name: "Successful registration",
			body: `{"login":"newuser","password":"password123","role":"customer"}`,
			prepareMock: func() {
				service.EXPECT().Register(context.Background(), authservice.Registration{
					Login:    "newuser",
					Password: "password123",
					Role:     domain.RoleCustomer,
				}).Return(customer, nil)
				service.EXPECT().GenerateToken(customer).Return("some-jwt-token", nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name: "Restaurant profile is passed through",
			body: `{"login":"pizzeria","password":"password123","role":"restaurant","name":"Mario's","description":"Pizza","open_time":"11:00","close_time":"23:00"}`,
			prepareMock: func() {
				restaurant := &domain.User{ID: 2, Login: "pizzeria", Role: domain.RoleRestaurant}
				service.EXPECT().Register(context.Background(), authservice.Registration{
					Login:       "pizzeria",
					Password:    "password123",
					Role:        domain.RoleRestaurant,
					Name:        "Mario's",
					Description: "Pizza",
					OpenTime:    "11:00",
					CloseTime:   "23:00",
				}).Return(restaurant, nil)
				service.EXPECT().GenerateToken(restaurant).Return("some-jwt-token", nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name: "Malformed opening hours",
			body: `{"login":"pizzeria","password":"password123","role":"restaurant","open_time":"noon","close_time":"23:00"}`,
			prepareMock: func() {
				service.EXPECT().Register(context.Background(), gomock.Any()).Return(nil, domain.ErrInvalidHours)
			},
			expectedCode:  http.StatusUnprocessableEntity,
			expectedError: "opening hours must be HH:MM",
		},
		{
			name: "User already exists",
			body: `{"login":"existinguser","password":"password123","role":"customer"}`,
			prepareMock: func() {
				service.EXPECT().Register(context.Background(), gomock.Any()).Return(nil, domain.ErrUserExists)
			},
			expectedCode:  http.StatusConflict,
			expectedError: "username already taken",
		},
		{
			name: "Unknown role",
			body: `{"login":"newuser","password":"password123","role":"admin"}`,
			prepareMock: func() {
				service.EXPECT().Register(context.Background(), gomock.Any()).Return(nil, domain.ErrInvalidRole)
			},
			expectedCode:  http.StatusUnprocessableEntity,
			expectedError: "unknown role",
		},
		{
			name:          "Invalid request body",
			body:          `{"login":}`,
			prepareMock:   func() {},
			expectedCode:  http.StatusBadRequest,
			expectedError: "Invalid request body",
		},
		{
			name:          "Missing password",
			body:          `{"login":"newuser","role":"customer"}`,
			prepareMock:   func() {},
			expectedCode:  http.StatusBadRequest,
			expectedError: "Login and password are required",
		},
		{
			name: "Token generation failed",
			body: `{"login":"newuser","password":"password123","role":"customer"}`,
			prepareMock: func() {
				service.EXPECT().Register(context.Background(), gomock.Any()).Return(customer, nil)
				service.EXPECT().GenerateToken(customer).Return("", errors.New("sign error"))
			},
			expectedCode:  http.StatusInternalServerError,
			expectedError: "Error generating token",
		},
		{
			name: "Database error is hidden",
			body: `{"login":"newuser","password":"password123","role":"customer"}`,
			prepareMock: func() {
				service.EXPECT().Register(context.Background(), gomock.Any()).Return(nil, errors.New("connection refused"))
			},
			expectedCode:  http.StatusInternalServerError,
			expectedError: "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			r := httptest.NewRequest(http.MethodPost, "/api/user/register", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()

			handler.Register(w, r)

			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedError != "" {
				assert.Contains(t, w.Body.String(), tt.expectedError)
				assert.NotContains(t, w.Body.String(), "connection refused")
			}
			if tt.expectedCode == http.StatusOK {
				assert.Equal(t, "Bearer some-jwt-token", w.Header().Get("Authorization"))
			}
		})
	}
}

func TestLoginHandler(t *testing.T) {
	handler, service := NewMock(t)
	user := &domain.User{ID: 2, Login: "pizzeria", Role: domain.RoleRestaurant}

	tests := []struct {
		name          string
		body          string
		prepareMock   func()
		expectedCode  int
		expectedError string
		expectedBody  *dto.AuthResponseDTO
	}{
		{
			name: "Successful login",
			body: `{"login":"pizzeria","password":"password123"}`,
			prepareMock: func() {
				service.EXPECT().Authenticate(context.Background(), "pizzeria", "password123").Return(user, nil)
				service.EXPECT().GenerateToken(user).Return("some-jwt-token", nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: &dto.AuthResponseDTO{Message: "User successfully authenticated", UserID: 2, Role: "restaurant"},
		},
		{
			name: "Invalid credentials",
			body: `{"login":"pizzeria","password":"wrong"}`,
			prepareMock: func() {
				service.EXPECT().Authenticate(context.Background(), "pizzeria", "wrong").Return(nil, authservice.ErrInvalidCredentials)
			},
			expectedCode:  http.StatusUnauthorized,
			expectedError: "Invalid credentials",
		},
		{
			name: "Unexpected error",
			body: `{"login":"pizzeria","password":"password123"}`,
			prepareMock: func() {
				service.EXPECT().Authenticate(context.Background(), "pizzeria", "password123").Return(nil, errors.New("boom"))
			},
			expectedCode:  http.StatusInternalServerError,
			expectedError: "Internal server error",
		},
		{
			name:          "Invalid request body",
			body:          `not json`,
			prepareMock:   func() {},
			expectedCode:  http.StatusBadRequest,
			expectedError: "Invalid request body",
		},
		{
			name: "Token generation failed",
			body: `{"login":"pizzeria","password":"password123"}`,
			prepareMock: func() {
				service.EXPECT().Authenticate(context.Background(), "pizzeria", "password123").Return(user, nil)
				service.EXPECT().GenerateToken(user).Return("", errors.New("sign error"))
			},
			expectedCode:  http.StatusInternalServerError,
			expectedError: "Error generating token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			r := httptest.NewRequest(http.MethodPost, "/api/user/login", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()

			handler.Login(w, r)

			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedError != "" {
				assert.Contains(t, w.Body.String(), tt.expectedError)
			}
			if tt.expectedBody != nil {
				var body dto.AuthResponseDTO
				assert.NoError(t, json.NewDecoder(w.Body).Decode(&body))
				assert.Equal(t, *tt.expectedBody, body)
				assert.Equal(t, "Bearer some-jwt-token", w.Header().Get("Authorization"))
			}
		})
	}
}

package settlement

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"

	"github.com/GlebRadaev/gofood/internal/domain"
	"github.com/GlebRadaev/gofood/internal/pg"
)

type mocks struct {
	accounts *MockAccountRepo
	orders   *MockOrderRepo
	events   *MockEventRepo
}

func NewMock(t *testing.T) (*Engine, mocks) {
	ctrl := gomock.NewController(t)
	m := mocks{
		accounts: NewMockAccountRepo(ctrl),
		orders:   NewMockOrderRepo(ctrl),
		events:   NewMockEventRepo(ctrl),
	}
	tx := pg.NewMockTXManager(ctrl)
	tx.EXPECT().Begin(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, fn pg.TransactionalFn) error {
		return fn(ctx)
	}).AnyTimes()
	return New(m.accounts, m.orders, m.events, tx), m
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newOrder(status domain.OrderStatus) *domain.Order {
	return &domain.Order{
		ID:               7,
		CustomerID:       1,
		RestaurantID:     2,
		Status:           status,
		CustomerStatus:   domain.CustomerStatusFor(status),
		TotalAmount:      dec("25.50"),
		PlatformFee:      dec("3.83"),
		RestaurantAmount: dec("21.67"),
	}
}

func account(id int, ref domain.AccountRef, balance, held string) *domain.Account {
	return &domain.Account{ID: id, Kind: ref.Kind, OwnerID: ref.OwnerID, Balance: dec(balance), Held: dec(held)}
}

// applyPosting echoes the posting onto the account so callers see the new balance.
func applyPosting(acc *domain.Account) func(context.Context, domain.Posting) (*domain.Account, error) {
	return func(_ context.Context, p domain.Posting) (*domain.Account, error) {
		next := *acc
		next.Balance = next.Balance.Add(p.BalanceDelta)
		next.Held = next.Held.Add(p.HeldDelta)
		return &next, nil
	}
}

func TestPlan(t *testing.T) {
	tests := []struct {
		name          string
		from, to      domain.OrderStatus
		expected      []domain.Posting
		expectedError error
	}{
		{
			name: "Accept captures the hold and pays the restaurant",
			from: domain.StatusProcessing,
			to:   domain.StatusBeingPrepared,
			expected: []domain.Posting{
				{Account: domain.CustomerAccount(1), BalanceDelta: dec("-25.50"), HeldDelta: dec("-25.50"), Reason: domain.ReasonCapture},
				{Account: domain.RestaurantAccount(2), BalanceDelta: dec("21.67"), HeldDelta: decimal.Zero, Reason: domain.ReasonPayout},
			},
		},
		{
			name: "Reject releases the hold",
			from: domain.StatusProcessing,
			to:   domain.StatusCancelled,
			expected: []domain.Posting{
				{Account: domain.CustomerAccount(1), BalanceDelta: decimal.Zero, HeldDelta: dec("-25.50"), Reason: domain.ReasonRelease},
			},
		},
		{
			name: "Cancel after accept refunds the customer",
			from: domain.StatusBeingPrepared,
			to:   domain.StatusCancelled,
			expected: []domain.Posting{
				{Account: domain.CustomerAccount(1), BalanceDelta: dec("25.50"), HeldDelta: decimal.Zero, Reason: domain.ReasonRefund},
			},
		},
		{
			name: "Complete moves no money",
			from: domain.StatusBeingPrepared,
			to:   domain.StatusCompleted,
		},
		{
			name:          "Complete twice",
			from:          domain.StatusCompleted,
			to:            domain.StatusCompleted,
			expectedError: domain.ErrInvalidTransition,
		},
		{
			name:          "Skip acceptance",
			from:          domain.StatusProcessing,
			to:            domain.StatusCompleted,
			expectedError: domain.ErrInvalidTransition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			postings, err := Plan(newOrder(tt.from), tt.to)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, postings)
				return
			}
			require.NoError(t, err)
			require.Len(t, postings, len(tt.expected))
			for i, p := range postings {
				assert.Equal(t, tt.expected[i].Account, p.Account)
				assert.Equal(t, tt.expected[i].Reason, p.Reason)
				assert.True(t, tt.expected[i].BalanceDelta.Equal(p.BalanceDelta), "balance delta %s", p.BalanceDelta)
				assert.True(t, tt.expected[i].HeldDelta.Equal(p.HeldDelta), "held delta %s", p.HeldDelta)
			}
		})
	}
}

func TestOpenPlanBalances(t *testing.T) {
	order := newOrder(domain.StatusProcessing)
	postings := OpenPlan(order)
	require.Len(t, postings, 2)
	assert.True(t, postings[0].HeldDelta.Equal(order.TotalAmount))
	assert.True(t, postings[1].BalanceDelta.Equal(order.PlatformFee))
}

func TestOpen(t *testing.T) {
	order := newOrder(domain.StatusProcessing)
	customerRef, platformRef := domain.CustomerAccount(1), domain.PlatformAccount()

	tests := []struct {
		name          string
		prepareMock   func(m mocks)
		expectedError error
	}{
		{
			name: "Hold and fee",
			prepareMock: func(m mocks) {
				customer := account(11, customerRef, "100.00", "0")
				platform := account(1, platformRef, "0", "0")
				gomock.InOrder(
					m.accounts.EXPECT().LockByOwner(gomock.Any(), customerRef).Return(customer, nil),
					m.accounts.EXPECT().LockByOwner(gomock.Any(), platformRef).Return(platform, nil),
				)
				m.accounts.EXPECT().ApplyPosting(gomock.Any(), gomock.Any()).DoAndReturn(applyPosting(customer))
				m.accounts.EXPECT().ApplyPosting(gomock.Any(), gomock.Any()).DoAndReturn(applyPosting(platform))
				m.accounts.EXPECT().InsertPostings(gomock.Any(), 7, gomock.Len(2)).Return(nil)
			},
		},
		{
			name: "Available balance too low",
			prepareMock: func(m mocks) {
				m.accounts.EXPECT().LockByOwner(gomock.Any(), customerRef).Return(account(11, customerRef, "30.00", "5.00"), nil)
				m.accounts.EXPECT().LockByOwner(gomock.Any(), platformRef).Return(account(1, platformRef, "0", "0"), nil)
			},
			expectedError: domain.ErrInsufficientBalance,
		},
		{
			name: "Platform account missing",
			prepareMock: func(m mocks) {
				m.accounts.EXPECT().LockByOwner(gomock.Any(), customerRef).Return(account(11, customerRef, "100.00", "0"), nil)
				m.accounts.EXPECT().LockByOwner(gomock.Any(), platformRef).Return(nil, nil)
			},
			expectedError: domain.ErrAccountNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, m := NewMock(t)
			tt.prepareMock(m)
			postings, err := engine.Open(context.Background(), order)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, postings)
				return
			}
			require.NoError(t, err)
			require.Len(t, postings, 2)
			assert.Equal(t, 11, postings[0].AccountID)
			assert.Equal(t, 1, postings[1].AccountID)
		})
	}
}

func TestApplyTransition(t *testing.T) {
	customerRef, restaurantRef := domain.CustomerAccount(1), domain.RestaurantAccount(2)

	tests := []struct {
		name           string
		from, to       domain.OrderStatus
		prepareMock    func(m mocks)
		expectedError  error
		expectedStatus domain.CustomerStatus
		postings       int
	}{
		{
			name: "Accept with balance exactly equal to total",
			from: domain.StatusProcessing,
			to:   domain.StatusBeingPrepared,
			prepareMock: func(m mocks) {
				customer := account(11, customerRef, "25.50", "25.50")
				restaurant := account(12, restaurantRef, "0", "0")
				gomock.InOrder(
					m.accounts.EXPECT().LockByOwner(gomock.Any(), customerRef).Return(customer, nil),
					m.accounts.EXPECT().LockByOwner(gomock.Any(), restaurantRef).Return(restaurant, nil),
				)
				m.accounts.EXPECT().ApplyPosting(gomock.Any(), gomock.Any()).DoAndReturn(applyPosting(customer))
				m.accounts.EXPECT().ApplyPosting(gomock.Any(), gomock.Any()).DoAndReturn(applyPosting(restaurant))
				m.accounts.EXPECT().InsertPostings(gomock.Any(), 7, gomock.Len(2)).Return(nil)
				m.orders.EXPECT().UpdateStatus(gomock.Any(), gomock.Any(), domain.StatusProcessing).Return(nil)
				m.events.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)
			},
			expectedStatus: domain.CustomerStatusPending,
			postings:       2,
		},
		{
			name: "Accept with balance one cent short",
			from: domain.StatusProcessing,
			to:   domain.StatusBeingPrepared,
			prepareMock: func(m mocks) {
				m.orders.EXPECT().UpdateStatus(gomock.Any(), gomock.Any(), domain.StatusProcessing).Return(nil)
				m.accounts.EXPECT().LockByOwner(gomock.Any(), customerRef).Return(account(11, customerRef, "25.49", "25.49"), nil)
				m.accounts.EXPECT().LockByOwner(gomock.Any(), restaurantRef).Return(account(12, restaurantRef, "0", "0"), nil)
			},
			expectedError: domain.ErrInsufficientBalance,
		},
		{
			name: "Cancel after accept refunds",
			from: domain.StatusBeingPrepared,
			to:   domain.StatusCancelled,
			prepareMock: func(m mocks) {
				customer := account(11, customerRef, "74.50", "0")
				m.accounts.EXPECT().LockByOwner(gomock.Any(), customerRef).Return(customer, nil)
				m.accounts.EXPECT().ApplyPosting(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, p domain.Posting) (*domain.Account, error) {
					assert.True(t, p.BalanceDelta.Equal(dec("25.50")))
					assert.Equal(t, 11, p.AccountID)
					return applyPosting(customer)(ctx, p)
				})
				m.accounts.EXPECT().InsertPostings(gomock.Any(), 7, gomock.Len(1)).Return(nil)
				m.orders.EXPECT().UpdateStatus(gomock.Any(), gomock.Any(), domain.StatusBeingPrepared).Return(nil)
				m.events.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)
			},
			expectedStatus: domain.CustomerStatusCancelled,
			postings:       1,
		},
		{
			name: "Complete writes only the status",
			from: domain.StatusBeingPrepared,
			to:   domain.StatusCompleted,
			prepareMock: func(m mocks) {
				m.orders.EXPECT().UpdateStatus(gomock.Any(), gomock.Any(), domain.StatusBeingPrepared).DoAndReturn(func(_ context.Context, o *domain.Order, _ domain.OrderStatus) error {
					assert.Equal(t, domain.StatusCompleted, o.Status)
					assert.Equal(t, domain.CustomerStatusDelivered, o.CustomerStatus)
					return nil
				})
				m.events.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e *domain.OrderEvent) error {
					assert.Equal(t, domain.EventOrderStatusChanged, e.Type)
					assert.Equal(t, 7, e.OrderID)
					return nil
				})
			},
			expectedStatus: domain.CustomerStatusDelivered,
		},
		{
			name:          "Complete twice",
			from:          domain.StatusCompleted,
			to:            domain.StatusCompleted,
			prepareMock:   func(m mocks) {},
			expectedError: domain.ErrInvalidTransition,
		},
		{
			name: "Restaurant account missing",
			from: domain.StatusProcessing,
			to:   domain.StatusBeingPrepared,
			prepareMock: func(m mocks) {
				m.orders.EXPECT().UpdateStatus(gomock.Any(), gomock.Any(), domain.StatusProcessing).Return(nil)
				m.accounts.EXPECT().LockByOwner(gomock.Any(), customerRef).Return(account(11, customerRef, "25.50", "25.50"), nil)
				m.accounts.EXPECT().LockByOwner(gomock.Any(), restaurantRef).Return(nil, nil)
			},
			expectedError: domain.ErrAccountNotFound,
		},
		{
			name: "Stale order moves no money",
			from: domain.StatusProcessing,
			to:   domain.StatusBeingPrepared,
			prepareMock: func(m mocks) {
				m.orders.EXPECT().UpdateStatus(gomock.Any(), gomock.Any(), domain.StatusProcessing).Return(domain.ErrInvalidTransition)
			},
			expectedError: domain.ErrInvalidTransition,
		},
		{
			name: "Status write fails",
			from: domain.StatusBeingPrepared,
			to:   domain.StatusCompleted,
			prepareMock: func(m mocks) {
				m.orders.EXPECT().UpdateStatus(gomock.Any(), gomock.Any(), domain.StatusBeingPrepared).Return(errors.New("some error"))
			},
			expectedError: errors.New("some error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, m := NewMock(t)
			tt.prepareMock(m)
			order := newOrder(tt.from)

			updated, postings, err := engine.ApplyTransition(context.Background(), order, tt.to)
			if tt.expectedError != nil {
				assert.Error(t, err)
				if !errors.Is(err, tt.expectedError) {
					assert.Equal(t, tt.expectedError.Error(), err.Error())
				}
				assert.Nil(t, updated)
				assert.Equal(t, tt.from, order.Status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, updated.Status)
			assert.Equal(t, tt.expectedStatus, updated.CustomerStatus)
			assert.Len(t, postings, tt.postings)
			assert.Equal(t, tt.from, order.Status)
		})
	}
}

func TestCheckFunds(t *testing.T) {
	restaurant := account(2, domain.RestaurantAccount(2), "0", "0")
	assert.NoError(t, checkFunds(restaurant, domain.Posting{BalanceDelta: dec("-5")}))

	customer := account(1, domain.CustomerAccount(1), "10.00", "4.00")
	assert.NoError(t, checkFunds(customer, domain.Posting{HeldDelta: dec("6.00")}))
	assert.ErrorIs(t, checkFunds(customer, domain.Posting{HeldDelta: dec("6.01")}), domain.ErrInsufficientBalance)
	assert.ErrorIs(t, checkFunds(customer, domain.Posting{BalanceDelta: dec("-10.01")}), domain.ErrInsufficientBalance)
}

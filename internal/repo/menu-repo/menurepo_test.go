package menurepo

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GlebRadaev/gofood/internal/domain"
)

func NewMock(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	mockDB, err := pgxmock.NewPool()
	require.NoError(t, err)
	return New(mockDB), mockDB
}

var itemRows = []string{"id", "restaurant_id", "name", "description", "price_cents", "available"}

func TestRepository_FindByIDs(t *testing.T) {
	repo, mock := NewMock(t)
	query := regexp.QuoteMeta(`FROM menu_items WHERE id = ANY($1) AND deleted_at IS NULL`)

	mock.ExpectQuery(query).
		WithArgs([]int{10, 11}).
		WillReturnRows(pgxmock.NewRows(itemRows).
			AddRow(10, 2, "Mozzarella Pizza", "Tasty", int64(1000), true).
			AddRow(11, 2, "Caesar Salad", "Crisp", int64(550), false))

	items, err := repo.FindByIDs(context.Background(), []int{10, 11})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Mozzarella Pizza", items[0].Name)
	assert.True(t, items[0].Price.Equal(decimal.RequireFromString("10.00")))
	assert.True(t, items[1].Price.Equal(decimal.RequireFromString("5.50")))
	assert.False(t, items[1].Available)

	mock.ExpectQuery(query).WithArgs([]int{12}).WillReturnError(errors.New("database error"))
	items, err = repo.FindByIDs(context.Background(), []int{12})
	assert.Error(t, err)
	assert.Nil(t, items)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_FindByID(t *testing.T) {
	repo, mock := NewMock(t)
	query := regexp.QuoteMeta(`FROM menu_items WHERE id = $1 AND deleted_at IS NULL`)

	tests := []struct {
		name      string
		mockSetup func()
		expectErr bool
		expected  *domain.MenuItem
	}{
		{
			name: "Item found",
			mockSetup: func() {
				mock.ExpectQuery(query).WithArgs(10).
					WillReturnRows(pgxmock.NewRows(itemRows).AddRow(10, 2, "BBQ Ribs", "", int64(1299), true))
			},
			expected: &domain.MenuItem{ID: 10, RestaurantID: 2, Name: "BBQ Ribs", Price: domain.FromCents(1299), Available: true},
		},
		{
			name: "Item deleted",
			mockSetup: func() {
				mock.ExpectQuery(query).WithArgs(10).WillReturnError(pgx.ErrNoRows)
			},
		},
		{
			name: "Database error",
			mockSetup: func() {
				mock.ExpectQuery(query).WithArgs(10).WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			item, err := repo.FindByID(context.Background(), 10)
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.expected, item)
		})
	}
}

func TestRepository_ListByRestaurant(t *testing.T) {
	repo, mock := NewMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM menu_items WHERE restaurant_id = $1 AND deleted_at IS NULL ORDER BY id`)).
		WithArgs(2).
		WillReturnRows(pgxmock.NewRows(itemRows).AddRow(10, 2, "Tuna Salad", "Light", int64(800), true))

	items, err := repo.ListByRestaurant(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Create(t *testing.T) {
	repo, mock := NewMock(t)
	query := regexp.QuoteMeta(`INSERT INTO menu_items (restaurant_id, name, description, price_cents, available) VALUES ($1, $2, $3, $4, $5) RETURNING id`)
	item := &domain.MenuItem{RestaurantID: 2, Name: "Beef Lasagna", Price: decimal.RequireFromString("12.40"), Available: true}

	mock.ExpectQuery(query).WithArgs(2, "Beef Lasagna", "", int64(1240), true).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(31))
	created, err := repo.Create(context.Background(), item)
	require.NoError(t, err)
	assert.Equal(t, 31, created.ID)

	mock.ExpectQuery(query).WithArgs(2, "Beef Lasagna", "", int64(1240), true).WillReturnError(errors.New("database error"))
	created, err = repo.Create(context.Background(), item)
	assert.Error(t, err)
	assert.Nil(t, created)
}

func TestRepository_Update(t *testing.T) {
	repo, mock := NewMock(t)
	query := regexp.QuoteMeta(`UPDATE menu_items SET name = $1, description = $2, price_cents = $3, available = $4 WHERE id = $5 AND restaurant_id = $6 AND deleted_at IS NULL`)
	item := &domain.MenuItem{ID: 31, RestaurantID: 2, Name: "Beef Lasagna", Price: decimal.RequireFromString("13"), Available: false}

	mock.ExpectExec(query).WithArgs("Beef Lasagna", "", int64(1300), false, 31, 2).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	assert.NoError(t, repo.Update(context.Background(), item))

	mock.ExpectExec(query).WithArgs("Beef Lasagna", "", int64(1300), false, 31, 2).WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	assert.ErrorIs(t, repo.Update(context.Background(), item), domain.ErrMenuItemNotFound)

	mock.ExpectExec(query).WithArgs("Beef Lasagna", "", int64(1300), false, 31, 2).WillReturnError(errors.New("database error"))
	assert.Error(t, repo.Update(context.Background(), item))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Delete(t *testing.T) {
	repo, mock := NewMock(t)
	query := regexp.QuoteMeta(`UPDATE menu_items SET deleted_at = NOW() WHERE id = $1 AND restaurant_id = $2 AND deleted_at IS NULL`)

	mock.ExpectExec(query).WithArgs(31, 2).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	assert.NoError(t, repo.Delete(context.Background(), 2, 31))

	mock.ExpectExec(query).WithArgs(31, 3).WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	assert.ErrorIs(t, repo.Delete(context.Background(), 3, 31), domain.ErrMenuItemNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListRestaurants(t *testing.T) {
	repo, mock := NewMock(t)
	query := regexp.QuoteMeta(`SELECT id, name, description, open_time, close_time FROM restaurants ORDER BY name, id`)
	columns := []string{"id", "name", "description", "open_time", "close_time"}

	mock.ExpectQuery(query).WillReturnRows(pgxmock.NewRows(columns).
		AddRow(2, "El Toro", "tapas", 540, 1320).
		AddRow(4, "Night Owl", "", 1080, 120))
	restaurants, err := repo.ListRestaurants(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.Restaurant{
		{ID: 2, Name: "El Toro", Description: "tapas", OpenTime: 540, CloseTime: 1320},
		{ID: 4, Name: "Night Owl", OpenTime: 1080, CloseTime: 120},
	}, restaurants)

	mock.ExpectQuery(query).WillReturnRows(pgxmock.NewRows(columns).AddRow("x", "Bad", "", 0, 0))
	restaurants, err = repo.ListRestaurants(context.Background())
	assert.Error(t, err)
	assert.Nil(t, restaurants)

	mock.ExpectQuery(query).WillReturnError(errors.New("database error"))
	restaurants, err = repo.ListRestaurants(context.Background())
	assert.Error(t, err)
	assert.Nil(t, restaurants)

	assert.NoError(t, mock.ExpectationsWereMet())
}

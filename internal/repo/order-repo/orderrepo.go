package orderrepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/GlebRadaev/gofood/internal/domain"
	"github.com/GlebRadaev/gofood/internal/pg"
)

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

const orderColumns = `id, customer_id, restaurant_id, status, customer_status, total_cents, platform_fee_cents, restaurant_amount_cents, notes, created_at, updated_at`

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		order                       domain.Order
		status, customerStatus      string
		total, fee, restaurantShare int64
	)
	err := row.Scan(&order.ID, &order.CustomerID, &order.RestaurantID, &status, &customerStatus,
		&total, &fee, &restaurantShare, &order.Notes, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return nil, err
	}
	order.Status = domain.OrderStatus(status)
	order.CustomerStatus = domain.CustomerStatus(customerStatus)
	order.TotalAmount = domain.FromCents(total)
	order.PlatformFee = domain.FromCents(fee)
	order.RestaurantAmount = domain.FromCents(restaurantShare)
	return &order, nil
}

func (r *Repository) findOne(ctx context.Context, query string, id int) (*domain.Order, error) {
	order, err := scanOrder(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't find order", zap.Int("order_id", id), zap.Error(err))
		return nil, err
	}
	return order, nil
}

func (r *Repository) FindByID(ctx context.Context, id int) (*domain.Order, error) {
	query := `
        SELECT ` + orderColumns + `
        FROM orders
        WHERE id = $1
    `
	return r.findOne(ctx, query, id)
}

// LockByID reads the order and locks its row until the surrounding transaction ends.
func (r *Repository) LockByID(ctx context.Context, id int) (*domain.Order, error) {
	query := `
        SELECT ` + orderColumns + `
        FROM orders
        WHERE id = $1
        FOR UPDATE
    `
	return r.findOne(ctx, query, id)
}

func (r *Repository) List(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	query := `
        SELECT ` + orderColumns + `
        FROM orders
        WHERE ($1 = 0 OR customer_id = $1)
          AND ($2 = 0 OR restaurant_id = $2)
          AND ($3 = '' OR status = $3)
        ORDER BY created_at DESC, id DESC
    `
	rows, err := r.db.Query(ctx, query, filter.CustomerID, filter.RestaurantID, string(filter.Status))
	if err != nil {
		zap.L().Error("can't get orders", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			zap.L().Error("can't scan order row", zap.Error(err))
			return nil, err
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		zap.L().Error("can't iterate orders", zap.Error(err))
		return nil, err
	}
	return orders, nil
}

func (r *Repository) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	query := `
        INSERT INTO orders (customer_id, restaurant_id, status, customer_status, total_cents, platform_fee_cents, restaurant_amount_cents, notes)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id, created_at, updated_at
    `
	err := r.db.QueryRow(ctx, query,
		order.CustomerID,
		order.RestaurantID,
		string(order.Status),
		string(order.CustomerStatus),
		domain.ToCents(order.TotalAmount),
		domain.ToCents(order.PlatformFee),
		domain.ToCents(order.RestaurantAmount),
		order.Notes,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		zap.L().Error("can't save order", zap.Error(err))
		return nil, err
	}
	return order, nil
}

func (r *Repository) InsertLines(ctx context.Context, orderID int, lines []domain.OrderLine) ([]domain.OrderLine, error) {
	query := `
        INSERT INTO order_lines (order_id, item_name, item_price_cents, quantity)
        VALUES ($1, $2, $3, $4)
        RETURNING id
    `
	saved := make([]domain.OrderLine, 0, len(lines))
	for _, line := range lines {
		line.OrderID = orderID
		err := r.db.QueryRow(ctx, query, orderID, line.ItemName, domain.ToCents(line.ItemPrice), line.Quantity).Scan(&line.ID)
		if err != nil {
			zap.L().Error("can't save order line", zap.Int("order_id", orderID), zap.Error(err))
			return nil, err
		}
		saved = append(saved, line)
	}
	return saved, nil
}

func (r *Repository) FindLines(ctx context.Context, orderID int) ([]domain.OrderLine, error) {
	query := `
        SELECT id, order_id, item_name, item_price_cents, quantity
        FROM order_lines
        WHERE order_id = $1
        ORDER BY id
    `
	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		zap.L().Error("can't get order lines", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var lines []domain.OrderLine
	for rows.Next() {
		var (
			line  domain.OrderLine
			price int64
		)
		if err := rows.Scan(&line.ID, &line.OrderID, &line.ItemName, &price, &line.Quantity); err != nil {
			zap.L().Error("can't scan order line", zap.Error(err))
			return nil, err
		}
		line.ItemPrice = domain.FromCents(price)
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		zap.L().Error("can't iterate order lines", zap.Error(err))
		return nil, err
	}
	return lines, nil
}

// UpdateStatus writes the mutable part of an order: both statuses and updated_at.
// The write only happens while the stored status is still from; otherwise it returns domain.ErrInvalidTransition.
func (r *Repository) UpdateStatus(ctx context.Context, order *domain.Order, from domain.OrderStatus) error {
	query := `
        UPDATE orders
        SET status = $1, customer_status = $2, updated_at = NOW()
        WHERE id = $3 AND status = $4
        RETURNING updated_at
    `
	err := r.db.QueryRow(ctx, query, string(order.Status), string(order.CustomerStatus), order.ID, string(from)).Scan(&order.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrInvalidTransition
		}
		zap.L().Error("failed to update order", zap.Int("order_id", order.ID), zap.Error(err))
		return err
	}
	return nil
}

package cartrepo

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

func (r *Repository) FindLines(ctx context.Context, customerID int) ([]domain.CartLine, error) {
	query := `
        SELECT customer_id, menu_item_id, quantity
        FROM cart_lines
        WHERE customer_id = $1
        ORDER BY id
    `
	return r.queryLines(ctx, query, customerID)
}

// LockLines reads the cart and locks its rows until the surrounding transaction ends.
func (r *Repository) LockLines(ctx context.Context, customerID int) ([]domain.CartLine, error) {
	query := `
        SELECT customer_id, menu_item_id, quantity
        FROM cart_lines
        WHERE customer_id = $1
        ORDER BY id
        FOR UPDATE
    `
	return r.queryLines(ctx, query, customerID)
}

func (r *Repository) queryLines(ctx context.Context, query string, customerID int) ([]domain.CartLine, error) {
	rows, err := r.db.Query(ctx, query, customerID)
	if err != nil {
		zap.L().Error("can't get cart lines", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var lines []domain.CartLine
	for rows.Next() {
		var line domain.CartLine
		if err := rows.Scan(&line.CustomerID, &line.MenuItemID, &line.Quantity); err != nil {
			zap.L().Error("can't scan cart line", zap.Error(err))
			return nil, err
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		zap.L().Error("can't iterate cart lines", zap.Error(err))
		return nil, err
	}
	return lines, nil
}

// Add inserts the line or increments the quantity of an existing one.
// Add inserts the line or increments its quantity. An increment past domain.MaxLineQuantity
// leaves the line untouched and returns domain.ErrInvalidQuantity.
func (r *Repository) Add(ctx context.Context, customerID, menuItemID, quantity int) (*domain.CartLine, error) {
	query := `
        INSERT INTO cart_lines (customer_id, menu_item_id, quantity)
        VALUES ($1, $2, $3)
        ON CONFLICT (customer_id, menu_item_id)
        DO UPDATE SET quantity = cart_lines.quantity + EXCLUDED.quantity
        WHERE cart_lines.quantity + EXCLUDED.quantity <= $4
        RETURNING customer_id, menu_item_id, quantity
    `
	var line domain.CartLine
	err := r.db.QueryRow(ctx, query, customerID, menuItemID, quantity, domain.MaxLineQuantity).
		Scan(&line.CustomerID, &line.MenuItemID, &line.Quantity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInvalidQuantity
		}
		zap.L().Error("can't add cart line", zap.Error(err))
		return nil, err
	}
	return &line, nil
}

// Decrement lowers the quantity by one and deletes the line when it would reach zero.
// It returns the remaining quantity.
func (r *Repository) Decrement(ctx context.Context, customerID, menuItemID int) (int, error) {
	update := `
        UPDATE cart_lines
        SET quantity = quantity - 1
        WHERE customer_id = $1 AND menu_item_id = $2 AND quantity > 1
        RETURNING quantity
    `
	var quantity int
	err := r.db.QueryRow(ctx, update, customerID, menuItemID).Scan(&quantity)
	if err == nil {
		return quantity, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		zap.L().Error("can't decrement cart line", zap.Error(err))
		return 0, err
	}

	remove := `
        DELETE FROM cart_lines
        WHERE customer_id = $1 AND menu_item_id = $2
    `
	if _, err := r.db.Exec(ctx, remove, customerID, menuItemID); err != nil {
		zap.L().Error("can't delete cart line", zap.Error(err))
		return 0, err
	}
	return 0, nil
}

func (r *Repository) Clear(ctx context.Context, customerID int) error {
	query := `
        DELETE FROM cart_lines
        WHERE customer_id = $1
    `
	if _, err := r.db.Exec(ctx, query, customerID); err != nil {
		zap.L().Error("can't clear cart", zap.Error(err))
		return err
	}
	return nil
}

package menurepo

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

const itemColumns = `id, restaurant_id, name, description, price_cents, available`

func scanItem(row pgx.Row) (*domain.MenuItem, error) {
	var (
		item  domain.MenuItem
		price int64
	)
	if err := row.Scan(&item.ID, &item.RestaurantID, &item.Name, &item.Description, &price, &item.Available); err != nil {
		return nil, err
	}
	item.Price = domain.FromCents(price)
	return &item, nil
}

func (r *Repository) queryItems(ctx context.Context, query string, args ...any) ([]domain.MenuItem, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		zap.L().Error("can't get menu items", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var items []domain.MenuItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			zap.L().Error("can't scan menu item", zap.Error(err))
			return nil, err
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		zap.L().Error("can't iterate menu items", zap.Error(err))
		return nil, err
	}
	return items, nil
}

// FindByIDs returns the live (not deleted) items among ids. Missing ids are simply absent.
func (r *Repository) FindByIDs(ctx context.Context, ids []int) ([]domain.MenuItem, error) {
	query := `
        SELECT ` + itemColumns + `
        FROM menu_items
        WHERE id = ANY($1) AND deleted_at IS NULL
    `
	return r.queryItems(ctx, query, ids)
}

func (r *Repository) FindByID(ctx context.Context, id int) (*domain.MenuItem, error) {
	query := `
        SELECT ` + itemColumns + `
        FROM menu_items
        WHERE id = $1 AND deleted_at IS NULL
    `
	item, err := scanItem(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find menu item", zap.Error(err))
		return nil, err
	}
	return item, nil
}

func (r *Repository) ListByRestaurant(ctx context.Context, restaurantID int) ([]domain.MenuItem, error) {
	query := `
        SELECT ` + itemColumns + `
        FROM menu_items
        WHERE restaurant_id = $1 AND deleted_at IS NULL
        ORDER BY id
    `
	return r.queryItems(ctx, query, restaurantID)
}

func (r *Repository) Create(ctx context.Context, item *domain.MenuItem) (*domain.MenuItem, error) {
	query := `
        INSERT INTO menu_items (restaurant_id, name, description, price_cents, available)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id
    `
	err := r.db.QueryRow(ctx, query, item.RestaurantID, item.Name, item.Description, domain.ToCents(item.Price), item.Available).Scan(&item.ID)
	if err != nil {
		zap.L().Error("can't save menu item", zap.Error(err))
		return nil, err
	}
	return item, nil
}

// Update rewrites a live item owned by item.RestaurantID.
func (r *Repository) Update(ctx context.Context, item *domain.MenuItem) error {
	query := `
        UPDATE menu_items
        SET name = $1, description = $2, price_cents = $3, available = $4
        WHERE id = $5 AND restaurant_id = $6 AND deleted_at IS NULL
    `
	tag, err := r.db.Exec(ctx, query, item.Name, item.Description, domain.ToCents(item.Price), item.Available, item.ID, item.RestaurantID)
	if err != nil {
		zap.L().Error("can't update menu item", zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMenuItemNotFound
	}
	return nil
}

// Delete hides the item from the catalog. Carts still referencing it fail aggregation.
func (r *Repository) Delete(ctx context.Context, restaurantID, id int) error {
	query := `
        UPDATE menu_items
        SET deleted_at = NOW()
        WHERE id = $1 AND restaurant_id = $2 AND deleted_at IS NULL
    `
	tag, err := r.db.Exec(ctx, query, id, restaurantID)
	if err != nil {
		zap.L().Error("can't delete menu item", zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMenuItemNotFound
	}
	return nil
}

// ListRestaurants returns every restaurant profile ordered by name.
func (r *Repository) ListRestaurants(ctx context.Context) ([]domain.Restaurant, error) {
	query := `
        SELECT id, name, description, open_time, close_time
        FROM restaurants
        ORDER BY name, id
    `
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		zap.L().Error("can't get restaurants", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var restaurants []domain.Restaurant
	for rows.Next() {
		var (
			restaurant domain.Restaurant
			opens      int
			closes     int
		)
		if err := rows.Scan(&restaurant.ID, &restaurant.Name, &restaurant.Description, &opens, &closes); err != nil {
			zap.L().Error("can't scan restaurant", zap.Error(err))
			return nil, err
		}
		restaurant.OpenTime, restaurant.CloseTime = domain.ClockTime(opens), domain.ClockTime(closes)
		restaurants = append(restaurants, restaurant)
	}
	if err := rows.Err(); err != nil {
		zap.L().Error("can't iterate restaurants", zap.Error(err))
		return nil, err
	}
	return restaurants, nil
}

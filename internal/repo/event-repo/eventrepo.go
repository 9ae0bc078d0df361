package eventrepo

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/GlebRadaev/gofood/internal/domain"
	"github.com/GlebRadaev/gofood/internal/pg"
)

// Repository is the transactional outbox of order events.
type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) Insert(ctx context.Context, event *domain.OrderEvent) error {
	query := `
        INSERT INTO order_events (id, order_id, type, payload)
        VALUES ($1, $2, $3, $4)
        RETURNING created_at
    `
	err := r.db.QueryRow(ctx, query, event.ID, event.OrderID, string(event.Type), []byte(event.Payload)).Scan(&event.CreatedAt)
	if err != nil {
		zap.L().Error("can't save order event", zap.Int("order_id", event.OrderID), zap.Error(err))
		return err
	}
	return nil
}

// FindUnpublished returns the oldest events not yet delivered to the broker.
func (r *Repository) FindUnpublished(ctx context.Context, limit int) ([]domain.OrderEvent, error) {
	query := `
        SELECT id, order_id, type, payload, created_at
        FROM order_events
        WHERE published_at IS NULL
        ORDER BY created_at, id
        LIMIT $1
    `
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		zap.L().Error("can't get unpublished events", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var events []domain.OrderEvent
	for rows.Next() {
		var (
			event     domain.OrderEvent
			eventType string
			payload   []byte
		)
		if err := rows.Scan(&event.ID, &event.OrderID, &eventType, &payload, &event.CreatedAt); err != nil {
			zap.L().Error("can't scan event row", zap.Error(err))
			return nil, err
		}
		event.Type = domain.EventType(eventType)
		event.Payload = payload
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		zap.L().Error("can't iterate events", zap.Error(err))
		return nil, err
	}
	return events, nil
}

func (r *Repository) MarkPublished(ctx context.Context, id uuid.UUID) error {
	query := `
        UPDATE order_events
        SET published_at = NOW()
        WHERE id = $1 AND published_at IS NULL
    `
	if _, err := r.db.Exec(ctx, query, id); err != nil {
		zap.L().Error("can't mark event published", zap.String("event_id", id.String()), zap.Error(err))
		return err
	}
	return nil
}

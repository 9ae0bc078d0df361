package relay

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/GlebRadaev/gofood/internal/domain"
)

//go:generate mockgen -source=relay.go -destination=mock_relay.go -package=relay

const (
	batchLimit  = 100
	maxRetries  = 3
	workerCount = 10
)

type EventRepo interface {
	FindUnpublished(ctx context.Context, limit int) ([]domain.OrderEvent, error)
	MarkPublished(ctx context.Context, id uuid.UUID) error
}

type Publisher interface {
	Publish(ctx context.Context, event domain.OrderEvent) error
}

// Service moves committed order events from the outbox table to the broker.
// Events of one order are published by a single task in creation order.
type Service struct {
	events     EventRepo
	publisher  Publisher
	workerPool WorkerPoolI
	interval   time.Duration
	backoff    time.Duration
	inFlight   sync.Map
}

func New(events EventRepo, publisher Publisher, interval time.Duration) *Service {
	return &Service{
		events:     events,
		publisher:  publisher,
		workerPool: NewWorkerPool(workerCount),
		interval:   interval,
		backoff:    time.Second,
	}
}

func (s *Service) Start(ctx context.Context) {
	zap.L().Info("event relay started", zap.Duration("interval", s.interval))
	go s.run(ctx)
}

func (s *Service) run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	defer s.workerPool.Close()

	for {
		select {
		case <-ctx.Done():
			zap.L().Info("context canceled, stopping event relay")
			return
		case <-ticker.C:
			s.processEvents(ctx)
		}
	}
}

func (s *Service) processEvents(ctx context.Context) {
	events, err := s.events.FindUnpublished(ctx, batchLimit)
	if err != nil {
		zap.L().Error("failed to fetch unpublished events", zap.Error(err))
		return
	}

	var g errgroup.Group
	for orderID, batch := range groupByOrder(events) {
		if _, loaded := s.inFlight.LoadOrStore(orderID, struct{}{}); loaded {
			continue
		}

		g.Go(func() error {
			err := s.workerPool.AddTask(ctx, func() error {
				defer s.inFlight.Delete(orderID)
				return s.publishOrder(ctx, batch)
			})
			if err != nil {
				s.inFlight.Delete(orderID)
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		zap.L().Error("failed to schedule event publishing", zap.Error(err))
	}
}

// publishOrder stops at the first event that cannot be delivered so later events of the order
// are never published before it. The remainder is picked up by the next poll.
func (s *Service) publishOrder(ctx context.Context, batch []domain.OrderEvent) error {
	for _, event := range batch {
		if err := s.publishWithRetry(ctx, event); err != nil {
			return err
		}
		if err := s.events.MarkPublished(ctx, event.ID); err != nil {
			zap.L().Error("failed to mark event published", zap.String("event_id", event.ID.String()), zap.Error(err))
			return err
		}
		zap.L().Debug("event published",
			zap.String("event_id", event.ID.String()),
			zap.Int("order_id", event.OrderID),
			zap.String("type", string(event.Type)),
		)
	}
	return nil
}

func (s *Service) publishWithRetry(ctx context.Context, event domain.OrderEvent) error {
	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err = s.publisher.Publish(ctx, event); err == nil {
			return nil
		}
		zap.L().Warn("failed to publish event",
			zap.String("event_id", event.ID.String()),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		if attempt == maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.backoff * time.Duration(attempt)):
		}
	}
	return fmt.Errorf("publish event %s after %d attempts: %w", event.ID, maxRetries, err)
}

func groupByOrder(events []domain.OrderEvent) map[int][]domain.OrderEvent {
	batches := make(map[int][]domain.OrderEvent)
	for _, e := range events {
		batches[e.OrderID] = append(batches[e.OrderID], e)
	}
	return batches
}

package orderservice

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/GlebRadaev/gofood/internal/domain"
	"github.com/GlebRadaev/gofood/internal/pg"
)

//go:generate mockgen -source=orderservice.go -destination=mock_orderservice.go -package=orderservice

type Repo interface {
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)
	InsertLines(ctx context.Context, orderID int, lines []domain.OrderLine) ([]domain.OrderLine, error)
	FindByID(ctx context.Context, id int) (*domain.Order, error)
	LockByID(ctx context.Context, id int) (*domain.Order, error)
	FindLines(ctx context.Context, orderID int) ([]domain.OrderLine, error)
	List(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error)
}

type EventRepo interface {
	Insert(ctx context.Context, event *domain.OrderEvent) error
}

type CartService interface {
	Aggregate(ctx context.Context, customerID int) (*domain.Cart, error)
	Clear(ctx context.Context, customerID int) error
}

type Settlement interface {
	Open(ctx context.Context, order *domain.Order) ([]domain.Posting, error)
	ApplyTransition(ctx context.Context, order *domain.Order, target domain.OrderStatus) (*domain.Order, []domain.Posting, error)
}

type Service struct {
	repo       Repo
	events     EventRepo
	cart       CartService
	settlement Settlement
	txManager  pg.TXManager
	feeRate    decimal.Decimal
}

func New(repo Repo, events EventRepo, cart CartService, settlement Settlement, txManager pg.TXManager, feeRate decimal.Decimal) *Service {
	return &Service{
		repo:       repo,
		events:     events,
		cart:       cart,
		settlement: settlement,
		txManager:  txManager,
		feeRate:    feeRate,
	}
}

// SplitFee divides a total into the platform fee and the restaurant share.
// The share is the remainder, so both parts always add up to total.
func SplitFee(total, rate decimal.Decimal) (fee, restaurant decimal.Decimal) {
	fee = domain.Round2(total.Mul(rate))
	return fee, total.Sub(fee)
}

// CreateOrder turns the customer's cart into an order in one transaction.
// Business errors are returned as is; anything else is wrapped in domain.ErrOrderCreation.
func (s *Service) CreateOrder(ctx context.Context, actor domain.Identity, note string) (*domain.Order, error) {
	if actor.Role != domain.RoleCustomer {
		return nil, domain.ErrForbidden
	}

	var created *domain.Order
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		cart, err := s.cart.Aggregate(ctx, actor.UserID)
		if err != nil {
			return err
		}

		total := cart.Total()
		fee, share := SplitFee(total, s.feeRate)
		order, err := s.repo.Create(ctx, &domain.Order{
			CustomerID:       actor.UserID,
			RestaurantID:     cart.RestaurantID,
			Status:           domain.StatusProcessing,
			CustomerStatus:   domain.CustomerStatusFor(domain.StatusProcessing),
			TotalAmount:      total,
			PlatformFee:      fee,
			RestaurantAmount: share,
			Notes:            note,
		})
		if err != nil {
			return err
		}

		lines := make([]domain.OrderLine, 0, len(cart.Lines))
		for _, l := range cart.Lines {
			lines = append(lines, domain.OrderLine{
				ItemName:  l.Item.Name,
				ItemPrice: l.Item.Price,
				Quantity:  l.Quantity,
			})
		}
		if order.Lines, err = s.repo.InsertLines(ctx, order.ID, lines); err != nil {
			return err
		}

		if _, err := s.settlement.Open(ctx, order); err != nil {
			return err
		}
		if err := s.cart.Clear(ctx, actor.UserID); err != nil {
			return err
		}

		event, err := domain.NewOrderEvent(order, "")
		if err != nil {
			return err
		}
		if err := s.events.Insert(ctx, event); err != nil {
			return err
		}
		created = order
		return nil
	})
	if err != nil {
		if domain.KindOf(err) != domain.KindInternal {
			zap.L().Info("order rejected", zap.Int("customer_id", actor.UserID), zap.Error(err))
			return nil, err
		}
		zap.L().Error("failed to create order", zap.Int("customer_id", actor.UserID), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", domain.ErrOrderCreation, err)
	}

	zap.L().Info("order created",
		zap.Int("order_id", created.ID),
		zap.Int("customer_id", created.CustomerID),
		zap.String("total", created.TotalAmount.StringFixed(domain.MoneyPlaces)))
	return created, nil
}

// TransitionOrder moves an order to target on behalf of actor. Orders the actor is not a party of are reported as not found.
func (s *Service) TransitionOrder(ctx context.Context, actor domain.Identity, orderID int, target domain.OrderStatus) (*domain.Order, error) {
	if err := domain.CheckPermission(actor.Role, target); err != nil {
		return nil, err
	}

	var updated *domain.Order
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		order, err := s.repo.LockByID(ctx, orderID)
		if err != nil {
			return err
		}
		if order == nil || !order.OwnedBy(actor) {
			return domain.ErrOrderNotFound
		}
		if err := domain.CheckTransition(order.Status, target); err != nil {
			return err
		}
		updated, _, err = s.settlement.ApplyTransition(ctx, order, target)
		return err
	})
	if err != nil {
		zap.L().Info("order transition failed",
			zap.Int("order_id", orderID),
			zap.String("target", string(target)),
			zap.Error(err))
		return nil, err
	}
	return updated, nil
}

func (s *Service) GetOrder(ctx context.Context, actor domain.Identity, orderID int) (*domain.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		zap.L().Error("failed to get order", zap.Int("order_id", orderID), zap.Error(err))
		return nil, err
	}
	if order == nil || !order.OwnedBy(actor) {
		return nil, domain.ErrOrderNotFound
	}
	if order.Lines, err = s.repo.FindLines(ctx, orderID); err != nil {
		zap.L().Error("failed to get order lines", zap.Int("order_id", orderID), zap.Error(err))
		return nil, err
	}
	return order, nil
}

// ListOrders returns the actor's orders, newest first. An empty status lists all of them.
func (s *Service) ListOrders(ctx context.Context, actor domain.Identity, status domain.OrderStatus) ([]domain.Order, error) {
	filter := domain.OrderFilter{Status: status}
	switch actor.Role {
	case domain.RoleCustomer:
		filter.CustomerID = actor.UserID
	case domain.RoleRestaurant:
		filter.RestaurantID = actor.UserID
	default:
		return nil, domain.ErrForbidden
	}

	orders, err := s.repo.List(ctx, filter)
	if err != nil {
		zap.L().Error("failed to get orders", zap.Error(err))
		return nil, err
	}
	return orders, nil
}

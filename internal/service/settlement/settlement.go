package settlement

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/GlebRadaev/gofood/internal/domain"
	"github.com/GlebRadaev/gofood/internal/pg"
)

//go:generate mockgen -source=settlement.go -destination=mock_settlement.go -package=settlement

type AccountRepo interface {
	LockByOwner(ctx context.Context, ref domain.AccountRef) (*domain.Account, error)
	ApplyPosting(ctx context.Context, posting domain.Posting) (*domain.Account, error)
	InsertPostings(ctx context.Context, orderID int, postings []domain.Posting) error
}

type OrderRepo interface {
	UpdateStatus(ctx context.Context, order *domain.Order, from domain.OrderStatus) error
}

type EventRepo interface {
	Insert(ctx context.Context, event *domain.OrderEvent) error
}

// Engine moves money between ledger accounts as orders are opened and change status.
// Every operation runs in one transaction, joining the caller's when there is one.
type Engine struct {
	accounts  AccountRepo
	orders    OrderRepo
	events    EventRepo
	txManager pg.TXManager
}

func New(accounts AccountRepo, orders OrderRepo, events EventRepo, txManager pg.TXManager) *Engine {
	return &Engine{
		accounts:  accounts,
		orders:    orders,
		events:    events,
		txManager: txManager,
	}
}

// OpenPlan holds the order total on the customer account and credits the platform fee.
func OpenPlan(order *domain.Order) []domain.Posting {
	return []domain.Posting{
		{
			Account:      domain.CustomerAccount(order.CustomerID),
			BalanceDelta: decimal.Zero,
			HeldDelta:    order.TotalAmount,
			Reason:       domain.ReasonHold,
		},
		{
			Account:      domain.PlatformAccount(),
			BalanceDelta: order.PlatformFee,
			HeldDelta:    decimal.Zero,
			Reason:       domain.ReasonPlatformFee,
		},
	}
}

// Plan lists the postings a transition triggers. It has no side effects.
func Plan(order *domain.Order, target domain.OrderStatus) ([]domain.Posting, error) {
	if err := domain.CheckTransition(order.Status, target); err != nil {
		return nil, err
	}
	customer := domain.CustomerAccount(order.CustomerID)

	switch {
	case order.Status == domain.StatusProcessing && target == domain.StatusBeingPrepared:
		return []domain.Posting{
			{
				Account:      customer,
				BalanceDelta: order.TotalAmount.Neg(),
				HeldDelta:    order.TotalAmount.Neg(),
				Reason:       domain.ReasonCapture,
			},
			{
				Account:      domain.RestaurantAccount(order.RestaurantID),
				BalanceDelta: order.RestaurantAmount,
				HeldDelta:    decimal.Zero,
				Reason:       domain.ReasonPayout,
			},
		}, nil
	case order.Status == domain.StatusProcessing && target == domain.StatusCancelled:
		return []domain.Posting{{
			Account:      customer,
			BalanceDelta: decimal.Zero,
			HeldDelta:    order.TotalAmount.Neg(),
			Reason:       domain.ReasonRelease,
		}}, nil
	case order.Status == domain.StatusBeingPrepared && target == domain.StatusCancelled:
		// The platform fee stays with the platform and the restaurant keeps its payout.
		return []domain.Posting{{
			Account:      customer,
			BalanceDelta: order.TotalAmount,
			HeldDelta:    decimal.Zero,
			Reason:       domain.ReasonRefund,
		}}, nil
	default:
		return nil, nil
	}
}

// Open performs the creation postings of a freshly inserted order.
func (e *Engine) Open(ctx context.Context, order *domain.Order) ([]domain.Posting, error) {
	var applied []domain.Posting
	err := e.txManager.Begin(ctx, func(ctx context.Context) error {
		var err error
		applied, err = e.post(ctx, order.ID, OpenPlan(order))
		return err
	})
	if err != nil {
		return nil, err
	}
	return applied, nil
}

// ApplyTransition moves order to target together with its postings, its status write and an outbox event.
// The status write is conditional on the stored status still being order.Status, so a stale order
// fails with domain.ErrInvalidTransition before any account is touched.
func (e *Engine) ApplyTransition(ctx context.Context, order *domain.Order, target domain.OrderStatus) (*domain.Order, []domain.Posting, error) {
	var (
		updated *domain.Order
		applied []domain.Posting
	)
	err := e.txManager.Begin(ctx, func(ctx context.Context) error {
		postings, err := Plan(order, target)
		if err != nil {
			return err
		}

		next := *order
		next.Status = target
		next.CustomerStatus = domain.CustomerStatusFor(target)
		if err := e.orders.UpdateStatus(ctx, &next, order.Status); err != nil {
			return err
		}

		if applied, err = e.post(ctx, order.ID, postings); err != nil {
			return err
		}

		event, err := domain.NewOrderEvent(&next, order.Status)
		if err != nil {
			return err
		}
		if err := e.events.Insert(ctx, event); err != nil {
			return err
		}
		updated = &next
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	zap.L().Info("order settled",
		zap.Int("order_id", order.ID),
		zap.String("from", string(order.Status)),
		zap.String("to", string(target)),
		zap.Int("postings", len(applied)))
	return updated, applied, nil
}

func (e *Engine) post(ctx context.Context, orderID int, postings []domain.Posting) ([]domain.Posting, error) {
	if len(postings) == 0 {
		return nil, nil
	}

	refs := make([]domain.AccountRef, 0, len(postings))
	for _, p := range postings {
		if !slices.Contains(refs, p.Account) {
			refs = append(refs, p.Account)
		}
	}
	slices.SortFunc(refs, compareRefs)

	locked := make(map[domain.AccountRef]*domain.Account, len(refs))
	for _, ref := range refs {
		account, err := e.accounts.LockByOwner(ctx, ref)
		if err != nil {
			return nil, err
		}
		if account == nil {
			zap.L().Error("ledger account missing", zap.String("kind", string(ref.Kind)), zap.Int("owner_id", ref.OwnerID))
			return nil, fmt.Errorf("%w: %s %d", domain.ErrAccountNotFound, ref.Kind, ref.OwnerID)
		}
		locked[ref] = account
	}

	applied := make([]domain.Posting, 0, len(postings))
	for _, p := range postings {
		account := locked[p.Account]
		if err := checkFunds(account, p); err != nil {
			return nil, err
		}
		p.AccountID = account.ID
		next, err := e.accounts.ApplyPosting(ctx, p)
		if err != nil {
			return nil, err
		}
		locked[p.Account] = next
		applied = append(applied, p)
	}

	if err := e.accounts.InsertPostings(ctx, orderID, applied); err != nil {
		return nil, err
	}
	return applied, nil
}

// checkFunds rejects a customer posting that would leave the balance negative or below the held amount.
func checkFunds(account *domain.Account, p domain.Posting) error {
	if account.Kind != domain.AccountCustomer {
		return nil
	}
	balance := account.Balance.Add(p.BalanceDelta)
	held := account.Held.Add(p.HeldDelta)
	if balance.IsNegative() || balance.LessThan(held) {
		return fmt.Errorf("%w: account %d has %s available", domain.ErrInsufficientBalance, account.ID, account.Available().StringFixed(domain.MoneyPlaces))
	}
	return nil
}

func compareRefs(a, b domain.AccountRef) int {
	if c := cmp.Compare(a.Kind, b.Kind); c != 0 {
		return c
	}
	return cmp.Compare(a.OwnerID, b.OwnerID)
}

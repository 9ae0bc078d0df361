package balanceservice

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/GlebRadaev/gofood/internal/domain"
)

//go:generate mockgen -source=balanceservice.go -destination=mock_balanceservice.go -package=balanceservice

type AccountRepo interface {
	GetByOwner(ctx context.Context, ref domain.AccountRef) (*domain.Account, error)
	Create(ctx context.Context, ref domain.AccountRef, initial decimal.Decimal) (*domain.Account, error)
}

type Service struct {
	accounts AccountRepo
}

func New(accounts AccountRepo) *Service {
	return &Service{
		accounts: accounts,
	}
}

func (s *Service) GetBalance(ctx context.Context, actor domain.Identity) (*domain.Account, error) {
	ref := domain.AccountRef{Kind: domain.AccountKindFor(actor.Role), OwnerID: actor.UserID}
	account, err := s.accounts.GetByOwner(ctx, ref)
	if err != nil {
		zap.L().Error("failed to get balance", zap.Error(err))
		return nil, err
	}
	if account == nil {
		zap.L().Error("user has no ledger account", zap.Int("user_id", actor.UserID))
		return nil, fmt.Errorf("%w: %s %d", domain.ErrAccountNotFound, ref.Kind, ref.OwnerID)
	}
	return account, nil
}

// OpenAccount creates the ledger account of a newly registered user.
func (s *Service) OpenAccount(ctx context.Context, user *domain.User, initial decimal.Decimal) (*domain.Account, error) {
	ref := domain.AccountRef{Kind: domain.AccountKindFor(user.Role), OwnerID: user.ID}
	account, err := s.accounts.Create(ctx, ref, initial)
	if err != nil {
		zap.L().Error("failed to create account", zap.Int("user_id", user.ID), zap.Error(err))
		return nil, err
	}
	return account, nil
}

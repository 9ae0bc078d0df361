package accountrepo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
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

const accountColumns = `id, kind, owner_id, balance_cents, held_cents, updated_at`

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var (
		account            domain.Account
		kind               string
		balanceCents, held int64
		updatedAt          time.Time
	)
	if err := row.Scan(&account.ID, &kind, &account.OwnerID, &balanceCents, &held, &updatedAt); err != nil {
		return nil, err
	}
	account.Kind = domain.AccountKind(kind)
	account.Balance = domain.FromCents(balanceCents)
	account.Held = domain.FromCents(held)
	account.UpdatedAt = updatedAt
	return &account, nil
}

func (r *Repository) Create(ctx context.Context, ref domain.AccountRef, initial decimal.Decimal) (*domain.Account, error) {
	query := `
        INSERT INTO accounts (kind, owner_id, balance_cents, held_cents)
        VALUES ($1, $2, $3, 0)
        RETURNING ` + accountColumns
	account, err := scanAccount(r.db.QueryRow(ctx, query, string(ref.Kind), ref.OwnerID, domain.ToCents(initial)))
	if err != nil {
		zap.L().Error("failed to create account", zap.Error(err))
		return nil, err
	}
	return account, nil
}

// GetByOwner returns nil without error when the account does not exist.
func (r *Repository) GetByOwner(ctx context.Context, ref domain.AccountRef) (*domain.Account, error) {
	query := `
        SELECT ` + accountColumns + `
        FROM accounts
        WHERE kind = $1 AND owner_id = $2
    `
	account, err := scanAccount(r.db.QueryRow(ctx, query, string(ref.Kind), ref.OwnerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("failed to get account", zap.Error(err))
		return nil, err
	}
	return account, nil
}

// LockByOwner is GetByOwner with a row lock held until the surrounding transaction ends.
func (r *Repository) LockByOwner(ctx context.Context, ref domain.AccountRef) (*domain.Account, error) {
	query := `
        SELECT ` + accountColumns + `
        FROM accounts
        WHERE kind = $1 AND owner_id = $2
        FOR UPDATE
    `
	account, err := scanAccount(r.db.QueryRow(ctx, query, string(ref.Kind), ref.OwnerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("failed to lock account", zap.Error(err))
		return nil, err
	}
	return account, nil
}

func (r *Repository) ApplyPosting(ctx context.Context, posting domain.Posting) (*domain.Account, error) {
	query := `
        UPDATE accounts
        SET balance_cents = balance_cents + $1, held_cents = held_cents + $2, updated_at = NOW()
        WHERE id = $3
        RETURNING ` + accountColumns
	row := r.db.QueryRow(ctx, query, domain.ToCents(posting.BalanceDelta), domain.ToCents(posting.HeldDelta), posting.AccountID)
	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		zap.L().Error("failed to apply posting", zap.Int("account_id", posting.AccountID), zap.Error(err))
		return nil, err
	}
	return account, nil
}

func (r *Repository) InsertPostings(ctx context.Context, orderID int, postings []domain.Posting) error {
	query := `
        INSERT INTO ledger_postings (account_id, order_id, balance_delta, held_delta, reason)
        VALUES ($1, $2, $3, $4, $5)
    `
	for _, p := range postings {
		_, err := r.db.Exec(ctx, query, p.AccountID, orderID, domain.ToCents(p.BalanceDelta), domain.ToCents(p.HeldDelta), string(p.Reason))
		if err != nil {
			zap.L().Error("failed to insert ledger posting", zap.Int("order_id", orderID), zap.Error(err))
			return err
		}
	}
	return nil
}

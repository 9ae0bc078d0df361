package pg

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/GlebRadaev/gofood/internal/domain"
)

func TestMapConflict(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		conflicted bool
	}{
		{name: "Serialization failure", err: &pgconn.PgError{Code: "40001"}, conflicted: true},
		{name: "Deadlock", err: &pgconn.PgError{Code: "40P01"}, conflicted: true},
		{name: "Lock not available", err: fmt.Errorf("commit tx: %w", &pgconn.PgError{Code: "55P03"}), conflicted: true},
		{name: "Check violation", err: &pgconn.PgError{Code: "23514"}},
		{name: "Business error", err: domain.ErrEmptyCart},
		{name: "Plain error", err: errors.New("boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := MapConflict(tt.err)
			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, tt.conflicted, errors.Is(err, domain.ErrConcurrentUpdate))
		})
	}
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("duplicate")))
}

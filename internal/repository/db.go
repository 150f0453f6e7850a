package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgUniqueViolationCode = "23505"

// txBeginner implements TxBeginner on top of a pgx pool.
type txBeginner struct {
	pool *pgxpool.Pool
}

// NewTxBeginner creates a TxBeginner backed by the given pool.
func NewTxBeginner(pool *pgxpool.Pool) TxBeginner {
	return &txBeginner{pool: pool}
}

func (b *txBeginner) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := b.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// translateUnique maps a PostgreSQL unique violation onto
// ErrUniqueViolation so services can treat it as a state conflict.
func translateUnique(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolationCode {
		return fmt.Errorf("%w: %s", ErrUniqueViolation, pgErr.ConstraintName)
	}
	return err
}

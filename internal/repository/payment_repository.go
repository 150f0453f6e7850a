package repository

import (
	"context"
	"errors"
	"fmt"

	"jalai-market/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const paymentColumns = `id, client_id, order_id, amount, method, status, transaction_id,
	phone_number, provider, description, created_at, updated_at`

// paymentRepository implements PaymentRepository using PostgreSQL.
type paymentRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPaymentRepository creates a new PostgreSQL-backed payment repository.
func NewPaymentRepository(pool *pgxpool.Pool, logger zerolog.Logger) PaymentRepository {
	return &paymentRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "payment").Logger(),
	}
}

func (r *paymentRepository) Create(ctx context.Context, p *model.Payment) error {
	query := `
		INSERT INTO payments (id, client_id, order_id, amount, method, status, transaction_id,
			phone_number, provider, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.pool.Exec(ctx, query,
		p.ID, p.ClientID, p.OrderID, p.Amount, p.Method, p.Status, p.TransactionID,
		p.PhoneNumber, p.Provider, p.Description, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if translated := translateUnique(err); errors.Is(translated, ErrUniqueViolation) {
			// The partial unique index on order_id caught a second live
			// payment for the same order.
			return translated
		}
		r.logger.Error().Err(err).Str("payment_id", p.ID.String()).Msg("failed to create payment")
		return fmt.Errorf("failed to create payment: %w", err)
	}

	return nil
}

func (r *paymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`

	p, err := scanPayment(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("payment_id", id.String()).Msg("failed to query payment")
		return nil, fmt.Errorf("failed to query payment: %w", err)
	}

	return p, nil
}

func (r *paymentRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1 FOR UPDATE`

	p, err := scanPayment(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to lock payment: %w", err)
	}

	return p, nil
}

func (r *paymentRepository) GetLiveByOrderID(ctx context.Context, orderID uuid.UUID) (*model.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE order_id = $1 AND status <> $2
	`

	p, err := scanPayment(r.pool.QueryRow(ctx, query, orderID, model.PaymentStatusCancelled))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to query order payment")
		return nil, fmt.Errorf("failed to query order payment: %w", err)
	}

	return p, nil
}

func (r *paymentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.PaymentStatus) error {
	query := `UPDATE payments SET status = $2, updated_at = NOW() WHERE id = $1`

	_, err := r.pool.Exec(ctx, query, id, status)
	if err != nil {
		r.logger.Error().Err(err).Str("payment_id", id.String()).Msg("failed to update payment status")
		return fmt.Errorf("failed to update payment status: %w", err)
	}

	return nil
}

func (r *paymentRepository) UpdateStatusTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.PaymentStatus) error {
	query := `UPDATE payments SET status = $2, updated_at = NOW() WHERE id = $1`

	if _, err := tx.Exec(ctx, query, id, status); err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}

	return nil
}

func (r *paymentRepository) SetProviderResult(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.PaymentStatus, transactionID string) error {
	query := `
		UPDATE payments
		SET status = $2, transaction_id = $3, updated_at = NOW()
		WHERE id = $1
	`

	if _, err := tx.Exec(ctx, query, id, status, transactionID); err != nil {
		return fmt.Errorf("failed to record provider result: %w", err)
	}

	return nil
}

func (r *paymentRepository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]model.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE client_id = $1 ORDER BY created_at DESC`
	return r.queryPayments(ctx, query, clientID)
}

func (r *paymentRepository) ListByStatus(ctx context.Context, status model.PaymentStatus) ([]model.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE status = $1 ORDER BY created_at DESC`
	return r.queryPayments(ctx, query, status)
}

func (r *paymentRepository) queryPayments(ctx context.Context, query string, args ...any) ([]model.Payment, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query payments")
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	payments := []model.Payment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payments: %w", err)
	}

	return payments, nil
}

func scanPayment(row pgx.Row) (*model.Payment, error) {
	var p model.Payment
	err := row.Scan(&p.ID, &p.ClientID, &p.OrderID, &p.Amount, &p.Method, &p.Status,
		&p.TransactionID, &p.PhoneNumber, &p.Provider, &p.Description, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

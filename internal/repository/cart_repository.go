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
	"github.com/shopspring/decimal"
)

// cartRepository implements CartRepository using PostgreSQL.
type cartRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCartRepository creates a new PostgreSQL-backed cart repository.
func NewCartRepository(pool *pgxpool.Pool, logger zerolog.Logger) CartRepository {
	return &cartRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "cart").Logger(),
	}
}

func (r *cartRepository) AddOrIncrement(ctx context.Context, line *model.CartLine) (*model.CartLine, error) {
	// Single-statement upsert keyed on (client_id, product_id). On repeat
	// adds the quantity is incremented and the originally snapshotted unit
	// price kept.
	query := `
		INSERT INTO cart_items (id, client_id, product_id, quantity, unit_price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (client_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
		RETURNING id, client_id, product_id, quantity, unit_price, created_at
	`

	var result model.CartLine
	err := r.pool.QueryRow(ctx, query,
		line.ID, line.ClientID, line.ProductID, line.Quantity, line.UnitPrice, line.CreatedAt,
	).Scan(&result.ID, &result.ClientID, &result.ProductID, &result.Quantity, &result.UnitPrice, &result.CreatedAt)
	if err != nil {
		r.logger.Error().Err(err).
			Str("client_id", line.ClientID.String()).
			Str("product_id", line.ProductID.String()).
			Msg("failed to upsert cart line")
		return nil, fmt.Errorf("failed to upsert cart line: %w", err)
	}

	return &result, nil
}

func (r *cartRepository) SetQuantity(ctx context.Context, clientID, productID uuid.UUID, quantity int) (bool, error) {
	query := `
		UPDATE cart_items
		SET quantity = $3
		WHERE client_id = $1 AND product_id = $2
	`

	tag, err := r.pool.Exec(ctx, query, clientID, productID, quantity)
	if err != nil {
		r.logger.Error().Err(err).
			Str("client_id", clientID.String()).
			Str("product_id", productID.String()).
			Msg("failed to set cart line quantity")
		return false, fmt.Errorf("failed to set cart line quantity: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (r *cartRepository) Remove(ctx context.Context, clientID, productID uuid.UUID) (bool, error) {
	query := `DELETE FROM cart_items WHERE client_id = $1 AND product_id = $2`

	tag, err := r.pool.Exec(ctx, query, clientID, productID)
	if err != nil {
		r.logger.Error().Err(err).
			Str("client_id", clientID.String()).
			Str("product_id", productID.String()).
			Msg("failed to remove cart line")
		return false, fmt.Errorf("failed to remove cart line: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (r *cartRepository) Clear(ctx context.Context, clientID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE client_id = $1`, clientID)
	if err != nil {
		r.logger.Error().Err(err).Str("client_id", clientID.String()).Msg("failed to clear cart")
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

func (r *cartRepository) DeleteLinesTx(ctx context.Context, tx pgx.Tx, lineIDs []uuid.UUID) error {
	if len(lineIDs) == 0 {
		return nil
	}
	_, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE id = ANY($1)`, lineIDs)
	if err != nil {
		return fmt.Errorf("failed to delete cart lines: %w", err)
	}
	return nil
}

func (r *cartRepository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]model.CartLine, error) {
	query := `
		SELECT id, client_id, product_id, quantity, unit_price, created_at
		FROM cart_items
		WHERE client_id = $1
		ORDER BY created_at
	`

	rows, err := r.pool.Query(ctx, query, clientID)
	if err != nil {
		r.logger.Error().Err(err).Str("client_id", clientID.String()).Msg("failed to query cart lines")
		return nil, fmt.Errorf("failed to query cart lines: %w", err)
	}
	defer rows.Close()

	return scanCartLines(rows)
}

func (r *cartRepository) ListForUpdate(ctx context.Context, tx pgx.Tx, clientID uuid.UUID) ([]model.CartLine, error) {
	query := `
		SELECT id, client_id, product_id, quantity, unit_price, created_at
		FROM cart_items
		WHERE client_id = $1
		ORDER BY created_at
		FOR UPDATE
	`

	rows, err := tx.Query(ctx, query, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock cart lines: %w", err)
	}
	defer rows.Close()

	return scanCartLines(rows)
}

func (r *cartRepository) Total(ctx context.Context, clientID uuid.UUID) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(quantity * unit_price), 0)
		FROM cart_items
		WHERE client_id = $1
	`

	var total decimal.Decimal
	if err := r.pool.QueryRow(ctx, query, clientID).Scan(&total); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, nil
		}
		r.logger.Error().Err(err).Str("client_id", clientID.String()).Msg("failed to compute cart total")
		return decimal.Zero, fmt.Errorf("failed to compute cart total: %w", err)
	}

	return total, nil
}

func (r *cartRepository) CountItems(ctx context.Context, clientID uuid.UUID) (int64, error) {
	query := `
		SELECT COALESCE(SUM(quantity), 0)
		FROM cart_items
		WHERE client_id = $1
	`

	var count int64
	if err := r.pool.QueryRow(ctx, query, clientID).Scan(&count); err != nil {
		r.logger.Error().Err(err).Str("client_id", clientID.String()).Msg("failed to count cart items")
		return 0, fmt.Errorf("failed to count cart items: %w", err)
	}

	return count, nil
}

func scanCartLines(rows pgx.Rows) ([]model.CartLine, error) {
	lines := []model.CartLine{}
	for rows.Next() {
		var l model.CartLine
		if err := rows.Scan(&l.ID, &l.ClientID, &l.ProductID, &l.Quantity, &l.UnitPrice, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan cart line: %w", err)
		}
		lines = append(lines, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cart lines: %w", err)
	}

	return lines, nil
}

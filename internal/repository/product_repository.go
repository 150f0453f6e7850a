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

const productColumns = `id, name, description, price, image_url, is_available, is_approved, is_donated,
	seller_id, category_id, approved_by, created_at, updated_at`

// productRepository implements ProductRepository using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

func (r *productRepository) Create(ctx context.Context, p *model.Product) error {
	query := `
		INSERT INTO products (id, name, description, price, image_url, is_available, is_approved,
			is_donated, seller_id, category_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.pool.Exec(ctx, query,
		p.ID, p.Name, p.Description, p.Price, p.ImageURL, p.IsAvailable, p.IsApproved,
		p.IsDonated, p.SellerID, p.CategoryID, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", p.ID.String()).Msg("failed to create product")
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	p, err := scanProduct(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	return p, nil
}

func (r *productRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 FOR UPDATE`

	p, err := scanProduct(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to lock product: %w", err)
	}

	return p, nil
}

func (r *productRepository) UpdateContent(ctx context.Context, p *model.Product) (bool, error) {
	// Content edits re-enter the approval gate: the flag and the approver
	// are reset in the same statement.
	query := `
		UPDATE products
		SET name = $2, description = $3, price = $4, image_url = $5, category_id = $6,
			is_approved = FALSE, approved_by = NULL, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, p.ID, p.Name, p.Description, p.Price, p.ImageURL, p.CategoryID)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", p.ID.String()).Msg("failed to update product")
		return false, fmt.Errorf("failed to update product: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (r *productRepository) Approve(ctx context.Context, productID, adminID uuid.UUID) (bool, error) {
	// Guarded update: only a pending, non-donated product can be approved,
	// so two concurrent admin actions cannot both win.
	query := `
		UPDATE products
		SET is_approved = TRUE, approved_by = $2, updated_at = NOW()
		WHERE id = $1 AND is_approved = FALSE AND is_donated = FALSE
	`

	tag, err := r.pool.Exec(ctx, query, productID, adminID)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", productID.String()).Msg("failed to approve product")
		return false, fmt.Errorf("failed to approve product: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (r *productRepository) Reject(ctx context.Context, productID, adminID uuid.UUID) (bool, error) {
	query := `
		UPDATE products
		SET is_approved = FALSE, is_available = FALSE, approved_by = $2, updated_at = NOW()
		WHERE id = $1 AND is_donated = FALSE
	`

	tag, err := r.pool.Exec(ctx, query, productID, adminID)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", productID.String()).Msg("failed to reject product")
		return false, fmt.Errorf("failed to reject product: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (r *productRepository) SetAvailability(ctx context.Context, id uuid.UUID, available bool) (bool, error) {
	query := `
		UPDATE products
		SET is_available = $2, updated_at = NOW()
		WHERE id = $1 AND is_donated = FALSE
	`

	tag, err := r.pool.Exec(ctx, query, id, available)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to set product availability")
		return false, fmt.Errorf("failed to set product availability: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (r *productRepository) MarkDonated(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE products
		SET is_donated = TRUE, is_available = FALSE, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to mark product donated")
		return false, fmt.Errorf("failed to mark product donated: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (r *productRepository) ListApproved(ctx context.Context, limit, offset int) ([]model.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE is_approved = TRUE AND is_available = TRUE
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	return r.queryProducts(ctx, query, limit, offset)
}

func (r *productRepository) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]model.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE seller_id = $1
		ORDER BY created_at DESC
	`

	return r.queryProducts(ctx, query, sellerID)
}

func (r *productRepository) SearchByName(ctx context.Context, name string, limit, offset int) ([]model.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE is_approved = TRUE AND is_available = TRUE AND name ILIKE '%' || $1 || '%'
		ORDER BY name
		LIMIT $2 OFFSET $3
	`

	return r.queryProducts(ctx, query, name, limit, offset)
}

func (r *productRepository) ListByPriceRange(ctx context.Context, min, max decimal.Decimal, limit, offset int) ([]model.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE is_approved = TRUE AND is_available = TRUE AND price >= $1 AND price <= $2
		ORDER BY price
		LIMIT $3 OFFSET $4
	`

	return r.queryProducts(ctx, query, min, max, limit, offset)
}

func (r *productRepository) CategoryExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		r.logger.Error().Err(err).Str("category_id", id.String()).Msg("failed to check category existence")
		return false, fmt.Errorf("failed to check category existence: %w", err)
	}

	return exists, nil
}

func (r *productRepository) queryProducts(ctx context.Context, query string, args ...any) ([]model.Product, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

func scanProduct(row pgx.Row) (*model.Product, error) {
	var p model.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.ImageURL, &p.IsAvailable, &p.IsApproved,
		&p.IsDonated, &p.SellerID, &p.CategoryID, &p.ApprovedBy, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

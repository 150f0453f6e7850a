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

// actorRepository implements ActorRepository using PostgreSQL.
type actorRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewActorRepository creates a new PostgreSQL-backed actor repository.
func NewActorRepository(pool *pgxpool.Pool, logger zerolog.Logger) ActorRepository {
	return &actorRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "actor").Logger(),
	}
}

func (r *actorRepository) GetClient(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	query := `
		SELECT id, name, email, active, created_at
		FROM clients
		WHERE id = $1
	`

	var c model.Client
	err := r.pool.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name, &c.Email, &c.Active, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("client_id", id.String()).Msg("failed to query client")
		return nil, fmt.Errorf("failed to query client: %w", err)
	}

	return &c, nil
}

func (r *actorRepository) ClientExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.exists(ctx, "clients", id)
}

func (r *actorRepository) GetAdmin(ctx context.Context, id uuid.UUID) (*model.Admin, error) {
	query := `
		SELECT id, name, email, created_at
		FROM admins
		WHERE id = $1
	`

	var a model.Admin
	err := r.pool.QueryRow(ctx, query, id).Scan(&a.ID, &a.Name, &a.Email, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("admin_id", id.String()).Msg("failed to query admin")
		return nil, fmt.Errorf("failed to query admin: %w", err)
	}

	return &a, nil
}

func (r *actorRepository) AdminExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.exists(ctx, "admins", id)
}

func (r *actorRepository) ListAdminIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM admins ORDER BY created_at`)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query admin ids")
		return nil, fmt.Errorf("failed to query admin ids: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan admin id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating admin ids: %w", err)
	}

	return ids, nil
}

func (r *actorRepository) GetOrphanage(ctx context.Context, id uuid.UUID) (*model.Orphanage, error) {
	query := `
		SELECT id, name, email, location, is_approved, approved_by, created_at
		FROM orphanages
		WHERE id = $1
	`

	var o model.Orphanage
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&o.ID, &o.Name, &o.Email, &o.Location, &o.IsApproved, &o.ApprovedBy, &o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("orphanage_id", id.String()).Msg("failed to query orphanage")
		return nil, fmt.Errorf("failed to query orphanage: %w", err)
	}

	return &o, nil
}

func (r *actorRepository) OrphanageExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.exists(ctx, "orphanages", id)
}

func (r *actorRepository) ApproveOrphanage(ctx context.Context, orphanageID, adminID uuid.UUID) (bool, error) {
	query := `
		UPDATE orphanages
		SET is_approved = TRUE, approved_by = $2
		WHERE id = $1 AND is_approved = FALSE
	`

	tag, err := r.pool.Exec(ctx, query, orphanageID, adminID)
	if err != nil {
		r.logger.Error().Err(err).Str("orphanage_id", orphanageID.String()).Msg("failed to approve orphanage")
		return false, fmt.Errorf("failed to approve orphanage: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (r *actorRepository) RejectOrphanage(ctx context.Context, orphanageID, adminID uuid.UUID) (bool, error) {
	query := `
		UPDATE orphanages
		SET is_approved = FALSE, approved_by = $2
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, orphanageID, adminID)
	if err != nil {
		r.logger.Error().Err(err).Str("orphanage_id", orphanageID.String()).Msg("failed to reject orphanage")
		return false, fmt.Errorf("failed to reject orphanage: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (r *actorRepository) exists(ctx context.Context, table string, id uuid.UUID) (bool, error) {
	// table is always one of our own constants, never caller input.
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE id = $1)`, table)

	var exists bool
	if err := r.pool.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		r.logger.Error().Err(err).Str("table", table).Str("id", id.String()).Msg("failed to check existence")
		return false, fmt.Errorf("failed to check %s existence: %w", table, err)
	}

	return exists, nil
}

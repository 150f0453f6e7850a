package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"jalai-market/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const donationColumns = `id, client_id, orphanage_id, donation_type, status, is_confirmed,
	cash_amount, item_description, appointment_date, created_at, updated_at`

// donationRepository implements DonationRepository using PostgreSQL.
type donationRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewDonationRepository creates a new PostgreSQL-backed donation repository.
func NewDonationRepository(pool *pgxpool.Pool, logger zerolog.Logger) DonationRepository {
	return &donationRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "donation").Logger(),
	}
}

func (r *donationRepository) Create(ctx context.Context, d *model.Donation) error {
	query := `
		INSERT INTO donations (id, client_id, orphanage_id, donation_type, status, is_confirmed,
			cash_amount, item_description, appointment_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	var cash any
	if d.CashAmount != nil {
		cash = *d.CashAmount
	}

	_, err := r.pool.Exec(ctx, query,
		d.ID, d.ClientID, d.OrphanageID, d.Type, d.Status, d.IsConfirmed,
		cash, d.ItemDescription, d.AppointmentDate, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("donation_id", d.ID.String()).Msg("failed to create donation")
		return fmt.Errorf("failed to create donation: %w", err)
	}

	return nil
}

func (r *donationRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Donation, error) {
	query := `SELECT ` + donationColumns + ` FROM donations WHERE id = $1`

	d, err := scanDonation(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("donation_id", id.String()).Msg("failed to query donation")
		return nil, fmt.Errorf("failed to query donation: %w", err)
	}

	return d, nil
}

func (r *donationRepository) UpdateStatusFrom(ctx context.Context, id uuid.UUID, from []model.DonationStatus, to model.DonationStatus, confirmed bool) (bool, error) {
	// Guarded update so two concurrent transitions cannot both apply.
	query := `
		UPDATE donations
		SET status = $2, is_confirmed = $3, updated_at = NOW()
		WHERE id = $1 AND status = ANY($4)
	`

	states := make([]string, len(from))
	for i, s := range from {
		states[i] = string(s)
	}

	tag, err := r.pool.Exec(ctx, query, id, to, confirmed, states)
	if err != nil {
		r.logger.Error().Err(err).Str("donation_id", id.String()).Msg("failed to update donation status")
		return false, fmt.Errorf("failed to update donation status: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (r *donationRepository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]model.Donation, error) {
	query := `SELECT ` + donationColumns + ` FROM donations WHERE client_id = $1 ORDER BY created_at DESC`
	return r.queryDonations(ctx, query, clientID)
}

func (r *donationRepository) ListByOrphanage(ctx context.Context, orphanageID uuid.UUID) ([]model.Donation, error) {
	query := `SELECT ` + donationColumns + ` FROM donations WHERE orphanage_id = $1 ORDER BY created_at DESC`
	return r.queryDonations(ctx, query, orphanageID)
}

func (r *donationRepository) ListByStatus(ctx context.Context, status model.DonationStatus) ([]model.Donation, error) {
	query := `SELECT ` + donationColumns + ` FROM donations WHERE status = $1 ORDER BY created_at DESC`
	return r.queryDonations(ctx, query, status)
}

func (r *donationRepository) ListScheduledBetween(ctx context.Context, from, to time.Time) ([]model.Donation, error) {
	query := `
		SELECT ` + donationColumns + `
		FROM donations
		WHERE appointment_date >= $1 AND appointment_date < $2
		ORDER BY appointment_date
	`
	return r.queryDonations(ctx, query, from, to)
}

func (r *donationRepository) TotalCashForOrphanage(ctx context.Context, orphanageID uuid.UUID) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(cash_amount), 0)
		FROM donations
		WHERE orphanage_id = $1 AND status = $2 AND donation_type IN ($3, $4)
	`

	var total decimal.Decimal
	err := r.pool.QueryRow(ctx, query, orphanageID,
		model.DonationStatusCompleted, model.DonationTypeCash, model.DonationTypeBoth).Scan(&total)
	if err != nil {
		r.logger.Error().Err(err).Str("orphanage_id", orphanageID.String()).Msg("failed to compute orphanage cash total")
		return decimal.Zero, fmt.Errorf("failed to compute orphanage cash total: %w", err)
	}

	return total, nil
}

func (r *donationRepository) TotalCashByClient(ctx context.Context, clientID uuid.UUID) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(cash_amount), 0)
		FROM donations
		WHERE client_id = $1 AND status = $2 AND donation_type IN ($3, $4)
	`

	var total decimal.Decimal
	err := r.pool.QueryRow(ctx, query, clientID,
		model.DonationStatusCompleted, model.DonationTypeCash, model.DonationTypeBoth).Scan(&total)
	if err != nil {
		r.logger.Error().Err(err).Str("client_id", clientID.String()).Msg("failed to compute client cash total")
		return decimal.Zero, fmt.Errorf("failed to compute client cash total: %w", err)
	}

	return total, nil
}

func (r *donationRepository) queryDonations(ctx context.Context, query string, args ...any) ([]model.Donation, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query donations")
		return nil, fmt.Errorf("failed to query donations: %w", err)
	}
	defer rows.Close()

	donations := []model.Donation{}
	for rows.Next() {
		d, err := scanDonation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan donation: %w", err)
		}
		donations = append(donations, *d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating donations: %w", err)
	}

	return donations, nil
}

func scanDonation(row pgx.Row) (*model.Donation, error) {
	var d model.Donation
	var cash decimal.NullDecimal
	err := row.Scan(&d.ID, &d.ClientID, &d.OrphanageID, &d.Type, &d.Status, &d.IsConfirmed,
		&cash, &d.ItemDescription, &d.AppointmentDate, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if cash.Valid {
		d.CashAmount = &cash.Decimal
	}
	return &d, nil
}

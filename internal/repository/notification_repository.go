package repository

import (
	"context"
	"fmt"
	"time"

	"jalai-market/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const notificationColumns = `id, title, message, type, is_read, is_sent,
	client_id, admin_id, orphanage_id, related_id, related_type, created_at`

// notificationRepository implements NotificationRepository using PostgreSQL.
type notificationRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewNotificationRepository creates a new PostgreSQL-backed notification repository.
func NewNotificationRepository(pool *pgxpool.Pool, logger zerolog.Logger) NotificationRepository {
	return &notificationRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "notification").Logger(),
	}
}

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) error {
	query := `
		INSERT INTO notifications (id, title, message, type, is_read, is_sent,
			client_id, admin_id, orphanage_id, related_id, related_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.pool.Exec(ctx, query,
		n.ID, n.Title, n.Message, n.Type, n.IsRead, n.IsSent,
		n.ClientID, n.AdminID, n.OrphanageID, n.RelatedID, n.RelatedType, n.CreatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("notification_id", n.ID.String()).Msg("failed to create notification")
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}

func (r *notificationRepository) ListForClient(ctx context.Context, clientID uuid.UUID, unreadOnly bool) ([]model.Notification, error) {
	return r.listFor(ctx, "client_id", clientID, unreadOnly)
}

func (r *notificationRepository) ListForAdmin(ctx context.Context, adminID uuid.UUID, unreadOnly bool) ([]model.Notification, error) {
	return r.listFor(ctx, "admin_id", adminID, unreadOnly)
}

func (r *notificationRepository) ListForOrphanage(ctx context.Context, orphanageID uuid.UUID, unreadOnly bool) ([]model.Notification, error) {
	return r.listFor(ctx, "orphanage_id", orphanageID, unreadOnly)
}

func (r *notificationRepository) MarkRead(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE notifications SET is_read = TRUE WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("notification_id", id.String()).Msg("failed to mark notification read")
		return false, fmt.Errorf("failed to mark notification read: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (r *notificationRepository) MarkAllReadForClient(ctx context.Context, clientID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE client_id = $1 AND is_read = FALSE`, clientID)
	if err != nil {
		r.logger.Error().Err(err).Str("client_id", clientID.String()).Msg("failed to mark notifications read")
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}

	return nil
}

func (r *notificationRepository) DeleteReadOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM notifications WHERE is_read = TRUE AND created_at < $1`, cutoff)
	if err != nil {
		r.logger.Error().Err(err).Time("cutoff", cutoff).Msg("failed to sweep notifications")
		return 0, fmt.Errorf("failed to sweep notifications: %w", err)
	}

	return tag.RowsAffected(), nil
}

func (r *notificationRepository) listFor(ctx context.Context, column string, id uuid.UUID, unreadOnly bool) ([]model.Notification, error) {
	// column is one of our own constants, never caller input.
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE ` + column + ` = $1`
	if unreadOnly {
		query += ` AND is_read = FALSE`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		r.logger.Error().Err(err).Str("recipient", id.String()).Msg("failed to query notifications")
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	notifications := []model.Notification{}
	for rows.Next() {
		var n model.Notification
		err := rows.Scan(&n.ID, &n.Title, &n.Message, &n.Type, &n.IsRead, &n.IsSent,
			&n.ClientID, &n.AdminID, &n.OrphanageID, &n.RelatedID, &n.RelatedType, &n.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notifications: %w", err)
	}

	return notifications, nil
}

package service

import (
	"context"
	"time"

	"jalai-market/internal/model"
	"jalai-market/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type notificationService struct {
	notificationRepo repository.NotificationRepository
	actorRepo        repository.ActorRepository
	retention        time.Duration
	sweepInterval    time.Duration
	logger           zerolog.Logger
}

// NewNotificationService creates a notification service. retention controls
// how long read notifications are kept before the sweep removes them.
func NewNotificationService(
	notificationRepo repository.NotificationRepository,
	actorRepo repository.ActorRepository,
	retention time.Duration,
	sweepInterval time.Duration,
	logger zerolog.Logger,
) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		actorRepo:        actorRepo,
		retention:        retention,
		sweepInterval:    sweepInterval,
		logger:           logger.With().Str("service", "notification").Logger(),
	}
}

func (s *notificationService) Notify(ctx context.Context, to model.Recipient, note Note) {
	n := &model.Notification{
		ID:          uuid.New(),
		ClientID:    to.ClientID,
		AdminID:     to.AdminID,
		OrphanageID: to.OrphanageID,
		Title:       note.Title,
		Message:     note.Message,
		Type:        note.Type,
		RelatedID:   note.RelatedID,
		RelatedType: note.RelatedType,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.notificationRepo.Create(ctx, n); err != nil {
		s.logger.Error().Err(err).
			Str("type", note.Type).
			Msg("failed to dispatch notification")
	}
}

func (s *notificationService) NotifyAllAdmins(ctx context.Context, note Note) {
	adminIDs, err := s.actorRepo.ListAdminIDs(ctx)
	if err != nil {
		s.logger.Error().Err(err).
			Str("type", note.Type).
			Msg("failed to list admins for notification fan-out")
		return
	}

	for _, adminID := range adminIDs {
		s.Notify(ctx, model.AdminRecipient(adminID), note)
	}
}

func (s *notificationService) ListForClient(ctx context.Context, clientID uuid.UUID, unreadOnly bool) ([]model.Notification, error) {
	return s.notificationRepo.ListForClient(ctx, clientID, unreadOnly)
}

func (s *notificationService) ListForOrphanage(ctx context.Context, orphanageID uuid.UUID, unreadOnly bool) ([]model.Notification, error) {
	return s.notificationRepo.ListForOrphanage(ctx, orphanageID, unreadOnly)
}

func (s *notificationService) MarkRead(ctx context.Context, id uuid.UUID) error {
	updated, err := s.notificationRepo.MarkRead(ctx, id)
	if err != nil {
		return err
	}
	if !updated {
		return model.NotFoundError("notification %s not found", id)
	}
	return nil
}

func (s *notificationService) MarkAllReadForClient(ctx context.Context, clientID uuid.UUID) error {
	return s.notificationRepo.MarkAllReadForClient(ctx, clientID)
}

func (s *notificationService) SweepOnce(ctx context.Context) (int64, error) {
	cutoff := time.Now().UTC().Add(-s.retention)

	deleted, err := s.notificationRepo.DeleteReadOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		s.logger.Info().Int64("deleted", deleted).Msg("notification retention sweep")
	}
	return deleted, nil
}

func (s *notificationService) RunRetentionSweep(ctx context.Context) {
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	s.logger.Info().
		Dur("interval", s.sweepInterval).
		Dur("retention", s.retention).
		Msg("notification retention sweeper started")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("notification retention sweeper stopped")
			return
		case <-ticker.C:
			if _, err := s.SweepOnce(ctx); err != nil {
				s.logger.Error().Err(err).Msg("notification retention sweep failed")
			}
		}
	}
}

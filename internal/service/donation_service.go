package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"jalai-market/internal/events"
	"jalai-market/internal/model"
	"jalai-market/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type donationService struct {
	donationRepo  repository.DonationRepository
	actorRepo     repository.ActorRepository
	notifications NotificationService
	publisher     events.Publisher
	logger        zerolog.Logger
}

// NewDonationService creates a donation service.
func NewDonationService(
	donationRepo repository.DonationRepository,
	actorRepo repository.ActorRepository,
	notifications NotificationService,
	publisher events.Publisher,
	logger zerolog.Logger,
) DonationService {
	return &donationService{
		donationRepo:  donationRepo,
		actorRepo:     actorRepo,
		notifications: notifications,
		publisher:     publisher,
		logger:        logger.With().Str("service", "donation").Logger(),
	}
}

func (s *donationService) Create(ctx context.Context, req model.CreateDonationRequest) (*model.Donation, error) {
	exists, err := s.actorRepo.ClientExists(ctx, req.ClientID)
	if err != nil {
		return nil, fmt.Errorf("failed to check client: %w", err)
	}
	if !exists {
		return nil, model.NotFoundError("client %s not found", req.ClientID)
	}

	orphanage, err := s.actorRepo.GetOrphanage(ctx, req.OrphanageID)
	if err != nil {
		return nil, fmt.Errorf("failed to get orphanage: %w", err)
	}
	if orphanage == nil {
		return nil, model.NotFoundError("orphanage %s not found", req.OrphanageID)
	}
	if !orphanage.IsApproved {
		return nil, model.ValidationError("orphanage %q is not approved to receive donations", orphanage.Name)
	}

	now := time.Now().UTC()
	donation := &model.Donation{
		ID:              uuid.New(),
		ClientID:        req.ClientID,
		OrphanageID:     req.OrphanageID,
		Type:            req.Type,
		Status:          model.DonationStatusPending,
		CashAmount:      req.CashAmount,
		ItemDescription: req.ItemDescription,
		AppointmentDate: req.AppointmentDate,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := donation.ValidateFields(); err != nil {
		return nil, err
	}

	if err := s.donationRepo.Create(ctx, donation); err != nil {
		return nil, fmt.Errorf("failed to create donation: %w", err)
	}

	s.logger.Info().
		Str("donation_id", donation.ID.String()).
		Str("orphanage_id", donation.OrphanageID.String()).
		Str("type", string(donation.Type)).
		Msg("donation scheduled")

	relatedID := donation.ID
	s.notifications.Notify(ctx, model.OrphanageRecipient(donation.OrphanageID), Note{
		Title:       "New donation",
		Message:     "A donor has scheduled a donation for your orphanage.",
		Type:        model.NotificationDonationStatus,
		RelatedID:   &relatedID,
		RelatedType: "DONATION",
	})
	s.publisher.Publish(ctx, events.TypeDonationScheduled, donation.ID.String(), donation)

	return donation, nil
}

func (s *donationService) Confirm(ctx context.Context, id uuid.UUID) (*model.Donation, error) {
	return s.transition(ctx, id,
		[]model.DonationStatus{model.DonationStatusPending},
		model.DonationStatusConfirmed,
		"Your donation has been confirmed by the orphanage.")
}

func (s *donationService) Start(ctx context.Context, id uuid.UUID) (*model.Donation, error) {
	return s.transition(ctx, id,
		[]model.DonationStatus{model.DonationStatusConfirmed},
		model.DonationStatusInProgress,
		"Your donation is being processed.")
}

func (s *donationService) Complete(ctx context.Context, id uuid.UUID) (*model.Donation, error) {
	return s.transition(ctx, id,
		[]model.DonationStatus{model.DonationStatusConfirmed, model.DonationStatusInProgress},
		model.DonationStatusCompleted,
		"Your donation has been completed. Thank you!")
}

func (s *donationService) Cancel(ctx context.Context, id uuid.UUID) error {
	_, err := s.transition(ctx, id,
		[]model.DonationStatus{model.DonationStatusPending, model.DonationStatusConfirmed, model.DonationStatusInProgress},
		model.DonationStatusCancelled,
		"Your donation has been cancelled.")
	return err
}

// transition applies a guarded status change and notifies the donor. The
// guard runs in the database so concurrent transitions cannot both win.
func (s *donationService) transition(ctx context.Context, id uuid.UUID, from []model.DonationStatus, to model.DonationStatus, message string) (*model.Donation, error) {
	donation, err := s.donationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get donation: %w", err)
	}
	if donation == nil {
		return nil, model.NotFoundError("donation %s not found", id)
	}

	confirmed := to == model.DonationStatusConfirmed || donation.IsConfirmed
	updated, err := s.donationRepo.UpdateStatusFrom(ctx, id, from, to, confirmed)
	if err != nil {
		return nil, fmt.Errorf("failed to update donation status: %w", err)
	}
	if !updated {
		return nil, model.StateConflictError("donation in status %s cannot move to %s", donation.Status, to)
	}
	donation.Status = to
	donation.IsConfirmed = confirmed

	s.logger.Info().
		Str("donation_id", id.String()).
		Str("status", string(to)).
		Msg("donation status updated")

	relatedID := id
	s.notifications.Notify(ctx, model.ClientRecipient(donation.ClientID), Note{
		Title:       "Donation update",
		Message:     message,
		Type:        model.NotificationDonationStatus,
		RelatedID:   &relatedID,
		RelatedType: "DONATION",
	})
	if to == model.DonationStatusCompleted {
		s.notifications.Notify(ctx, model.OrphanageRecipient(donation.OrphanageID), Note{
			Title:       "Donation received",
			Message:     "A donation to your orphanage has been completed.",
			Type:        model.NotificationDonationStatus,
			RelatedID:   &relatedID,
			RelatedType: "DONATION",
		})
	}
	s.publisher.Publish(ctx, events.TypeDonationStatus, id.String(), donation)

	return donation, nil
}

func (s *donationService) GetByID(ctx context.Context, id uuid.UUID) (*model.Donation, error) {
	donation, err := s.donationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get donation: %w", err)
	}
	if donation == nil {
		return nil, model.NotFoundError("donation %s not found", id)
	}
	return donation, nil
}

func (s *donationService) ListByClient(ctx context.Context, clientID uuid.UUID) ([]model.Donation, error) {
	return s.donationRepo.ListByClient(ctx, clientID)
}

func (s *donationService) ListByOrphanage(ctx context.Context, orphanageID uuid.UUID) ([]model.Donation, error) {
	return s.donationRepo.ListByOrphanage(ctx, orphanageID)
}

func (s *donationService) ListScheduledToday(ctx context.Context) ([]model.Donation, error) {
	now := time.Now().UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return s.donationRepo.ListScheduledBetween(ctx, start, start.Add(24*time.Hour))
}

func (s *donationService) ListOverdue(ctx context.Context) ([]model.Donation, error) {
	donations, err := s.donationRepo.ListScheduledBetween(ctx, time.Time{}, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	overdue := make([]model.Donation, 0, len(donations))
	for _, d := range donations {
		if d.Status == model.DonationStatusCompleted || d.Status == model.DonationStatusCancelled {
			continue
		}
		overdue = append(overdue, d)
	}
	return overdue, nil
}

func (s *donationService) ApproveOrphanage(ctx context.Context, orphanageID, adminID uuid.UUID) (*model.Orphanage, error) {
	exists, err := s.actorRepo.AdminExists(ctx, adminID)
	if err != nil {
		return nil, fmt.Errorf("failed to check admin: %w", err)
	}
	if !exists {
		return nil, model.NotFoundError("admin %s not found", adminID)
	}

	approved, err := s.actorRepo.ApproveOrphanage(ctx, orphanageID, adminID)
	if err != nil {
		return nil, fmt.Errorf("failed to approve orphanage: %w", err)
	}
	if !approved {
		orphanage, err := s.actorRepo.GetOrphanage(ctx, orphanageID)
		if err != nil {
			return nil, fmt.Errorf("failed to get orphanage: %w", err)
		}
		if orphanage == nil {
			return nil, model.NotFoundError("orphanage %s not found", orphanageID)
		}
		return nil, model.StateConflictError("orphanage %s is already approved", orphanageID)
	}

	orphanage, err := s.actorRepo.GetOrphanage(ctx, orphanageID)
	if err != nil {
		return nil, fmt.Errorf("failed to get orphanage: %w", err)
	}

	s.logger.Info().
		Str("orphanage_id", orphanageID.String()).
		Str("admin_id", adminID.String()).
		Msg("orphanage approved")

	relatedID := orphanageID
	s.notifications.Notify(ctx, model.OrphanageRecipient(orphanageID), Note{
		Title:       "Registration approved",
		Message:     "Your orphanage has been approved and can now receive donations.",
		Type:        model.NotificationOrphanageReview,
		RelatedID:   &relatedID,
		RelatedType: "ORPHANAGE",
	})

	return orphanage, nil
}

func (s *donationService) RejectOrphanage(ctx context.Context, orphanageID, adminID uuid.UUID, reason string) (*model.Orphanage, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, model.ValidationError("a rejection reason is required")
	}

	exists, err := s.actorRepo.AdminExists(ctx, adminID)
	if err != nil {
		return nil, fmt.Errorf("failed to check admin: %w", err)
	}
	if !exists {
		return nil, model.NotFoundError("admin %s not found", adminID)
	}

	rejected, err := s.actorRepo.RejectOrphanage(ctx, orphanageID, adminID)
	if err != nil {
		return nil, fmt.Errorf("failed to reject orphanage: %w", err)
	}
	if !rejected {
		return nil, model.NotFoundError("orphanage %s not found", orphanageID)
	}

	orphanage, err := s.actorRepo.GetOrphanage(ctx, orphanageID)
	if err != nil {
		return nil, fmt.Errorf("failed to get orphanage: %w", err)
	}

	s.logger.Info().
		Str("orphanage_id", orphanageID.String()).
		Str("admin_id", adminID.String()).
		Msg("orphanage rejected")

	relatedID := orphanageID
	s.notifications.Notify(ctx, model.OrphanageRecipient(orphanageID), Note{
		Title:       "Registration rejected",
		Message:     fmt.Sprintf("Your orphanage registration was rejected: %s", reason),
		Type:        model.NotificationOrphanageReview,
		RelatedID:   &relatedID,
		RelatedType: "ORPHANAGE",
	})

	return orphanage, nil
}

func (s *donationService) TotalCashForOrphanage(ctx context.Context, orphanageID uuid.UUID) (decimal.Decimal, error) {
	return s.donationRepo.TotalCashForOrphanage(ctx, orphanageID)
}

func (s *donationService) TotalCashByClient(ctx context.Context, clientID uuid.UUID) (decimal.Decimal, error) {
	return s.donationRepo.TotalCashByClient(ctx, clientID)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"jalai-market/internal/events"
	"jalai-market/internal/model"
	"jalai-market/internal/momo"
	"jalai-market/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

type paymentService struct {
	txBeginner    repository.TxBeginner
	paymentRepo   repository.PaymentRepository
	orderRepo     repository.OrderRepository
	actorRepo     repository.ActorRepository
	provider      momo.Provider
	chargeTimeout time.Duration
	notifications NotificationService
	publisher     events.Publisher
	logger        zerolog.Logger
}

// NewPaymentService creates a payment service. chargeTimeout bounds every
// call to the mobile-money provider.
func NewPaymentService(
	txBeginner repository.TxBeginner,
	paymentRepo repository.PaymentRepository,
	orderRepo repository.OrderRepository,
	actorRepo repository.ActorRepository,
	provider momo.Provider,
	chargeTimeout time.Duration,
	notifications NotificationService,
	publisher events.Publisher,
	logger zerolog.Logger,
) PaymentService {
	return &paymentService{
		txBeginner:    txBeginner,
		paymentRepo:   paymentRepo,
		orderRepo:     orderRepo,
		actorRepo:     actorRepo,
		provider:      provider,
		chargeTimeout: chargeTimeout,
		notifications: notifications,
		publisher:     publisher,
		logger:        logger.With().Str("service", "payment").Logger(),
	}
}

// generateTransactionID builds an internal transaction reference, e.g.
// TXN_1712345678901_3FA2B1C4.
func generateTransactionID() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("TXN_%d_%s", time.Now().UnixMilli(), suffix)
}

func (s *paymentService) Create(ctx context.Context, req model.CreatePaymentRequest) (*model.Payment, error) {
	payment, err := s.initiate(ctx, req)
	if err != nil {
		return nil, err
	}

	s.notifyPaymentCreated(ctx, payment)
	s.publisher.Publish(ctx, events.TypePaymentCreated, payment.ID.String(), payment)

	return payment, nil
}

// initiate validates the request and persists a PENDING payment.
func (s *paymentService) initiate(ctx context.Context, req model.CreatePaymentRequest) (*model.Payment, error) {
	if !req.Amount.IsPositive() {
		return nil, model.ValidationError("payment amount must be positive")
	}

	switch req.Method {
	case model.PaymentMethodMobileMoney, model.PaymentMethodCash, model.PaymentMethodBankTransfer:
	default:
		return nil, model.ValidationError("unknown payment method %q", req.Method)
	}

	exists, err := s.actorRepo.ClientExists(ctx, req.ClientID)
	if err != nil {
		return nil, fmt.Errorf("failed to check client: %w", err)
	}
	if !exists {
		return nil, model.NotFoundError("client %s not found", req.ClientID)
	}

	if req.OrderID != nil {
		order, err := s.orderRepo.GetByID(ctx, *req.OrderID)
		if err != nil {
			return nil, fmt.Errorf("failed to get order: %w", err)
		}
		if order == nil {
			return nil, model.NotFoundError("order %s not found", *req.OrderID)
		}

		live, err := s.paymentRepo.GetLiveByOrderID(ctx, *req.OrderID)
		if err != nil {
			return nil, fmt.Errorf("failed to check existing payment: %w", err)
		}
		if live != nil {
			return nil, model.StateConflictError("order %s already has a payment in status %s", *req.OrderID, live.Status)
		}
	}

	now := time.Now().UTC()
	payment := &model.Payment{
		ID:            uuid.New(),
		ClientID:      req.ClientID,
		OrderID:       req.OrderID,
		Amount:        req.Amount,
		Method:        req.Method,
		Status:        model.PaymentStatusPending,
		TransactionID: generateTransactionID(),
		PhoneNumber:   req.PhoneNumber,
		Provider:      req.Provider,
		Description:   req.Description,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		// The partial unique index closes the race two concurrent creates
		// can win past the live-payment check above.
		if errors.Is(err, repository.ErrUniqueViolation) && req.OrderID != nil {
			return nil, model.StateConflictError("order %s already has a live payment", *req.OrderID)
		}
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	s.logger.Info().
		Str("payment_id", payment.ID.String()).
		Str("transaction_id", payment.TransactionID).
		Str("method", string(payment.Method)).
		Msg("payment initiated")

	return payment, nil
}

// ProcessMobileMoney initiates a payment and charges the provider under
// the configured timeout. A declined charge fails the payment; a timed-out
// charge leaves it PROCESSING because the provider may still settle it.
func (s *paymentService) ProcessMobileMoney(ctx context.Context, req model.MobileMoneyRequest) (*model.Payment, error) {
	payment, err := s.initiate(ctx, model.CreatePaymentRequest{
		ClientID:    req.ClientID,
		OrderID:     req.OrderID,
		Amount:      req.Amount,
		Method:      model.PaymentMethodMobileMoney,
		PhoneNumber: req.PhoneNumber,
		Provider:    req.Provider,
		Description: fmt.Sprintf("%s mobile money charge to %s", req.Provider, req.PhoneNumber),
	})
	if err != nil {
		return nil, err
	}

	s.notifyPaymentCreated(ctx, payment)
	s.publisher.Publish(ctx, events.TypePaymentCreated, payment.ID.String(), payment)

	if err := s.paymentRepo.UpdateStatus(ctx, payment.ID, model.PaymentStatusProcessing); err != nil {
		return nil, fmt.Errorf("failed to update payment status: %w", err)
	}
	payment.Status = model.PaymentStatusProcessing

	chargeCtx, cancel := context.WithTimeout(ctx, s.chargeTimeout)
	defer cancel()

	result, err := s.provider.Charge(chargeCtx, momo.Charge{
		Provider:    req.Provider,
		PhoneNumber: req.PhoneNumber,
		Amount:      req.Amount,
		Reference:   payment.TransactionID,
	})
	if err != nil {
		// Outcome unknown; the payment stays PROCESSING for
		// reconciliation rather than guessing FAILED.
		s.logger.Warn().Err(err).
			Str("payment_id", payment.ID.String()).
			Msg("mobile money charge did not resolve")
		return payment, model.ExternalServiceError("mobile money provider did not respond in time")
	}

	if !result.Accepted {
		if err := s.paymentRepo.UpdateStatus(ctx, payment.ID, model.PaymentStatusFailed); err != nil {
			return nil, fmt.Errorf("failed to update payment status: %w", err)
		}
		payment.Status = model.PaymentStatusFailed
		return payment, model.ExternalServiceError("mobile money charge declined: %s", result.Reason)
	}

	completed, err := s.settleCharge(ctx, payment.ID, result.TransactionID)
	if err != nil {
		return nil, err
	}

	s.notifyPaymentCompleted(ctx, completed)
	s.publisher.Publish(ctx, events.TypePaymentCompleted, completed.ID.String(), completed)

	return completed, nil
}

// settleCharge records a successful provider charge and advances the linked
// order, all in one transaction.
func (s *paymentService) settleCharge(ctx context.Context, paymentID uuid.UUID, providerTxnID string) (*model.Payment, error) {
	tx, err := s.txBeginner.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	payment, err := s.paymentRepo.GetForUpdate(ctx, tx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock payment: %w", err)
	}
	if payment == nil {
		err = model.NotFoundError("payment %s not found", paymentID)
		return nil, err
	}
	if !payment.Status.CanTransitionTo(model.PaymentStatusCompleted) {
		err = model.StateConflictError("payment in status %s cannot be completed", payment.Status)
		return nil, err
	}

	if err = s.paymentRepo.SetProviderResult(ctx, tx, paymentID, model.PaymentStatusCompleted, providerTxnID); err != nil {
		return nil, fmt.Errorf("failed to record provider result: %w", err)
	}
	payment.Status = model.PaymentStatusCompleted
	payment.TransactionID = providerTxnID

	if err = s.advanceOrderTx(ctx, tx, payment); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info().
		Str("payment_id", paymentID.String()).
		Str("transaction_id", providerTxnID).
		Msg("payment completed")

	return payment, nil
}

// advanceOrderTx moves a PENDING linked order to CONFIRMED inside the
// caller's transaction. Orders already past PENDING are left alone.
func (s *paymentService) advanceOrderTx(ctx context.Context, tx pgx.Tx, payment *model.Payment) error {
	if payment.OrderID == nil {
		return nil
	}

	order, err := s.orderRepo.GetForUpdate(ctx, tx, *payment.OrderID)
	if err != nil {
		return fmt.Errorf("failed to lock order: %w", err)
	}
	if order == nil || order.Status != model.OrderStatusPending {
		return nil
	}

	if err := s.orderRepo.UpdateStatusTx(ctx, tx, order.ID, model.OrderStatusConfirmed); err != nil {
		return fmt.Errorf("failed to confirm order: %w", err)
	}
	return nil
}

func (s *paymentService) Process(ctx context.Context, paymentID uuid.UUID) (*model.Payment, error) {
	payment, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	if payment == nil {
		return nil, model.NotFoundError("payment %s not found", paymentID)
	}
	if !payment.Status.CanTransitionTo(model.PaymentStatusProcessing) {
		return nil, model.StateConflictError("payment in status %s cannot start processing", payment.Status)
	}

	if err := s.paymentRepo.UpdateStatus(ctx, paymentID, model.PaymentStatusProcessing); err != nil {
		return nil, fmt.Errorf("failed to update payment status: %w", err)
	}
	payment.Status = model.PaymentStatusProcessing
	return payment, nil
}

func (s *paymentService) Confirm(ctx context.Context, paymentID uuid.UUID) (*model.Payment, error) {
	tx, err := s.txBeginner.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	payment, err := s.paymentRepo.GetForUpdate(ctx, tx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock payment: %w", err)
	}
	if payment == nil {
		err = model.NotFoundError("payment %s not found", paymentID)
		return nil, err
	}
	if !payment.Status.CanTransitionTo(model.PaymentStatusCompleted) {
		err = model.StateConflictError("payment in status %s cannot be completed", payment.Status)
		return nil, err
	}

	if err = s.paymentRepo.UpdateStatusTx(ctx, tx, paymentID, model.PaymentStatusCompleted); err != nil {
		return nil, fmt.Errorf("failed to update payment status: %w", err)
	}
	payment.Status = model.PaymentStatusCompleted

	if err = s.advanceOrderTx(ctx, tx, payment); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info().Str("payment_id", paymentID.String()).Msg("payment confirmed")

	s.notifyPaymentCompleted(ctx, payment)
	s.publisher.Publish(ctx, events.TypePaymentCompleted, payment.ID.String(), payment)

	return payment, nil
}

func (s *paymentService) Cancel(ctx context.Context, paymentID uuid.UUID) error {
	payment, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return fmt.Errorf("failed to get payment: %w", err)
	}
	if payment == nil {
		return model.NotFoundError("payment %s not found", paymentID)
	}
	if !payment.Status.CanTransitionTo(model.PaymentStatusCancelled) {
		return model.StateConflictError("payment in status %s cannot be cancelled", payment.Status)
	}

	if err := s.paymentRepo.UpdateStatus(ctx, paymentID, model.PaymentStatusCancelled); err != nil {
		return fmt.Errorf("failed to cancel payment: %w", err)
	}

	s.logger.Info().Str("payment_id", paymentID.String()).Msg("payment cancelled")
	return nil
}

func (s *paymentService) Refund(ctx context.Context, paymentID uuid.UUID) error {
	tx, err := s.txBeginner.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	payment, err := s.paymentRepo.GetForUpdate(ctx, tx, paymentID)
	if err != nil {
		return fmt.Errorf("failed to lock payment: %w", err)
	}
	if payment == nil {
		err = model.NotFoundError("payment %s not found", paymentID)
		return err
	}
	if payment.Status != model.PaymentStatusCompleted {
		err = model.StateConflictError("only completed payments can be refunded, payment is %s", payment.Status)
		return err
	}

	if err = s.paymentRepo.UpdateStatusTx(ctx, tx, paymentID, model.PaymentStatusRefunded); err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}

	if payment.OrderID != nil {
		order, lockErr := s.orderRepo.GetForUpdate(ctx, tx, *payment.OrderID)
		if lockErr != nil {
			err = fmt.Errorf("failed to lock order: %w", lockErr)
			return err
		}
		if order != nil {
			if err = s.orderRepo.UpdateStatusTx(ctx, tx, order.ID, model.OrderStatusRefunded); err != nil {
				return fmt.Errorf("failed to refund order: %w", err)
			}
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info().Str("payment_id", paymentID.String()).Msg("payment refunded")

	relatedID := paymentID
	s.notifications.Notify(ctx, model.ClientRecipient(payment.ClientID), Note{
		Title:       "Payment refunded",
		Message:     fmt.Sprintf("Your payment of %s has been refunded.", payment.Amount.StringFixed(2)),
		Type:        model.NotificationPaymentCompleted,
		RelatedID:   &relatedID,
		RelatedType: "PAYMENT",
	})

	return nil
}

func (s *paymentService) GetByID(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	payment, err := s.paymentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	if payment == nil {
		return nil, model.NotFoundError("payment %s not found", id)
	}
	return payment, nil
}

func (s *paymentService) ListByClient(ctx context.Context, clientID uuid.UUID) ([]model.Payment, error) {
	return s.paymentRepo.ListByClient(ctx, clientID)
}

func (s *paymentService) notifyPaymentCreated(ctx context.Context, payment *model.Payment) {
	relatedID := payment.ID
	s.notifications.NotifyAllAdmins(ctx, Note{
		Title:       "New payment",
		Message:     fmt.Sprintf("Payment %s of %s was initiated.", payment.TransactionID, payment.Amount.StringFixed(2)),
		Type:        model.NotificationNewPayment,
		RelatedID:   &relatedID,
		RelatedType: "PAYMENT",
	})
}

func (s *paymentService) notifyPaymentCompleted(ctx context.Context, payment *model.Payment) {
	relatedID := payment.ID
	s.notifications.Notify(ctx, model.ClientRecipient(payment.ClientID), Note{
		Title:       "Payment completed",
		Message:     fmt.Sprintf("Your payment of %s was completed.", payment.Amount.StringFixed(2)),
		Type:        model.NotificationPaymentCompleted,
		RelatedID:   &relatedID,
		RelatedType: "PAYMENT",
	})
}

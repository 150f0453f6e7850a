package service

import (
	"context"
	"fmt"
	"time"

	"jalai-market/internal/events"
	"jalai-market/internal/model"
	"jalai-market/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type orderService struct {
	txBeginner    repository.TxBeginner
	orderRepo     repository.OrderRepository
	cartRepo      repository.CartRepository
	productRepo   repository.ProductRepository
	actorRepo     repository.ActorRepository
	notifications NotificationService
	publisher     events.Publisher
	logger        zerolog.Logger
}

// NewOrderService creates an order service.
func NewOrderService(
	txBeginner repository.TxBeginner,
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	actorRepo repository.ActorRepository,
	notifications NotificationService,
	publisher events.Publisher,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		txBeginner:    txBeginner,
		orderRepo:     orderRepo,
		cartRepo:      cartRepo,
		productRepo:   productRepo,
		actorRepo:     actorRepo,
		notifications: notifications,
		publisher:     publisher,
		logger:        logger.With().Str("service", "order").Logger(),
	}
}

// CreateFromCart runs checkout as a single transaction: the cart lines and
// every referenced product row are locked, revalidated, snapshotted into an
// order, and the cart is cleared. Any failure rolls the whole unit back and
// leaves the cart intact.
func (s *orderService) CreateFromCart(ctx context.Context, clientID uuid.UUID, deliveryDate time.Time) (*model.OrderResponse, error) {
	exists, err := s.actorRepo.ClientExists(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to check client: %w", err)
	}
	if !exists {
		return nil, model.NotFoundError("client %s not found", clientID)
	}

	tx, err := s.txBeginner.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	lines, err := s.cartRepo.ListForUpdate(ctx, tx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock cart items: %w", err)
	}
	if len(lines) == 0 {
		err = model.ErrCartEmpty
		return nil, err
	}

	var sellerID uuid.UUID
	total := decimal.Zero
	items := make([]model.OrderItem, 0, len(lines))

	for i := range lines {
		line := &lines[i]

		var product *model.Product
		product, err = s.productRepo.GetForUpdate(ctx, tx, line.ProductID)
		if err != nil {
			return nil, fmt.Errorf("failed to lock product: %w", err)
		}
		if product == nil {
			err = model.StaleReferenceError("product %s is no longer in the catalogue", line.ProductID)
			return nil, err
		}
		if !product.Purchasable() {
			err = model.StaleReferenceError("product %q is no longer available for purchase", product.Name)
			return nil, err
		}

		if i == 0 {
			sellerID = product.SellerID
		} else if product.SellerID != sellerID {
			err = model.ValidationError("cart mixes products from different sellers; order each seller separately")
			return nil, err
		}

		lineTotal := line.LineTotal()
		total = total.Add(lineTotal)
		items = append(items, model.OrderItem{
			ID:          uuid.New(),
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			LineTotal:   lineTotal,
		})
	}

	now := time.Now().UTC()
	order := &model.Order{
		ID:           uuid.New(),
		ClientID:     clientID,
		SellerID:     sellerID,
		Status:       model.OrderStatusPending,
		TotalAmount:  total,
		DeliveryDate: deliveryDate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for i := range items {
		items[i].OrderID = order.ID
	}

	if err = s.orderRepo.Create(ctx, tx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	if err = s.orderRepo.CreateItems(ctx, tx, items); err != nil {
		return nil, fmt.Errorf("failed to create order items: %w", err)
	}
	lineIDs := make([]uuid.UUID, len(lines))
	for i := range lines {
		lineIDs[i] = lines[i].ID
	}
	if err = s.cartRepo.DeleteLinesTx(ctx, tx, lineIDs); err != nil {
		return nil, fmt.Errorf("failed to delete cart lines: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("client_id", clientID.String()).
		Str("total", total.String()).
		Int("items", len(items)).
		Msg("order created from cart")

	relatedID := order.ID
	s.notifications.Notify(ctx, model.ClientRecipient(clientID), Note{
		Title:       "Order placed",
		Message:     fmt.Sprintf("Your order of %d item(s) totalling %s has been placed.", len(items), total.StringFixed(2)),
		Type:        model.NotificationOrderStatus,
		RelatedID:   &relatedID,
		RelatedType: "ORDER",
	})
	s.publisher.Publish(ctx, events.TypeOrderCreated, order.ID.String(), order)

	return &model.OrderResponse{Order: *order, Items: items}, nil
}

func (s *orderService) GetByID(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, model.NotFoundError("order %s not found", id)
	}

	items, err := s.orderRepo.GetItems(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get order items: %w", err)
	}

	return &model.OrderResponse{Order: *order, Items: items}, nil
}

func (s *orderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, status model.OrderStatus) (*model.Order, error) {
	if !status.Valid() {
		return nil, model.ValidationError("unknown order status %q", status)
	}
	if status == model.OrderStatusRefunded {
		return nil, model.ValidationError("orders become REFUNDED through a payment refund")
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, model.NotFoundError("order %s not found", orderID)
	}

	if !order.Status.CanTransitionTo(status) {
		return nil, model.StateConflictError("order cannot move from %s to %s", order.Status, status)
	}

	if err := s.orderRepo.UpdateStatus(ctx, orderID, status); err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	order.Status = status

	s.logger.Info().
		Str("order_id", orderID.String()).
		Str("status", string(status)).
		Msg("order status updated")

	relatedID := orderID
	s.notifications.Notify(ctx, model.ClientRecipient(order.ClientID), Note{
		Title:       "Order update",
		Message:     fmt.Sprintf("Your order is now %s.", status),
		Type:        model.NotificationOrderStatus,
		RelatedID:   &relatedID,
		RelatedType: "ORDER",
	})
	s.publisher.Publish(ctx, events.TypeOrderStatus, orderID.String(), order)

	return order, nil
}

func (s *orderService) Cancel(ctx context.Context, orderID uuid.UUID) error {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return model.NotFoundError("order %s not found", orderID)
	}
	if !order.Status.CanTransitionTo(model.OrderStatusCancelled) {
		return model.StateConflictError("order in status %s cannot be cancelled", order.Status)
	}

	if err := s.orderRepo.UpdateStatus(ctx, orderID, model.OrderStatusCancelled); err != nil {
		return fmt.Errorf("failed to cancel order: %w", err)
	}

	s.logger.Info().Str("order_id", orderID.String()).Msg("order cancelled")

	relatedID := orderID
	s.notifications.Notify(ctx, model.ClientRecipient(order.ClientID), Note{
		Title:       "Order cancelled",
		Message:     "Your order has been cancelled.",
		Type:        model.NotificationOrderStatus,
		RelatedID:   &relatedID,
		RelatedType: "ORDER",
	})
	s.publisher.Publish(ctx, events.TypeOrderStatus, orderID.String(), order)

	return nil
}

func (s *orderService) Delete(ctx context.Context, orderID, clientID uuid.UUID) error {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return model.NotFoundError("order %s not found", orderID)
	}
	if order.ClientID != clientID {
		return model.ValidationError("order %s does not belong to client %s", orderID, clientID)
	}
	if order.Status != model.OrderStatusPending && order.Status != model.OrderStatusCancelled {
		return model.StateConflictError("order in status %s cannot be deleted", order.Status)
	}

	if err := s.orderRepo.Delete(ctx, orderID); err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}

	s.logger.Info().Str("order_id", orderID.String()).Msg("order deleted")
	return nil
}

func (s *orderService) ListByClient(ctx context.Context, clientID uuid.UUID) ([]model.Order, error) {
	return s.orderRepo.ListByClient(ctx, clientID)
}

func (s *orderService) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]model.Order, error) {
	return s.orderRepo.ListBySeller(ctx, sellerID)
}

func (s *orderService) ListByStatus(ctx context.Context, status model.OrderStatus) ([]model.Order, error) {
	if !status.Valid() {
		return nil, model.ValidationError("unknown order status %q", status)
	}
	return s.orderRepo.ListByStatus(ctx, status)
}

func (s *orderService) TotalSalesForSeller(ctx context.Context, sellerID uuid.UUID) (decimal.Decimal, error) {
	return s.orderRepo.TotalSalesForSeller(ctx, sellerID)
}

func (s *orderService) TotalPurchasesForClient(ctx context.Context, clientID uuid.UUID) (decimal.Decimal, error) {
	return s.orderRepo.TotalPurchasesForClient(ctx, clientID)
}

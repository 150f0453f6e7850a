package service

import (
	"context"
	"fmt"
	"time"

	"jalai-market/internal/model"
	"jalai-market/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	actorRepo   repository.ActorRepository
	logger      zerolog.Logger
}

// NewCartService creates a cart service.
func NewCartService(
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	actorRepo repository.ActorRepository,
	logger zerolog.Logger,
) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		actorRepo:   actorRepo,
		logger:      logger.With().Str("service", "cart").Logger(),
	}
}

func (s *cartService) AddItem(ctx context.Context, clientID, productID uuid.UUID, quantity int) (*model.CartLine, error) {
	if quantity <= 0 {
		return nil, model.ValidationError("quantity must be positive")
	}

	exists, err := s.actorRepo.ClientExists(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to check client: %w", err)
	}
	if !exists {
		return nil, model.NotFoundError("client %s not found", clientID)
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, model.NotFoundError("product %s not found", productID)
	}
	if !product.Purchasable() {
		return nil, model.ValidationError("product %q is not available for purchase", product.Name)
	}

	line := &model.CartLine{
		ID:        uuid.New(),
		ClientID:  clientID,
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: product.Price,
		CreatedAt: time.Now().UTC(),
	}

	// On a repeat add the stored line keeps its original unit price; the
	// price here only seeds the first insert.
	stored, err := s.cartRepo.AddOrIncrement(ctx, line)
	if err != nil {
		return nil, fmt.Errorf("failed to add cart item: %w", err)
	}

	s.logger.Debug().
		Str("client_id", clientID.String()).
		Str("product_id", productID.String()).
		Int("quantity", stored.Quantity).
		Msg("cart item added")

	return stored, nil
}

func (s *cartService) SetQuantity(ctx context.Context, clientID, productID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return model.ValidationError("quantity must be positive")
	}

	updated, err := s.cartRepo.SetQuantity(ctx, clientID, productID, quantity)
	if err != nil {
		return fmt.Errorf("failed to update cart quantity: %w", err)
	}
	if !updated {
		return model.NotFoundError("product %s is not in the cart", productID)
	}
	return nil
}

func (s *cartService) RemoveItem(ctx context.Context, clientID, productID uuid.UUID) error {
	removed, err := s.cartRepo.Remove(ctx, clientID, productID)
	if err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	if !removed {
		return model.NotFoundError("product %s is not in the cart", productID)
	}
	return nil
}

func (s *cartService) Clear(ctx context.Context, clientID uuid.UUID) error {
	if err := s.cartRepo.Clear(ctx, clientID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

func (s *cartService) View(ctx context.Context, clientID uuid.UUID) (*model.CartView, error) {
	lines, err := s.cartRepo.ListByClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart items: %w", err)
	}

	total := decimal.Zero
	for i := range lines {
		total = total.Add(lines[i].LineTotal())
	}

	return &model.CartView{ClientID: clientID, Lines: lines, Total: total}, nil
}

func (s *cartService) Total(ctx context.Context, clientID uuid.UUID) (decimal.Decimal, error) {
	return s.cartRepo.Total(ctx, clientID)
}

func (s *cartService) Count(ctx context.Context, clientID uuid.UUID) (int64, error) {
	return s.cartRepo.CountItems(ctx, clientID)
}

func (s *cartService) ValidateForCheckout(ctx context.Context, clientID uuid.UUID) error {
	lines, err := s.cartRepo.ListByClient(ctx, clientID)
	if err != nil {
		return fmt.Errorf("failed to list cart items: %w", err)
	}
	if len(lines) == 0 {
		return model.ErrCartEmpty
	}

	for i := range lines {
		product, err := s.productRepo.GetByID(ctx, lines[i].ProductID)
		if err != nil {
			return fmt.Errorf("failed to get product: %w", err)
		}
		if product == nil {
			return model.StaleReferenceError("product %s is no longer in the catalogue", lines[i].ProductID)
		}
		if !product.Purchasable() {
			return model.StaleReferenceError("product %q is no longer available for purchase", product.Name)
		}
	}
	return nil
}

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

type catalogService struct {
	productRepo   repository.ProductRepository
	actorRepo     repository.ActorRepository
	notifications NotificationService
	publisher     events.Publisher
	logger        zerolog.Logger
}

// NewCatalogService creates a catalog service.
func NewCatalogService(
	productRepo repository.ProductRepository,
	actorRepo repository.ActorRepository,
	notifications NotificationService,
	publisher events.Publisher,
	logger zerolog.Logger,
) CatalogService {
	return &catalogService{
		productRepo:   productRepo,
		actorRepo:     actorRepo,
		notifications: notifications,
		publisher:     publisher,
		logger:        logger.With().Str("service", "catalog").Logger(),
	}
}

func (s *catalogService) Submit(ctx context.Context, req model.SubmitProductRequest) (*model.Product, error) {
	if !req.Price.IsPositive() {
		return nil, model.ValidationError("product price must be positive")
	}

	exists, err := s.actorRepo.ClientExists(ctx, req.SellerID)
	if err != nil {
		return nil, fmt.Errorf("failed to check seller: %w", err)
	}
	if !exists {
		return nil, model.NotFoundError("seller %s not found", req.SellerID)
	}

	if req.CategoryID != nil {
		exists, err := s.productRepo.CategoryExists(ctx, *req.CategoryID)
		if err != nil {
			return nil, fmt.Errorf("failed to check category: %w", err)
		}
		if !exists {
			return nil, model.NotFoundError("category %s not found", *req.CategoryID)
		}
	}

	now := time.Now().UTC()
	product := &model.Product{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		IsAvailable: true,
		IsApproved:  false,
		IsDonated:   false,
		SellerID:    req.SellerID,
		CategoryID:  req.CategoryID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info().
		Str("product_id", product.ID.String()).
		Str("seller_id", product.SellerID.String()).
		Msg("product submitted for review")

	s.publisher.Publish(ctx, events.TypeProductSubmitted, product.ID.String(), product)

	return product, nil
}

func (s *catalogService) Update(ctx context.Context, productID uuid.UUID, req model.UpdateProductRequest) (*model.Product, error) {
	if !req.Price.IsPositive() {
		return nil, model.ValidationError("product price must be positive")
	}

	if req.CategoryID != nil {
		exists, err := s.productRepo.CategoryExists(ctx, *req.CategoryID)
		if err != nil {
			return nil, fmt.Errorf("failed to check category: %w", err)
		}
		if !exists {
			return nil, model.NotFoundError("category %s not found", *req.CategoryID)
		}
	}

	product := &model.Product{
		ID:          productID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		CategoryID:  req.CategoryID,
	}

	updated, err := s.productRepo.UpdateContent(ctx, product)
	if err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	if !updated {
		return nil, model.NotFoundError("product %s not found", productID)
	}

	// Content edits reset the approval gate, so reload the persisted row.
	fresh, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	s.logger.Info().
		Str("product_id", productID.String()).
		Msg("product updated, approval reset")

	s.publisher.Publish(ctx, events.TypeProductSubmitted, productID.String(), fresh)

	return fresh, nil
}

func (s *catalogService) Approve(ctx context.Context, productID, adminID uuid.UUID) (*model.Product, error) {
	exists, err := s.actorRepo.AdminExists(ctx, adminID)
	if err != nil {
		return nil, fmt.Errorf("failed to check admin: %w", err)
	}
	if !exists {
		return nil, model.NotFoundError("admin %s not found", adminID)
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, model.NotFoundError("product %s not found", productID)
	}

	approved, err := s.productRepo.Approve(ctx, productID, adminID)
	if err != nil {
		return nil, fmt.Errorf("failed to approve product: %w", err)
	}
	if !approved {
		return nil, model.StateConflictError("product %s is already approved", productID)
	}

	fresh, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	s.logger.Info().
		Str("product_id", productID.String()).
		Str("admin_id", adminID.String()).
		Msg("product approved")

	relatedID := productID
	s.notifications.Notify(ctx, model.ClientRecipient(product.SellerID), Note{
		Title:       "Product approved",
		Message:     fmt.Sprintf("Your product %q has been approved and is now listed.", product.Name),
		Type:        model.NotificationProductApproved,
		RelatedID:   &relatedID,
		RelatedType: "PRODUCT",
	})
	s.publisher.Publish(ctx, events.TypeProductReviewed, productID.String(), fresh)

	return fresh, nil
}

func (s *catalogService) Reject(ctx context.Context, productID, adminID uuid.UUID, reason string) (*model.Product, error) {
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

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, model.NotFoundError("product %s not found", productID)
	}

	if _, err := s.productRepo.Reject(ctx, productID, adminID); err != nil {
		return nil, fmt.Errorf("failed to reject product: %w", err)
	}

	fresh, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	s.logger.Info().
		Str("product_id", productID.String()).
		Str("admin_id", adminID.String()).
		Msg("product rejected")

	relatedID := productID
	s.notifications.Notify(ctx, model.ClientRecipient(product.SellerID), Note{
		Title:       "Product rejected",
		Message:     fmt.Sprintf("Your product %q was rejected: %s", product.Name, reason),
		Type:        model.NotificationProductRejected,
		RelatedID:   &relatedID,
		RelatedType: "PRODUCT",
	})
	s.publisher.Publish(ctx, events.TypeProductReviewed, productID.String(), fresh)

	return fresh, nil
}

func (s *catalogService) MarkAvailable(ctx context.Context, productID uuid.UUID) error {
	return s.setAvailability(ctx, productID, true)
}

func (s *catalogService) MarkUnavailable(ctx context.Context, productID uuid.UUID) error {
	return s.setAvailability(ctx, productID, false)
}

func (s *catalogService) setAvailability(ctx context.Context, productID uuid.UUID, available bool) error {
	updated, err := s.productRepo.SetAvailability(ctx, productID, available)
	if err != nil {
		return fmt.Errorf("failed to set product availability: %w", err)
	}
	if !updated {
		return model.NotFoundError("product %s not found", productID)
	}
	return nil
}

func (s *catalogService) MarkDonated(ctx context.Context, productID uuid.UUID) error {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return model.NotFoundError("product %s not found", productID)
	}
	if product.IsDonated {
		return model.StateConflictError("product %s is already donated", productID)
	}

	if _, err := s.productRepo.MarkDonated(ctx, productID); err != nil {
		return fmt.Errorf("failed to mark product donated: %w", err)
	}

	s.logger.Info().Str("product_id", productID.String()).Msg("product marked donated")
	return nil
}

func (s *catalogService) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, model.NotFoundError("product %s not found", id)
	}
	return product, nil
}

func (s *catalogService) ListApproved(ctx context.Context, limit, offset int) ([]model.Product, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.productRepo.ListApproved(ctx, limit, offset)
}

func (s *catalogService) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]model.Product, error) {
	return s.productRepo.ListBySeller(ctx, sellerID)
}

func (s *catalogService) Search(ctx context.Context, name string, limit, offset int) ([]model.Product, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.productRepo.SearchByName(ctx, name, limit, offset)
}

func (s *catalogService) ListByPriceRange(ctx context.Context, min, max decimal.Decimal, limit, offset int) ([]model.Product, error) {
	if min.IsNegative() {
		return nil, model.ValidationError("minimum price cannot be negative")
	}
	if max.LessThan(min) {
		return nil, model.ValidationError("maximum price cannot be below the minimum")
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.productRepo.ListByPriceRange(ctx, min, max, limit, offset)
}

package service

import (
	"context"
	"testing"

	"jalai-market/internal/events"
	"jalai-market/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newCatalogServiceForTest(productRepo *MockProductRepository, actorRepo *MockActorRepository, notifier *recordingNotifier) CatalogService {
	return NewCatalogService(productRepo, actorRepo, notifier, events.NewNopPublisher(), zerolog.Nop())
}

func TestCatalogService_Submit_StartsUnapproved(t *testing.T) {
	ctx := context.Background()
	sellerID := uuid.New()

	mockProductRepo := new(MockProductRepository)
	mockActorRepo := new(MockActorRepository)

	service := newCatalogServiceForTest(mockProductRepo, mockActorRepo, newRecordingNotifier())

	mockActorRepo.On("ClientExists", ctx, sellerID).Return(true, nil)
	mockProductRepo.On("Create", ctx, mock.AnythingOfType("*model.Product")).Return(nil)

	product, err := service.Submit(ctx, model.SubmitProductRequest{
		SellerID: sellerID,
		Name:     "Wooden Chair",
		Price:    decimal.RequireFromString("45.00"),
	})

	require.NoError(t, err)
	require.NotNil(t, product)
	assert.False(t, product.IsApproved)
	assert.True(t, product.IsAvailable)
	assert.False(t, product.IsDonated)
	assert.False(t, product.Purchasable())
	mockProductRepo.AssertExpectations(t)
}

func TestCatalogService_Submit_NonPositivePrice(t *testing.T) {
	ctx := context.Background()

	mockProductRepo := new(MockProductRepository)
	service := newCatalogServiceForTest(mockProductRepo, new(MockActorRepository), newRecordingNotifier())

	_, err := service.Submit(ctx, model.SubmitProductRequest{
		SellerID: uuid.New(),
		Name:     "Free Stuff",
		Price:    decimal.Zero,
	})

	require.Error(t, err)
	assert.True(t, model.IsKind(err, model.ErrKindValidation))
	mockProductRepo.AssertNotCalled(t, "Create")
}

func TestCatalogService_Submit_UnknownSeller(t *testing.T) {
	ctx := context.Background()
	sellerID := uuid.New()

	mockProductRepo := new(MockProductRepository)
	mockActorRepo := new(MockActorRepository)
	service := newCatalogServiceForTest(mockProductRepo, mockActorRepo, newRecordingNotifier())

	mockActorRepo.On("ClientExists", ctx, sellerID).Return(false, nil)

	_, err := service.Submit(ctx, model.SubmitProductRequest{
		SellerID: sellerID,
		Name:     "Wooden Chair",
		Price:    decimal.RequireFromString("45.00"),
	})

	require.Error(t, err)
	assert.True(t, model.IsKind(err, model.ErrKindNotFound))
}

func TestCatalogService_Approve_NotifiesSeller(t *testing.T) {
	ctx := context.Background()
	productID := uuid.New()
	adminID := uuid.New()
	sellerID := uuid.New()

	pending := &model.Product{ID: productID, Name: "Wooden Chair", SellerID: sellerID}
	approved := &model.Product{ID: productID, Name: "Wooden Chair", SellerID: sellerID, IsApproved: true, ApprovedBy: &adminID}

	mockProductRepo := new(MockProductRepository)
	mockActorRepo := new(MockActorRepository)
	notifier := newRecordingNotifier()

	service := newCatalogServiceForTest(mockProductRepo, mockActorRepo, notifier)

	mockActorRepo.On("AdminExists", ctx, adminID).Return(true, nil)
	mockProductRepo.On("GetByID", ctx, productID).Return(pending, nil).Once()
	mockProductRepo.On("Approve", ctx, productID, adminID).Return(true, nil)
	mockProductRepo.On("GetByID", ctx, productID).Return(approved, nil).Once()

	product, err := service.Approve(ctx, productID, adminID)

	require.NoError(t, err)
	assert.True(t, product.IsApproved)

	notes := notifier.sent()
	require.Len(t, notes, 1)
	assert.Equal(t, model.NotificationProductApproved, notes[0].Type)
	assert.Equal(t, &sellerID, notifier.to[0].ClientID)
}

func TestCatalogService_Approve_AlreadyApproved(t *testing.T) {
	ctx := context.Background()
	productID := uuid.New()
	adminID := uuid.New()

	already := &model.Product{ID: productID, Name: "Wooden Chair", SellerID: uuid.New(), IsApproved: true}

	mockProductRepo := new(MockProductRepository)
	mockActorRepo := new(MockActorRepository)
	service := newCatalogServiceForTest(mockProductRepo, mockActorRepo, newRecordingNotifier())

	mockActorRepo.On("AdminExists", ctx, adminID).Return(true, nil)
	mockProductRepo.On("GetByID", ctx, productID).Return(already, nil)
	mockProductRepo.On("Approve", ctx, productID, adminID).Return(false, nil)

	_, err := service.Approve(ctx, productID, adminID)

	require.Error(t, err)
	assert.True(t, model.IsKind(err, model.ErrKindStateConflict))
}

func TestCatalogService_Reject_RequiresReason(t *testing.T) {
	ctx := context.Background()

	service := newCatalogServiceForTest(new(MockProductRepository), new(MockActorRepository), newRecordingNotifier())

	for _, reason := range []string{"", "   ", "\t\n"} {
		_, err := service.Reject(ctx, uuid.New(), uuid.New(), reason)

		require.Error(t, err)
		assert.True(t, model.IsKind(err, model.ErrKindValidation))
	}
}

func TestCatalogService_Reject_ForwardsReason(t *testing.T) {
	ctx := context.Background()
	productID := uuid.New()
	adminID := uuid.New()
	sellerID := uuid.New()

	pending := &model.Product{ID: productID, Name: "Wooden Chair", SellerID: sellerID}
	rejected := &model.Product{ID: productID, Name: "Wooden Chair", SellerID: sellerID, IsAvailable: false}

	mockProductRepo := new(MockProductRepository)
	mockActorRepo := new(MockActorRepository)
	notifier := newRecordingNotifier()

	service := newCatalogServiceForTest(mockProductRepo, mockActorRepo, notifier)

	mockActorRepo.On("AdminExists", ctx, adminID).Return(true, nil)
	mockProductRepo.On("GetByID", ctx, productID).Return(pending, nil).Once()
	mockProductRepo.On("Reject", ctx, productID, adminID).Return(true, nil)
	mockProductRepo.On("GetByID", ctx, productID).Return(rejected, nil).Once()

	_, err := service.Reject(ctx, productID, adminID, "blurry photos")

	require.NoError(t, err)
	notes := notifier.sent()
	require.Len(t, notes, 1)
	assert.Equal(t, model.NotificationProductRejected, notes[0].Type)
	assert.Contains(t, notes[0].Message, "blurry photos")
}

func TestCatalogService_Update_ResetsApproval(t *testing.T) {
	ctx := context.Background()
	productID := uuid.New()

	afterEdit := &model.Product{ID: productID, Name: "Wooden Chair v2", SellerID: uuid.New(), IsApproved: false}

	mockProductRepo := new(MockProductRepository)
	service := newCatalogServiceForTest(mockProductRepo, new(MockActorRepository), newRecordingNotifier())

	mockProductRepo.On("UpdateContent", ctx, mock.AnythingOfType("*model.Product")).Return(true, nil)
	mockProductRepo.On("GetByID", ctx, productID).Return(afterEdit, nil)

	product, err := service.Update(ctx, productID, model.UpdateProductRequest{
		Name:  "Wooden Chair v2",
		Price: decimal.RequireFromString("50.00"),
	})

	require.NoError(t, err)
	assert.False(t, product.IsApproved)
}

func TestCatalogService_MarkDonated_AlreadyDonated(t *testing.T) {
	ctx := context.Background()
	productID := uuid.New()

	donated := &model.Product{ID: productID, Name: "Old Books", SellerID: uuid.New(), IsDonated: true}

	mockProductRepo := new(MockProductRepository)
	service := newCatalogServiceForTest(mockProductRepo, new(MockActorRepository), newRecordingNotifier())

	mockProductRepo.On("GetByID", ctx, productID).Return(donated, nil)

	err := service.MarkDonated(ctx, productID)

	require.Error(t, err)
	assert.True(t, model.IsKind(err, model.ErrKindStateConflict))
	mockProductRepo.AssertNotCalled(t, "MarkDonated")
}

func TestCatalogService_GetByID_NotFound(t *testing.T) {
	ctx := context.Background()
	productID := uuid.New()

	mockProductRepo := new(MockProductRepository)
	service := newCatalogServiceForTest(mockProductRepo, new(MockActorRepository), newRecordingNotifier())

	mockProductRepo.On("GetByID", ctx, productID).Return(nil, nil)

	_, err := service.GetByID(ctx, productID)

	require.Error(t, err)
	assert.True(t, model.IsKind(err, model.ErrKindNotFound))
}

func TestCatalogService_ListByPriceRange_ClampsPaging(t *testing.T) {
	ctx := context.Background()
	min := decimal.RequireFromString("10.00")
	max := decimal.RequireFromString("50.00")

	mockProductRepo := new(MockProductRepository)
	service := newCatalogServiceForTest(mockProductRepo, new(MockActorRepository), newRecordingNotifier())

	expected := []model.Product{{ID: uuid.New(), Name: "Clay Pot"}}
	mockProductRepo.On("ListByPriceRange", ctx, min, max, 20, 0).Return(expected, nil)

	products, err := service.ListByPriceRange(ctx, min, max, 500, -3)

	require.NoError(t, err)
	assert.Equal(t, expected, products)
	mockProductRepo.AssertExpectations(t)
}

func TestCatalogService_ListByPriceRange_InvalidBounds(t *testing.T) {
	ctx := context.Background()

	mockProductRepo := new(MockProductRepository)
	service := newCatalogServiceForTest(mockProductRepo, new(MockActorRepository), newRecordingNotifier())

	_, err := service.ListByPriceRange(ctx, decimal.RequireFromString("-1"), decimal.RequireFromString("10"), 20, 0)
	require.Error(t, err)
	assert.True(t, model.IsKind(err, model.ErrKindValidation))

	_, err = service.ListByPriceRange(ctx, decimal.RequireFromString("50"), decimal.RequireFromString("10"), 20, 0)
	require.Error(t, err)
	assert.True(t, model.IsKind(err, model.ErrKindValidation))

	mockProductRepo.AssertNotCalled(t, "ListByPriceRange", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

package integration

import (
	"context"
	"testing"
	"time"

	"jalai-market/internal/model"
	"jalai-market/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	logger := zerolog.Nop()
	repo := repository.NewProductRepository(testDB.Pool, logger)

	ctx := context.Background()

	t.Run("Create and GetByID round trip", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		actors := SeedActors(t, testDB.Pool)

		now := time.Now().UTC()
		product := &model.Product{
			ID:          uuid.New(),
			Name:        "Wooden Chair",
			Description: "hand carved",
			Price:       decimal.RequireFromString("45.00"),
			IsAvailable: true,
			SellerID:    actors.SellerID,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		require.NoError(t, repo.Create(ctx, product))

		got, err := repo.GetByID(ctx, product.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "Wooden Chair", got.Name)
		assert.True(t, got.Price.Equal(decimal.RequireFromString("45.00")))
		assert.False(t, got.IsApproved)
	})

	t.Run("GetByID returns nil for unknown product", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		got, err := repo.GetByID(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("Approve is guarded against double approval", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		actors := SeedActors(t, testDB.Pool)

		now := time.Now().UTC()
		product := &model.Product{
			ID:          uuid.New(),
			Name:        "Clay Pot",
			Price:       decimal.RequireFromString("12.00"),
			IsAvailable: true,
			SellerID:    actors.SellerID,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		require.NoError(t, repo.Create(ctx, product))

		approved, err := repo.Approve(ctx, product.ID, actors.AdminID)
		require.NoError(t, err)
		assert.True(t, approved)

		approved, err = repo.Approve(ctx, product.ID, actors.AdminID)
		require.NoError(t, err)
		assert.False(t, approved)

		got, err := repo.GetByID(ctx, product.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.True(t, got.IsApproved)
		require.NotNil(t, got.ApprovedBy)
		assert.Equal(t, actors.AdminID, *got.ApprovedBy)
	})

	t.Run("ListApproved hides unapproved products", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		actors := SeedActors(t, testDB.Pool)

		approvedID := SeedProduct(t, testDB.Pool, actors.SellerID, "Visible", "10.00")

		now := time.Now().UTC()
		pending := &model.Product{
			ID:          uuid.New(),
			Name:        "Hidden",
			Price:       decimal.RequireFromString("10.00"),
			IsAvailable: true,
			SellerID:    actors.SellerID,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		require.NoError(t, repo.Create(ctx, pending))

		products, err := repo.ListApproved(ctx, 10, 0)
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, approvedID, products[0].ID)
	})

	t.Run("SearchByName matches case-insensitively", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		actors := SeedActors(t, testDB.Pool)

		SeedProduct(t, testDB.Pool, actors.SellerID, "Bamboo Basket", "15.00")
		SeedProduct(t, testDB.Pool, actors.SellerID, "Leather Bag", "80.00")

		products, err := repo.SearchByName(ctx, "bamboo", 10, 0)
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, "Bamboo Basket", products[0].Name)
	})

	t.Run("MarkDonated withdraws the product", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		actors := SeedActors(t, testDB.Pool)

		id := SeedProduct(t, testDB.Pool, actors.SellerID, "Old Toys", "5.00")

		donated, err := repo.MarkDonated(ctx, id)
		require.NoError(t, err)
		assert.True(t, donated)

		got, err := repo.GetByID(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.True(t, got.IsDonated)
		assert.False(t, got.IsAvailable)
		assert.False(t, got.Purchasable())
	})
}

func TestCartRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	logger := zerolog.Nop()
	repo := repository.NewCartRepository(testDB.Pool, logger)

	ctx := context.Background()

	t.Run("AddOrIncrement keeps the snapshotted price", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		actors := SeedActors(t, testDB.Pool)
		productID := SeedProduct(t, testDB.Pool, actors.SellerID, "Basket", "15.00")

		line := &model.CartLine{
			ID:        uuid.New(),
			ClientID:  actors.BuyerID,
			ProductID: productID,
			Quantity:  2,
			UnitPrice: decimal.RequireFromString("15.00"),
			CreatedAt: time.Now().UTC(),
		}
		first, err := repo.AddOrIncrement(ctx, line)
		require.NoError(t, err)
		assert.Equal(t, 2, first.Quantity)

		// Repeat add with a different price: quantity grows, price stays.
		again := &model.CartLine{
			ID:        uuid.New(),
			ClientID:  actors.BuyerID,
			ProductID: productID,
			Quantity:  3,
			UnitPrice: decimal.RequireFromString("99.00"),
			CreatedAt: time.Now().UTC(),
		}
		second, err := repo.AddOrIncrement(ctx, again)
		require.NoError(t, err)
		assert.Equal(t, 5, second.Quantity)
		assert.True(t, second.UnitPrice.Equal(decimal.RequireFromString("15.00")))
		assert.Equal(t, first.ID, second.ID)
	})

	t.Run("Total sums quantity times unit price", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		actors := SeedActors(t, testDB.Pool)
		p1 := SeedProduct(t, testDB.Pool, actors.SellerID, "Basket", "15.00")
		p2 := SeedProduct(t, testDB.Pool, actors.SellerID, "Pot", "4.50")

		SeedCartLine(t, testDB.Pool, actors.BuyerID, p1, 2, "15.00")
		SeedCartLine(t, testDB.Pool, actors.BuyerID, p2, 3, "4.50")

		total, err := repo.Total(ctx, actors.BuyerID)
		require.NoError(t, err)
		assert.True(t, total.Equal(decimal.RequireFromString("43.50")))

		count, err := repo.CountItems(ctx, actors.BuyerID)
		require.NoError(t, err)
		assert.Equal(t, int64(5), count)
	})

	t.Run("Total of an empty cart is zero", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		actors := SeedActors(t, testDB.Pool)

		total, err := repo.Total(ctx, actors.BuyerID)
		require.NoError(t, err)
		assert.True(t, total.IsZero())

		// Empty listings stay non-nil so they serialize as [] rather
		// than null.
		lines, err := repo.ListByClient(ctx, actors.BuyerID)
		require.NoError(t, err)
		assert.NotNil(t, lines)
		assert.Empty(t, lines)
	})

	t.Run("Remove reports whether a line existed", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		actors := SeedActors(t, testDB.Pool)
		productID := SeedProduct(t, testDB.Pool, actors.SellerID, "Basket", "15.00")
		SeedCartLine(t, testDB.Pool, actors.BuyerID, productID, 1, "15.00")

		removed, err := repo.Remove(ctx, actors.BuyerID, productID)
		require.NoError(t, err)
		assert.True(t, removed)

		removed, err = repo.Remove(ctx, actors.BuyerID, productID)
		require.NoError(t, err)
		assert.False(t, removed)
	})

	t.Run("Clear empties the cart and is idempotent", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		actors := SeedActors(t, testDB.Pool)
		productID := SeedProduct(t, testDB.Pool, actors.SellerID, "Basket", "15.00")
		SeedCartLine(t, testDB.Pool, actors.BuyerID, productID, 1, "15.00")

		require.NoError(t, repo.Clear(ctx, actors.BuyerID))
		require.NoError(t, repo.Clear(ctx, actors.BuyerID))

		lines, err := repo.ListByClient(ctx, actors.BuyerID)
		require.NoError(t, err)
		assert.Empty(t, lines)
	})

	t.Run("a line added after locking survives checkout", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		actors := SeedActors(t, testDB.Pool)
		p1 := SeedProduct(t, testDB.Pool, actors.SellerID, "Basket", "15.00")
		p2 := SeedProduct(t, testDB.Pool, actors.SellerID, "Pot", "4.50")
		SeedCartLine(t, testDB.Pool, actors.BuyerID, p1, 1, "15.00")

		txBeginner := repository.NewTxBeginner(testDB.Pool)
		tx, err := txBeginner.BeginTx(ctx)
		require.NoError(t, err)

		locked, err := repo.ListForUpdate(ctx, tx, actors.BuyerID)
		require.NoError(t, err)
		require.Len(t, locked, 1)

		// A different product has no row to conflict with, so this add
		// commits without waiting for the lock.
		_, err = repo.AddOrIncrement(ctx, &model.CartLine{
			ID:        uuid.New(),
			ClientID:  actors.BuyerID,
			ProductID: p2,
			Quantity:  2,
			UnitPrice: decimal.RequireFromString("4.50"),
			CreatedAt: time.Now().UTC(),
		})
		require.NoError(t, err)

		lineIDs := []uuid.UUID{locked[0].ID}
		require.NoError(t, repo.DeleteLinesTx(ctx, tx, lineIDs))
		require.NoError(t, tx.Commit(ctx))

		remaining, err := repo.ListByClient(ctx, actors.BuyerID)
		require.NoError(t, err)
		require.Len(t, remaining, 1)
		assert.Equal(t, p2, remaining[0].ProductID)
	})
}

func TestOrderRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	logger := zerolog.Nop()
	repo := repository.NewOrderRepository(testDB.Pool, logger)
	txBeginner := repository.NewTxBeginner(testDB.Pool)

	ctx := context.Background()

	t.Run("Create with items inside a transaction", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		actors := SeedActors(t, testDB.Pool)
		productID := SeedProduct(t, testDB.Pool, actors.SellerID, "Basket", "15.00")

		tx, err := txBeginner.BeginTx(ctx)
		require.NoError(t, err)

		now := time.Now().UTC()
		order := &model.Order{
			ID:           uuid.New(),
			ClientID:     actors.BuyerID,
			SellerID:     actors.SellerID,
			Status:       model.OrderStatusPending,
			TotalAmount:  decimal.RequireFromString("30.00"),
			DeliveryDate: now.Add(72 * time.Hour),
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		require.NoError(t, repo.Create(ctx, tx, order))

		items := []model.OrderItem{{
			ID:          uuid.New(),
			OrderID:     order.ID,
			ProductID:   productID,
			ProductName: "Basket",
			Quantity:    2,
			UnitPrice:   decimal.RequireFromString("15.00"),
			LineTotal:   decimal.RequireFromString("30.00"),
		}}
		require.NoError(t, repo.CreateItems(ctx, tx, items))
		require.NoError(t, tx.Commit(ctx))

		got, err := repo.GetByID(ctx, order.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, model.OrderStatusPending, got.Status)

		gotItems, err := repo.GetItems(ctx, order.ID)
		require.NoError(t, err)
		require.Len(t, gotItems, 1)
		assert.Equal(t, "Basket", gotItems[0].ProductName)
	})

	t.Run("Rolled back order leaves no rows", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		actors := SeedActors(t, testDB.Pool)

		tx, err := txBeginner.BeginTx(ctx)
		require.NoError(t, err)

		now := time.Now().UTC()
		order := &model.Order{
			ID:           uuid.New(),
			ClientID:     actors.BuyerID,
			SellerID:     actors.SellerID,
			Status:       model.OrderStatusPending,
			TotalAmount:  decimal.RequireFromString("10.00"),
			DeliveryDate: now.Add(72 * time.Hour),
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		require.NoError(t, repo.Create(ctx, tx, order))
		require.NoError(t, tx.Rollback(ctx))

		got, err := repo.GetByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("TotalSalesForSeller counts delivered orders only", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		actors := SeedActors(t, testDB.Pool)

		SeedOrder(t, testDB.Pool, actors.BuyerID, actors.SellerID, model.OrderStatusDelivered, "100.00")
		SeedOrder(t, testDB.Pool, actors.BuyerID, actors.SellerID, model.OrderStatusDelivered, "25.50")
		SeedOrder(t, testDB.Pool, actors.BuyerID, actors.SellerID, model.OrderStatusPending, "999.00")
		SeedOrder(t, testDB.Pool, actors.BuyerID, actors.SellerID, model.OrderStatusCancelled, "999.00")

		sales, err := repo.TotalSalesForSeller(ctx, actors.SellerID)
		require.NoError(t, err)
		assert.True(t, sales.Equal(decimal.RequireFromString("125.50")))

		purchases, err := repo.TotalPurchasesForClient(ctx, actors.BuyerID)
		require.NoError(t, err)
		assert.True(t, purchases.Equal(decimal.RequireFromString("125.50")))
	})
}

func TestPaymentRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	logger := zerolog.Nop()
	repo := repository.NewPaymentRepository(testDB.Pool, logger)

	ctx := context.Background()

	newPayment := func(clientID uuid.UUID, orderID *uuid.UUID, txn string) *model.Payment {
		now := time.Now().UTC()
		return &model.Payment{
			ID:            uuid.New(),
			ClientID:      clientID,
			OrderID:       orderID,
			Amount:        decimal.RequireFromString("30.00"),
			Method:        model.PaymentMethodCash,
			Status:        model.PaymentStatusPending,
			TransactionID: txn,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
	}

	t.Run("second live payment for an order is rejected", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		actors := SeedActors(t, testDB.Pool)
		orderID := SeedOrder(t, testDB.Pool, actors.BuyerID, actors.SellerID, model.OrderStatusPending, "30.00")

		require.NoError(t, repo.Create(ctx, newPayment(actors.BuyerID, &orderID, "TXN_1_A")))

		err := repo.Create(ctx, newPayment(actors.BuyerID, &orderID, "TXN_1_B"))
		require.Error(t, err)
		assert.ErrorIs(t, err, repository.ErrUniqueViolation)
	})

	t.Run("cancelling a payment frees the order slot", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		actors := SeedActors(t, testDB.Pool)
		orderID := SeedOrder(t, testDB.Pool, actors.BuyerID, actors.SellerID, model.OrderStatusPending, "30.00")

		first := newPayment(actors.BuyerID, &orderID, "TXN_2_A")
		require.NoError(t, repo.Create(ctx, first))
		require.NoError(t, repo.UpdateStatus(ctx, first.ID, model.PaymentStatusCancelled))

		second := newPayment(actors.BuyerID, &orderID, "TXN_2_B")
		require.NoError(t, repo.Create(ctx, second))

		live, err := repo.GetLiveByOrderID(ctx, orderID)
		require.NoError(t, err)
		require.NotNil(t, live)
		assert.Equal(t, second.ID, live.ID)
	})

	t.Run("GetLiveByOrderID returns nil without payments", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		actors := SeedActors(t, testDB.Pool)
		orderID := SeedOrder(t, testDB.Pool, actors.BuyerID, actors.SellerID, model.OrderStatusPending, "30.00")

		live, err := repo.GetLiveByOrderID(ctx, orderID)
		require.NoError(t, err)
		assert.Nil(t, live)
	})

	t.Run("standalone payments are not limited", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		actors := SeedActors(t, testDB.Pool)

		require.NoError(t, repo.Create(ctx, newPayment(actors.BuyerID, nil, "TXN_3_A")))
		require.NoError(t, repo.Create(ctx, newPayment(actors.BuyerID, nil, "TXN_3_B")))

		payments, err := repo.ListByClient(ctx, actors.BuyerID)
		require.NoError(t, err)
		assert.Len(t, payments, 2)
	})
}

func TestDonationRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	logger := zerolog.Nop()
	repo := repository.NewDonationRepository(testDB.Pool, logger)

	ctx := context.Background()

	newDonation := func(actors SeededActors, amount string) *model.Donation {
		now := time.Now().UTC()
		cash := decimal.RequireFromString(amount)
		return &model.Donation{
			ID:          uuid.New(),
			ClientID:    actors.BuyerID,
			OrphanageID: actors.OrphanageID,
			Type:        model.DonationTypeCash,
			Status:      model.DonationStatusPending,
			CashAmount:  &cash,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
	}

	t.Run("UpdateStatusFrom enforces the guard", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		actors := SeedActors(t, testDB.Pool)

		donation := newDonation(actors, "50.00")
		require.NoError(t, repo.Create(ctx, donation))

		// Completing a pending donation must not match the guard.
		moved, err := repo.UpdateStatusFrom(ctx, donation.ID,
			[]model.DonationStatus{model.DonationStatusConfirmed, model.DonationStatusInProgress},
			model.DonationStatusCompleted, true)
		require.NoError(t, err)
		assert.False(t, moved)

		moved, err = repo.UpdateStatusFrom(ctx, donation.ID,
			[]model.DonationStatus{model.DonationStatusPending},
			model.DonationStatusConfirmed, true)
		require.NoError(t, err)
		assert.True(t, moved)

		got, err := repo.GetByID(ctx, donation.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, model.DonationStatusConfirmed, got.Status)
		assert.True(t, got.IsConfirmed)
	})

	t.Run("TotalCashForOrphanage counts completed cash only", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		actors := SeedActors(t, testDB.Pool)

		completed := newDonation(actors, "100.00")
		completed.Status = model.DonationStatusCompleted
		require.NoError(t, repo.Create(ctx, completed))

		pending := newDonation(actors, "999.00")
		require.NoError(t, repo.Create(ctx, pending))

		total, err := repo.TotalCashForOrphanage(ctx, actors.OrphanageID)
		require.NoError(t, err)
		assert.True(t, total.Equal(decimal.RequireFromString("100.00")))

		byClient, err := repo.TotalCashByClient(ctx, actors.BuyerID)
		require.NoError(t, err)
		assert.True(t, byClient.Equal(decimal.RequireFromString("100.00")))
	})
}

func TestNotificationRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	logger := zerolog.Nop()
	repo := repository.NewNotificationRepository(testDB.Pool, logger)

	ctx := context.Background()

	newNote := func(clientID uuid.UUID, createdAt time.Time) *model.Notification {
		return &model.Notification{
			ID:        uuid.New(),
			Title:     "Order placed",
			Message:   "your order is on its way",
			Type:      model.NotificationOrderStatus,
			ClientID:  &clientID,
			CreatedAt: createdAt,
		}
	}

	t.Run("MarkRead and unread filtering", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		actors := SeedActors(t, testDB.Pool)

		note := newNote(actors.BuyerID, time.Now().UTC())
		require.NoError(t, repo.Create(ctx, note))

		unread, err := repo.ListForClient(ctx, actors.BuyerID, true)
		require.NoError(t, err)
		require.Len(t, unread, 1)

		marked, err := repo.MarkRead(ctx, note.ID)
		require.NoError(t, err)
		assert.True(t, marked)

		unread, err = repo.ListForClient(ctx, actors.BuyerID, true)
		require.NoError(t, err)
		assert.Empty(t, unread)

		all, err := repo.ListForClient(ctx, actors.BuyerID, false)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("DeleteReadOlderThan removes only old read rows", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		actors := SeedActors(t, testDB.Pool)

		oldRead := newNote(actors.BuyerID, time.Now().UTC().Add(-60*24*time.Hour))
		require.NoError(t, repo.Create(ctx, oldRead))
		_, err := repo.MarkRead(ctx, oldRead.ID)
		require.NoError(t, err)

		oldUnread := newNote(actors.BuyerID, time.Now().UTC().Add(-60*24*time.Hour))
		require.NoError(t, repo.Create(ctx, oldUnread))

		fresh := newNote(actors.BuyerID, time.Now().UTC())
		require.NoError(t, repo.Create(ctx, fresh))
		_, err = repo.MarkRead(ctx, fresh.ID)
		require.NoError(t, err)

		deleted, err := repo.DeleteReadOlderThan(ctx, time.Now().UTC().Add(-30*24*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, int64(1), deleted)

		remaining, err := repo.ListForClient(ctx, actors.BuyerID, false)
		require.NoError(t, err)
		assert.Len(t, remaining, 2)
	})
}

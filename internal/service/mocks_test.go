package service

import (
	"context"
	"sync"
	"time"

	"jalai-market/internal/model"
	"jalai-market/internal/momo"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockTxBeginner is a mock implementation of repository.TxBeginner.
type MockTxBeginner struct {
	mock.Mock
}

func (m *MockTxBeginner) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if tx, ok := args.Get(0).(pgx.Tx); ok {
		return tx, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockTx is a minimal mock implementation of pgx.Tx for testing.
type MockTx struct {
	mock.Mock
	committed  bool
	rolledBack bool
}

func (m *MockTx) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	m.committed = true
	return args.Error(0)
}

func (m *MockTx) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	m.rolledBack = true
	return args.Error(0)
}

// Stub methods to satisfy pgx.Tx interface - these are not used in our tests
func (m *MockTx) Begin(ctx context.Context) (pgx.Tx, error) { return nil, nil }
func (m *MockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (m *MockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (m *MockTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (m *MockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (m *MockTx) Exec(ctx context.Context, sql string, arguments ...any) (commandTag pgconn.CommandTag, err error) {
	return
}
func (m *MockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (m *MockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (m *MockTx) Conn() *pgx.Conn                                               { return nil }

// MockActorRepository is a mock implementation of ActorRepository.
type MockActorRepository struct {
	mock.Mock
}

func (m *MockActorRepository) GetClient(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Client), args.Error(1)
}

func (m *MockActorRepository) ClientExists(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockActorRepository) GetAdmin(ctx context.Context, id uuid.UUID) (*model.Admin, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Admin), args.Error(1)
}

func (m *MockActorRepository) AdminExists(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockActorRepository) ListAdminIDs(ctx context.Context) ([]uuid.UUID, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockActorRepository) GetOrphanage(ctx context.Context, id uuid.UUID) (*model.Orphanage, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Orphanage), args.Error(1)
}

func (m *MockActorRepository) OrphanageExists(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockActorRepository) ApproveOrphanage(ctx context.Context, orphanageID, adminID uuid.UUID) (bool, error) {
	args := m.Called(ctx, orphanageID, adminID)
	return args.Bool(0), args.Error(1)
}

func (m *MockActorRepository) RejectOrphanage(ctx context.Context, orphanageID, adminID uuid.UUID) (bool, error) {
	args := m.Called(ctx, orphanageID, adminID)
	return args.Bool(0), args.Error(1)
}

// MockProductRepository is a mock implementation of ProductRepository.
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(ctx context.Context, p *model.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Product, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductRepository) UpdateContent(ctx context.Context, p *model.Product) (bool, error) {
	args := m.Called(ctx, p)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) Approve(ctx context.Context, productID, adminID uuid.UUID) (bool, error) {
	args := m.Called(ctx, productID, adminID)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) Reject(ctx context.Context, productID, adminID uuid.UUID) (bool, error) {
	args := m.Called(ctx, productID, adminID)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) SetAvailability(ctx context.Context, id uuid.UUID, available bool) (bool, error) {
	args := m.Called(ctx, id, available)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) MarkDonated(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) ListApproved(ctx context.Context, limit, offset int) ([]model.Product, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductRepository) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]model.Product, error) {
	args := m.Called(ctx, sellerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductRepository) SearchByName(ctx context.Context, name string, limit, offset int) ([]model.Product, error) {
	args := m.Called(ctx, name, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductRepository) ListByPriceRange(ctx context.Context, min, max decimal.Decimal, limit, offset int) ([]model.Product, error) {
	args := m.Called(ctx, min, max, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductRepository) CategoryExists(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// MockCartRepository is a mock implementation of CartRepository.
type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) AddOrIncrement(ctx context.Context, line *model.CartLine) (*model.CartLine, error) {
	args := m.Called(ctx, line)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CartLine), args.Error(1)
}

func (m *MockCartRepository) SetQuantity(ctx context.Context, clientID, productID uuid.UUID, quantity int) (bool, error) {
	args := m.Called(ctx, clientID, productID, quantity)
	return args.Bool(0), args.Error(1)
}

func (m *MockCartRepository) Remove(ctx context.Context, clientID, productID uuid.UUID) (bool, error) {
	args := m.Called(ctx, clientID, productID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCartRepository) Clear(ctx context.Context, clientID uuid.UUID) error {
	args := m.Called(ctx, clientID)
	return args.Error(0)
}

func (m *MockCartRepository) DeleteLinesTx(ctx context.Context, tx pgx.Tx, lineIDs []uuid.UUID) error {
	args := m.Called(ctx, tx, lineIDs)
	return args.Error(0)
}

func (m *MockCartRepository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]model.CartLine, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CartLine), args.Error(1)
}

func (m *MockCartRepository) ListForUpdate(ctx context.Context, tx pgx.Tx, clientID uuid.UUID) ([]model.CartLine, error) {
	args := m.Called(ctx, tx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CartLine), args.Error(1)
}

func (m *MockCartRepository) Total(ctx context.Context, clientID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, clientID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockCartRepository) CountItems(ctx context.Context, clientID uuid.UUID) (int64, error) {
	args := m.Called(ctx, clientID)
	return args.Get(0).(int64), args.Error(1)
}

// MockOrderRepository is a mock implementation of OrderRepository.
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	args := m.Called(ctx, tx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) CreateItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	args := m.Called(ctx, tx, items)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) GetItems(ctx context.Context, orderID uuid.UUID) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.OrderItem), args.Error(1)
}

func (m *MockOrderRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockOrderRepository) UpdateStatusTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.OrderStatus) error {
	args := m.Called(ctx, tx, id, status)
	return args.Error(0)
}

func (m *MockOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOrderRepository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]model.Order, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderRepository) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]model.Order, error) {
	args := m.Called(ctx, sellerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderRepository) ListByStatus(ctx context.Context, status model.OrderStatus) ([]model.Order, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderRepository) TotalSalesForSeller(ctx context.Context, sellerID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, sellerID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockOrderRepository) TotalPurchasesForClient(ctx context.Context, clientID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, clientID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockPaymentRepository is a mock implementation of PaymentRepository.
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, p *model.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Payment), args.Error(1)
}

func (m *MockPaymentRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Payment, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Payment), args.Error(1)
}

func (m *MockPaymentRepository) GetLiveByOrderID(ctx context.Context, orderID uuid.UUID) (*model.Payment, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Payment), args.Error(1)
}

func (m *MockPaymentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.PaymentStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockPaymentRepository) UpdateStatusTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.PaymentStatus) error {
	args := m.Called(ctx, tx, id, status)
	return args.Error(0)
}

func (m *MockPaymentRepository) SetProviderResult(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.PaymentStatus, transactionID string) error {
	args := m.Called(ctx, tx, id, status, transactionID)
	return args.Error(0)
}

func (m *MockPaymentRepository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]model.Payment, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Payment), args.Error(1)
}

func (m *MockPaymentRepository) ListByStatus(ctx context.Context, status model.PaymentStatus) ([]model.Payment, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Payment), args.Error(1)
}

// MockDonationRepository is a mock implementation of DonationRepository.
type MockDonationRepository struct {
	mock.Mock
}

func (m *MockDonationRepository) Create(ctx context.Context, d *model.Donation) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDonationRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Donation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Donation), args.Error(1)
}

func (m *MockDonationRepository) UpdateStatusFrom(ctx context.Context, id uuid.UUID, from []model.DonationStatus, to model.DonationStatus, confirmed bool) (bool, error) {
	args := m.Called(ctx, id, from, to, confirmed)
	return args.Bool(0), args.Error(1)
}

func (m *MockDonationRepository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]model.Donation, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Donation), args.Error(1)
}

func (m *MockDonationRepository) ListByOrphanage(ctx context.Context, orphanageID uuid.UUID) ([]model.Donation, error) {
	args := m.Called(ctx, orphanageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Donation), args.Error(1)
}

func (m *MockDonationRepository) ListByStatus(ctx context.Context, status model.DonationStatus) ([]model.Donation, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Donation), args.Error(1)
}

func (m *MockDonationRepository) ListScheduledBetween(ctx context.Context, from, to time.Time) ([]model.Donation, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Donation), args.Error(1)
}

func (m *MockDonationRepository) TotalCashForOrphanage(ctx context.Context, orphanageID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, orphanageID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockDonationRepository) TotalCashByClient(ctx context.Context, clientID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, clientID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockNotificationRepository is a mock implementation of NotificationRepository.
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, n *model.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotificationRepository) ListForClient(ctx context.Context, clientID uuid.UUID, unreadOnly bool) ([]model.Notification, error) {
	args := m.Called(ctx, clientID, unreadOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Notification), args.Error(1)
}

func (m *MockNotificationRepository) ListForAdmin(ctx context.Context, adminID uuid.UUID, unreadOnly bool) ([]model.Notification, error) {
	args := m.Called(ctx, adminID, unreadOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Notification), args.Error(1)
}

func (m *MockNotificationRepository) ListForOrphanage(ctx context.Context, orphanageID uuid.UUID, unreadOnly bool) ([]model.Notification, error) {
	args := m.Called(ctx, orphanageID, unreadOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Notification), args.Error(1)
}

func (m *MockNotificationRepository) MarkRead(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockNotificationRepository) MarkAllReadForClient(ctx context.Context, clientID uuid.UUID) error {
	args := m.Called(ctx, clientID)
	return args.Error(0)
}

func (m *MockNotificationRepository) DeleteReadOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// MockChargeProvider is a mock implementation of momo.Provider.
type MockChargeProvider struct {
	mock.Mock
}

func (m *MockChargeProvider) Charge(ctx context.Context, charge momo.Charge) (*momo.Result, error) {
	args := m.Called(ctx, charge)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*momo.Result), args.Error(1)
}

// recordingNotifier captures dispatched notes so tests can assert on the
// side effects without a database.
type recordingNotifier struct {
	mu    sync.Mutex
	notes []Note
	to    []model.Recipient
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{}
}

func (r *recordingNotifier) Notify(_ context.Context, to model.Recipient, note Note) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.to = append(r.to, to)
	r.notes = append(r.notes, note)
}

func (r *recordingNotifier) NotifyAllAdmins(ctx context.Context, note Note) {
	r.Notify(ctx, model.Recipient{}, note)
}

func (r *recordingNotifier) ListForClient(context.Context, uuid.UUID, bool) ([]model.Notification, error) {
	return nil, nil
}

func (r *recordingNotifier) ListForOrphanage(context.Context, uuid.UUID, bool) ([]model.Notification, error) {
	return nil, nil
}

func (r *recordingNotifier) MarkRead(context.Context, uuid.UUID) error        { return nil }
func (r *recordingNotifier) MarkAllReadForClient(context.Context, uuid.UUID) error { return nil }
func (r *recordingNotifier) SweepOnce(context.Context) (int64, error)         { return 0, nil }
func (r *recordingNotifier) RunRetentionSweep(context.Context)                {}

func (r *recordingNotifier) sent() []Note {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Note, len(r.notes))
	copy(out, r.notes)
	return out
}

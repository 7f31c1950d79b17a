package payments

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/restaus/restaus-backend/internal/orders"
	"github.com/restaus/restaus-backend/pkg/db/models"
	"github.com/restaus/restaus-backend/pkg/enums"
	pkgerrors "github.com/restaus/restaus-backend/pkg/errors"
	"github.com/restaus/restaus-backend/pkg/outbox"
	"github.com/restaus/restaus-backend/pkg/pagination"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:payments_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	for _, schema := range []string{
		`CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  username TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  full_name TEXT NOT NULL,
  role TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS tables (
  id TEXT PRIMARY KEY,
  table_number TEXT NOT NULL UNIQUE,
  capacity INTEGER NOT NULL DEFAULT 0,
  status TEXT NOT NULL DEFAULT 'available',
  created_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  table_id TEXT,
  user_id TEXT NOT NULL,
  customer_name TEXT,
  order_type TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  total_amount NUMERIC NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS payments (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL UNIQUE,
  cashier_id TEXT NOT NULL,
  method TEXT NOT NULL,
  amount_paid NUMERIC NOT NULL,
  change_amount NUMERIC NOT NULL,
  transaction_date DATETIME
);`,
	} {
		require.NoError(t, db.Exec(schema).Error)
	}
	return db
}

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

type stubOutboxPublisher struct {
	events []outbox.DomainEvent
}

func (s *stubOutboxPublisher) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

type paymentFixture struct {
	db     *gorm.DB
	svc    Service
	outbox *stubOutboxPublisher
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()
	db := newTestDB(t)
	ob := &stubOutboxPublisher{}
	svc, err := NewService(ServiceParams{
		Repo:   NewRepository(db),
		Orders: orders.NewRepository(db),
		Tx:     gormTxRunner{db: db},
		Outbox: ob,
		Tables: NewTableReleaser(),
	})
	require.NoError(t, err)
	return &paymentFixture{db: db, svc: svc, outbox: ob}
}

func (f *paymentFixture) seedOrder(t *testing.T, status enums.OrderStatus, total string, tableID *uuid.UUID) *models.Order {
	t.Helper()
	order := &models.Order{
		ID:          uuid.New(),
		TableID:     tableID,
		UserID:      uuid.New(),
		OrderType:   enums.OrderTypeDineIn,
		Status:      status,
		TotalAmount: decimal.RequireFromString(total),
	}
	require.NoError(t, f.db.Create(order).Error)
	return order
}

func (f *paymentFixture) seedTable(t *testing.T, number string) *models.Table {
	t.Helper()
	table := &models.Table{ID: uuid.New(), TableNumber: number, Capacity: 4, Status: enums.TableStatusOccupied}
	require.NoError(t, f.db.Create(table).Error)
	return table
}

func TestProcessPaymentSettlesOrder(t *testing.T) {
	f := newPaymentFixture(t)
	table := f.seedTable(t, "T3")
	order := f.seedOrder(t, enums.OrderStatusDelivered, "45.00", &table.ID)

	dto, err := f.svc.ProcessPayment(context.Background(), ProcessPaymentInput{
		OrderID:    order.ID,
		CashierID:  uuid.New(),
		ActorRole:  "cashier",
		Method:     enums.PaymentMethodCash,
		AmountPaid: decimal.RequireFromString("50.00"),
	})
	require.NoError(t, err)
	assert.Equal(t, order.ID, dto.OrderID)
	assert.True(t, dto.ChangeAmount.Equal(decimal.RequireFromString("5.00")))

	var reloaded models.Order
	require.NoError(t, f.db.First(&reloaded, "id = ?", order.ID).Error)
	assert.Equal(t, enums.OrderStatusCompleted, reloaded.Status)

	var freedTable models.Table
	require.NoError(t, f.db.First(&freedTable, "id = ?", table.ID).Error)
	assert.Equal(t, enums.TableStatusAvailable, freedTable.Status)

	require.Len(t, f.outbox.events, 1)
	assert.Equal(t, enums.EventOrderSettled, f.outbox.events[0].EventType)
}

func TestProcessPaymentRequiresDeliveredOrder(t *testing.T) {
	f := newPaymentFixture(t)
	order := f.seedOrder(t, enums.OrderStatusProcessing, "20.00", nil)

	_, err := f.svc.ProcessPayment(context.Background(), ProcessPaymentInput{
		OrderID:    order.ID,
		CashierID:  uuid.New(),
		Method:     enums.PaymentMethodCash,
		AmountPaid: decimal.RequireFromString("20.00"),
	})
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeStateConflict, appErr.Code())
}

func TestProcessPaymentInsufficientAmount(t *testing.T) {
	f := newPaymentFixture(t)
	order := f.seedOrder(t, enums.OrderStatusDelivered, "30.00", nil)

	_, err := f.svc.ProcessPayment(context.Background(), ProcessPaymentInput{
		OrderID:    order.ID,
		CashierID:  uuid.New(),
		Method:     enums.PaymentMethodQRIS,
		AmountPaid: decimal.RequireFromString("25.00"),
	})
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeInsufficientPayment, appErr.Code())

	var count int64
	require.NoError(t, f.db.Model(&models.Payment{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestProcessPaymentTwiceRejected(t *testing.T) {
	f := newPaymentFixture(t)
	order := f.seedOrder(t, enums.OrderStatusDelivered, "15.00", nil)
	input := ProcessPaymentInput{
		OrderID:    order.ID,
		CashierID:  uuid.New(),
		Method:     enums.PaymentMethodDebit,
		AmountPaid: decimal.RequireFromString("15.00"),
	}

	_, err := f.svc.ProcessPayment(context.Background(), input)
	require.NoError(t, err)

	_, err = f.svc.ProcessPayment(context.Background(), input)
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeConflict, appErr.Code())
}

func TestProcessPaymentUniqueIndexBacksRace(t *testing.T) {
	f := newPaymentFixture(t)
	order := f.seedOrder(t, enums.OrderStatusDelivered, "15.00", nil)

	// A competing settlement already persisted while this order still reads
	// as delivered.
	existing := &models.Payment{
		ID:           uuid.New(),
		OrderID:      order.ID,
		CashierID:    uuid.New(),
		Method:       enums.PaymentMethodCash,
		AmountPaid:   decimal.RequireFromString("15.00"),
		ChangeAmount: decimal.Zero,
	}
	require.NoError(t, f.db.Create(existing).Error)

	_, err := f.svc.ProcessPayment(context.Background(), ProcessPaymentInput{
		OrderID:    order.ID,
		CashierID:  uuid.New(),
		Method:     enums.PaymentMethodCash,
		AmountPaid: decimal.RequireFromString("15.00"),
	})
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeConflict, appErr.Code())
}

func TestListPaymentsDateRange(t *testing.T) {
	f := newPaymentFixture(t)

	now := time.Now().UTC().Truncate(time.Second)
	for i, age := range []time.Duration{48 * time.Hour, 2 * time.Hour, time.Hour} {
		order := f.seedOrder(t, enums.OrderStatusCompleted, "10.00", nil)
		payment := &models.Payment{
			ID:              uuid.New(),
			OrderID:         order.ID,
			CashierID:       uuid.New(),
			Method:          enums.PaymentMethodCash,
			AmountPaid:      decimal.RequireFromString("10.00"),
			ChangeAmount:    decimal.Zero,
			TransactionDate: now.Add(-age),
		}
		require.NoError(t, f.db.Create(payment).Error, "payment %d", i)
	}

	from := now.Add(-24 * time.Hour)
	list, err := f.svc.ListPayments(context.Background(), pagination.Params{}, ListFilters{From: &from})
	require.NoError(t, err)
	require.Len(t, list.Payments, 2)
	// Newest first.
	assert.True(t, list.Payments[0].TransactionDate.After(list.Payments[1].TransactionDate))

	to := now.Add(-24 * time.Hour)
	list, err = f.svc.ListPayments(context.Background(), pagination.Params{}, ListFilters{To: &to})
	require.NoError(t, err)
	require.Len(t, list.Payments, 1)
}

func TestListPaymentsInvalidRange(t *testing.T) {
	f := newPaymentFixture(t)
	from := time.Now()
	to := from.Add(-time.Hour)
	_, err := f.svc.ListPayments(context.Background(), pagination.Params{}, ListFilters{From: &from, To: &to})
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
}

package tables

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

	"github.com/restaus/restaus-backend/pkg/db/models"
	"github.com/restaus/restaus-backend/pkg/enums"
	pkgerrors "github.com/restaus/restaus-backend/pkg/errors"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:tables_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	for _, schema := range []string{
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
	} {
		require.NoError(t, db.Exec(schema).Error)
	}
	return db
}

func newTestService(t *testing.T, db *gorm.DB) *service {
	t.Helper()
	svc, err := NewService(NewRepository(db), 5*time.Minute)
	require.NoError(t, err)
	return svc.(*service)
}

func seedTable(t *testing.T, db *gorm.DB, number string, status enums.TableStatus) *models.Table {
	t.Helper()
	table := &models.Table{
		ID:          uuid.New(),
		TableNumber: number,
		Capacity:    4,
		Status:      status,
	}
	require.NoError(t, db.Create(table).Error)
	return table
}

func seedOrder(t *testing.T, db *gorm.DB, tableID uuid.UUID, status enums.OrderStatus, updatedAt time.Time) *models.Order {
	t.Helper()
	order := &models.Order{
		ID:          uuid.New(),
		TableID:     &tableID,
		UserID:      uuid.New(),
		OrderType:   enums.OrderTypeDineIn,
		Status:      status,
		TotalAmount: decimal.NewFromInt(30000),
		CreatedAt:   updatedAt.Add(-10 * time.Minute),
		UpdatedAt:   updatedAt,
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func TestCompareTableNumbers(t *testing.T) {
	t.Parallel()

	cases := []struct {
		a, b string
		want int
	}{
		{"T1", "T2", -1},
		{"T2", "T10", -1},
		{"T10", "T10", 0},
		{"T10", "T2", 1},
		{"A5", "B1", -1},
		{"T01", "T1", 0},
		{"T1", "T1A", -1},
	}
	for _, tc := range cases {
		got := compareTableNumbers(tc.a, tc.b)
		if (got < 0) != (tc.want < 0) || (got == 0) != (tc.want == 0) {
			t.Errorf("compare(%q, %q) = %d, want sign of %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestListTablesNaturalOrderAndProjection(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	t10 := seedTable(t, db, "T10", enums.TableStatusOccupied)
	seedTable(t, db, "T2", enums.TableStatusAvailable)
	seedTable(t, db, "T1", enums.TableStatusReserved)
	seedOrder(t, db, t10.ID, enums.OrderStatusProcessing, time.Now())

	out, err := svc.ListTables(ctx)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, "T1", out[0].TableNumber)
	assert.Equal(t, "T2", out[1].TableNumber)
	assert.Equal(t, "T10", out[2].TableNumber)

	require.NotNil(t, out[2].ActiveOrder)
	assert.Equal(t, enums.OrderStatusProcessing, out[2].ActiveOrder.Status)
	assert.False(t, out[2].UnpaidWarning)
	assert.Nil(t, out[0].ActiveOrder)
}

func TestUnpaidWarningAfterThreshold(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	table := seedTable(t, db, "T3", enums.TableStatusOccupied)
	seedOrder(t, db, table.ID, enums.OrderStatusDelivered, time.Now().Add(-6*time.Minute))

	dto, err := svc.GetTable(ctx, table.ID)
	require.NoError(t, err)
	require.NotNil(t, dto.ActiveOrder)
	assert.True(t, dto.UnpaidWarning)

	// a freshly delivered order stays quiet
	fresh := seedTable(t, db, "T4", enums.TableStatusOccupied)
	seedOrder(t, db, fresh.ID, enums.OrderStatusDelivered, time.Now())
	dto, err = svc.GetTable(ctx, fresh.ID)
	require.NoError(t, err)
	assert.False(t, dto.UnpaidWarning)
}

func TestCreateTableDuplicateNumber(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	_, err := svc.CreateTable(ctx, CreateTableInput{TableNumber: "T7", Capacity: 2})
	require.NoError(t, err)

	_, err = svc.CreateTable(ctx, CreateTableInput{TableNumber: "T7", Capacity: 4})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
}

func TestUpdateTableStatusOverrideGuards(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	table := seedTable(t, db, "T5", enums.TableStatusAvailable)

	reserved := enums.TableStatusReserved
	dto, err := svc.UpdateTable(ctx, table.ID, UpdateTableInput{Status: &reserved})
	require.NoError(t, err)
	assert.Equal(t, enums.TableStatusReserved, dto.Status)

	occupied := enums.TableStatusOccupied
	_, err = svc.UpdateTable(ctx, table.ID, UpdateTableInput{Status: &occupied})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())

	// once an order claims the table, manual overrides are rejected
	seedOrder(t, db, table.ID, enums.OrderStatusProcessing, time.Now())
	available := enums.TableStatusAvailable
	_, err = svc.UpdateTable(ctx, table.ID, UpdateTableInput{Status: &available})
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())
}

func TestDeleteTableWithOpenOrder(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	table := seedTable(t, db, "T6", enums.TableStatusOccupied)
	seedOrder(t, db, table.ID, enums.OrderStatusDelivered, time.Now())

	err := svc.DeleteTable(ctx, table.ID)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())

	idle := seedTable(t, db, "T8", enums.TableStatusAvailable)
	require.NoError(t, svc.DeleteTable(ctx, idle.ID))

	err = svc.DeleteTable(ctx, uuid.New())
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

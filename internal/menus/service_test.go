package menus

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/restaus/restaus-backend/pkg/db/models"
	pkgerrors "github.com/restaus/restaus-backend/pkg/errors"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (g gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return g.db.Transaction(func(tx *gorm.DB) error { return fn(tx) })
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:menus_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	for _, schema := range []string{
		`CREATE TABLE IF NOT EXISTS categories (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  icon TEXT,
  sort_order INTEGER NOT NULL DEFAULT 0
);`,
		`CREATE TABLE IF NOT EXISTS menus (
  id TEXT PRIMARY KEY,
  category_id TEXT NOT NULL,
  name TEXT NOT NULL,
  description TEXT,
  price NUMERIC NOT NULL,
  image_url TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS inventories (
  id TEXT PRIMARY KEY,
  menu_id TEXT NOT NULL UNIQUE,
  daily_stock INTEGER NOT NULL DEFAULT 0,
  remaining_stock INTEGER NOT NULL DEFAULT 0,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  menu_id TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  price_at_time NUMERIC NOT NULL,
  subtotal NUMERIC NOT NULL,
  special_notes TEXT,
  status TEXT NOT NULL DEFAULT 'pending',
  created_at DATETIME,
  updated_at DATETIME
);`,
	} {
		require.NoError(t, db.Exec(schema).Error)
	}
	return db
}

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	svc, err := NewService(NewRepository(db), gormTxRunner{db: db})
	require.NoError(t, err)
	return svc, db
}

func seedCategory(t *testing.T, svc Service, name string) *CategoryDTO {
	t.Helper()
	category, err := svc.CreateCategory(context.Background(), CreateCategoryInput{Name: name})
	require.NoError(t, err)
	return category
}

func TestCreateMenuWithStock(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	category := seedCategory(t, svc, "Mains")

	menu, err := svc.CreateMenu(ctx, CreateMenuInput{
		CategoryID: category.ID,
		Name:       "Nasi Goreng",
		Price:      decimal.NewFromInt(25000),
		IsActive:   true,
		DailyStock: 20,
	})
	require.NoError(t, err)
	assert.Equal(t, "Nasi Goreng", menu.Name)
	assert.Equal(t, "Mains", menu.CategoryName)
	assert.Equal(t, 20, menu.DailyStock)
	assert.Equal(t, 20, menu.RemainingStock)

	var inv models.Inventory
	require.NoError(t, db.First(&inv, "menu_id = ?", menu.ID).Error)
	assert.Equal(t, 20, inv.RemainingStock)
}

func TestCreateMenuUnknownCategory(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	_, err := svc.CreateMenu(context.Background(), CreateMenuInput{
		CategoryID: uuid.New(),
		Name:       "Orphan",
		Price:      decimal.NewFromInt(1000),
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestUpdateMenuRefillsStock(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	category := seedCategory(t, svc, "Drinks")

	menu, err := svc.CreateMenu(ctx, CreateMenuInput{
		CategoryID: category.ID,
		Name:       "Es Teh",
		Price:      decimal.NewFromInt(5000),
		IsActive:   true,
		DailyStock: 50,
	})
	require.NoError(t, err)

	// burn through some stock, then the admin raises the daily allotment
	require.NoError(t, db.Model(&models.Inventory{}).
		Where("menu_id = ?", menu.ID).Update("remaining_stock", 3).Error)

	newStock := 60
	newPrice := decimal.NewFromInt(6000)
	updated, err := svc.UpdateMenu(ctx, menu.ID, UpdateMenuInput{
		Price:      &newPrice,
		DailyStock: &newStock,
	})
	require.NoError(t, err)
	assert.True(t, updated.Price.Equal(newPrice))
	assert.Equal(t, 60, updated.DailyStock)
	assert.Equal(t, 60, updated.RemainingStock)
}

func TestUpdateMenuNotFound(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	inactive := false
	_, err := svc.UpdateMenu(context.Background(), uuid.New(), UpdateMenuInput{IsActive: &inactive})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestListMenusFilters(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	mains := seedCategory(t, svc, "Mains")
	drinks := seedCategory(t, svc, "Drinks")

	nasi, err := svc.CreateMenu(ctx, CreateMenuInput{
		CategoryID: mains.ID, Name: "Nasi Goreng", Price: decimal.NewFromInt(25000), IsActive: true, DailyStock: 10,
	})
	require.NoError(t, err)
	_, err = svc.CreateMenu(ctx, CreateMenuInput{
		CategoryID: drinks.ID, Name: "Es Teh", Price: decimal.NewFromInt(5000), IsActive: true, DailyStock: 10,
	})
	require.NoError(t, err)
	_, err = svc.CreateMenu(ctx, CreateMenuInput{
		CategoryID: mains.ID, Name: "Mie Goreng", Price: decimal.NewFromInt(22000), IsActive: false, DailyStock: 0,
	})
	require.NoError(t, err)

	byCategory, err := svc.ListMenus(ctx, ListFilters{CategoryID: &mains.ID})
	require.NoError(t, err)
	assert.Len(t, byCategory, 2)

	active := true
	activeOnly, err := svc.ListMenus(ctx, ListFilters{IsActive: &active})
	require.NoError(t, err)
	assert.Len(t, activeOnly, 2)

	bySearch, err := svc.ListMenus(ctx, ListFilters{Search: "goreng"})
	require.NoError(t, err)
	assert.Len(t, bySearch, 2)

	// deplete one item and ask for in-stock menus only
	require.NoError(t, db.Model(&models.Inventory{}).
		Where("menu_id = ?", nasi.ID).Update("remaining_stock", 0).Error)
	inStock, err := svc.ListMenus(ctx, ListFilters{InStock: true})
	require.NoError(t, err)
	require.Len(t, inStock, 1)
	assert.Equal(t, "Es Teh", inStock[0].Name)
}

func TestDeleteMenuRemovesStockRow(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	category := seedCategory(t, svc, "Mains")

	menu, err := svc.CreateMenu(ctx, CreateMenuInput{
		CategoryID: category.ID,
		Name:       "Ayam Bakar",
		Price:      decimal.NewFromInt(30000),
		IsActive:   true,
		DailyStock: 15,
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteMenu(ctx, menu.ID))

	var menuCount, invCount int64
	require.NoError(t, db.Model(&models.Menu{}).Where("id = ?", menu.ID).Count(&menuCount).Error)
	require.NoError(t, db.Model(&models.Inventory{}).Where("menu_id = ?", menu.ID).Count(&invCount).Error)
	assert.Zero(t, menuCount)
	assert.Zero(t, invCount)

	_, err = svc.GetMenu(ctx, menu.ID)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestDeleteMenuBlockedByOrderHistory(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	category := seedCategory(t, svc, "Mains")

	menu, err := svc.CreateMenu(ctx, CreateMenuInput{
		CategoryID: category.ID,
		Name:       "Sate Ayam",
		Price:      decimal.NewFromInt(28000),
		IsActive:   true,
		DailyStock: 10,
	})
	require.NoError(t, err)

	require.NoError(t, db.Create(&models.OrderItem{
		ID:          uuid.New(),
		OrderID:     uuid.New(),
		MenuID:      menu.ID,
		Quantity:    2,
		PriceAtTime: decimal.NewFromInt(28000),
		Subtotal:    decimal.NewFromInt(56000),
	}).Error)

	err = svc.DeleteMenu(ctx, menu.ID)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())

	// the menu and its stock row survive
	var menuCount, invCount int64
	require.NoError(t, db.Model(&models.Menu{}).Where("id = ?", menu.ID).Count(&menuCount).Error)
	require.NoError(t, db.Model(&models.Inventory{}).Where("menu_id = ?", menu.ID).Count(&invCount).Error)
	assert.EqualValues(t, 1, menuCount)
	assert.EqualValues(t, 1, invCount)
}

func TestDeleteMenuNotFound(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	err := svc.DeleteMenu(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestCreateCategoryDuplicateName(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	seedCategory(t, svc, "Mains")

	_, err := svc.CreateCategory(context.Background(), CreateCategoryInput{Name: "Mains"})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
}

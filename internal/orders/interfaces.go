package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/restaus/restaus-backend/internal/inventory"
	"github.com/restaus/restaus-backend/internal/tables"
	"github.com/restaus/restaus-backend/pkg/db/models"
	"github.com/restaus/restaus-backend/pkg/enums"
	"github.com/restaus/restaus-backend/pkg/outbox"
	"github.com/restaus/restaus-backend/pkg/pagination"
)

// Repository defines persistence operations for orders and their lines.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	CreateOrderItems(ctx context.Context, items []models.OrderItem) error
	FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindOrderDetail(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindOrderItem(ctx context.Context, id uuid.UUID) (*models.OrderItem, error)
	FindOrderItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error)
	FindMenusByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Menu, error)
	UpdateOrder(ctx context.Context, id uuid.UUID, updates map[string]any) error
	UpdateOrderItemStatus(ctx context.Context, id uuid.UUID, status enums.OrderItemStatus) error
	MarkAllItemsServed(ctx context.Context, orderID uuid.UUID) error
	ListOrders(ctx context.Context, params pagination.Params, filters ListFilters) (*OrderList, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// StockKeeper moves portions in and out of the stock ledger.
type StockKeeper interface {
	Reserve(ctx context.Context, tx *gorm.DB, requests []inventory.StockRequest) ([]inventory.StockResult, error)
	Release(ctx context.Context, tx *gorm.DB, requests []inventory.StockRequest) error
}

// TableKeeper flips occupancy state as the order lifecycle moves.
type TableKeeper interface {
	Find(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Table, error)
	SetStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status enums.TableStatus) error
}

type stockKeeperImpl struct{}

// NewStockKeeper exposes the default ledger-backed stock keeper.
func NewStockKeeper() StockKeeper {
	return stockKeeperImpl{}
}

func (stockKeeperImpl) Reserve(ctx context.Context, tx *gorm.DB, requests []inventory.StockRequest) ([]inventory.StockResult, error) {
	return inventory.ReserveStock(ctx, tx, requests)
}

func (stockKeeperImpl) Release(ctx context.Context, tx *gorm.DB, requests []inventory.StockRequest) error {
	return inventory.ReleaseStock(ctx, tx, requests)
}

type tableKeeperImpl struct{}

// NewTableKeeper exposes the default tables-backed occupancy keeper.
func NewTableKeeper() TableKeeper {
	return tableKeeperImpl{}
}

func (tableKeeperImpl) Find(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Table, error) {
	return tables.NewRepository(tx).FindByID(ctx, id)
}

func (tableKeeperImpl) SetStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status enums.TableStatus) error {
	return tables.NewRepository(tx).SetStatus(ctx, id, status)
}

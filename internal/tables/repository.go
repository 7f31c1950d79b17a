package tables

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/restaus/restaus-backend/pkg/db/models"
	"github.com/restaus/restaus-backend/pkg/enums"
)

// activeOrderStatuses are the lifecycle states that keep a table claimed.
var activeOrderStatuses = []enums.OrderStatus{
	enums.OrderStatusPending,
	enums.OrderStatusProcessing,
	enums.OrderStatusDelivered,
}

// Repository exposes dining table persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a tables repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts a table row.
func (r *Repository) Create(ctx context.Context, table *models.Table) (*models.Table, error) {
	if table.ID == uuid.Nil {
		table.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(table).Error; err != nil {
		return nil, err
	}
	return table, nil
}

// FindByID loads a table by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Table, error) {
	var table models.Table
	if err := r.db.WithContext(ctx).First(&table, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &table, nil
}

// List returns every table; callers sort by table number.
func (r *Repository) List(ctx context.Context) ([]models.Table, error) {
	var rows []models.Table
	err := r.db.WithContext(ctx).Find(&rows).Error
	return rows, err
}

// Update applies the given column updates.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).Model(&models.Table{}).Where("id = ?", id).Updates(updates).Error
}

// Delete removes the table row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Table{}, "id = ?", id).Error
}

// SetStatus writes the occupancy state. The order engine is the only caller
// for 'occupied'; admins may only set available or reserved.
func (r *Repository) SetStatus(ctx context.Context, id uuid.UUID, status enums.TableStatus) error {
	return r.db.WithContext(ctx).Model(&models.Table{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// FindActiveOrder returns the open order currently claiming the table, if any.
func (r *Repository) FindActiveOrder(ctx context.Context, tableID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Where("table_id = ? AND status IN ?", tableID, activeOrderStatuses).
		Order("created_at DESC").
		First(&order).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// FindActiveOrders returns every open dine-in order keyed by table id.
func (r *Repository) FindActiveOrders(ctx context.Context) (map[uuid.UUID]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Where("table_id IS NOT NULL AND status IN ?", activeOrderStatuses).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]models.Order, len(rows))
	for _, row := range rows {
		if row.TableID == nil {
			continue
		}
		out[*row.TableID] = row
	}
	return out, nil
}

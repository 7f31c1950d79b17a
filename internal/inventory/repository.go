package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/restaus/restaus-backend/pkg/db/models"
	pkgerrors "github.com/restaus/restaus-backend/pkg/errors"
)

// Repository owns reads and admin writes on the inventories table. Order
// placement never goes through here; it uses the conditional deductions in
// ReserveStock.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// GetByMenuID loads the stock row for one menu item.
func (r *Repository) GetByMenuID(ctx context.Context, menuID uuid.UUID) (*models.Inventory, error) {
	var inv models.Inventory
	err := r.db.WithContext(ctx).Where("menu_id = ?", menuID).First(&inv).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "stock record not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading stock record")
	}
	return &inv, nil
}

// Upsert creates or replaces the stock row for a menu item. Setting the
// daily stock also refills the remaining stock, matching the daily reset.
func (r *Repository) Upsert(ctx context.Context, menuID uuid.UUID, dailyStock int) (*models.Inventory, error) {
	if dailyStock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "daily stock cannot be negative")
	}

	var inv models.Inventory
	err := r.db.WithContext(ctx).Where("menu_id = ?", menuID).First(&inv).Error
	switch {
	case err == gorm.ErrRecordNotFound:
		inv = models.Inventory{
			ID:             uuid.New(),
			MenuID:         menuID,
			DailyStock:     dailyStock,
			RemainingStock: dailyStock,
		}
		if createErr := r.db.WithContext(ctx).Create(&inv).Error; createErr != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, createErr, "creating stock record")
		}
		return &inv, nil
	case err != nil:
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading stock record")
	}

	updates := map[string]any{
		"daily_stock":     dailyStock,
		"remaining_stock": dailyStock,
		"updated_at":      time.Now(),
	}
	if updErr := r.db.WithContext(ctx).Model(&models.Inventory{}).
		Where("menu_id = ?", menuID).Updates(updates).Error; updErr != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, updErr, "updating stock record")
	}
	inv.DailyStock = dailyStock
	inv.RemainingStock = dailyStock
	return &inv, nil
}

// DeleteByMenuID removes the stock row tied to a menu item. Missing rows
// are not an error; menus created before stock tracking may not have one.
func (r *Repository) DeleteByMenuID(ctx context.Context, menuID uuid.UUID) error {
	err := r.db.WithContext(ctx).Where("menu_id = ?", menuID).Delete(&models.Inventory{}).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting stock record")
	}
	return nil
}

// ResetAll refills every menu's remaining stock back to its daily stock,
// returning the number of rows touched.
func (r *Repository) ResetAll(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Inventory{}).
		Where("remaining_stock <> daily_stock").
		Updates(map[string]any{
			"remaining_stock": gorm.Expr("daily_stock"),
			"updated_at":      time.Now(),
		})
	if res.Error != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "resetting daily stock")
	}
	return res.RowsAffected, nil
}

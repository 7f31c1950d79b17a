package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/restaus/restaus-backend/pkg/db/models"
	pkgerrors "github.com/restaus/restaus-backend/pkg/errors"
)

// StockRequest asks the ledger to deduct Qty portions for one menu item.
type StockRequest struct {
	MenuID uuid.UUID
	Qty    int
}

// StockResult reports the per-line outcome of a deduction attempt.
type StockResult struct {
	MenuID   uuid.UUID
	Qty      int
	Reserved bool
	Reason   string
}

// ReserveStock deducts remaining stock for every request inside the caller's
// transaction. Each deduction is a conditional UPDATE guarded by
// remaining_stock >= qty, so concurrent orders can never drive the ledger
// negative. Callers must roll back the transaction when any line fails.
func ReserveStock(ctx context.Context, tx *gorm.DB, requests []StockRequest) ([]StockResult, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction required")
	}

	results := make([]StockResult, 0, len(requests))
	for _, req := range requests {
		if req.Qty <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("quantity must be positive for menu %s", req.MenuID))
		}

		res := tx.WithContext(ctx).Model(&models.Inventory{}).
			Where("menu_id = ? AND remaining_stock >= ?", req.MenuID, req.Qty).
			Updates(map[string]any{
				"remaining_stock": gorm.Expr("remaining_stock - ?", req.Qty),
				"updated_at":      time.Now(),
			})
		if res.Error != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "deducting stock")
		}

		result := StockResult{MenuID: req.MenuID, Qty: req.Qty, Reserved: res.RowsAffected == 1}
		if !result.Reserved {
			result.Reason = deductionFailureReason(ctx, tx, req)
		}
		results = append(results, result)
	}
	return results, nil
}

func deductionFailureReason(ctx context.Context, tx *gorm.DB, req StockRequest) string {
	var inv models.Inventory
	err := tx.WithContext(ctx).Where("menu_id = ?", req.MenuID).First(&inv).Error
	if err != nil {
		return "stock not tracked"
	}
	return fmt.Sprintf("insufficient stock: requested %d, remaining %d", req.Qty, inv.RemainingStock)
}

// ReleaseStock returns previously deducted portions to the ledger, used when
// an order is cancelled before settlement.
func ReleaseStock(ctx context.Context, tx *gorm.DB, requests []StockRequest) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "transaction required")
	}

	for _, req := range requests {
		if req.Qty <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("quantity must be positive for menu %s", req.MenuID))
		}

		res := tx.WithContext(ctx).Model(&models.Inventory{}).
			Where("menu_id = ?", req.MenuID).
			Updates(map[string]any{
				"remaining_stock": gorm.Expr("remaining_stock + ?", req.Qty),
				"updated_at":      time.Now(),
			})
		if res.Error != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "restoring stock")
		}
	}
	return nil
}

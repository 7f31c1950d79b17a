package tables

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/restaus/restaus-backend/pkg/db/models"
	"github.com/restaus/restaus-backend/pkg/enums"
)

// ActiveOrderSummary is the slim order view embedded in the floor plan.
type ActiveOrderSummary struct {
	ID          uuid.UUID         `json:"id"`
	Status      enums.OrderStatus `json:"status"`
	TotalAmount decimal.Decimal   `json:"total_amount"`
	PlacedAt    time.Time         `json:"placed_at"`
}

// TableDTO is the transport shape for a dining table with its occupancy view.
type TableDTO struct {
	ID            uuid.UUID           `json:"id"`
	TableNumber   string              `json:"table_number"`
	Capacity      int                 `json:"capacity"`
	Status        enums.TableStatus   `json:"status"`
	ActiveOrder   *ActiveOrderSummary `json:"active_order,omitempty"`
	UnpaidWarning bool                `json:"unpaid_warning"`
	CreatedAt     time.Time           `json:"created_at"`
}

func FromModel(t *models.Table) *TableDTO {
	if t == nil {
		return nil
	}
	return &TableDTO{
		ID:          t.ID,
		TableNumber: t.TableNumber,
		Capacity:    t.Capacity,
		Status:      t.Status,
		CreatedAt:   t.CreatedAt,
	}
}

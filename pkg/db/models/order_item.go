package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/restaus/restaus-backend/pkg/enums"
)

// OrderItem captures the price at the moment the order was placed so later
// menu edits never change historical totals.
type OrderItem struct {
	ID           uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID      uuid.UUID             `gorm:"column:order_id;type:uuid;not null;index" json:"order_id"`
	MenuID       uuid.UUID             `gorm:"column:menu_id;type:uuid;not null" json:"menu_id"`
	Quantity     int                   `gorm:"column:quantity;not null" json:"quantity"`
	PriceAtTime  decimal.Decimal       `gorm:"column:price_at_time;type:numeric(12,2);not null" json:"price_at_time"`
	Subtotal     decimal.Decimal       `gorm:"column:subtotal;type:numeric(12,2);not null" json:"subtotal"`
	SpecialNotes *string               `gorm:"column:special_notes" json:"special_notes,omitempty"`
	Status       enums.OrderItemStatus `gorm:"column:status;type:text;not null;default:'pending'" json:"status"`
	Menu         *Menu                 `gorm:"foreignKey:MenuID" json:"menu,omitempty"`
	CreatedAt    time.Time             `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time             `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/restaus/restaus-backend/pkg/enums"
)

// Order is the central aggregate. TableID is required for dine-in orders and
// absent for take-away; TotalAmount is frozen at placement.
type Order struct {
	ID           uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TableID      *uuid.UUID        `gorm:"column:table_id;type:uuid" json:"table_id,omitempty"`
	UserID       uuid.UUID         `gorm:"column:user_id;type:uuid;not null" json:"user_id"`
	CustomerName *string           `gorm:"column:customer_name" json:"customer_name,omitempty"`
	OrderType    enums.OrderType   `gorm:"column:order_type;type:text;not null" json:"order_type"`
	Status       enums.OrderStatus `gorm:"column:status;type:text;not null;default:'pending'" json:"status"`
	TotalAmount  decimal.Decimal   `gorm:"column:total_amount;type:numeric(12,2);not null" json:"total_amount"`
	Table        *Table            `gorm:"foreignKey:TableID" json:"table,omitempty"`
	Waiter       *User             `gorm:"foreignKey:UserID" json:"waiter,omitempty"`
	Items        []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	CreatedAt    time.Time         `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time         `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

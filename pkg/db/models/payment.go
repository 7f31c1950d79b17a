package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/restaus/restaus-backend/pkg/enums"
)

// Payment records a settlement. The unique index on OrderID backs the
// one-payment-per-order rule even if two cashiers race past the status check.
type Payment struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID         uuid.UUID           `gorm:"column:order_id;type:uuid;not null;uniqueIndex" json:"order_id"`
	CashierID       uuid.UUID           `gorm:"column:cashier_id;type:uuid;not null" json:"cashier_id"`
	Method          enums.PaymentMethod `gorm:"column:method;type:text;not null" json:"method"`
	AmountPaid      decimal.Decimal     `gorm:"column:amount_paid;type:numeric(12,2);not null" json:"amount_paid"`
	ChangeAmount    decimal.Decimal     `gorm:"column:change_amount;type:numeric(12,2);not null" json:"change_amount"`
	Order           *Order              `gorm:"foreignKey:OrderID" json:"order,omitempty"`
	Cashier         *User               `gorm:"foreignKey:CashierID" json:"cashier,omitempty"`
	TransactionDate time.Time           `gorm:"column:transaction_date;autoCreateTime" json:"transaction_date"`
}

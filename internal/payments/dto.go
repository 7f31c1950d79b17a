package payments

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/restaus/restaus-backend/pkg/db/models"
	"github.com/restaus/restaus-backend/pkg/enums"
)

// ProcessPaymentInput settles one delivered order.
type ProcessPaymentInput struct {
	OrderID    uuid.UUID
	CashierID  uuid.UUID
	ActorRole  string
	Method     enums.PaymentMethod
	AmountPaid decimal.Decimal
}

// ListFilters narrows the payment listing to a date range or method.
type ListFilters struct {
	From   *time.Time
	To     *time.Time
	Method *enums.PaymentMethod
}

// PaymentDTO is the transport shape for one settlement.
type PaymentDTO struct {
	ID              uuid.UUID           `json:"id"`
	OrderID         uuid.UUID           `json:"order_id"`
	CashierID       uuid.UUID           `json:"cashier_id"`
	CashierName     string              `json:"cashier_name,omitempty"`
	TableNumber     string              `json:"table_number,omitempty"`
	Method          enums.PaymentMethod `json:"method"`
	AmountPaid      decimal.Decimal     `json:"amount_paid"`
	ChangeAmount    decimal.Decimal     `json:"change_amount"`
	OrderTotal      decimal.Decimal     `json:"order_total"`
	TransactionDate time.Time           `json:"transaction_date"`
}

// PaymentList is a cursor page of payments.
type PaymentList struct {
	Payments   []PaymentDTO `json:"payments"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

func fromModel(payment *models.Payment) *PaymentDTO {
	if payment == nil {
		return nil
	}
	dto := &PaymentDTO{
		ID:              payment.ID,
		OrderID:         payment.OrderID,
		CashierID:       payment.CashierID,
		Method:          payment.Method,
		AmountPaid:      payment.AmountPaid,
		ChangeAmount:    payment.ChangeAmount,
		TransactionDate: payment.TransactionDate,
	}
	if payment.Cashier != nil {
		dto.CashierName = payment.Cashier.FullName
	}
	if payment.Order != nil {
		dto.OrderTotal = payment.Order.TotalAmount
		if payment.Order.Table != nil {
			dto.TableNumber = payment.Order.Table.TableNumber
		}
	}
	return dto
}

// OrderSettledEvent is recorded in the outbox when a payment closes an order.
type OrderSettledEvent struct {
	OrderID      uuid.UUID           `json:"order_id"`
	PaymentID    uuid.UUID           `json:"payment_id"`
	Method       enums.PaymentMethod `json:"method"`
	AmountPaid   decimal.Decimal     `json:"amount_paid"`
	ChangeAmount decimal.Decimal     `json:"change_amount"`
}

package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/restaus/restaus-backend/pkg/db/models"
	"github.com/restaus/restaus-backend/pkg/enums"
)

// OrderItemInput is one requested line at placement time.
type OrderItemInput struct {
	MenuID       uuid.UUID `json:"menu_id" validate:"required"`
	Quantity     int       `json:"quantity" validate:"required,gt=0"`
	SpecialNotes *string   `json:"special_notes,omitempty"`
}

// PlaceOrderInput captures everything needed to open an order.
type PlaceOrderInput struct {
	WaiterID     uuid.UUID
	ActorRole    string
	OrderType    enums.OrderType
	TableID      *uuid.UUID
	CustomerName *string
	Items        []OrderItemInput
}

// UpdateItemStatusInput moves one kitchen line forward.
type UpdateItemStatusInput struct {
	ItemID    uuid.UUID
	Status    enums.OrderItemStatus
	ActorID   uuid.UUID
	ActorRole string
}

// UpdateStatusInput moves the order lifecycle forward.
type UpdateStatusInput struct {
	OrderID   uuid.UUID
	Status    enums.OrderStatus
	ActorID   uuid.UUID
	ActorRole string
}

// ListFilters narrows the order listing. DateFrom is inclusive, DateTo
// exclusive.
type ListFilters struct {
	Status    *enums.OrderStatus
	OrderType *enums.OrderType
	TableID   *uuid.UUID
	DateFrom  *time.Time
	DateTo    *time.Time
}

// OrderItemDTO is the transport shape for one order line.
type OrderItemDTO struct {
	ID           uuid.UUID             `json:"id"`
	MenuID       uuid.UUID             `json:"menu_id"`
	MenuName     string                `json:"menu_name,omitempty"`
	Quantity     int                   `json:"quantity"`
	PriceAtTime  decimal.Decimal       `json:"price_at_time"`
	Subtotal     decimal.Decimal       `json:"subtotal"`
	SpecialNotes *string               `json:"special_notes,omitempty"`
	Status       enums.OrderItemStatus `json:"status"`
}

// OrderDTO is the transport shape for an order with its lines.
type OrderDTO struct {
	ID            uuid.UUID         `json:"id"`
	TableID       *uuid.UUID        `json:"table_id,omitempty"`
	TableNumber   string            `json:"table_number,omitempty"`
	WaiterID      uuid.UUID         `json:"waiter_id"`
	WaiterName    string            `json:"waiter_name,omitempty"`
	CustomerName  *string           `json:"customer_name,omitempty"`
	OrderType     enums.OrderType   `json:"order_type"`
	Status        enums.OrderStatus `json:"status"`
	TotalAmount   decimal.Decimal   `json:"total_amount"`
	UnpaidWarning bool              `json:"unpaid_warning"`
	Items         []OrderItemDTO    `json:"items,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// OrderList is a cursor page of orders.
type OrderList struct {
	Orders     []OrderDTO `json:"orders"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

func itemFromModel(item *models.OrderItem) OrderItemDTO {
	dto := OrderItemDTO{
		ID:           item.ID,
		MenuID:       item.MenuID,
		Quantity:     item.Quantity,
		PriceAtTime:  item.PriceAtTime,
		Subtotal:     item.Subtotal,
		SpecialNotes: item.SpecialNotes,
		Status:       item.Status,
	}
	if item.Menu != nil {
		dto.MenuName = item.Menu.Name
	}
	return dto
}

func fromModel(order *models.Order) *OrderDTO {
	if order == nil {
		return nil
	}
	dto := &OrderDTO{
		ID:           order.ID,
		TableID:      order.TableID,
		WaiterID:     order.UserID,
		CustomerName: order.CustomerName,
		OrderType:    order.OrderType,
		Status:       order.Status,
		TotalAmount:  order.TotalAmount,
		CreatedAt:    order.CreatedAt,
		UpdatedAt:    order.UpdatedAt,
	}
	if order.Table != nil {
		dto.TableNumber = order.Table.TableNumber
	}
	if order.Waiter != nil {
		dto.WaiterName = order.Waiter.FullName
	}
	for i := range order.Items {
		dto.Items = append(dto.Items, itemFromModel(&order.Items[i]))
	}
	return dto
}

// OrderPlacedEvent is recorded in the outbox when an order opens.
type OrderPlacedEvent struct {
	OrderID     uuid.UUID       `json:"order_id"`
	TableID     *uuid.UUID      `json:"table_id,omitempty"`
	OrderType   enums.OrderType `json:"order_type"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	ItemCount   int             `json:"item_count"`
}

// OrderStatusEvent is recorded when the lifecycle state changes.
type OrderStatusEvent struct {
	OrderID uuid.UUID         `json:"order_id"`
	From    enums.OrderStatus `json:"from"`
	To      enums.OrderStatus `json:"to"`
}

// OrderCancelledEvent is recorded when an order is cancelled and restocked.
type OrderCancelledEvent struct {
	OrderID        uuid.UUID         `json:"order_id"`
	From           enums.OrderStatus `json:"from"`
	RestockedLines int               `json:"restocked_lines"`
}

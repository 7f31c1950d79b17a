package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/restaus/restaus-backend/internal/inventory"
	"github.com/restaus/restaus-backend/pkg/db/models"
	"github.com/restaus/restaus-backend/pkg/enums"
	pkgerrors "github.com/restaus/restaus-backend/pkg/errors"
	"github.com/restaus/restaus-backend/pkg/metrics"
	"github.com/restaus/restaus-backend/pkg/outbox"
	"github.com/restaus/restaus-backend/pkg/pagination"
)

// DefaultUnpaidWarningAfter flags delivered orders still awaiting settlement.
const DefaultUnpaidWarningAfter = 5 * time.Minute

// statusRank orders the forward lifecycle. Cancelled sits outside the rank
// because it is only reachable from pending and processing.
var statusRank = map[enums.OrderStatus]int{
	enums.OrderStatusPending:    0,
	enums.OrderStatusProcessing: 1,
	enums.OrderStatusDelivered:  2,
	enums.OrderStatusCompleted:  3,
}

var itemStatusRank = map[enums.OrderItemStatus]int{
	enums.OrderItemStatusPending: 0,
	enums.OrderItemStatusCooking: 1,
	enums.OrderItemStatusServed:  2,
}

// Service defines the order lifecycle operations.
type Service interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*OrderDTO, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*OrderDTO, error)
	ListOrders(ctx context.Context, params pagination.Params, filters ListFilters) (*OrderList, error)
	UpdateItemStatus(ctx context.Context, input UpdateItemStatusInput) (*OrderDTO, error)
	UpdateStatus(ctx context.Context, input UpdateStatusInput) (*OrderDTO, error)
	CancelOrder(ctx context.Context, orderID, actorID uuid.UUID, actorRole string) (*OrderDTO, error)
}

type service struct {
	repo         Repository
	tx           txRunner
	outbox       outboxPublisher
	stock        StockKeeper
	tables       TableKeeper
	metrics      *metrics.ServiceMetrics
	warningAfter time.Duration
	now          func() time.Time
}

// ServiceParams collects the dependencies for the order service. Metrics may
// be nil; every counter is a no-op in that case.
type ServiceParams struct {
	Repo         Repository
	Tx           txRunner
	Outbox       outboxPublisher
	Stock        StockKeeper
	Tables       TableKeeper
	Metrics      *metrics.ServiceMetrics
	WarningAfter time.Duration
}

// NewService builds an order service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if params.Stock == nil {
		return nil, fmt.Errorf("stock keeper required")
	}
	if params.Tables == nil {
		return nil, fmt.Errorf("table keeper required")
	}
	warningAfter := params.WarningAfter
	if warningAfter <= 0 {
		warningAfter = DefaultUnpaidWarningAfter
	}
	return &service{
		repo:         params.Repo,
		tx:           params.Tx,
		outbox:       params.Outbox,
		stock:        params.Stock,
		tables:       params.Tables,
		metrics:      params.Metrics,
		warningAfter: warningAfter,
		now:          time.Now,
	}, nil
}

func (s *service) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*OrderDTO, error) {
	if input.WaiterID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !input.OrderType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order type")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order requires at least one item")
	}
	for _, item := range input.Items {
		if item.MenuID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "menu id required on every item")
		}
		if item.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive")
		}
	}
	if input.OrderType == enums.OrderTypeDineIn && input.TableID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "dine-in orders require a table")
	}
	if input.OrderType == enums.OrderTypeTakeAway && input.TableID != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "take-away orders cannot reference a table")
	}

	var orderID uuid.UUID
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if input.TableID != nil {
			table, err := s.tables.Find(ctx, tx, *input.TableID)
			if err != nil {
				if err == gorm.ErrRecordNotFound {
					return pkgerrors.New(pkgerrors.CodeNotFound, "table not found")
				}
				if appErr := pkgerrors.As(err); appErr != nil {
					return appErr
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load table")
			}
			if table.Status == enums.TableStatusOccupied {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "table already has an open order")
			}
		}

		menus, err := s.loadMenus(ctx, repo, input.Items)
		if err != nil {
			return err
		}

		requests := make([]inventory.StockRequest, 0, len(input.Items))
		for _, item := range input.Items {
			requests = append(requests, inventory.StockRequest{MenuID: item.MenuID, Qty: item.Quantity})
		}
		results, err := s.stock.Reserve(ctx, tx, requests)
		if err != nil {
			return err
		}
		var failures []inventory.StockResult
		for _, result := range results {
			if !result.Reserved {
				failures = append(failures, result)
			}
		}
		if len(failures) > 0 {
			s.metrics.IncStockRejection()
			return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock for one or more items").
				WithDetails(failures)
		}

		total := decimal.Zero
		items := make([]models.OrderItem, 0, len(input.Items))
		for _, item := range input.Items {
			menu := menus[item.MenuID]
			subtotal := menu.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
			total = total.Add(subtotal)
			items = append(items, models.OrderItem{
				MenuID:       item.MenuID,
				Quantity:     item.Quantity,
				PriceAtTime:  menu.Price,
				Subtotal:     subtotal,
				SpecialNotes: item.SpecialNotes,
				Status:       enums.OrderItemStatusPending,
			})
		}

		order := &models.Order{
			TableID:      input.TableID,
			UserID:       input.WaiterID,
			CustomerName: normalizeCustomerName(input.CustomerName),
			OrderType:    input.OrderType,
			Status:       enums.OrderStatusProcessing,
			TotalAmount:  total,
		}
		if _, err := repo.CreateOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := repo.CreateOrderItems(ctx, items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order items")
		}

		if input.TableID != nil {
			if err := s.tables.SetStatus(ctx, tx, *input.TableID, enums.TableStatusOccupied); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "occupy table")
			}
		}

		orderID = order.ID
		event := outbox.DomainEvent{
			EventType:     enums.EventOrderPlaced,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         buildActor(input.WaiterID, input.ActorRole),
			Data: OrderPlacedEvent{
				OrderID:     order.ID,
				TableID:     order.TableID,
				OrderType:   order.OrderType,
				TotalAmount: order.TotalAmount,
				ItemCount:   len(items),
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncOrderPlaced(input.OrderType.String())
	return s.GetOrder(ctx, orderID)
}

func (s *service) GetOrder(ctx context.Context, id uuid.UUID) (*OrderDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindOrderDetail(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	dto := fromModel(order)
	dto.UnpaidWarning = s.unpaidWarning(order.Status, order.UpdatedAt)
	return dto, nil
}

func (s *service) ListOrders(ctx context.Context, params pagination.Params, filters ListFilters) (*OrderList, error) {
	if filters.Status != nil && !filters.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
	}
	if filters.OrderType != nil && !filters.OrderType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order type filter")
	}
	if filters.DateFrom != nil && filters.DateTo != nil && filters.DateTo.Before(*filters.DateFrom) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date_to must not precede date_from")
	}
	list, err := s.repo.ListOrders(ctx, params, filters)
	if err != nil {
		if appErr := pkgerrors.As(err); appErr != nil {
			return nil, appErr
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	for i := range list.Orders {
		list.Orders[i].UnpaidWarning = s.unpaidWarning(list.Orders[i].Status, list.Orders[i].UpdatedAt)
	}
	return list, nil
}

func (s *service) UpdateItemStatus(ctx context.Context, input UpdateItemStatusInput) (*OrderDTO, error) {
	if input.ItemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid item status")
	}
	// pending is the placement state, never a target the kitchen can set
	if input.Status == enums.OrderItemStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item status can only move to cooking or served")
	}
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	var orderID uuid.UUID
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		item, err := repo.FindOrderItem(ctx, input.ItemID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order item")
		}
		orderID = item.OrderID

		order, err := repo.FindOrder(ctx, item.OrderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is closed")
		}

		if item.Status == input.Status {
			return nil
		}
		if itemStatusRank[input.Status] < itemStatusRank[item.Status] {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "item status cannot move backwards")
		}

		if err := repo.UpdateOrderItemStatus(ctx, item.ID, input.Status); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update item status")
		}

		if input.Status != enums.OrderItemStatusServed || order.Status != enums.OrderStatusProcessing {
			return nil
		}
		items, err := repo.FindOrderItems(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order items")
		}
		for _, it := range items {
			if it.Status != enums.OrderItemStatusServed {
				return nil
			}
		}

		// Every line is on the table; the order is delivered.
		if err := repo.UpdateOrder(ctx, order.ID, map[string]any{"status": enums.OrderStatusDelivered}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		event := outbox.DomainEvent{
			EventType:     enums.EventOrderDelivered,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         buildActor(input.ActorID, input.ActorRole),
			Data: OrderStatusEvent{
				OrderID: order.ID,
				From:    order.Status,
				To:      enums.OrderStatusDelivered,
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}
	return s.GetOrder(ctx, orderID)
}

func (s *service) UpdateStatus(ctx context.Context, input UpdateStatusInput) (*OrderDTO, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	if input.Status == enums.OrderStatusCancelled {
		return s.CancelOrder(ctx, input.OrderID, input.ActorID, input.ActorRole)
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindOrder(ctx, input.OrderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.Status == input.Status {
			return nil
		}
		if order.Status == enums.OrderStatusCancelled {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is cancelled")
		}
		currentRank, targetRank := statusRank[order.Status], statusRank[input.Status]
		if targetRank < currentRank {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order status cannot move backwards")
		}
		if targetRank-currentRank > 1 {
			// Only an admin may close an order without walking it through
			// the intermediate states.
			if input.Status != enums.OrderStatusCompleted || input.ActorRole != enums.UserRoleAdmin.String() {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "order status cannot skip states")
			}
		}

		if input.Status == enums.OrderStatusDelivered || input.Status == enums.OrderStatusCompleted {
			if err := repo.MarkAllItemsServed(ctx, order.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark items served")
			}
		}
		if err := repo.UpdateOrder(ctx, order.ID, map[string]any{"status": input.Status}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		if input.Status == enums.OrderStatusCompleted && order.TableID != nil {
			if err := s.tables.SetStatus(ctx, tx, *order.TableID, enums.TableStatusAvailable); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "release table")
			}
		}

		eventType := enums.EventOrderUpdated
		if input.Status == enums.OrderStatusDelivered {
			eventType = enums.EventOrderDelivered
		}
		event := outbox.DomainEvent{
			EventType:     eventType,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         buildActor(input.ActorID, input.ActorRole),
			Data: OrderStatusEvent{
				OrderID: order.ID,
				From:    order.Status,
				To:      input.Status,
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}
	return s.GetOrder(ctx, input.OrderID)
}

func (s *service) CancelOrder(ctx context.Context, orderID, actorID uuid.UUID, actorRole string) (*OrderDTO, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindOrder(ctx, orderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.Status != enums.OrderStatusPending && order.Status != enums.OrderStatusProcessing {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only pending or processing orders can be cancelled")
		}

		items, err := repo.FindOrderItems(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order items")
		}
		requests := make([]inventory.StockRequest, 0, len(items))
		for _, item := range items {
			requests = append(requests, inventory.StockRequest{MenuID: item.MenuID, Qty: item.Quantity})
		}
		if err := s.stock.Release(ctx, tx, requests); err != nil {
			return err
		}

		if err := repo.UpdateOrder(ctx, order.ID, map[string]any{"status": enums.OrderStatusCancelled}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		if order.TableID != nil {
			if err := s.tables.SetStatus(ctx, tx, *order.TableID, enums.TableStatusAvailable); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "release table")
			}
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventOrderCancelled,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         buildActor(actorID, actorRole),
			Data: OrderCancelledEvent{
				OrderID:        order.ID,
				From:           order.Status,
				RestockedLines: len(requests),
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncOrderCancelled()
	return s.GetOrder(ctx, orderID)
}

func (s *service) loadMenus(ctx context.Context, repo Repository, items []OrderItemInput) (map[uuid.UUID]models.Menu, error) {
	seen := make(map[uuid.UUID]struct{}, len(items))
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.MenuID]; ok {
			continue
		}
		seen[item.MenuID] = struct{}{}
		ids = append(ids, item.MenuID)
	}
	rows, err := repo.FindMenusByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load menus")
	}
	menus := make(map[uuid.UUID]models.Menu, len(rows))
	for _, row := range rows {
		menus[row.ID] = row
	}
	for _, id := range ids {
		menu, ok := menus[id]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "menu item not found")
		}
		if !menu.IsActive {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("menu item %q is not available", menu.Name))
		}
	}
	return menus, nil
}

func (s *service) unpaidWarning(status enums.OrderStatus, since time.Time) bool {
	return status == enums.OrderStatusDelivered && s.now().Sub(since) > s.warningAfter
}

func normalizeCustomerName(name *string) *string {
	if name == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*name)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func buildActor(userID uuid.UUID, role string) *outbox.ActorRef {
	return &outbox.ActorRef{UserID: userID, Role: role}
}

package payments

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/restaus/restaus-backend/internal/orders"
	"github.com/restaus/restaus-backend/internal/tables"
	"github.com/restaus/restaus-backend/pkg/db"
	"github.com/restaus/restaus-backend/pkg/db/models"
	"github.com/restaus/restaus-backend/pkg/enums"
	pkgerrors "github.com/restaus/restaus-backend/pkg/errors"
	"github.com/restaus/restaus-backend/pkg/metrics"
	"github.com/restaus/restaus-backend/pkg/outbox"
	"github.com/restaus/restaus-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// TableReleaser frees the table once its order settles.
type TableReleaser interface {
	SetStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status enums.TableStatus) error
}

type tableReleaserImpl struct{}

// NewTableReleaser exposes the default tables-backed releaser.
func NewTableReleaser() TableReleaser {
	return tableReleaserImpl{}
}

func (tableReleaserImpl) SetStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status enums.TableStatus) error {
	return tables.NewRepository(tx).SetStatus(ctx, id, status)
}

// Service defines settlement operations.
type Service interface {
	ProcessPayment(ctx context.Context, input ProcessPaymentInput) (*PaymentDTO, error)
	GetPayment(ctx context.Context, id uuid.UUID) (*PaymentDTO, error)
	ListPayments(ctx context.Context, params pagination.Params, filters ListFilters) (*PaymentList, error)
}

type service struct {
	repo    Repository
	orders  orders.Repository
	tx      txRunner
	outbox  outboxPublisher
	tables  TableReleaser
	metrics *metrics.ServiceMetrics
}

// ServiceParams collects the dependencies for the payment service. Metrics
// may be nil; every counter is a no-op in that case.
type ServiceParams struct {
	Repo    Repository
	Orders  orders.Repository
	Tx      txRunner
	Outbox  outboxPublisher
	Tables  TableReleaser
	Metrics *metrics.ServiceMetrics
}

// NewService builds a payment service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("payments repository required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if params.Tables == nil {
		return nil, fmt.Errorf("table releaser required")
	}
	return &service{
		repo:    params.Repo,
		orders:  params.Orders,
		tx:      params.Tx,
		outbox:  params.Outbox,
		tables:  params.Tables,
		metrics: params.Metrics,
	}, nil
}

func (s *service) ProcessPayment(ctx context.Context, input ProcessPaymentInput) (*PaymentDTO, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.CashierID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !input.Method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}
	if input.AmountPaid.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount paid cannot be negative")
	}

	var paymentID uuid.UUID
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ordersRepo := s.orders.WithTx(tx)
		repo := s.repo.WithTx(tx)

		order, err := ordersRepo.FindOrder(ctx, input.OrderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.Status == enums.OrderStatusCompleted {
			return pkgerrors.New(pkgerrors.CodeConflict, "order already paid")
		}
		if order.Status != enums.OrderStatusDelivered {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order must be delivered before settlement")
		}

		change := input.AmountPaid.Sub(order.TotalAmount)
		if change.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeInsufficientPayment, "amount paid is below the order total").
				WithDetails(map[string]string{
					"order_total": order.TotalAmount.String(),
					"amount_paid": input.AmountPaid.String(),
				})
		}

		payment := &models.Payment{
			OrderID:      order.ID,
			CashierID:    input.CashierID,
			Method:       input.Method,
			AmountPaid:   input.AmountPaid,
			ChangeAmount: change,
		}
		if _, err := repo.CreatePayment(ctx, payment); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "order already paid")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment")
		}
		paymentID = payment.ID

		if err := ordersRepo.UpdateOrder(ctx, order.ID, map[string]any{"status": enums.OrderStatusCompleted}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "complete order")
		}
		if order.TableID != nil {
			if err := s.tables.SetStatus(ctx, tx, *order.TableID, enums.TableStatusAvailable); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "release table")
			}
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventOrderSettled,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         &outbox.ActorRef{UserID: input.CashierID, Role: input.ActorRole},
			Data: OrderSettledEvent{
				OrderID:      order.ID,
				PaymentID:    payment.ID,
				Method:       payment.Method,
				AmountPaid:   payment.AmountPaid,
				ChangeAmount: payment.ChangeAmount,
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncPaymentSettled(input.Method.String())
	return s.GetPayment(ctx, paymentID)
}

func (s *service) GetPayment(ctx context.Context, id uuid.UUID) (*PaymentDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment id required")
	}
	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment")
	}
	return fromModel(payment), nil
}

func (s *service) ListPayments(ctx context.Context, params pagination.Params, filters ListFilters) (*PaymentList, error) {
	if filters.From != nil && filters.To != nil && filters.To.Before(*filters.From) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date range end precedes start")
	}
	if filters.Method != nil && !filters.Method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method filter")
	}
	list, err := s.repo.ListPayments(ctx, params, filters)
	if err != nil {
		if appErr := pkgerrors.As(err); appErr != nil {
			return nil, appErr
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list payments")
	}
	return list, nil
}

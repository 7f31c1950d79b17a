package tables

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/restaus/restaus-backend/pkg/db"
	"github.com/restaus/restaus-backend/pkg/db/models"
	"github.com/restaus/restaus-backend/pkg/enums"
	pkgerrors "github.com/restaus/restaus-backend/pkg/errors"
)

// Service exposes floor plan operations.
type Service interface {
	ListTables(ctx context.Context) ([]TableDTO, error)
	GetTable(ctx context.Context, id uuid.UUID) (*TableDTO, error)
	CreateTable(ctx context.Context, input CreateTableInput) (*TableDTO, error)
	UpdateTable(ctx context.Context, id uuid.UUID, input UpdateTableInput) (*TableDTO, error)
	DeleteTable(ctx context.Context, id uuid.UUID) error
}

// CreateTableInput holds the payload to register a new table.
type CreateTableInput struct {
	TableNumber string
	Capacity    int
}

// UpdateTableInput holds optional mutation values for a table. Status accepts
// only the admin-ownable states; occupied stays with the order engine.
type UpdateTableInput struct {
	TableNumber *string
	Capacity    *int
	Status      *enums.TableStatus
}

type service struct {
	repo         *Repository
	warningAfter time.Duration
	now          func() time.Time
}

// NewService constructs a tables service. warningAfter is how long a
// delivered order may sit unpaid before the floor plan flags the table.
func NewService(repo *Repository, warningAfter time.Duration) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("tables repository required")
	}
	if warningAfter <= 0 {
		warningAfter = 5 * time.Minute
	}
	return &service{repo: repo, warningAfter: warningAfter, now: time.Now}, nil
}

func (s *service) ListTables(ctx context.Context) ([]TableDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list tables")
	}
	active, err := s.repo.FindActiveOrders(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load active orders")
	}

	out := make([]TableDTO, 0, len(rows))
	for i := range rows {
		dto := *FromModel(&rows[i])
		if order, ok := active[rows[i].ID]; ok {
			s.attachOrder(&dto, order)
		}
		out = append(out, dto)
	}
	sort.Slice(out, func(i, j int) bool {
		return compareTableNumbers(out[i].TableNumber, out[j].TableNumber) < 0
	})
	return out, nil
}

func (s *service) GetTable(ctx context.Context, id uuid.UUID) (*TableDTO, error) {
	table, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "table not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load table")
	}

	dto := FromModel(table)
	order, err := s.repo.FindActiveOrder(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load active order")
	}
	if order != nil {
		s.attachOrder(dto, *order)
	}
	return dto, nil
}

func (s *service) attachOrder(dto *TableDTO, order models.Order) {
	dto.ActiveOrder = &ActiveOrderSummary{
		ID:          order.ID,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
		PlacedAt:    order.CreatedAt,
	}
	if order.Status == enums.OrderStatusDelivered && s.now().Sub(order.UpdatedAt) > s.warningAfter {
		dto.UnpaidWarning = true
	}
}

func (s *service) CreateTable(ctx context.Context, input CreateTableInput) (*TableDTO, error) {
	number := strings.TrimSpace(input.TableNumber)
	if number == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "table number required")
	}
	if input.Capacity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "capacity cannot be negative")
	}

	table, err := s.repo.Create(ctx, &models.Table{
		TableNumber: number,
		Capacity:    input.Capacity,
		Status:      enums.TableStatusAvailable,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "table number already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert table")
	}
	return FromModel(table), nil
}

func (s *service) UpdateTable(ctx context.Context, id uuid.UUID, input UpdateTableInput) (*TableDTO, error) {
	table, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "table not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load table")
	}

	updates := map[string]any{}
	if input.TableNumber != nil {
		number := strings.TrimSpace(*input.TableNumber)
		if number == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "table number required")
		}
		updates["table_number"] = number
	}
	if input.Capacity != nil {
		if *input.Capacity < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "capacity cannot be negative")
		}
		updates["capacity"] = *input.Capacity
	}
	if input.Status != nil {
		if err := s.validateStatusOverride(ctx, table, *input.Status); err != nil {
			return nil, err
		}
		updates["status"] = *input.Status
	}

	if len(updates) > 0 {
		if err := s.repo.Update(ctx, id, updates); err != nil {
			if db.IsUniqueViolation(err, "") {
				return nil, pkgerrors.New(pkgerrors.CodeConflict, "table number already exists")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update table")
		}
	}
	return s.GetTable(ctx, id)
}

// validateStatusOverride keeps admin writes away from states the order
// engine owns. A table with an open order cannot be re-flagged by hand.
func (s *service) validateStatusOverride(ctx context.Context, table *models.Table, status enums.TableStatus) error {
	if status != enums.TableStatusAvailable && status != enums.TableStatusReserved {
		return pkgerrors.New(pkgerrors.CodeValidation, "status override limited to available or reserved")
	}
	order, err := s.repo.FindActiveOrder(ctx, table.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load active order")
	}
	if order != nil {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "table has an open order")
	}
	return nil
}

func (s *service) DeleteTable(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "table not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load table")
	}

	order, err := s.repo.FindActiveOrder(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load active order")
	}
	if order != nil {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "table has an open order")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete table")
	}
	return nil
}

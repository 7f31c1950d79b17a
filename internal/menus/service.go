package menus

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/restaus/restaus-backend/internal/inventory"
	"github.com/restaus/restaus-backend/pkg/db"
	"github.com/restaus/restaus-backend/pkg/db/models"
	pkgerrors "github.com/restaus/restaus-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes menu catalog management operations.
type Service interface {
	ListMenus(ctx context.Context, filters ListFilters) ([]MenuDTO, error)
	GetMenu(ctx context.Context, id uuid.UUID) (*MenuDTO, error)
	CreateMenu(ctx context.Context, input CreateMenuInput) (*MenuDTO, error)
	UpdateMenu(ctx context.Context, id uuid.UUID, input UpdateMenuInput) (*MenuDTO, error)
	DeleteMenu(ctx context.Context, id uuid.UUID) error
	ListCategories(ctx context.Context) ([]CategoryDTO, error)
	CreateCategory(ctx context.Context, input CreateCategoryInput) (*CategoryDTO, error)
}

// CreateMenuInput holds the validated payload to create a menu item.
type CreateMenuInput struct {
	CategoryID  uuid.UUID
	Name        string
	Description *string
	Price       decimal.Decimal
	ImageURL    *string
	IsActive    bool
	DailyStock  int
}

// UpdateMenuInput holds optional mutation values for a menu item.
type UpdateMenuInput struct {
	CategoryID  *uuid.UUID
	Name        *string
	Description *string
	Price       *decimal.Decimal
	ImageURL    *string
	IsActive    *bool
	DailyStock  *int
}

// CreateCategoryInput holds the payload to create a category.
type CreateCategoryInput struct {
	Name      string
	Icon      *string
	SortOrder int
}

type service struct {
	repo *Repository
	tx   txRunner
}

// NewService constructs a menu catalog service.
func NewService(repo *Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("menus repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) ListMenus(ctx context.Context, filters ListFilters) ([]MenuDTO, error) {
	rows, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list menus")
	}
	out := make([]MenuDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) GetMenu(ctx context.Context, id uuid.UUID) (*MenuDTO, error) {
	menu, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "menu not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load menu")
	}
	return FromModel(menu), nil
}

func (s *service) CreateMenu(ctx context.Context, input CreateMenuInput) (*MenuDTO, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "menu name required")
	}
	if input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	if input.DailyStock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "daily stock cannot be negative")
	}

	if _, err := s.repo.FindCategoryByID(ctx, input.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "category does not exist")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}

	var createdID uuid.UUID
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		menu, err := txRepo.CreateMenu(ctx, &models.Menu{
			CategoryID:  input.CategoryID,
			Name:        strings.TrimSpace(input.Name),
			Description: input.Description,
			Price:       input.Price,
			ImageURL:    input.ImageURL,
			IsActive:    input.IsActive,
		})
		if err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "menu name already exists")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert menu")
		}
		createdID = menu.ID

		if _, err := inventory.NewRepository(tx).Upsert(ctx, menu.ID, input.DailyStock); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetMenu(ctx, createdID)
}

func (s *service) UpdateMenu(ctx context.Context, id uuid.UUID, input UpdateMenuInput) (*MenuDTO, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "menu not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load menu")
	}

	updates := map[string]any{}
	if input.CategoryID != nil {
		if _, err := s.repo.FindCategoryByID(ctx, *input.CategoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "category does not exist")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
		}
		updates["category_id"] = *input.CategoryID
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "menu name required")
		}
		updates["name"] = name
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
		}
		updates["price"] = *input.Price
	}
	if input.ImageURL != nil {
		updates["image_url"] = *input.ImageURL
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if len(updates) > 0 {
			if err := txRepo.UpdateMenu(ctx, id, updates); err != nil {
				if db.IsUniqueViolation(err, "") {
					return pkgerrors.New(pkgerrors.CodeConflict, "menu name already exists")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update menu")
			}
		}
		if input.DailyStock != nil {
			if _, err := inventory.NewRepository(tx).Upsert(ctx, id, *input.DailyStock); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetMenu(ctx, id)
}

func (s *service) DeleteMenu(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "menu not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load menu")
	}

	count, err := s.repo.CountOrderItems(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count order items")
	}
	if count > 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "menu is referenced by existing orders")
	}

	// Menu and stock row go together in one transaction.
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := inventory.NewRepository(tx).DeleteByMenuID(ctx, id); err != nil {
			return err
		}
		if err := s.repo.WithTx(tx).DeleteMenu(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete menu")
		}
		return nil
	})
}

func (s *service) ListCategories(ctx context.Context) ([]CategoryDTO, error) {
	rows, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	out := make([]CategoryDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *CategoryFromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) CreateCategory(ctx context.Context, input CreateCategoryInput) (*CategoryDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name required")
	}

	category, err := s.repo.CreateCategory(ctx, &models.Category{
		Name:      name,
		Icon:      input.Icon,
		SortOrder: input.SortOrder,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "category name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert category")
	}
	return CategoryFromModel(category), nil
}

package menus

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/restaus/restaus-backend/pkg/db/models"
)

// ListFilters narrows the menu listing for the ordering UI.
type ListFilters struct {
	CategoryID *uuid.UUID
	IsActive   *bool
	InStock    bool
	Search     string
}

// Repository wires together menu and category persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// CreateMenu inserts the menu row.
func (r *Repository) CreateMenu(ctx context.Context, menu *models.Menu) (*models.Menu, error) {
	if menu.ID == uuid.Nil {
		menu.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(menu).Error; err != nil {
		return nil, err
	}
	return menu, nil
}

// FindByID loads the menu with its category and stock row.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Menu, error) {
	var menu models.Menu
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Inventory").
		First(&menu, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &menu, nil
}

// FindByIDs loads the plain menu rows for the given ids.
func (r *Repository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Menu, error) {
	var rows []models.Menu
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error
	return rows, err
}

// UpdateMenu applies the given column updates.
func (r *Repository) UpdateMenu(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).Model(&models.Menu{}).Where("id = ?", id).Updates(updates).Error
}

// DeleteMenu removes the menu row.
func (r *Repository) DeleteMenu(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Menu{}, "id = ?", id).Error
}

// CountOrderItems reports how many order lines reference the menu.
func (r *Repository) CountOrderItems(ctx context.Context, menuID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.OrderItem{}).
		Where("menu_id = ?", menuID).Count(&count).Error
	return count, err
}

// List returns menus matching the filters, ordered by category then name.
func (r *Repository) List(ctx context.Context, filters ListFilters) ([]models.Menu, error) {
	q := r.db.WithContext(ctx).Model(&models.Menu{}).
		Preload("Category").
		Preload("Inventory")

	if filters.CategoryID != nil {
		q = q.Where("category_id = ?", *filters.CategoryID)
	}
	if filters.IsActive != nil {
		q = q.Where("is_active = ?", *filters.IsActive)
	}
	if search := strings.TrimSpace(filters.Search); search != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	if filters.InStock {
		q = q.Where("id IN (SELECT menu_id FROM inventories WHERE remaining_stock > 0)")
	}

	var rows []models.Menu
	err := q.Order("name ASC").Find(&rows).Error
	return rows, err
}

// CreateCategory inserts a category row.
func (r *Repository) CreateCategory(ctx context.Context, category *models.Category) (*models.Category, error) {
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

// FindCategoryByID loads a single category.
func (r *Repository) FindCategoryByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// ListCategories returns all categories in display order.
func (r *Repository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var rows []models.Category
	err := r.db.WithContext(ctx).Order("sort_order ASC, name ASC").Find(&rows).Error
	return rows, err
}

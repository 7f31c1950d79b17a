package menus

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/restaus/restaus-backend/pkg/db/models"
)

// MenuDTO is the transport shape for a menu item including its stock view.
type MenuDTO struct {
	ID             uuid.UUID       `json:"id"`
	CategoryID     uuid.UUID       `json:"category_id"`
	CategoryName   string          `json:"category_name,omitempty"`
	Name           string          `json:"name"`
	Description    *string         `json:"description,omitempty"`
	Price          decimal.Decimal `json:"price"`
	ImageURL       *string         `json:"image_url,omitempty"`
	IsActive       bool            `json:"is_active"`
	DailyStock     int             `json:"daily_stock"`
	RemainingStock int             `json:"remaining_stock"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// CategoryDTO is the transport shape for a menu category.
type CategoryDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Icon      *string   `json:"icon,omitempty"`
	SortOrder int       `json:"sort_order"`
}

func FromModel(m *models.Menu) *MenuDTO {
	if m == nil {
		return nil
	}

	dto := &MenuDTO{
		ID:          m.ID,
		CategoryID:  m.CategoryID,
		Name:        m.Name,
		Description: m.Description,
		Price:       m.Price,
		ImageURL:    m.ImageURL,
		IsActive:    m.IsActive,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	if m.Category != nil {
		dto.CategoryName = m.Category.Name
	}
	if m.Inventory != nil {
		dto.DailyStock = m.Inventory.DailyStock
		dto.RemainingStock = m.Inventory.RemainingStock
	}
	return dto
}

func CategoryFromModel(c *models.Category) *CategoryDTO {
	if c == nil {
		return nil
	}
	return &CategoryDTO{
		ID:        c.ID,
		Name:      c.Name,
		Icon:      c.Icon,
		SortOrder: c.SortOrder,
	}
}

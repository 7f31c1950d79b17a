package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Menu is a sellable item. Price mutates independently of placed orders;
// historical orders freeze it via OrderItem.PriceAtTime.
type Menu struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CategoryID  uuid.UUID       `gorm:"column:category_id;type:uuid;not null" json:"category_id"`
	Name        string          `gorm:"column:name;not null" json:"name"`
	Description *string         `gorm:"column:description" json:"description,omitempty"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null" json:"price"`
	ImageURL    *string         `gorm:"column:image_url" json:"image_url,omitempty"`
	IsActive    bool            `gorm:"column:is_active;not null;default:true" json:"is_active"`
	Category    *Category       `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Inventory   *Inventory      `gorm:"foreignKey:MenuID" json:"inventory,omitempty"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

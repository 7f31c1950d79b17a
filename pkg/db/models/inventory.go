package models

import (
	"time"

	"github.com/google/uuid"
)

// Inventory is the stock ledger entry for a menu item. RemainingStock only
// decreases during a trading day; the daily reset is an admin operation.
type Inventory struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	MenuID         uuid.UUID `gorm:"column:menu_id;type:uuid;not null;uniqueIndex" json:"menu_id"`
	DailyStock     int       `gorm:"column:daily_stock;not null;default:0" json:"daily_stock"`
	RemainingStock int       `gorm:"column:remaining_stock;not null;default:0" json:"remaining_stock"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime" json:"last_updated"`
}

// TableName keeps the plural the API has always used.
func (Inventory) TableName() string { return "inventories" }

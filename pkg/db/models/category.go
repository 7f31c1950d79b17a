package models

import "github.com/google/uuid"

// Category groups menu items for display ordering.
type Category struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string    `gorm:"column:name;not null;uniqueIndex" json:"name"`
	Icon      *string   `gorm:"column:icon" json:"icon,omitempty"`
	SortOrder int       `gorm:"column:sort_order;not null;default:0" json:"sort_order"`
}

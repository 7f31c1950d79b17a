package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/restaus/restaus-backend/pkg/enums"
)

// Table is a physical seating unit. The stored status is only ever written by
// the order lifecycle engine (inside the transaction that changes the
// determining order) or by an explicit admin override.
type Table struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TableNumber string            `gorm:"column:table_number;not null;uniqueIndex" json:"table_number"`
	Capacity    int               `gorm:"column:capacity;not null" json:"capacity"`
	Status      enums.TableStatus `gorm:"column:status;type:text;not null;default:'available'" json:"status"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/restaus/restaus-backend/pkg/enums"
)

// User is a staff account; one of four fixed roles.
type User struct {
	ID           uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Username     string         `gorm:"column:username;not null;uniqueIndex" json:"username"`
	PasswordHash string         `gorm:"column:password_hash;not null" json:"-"`
	Role         enums.UserRole `gorm:"column:role;type:text;not null" json:"role"`
	FullName     string         `gorm:"column:full_name;not null" json:"full_name"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

package models

import (
	"time"

	"github.com/Zymart/shopbot-backend/pkg/enums"
)

// AdminGrant records a staff role assignment. The configured owner account
// always outranks every grant and cannot be revoked.
type AdminGrant struct {
	UserID    string          `gorm:"column:user_id;primaryKey"`
	Role      enums.AdminRole `gorm:"column:role;type:text;not null"`
	GrantedBy string          `gorm:"column:granted_by;not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

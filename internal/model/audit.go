package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionRegisterUser = "REGISTER_USER"
	ActionApproveUser  = "APPROVE_USER"
	ActionRejectUser   = "REJECT_USER"

	ActionCreateServiceItem = "CREATE_SERVICE_ITEM"
	ActionUpdateServiceItem = "UPDATE_SERVICE_ITEM"
	ActionDeleteServiceItem = "DELETE_SERVICE_ITEM"
	ActionCreatePackage     = "CREATE_PACKAGE"
	ActionUpdatePackage     = "UPDATE_PACKAGE"
	ActionDeletePackage     = "DELETE_PACKAGE"
)

// AuditLog tracks Who, What, and When for admin-side changes
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	User       *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"`
	Details    string     `gorm:"type:jsonb" json:"details"`
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}

package model

import (
	"time"

	"github.com/google/uuid"
)

// Roles derived from the IsAdmin flag, carried in JWT claims
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// Admin notification types and statuses
const (
	NotificationNewUserRegistration = "NEW_USER_REGISTRATION"

	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)

// User is a staff account. New accounts start unapproved and cannot log in
// until an admin approves them.
type User struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email       string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	DisplayName string    `gorm:"type:varchar(255)" json:"displayName"`
	Password    string    `gorm:"type:varchar(255);not null" json:"-"`
	IsAdmin     bool      `gorm:"not null;default:false" json:"isAdmin"`
	IsApproved  bool      `gorm:"not null;default:false;index" json:"isApproved"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"-"`
}

// Role maps the admin flag to the role claim.
func (u *User) Role() string {
	if u.IsAdmin {
		return RoleAdmin
	}
	return RoleStaff
}

// AdminNotification is raised when a new account registers and tracks the
// approval decision taken on it.
type AdminNotification struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Type        string    `gorm:"type:varchar(50);not null;index" json:"type"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"userId"`
	Email       string    `gorm:"type:varchar(255);not null" json:"email"`
	DisplayName string    `gorm:"type:varchar(255)" json:"displayName"`
	Status      string    `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"-"`
}

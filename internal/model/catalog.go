package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service categories for flat-rate items
const (
	CategoryWash        = "Wash"
	CategoryWashAndIron = "WashAndIron"
	CategoryDryCleaning = "DryCleaning"
)

// ServiceItem is a flat-rate laundry service from the catalog. Reference data:
// read-only from the billing core's perspective, managed by admins.
type ServiceItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string          `gorm:"type:varchar(255);not null" json:"name"`
	Price     decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"price"`
	Category  string          `gorm:"type:varchar(50);not null;index" json:"category"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// PackageDefinition is a weight-based billing unit priced per KG.
type PackageDefinition struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PackageName string          `gorm:"type:varchar(255);not null" json:"package_name"`
	Rate        decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"rate"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

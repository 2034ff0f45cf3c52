package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Invoice id format: "MA" followed by a zero-padded sequence number.
const (
	InvoiceIDPrefix = "MA"
	InvoiceIDDigits = 6
)

// Categories assigned to rows synthesized from package billing. The renderer
// relies on these to separate package rows from regular service rows.
const (
	CategoryPackage      = "Package"
	CategoryPackageItems = "Package Items"
)

// InvoiceItem is a single billed row. Quantity doubles as weight (in KG) for
// package rows, so both quantity and price are decimals.
type InvoiceItem struct {
	ID       string          `json:"id,omitempty"`
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// Amount returns quantity * price for this row.
func (i InvoiceItem) Amount() decimal.Decimal {
	return i.Quantity.Mul(i.Price)
}

// PackageItem is a garment included in a weight-based package, kept for
// record-keeping only (it carries no price of its own).
type PackageItem struct {
	Item     string          `json:"item"`
	Quantity decimal.Decimal `json:"quantity"`
}

// PackageEntry is one package inside a multi-package invoice.
type PackageEntry struct {
	PackageID   string          `json:"packageId"`
	PackageName string          `json:"packageName"`
	Rate        decimal.Decimal `json:"rate"`
	Weight      decimal.Decimal `json:"weight"`
	Total       decimal.Decimal `json:"total"`
	Items       []PackageItem   `json:"items"`
}

// PackageInfo describes weight-based billing attached to an invoice. It holds
// either the single-package shape (PackageName/Weight/Rate/Total/Items) or the
// multi-package shape (Packages/GrandTotal); IsMulti discriminates.
type PackageInfo struct {
	PackageName string          `json:"packageName,omitempty"`
	Weight      decimal.Decimal `json:"weight,omitempty"`
	Rate        decimal.Decimal `json:"rate,omitempty"`
	Total       decimal.Decimal `json:"total,omitempty"`
	Items       []PackageItem   `json:"items,omitempty"`

	Packages   []PackageEntry  `json:"packages,omitempty"`
	GrandTotal decimal.Decimal `json:"grandTotal,omitempty"`
}

// IsMulti reports whether this is the multi-package shape.
func (p *PackageInfo) IsMulti() bool {
	return p != nil && len(p.Packages) > 0
}

// Invoice is the canonical billing record. Items and PackageInfo are stored
// as JSONB documents; Total is always recomputed from them, never hand-set.
type Invoice struct {
	ID           string          `gorm:"type:varchar(30);primaryKey" json:"id"`
	CustomerName string          `gorm:"type:varchar(255);not null" json:"customerName"`
	Phone        string          `gorm:"type:varchar(20);not null;index" json:"phone"`
	Address      string          `gorm:"type:text" json:"address,omitempty"`
	Date         time.Time       `gorm:"not null;index" json:"date"`
	Items        InvoiceItems    `gorm:"type:jsonb" json:"items"`
	Total        decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"total"`
	PackageInfo  *PackageInfo    `gorm:"type:jsonb" json:"packageInfo,omitempty"`
	CreatedAt    time.Time       `json:"-"`
}

// InvoiceItems is the JSONB column type for invoice rows.
type InvoiceItems []InvoiceItem

func (items InvoiceItems) Value() (driver.Value, error) {
	return json.Marshal(items)
}

func (items *InvoiceItems) Scan(value interface{}) error {
	return scanJSON(value, items)
}

func (p PackageInfo) Value() (driver.Value, error) {
	return json.Marshal(p)
}

func (p *PackageInfo) Scan(value interface{}) error {
	return scanJSON(value, p)
}

func scanJSON(value interface{}, dest interface{}) error {
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("unsupported jsonb source type %T", value)
	}
}

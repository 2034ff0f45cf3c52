package model

// CounterInvoiceID names the centrally incremented sequence backing invoice ids.
const CounterInvoiceID = "invoiceId"

// Counter is a named monotonically increasing sequence. The invoice counter is
// read-then-incremented inside a transaction when an invoice is persisted.
type Counter struct {
	Name  string `gorm:"type:varchar(50);primaryKey" json:"name"`
	Value int64  `gorm:"not null;default:0" json:"value"`
}

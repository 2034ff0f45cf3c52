package model

// QueueItem type constants
const (
	QueueTypeInvoice = "invoice"
)

// QueueItem is the offline durability record wrapping an invoice that could
// not be written remotely. Items are never mutated in place; they are removed
// only after a confirmed successful remote save.
type QueueItem struct {
	ID        string  `json:"id"`   // locally generated: queue_<unixms>_<suffix>
	Type      string  `json:"type"` // currently only "invoice"
	Data      Invoice `json:"data"`
	Timestamp int64   `json:"timestamp"` // enqueue time, unix milliseconds
}

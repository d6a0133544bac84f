package domain

import "time"

// OrderStatus is the lifecycle of an order. Strictly forward-moving.
type OrderStatus string

const (
	StatusForming    OrderStatus = "forming"
	StatusProcessing OrderStatus = "processing"
	StatusBaking     OrderStatus = "baking"
	StatusInTransit  OrderStatus = "in_transit"
	StatusCompleted  OrderStatus = "completed"
)

// statusSequence defines the only legal progression.
var statusSequence = []OrderStatus{
	StatusForming,
	StatusProcessing,
	StatusBaking,
	StatusInTransit,
	StatusCompleted,
}

// Next returns the status that follows s, or false if s is terminal
// (or unknown).
func (s OrderStatus) Next() (OrderStatus, bool) {
	for i, st := range statusSequence {
		if st == s && i+1 < len(statusSequence) {
			return statusSequence[i+1], true
		}
	}
	return "", false
}

// Label returns the customer-facing wording of the status.
func (s OrderStatus) Label() string {
	switch s {
	case StatusForming:
		return "Forming"
	case StatusProcessing:
		return "Processing"
	case StatusBaking:
		return "Baking"
	case StatusInTransit:
		return "In transit"
	case StatusCompleted:
		return "Completed"
	}
	return string(s)
}

// Order groups one or more committed cakes for a customer.
//
// Total mirrors the sum of the cakes' prices while the order is still
// forming; once the status moves past forming the total is a frozen
// snapshot and is never recomputed again.
type Order struct {
	ID         int64       `json:"id"`
	CustomerID string      `json:"customer_id"`
	Cakes      []Cake      `json:"cakes"`
	Status     OrderStatus `json:"status"`
	Total      int64       `json:"total"`
	CreatedAt  time.Time   `json:"created_at"`
	ModifiedAt time.Time   `json:"modified_at"`
}

// CakesTotal sums the prices of the order's cakes.
func (o *Order) CakesTotal() int64 {
	var total int64
	for i := range o.Cakes {
		total += o.Cakes[i].Price()
	}
	return total
}

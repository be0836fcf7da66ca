// Package queue defines message payloads exchanged over the message broker
// and the background consumer that drains them.
package queue

// SaleRecordedEvent is published after a sale commits. It carries enough
// information for downstream consumers to log, notify or feed analytics
// without querying the primary database.
type SaleRecordedEvent struct {
	SaleID           uint64 `json:"sale_id"`
	PropertyID       uint64 `json:"property_id"`
	PropertyTitle    string `json:"property_title"`
	PropertyLocation string `json:"property_location"`
	SellerID         uint64 `json:"seller_id"`
	SellerName       string `json:"seller_name"`
	BuyerName        string `json:"buyer_name"`
	SaleAmount       string `json:"sale_amount"`
	Commission       string `json:"commission"`
	SaleDate         string `json:"sale_date"`
	RecordedAt       string `json:"recorded_at"`
}

package handler

// QuoteResponse represents a quote in API responses
// @Description Quote details returned by the API
type QuoteResponse struct {
	ID          int64   `json:"id" example:"7"`
	QuoteNumber string  `json:"quote_number" example:"Q-20260801-0001"`
	CustomerID  int64   `json:"customer_id" example:"42"`
	Status      string  `json:"status" example:"DRAFT" enums:"DRAFT,SENT,ACCEPTED,REJECTED,EXPIRED"`
	TotalAmount string  `json:"total_amount" example:"12500.5"`
	ValidUntil  string  `json:"valid_until" example:"2026-09-30T00:00:00Z"`
	CreatedAt   string  `json:"created_at" example:"2026-08-01T12:00:00Z"`
	UpdatedAt   string  `json:"updated_at" example:"2026-08-01T12:00:00Z"`
}

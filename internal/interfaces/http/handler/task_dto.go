package handler

// TaskResponse represents a follow-up task in API responses
// @Description Follow-up task details returned by the API
type TaskResponse struct {
	ID          int64  `json:"id" example:"3"`
	Title       string `json:"title" example:"Call back about the cement order"`
	Description string `json:"description" example:"Customer asked for a revised delivery window"`
	Status      string `json:"status" example:"pending" enums:"pending,in_progress,completed,cancelled"`
	Priority    string `json:"priority" example:"high" enums:"low,medium,high,urgent"`
	CustomerID  int64  `json:"customer_id" example:"42"`
	SupplierID  int64  `json:"supplier_id" example:"0"`
	DueDate     string `json:"due_date,omitempty" example:"2026-08-30T09:00:00Z"`
	CreatedAt   string `json:"created_at" example:"2026-08-01T12:00:00Z"`
	UpdatedAt   string `json:"updated_at" example:"2026-08-01T12:00:00Z"`
}

package handler

// TicketResponse represents a service ticket in API responses
// @Description Service ticket details returned by the API
type TicketResponse struct {
	ID              int64  `json:"id" example:"11"`
	TicketNumber    string `json:"ticket_number" example:"T-20260801-0001"`
	CustomerID      int64  `json:"customer_id" example:"42"`
	ProblemCategory string `json:"problem_category" example:"delivery_damage"`
	Description     string `json:"description" example:"Three pallets of tiles arrived cracked"`
	SolutionMethod  string `json:"solution_method" example:"Replacement pallets shipped"`
	Status          string `json:"status" example:"new" enums:"new,in_progress,pending_confirmation,closed"`
	Priority        string `json:"priority" example:"high" enums:"low,medium,high,urgent"`
	CreatedAt       string `json:"created_at" example:"2026-08-01T12:00:00Z"`
	UpdatedAt       string `json:"updated_at" example:"2026-08-01T12:00:00Z"`
}

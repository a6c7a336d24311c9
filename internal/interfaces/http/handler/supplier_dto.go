package handler

// SupplierResponse represents a supplier in API responses
// @Description Supplier details returned by the API
type SupplierResponse struct {
	ID            int64         `json:"id" example:"17"`
	Name          string        `json:"name" example:"Northern Steel Supply"`
	ContactPerson string        `json:"contact_person" example:"Wang Lei"`
	Phone         string        `json:"phone" example:"010-88886666"`
	Email         string        `json:"email" example:"orders@northsteel.cn"`
	Address       string        `json:"address" example:"5 Industrial Park Road, Tangshan"`
	Level         LevelResponse `json:"level"`
	CreatedAt     string        `json:"created_at" example:"2026-08-01T12:00:00Z"`
	UpdatedAt     string        `json:"updated_at" example:"2026-08-01T12:00:00Z"`
}

// SupplierStatisticsResponse represents supplier statistics
// @Description Supplier total and count per tier
type SupplierStatisticsResponse struct {
	Total   int64            `json:"total" example:"40"`
	ByLevel map[string]int64 `json:"by_level"`
}

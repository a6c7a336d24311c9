package handler

// LevelResponse represents a partner tier in API responses
// @Description Tier with code, display name, and rank
type LevelResponse struct {
	Code string `json:"code" example:"normal" enums:"potential,normal,important,vip"`
	Name string `json:"name" example:"普通"`
	Rank int    `json:"rank" example:"2"`
}

// CustomerResponse represents a customer in API responses
// @Description Customer details returned by the API
type CustomerResponse struct {
	ID            int64         `json:"id" example:"42"`
	Name          string        `json:"name" example:"Acme Building Materials"`
	ContactPerson string        `json:"contact_person" example:"Zhang Wei"`
	Phone         string        `json:"phone" example:"13800138000"`
	Email         string        `json:"email" example:"sales@acme.cn"`
	Address       string        `json:"address" example:"88 Jianguo Road, Beijing"`
	Level         LevelResponse `json:"level"`
	CreatedAt     string        `json:"created_at" example:"2026-08-01T12:00:00Z"`
	UpdatedAt     string        `json:"updated_at" example:"2026-08-01T12:00:00Z"`
}

// CustomerStatisticsResponse represents customer statistics
// @Description Customer total and count per tier
type CustomerStatisticsResponse struct {
	Total   int64            `json:"total" example:"125"`
	ByLevel map[string]int64 `json:"by_level"`
}

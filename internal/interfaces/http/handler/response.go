package handler

import "github.com/crm/backend/internal/interfaces/http/dto"

// APIResponse mirrors the dto envelope with a typed data field so the
// generated OpenAPI schema names the payload instead of showing interface{}.
// @Description Standard API response wrapper with typed data field
type APIResponse[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
	Meta    *dto.Meta      `json:"meta,omitempty"`
}

// ErrorResponse is the envelope failure shape referenced by @Failure
// annotations.
// @Description Standard error response
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
}

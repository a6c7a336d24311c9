package handler

import (
	"strconv"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// parseID parses the numeric id path parameter
func parseID(c *gin.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}

// searchQueryFromList converts bound list parameters into a domain search
// query. API pages are 1-based, domain queries 0-based.
func searchQueryFromList(req dto.ListRequest) shared.SearchQuery {
	query := shared.NewSearchQuery().
		WithKeyword(req.Search).
		WithPage(req.Page-1, req.PageSize)
	if req.OrderBy != "" {
		query = query.WithSort(req.OrderBy, shared.SortOrder(req.OrderDir))
	}
	return query
}

// toDecimal converts a float64 to a decimal.Decimal
func toDecimal(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

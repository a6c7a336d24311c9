package shared

// SortOrder is the direction of a search sort
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Pagination bounds shared by every entity type
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// SearchQuery describes one entity-agnostic search: optional free-text
// keyword, exact-match filters ANDed together, an optional sort, and
// zero-based pagination. Filter values are passed to the store as bind
// parameters, never interpolated into query text.
type SearchQuery struct {
	Keyword   string         `json:"keyword,omitempty"`
	Filters   map[string]any `json:"filters,omitempty"`
	SortBy    string         `json:"sort_by,omitempty"`
	SortOrder SortOrder      `json:"sort_order,omitempty"`
	Page      int            `json:"page"`
	PageSize  int            `json:"page_size"`
}

// NewSearchQuery returns a query for the first page with default page size
func NewSearchQuery() SearchQuery {
	return SearchQuery{
		Filters:  make(map[string]any),
		PageSize: DefaultPageSize,
	}
}

// WithKeyword sets the free-text keyword
func (q SearchQuery) WithKeyword(keyword string) SearchQuery {
	q.Keyword = keyword
	return q
}

// WithFilter adds one field = value condition. Keys are unique; setting the
// same field again replaces the previous value.
func (q SearchQuery) WithFilter(field string, value any) SearchQuery {
	filters := make(map[string]any, len(q.Filters)+1)
	for k, v := range q.Filters {
		filters[k] = v
	}
	filters[field] = value
	q.Filters = filters
	return q
}

// WithSort sets the sort field and direction
func (q SearchQuery) WithSort(field string, order SortOrder) SearchQuery {
	q.SortBy = field
	q.SortOrder = order
	return q
}

// WithPage sets the zero-based page index and the page size
func (q SearchQuery) WithPage(page, pageSize int) SearchQuery {
	q.Page = page
	q.PageSize = pageSize
	return q
}

// Offset returns the row offset for the requested page
func (q SearchQuery) Offset() int {
	return q.Page * q.PageSize
}

// Normalize clamps pagination to valid bounds and defaults the sort
// direction. The filter set is left untouched so total counts stay
// independent of pagination.
func (q SearchQuery) Normalize() SearchQuery {
	if q.Page < 0 {
		q.Page = 0
	}
	if q.PageSize <= 0 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
	if q.SortOrder != SortAsc && q.SortOrder != SortDesc {
		q.SortOrder = SortAsc
	}
	return q
}

// SearchResult carries one page of matches plus the total count of rows
// satisfying keyword+filters alone, independent of pagination.
type SearchResult[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"total_count"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
}

// NewSearchResult creates a result echoing the query's pagination
func NewSearchResult[T any](items []T, totalCount int64, query SearchQuery) SearchResult[T] {
	return SearchResult[T]{
		Items:      items,
		TotalCount: totalCount,
		Page:       query.Page,
		PageSize:   query.PageSize,
	}
}

// TotalPages returns how many pages the full match set spans
func (r SearchResult[T]) TotalPages() int {
	if r.PageSize <= 0 {
		return 0
	}
	pages := int(r.TotalCount) / r.PageSize
	if int(r.TotalCount)%r.PageSize > 0 {
		pages++
	}
	return pages
}

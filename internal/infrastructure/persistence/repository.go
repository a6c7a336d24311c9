package persistence

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/crm/backend/internal/domain/shared"
)

// Record is the constraint every persistence model satisfies.
type Record interface {
	RecordID() int64
}

// Mapping supplies the entity-specific knowledge a GormRepository needs:
// which columns the keyword search scans, which filter and sort keys are
// accepted and what columns they map to, and the conversions between the
// domain entity and its persistence record. Column names come from this
// trusted construction-time table; caller-supplied values only ever reach
// the database as bind parameters.
type Mapping[T shared.Entity, M Record] struct {
	Searchable []string
	Filterable map[string]string
	Sortable   map[string]string
	ToRecord   func(T) M
	FromRecord func(M) T
}

// GormRepository is the generic GORM-backed implementation of
// shared.Repository. One type serves every entity; NewCustomerRepository
// and friends bind it to a concrete record type and mapping.
type GormRepository[T shared.Entity, M Record] struct {
	db      *gorm.DB
	mapping Mapping[T, M]
}

// NewGormRepository creates a repository for one entity type from its
// column mapping.
func NewGormRepository[T shared.Entity, M Record](db *gorm.DB, mapping Mapping[T, M]) *GormRepository[T, M] {
	return &GormRepository[T, M]{db: db, mapping: mapping}
}

// Create inserts a never-persisted entity and assigns the generated id
// back onto it. Uniqueness violations surface as the CONFLICT family.
func (r *GormRepository[T, M]) Create(ctx context.Context, entity T) error {
	if id, ok := entity.GetID(); ok {
		return fmt.Errorf("%w: entity already has id %d", shared.ErrInvalidInput, id)
	}
	record := r.mapping.ToRecord(entity)
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return translateError(err)
	}
	entity.SetID(record.RecordID())
	return nil
}

// FindByID returns the entity and true, or the zero value and false when
// no row matches.
func (r *GormRepository[T, M]) FindByID(ctx context.Context, id int64) (T, bool, error) {
	var zero T
	var record M
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return zero, false, nil
		}
		return zero, false, translateError(err)
	}
	return r.mapping.FromRecord(record), true, nil
}

// FindAll returns every row in insertion order.
func (r *GormRepository[T, M]) FindAll(ctx context.Context) ([]T, error) {
	var records []M
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&records).Error; err != nil {
		return nil, translateError(err)
	}
	return r.toDomain(records), nil
}

// Update replaces the mutable fields of an identified entity and refreshes
// updated_at, on the entity as well as the row. Zero rows matched means the
// entity vanished between fetch and write.
func (r *GormRepository[T, M]) Update(ctx context.Context, entity T) error {
	if _, ok := entity.GetID(); !ok {
		return fmt.Errorf("%w: entity has no id", shared.ErrInvalidInput)
	}
	entity.Touch()
	record := r.mapping.ToRecord(entity)
	result := r.db.WithContext(ctx).Model(&record).
		Select("*").Omit("id", "created_at").
		Updates(&record)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes the row irreversibly.
func (r *GormRepository[T, M]) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(new(M), id)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Search runs keyword and filter matching with sorting and pagination. The
// total count reflects keyword and filters alone, independent of the page.
func (r *GormRepository[T, M]) Search(ctx context.Context, query shared.SearchQuery) (shared.SearchResult[T], error) {
	query = query.Normalize()

	// Resolve the sort key up front so invalid input never costs a round trip.
	order, err := r.orderClause(query)
	if err != nil {
		return shared.SearchResult[T]{}, err
	}

	countTx, err := r.applyCriteria(r.db.WithContext(ctx).Model(new(M)), query)
	if err != nil {
		return shared.SearchResult[T]{}, err
	}
	var total int64
	if err := countTx.Count(&total).Error; err != nil {
		return shared.SearchResult[T]{}, translateError(err)
	}

	findTx, err := r.applyCriteria(r.db.WithContext(ctx).Model(new(M)), query)
	if err != nil {
		return shared.SearchResult[T]{}, err
	}
	var records []M
	if err := findTx.Order(order).Offset(query.Offset()).Limit(query.PageSize).Find(&records).Error; err != nil {
		return shared.SearchResult[T]{}, translateError(err)
	}

	return shared.NewSearchResult(r.toDomain(records), total, query), nil
}

// Count returns the total rows for the entity type, ignoring queries.
func (r *GormRepository[T, M]) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(new(M)).Count(&count).Error; err != nil {
		return 0, translateError(err)
	}
	return count, nil
}

// applyCriteria adds the keyword and filter conditions. Unknown filter keys
// are rejected rather than silently ignored.
func (r *GormRepository[T, M]) applyCriteria(tx *gorm.DB, query shared.SearchQuery) (*gorm.DB, error) {
	if query.Keyword != "" && len(r.mapping.Searchable) > 0 {
		pattern := "%" + strings.ToLower(query.Keyword) + "%"
		clauses := make([]string, len(r.mapping.Searchable))
		args := make([]any, len(r.mapping.Searchable))
		for i, column := range r.mapping.Searchable {
			clauses[i] = "LOWER(" + column + ") LIKE ?"
			args[i] = pattern
		}
		tx = tx.Where(strings.Join(clauses, " OR "), args...)
	}
	for field, value := range query.Filters {
		column, ok := r.mapping.Filterable[field]
		if !ok {
			return nil, fmt.Errorf("%w: unknown filter field %q", shared.ErrInvalidInput, field)
		}
		tx = tx.Where(column+" = ?", value)
	}
	return tx, nil
}

// orderClause resolves the sort key against the whitelist. Newest rows
// first when the query does not ask for a sort.
func (r *GormRepository[T, M]) orderClause(query shared.SearchQuery) (string, error) {
	if query.SortBy == "" {
		return "id DESC", nil
	}
	column, ok := r.mapping.Sortable[query.SortBy]
	if !ok {
		return "", fmt.Errorf("%w: unknown sort field %q", shared.ErrInvalidInput, query.SortBy)
	}
	direction := "ASC"
	if query.SortOrder == shared.SortDesc {
		direction = "DESC"
	}
	return column + " " + direction, nil
}

func (r *GormRepository[T, M]) toDomain(records []M) []T {
	items := make([]T, len(records))
	for i := range records {
		items[i] = r.mapping.FromRecord(records[i])
	}
	return items
}

// translateError maps driver and ORM failures onto the domain error
// taxonomy so upper layers never see gorm or pq types.
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", shared.ErrConflict, err)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code == "23505":
			return fmt.Errorf("%w: %v", shared.ErrConflict, err)
		case pqErr.Code.Class() == "08":
			return fmt.Errorf("%w: %v", shared.ErrConnection, err)
		}
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", shared.ErrConnection, err)
	}
	return fmt.Errorf("%w: %v", shared.ErrStorage, err)
}

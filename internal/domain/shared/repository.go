package shared

import "context"

// Repository is the generic persistence gateway for one entity type. One
// implementation serves every type; the entity-specific column knowledge is
// supplied at construction time by the infrastructure layer.
type Repository[T Entity] interface {
	// Create inserts an entity that has never been persisted (no id) and
	// assigns the generated identifier back onto it. Fails with the
	// CONFLICT family when a storage uniqueness constraint is violated;
	// the constraint is the authoritative uniqueness check.
	Create(ctx context.Context, entity T) error
	// FindByID returns the entity and true, or the zero value and false
	// when no row matches. Absence is a normal outcome, not an error.
	FindByID(ctx context.Context, id int64) (T, bool, error)
	// FindAll returns every row in insertion order. Intended for small
	// reference tables, not paginated business data.
	FindAll(ctx context.Context) ([]T, error)
	// Update replaces the mutable fields of an identified entity and
	// refreshes updated_at. Fails with NOT_FOUND when the row is gone.
	Update(ctx context.Context, entity T) error
	// Delete removes the row irreversibly. Fails with NOT_FOUND when no
	// such row exists. No cascade: any cascade is service-layer policy.
	Delete(ctx context.Context, id int64) error
	// Search runs keyword+filter matching with sorting and pagination.
	Search(ctx context.Context, query SearchQuery) (SearchResult[T], error)
	// Count returns the total rows for the entity type, ignoring queries.
	Count(ctx context.Context) (int64, error)
}

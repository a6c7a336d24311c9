package partner

import (
	"context"

	"github.com/crm/backend/internal/domain/shared"
)

// NewCustomerLevelStrategy returns the tier strategy for customers: a new
// customer created without an explicit tier starts at the normal level, and
// persisted customers keep whatever tier they hold. Tier changes for
// persisted customers go through the level transition rule instead.
func NewCustomerLevelStrategy() shared.LevelStrategy[*Customer] {
	return shared.NewLevelStrategy("customer_level", func(_ context.Context, c *Customer) (shared.Level, error) {
		if _, persisted := c.GetID(); !persisted && c.Level.IsZero() {
			return shared.NormalLevel(), nil
		}
		return shared.Level{}, nil
	})
}

// NewSupplierLevelStrategy returns the tier strategy for suppliers: new
// suppliers without an explicit tier start at the lowest one.
func NewSupplierLevelStrategy() shared.LevelStrategy[*Supplier] {
	return shared.DefaultLevelStrategy[*Supplier]()
}

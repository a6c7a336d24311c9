package shared

import "context"

// LevelStrategy decides which tier an entity should carry at a lifecycle
// point. Services evaluate it after validation and before persisting a
// create or update. A zero Level result means the strategy has no opinion
// and the entity keeps whatever tier it currently holds.
type LevelStrategy[T Entity] interface {
	// Name returns the unique name of the strategy
	Name() string
	// Evaluate returns the tier the entity should carry, or the zero Level
	// to leave it untouched.
	Evaluate(ctx context.Context, entity T) (Level, error)
}

type levelStrategyFunc[T Entity] struct {
	name string
	fn   func(ctx context.Context, entity T) (Level, error)
}

// NewLevelStrategy wraps a function as a named LevelStrategy
func NewLevelStrategy[T Entity](name string, fn func(ctx context.Context, entity T) (Level, error)) LevelStrategy[T] {
	return &levelStrategyFunc[T]{name: name, fn: fn}
}

// Name returns the strategy name
func (s *levelStrategyFunc[T]) Name() string {
	return s.name
}

// Evaluate runs the wrapped function
func (s *levelStrategyFunc[T]) Evaluate(ctx context.Context, entity T) (Level, error) {
	return s.fn(ctx, entity)
}

// DefaultLevelStrategy keeps existing levels untouched and starts new
// leveled entities that carry no explicit tier at the lowest one. Entity
// types without a tier are left alone entirely.
func DefaultLevelStrategy[T Entity]() LevelStrategy[T] {
	return NewLevelStrategy[T]("default_level", func(_ context.Context, entity T) (Level, error) {
		leveled, ok := any(entity).(Leveled)
		if !ok {
			return Level{}, nil
		}
		if _, persisted := entity.GetID(); !persisted && leveled.GetLevel().IsZero() {
			return LowestLevel(), nil
		}
		return Level{}, nil
	})
}

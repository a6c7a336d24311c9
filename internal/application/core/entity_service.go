package core

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/infrastructure/telemetry"
)

// EntityService drives the uniform lifecycle for one entity type:
// validation, level strategy, repository access, and event publication.
// Entity-specific services embed it and contribute their business rules,
// tier strategy, and extra operations at construction.
//
// Event delivery is best-effort: a handler failure is logged and the
// operation still reports success, since the state change has already
// been committed.
type EntityService[T shared.Entity] struct {
	entityName string
	repo       shared.Repository[T]
	validator  *shared.Validator[T]
	strategy   shared.LevelStrategy[T]
	events     shared.EventPublisher
	logger     *zap.Logger
}

// NewEntityService creates a service for one entity type. A nil validator
// means schema checks only, and a nil strategy falls back to
// DefaultLevelStrategy.
func NewEntityService[T shared.Entity](
	entityName string,
	repo shared.Repository[T],
	validator *shared.Validator[T],
	strategy shared.LevelStrategy[T],
	events shared.EventPublisher,
	logger *zap.Logger,
) *EntityService[T] {
	if validator == nil {
		validator = shared.NewValidator[T]()
	}
	if strategy == nil {
		strategy = shared.DefaultLevelStrategy[T]()
	}
	return &EntityService[T]{
		entityName: entityName,
		repo:       repo,
		validator:  validator,
		strategy:   strategy,
		events:     events,
		logger:     logger,
	}
}

// EntityName returns the entity-type name the service manages
func (s *EntityService[T]) EntityName() string {
	return s.entityName
}

// Repository exposes the underlying repository to embedding services
func (s *EntityService[T]) Repository() shared.Repository[T] {
	return s.repo
}

// Create validates the entity, lets the level strategy assign its initial
// tier, persists it, and publishes a created event. The entity comes back
// carrying its storage-assigned id. A storage-level uniqueness conflict is
// reported as the same BusinessRuleError a rule pre-check would have
// produced.
func (s *EntityService[T]) Create(ctx context.Context, entity T) (T, error) {
	var zero T

	if err := s.validator.Validate(ctx, entity); err != nil {
		return zero, err
	}
	if err := s.applyLevel(ctx, entity); err != nil {
		return zero, err
	}

	if err := s.repo.Create(ctx, entity); err != nil {
		return zero, s.translateConflict(entity, fmt.Errorf("create %s: %w", s.entityName, err))
	}

	id, _ := entity.GetID()
	s.logger.Info("entity created",
		zap.String("entity_type", s.entityName),
		zap.Int64("entity_id", id),
	)
	s.publish(ctx, shared.NewEntityCreated(entity))

	return entity, nil
}

// GetByID fetches one entity. Absence is reported through the boolean, not
// as an error.
func (s *EntityService[T]) GetByID(ctx context.Context, id int64) (T, bool, error) {
	return s.repo.FindByID(ctx, id)
}

// GetAll returns every entity of the type in insertion order
func (s *EntityService[T]) GetAll(ctx context.Context) ([]T, error) {
	return s.repo.FindAll(ctx)
}

// Update replaces a persisted entity's state. It fetches the prior
// snapshot, validates with the entity's own row excluded from uniqueness
// collisions, re-evaluates the level strategy, writes, and publishes an
// updated event carrying both snapshots.
func (s *EntityService[T]) Update(ctx context.Context, entity T) (T, error) {
	var zero T

	id, persisted := entity.GetID()
	if !persisted {
		return zero, fmt.Errorf("update %s: entity has no id: %w", s.entityName, shared.ErrInvalidInput)
	}

	old, found, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return zero, fmt.Errorf("update %s %d: %w", s.entityName, id, err)
	}
	if !found {
		return zero, fmt.Errorf("update %s %d: %w", s.entityName, id, shared.ErrNotFound)
	}

	if err := s.validator.Validate(ctx, entity); err != nil {
		return zero, err
	}
	if err := s.applyLevel(ctx, entity); err != nil {
		return zero, err
	}

	if err := s.repo.Update(ctx, entity); err != nil {
		return zero, s.translateConflict(entity, fmt.Errorf("update %s %d: %w", s.entityName, id, err))
	}

	s.logger.Info("entity updated",
		zap.String("entity_type", s.entityName),
		zap.Int64("entity_id", id),
	)
	s.publish(ctx, shared.NewEntityUpdated(old, entity))

	return entity, nil
}

// Delete removes the entity with the given id and publishes a deleted
// event carrying the id.
func (s *EntityService[T]) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete %s %d: %w", s.entityName, id, err)
	}

	s.logger.Info("entity deleted",
		zap.String("entity_type", s.entityName),
		zap.Int64("entity_id", id),
	)
	s.publish(ctx, shared.NewEntityDeleted(s.entityName, id))

	return nil
}

// Search runs a keyword, filter, sort, and pagination query. The call runs
// under profiling labels so slow searches show up per entity type.
func (s *EntityService[T]) Search(ctx context.Context, query shared.SearchQuery) (shared.SearchResult[T], error) {
	var (
		result shared.SearchResult[T]
		err    error
	)
	telemetry.WithProfilingLabels(ctx, telemetry.OperationLabels(s.entityName+"_search", nil),
		func(ctx context.Context) {
			result, err = s.repo.Search(ctx, query)
		})
	return result, err
}

// Count returns the total number of entities of the type
func (s *EntityService[T]) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

// ChangeLevel moves a leveled entity to the target tier, enforcing the
// transition rule: only upgrades to a strictly higher tier are allowed and
// the top tier is final. Violations leave the stored entity untouched.
func (s *EntityService[T]) ChangeLevel(ctx context.Context, id int64, target shared.Level) (T, error) {
	var zero T

	entity, found, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return zero, fmt.Errorf("change level of %s %d: %w", s.entityName, id, err)
	}
	if !found {
		return zero, fmt.Errorf("change level of %s %d: %w", s.entityName, id, shared.ErrNotFound)
	}

	leveled, ok := any(entity).(shared.Leveled)
	if !ok {
		return zero, fmt.Errorf("change level of %s: type carries no tier: %w", s.entityName, shared.ErrInvalidInput)
	}

	if err := leveled.GetLevel().CanTransitionTo(target); err != nil {
		return zero, err
	}

	leveled.SetLevel(target)
	return s.Update(ctx, entity)
}

// applyLevel lets the strategy decide the tier the entity should carry.
// A zero strategy result means no change.
func (s *EntityService[T]) applyLevel(ctx context.Context, entity T) error {
	level, err := s.strategy.Evaluate(ctx, entity)
	if err != nil {
		return fmt.Errorf("level strategy %s: %w", s.strategy.Name(), err)
	}
	if level.IsZero() {
		return nil
	}

	leveled, ok := any(entity).(shared.Leveled)
	if !ok {
		return nil
	}
	if !leveled.GetLevel().Equals(level) {
		leveled.SetLevel(level)
	}
	return nil
}

// translateConflict maps a storage-layer uniqueness violation onto the
// BusinessRuleError family, so callers see one error shape no matter which
// layer detected the collision.
func (s *EntityService[T]) translateConflict(entity T, err error) error {
	if errors.Is(err, shared.ErrConflict) {
		return shared.NewBusinessRuleError("unique_constraint",
			fmt.Sprintf("%s %q conflicts with an existing record", s.entityName, entity.DisplayLabel()))
	}
	return err
}

// publish delivers events best-effort: failures are logged, never returned
func (s *EntityService[T]) publish(ctx context.Context, events ...shared.DomainEvent) {
	if err := s.events.Publish(ctx, events...); err != nil {
		s.logger.Warn("event delivery incomplete",
			zap.String("entity_type", s.entityName),
			zap.Error(err),
		)
	}
}

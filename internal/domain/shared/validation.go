package shared

import (
	"context"
	"fmt"
)

// ValidationResult collects schema violations field by field. Entities
// append every problem they find so one pass reports the full list.
type ValidationResult struct {
	errors []FieldError
}

// NewValidationResult creates an empty validation result
func NewValidationResult() *ValidationResult {
	return &ValidationResult{}
}

// AddError records a violation for the given field
func (r *ValidationResult) AddError(field, message string) {
	r.errors = append(r.errors, FieldError{Field: field, Message: message})
}

// Merge appends all violations from another result
func (r *ValidationResult) Merge(other *ValidationResult) {
	if other == nil {
		return
	}
	r.errors = append(r.errors, other.errors...)
}

// Valid reports whether no violations were recorded
func (r *ValidationResult) Valid() bool {
	return r == nil || len(r.errors) == 0
}

// Errors returns the recorded violations in insertion order
func (r *ValidationResult) Errors() []FieldError {
	if r == nil {
		return nil
	}
	return r.errors
}

// Err returns nil for a valid result, or a ValidationError carrying every
// recorded violation.
func (r *ValidationResult) Err() error {
	if r.Valid() {
		return nil
	}
	fields := make([]FieldError, len(r.errors))
	copy(fields, r.errors)
	return &ValidationError{Fields: fields}
}

// BusinessRule is one ordered predicate in an entity's validation pipeline.
// Rules may read the Repository (e.g. uniqueness probes) and must not mutate
// the entity. A failing rule returns a BusinessRuleError.
type BusinessRule[T Entity] interface {
	Name() string
	Check(ctx context.Context, entity T) error
}

// Validator runs an entity's schema validation first, aggregating every
// violated field, then its business rules in registration order,
// short-circuiting on the first failure since later rules may assume the
// invariants established by earlier ones.
type Validator[T Entity] struct {
	rules []BusinessRule[T]
}

// NewValidator creates a validator with the given rules in order
func NewValidator[T Entity](rules ...BusinessRule[T]) *Validator[T] {
	return &Validator[T]{rules: rules}
}

// AddRule appends a rule to the end of the pipeline
func (v *Validator[T]) AddRule(rule BusinessRule[T]) {
	v.rules = append(v.rules, rule)
}

// Validate accepts or rejects the entity. It never mutates it.
func (v *Validator[T]) Validate(ctx context.Context, entity T) error {
	if err := entity.Validate().Err(); err != nil {
		return err
	}
	for _, rule := range v.rules {
		if err := rule.Check(ctx, entity); err != nil {
			return err
		}
	}
	return nil
}

// UniqueFieldRule rejects an entity whose field value is already used by a
// different row. The probe is advisory and non-atomic: the storage-layer
// unique constraint remains the authoritative check, and the service layer
// reports both through the same BusinessRuleError family. An entity's own
// row never counts as a collision, so updates keeping the value pass.
type UniqueFieldRule[T Entity] struct {
	repo  Repository[T]
	rule  string
	field string
	value func(T) string
}

// NewUniqueFieldRule creates a uniqueness probe for one filterable field
func NewUniqueFieldRule[T Entity](repo Repository[T], rule, field string, value func(T) string) *UniqueFieldRule[T] {
	return &UniqueFieldRule[T]{repo: repo, rule: rule, field: field, value: value}
}

// Name returns the rule identifier
func (r *UniqueFieldRule[T]) Name() string {
	return r.rule
}

// Check searches for other rows carrying the same value
func (r *UniqueFieldRule[T]) Check(ctx context.Context, entity T) error {
	value := r.value(entity)
	if value == "" {
		return nil
	}

	result, err := r.repo.Search(ctx, NewSearchQuery().WithFilter(r.field, value))
	if err != nil {
		return fmt.Errorf("rule %s: %w", r.rule, err)
	}

	selfID, persisted := entity.GetID()
	for _, other := range result.Items {
		otherID, _ := other.GetID()
		if !persisted || otherID != selfID {
			return NewBusinessRuleError(r.rule,
				fmt.Sprintf("%s %q is already used by %s", r.field, value, other.DisplayLabel()))
		}
	}
	return nil
}

// ReferenceRule rejects an entity whose foreign reference does not point at
// a persisted row of the referenced type. References reported as absent by
// the extractor are skipped, so optional links stay optional.
type ReferenceRule[T Entity, R Entity] struct {
	repo  Repository[R]
	rule  string
	field string
	ref   func(T) (int64, bool)
}

// NewReferenceRule creates an existence probe for one foreign reference
func NewReferenceRule[T Entity, R Entity](repo Repository[R], rule, field string, ref func(T) (int64, bool)) *ReferenceRule[T, R] {
	return &ReferenceRule[T, R]{repo: repo, rule: rule, field: field, ref: ref}
}

// Name returns the rule identifier
func (r *ReferenceRule[T, R]) Name() string {
	return r.rule
}

// Check looks the referenced row up by id
func (r *ReferenceRule[T, R]) Check(ctx context.Context, entity T) error {
	id, ok := r.ref(entity)
	if !ok {
		return nil
	}

	_, found, err := r.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("rule %s: %w", r.rule, err)
	}
	if !found {
		return NewBusinessRuleError(r.rule,
			fmt.Sprintf("%s %d does not exist", r.field, id))
	}
	return nil
}

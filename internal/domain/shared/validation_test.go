package shared

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testContact is a minimal entity for exercising the validation pipeline.
type testContact struct {
	BaseEntity
	Name  string
	Phone string
}

func (c *testContact) EntityName() string   { return "test_contact" }
func (c *testContact) DisplayLabel() string { return c.Name }

func (c *testContact) Validate() *ValidationResult {
	result := NewValidationResult()
	if c.Name == "" {
		result.AddError("name", "name is required")
	}
	if c.Phone == "" {
		result.AddError("phone", "phone is required")
	}
	return result
}

// recordingRule records whether it ran and returns a configured error.
type recordingRule struct {
	name string
	err  error
	ran  bool
}

func (r *recordingRule) Name() string { return r.name }

func (r *recordingRule) Check(_ context.Context, _ *testContact) error {
	r.ran = true
	return r.err
}

func TestValidationResult(t *testing.T) {
	t.Run("empty result is valid with nil error", func(t *testing.T) {
		result := NewValidationResult()

		assert.True(t, result.Valid())
		assert.NoError(t, result.Err())
	})

	t.Run("aggregates every violation in order", func(t *testing.T) {
		result := NewValidationResult()
		result.AddError("name", "name is required")
		result.AddError("phone", "phone is invalid")

		err := result.Err()
		require.Error(t, err)

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		require.Len(t, verr.Fields, 2)
		assert.Equal(t, "name", verr.Fields[0].Field)
		assert.Equal(t, "phone", verr.Fields[1].Field)
		assert.True(t, verr.HasField("name"))
		assert.False(t, verr.HasField("email"))
	})

	t.Run("merge combines results", func(t *testing.T) {
		a := NewValidationResult()
		a.AddError("name", "required")
		b := NewValidationResult()
		b.AddError("phone", "required")

		a.Merge(b)
		assert.Len(t, a.Errors(), 2)
	})
}

func TestValidator_Validate(t *testing.T) {
	ctx := context.Background()

	t.Run("schema failures report all fields and skip business rules", func(t *testing.T) {
		rule := &recordingRule{name: "never_runs"}
		v := NewValidator[*testContact](rule)

		err := v.Validate(ctx, &testContact{})

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Len(t, verr.Fields, 2)
		assert.False(t, rule.ran, "business rules must not run when schema validation fails")
	})

	t.Run("business rules run in order and short-circuit on first failure", func(t *testing.T) {
		first := &recordingRule{name: "first", err: NewBusinessRuleError("first", "rejected")}
		second := &recordingRule{name: "second"}
		v := NewValidator[*testContact](first, second)

		err := v.Validate(ctx, &testContact{Name: "ok", Phone: "123"})

		var brErr *BusinessRuleError
		require.ErrorAs(t, err, &brErr)
		assert.Equal(t, "first", brErr.Rule)
		assert.True(t, first.ran)
		assert.False(t, second.ran, "later rules must not run after a failure")
	})

	t.Run("passes a valid entity through all rules", func(t *testing.T) {
		first := &recordingRule{name: "first"}
		second := &recordingRule{name: "second"}
		v := NewValidator[*testContact](first, second)

		err := v.Validate(ctx, &testContact{Name: "ok", Phone: "123"})

		assert.NoError(t, err)
		assert.True(t, first.ran)
		assert.True(t, second.ran)
	})
}

// stubRepository serves rule probes from a fixed row set.
type stubRepository struct {
	rows      []*testContact
	searchErr error
	findErr   error
}

func (s *stubRepository) Create(context.Context, *testContact) error { return nil }

func (s *stubRepository) FindByID(_ context.Context, id int64) (*testContact, bool, error) {
	if s.findErr != nil {
		return nil, false, s.findErr
	}
	for _, row := range s.rows {
		if rowID, ok := row.GetID(); ok && rowID == id {
			return row, true, nil
		}
	}
	return nil, false, nil
}

func (s *stubRepository) FindAll(context.Context) ([]*testContact, error) { return s.rows, nil }

func (s *stubRepository) Update(context.Context, *testContact) error { return nil }

func (s *stubRepository) Delete(context.Context, int64) error { return nil }

func (s *stubRepository) Search(_ context.Context, query SearchQuery) (SearchResult[*testContact], error) {
	if s.searchErr != nil {
		return SearchResult[*testContact]{}, s.searchErr
	}
	phone, _ := query.Filters["phone"].(string)
	var items []*testContact
	for _, row := range s.rows {
		if row.Phone == phone {
			items = append(items, row)
		}
	}
	return NewSearchResult(items, int64(len(items)), query), nil
}

func (s *stubRepository) Count(context.Context) (int64, error) {
	return int64(len(s.rows)), nil
}

func TestUniqueFieldRule(t *testing.T) {
	ctx := context.Background()

	existing := &testContact{Name: "Existing", Phone: "13812345678"}
	existing.SetID(7)

	newRule := func(repo Repository[*testContact]) *UniqueFieldRule[*testContact] {
		return NewUniqueFieldRule(repo, "unique_phone", "phone",
			func(c *testContact) string { return c.Phone })
	}

	t.Run("rejects a new entity reusing the value", func(t *testing.T) {
		rule := newRule(&stubRepository{rows: []*testContact{existing}})

		err := rule.Check(ctx, &testContact{Name: "New", Phone: "13812345678"})

		var brErr *BusinessRuleError
		require.ErrorAs(t, err, &brErr)
		assert.Equal(t, "unique_phone", brErr.Rule)
		assert.Contains(t, brErr.Message, "13812345678")
	})

	t.Run("ignores the entity's own row on update", func(t *testing.T) {
		rule := newRule(&stubRepository{rows: []*testContact{existing}})

		same := &testContact{Name: "Existing renamed", Phone: "13812345678"}
		same.SetID(7)

		assert.NoError(t, rule.Check(ctx, same))
	})

	t.Run("rejects an update colliding with a different row", func(t *testing.T) {
		rule := newRule(&stubRepository{rows: []*testContact{existing}})

		other := &testContact{Name: "Other", Phone: "13812345678"}
		other.SetID(8)

		var brErr *BusinessRuleError
		require.ErrorAs(t, rule.Check(ctx, other), &brErr)
	})

	t.Run("skips empty values", func(t *testing.T) {
		rule := newRule(&stubRepository{rows: []*testContact{existing}})

		assert.NoError(t, rule.Check(ctx, &testContact{Name: "No phone"}))
	})

	t.Run("propagates repository failures", func(t *testing.T) {
		rule := newRule(&stubRepository{searchErr: ErrStorage})

		err := rule.Check(ctx, &testContact{Phone: "123"})
		assert.True(t, errors.Is(err, ErrStorage))
	})
}

func TestReferenceRule(t *testing.T) {
	ctx := context.Background()

	referenced := &testContact{Name: "Referenced", Phone: "13812345678"}
	referenced.SetID(7)

	newRule := func(repo Repository[*testContact], refID int64) *ReferenceRule[*testContact, *testContact] {
		return NewReferenceRule[*testContact](repo, "customer_exists", "customer_id",
			func(*testContact) (int64, bool) { return refID, refID != 0 })
	}

	t.Run("passes when the referenced row exists", func(t *testing.T) {
		rule := newRule(&stubRepository{rows: []*testContact{referenced}}, 7)

		assert.NoError(t, rule.Check(ctx, &testContact{Name: "Has link"}))
	})

	t.Run("rejects a dangling reference", func(t *testing.T) {
		rule := newRule(&stubRepository{rows: []*testContact{referenced}}, 99)

		var brErr *BusinessRuleError
		require.ErrorAs(t, rule.Check(ctx, &testContact{Name: "Dangling"}), &brErr)
		assert.Equal(t, "customer_exists", brErr.Rule)
		assert.Contains(t, brErr.Message, "99")
	})

	t.Run("skips absent optional references", func(t *testing.T) {
		rule := newRule(&stubRepository{}, 0)

		assert.NoError(t, rule.Check(ctx, &testContact{Name: "No link"}))
	})

	t.Run("propagates repository failures", func(t *testing.T) {
		rule := newRule(&stubRepository{findErr: ErrConnection}, 7)

		err := rule.Check(ctx, &testContact{Name: "Has link"})
		assert.True(t, errors.Is(err, ErrConnection))
	})
}

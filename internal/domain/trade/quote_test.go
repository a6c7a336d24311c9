package trade

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crm/backend/internal/domain/shared"
)

func TestNewQuote(t *testing.T) {
	validUntil := time.Now().AddDate(0, 1, 0)
	quote := NewQuote("q-20260801-001", 7, decimal.NewFromInt(12800), validUntil)

	_, persisted := quote.GetID()
	assert.False(t, persisted)
	assert.Equal(t, "Q-20260801-001", quote.QuoteNumber, "quote numbers are stored uppercase")
	assert.Equal(t, int64(7), quote.CustomerID)
	assert.Equal(t, QuoteStatusDraft, quote.Status)
	assert.True(t, quote.TotalAmount.Equal(decimal.NewFromInt(12800)))
	assert.Equal(t, EntityNameQuote, quote.EntityName())
	assert.Equal(t, "Q-20260801-001", quote.DisplayLabel())
}

func TestQuoteValidate(t *testing.T) {
	validUntil := time.Now().AddDate(0, 1, 0)

	t.Run("accepts a well-formed quote", func(t *testing.T) {
		quote := NewQuote("Q-20260801-001", 7, decimal.NewFromInt(12800), validUntil)

		assert.True(t, quote.Validate().Valid())
	})

	t.Run("reports every violated field in one pass", func(t *testing.T) {
		quote := &Quote{
			BaseEntity:  shared.NewBaseEntity(),
			QuoteNumber: "",
			CustomerID:  0,
			Status:      QuoteStatus("sketch"),
			TotalAmount: decimal.NewFromInt(-1),
		}

		result := quote.Validate()
		require.False(t, result.Valid())
		assert.Len(t, result.Errors(), 5)
	})

	t.Run("rejects malformed quote numbers", func(t *testing.T) {
		quote := NewQuote("Q 2026/08", 7, decimal.NewFromInt(100), validUntil)

		result := quote.Validate()
		require.False(t, result.Valid())
		assert.Equal(t, "quote_number", result.Errors()[0].Field)
	})

	t.Run("rejects over-length quote numbers", func(t *testing.T) {
		quote := NewQuote(strings.Repeat("Q", 51), 7, decimal.NewFromInt(100), validUntil)

		assert.False(t, quote.Validate().Valid())
	})
}

func TestQuoteStatusTransitions(t *testing.T) {
	validUntil := time.Now().AddDate(0, 1, 0)

	t.Run("walks the happy path draft to accepted", func(t *testing.T) {
		quote := NewQuote("Q-1", 7, decimal.NewFromInt(100), validUntil)

		require.NoError(t, quote.TransitionTo(QuoteStatusSent))
		require.NoError(t, quote.TransitionTo(QuoteStatusAccepted))
		assert.Equal(t, QuoteStatusAccepted, quote.Status)
	})

	t.Run("rejects skipping the sent stage", func(t *testing.T) {
		quote := NewQuote("Q-2", 7, decimal.NewFromInt(100), validUntil)

		err := quote.TransitionTo(QuoteStatusAccepted)

		var brErr *shared.BusinessRuleError
		require.ErrorAs(t, err, &brErr)
		assert.Equal(t, "quote_status_transition", brErr.Rule)
		assert.Equal(t, QuoteStatusDraft, quote.Status, "a rejected transition leaves the quote unchanged")
	})

	t.Run("rejects leaving a terminal status", func(t *testing.T) {
		quote := NewQuote("Q-3", 7, decimal.NewFromInt(100), validUntil)
		require.NoError(t, quote.TransitionTo(QuoteStatusSent))
		require.NoError(t, quote.TransitionTo(QuoteStatusRejected))

		err := quote.TransitionTo(QuoteStatusAccepted)

		var brErr *shared.BusinessRuleError
		require.ErrorAs(t, err, &brErr)
		assert.Equal(t, QuoteStatusRejected, quote.Status)
	})

	t.Run("rejects unknown target statuses", func(t *testing.T) {
		quote := NewQuote("Q-4", 7, decimal.NewFromInt(100), validUntil)

		var brErr *shared.BusinessRuleError
		require.ErrorAs(t, quote.TransitionTo(QuoteStatus("haggling")), &brErr)
	})
}

func TestQuoteIsExpired(t *testing.T) {
	now := time.Now()
	quote := NewQuote("Q-5", 7, decimal.NewFromInt(100), now.Add(24*time.Hour))

	assert.False(t, quote.IsExpired(now))
	assert.True(t, quote.IsExpired(now.Add(48*time.Hour)))
}

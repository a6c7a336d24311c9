package shared

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelOrdering(t *testing.T) {
	t.Run("tiers are strictly ordered", func(t *testing.T) {
		levels := Levels()
		require.Len(t, levels, 4)
		for i := 1; i < len(levels); i++ {
			assert.True(t, levels[i].IsHigherThan(levels[i-1]),
				"%s should outrank %s", levels[i].Code(), levels[i-1].Code())
			assert.True(t, levels[i-1].IsLowerThan(levels[i]))
		}
	})

	t.Run("lowest is potential, top is vip", func(t *testing.T) {
		assert.Equal(t, PotentialLevel(), LowestLevel())
		assert.True(t, VipLevel().IsTop())
		assert.False(t, ImportantLevel().IsTop())
	})
}

func TestLevelFromCode(t *testing.T) {
	t.Run("resolves known codes", func(t *testing.T) {
		level, err := LevelFromCode("important")
		require.NoError(t, err)
		assert.Equal(t, ImportantLevel(), level)
	})

	t.Run("rejects unknown codes", func(t *testing.T) {
		_, err := LevelFromCode("platinum")
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestLevel_CanTransitionTo(t *testing.T) {
	cases := []struct {
		name   string
		from   Level
		to     Level
		wantOK bool
	}{
		{"potential to normal", PotentialLevel(), NormalLevel(), true},
		{"normal to important", NormalLevel(), ImportantLevel(), true},
		{"important to vip", ImportantLevel(), VipLevel(), true},
		{"normal to vip skipping a tier", NormalLevel(), VipLevel(), true},
		{"vip to important downgrade", VipLevel(), ImportantLevel(), false},
		{"vip to vip no-op", VipLevel(), VipLevel(), false},
		{"normal to normal no-op", NormalLevel(), NormalLevel(), false},
		{"important to normal downgrade", ImportantLevel(), NormalLevel(), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.from.CanTransitionTo(tc.to)
			if tc.wantOK {
				assert.NoError(t, err)
				return
			}
			var brErr *BusinessRuleError
			require.ErrorAs(t, err, &brErr)
			assert.Equal(t, "level_transition", brErr.Rule)
		})
	}
}

func TestLevel_DatabaseRoundTrip(t *testing.T) {
	t.Run("stores only the code", func(t *testing.T) {
		v, err := ImportantLevel().Value()
		require.NoError(t, err)
		assert.Equal(t, "important", v)
	})

	t.Run("zero level stores NULL", func(t *testing.T) {
		v, err := Level{}.Value()
		require.NoError(t, err)
		assert.Nil(t, v)
	})

	t.Run("scan re-derives the full tier", func(t *testing.T) {
		var level Level
		require.NoError(t, level.Scan("vip"))
		assert.Equal(t, VipLevel(), level)

		require.NoError(t, level.Scan(nil))
		assert.True(t, level.IsZero())
	})

	t.Run("scan rejects unknown codes", func(t *testing.T) {
		var level Level
		assert.Error(t, level.Scan("gold"))
	})
}

func TestLevel_JSON(t *testing.T) {
	t.Run("round trips through the code", func(t *testing.T) {
		data, err := json.Marshal(NormalLevel())
		require.NoError(t, err)
		assert.JSONEq(t, `{"code":"normal","name":"普通","rank":2}`, string(data))

		var level Level
		require.NoError(t, json.Unmarshal(data, &level))
		assert.Equal(t, NormalLevel(), level)
	})
}

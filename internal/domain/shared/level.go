package shared

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Standard level codes, lowest tier first
const (
	LevelCodePotential = "potential"
	LevelCodeNormal    = "normal"
	LevelCodeImportant = "important"
	LevelCodeVip       = "vip"
)

// Level is a Value Object representing an ordered business tier attached to
// certain entities (customers, suppliers). Levels are immutable; ordering is
// by rank, and transitions may only move strictly upward.
type Level struct {
	code string
	name string
	rank int
}

// Predefined tiers in ascending order

// PotentialLevel returns the lowest tier
func PotentialLevel() Level {
	return Level{code: LevelCodePotential, name: "潜在", rank: 1}
}

// NormalLevel returns the standard tier
func NormalLevel() Level {
	return Level{code: LevelCodeNormal, name: "普通", rank: 2}
}

// ImportantLevel returns the key-account tier
func ImportantLevel() Level {
	return Level{code: LevelCodeImportant, name: "重要", rank: 3}
}

// VipLevel returns the top tier. Once reached it cannot be changed.
func VipLevel() Level {
	return Level{code: LevelCodeVip, name: "VIP", rank: 4}
}

// Levels returns all tiers in ascending order
func Levels() []Level {
	return []Level{PotentialLevel(), NormalLevel(), ImportantLevel(), VipLevel()}
}

// LowestLevel returns the bottom tier, the default for new leveled entities
func LowestLevel() Level {
	return PotentialLevel()
}

// LevelFromCode resolves a tier by its code
func LevelFromCode(code string) (Level, error) {
	for _, l := range Levels() {
		if l.code == code {
			return l, nil
		}
	}
	return Level{}, fmt.Errorf("unknown level code %q: %w", code, ErrInvalidInput)
}

// Code returns the level code
func (l Level) Code() string {
	return l.code
}

// Name returns the level display name
func (l Level) Name() string {
	return l.name
}

// Rank returns the position in the tier order, lowest first
func (l Level) Rank() int {
	return l.rank
}

// IsZero reports whether no tier has been assigned yet
func (l Level) IsZero() bool {
	return l.code == ""
}

// Equals reports whether two levels are the same tier
func (l Level) Equals(other Level) bool {
	return l.code == other.code
}

// IsHigherThan reports whether this tier outranks the other
func (l Level) IsHigherThan(other Level) bool {
	return l.rank > other.rank
}

// IsLowerThan reports whether the other tier outranks this one
func (l Level) IsLowerThan(other Level) bool {
	return l.rank < other.rank
}

// IsTop reports whether this is the highest tier
func (l Level) IsTop() bool {
	return l.rank == VipLevel().rank
}

// CanTransitionTo checks the tier transition rule: a level may only move to
// a strictly higher tier, and the top tier cannot be changed further. The
// returned error is a BusinessRuleError; nil means the transition is legal.
func (l Level) CanTransitionTo(target Level) error {
	if l.IsTop() {
		return NewBusinessRuleError("level_transition",
			fmt.Sprintf("%s is the top tier and cannot be changed", l.name))
	}
	if !target.IsHigherThan(l) {
		return NewBusinessRuleError("level_transition",
			fmt.Sprintf("cannot move from %s to %s: only upgrades to a strictly higher tier are allowed", l.name, target.name))
	}
	return nil
}

// String returns a string representation of the level
func (l Level) String() string {
	return fmt.Sprintf("%s (%s)", l.name, l.code)
}

// levelJSON is the JSON representation of Level
type levelJSON struct {
	Code string `json:"code"`
	Name string `json:"name"`
	Rank int    `json:"rank"`
}

// MarshalJSON implements json.Marshaler
func (l Level) MarshalJSON() ([]byte, error) {
	return json.Marshal(levelJSON{Code: l.code, Name: l.name, Rank: l.rank})
}

// UnmarshalJSON implements json.Unmarshaler. Only the code is significant;
// name and rank are re-derived from the tier table.
func (l *Level) UnmarshalJSON(data []byte) error {
	var v levelJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v.Code == "" {
		*l = Level{}
		return nil
	}
	level, err := LevelFromCode(v.Code)
	if err != nil {
		return err
	}
	*l = level
	return nil
}

// Value implements driver.Valuer; only the code is stored
func (l Level) Value() (driver.Value, error) {
	if l.code == "" {
		return nil, nil
	}
	return l.code, nil
}

// Scan implements sql.Scanner, re-deriving name and rank from the code
func (l *Level) Scan(value any) error {
	if value == nil {
		*l = Level{}
		return nil
	}

	var code string
	switch v := value.(type) {
	case string:
		code = v
	case []byte:
		code = string(v)
	default:
		return fmt.Errorf("cannot scan %T into Level", value)
	}

	level, err := LevelFromCode(code)
	if err != nil {
		return err
	}
	*l = level
	return nil
}

// Leveled is implemented by entities that carry an ordered tier
type Leveled interface {
	GetLevel() Level
	SetLevel(level Level)
}

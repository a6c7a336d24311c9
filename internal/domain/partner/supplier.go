package partner

import (
	"strings"

	"github.com/crm/backend/internal/domain/shared"
)

// EntityNameSupplier is the entity name suppliers register under
const EntityNameSupplier = "supplier"

// Supplier represents a supplier in the partner context. Suppliers are
// graded on the same ordered tier as customers.
type Supplier struct {
	shared.BaseEntity
	Name          string       `json:"name"`
	ContactPerson string       `json:"contact_person"`
	Phone         string       `json:"phone"`
	Email         string       `json:"email"`
	Address       string       `json:"address"`
	Level         shared.Level `json:"level"`
}

// NewSupplier creates an unpersisted supplier with the given name
func NewSupplier(name string) *Supplier {
	return &Supplier{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
	}
}

// EntityName returns the entity name for suppliers
func (s *Supplier) EntityName() string {
	return EntityNameSupplier
}

// DisplayLabel returns the supplier's name for display and error messages
func (s *Supplier) DisplayLabel() string {
	return s.Name
}

// GetLevel returns the supplier's tier
func (s *Supplier) GetLevel() shared.Level {
	return s.Level
}

// SetLevel assigns the supplier's tier
func (s *Supplier) SetLevel(level shared.Level) {
	s.Level = level
}

// Validate runs the supplier's schema checks, reporting every violated field.
// Contact field checks are shared with Customer (see customer.go).
func (s *Supplier) Validate() *shared.ValidationResult {
	result := shared.NewValidationResult()

	if strings.TrimSpace(s.Name) == "" {
		result.AddError("name", "supplier name cannot be empty")
	} else if len(s.Name) > 200 {
		result.AddError("name", "supplier name cannot exceed 200 characters")
	}

	validateContactFields(result, s.ContactPerson, s.Phone, s.Email, s.Address)

	return result
}

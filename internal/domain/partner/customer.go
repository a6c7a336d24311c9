package partner

import (
	"regexp"
	"strings"

	"github.com/crm/backend/internal/domain/shared"
)

// EntityNameCustomer is the entity name customers register under
const EntityNameCustomer = "customer"

// Customer represents a customer in the partner context. Customers carry an
// ordered tier used by level business rules; new customers without an
// explicit tier start at the normal level (see NewCustomerLevelStrategy).
type Customer struct {
	shared.BaseEntity
	Name          string       `json:"name"`
	ContactPerson string       `json:"contact_person"`
	Phone         string       `json:"phone"`
	Email         string       `json:"email"`
	Address       string       `json:"address"`
	Level         shared.Level `json:"level"`
}

// NewCustomer creates an unpersisted customer with the given name.
// Remaining fields are assigned directly; schema checks run in Validate.
func NewCustomer(name string) *Customer {
	return &Customer{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
	}
}

// EntityName returns the entity name for customers
func (c *Customer) EntityName() string {
	return EntityNameCustomer
}

// DisplayLabel returns the customer's name for display and error messages
func (c *Customer) DisplayLabel() string {
	return c.Name
}

// GetLevel returns the customer's tier
func (c *Customer) GetLevel() shared.Level {
	return c.Level
}

// SetLevel assigns the customer's tier. Transition legality is checked by
// the service layer, not here.
func (c *Customer) SetLevel(level shared.Level) {
	c.Level = level
}

// Validate runs the customer's schema checks, reporting every violated
// field rather than stopping at the first.
func (c *Customer) Validate() *shared.ValidationResult {
	result := shared.NewValidationResult()

	if strings.TrimSpace(c.Name) == "" {
		result.AddError("name", "customer name cannot be empty")
	} else if len(c.Name) > 200 {
		result.AddError("name", "customer name cannot exceed 200 characters")
	}

	validateContactFields(result, c.ContactPerson, c.Phone, c.Email, c.Address)

	return result
}

// Contact field validation, shared by customers and suppliers

var (
	// Mainland mobile numbers, or landlines with an area code
	phonePattern = regexp.MustCompile(`^(1[3-9]\d{9}|0\d{2,3}-?\d{7,8})$`)
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

func validateContactFields(result *shared.ValidationResult, contactPerson, phone, email, address string) {
	if contactPerson != "" && len(contactPerson) > 100 {
		result.AddError("contact_person", "contact person cannot exceed 100 characters")
	}
	if phone != "" && !phonePattern.MatchString(phone) {
		result.AddError("phone", "invalid phone number format")
	}
	if email != "" {
		if len(email) > 200 {
			result.AddError("email", "email cannot exceed 200 characters")
		} else if !emailPattern.MatchString(email) {
			result.AddError("email", "invalid email format")
		}
	}
	if address != "" && len(address) > 500 {
		result.AddError("address", "address cannot exceed 500 characters")
	}
}

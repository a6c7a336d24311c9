package models

import (
	"github.com/crm/backend/internal/domain/partner"
	"github.com/crm/backend/internal/domain/shared"
)

// CustomerRecord is the persistence model for the Customer domain entity.
// Phone and email are unique only among non-empty values; both are optional
// on the domain side.
type CustomerRecord struct {
	BaseRecord
	Name          string       `gorm:"type:varchar(200);not null"`
	ContactPerson string       `gorm:"type:varchar(100)"`
	Phone         string       `gorm:"type:varchar(50);uniqueIndex:idx_customers_phone,where:phone <> ''"`
	Email         string       `gorm:"type:varchar(200);uniqueIndex:idx_customers_email,where:email <> ''"`
	Address       string       `gorm:"type:varchar(500)"`
	Level         shared.Level `gorm:"type:varchar(20)"`
}

// TableName returns the table name for GORM
func (CustomerRecord) TableName() string {
	return "customers"
}

// ToDomain converts the persistence record to a domain Customer entity.
func (r *CustomerRecord) ToDomain() *partner.Customer {
	return &partner.Customer{
		BaseEntity:    r.BaseRecord.ToDomain(),
		Name:          r.Name,
		ContactPerson: r.ContactPerson,
		Phone:         r.Phone,
		Email:         r.Email,
		Address:       r.Address,
		Level:         r.Level,
	}
}

// CustomerRecordFromDomain creates a persistence record from a domain Customer.
func CustomerRecordFromDomain(c *partner.Customer) CustomerRecord {
	var r CustomerRecord
	r.BaseRecord.FromDomain(c.BaseEntity)
	r.Name = c.Name
	r.ContactPerson = c.ContactPerson
	r.Phone = c.Phone
	r.Email = c.Email
	r.Address = c.Address
	r.Level = c.Level
	return r
}

// SupplierRecord is the persistence model for the Supplier domain entity.
type SupplierRecord struct {
	BaseRecord
	Name          string       `gorm:"type:varchar(200);not null"`
	ContactPerson string       `gorm:"type:varchar(100)"`
	Phone         string       `gorm:"type:varchar(50);uniqueIndex:idx_suppliers_phone,where:phone <> ''"`
	Email         string       `gorm:"type:varchar(200);uniqueIndex:idx_suppliers_email,where:email <> ''"`
	Address       string       `gorm:"type:varchar(500)"`
	Level         shared.Level `gorm:"type:varchar(20)"`
}

// TableName returns the table name for GORM
func (SupplierRecord) TableName() string {
	return "suppliers"
}

// ToDomain converts the persistence record to a domain Supplier entity.
func (r *SupplierRecord) ToDomain() *partner.Supplier {
	return &partner.Supplier{
		BaseEntity:    r.BaseRecord.ToDomain(),
		Name:          r.Name,
		ContactPerson: r.ContactPerson,
		Phone:         r.Phone,
		Email:         r.Email,
		Address:       r.Address,
		Level:         r.Level,
	}
}

// SupplierRecordFromDomain creates a persistence record from a domain Supplier.
func SupplierRecordFromDomain(s *partner.Supplier) SupplierRecord {
	var r SupplierRecord
	r.BaseRecord.FromDomain(s.BaseEntity)
	r.Name = s.Name
	r.ContactPerson = s.ContactPerson
	r.Phone = s.Phone
	r.Email = s.Email
	r.Address = s.Address
	r.Level = s.Level
	return r
}

package models

import (
	"time"

	"github.com/crm/backend/internal/domain/support"
)

// TaskRecord is the persistence model for the Task domain entity. The
// optional customer/supplier references are NULL in storage when the
// domain entity carries a zero id.
type TaskRecord struct {
	BaseRecord
	Title       string             `gorm:"type:varchar(200);not null"`
	Description string             `gorm:"type:text"`
	Status      support.TaskStatus `gorm:"type:varchar(20);not null"`
	Priority    support.Priority   `gorm:"type:varchar(20);not null"`
	CustomerID  *int64             `gorm:"index"`
	SupplierID  *int64             `gorm:"index"`
	DueDate     *time.Time         `gorm:"index"`
}

// TableName returns the table name for GORM
func (TaskRecord) TableName() string {
	return "tasks"
}

// ToDomain converts the persistence record to a domain Task entity.
func (r *TaskRecord) ToDomain() *support.Task {
	t := &support.Task{
		BaseEntity:  r.BaseRecord.ToDomain(),
		Title:       r.Title,
		Description: r.Description,
		Status:      r.Status,
		Priority:    r.Priority,
		DueDate:     r.DueDate,
	}
	if r.CustomerID != nil {
		t.CustomerID = *r.CustomerID
	}
	if r.SupplierID != nil {
		t.SupplierID = *r.SupplierID
	}
	return t
}

// TaskRecordFromDomain creates a persistence record from a domain Task.
func TaskRecordFromDomain(t *support.Task) TaskRecord {
	var r TaskRecord
	r.BaseRecord.FromDomain(t.BaseEntity)
	r.Title = t.Title
	r.Description = t.Description
	r.Status = t.Status
	r.Priority = t.Priority
	r.DueDate = t.DueDate
	if t.CustomerID != 0 {
		id := t.CustomerID
		r.CustomerID = &id
	}
	if t.SupplierID != 0 {
		id := t.SupplierID
		r.SupplierID = &id
	}
	return r
}

// TicketRecord is the persistence model for the service Ticket domain entity.
type TicketRecord struct {
	BaseRecord
	TicketNumber    string               `gorm:"type:varchar(50);not null;uniqueIndex:idx_tickets_number"`
	CustomerID      int64                `gorm:"not null;index"`
	ProblemCategory string               `gorm:"type:varchar(100);not null"`
	Description     string               `gorm:"type:text;not null"`
	SolutionMethod  string               `gorm:"type:text"`
	Status          support.TicketStatus `gorm:"type:varchar(30);not null"`
	Priority        support.Priority     `gorm:"type:varchar(20);not null"`
}

// TableName returns the table name for GORM
func (TicketRecord) TableName() string {
	return "service_tickets"
}

// ToDomain converts the persistence record to a domain Ticket entity.
func (r *TicketRecord) ToDomain() *support.Ticket {
	return &support.Ticket{
		BaseEntity:      r.BaseRecord.ToDomain(),
		TicketNumber:    r.TicketNumber,
		CustomerID:      r.CustomerID,
		ProblemCategory: r.ProblemCategory,
		Description:     r.Description,
		SolutionMethod:  r.SolutionMethod,
		Status:          r.Status,
		Priority:        r.Priority,
	}
}

// TicketRecordFromDomain creates a persistence record from a domain Ticket.
func TicketRecordFromDomain(t *support.Ticket) TicketRecord {
	var r TicketRecord
	r.BaseRecord.FromDomain(t.BaseEntity)
	r.TicketNumber = t.TicketNumber
	r.CustomerID = t.CustomerID
	r.ProblemCategory = t.ProblemCategory
	r.Description = t.Description
	r.SolutionMethod = t.SolutionMethod
	r.Status = t.Status
	r.Priority = t.Priority
	return r
}

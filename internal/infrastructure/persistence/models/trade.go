package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/crm/backend/internal/domain/trade"
)

// QuoteRecord is the persistence model for the Quote domain entity.
type QuoteRecord struct {
	BaseRecord
	QuoteNumber string            `gorm:"type:varchar(50);not null;uniqueIndex:idx_quotes_number"`
	CustomerID  int64             `gorm:"not null;index"`
	Status      trade.QuoteStatus `gorm:"type:varchar(20);not null"`
	TotalAmount decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`
	ValidUntil  time.Time         `gorm:"not null"`
}

// TableName returns the table name for GORM
func (QuoteRecord) TableName() string {
	return "quotes"
}

// ToDomain converts the persistence record to a domain Quote entity.
func (r *QuoteRecord) ToDomain() *trade.Quote {
	return &trade.Quote{
		BaseEntity:  r.BaseRecord.ToDomain(),
		QuoteNumber: r.QuoteNumber,
		CustomerID:  r.CustomerID,
		Status:      r.Status,
		TotalAmount: r.TotalAmount,
		ValidUntil:  r.ValidUntil,
	}
}

// QuoteRecordFromDomain creates a persistence record from a domain Quote.
func QuoteRecordFromDomain(q *trade.Quote) QuoteRecord {
	var r QuoteRecord
	r.BaseRecord.FromDomain(q.BaseEntity)
	r.QuoteNumber = q.QuoteNumber
	r.CustomerID = q.CustomerID
	r.Status = q.Status
	r.TotalAmount = q.TotalAmount
	r.ValidUntil = q.ValidUntil
	return r
}

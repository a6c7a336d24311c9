// Package models contains GORM-specific persistence records that map to
// database tables. Records are separate from domain entities so the domain
// layer stays free of ORM tags and table mappings.
//
// Structure:
// - base.go: BaseRecord shared by every table
// - partner.go: CustomerRecord, SupplierRecord
// - trade.go: QuoteRecord
// - support.go: TaskRecord, TicketRecord
package models

package models

import "gorm.io/gorm"

// MigrateTables syncs the schema. Order matters for foreign keys.
func MigrateTables(db *gorm.DB) error {
	return db.AutoMigrate(
		&BusinessProfile{},
		&Product{},
		&Sale{},
		&SaleItem{},
		&TaxConfiguration{},
		&FiscalSequence{},
		&FiscalNumberAudit{},
		&FiscalDocument{},
		&IdempotencyKey{},
	)
}

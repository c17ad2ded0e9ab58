package models

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// FiscalNumberAudit records every consumed sequence number, written in the
// same transaction as the counter advance. Document persistence flips the row
// to CONFIRMED; rows stuck at ISSUED are numbers burned with no document and
// feed the reconciliation job.
type FiscalNumberAudit struct {
	ID             int               `gorm:"primary_key" json:"id"`
	BusinessId     string            `gorm:"size:36;not null;index" json:"business_id"`
	SequenceId     int               `gorm:"not null;index" json:"sequence_id"`
	DocumentNumber string            `gorm:"size:20;not null" json:"document_number"`
	Number         int64             `gorm:"not null" json:"number"`
	Status         FiscalAuditStatus `gorm:"size:20;not null;index" json:"status"`
	CreatedAt      time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

// ConfirmFiscalNumber marks an allocation as bound to a persisted document.
// Call it inside the transaction that inserts the document.
func ConfirmFiscalNumber(tx *gorm.DB, auditId int) error {
	return tx.Model(&FiscalNumberAudit{}).
		Where("id = ?", auditId).
		Update("status", FiscalAuditStatusConfirmed).Error
}

// GetOrphanedFiscalNumbers lists allocations still ISSUED after the grace
// period: numbers consumed whose document never landed.
func GetOrphanedFiscalNumbers(ctx context.Context, db *gorm.DB, olderThan time.Duration) ([]*FiscalNumberAudit, error) {
	cutoff := time.Now().Add(-olderThan)

	var results []*FiscalNumberAudit
	err := db.WithContext(ctx).
		Where("status = ? AND created_at < ?", FiscalAuditStatusIssued, cutoff).
		Order("created_at").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

package workflow

import (
	"context"
	"time"

	"github.com/caribesoft/pos_backend/models"
	"gorm.io/gorm"
)

// ReconciliationReport lists the two inconsistency classes this design can
// leave behind: fiscal numbers consumed without a document, and sales whose
// saga stopped after the header committed.
type ReconciliationReport struct {
	OrphanedNumbers []*models.FiscalNumberAudit `json:"orphaned_numbers"`
	StuckSales      []*models.Sale              `json:"stuck_sales"`
}

// BuildReconciliationReport scans for inconsistencies older than gracePeriod.
// The grace period keeps in-flight work (numbers allocated but not yet
// persisted, sagas between steps) out of the report.
func BuildReconciliationReport(ctx context.Context, db *gorm.DB, gracePeriod time.Duration) (*ReconciliationReport, error) {
	orphaned, err := models.GetOrphanedFiscalNumbers(ctx, db, gracePeriod)
	if err != nil {
		return nil, err
	}

	// PARTIAL rows recorded a step failure; stale PROCESSING rows are sagas
	// that died between the header insert and the status flip and would
	// otherwise never surface anywhere.
	cutoff := time.Now().Add(-gracePeriod)
	var stuckSales []*models.Sale
	err = db.WithContext(ctx).
		Where("status IN ? AND updated_at < ?",
			[]models.SaleStatus{models.SaleStatusPartial, models.SaleStatusProcessing}, cutoff).
		Preload("Items").
		Order("created_at").Find(&stuckSales).Error
	if err != nil {
		return nil, err
	}

	return &ReconciliationReport{
		OrphanedNumbers: orphaned,
		StuckSales:      stuckSales,
	}, nil
}

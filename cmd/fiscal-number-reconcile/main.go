// Command fiscal-number-reconcile lists fiscal numbers that were consumed
// without a persisted document and sales stuck mid-saga (PARTIAL, or
// PROCESSING past the grace period), for manual or scripted follow-up.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/caribesoft/pos_backend/config"
	"github.com/caribesoft/pos_backend/workflow"
)

func main() {
	grace := flag.Duration("grace", 10*time.Minute, "ignore inconsistencies newer than this")
	flag.Parse()

	db, err := config.ConnectDatabaseWithRetry()
	if err != nil {
		log.Fatal(err)
	}

	report, err := workflow.BuildReconciliationReport(context.Background(), db, *grace)
	if err != nil {
		log.Fatal(err)
	}

	if len(report.OrphanedNumbers) == 0 && len(report.StuckSales) == 0 {
		fmt.Println("no inconsistencies found")
		return
	}

	for _, audit := range report.OrphanedNumbers {
		fmt.Printf("orphaned number: business=%s sequence=%d number=%s issued_at=%s\n",
			audit.BusinessId, audit.SequenceId, audit.DocumentNumber, audit.CreatedAt.Format(time.RFC3339))
	}
	for _, sale := range report.StuckSales {
		fmt.Printf("stuck sale: business=%s sale=%d status=%s total=%s items=%d created_at=%s\n",
			sale.BusinessId, sale.ID, sale.Status, sale.TotalAmount.StringFixed(2), len(sale.Items), sale.CreatedAt.Format(time.RFC3339))
	}
}

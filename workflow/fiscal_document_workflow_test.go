package workflow_test

import (
	"context"
	"testing"
	"time"

	"github.com/caribesoft/pos_backend/models"
	"github.com/caribesoft/pos_backend/utils"
	"github.com/caribesoft/pos_backend/workflow"
	"github.com/shopspring/decimal"
)

func createCompletedSale(t *testing.T, svc *workflow.SaleService, businessId string, productId int, qty int, price int64) *models.Sale {
	t.Helper()
	sale, err := svc.CreateSale(scopedCtx(businessId), &models.NewSale{
		Items: []models.NewSaleItem{{ProductId: productId, Quantity: qty, UnitPrice: decimal.NewFromInt(price)}},
	}, "")
	if err != nil {
		t.Fatalf("CreateSale: %v", err)
	}
	return sale
}

func TestIssueForSale_Success(t *testing.T) {
	db := newTestDB(t)
	businessId := seedBusiness(t, db)
	seedActiveTax(t, db, businessId, 18)
	seedSequence(t, db, businessId, "B01", 0, 100, time.Now().AddDate(1, 0, 0))
	product := seedProduct(t, db, businessId, "CAFE-001", 250, 10)

	sales := workflow.NewSaleService(db, nil, nil)
	fiscal := workflow.NewFiscalService(db, nil, nil, nil)
	sale := createCompletedSale(t, sales, businessId, product.ID, 1, 250)

	doc, err := fiscal.IssueForSale(scopedCtx(businessId), sale.ID)
	if err != nil {
		t.Fatalf("IssueForSale: %v", err)
	}

	if doc.DocumentNumber != "B0100000001" {
		t.Fatalf("document number = %s, want B0100000001", doc.DocumentNumber)
	}
	if doc.DocumentType != models.DocumentTypeFactura {
		t.Fatalf("document type = %s, want %s", doc.DocumentType, models.DocumentTypeFactura)
	}
	wantNet, _ := decimal.NewFromString("211.86")
	wantTax, _ := decimal.NewFromString("38.14")
	if !doc.NetAmount.Equal(wantNet) || !doc.TaxAmount.Equal(wantTax) {
		t.Fatalf("split = %s / %s, want 211.86 / 38.14", doc.NetAmount, doc.TaxAmount)
	}
	if !doc.NetAmount.Add(doc.TaxAmount).Equal(doc.TotalAmount) {
		t.Fatalf("net %s + tax %s != total %s", doc.NetAmount, doc.TaxAmount, doc.TotalAmount)
	}

	// the allocation audit row is confirmed in the same transaction
	var audit models.FiscalNumberAudit
	if err := db.Where("document_number = ?", doc.DocumentNumber).First(&audit).Error; err != nil {
		t.Fatalf("audit row: %v", err)
	}
	if audit.Status != models.FiscalAuditStatusConfirmed {
		t.Fatalf("audit status = %s, want %s", audit.Status, models.FiscalAuditStatusConfirmed)
	}
}

func TestIssueForSale_DuplicateIssue(t *testing.T) {
	db := newTestDB(t)
	businessId := seedBusiness(t, db)
	seedActiveTax(t, db, businessId, 18)
	seedSequence(t, db, businessId, "B01", 0, 100, time.Now().AddDate(1, 0, 0))
	product := seedProduct(t, db, businessId, "CAFE-001", 250, 10)

	sales := workflow.NewSaleService(db, nil, nil)
	fiscal := workflow.NewFiscalService(db, nil, nil, nil)
	sale := createCompletedSale(t, sales, businessId, product.ID, 1, 250)

	if _, err := fiscal.IssueForSale(scopedCtx(businessId), sale.ID); err != nil {
		t.Fatalf("first IssueForSale: %v", err)
	}
	_, err := fiscal.IssueForSale(scopedCtx(businessId), sale.ID)
	if err == nil {
		t.Fatal("expected error issuing twice for one sale")
	}
	if kind := utils.KindOf(err); kind != utils.ErrorKindConflict {
		t.Fatalf("expected CONFLICT, got %s (%v)", kind, err)
	}

	// the duplicate attempt must not have burned a number
	seqs, err := models.GetFiscalSequences(context.Background(), db, businessId)
	if err != nil {
		t.Fatalf("GetFiscalSequences: %v", err)
	}
	if len(seqs) != 1 || seqs[0].CurrentNumber != 1 {
		t.Fatalf("current number = %d, want 1", seqs[0].CurrentNumber)
	}
}

func TestIssueForSale_RejectsNonCompletedSale(t *testing.T) {
	db := newTestDB(t)
	businessId := seedBusiness(t, db)
	seedActiveTax(t, db, businessId, 18)
	seedSequence(t, db, businessId, "B01", 0, 100, time.Now().AddDate(1, 0, 0))

	partial := models.Sale{
		BusinessId:  businessId,
		Status:      models.SaleStatusPartial,
		TotalAmount: decimal.NewFromInt(100),
	}
	if err := db.Create(&partial).Error; err != nil {
		t.Fatalf("seed partial sale: %v", err)
	}

	fiscal := workflow.NewFiscalService(db, nil, nil, nil)
	_, err := fiscal.IssueForSale(scopedCtx(businessId), partial.ID)
	if err == nil {
		t.Fatal("expected error issuing for a partial sale")
	}
	if kind := utils.KindOf(err); kind != utils.ErrorKindValidation {
		t.Fatalf("expected VALIDATION, got %s (%v)", kind, err)
	}
}

func TestIssueForSale_NoActiveTaxConfiguration(t *testing.T) {
	db := newTestDB(t)
	businessId := seedBusiness(t, db)
	seedSequence(t, db, businessId, "B01", 0, 100, time.Now().AddDate(1, 0, 0))
	product := seedProduct(t, db, businessId, "CAFE-001", 250, 10)

	sales := workflow.NewSaleService(db, nil, nil)
	fiscal := workflow.NewFiscalService(db, nil, nil, nil)
	sale := createCompletedSale(t, sales, businessId, product.ID, 1, 250)

	_, err := fiscal.IssueForSale(scopedCtx(businessId), sale.ID)
	if err == nil {
		t.Fatal("expected error without an active tax configuration")
	}
	if kind := utils.KindOf(err); kind != utils.ErrorKindNotFound {
		t.Fatalf("expected NOT_FOUND, got %s (%v)", kind, err)
	}
}

func TestIssueForSale_AmbiguousTaxConfiguration(t *testing.T) {
	db := newTestDB(t)
	businessId := seedBusiness(t, db)
	seedActiveTax(t, db, businessId, 18)
	seedSequence(t, db, businessId, "B01", 0, 100, time.Now().AddDate(1, 0, 0))
	product := seedProduct(t, db, businessId, "CAFE-001", 250, 10)

	sales := workflow.NewSaleService(db, nil, nil)
	fiscal := workflow.NewFiscalService(db, nil, nil, nil)
	sale := createCompletedSale(t, sales, businessId, product.ID, 1, 250)

	seedActiveTax(t, db, businessId, 16)

	_, err := fiscal.IssueForSale(scopedCtx(businessId), sale.ID)
	if err == nil {
		t.Fatal("expected error with two active tax configurations")
	}
	if kind := utils.KindOf(err); kind != utils.ErrorKindValidation {
		t.Fatalf("expected VALIDATION, got %s (%v)", kind, err)
	}
}

func TestIssueForSale_ExhaustedSequence(t *testing.T) {
	db := newTestDB(t)
	businessId := seedBusiness(t, db)
	seedActiveTax(t, db, businessId, 18)
	// a sequence consumed all the way to its end number
	active := true
	exhausted := models.FiscalSequence{
		BusinessId:     businessId,
		SequenceType:   string(models.DocumentTypeFactura),
		Prefix:         "B01",
		CurrentNumber:  100,
		EndNumber:      100,
		IsActive:       &active,
		ExpirationDate: time.Now().AddDate(1, 0, 0),
	}
	if err := db.Create(&exhausted).Error; err != nil {
		t.Fatalf("seed exhausted sequence: %v", err)
	}
	product := seedProduct(t, db, businessId, "CAFE-001", 250, 10)

	sales := workflow.NewSaleService(db, nil, nil)
	fiscal := workflow.NewFiscalService(db, nil, nil, nil)
	sale := createCompletedSale(t, sales, businessId, product.ID, 1, 250)

	_, err := fiscal.IssueForSale(scopedCtx(businessId), sale.ID)
	if err == nil {
		t.Fatal("expected error from an exhausted sequence")
	}
	if kind := utils.KindOf(err); kind != utils.ErrorKindExhaustion {
		t.Fatalf("expected EXHAUSTION, got %s (%v)", kind, err)
	}

	var count int64
	db.Model(&models.FiscalDocument{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected no fiscal documents, found %d", count)
	}
}

func TestBuildReconciliationReport(t *testing.T) {
	db := newTestDB(t)
	businessId := seedBusiness(t, db)
	seedActiveTax(t, db, businessId, 18)
	seq := seedSequence(t, db, businessId, "B01", 0, 100, time.Now().AddDate(1, 0, 0))

	// an allocation whose document never landed stays ISSUED
	allocated, err := models.AllocateNextNumber(context.Background(), db, businessId, seq.SequenceType)
	if err != nil {
		t.Fatalf("AllocateNextNumber: %v", err)
	}

	partial := models.Sale{
		BusinessId:  businessId,
		Status:      models.SaleStatusPartial,
		TotalAmount: decimal.NewFromInt(100),
	}
	if err := db.Create(&partial).Error; err != nil {
		t.Fatalf("seed partial sale: %v", err)
	}

	// a crashed saga never flips PROCESSING to a terminal status; the report
	// must surface it once it outlives the grace period
	crashed := models.Sale{
		BusinessId:  businessId,
		Status:      models.SaleStatusProcessing,
		TotalAmount: decimal.NewFromInt(50),
	}
	if err := db.Create(&crashed).Error; err != nil {
		t.Fatalf("seed processing sale: %v", err)
	}

	completed := models.Sale{
		BusinessId:  businessId,
		Status:      models.SaleStatusCompleted,
		TotalAmount: decimal.NewFromInt(75),
	}
	if err := db.Create(&completed).Error; err != nil {
		t.Fatalf("seed completed sale: %v", err)
	}

	report, err := workflow.BuildReconciliationReport(context.Background(), db, 0)
	if err != nil {
		t.Fatalf("BuildReconciliationReport: %v", err)
	}
	if len(report.OrphanedNumbers) != 1 || report.OrphanedNumbers[0].DocumentNumber != allocated.DocumentNumber {
		t.Fatalf("orphaned numbers = %+v, want only %s", report.OrphanedNumbers, allocated.DocumentNumber)
	}
	if len(report.StuckSales) != 2 {
		t.Fatalf("stuck sales = %d, want the PARTIAL and the stale PROCESSING sale", len(report.StuckSales))
	}
	for _, sale := range report.StuckSales {
		if sale.ID != partial.ID && sale.ID != crashed.ID {
			t.Fatalf("unexpected sale %d (status %s) in report", sale.ID, sale.Status)
		}
	}
}

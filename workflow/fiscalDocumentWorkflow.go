package workflow

import (
	"context"

	"github.com/bsm/redislock"
	"github.com/caribesoft/pos_backend/models"
	"github.com/caribesoft/pos_backend/utils"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// FiscalService mints fiscal documents from completed sales. Redis and Locker
// may be nil; both are optimizations, never correctness dependencies.
type FiscalService struct {
	DB     *gorm.DB
	Redis  *redis.Client
	Locker *redislock.Client
	Logger *logrus.Logger
}

func NewFiscalService(db *gorm.DB, rdb *redis.Client, locker *redislock.Client, logger *logrus.Logger) *FiscalService {
	return &FiscalService{DB: db, Redis: rdb, Locker: locker, Logger: logger}
}

// AllocateNumber issues the next formatted number for (business, sequenceType),
// holding the best-effort contention lock around the compare-and-swap loop.
func (s *FiscalService) AllocateNumber(ctx context.Context, sequenceType string) (*models.AllocatedNumber, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, utils.NewError(utils.ErrorKindValidation, "business id is required")
	}

	release := ObtainAllocationLock(ctx, s.Locker, s.Logger, businessId, sequenceType)
	defer release()

	return models.AllocateNextNumber(ctx, s.DB, businessId, sequenceType)
}

// IssueForSale mints the FACTURA document for a completed sale:
// resolve the single active tax configuration, split the sale total into
// net/tax, allocate the next sequence number, persist the document.
//
// Any failure before allocation consumes nothing. A failure between
// allocation and document persistence leaves the number's audit row at ISSUED;
// that gap is reported as a partial failure (never silently swallowed) and
// picked up by the fiscal-number reconciliation job.
func (s *FiscalService) IssueForSale(ctx context.Context, saleId int) (*models.FiscalDocument, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, utils.NewError(utils.ErrorKindValidation, "business id is required")
	}

	sale, err := models.GetSale(ctx, s.DB, businessId, saleId)
	if err != nil {
		return nil, err
	}
	if sale.Status != models.SaleStatusCompleted {
		return nil, utils.NewError(utils.ErrorKindValidation,
			"sale %d has status %s; only completed sales can be invoiced", sale.ID, sale.Status)
	}

	existing, err := models.FindFiscalDocumentBySale(ctx, s.DB, businessId, sale.ID, models.DocumentTypeFactura)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, utils.NewError(utils.ErrorKindConflict,
			"sale %d already has fiscal document %s", sale.ID, existing.DocumentNumber)
	}

	taxCfg, err := models.GetActiveTaxConfiguration(ctx, s.DB, s.Redis, businessId)
	if err != nil {
		return nil, err
	}
	net, tax := utils.SplitTaxInclusive(sale.TotalAmount, taxCfg.Rate)

	allocated, err := s.AllocateNumber(ctx, string(models.DocumentTypeFactura))
	if err != nil {
		return nil, err
	}

	doc := models.FiscalDocument{
		BusinessId:     businessId,
		SaleId:         sale.ID,
		DocumentNumber: allocated.DocumentNumber,
		DocumentType:   models.DocumentTypeFactura,
		NetAmount:      net,
		TaxAmount:      tax,
		TotalAmount:    sale.TotalAmount,
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&doc).Error; err != nil {
			return err
		}
		return models.ConfirmFiscalNumber(tx, allocated.AuditId)
	})
	if err != nil {
		// The number is consumed but no document exists for it. Surface the
		// gap loudly; the audit row stays ISSUED for reconciliation.
		if s.Logger != nil {
			cid, _ := utils.GetCorrelationIdFromContext(ctx)
			s.Logger.WithFields(logrus.Fields{
				"module":          "fiscalDocumentWorkflow.go",
				"correlation_id":  cid,
				"sale_id":         sale.ID,
				"document_number": allocated.DocumentNumber,
				"audit_id":        allocated.AuditId,
			}).Error("fiscal number consumed but document persistence failed")
		}
		return nil, utils.WrapError(utils.ErrorKindPartialFailure, err,
			"fiscal number %s was consumed but the document was not persisted", allocated.DocumentNumber)
	}

	return &doc, nil
}

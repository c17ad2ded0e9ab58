package workflow

import (
	"context"

	"github.com/caribesoft/pos_backend/config"
	"github.com/caribesoft/pos_backend/models"
	"github.com/caribesoft/pos_backend/utils"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SaleStep identifies one step of the sale saga. Steps before persistSale are
// side-effect free; everything after can leave observable partial state.
type SaleStep string

const (
	SaleStepValidate       SaleStep = "validate"
	SaleStepPersistSale    SaleStep = "persist-sale"
	SaleStepPersistItems   SaleStep = "persist-items"
	SaleStepDecrementStock SaleStep = "decrement-stock"
	SaleStepFinalize       SaleStep = "finalize"
)

const saleHandlerName = "createSale"

// PartialFailureError reports a sale saga that failed after the header row was
// committed. It carries which stock decrements landed so the caller (or the
// reconcile job working off status=PARTIAL) can compensate; nothing is rolled
// back automatically.
type PartialFailureError struct {
	classified *utils.ClassifiedError

	SaleId                int
	FailedStep            SaleStep
	DecrementedProductIds []int
	FailedProductIds      []int
}

func (e *PartialFailureError) Error() string { return e.classified.Error() }
func (e *PartialFailureError) Unwrap() error { return e.classified }

func newPartialFailure(saleId int, step SaleStep, cause error, decremented []int, failed []int) *PartialFailureError {
	return &PartialFailureError{
		classified: utils.WrapError(utils.ErrorKindPartialFailure, cause,
			"sale %d left inconsistent: step %s failed", saleId, step),
		SaleId:                saleId,
		FailedStep:            step,
		DecrementedProductIds: decremented,
		FailedProductIds:      failed,
	}
}

// SaleService coordinates sale creation. All collaborators are injected at
// construction; Redis may be nil.
type SaleService struct {
	DB     *gorm.DB
	Redis  *redis.Client
	Logger *logrus.Logger
}

func NewSaleService(db *gorm.DB, rdb *redis.Client, logger *logrus.Logger) *SaleService {
	return &SaleService{DB: db, Redis: rdb, Logger: logger}
}

// productDemand is one product's total requested quantity, with duplicate
// lines for the same product summed so the stock check sees real demand.
type productDemand struct {
	ProductId int
	Quantity  int
}

func aggregateDemand(items []models.NewSaleItem) []productDemand {
	index := make(map[int]int)
	var demands []productDemand
	for _, item := range items {
		if pos, ok := index[item.ProductId]; ok {
			demands[pos].Quantity += item.Quantity
			continue
		}
		index[item.ProductId] = len(demands)
		demands = append(demands, productDemand{ProductId: item.ProductId, Quantity: item.Quantity})
	}
	return demands
}

// CreateSale runs the sale saga:
//
//  1. validate input (no side effects)
//  2. verify every product exists and has stock (reads only; aborting here
//     leaves no trace)
//  3. persist the sale header
//  4. persist the items
//  5. atomically decrement stock per product
//
// A failure in 4 or 5 marks the sale PARTIAL and returns a
// *PartialFailureError describing exactly what landed. idempotencyKey, when
// non-empty, deduplicates retries of ambiguous failures: a replayed key
// returns the first attempt's sale without touching stock again.
func (s *SaleService) CreateSale(ctx context.Context, input *models.NewSale, idempotencyKey string) (*models.Sale, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, utils.NewError(utils.ErrorKindValidation, "business id is required")
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	// The replay lookup must run before the stock pre-check: a retried key
	// whose first attempt succeeded already consumed the stock, and must get
	// the first sale back rather than an availability rejection.
	if idempotencyKey != "" {
		replayId, err := BeginIdempotency(s.DB.WithContext(ctx), businessId, saleHandlerName, idempotencyKey)
		if err != nil {
			return nil, err
		}
		if replayId != nil {
			return models.GetSale(ctx, s.DB, businessId, *replayId)
		}
	}

	recordFailure := func(cause error) {
		if idempotencyKey != "" {
			_ = MarkIdempotencyFailed(s.DB.WithContext(ctx), businessId, saleHandlerName, idempotencyKey, cause)
		}
	}

	demands := aggregateDemand(input.Items)
	for _, d := range demands {
		if err := models.CheckAvailableStock(ctx, s.DB, businessId, d.ProductId, d.Quantity); err != nil {
			recordFailure(err)
			return nil, err
		}
	}

	total := input.Total()
	subtotal, taxAmount := s.splitSaleTotal(ctx, businessId, total)

	sale := models.Sale{
		BusinessId:    businessId,
		CustomerName:  input.CustomerName,
		PaymentMethod: input.PaymentMethod,
		Status:        models.SaleStatusProcessing,
		Subtotal:      subtotal,
		TaxAmount:     taxAmount,
		TotalAmount:   total,
	}
	if err := s.DB.WithContext(ctx).Create(&sale).Error; err != nil {
		// Header never committed: clean failure, no reconciliation needed.
		recordFailure(err)
		return nil, utils.WrapError(utils.ErrorKindInternal, err, "could not persist sale")
	}

	items := make([]models.SaleItem, 0, len(input.Items))
	for _, item := range input.Items {
		items = append(items, models.SaleItem{
			SaleId:    sale.ID,
			ProductId: item.ProductId,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Notes:     item.Notes,
		})
	}
	if err := s.DB.WithContext(ctx).Create(&items).Error; err != nil {
		_ = models.MarkSaleStatus(ctx, s.DB, sale.ID, models.SaleStatusPartial)
		recordFailure(err)
		pf := newPartialFailure(sale.ID, SaleStepPersistItems, err, nil, nil)
		s.logStepFailure(ctx, pf)
		return nil, pf
	}

	var decremented []int
	for _, d := range demands {
		if err := models.DecrementProductStock(s.DB.WithContext(ctx), businessId, d.ProductId, d.Quantity); err != nil {
			_ = models.MarkSaleStatus(ctx, s.DB, sale.ID, models.SaleStatusPartial)
			recordFailure(err)
			pf := newPartialFailure(sale.ID, SaleStepDecrementStock, err, decremented, []int{d.ProductId})
			s.logStepFailure(ctx, pf)
			return nil, pf
		}
		decremented = append(decremented, d.ProductId)
	}

	if err := models.MarkSaleStatus(ctx, s.DB, sale.ID, models.SaleStatusCompleted); err != nil {
		recordFailure(err)
		pf := newPartialFailure(sale.ID, SaleStepFinalize, err, decremented, nil)
		s.logStepFailure(ctx, pf)
		return nil, pf
	}

	if idempotencyKey != "" {
		if err := MarkIdempotencySucceeded(s.DB.WithContext(ctx), businessId, saleHandlerName, idempotencyKey, sale.ID); err != nil {
			config.LogError(s.Logger, "saleWorkflow.go", "CreateSale", "MarkIdempotencySucceeded", sale.ID, err)
		}
	}

	return models.GetSale(ctx, s.DB, businessId, sale.ID)
}

// splitSaleTotal derives the header's subtotal/tax from the active tax
// configuration. Sale creation must not fail on tax provisioning gaps (that is
// enforced at document issuance), so any resolution problem falls back to an
// untaxed split.
func (s *SaleService) splitSaleTotal(ctx context.Context, businessId string, total decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	cfg, err := models.GetActiveTaxConfiguration(ctx, s.DB, s.Redis, businessId)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithFields(logrus.Fields{
				"module":      "saleWorkflow.go",
				"business_id": businessId,
			}).Debug("no usable active tax configuration, storing untaxed split")
		}
		return total, decimal.Zero
	}
	return utils.SplitTaxInclusive(total, cfg.Rate)
}

func (s *SaleService) logStepFailure(ctx context.Context, pf *PartialFailureError) {
	if s.Logger == nil {
		return
	}
	cid, _ := utils.GetCorrelationIdFromContext(ctx)
	s.Logger.WithFields(logrus.Fields{
		"module":                  "saleWorkflow.go",
		"correlation_id":          cid,
		"sale_id":                 pf.SaleId,
		"failed_step":             string(pf.FailedStep),
		"decremented_product_ids": pf.DecrementedProductIds,
		"failed_product_ids":      pf.FailedProductIds,
	}).Error(pf.Error())
}

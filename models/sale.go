package models

import (
	"context"
	"time"

	"github.com/caribesoft/pos_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Sale is the transaction header. Totals are derived at creation and never
// recomputed; items are append-only snapshots of the cart.
type Sale struct {
	ID            int             `gorm:"primary_key" json:"id"`
	BusinessId    string          `gorm:"size:36;not null;index" json:"business_id"`
	CustomerName  *string         `gorm:"size:100" json:"customer_name"`
	PaymentMethod *string         `gorm:"size:50" json:"payment_method"`
	Status        SaleStatus      `gorm:"size:20;not null;index" json:"status"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"subtotal"`
	TaxAmount     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"tax_amount"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_amount"`
	Items         []SaleItem      `gorm:"foreignKey:SaleId" json:"items"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type SaleItem struct {
	ID        int             `gorm:"primary_key" json:"id"`
	SaleId    int             `gorm:"not null;index" json:"sale_id"`
	ProductId int             `gorm:"not null;index" json:"product_id"`
	Product   Product         `json:"product"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"unit_price"`
	Notes     *string         `gorm:"size:255" json:"notes"`
}

type NewSale struct {
	Items         []NewSaleItem `json:"items" binding:"required"`
	CustomerName  *string       `json:"customer_name"`
	PaymentMethod *string       `json:"payment_method"`
}

type NewSaleItem struct {
	ProductId int             `json:"product_id" binding:"required"`
	Quantity  int             `json:"quantity" binding:"required"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Notes     *string         `json:"notes"`
}

// Validate rejects malformed input before any side effect. Product existence
// and stock checks happen later, against the database.
func (input *NewSale) Validate() error {
	if len(input.Items) == 0 {
		return utils.NewError(utils.ErrorKindValidation, "sale must contain at least one item")
	}
	for i, item := range input.Items {
		if item.ProductId <= 0 {
			return utils.NewError(utils.ErrorKindValidation, "item %d: product id is required", i)
		}
		if item.Quantity < 1 {
			return utils.NewError(utils.ErrorKindValidation, "item %d: quantity must be at least 1", i)
		}
		if item.UnitPrice.IsNegative() {
			return utils.NewError(utils.ErrorKindValidation, "item %d: unit price must not be negative", i)
		}
	}
	return nil
}

// Total sums the caller-supplied price snapshots. The catalog price is NOT
// re-read here: past sales keep their historical amounts even if catalog
// prices change later.
func (input *NewSale) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range input.Items {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

func GetSale(ctx context.Context, db *gorm.DB, businessId string, id int) (*Sale, error) {
	var sale Sale
	err := db.WithContext(ctx).Where("business_id = ?", businessId).
		Preload("Items").Preload("Items.Product").
		First(&sale, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.WrapError(utils.ErrorKindNotFound, nil, "sale %d not found", id)
		}
		return nil, err
	}
	return &sale, nil
}

func GetSales(ctx context.Context, db *gorm.DB, businessId string, status *SaleStatus) ([]*Sale, error) {
	dbCtx := db.WithContext(ctx).Where("business_id = ?", businessId)
	if status != nil {
		dbCtx = dbCtx.Where("status = ?", *status)
	}

	var results []*Sale
	err := dbCtx.Preload("Items").Preload("Items.Product").
		Order("created_at DESC").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// GetSalesSummary returns the sales of a date range joined with their items,
// feeding the (external) reporting surface.
func GetSalesSummary(ctx context.Context, db *gorm.DB, businessId string, start time.Time, end time.Time) ([]*Sale, error) {
	var results []*Sale
	err := db.WithContext(ctx).
		Where("business_id = ? AND created_at >= ? AND created_at <= ?", businessId, start, end).
		Preload("Items").Preload("Items.Product").
		Order("created_at").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// MarkSaleStatus is a best-effort status flip used by the sale saga to make
// partial completion observable. It must not mask the error that caused it.
func MarkSaleStatus(ctx context.Context, db *gorm.DB, saleId int, status SaleStatus) error {
	return db.WithContext(ctx).Model(&Sale{}).
		Where("id = ?", saleId).
		Update("status", status).Error
}

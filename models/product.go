package models

import (
	"context"
	"time"

	"github.com/caribesoft/pos_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	ID            int             `gorm:"primary_key" json:"id"`
	BusinessId    string          `gorm:"size:36;not null;index;index:uniq_product_sku,unique" json:"business_id"`
	Sku           string          `gorm:"size:50;not null;index:uniq_product_sku,unique" json:"sku"`
	Name          string          `gorm:"size:100;not null" json:"name"`
	Category      string          `gorm:"size:50" json:"category"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_price"`
	TaxRate       decimal.Decimal `gorm:"type:decimal(5,2);default:0" json:"tax_rate"`
	StockQuantity int             `gorm:"not null;default:0" json:"stock_quantity"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewProduct struct {
	Sku           string          `json:"sku" binding:"required"`
	Name          string          `json:"name" binding:"required"`
	Category      string          `json:"category"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	TaxRate       decimal.Decimal `json:"tax_rate"`
	StockQuantity int             `json:"stock_quantity"`
}

// validate input for both create & update. (id = 0 for create)
func (input *NewProduct) validate(ctx context.Context, db *gorm.DB, businessId string, id int) error {
	if input.UnitPrice.IsNegative() {
		return utils.NewError(utils.ErrorKindValidation, "unit price must not be negative")
	}
	if input.TaxRate.IsNegative() || input.TaxRate.GreaterThan(decimal.NewFromInt(100)) {
		return utils.NewError(utils.ErrorKindValidation, "tax rate must be between 0 and 100")
	}
	if input.StockQuantity < 0 {
		return utils.NewError(utils.ErrorKindValidation, "stock quantity must not be negative")
	}

	var count int64
	err := db.WithContext(ctx).Model(&Product{}).
		Where("business_id = ? AND sku = ? AND id <> ?", businessId, input.Sku, id).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return utils.NewError(utils.ErrorKindValidation, "sku %q already exists", input.Sku)
	}
	return nil
}

func CreateProduct(ctx context.Context, db *gorm.DB, businessId string, input *NewProduct) (*Product, error) {
	if err := input.validate(ctx, db, businessId, 0); err != nil {
		return nil, err
	}

	product := Product{
		BusinessId:    businessId,
		Sku:           input.Sku,
		Name:          input.Name,
		Category:      input.Category,
		UnitPrice:     input.UnitPrice,
		TaxRate:       input.TaxRate,
		StockQuantity: input.StockQuantity,
	}
	if err := db.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func UpdateProduct(ctx context.Context, db *gorm.DB, businessId string, id int, input *NewProduct) (*Product, error) {
	if err := input.validate(ctx, db, businessId, id); err != nil {
		return nil, err
	}

	product, err := GetProduct(ctx, db, businessId, id)
	if err != nil {
		return nil, err
	}

	err = db.WithContext(ctx).Model(product).
		Updates(map[string]interface{}{
			"Sku":           input.Sku,
			"Name":          input.Name,
			"Category":      input.Category,
			"UnitPrice":     input.UnitPrice,
			"TaxRate":       input.TaxRate,
			"StockQuantity": input.StockQuantity,
		}).Error
	if err != nil {
		return nil, err
	}
	return product, nil
}

func DeleteProduct(ctx context.Context, db *gorm.DB, businessId string, id int) (*Product, error) {
	product, err := GetProduct(ctx, db, businessId, id)
	if err != nil {
		return nil, err
	}

	// Products referenced by past sales keep their item snapshots; refuse the
	// delete so historical sales stay joinable.
	var count int64
	if err := db.WithContext(ctx).Model(&SaleItem{}).Where("product_id = ?", id).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, utils.NewError(utils.ErrorKindValidation, "product %d is referenced by existing sales", id)
	}

	if err := db.WithContext(ctx).Delete(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

func GetProduct(ctx context.Context, db *gorm.DB, businessId string, id int) (*Product, error) {
	var product Product
	err := db.WithContext(ctx).Where("business_id = ?", businessId).First(&product, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.WrapError(utils.ErrorKindNotFound, nil, "product %d not found", id)
		}
		return nil, err
	}
	return &product, nil
}

func GetProducts(ctx context.Context, db *gorm.DB, businessId string, name *string) ([]*Product, error) {
	dbCtx := db.WithContext(ctx).Where("business_id = ?", businessId)
	if name != nil && len(*name) > 0 {
		dbCtx = dbCtx.Where("name LIKE ?", "%"+*name+"%")
	}

	var results []*Product
	if err := dbCtx.Order("name").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

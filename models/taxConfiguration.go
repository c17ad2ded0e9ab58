package models

import (
	"context"
	"time"

	"github.com/caribesoft/pos_backend/config"
	"github.com/caribesoft/pos_backend/utils"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TaxConfiguration holds one tax rate for a business. Document issuance
// requires exactly one active row per business; multiplicity is a
// configuration defect, not something to resolve by picking the first match.
type TaxConfiguration struct {
	ID         int             `gorm:"primary_key" json:"id"`
	BusinessId string          `gorm:"size:36;not null;index" json:"business_id"`
	TaxType    string          `gorm:"size:50;not null" json:"tax_type"`
	Rate       decimal.Decimal `gorm:"type:decimal(5,2);default:0" json:"rate"`
	IsActive   *bool           `gorm:"not null;default:false" json:"is_active"`
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewTaxConfiguration struct {
	TaxType  string          `json:"tax_type" binding:"required"`
	Rate     decimal.Decimal `json:"rate"`
	IsActive *bool           `json:"is_active"`
}

func (input *NewTaxConfiguration) validate() error {
	if input.Rate.IsNegative() {
		return utils.NewError(utils.ErrorKindValidation, "tax rate must not be negative")
	}
	if input.Rate.Exponent() < -2 {
		return utils.NewError(utils.ErrorKindValidation, "tax rate supports at most 2 decimal places")
	}
	return nil
}

func activeTaxCacheKey(businessId string) string {
	return "ActiveTaxConfig:" + businessId
}

func CreateTaxConfiguration(ctx context.Context, db *gorm.DB, rdb *redis.Client, businessId string, input *NewTaxConfiguration) (*TaxConfiguration, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	cfg := TaxConfiguration{
		BusinessId: businessId,
		TaxType:    input.TaxType,
		Rate:       input.Rate,
		IsActive:   input.IsActive,
	}
	if err := db.WithContext(ctx).Create(&cfg).Error; err != nil {
		return nil, err
	}
	_ = config.RemoveRedisKey(ctx, rdb, activeTaxCacheKey(businessId))
	return &cfg, nil
}

func UpdateTaxConfiguration(ctx context.Context, db *gorm.DB, rdb *redis.Client, businessId string, id int, input *NewTaxConfiguration) (*TaxConfiguration, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	cfg, err := GetTaxConfiguration(ctx, db, businessId, id)
	if err != nil {
		return nil, err
	}

	err = db.WithContext(ctx).Model(cfg).
		Updates(map[string]interface{}{
			"TaxType":  input.TaxType,
			"Rate":     input.Rate,
			"IsActive": input.IsActive,
		}).Error
	if err != nil {
		return nil, err
	}
	_ = config.RemoveRedisKey(ctx, rdb, activeTaxCacheKey(businessId))
	return cfg, nil
}

func DeleteTaxConfiguration(ctx context.Context, db *gorm.DB, rdb *redis.Client, businessId string, id int) (*TaxConfiguration, error) {
	cfg, err := GetTaxConfiguration(ctx, db, businessId, id)
	if err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Delete(cfg).Error; err != nil {
		return nil, err
	}
	_ = config.RemoveRedisKey(ctx, rdb, activeTaxCacheKey(businessId))
	return cfg, nil
}

func GetTaxConfiguration(ctx context.Context, db *gorm.DB, businessId string, id int) (*TaxConfiguration, error) {
	var cfg TaxConfiguration
	err := db.WithContext(ctx).Where("business_id = ?", businessId).First(&cfg, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.WrapError(utils.ErrorKindNotFound, nil, "tax configuration %d not found", id)
		}
		return nil, err
	}
	return &cfg, nil
}

func GetTaxConfigurations(ctx context.Context, db *gorm.DB, businessId string) ([]*TaxConfiguration, error) {
	var results []*TaxConfiguration
	err := db.WithContext(ctx).Where("business_id = ?", businessId).
		Order("created_at").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// GetActiveTaxConfiguration resolves the single active configuration of a
// business: zero rows is a provisioning gap, more than one is ambiguous and
// must be fixed by the caller rather than guessed at here.
//
// The redis cache is a read-side optimization only; it is invalidated by every
// mutation above and skipped entirely when rdb is nil.
func GetActiveTaxConfiguration(ctx context.Context, db *gorm.DB, rdb *redis.Client, businessId string) (*TaxConfiguration, error) {
	var cached TaxConfiguration
	if found, err := config.GetRedisObject(ctx, rdb, activeTaxCacheKey(businessId), &cached); err == nil && found {
		return &cached, nil
	}

	var active []TaxConfiguration
	err := db.WithContext(ctx).
		Where("business_id = ? AND is_active = ?", businessId, true).
		Find(&active).Error
	if err != nil {
		return nil, err
	}
	switch len(active) {
	case 0:
		return nil, utils.NewError(utils.ErrorKindNotFound, "no active tax configuration for business %s", businessId)
	case 1:
		_ = config.SetRedisObject(ctx, rdb, activeTaxCacheKey(businessId), &active[0], time.Hour)
		return &active[0], nil
	default:
		return nil, utils.NewError(utils.ErrorKindValidation,
			"business %s has %d active tax configurations; exactly one is required", businessId, len(active))
	}
}

package models

import (
	"context"
	"time"

	"github.com/caribesoft/pos_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// FiscalDocument is the tax-authority-facing record minted from a completed
// sale. Immutable after creation; at most one per (sale, document type),
// enforced by the unique index on top of the issuer's pre-check.
type FiscalDocument struct {
	ID             int             `gorm:"primary_key" json:"id"`
	BusinessId     string          `gorm:"size:36;not null;index" json:"business_id"`
	SaleId         int             `gorm:"not null;index:uniq_sale_document,unique" json:"sale_id"`
	Sale           Sale            `json:"sale"`
	DocumentNumber string          `gorm:"size:20;not null;index" json:"document_number"`
	DocumentType   DocumentType    `gorm:"size:20;not null;index:uniq_sale_document,unique" json:"document_type"`
	NetAmount      decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"net_amount"`
	TaxAmount      decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"tax_amount"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"total_amount"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func GetFiscalDocument(ctx context.Context, db *gorm.DB, businessId string, id int) (*FiscalDocument, error) {
	var doc FiscalDocument
	err := db.WithContext(ctx).Where("business_id = ?", businessId).
		Preload("Sale").Preload("Sale.Items").
		First(&doc, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.WrapError(utils.ErrorKindNotFound, nil, "fiscal document %d not found", id)
		}
		return nil, err
	}
	return &doc, nil
}

func GetFiscalDocuments(ctx context.Context, db *gorm.DB, businessId string) ([]*FiscalDocument, error) {
	var results []*FiscalDocument
	err := db.WithContext(ctx).Where("business_id = ?", businessId).
		Preload("Sale").
		Order("created_at DESC").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// FindFiscalDocumentBySale returns the existing document for (sale, type),
// or nil when none exists.
func FindFiscalDocumentBySale(ctx context.Context, db *gorm.DB, businessId string, saleId int, docType DocumentType) (*FiscalDocument, error) {
	var doc FiscalDocument
	err := db.WithContext(ctx).
		Where("business_id = ? AND sale_id = ? AND document_type = ?", businessId, saleId, docType).
		First(&doc).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &doc, nil
}

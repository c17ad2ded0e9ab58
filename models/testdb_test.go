package models_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/caribesoft/pos_backend/models"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory database per test. The pool is pinned
// to one connection so the shared-cache database survives for the whole test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := models.MigrateTables(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedBusiness(t *testing.T, db *gorm.DB) string {
	t.Helper()
	profile, err := models.CreateBusinessProfile(context.Background(), db, &models.NewBusinessProfile{
		Name: "Test Business",
	})
	if err != nil {
		t.Fatalf("CreateBusinessProfile: %v", err)
	}
	return profile.ID
}

func seedProduct(t *testing.T, db *gorm.DB, businessId string, sku string, price int64, stock int) *models.Product {
	t.Helper()
	product, err := models.CreateProduct(context.Background(), db, businessId, &models.NewProduct{
		Sku:           sku,
		Name:          "Product " + sku,
		UnitPrice:     decimal.NewFromInt(price),
		TaxRate:       decimal.NewFromInt(18),
		StockQuantity: stock,
	})
	if err != nil {
		t.Fatalf("CreateProduct(%s): %v", sku, err)
	}
	return product
}

func seedSequence(t *testing.T, db *gorm.DB, businessId string, prefix string, current int64, end int64, expiration time.Time) *models.FiscalSequence {
	t.Helper()
	active := true
	seq, err := models.CreateFiscalSequence(context.Background(), db, businessId, &models.NewFiscalSequence{
		SequenceType:   string(models.DocumentTypeFactura),
		Prefix:         prefix,
		CurrentNumber:  current,
		EndNumber:      end,
		IsActive:       &active,
		ExpirationDate: expiration,
	})
	if err != nil {
		t.Fatalf("CreateFiscalSequence: %v", err)
	}
	return seq
}

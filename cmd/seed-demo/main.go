// Command seed-demo provisions a demo business with products, an active
// ITBIS tax configuration and a FACTURA sequence, so a fresh database can
// serve sales immediately.
package main

import (
	"context"
	"log"
	"time"

	"github.com/caribesoft/pos_backend/config"
	"github.com/caribesoft/pos_backend/models"
	"github.com/shopspring/decimal"
)

func main() {
	db, err := config.ConnectDatabaseWithRetry()
	if err != nil {
		log.Fatal(err)
	}
	if err := models.MigrateTables(db); err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()

	profile, err := models.CreateBusinessProfile(ctx, db, &models.NewBusinessProfile{
		Name: "Colmado Demo",
		Rnc:  "131246789",
	})
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("business profile: %s", profile.ID)

	active := true
	if _, err := models.CreateTaxConfiguration(ctx, db, nil, profile.ID, &models.NewTaxConfiguration{
		TaxType:  "ITBIS",
		Rate:     decimal.NewFromInt(18),
		IsActive: &active,
	}); err != nil {
		log.Fatal(err)
	}

	if _, err := models.CreateFiscalSequence(ctx, db, profile.ID, &models.NewFiscalSequence{
		SequenceType:   string(models.DocumentTypeFactura),
		Prefix:         "B01",
		CurrentNumber:  0,
		EndNumber:      5000,
		IsActive:       &active,
		ExpirationDate: time.Now().AddDate(1, 0, 0),
	}); err != nil {
		log.Fatal(err)
	}

	seedProducts := []models.NewProduct{
		{Sku: "CAFE-250", Name: "Cafe Molido 250g", Category: "Abarrotes", UnitPrice: decimal.NewFromInt(185), TaxRate: decimal.NewFromInt(18), StockQuantity: 40},
		{Sku: "ARROZ-5LB", Name: "Arroz Selecto 5lb", Category: "Abarrotes", UnitPrice: decimal.NewFromInt(260), TaxRate: decimal.NewFromInt(18), StockQuantity: 25},
		{Sku: "AGUA-1G", Name: "Agua Purificada 1gal", Category: "Bebidas", UnitPrice: decimal.NewFromInt(55), TaxRate: decimal.NewFromInt(18), StockQuantity: 120},
	}
	for _, p := range seedProducts {
		if _, err := models.CreateProduct(ctx, db, profile.ID, &p); err != nil {
			log.Fatal(err)
		}
	}

	log.Printf("seeded %d products for business %s", len(seedProducts), profile.ID)
}

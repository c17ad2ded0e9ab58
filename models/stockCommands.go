package models

import (
	"context"

	"github.com/caribesoft/pos_backend/utils"
	"gorm.io/gorm"
)

// Inventory ledger commands. Stock lives on the product row; the decrement is
// a single conditional UPDATE so concurrent sales can never drive it negative.
// This is the explicit, command-style replacement for read-then-write stock
// mutation on the model.

// CheckAvailableStock reports whether the product holds at least qty units.
// It is a read-only pre-write check; the decrement re-verifies atomically.
func CheckAvailableStock(ctx context.Context, db *gorm.DB, businessId string, productId int, qty int) error {
	if qty < 1 {
		return utils.NewError(utils.ErrorKindValidation, "quantity must be at least 1")
	}
	product, err := GetProduct(ctx, db, businessId, productId)
	if err != nil {
		return err
	}
	if product.StockQuantity < qty {
		return utils.NewError(utils.ErrorKindExhaustion,
			"insufficient stock for product %d (%s): have %d, need %d",
			product.ID, product.Name, product.StockQuantity, qty)
	}
	return nil
}

// DecrementProductStock applies `stock = stock - qty` guarded by
// `stock >= qty`, so the decrement either lands whole or not at all.
// Zero rows affected means the guard lost: the row vanished or another caller
// consumed the stock first.
func DecrementProductStock(tx *gorm.DB, businessId string, productId int, qty int) error {
	if qty < 1 {
		return utils.NewError(utils.ErrorKindValidation, "quantity must be at least 1")
	}

	res := tx.Model(&Product{}).
		Where("business_id = ? AND id = ? AND stock_quantity >= ?", businessId, productId, qty).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		product, err := GetProduct(tx.Statement.Context, tx, businessId, productId)
		if err != nil {
			return err
		}
		return utils.NewError(utils.ErrorKindExhaustion,
			"insufficient stock for product %d (%s): have %d, need %d",
			product.ID, product.Name, product.StockQuantity, qty)
	}
	return nil
}

// IncrementProductStock restocks a product. Used by catalog restock and by
// manual reconciliation of partial sales.
func IncrementProductStock(tx *gorm.DB, businessId string, productId int, qty int) error {
	if qty < 1 {
		return utils.NewError(utils.ErrorKindValidation, "quantity must be at least 1")
	}

	res := tx.Model(&Product{}).
		Where("business_id = ? AND id = ?", businessId, productId).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity + ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.WrapError(utils.ErrorKindNotFound, nil, "product %d not found", productId)
	}
	return nil
}

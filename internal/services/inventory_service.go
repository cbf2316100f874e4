package services

import (
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/dikaproject/dk-mandiri-backend/internal/domain"
	"github.com/dikaproject/dk-mandiri-backend/internal/repos"
)

type InventoryService struct {
	Products *repos.ProductRepo
}

func NewInventoryService(products *repos.ProductRepo) *InventoryService {
	return &InventoryService{Products: products}
}

// CheckAvailability is the pre-commit validation pass. The authoritative
// non-negative guard still lives in the conditional decrement; this exists to
// fail fast with a precise reason before any write happens.
func (s *InventoryService) CheckAvailability(p domain.Product, weight decimal.Decimal) error {
	if !p.IsAvailable {
		return domain.Validationf("%s is not available for sale", p.Name)
	}
	if weight.LessThan(p.MinOrderWeight) {
		return domain.Validationf("minimum order for %s is %s grams", p.Name, p.MinOrderWeight)
	}
	if weight.GreaterThan(p.WeightInStock) {
		return domain.Conflictf("only %s grams of %s available", p.WeightInStock, p.Name)
	}
	return nil
}

// Decrement runs inside the order-creation commit; a conflict here aborts
// the whole unit of work.
func (s *InventoryService) Decrement(q sqlx.Ext, productID string, weight decimal.Decimal) error {
	return s.Products.DecrementStock(q, productID, weight)
}

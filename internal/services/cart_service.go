package services

import (
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/dikaproject/dk-mandiri-backend/internal/domain"
	"github.com/dikaproject/dk-mandiri-backend/internal/repos"
)

type CartService struct {
	Carts    *repos.CartRepo
	Products *repos.ProductRepo
	Inv      *InventoryService
}

func NewCartService(carts *repos.CartRepo, products *repos.ProductRepo, inv *InventoryService) *CartService {
	return &CartService{Carts: carts, Products: products, Inv: inv}
}

type CartViewItem struct {
	ID         string          `json:"id"`
	ProductID  string          `json:"productId"`
	Name       string          `json:"name"`
	PricePerKg decimal.Decimal `json:"pricePerKg"`
	Weight     decimal.Decimal `json:"weight"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

type CartView struct {
	Items      []CartViewItem  `json:"items"`
	TotalItems int             `json:"totalItems"`
	Subtotal   decimal.Decimal `json:"subtotal"`
}

func (s *CartService) View(userID string) (CartView, error) {
	lines, err := s.Carts.LinesByUser(userID)
	if err != nil {
		return CartView{}, err
	}

	view := CartView{Items: []CartViewItem{}, Subtotal: decimal.Zero}
	for _, l := range lines {
		total := LineTotal(l.Product.Price, l.Weight)
		view.Items = append(view.Items, CartViewItem{
			ID:         l.ID,
			ProductID:  l.ProductID,
			Name:       l.Product.Name,
			PricePerKg: l.Product.Price,
			Weight:     l.Weight,
			TotalPrice: total,
		})
		view.Subtotal = view.Subtotal.Add(total)
	}
	view.TotalItems = len(view.Items)
	return view, nil
}

func (s *CartService) Add(userID, productID string, weight decimal.Decimal) error {
	p, err := s.Products.Get(productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFound("product")
		}
		return err
	}
	if err := s.Inv.CheckAvailability(p, weight); err != nil {
		return err
	}
	return s.Carts.Upsert(userID, productID, weight)
}

func (s *CartService) UpdateWeight(userID, itemID string, weight decimal.Decimal) error {
	return s.Carts.UpdateWeight(userID, itemID, weight)
}

func (s *CartService) Remove(userID, itemID string) error {
	return s.Carts.Remove(userID, itemID)
}

package domain

import "github.com/shopspring/decimal"

type Category struct {
	ID        string `db:"id"`
	Name      string `db:"name"`
	CreatedAt string `db:"created_at"`
}

// Product prices are per kilogram; stock and minimum order are gram weights.
type Product struct {
	ID             string          `db:"id" json:"id"`
	CategoryID     string          `db:"category_id" json:"categoryId"`
	Name           string          `db:"name" json:"name"`
	Description    string          `db:"description" json:"description"`
	Price          decimal.Decimal `db:"price" json:"price"`
	CostPrice      decimal.Decimal `db:"cost_price" json:"-"`
	WeightInStock  decimal.Decimal `db:"weight_in_stock" json:"weightInStock"`
	MinOrderWeight decimal.Decimal `db:"min_order_weight" json:"minOrderWeight"`
	IsAvailable    bool            `db:"is_available" json:"isAvailable"`
	CreatedAt      string          `db:"created_at" json:"createdAt"`
}

// CartItem is transient: cleared in the same commit that creates the order.
type CartItem struct {
	ID        string          `db:"id"`
	UserID    string          `db:"user_id"`
	ProductID string          `db:"product_id"`
	Weight    decimal.Decimal `db:"weight"`
	CreatedAt string          `db:"created_at"`
}

// CartLine is a cart item joined with its live product, the shape the
// order builder consumes.
type CartLine struct {
	CartItem
	Product Product
}

type Address struct {
	ID            string `db:"id" json:"id"`
	UserID        string `db:"user_id" json:"-"`
	RecipientName string `db:"recipient_name" json:"recipientName"`
	Phone         string `db:"phone" json:"phone"`
	Province      string `db:"province" json:"province"`
	City          string `db:"city" json:"city"`
	District      string `db:"district" json:"district"`
	PostalCode    string `db:"postal_code" json:"postalCode"`
	FullAddress   string `db:"full_address" json:"fullAddress"`
	IsPrimary     bool   `db:"is_primary" json:"isPrimary"`
}

// Formatted renders the denormalized delivery address stored on the order.
func (a Address) Formatted() string {
	return a.FullAddress + ", " + a.District + ", " + a.City + ", " + a.Province + ", " + a.PostalCode
}

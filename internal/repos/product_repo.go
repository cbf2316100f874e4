package repos

import (
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/dikaproject/dk-mandiri-backend/internal/domain"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

const productCols = `
  p.id, p.category_id, p.name, p.description, p.price, p.cost_price,
  p.weight_in_stock, p.min_order_weight, p.is_available, p.created_at`

func (r *ProductRepo) Get(id string) (domain.Product, error) {
	var p domain.Product
	err := r.db.Get(&p, `SELECT `+productCols+` FROM products p WHERE p.id = ?`, id)
	return p, err
}

func (r *ProductRepo) ListAvailable() ([]domain.Product, error) {
	var out []domain.Product
	err := r.db.Select(&out, `
	  SELECT `+productCols+`
	  FROM products p
	  WHERE p.is_available = 1
	  ORDER BY p.name`)
	return out, err
}

// CategoryName returns the category label for history rows; missing rows
// fall back to "Uncategorized" like the rest of the sales records.
func (r *ProductRepo) CategoryName(productID string) string {
	var name string
	err := r.db.Get(&name, `
	  SELECT c.name FROM products p JOIN categories c ON c.id = p.category_id
	  WHERE p.id = ?`, productID)
	if err != nil || name == "" {
		return "Uncategorized"
	}
	return name
}

// DecrementStock subtracts a gram weight only if enough stock remains. The
// guard makes the check-then-decrement race safe: concurrent orders for the
// same product serialize on this row, and the loser gets zero rows affected.
func (r *ProductRepo) DecrementStock(q sqlx.Ext, productID string, weight decimal.Decimal) error {
	res, err := q.Exec(`
		UPDATE products
		SET weight_in_stock = weight_in_stock - ?
		WHERE id = ? AND weight_in_stock >= ?
	`, weight, productID, weight)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return domain.Conflictf("insufficient stock for %s", productID)
	}
	return nil
}

// SetStock is the admin stock correction; cancellations never restock
// automatically.
func (r *ProductRepo) SetStock(productID string, weight decimal.Decimal) error {
	_, err := r.db.Exec(`UPDATE products SET weight_in_stock = ? WHERE id = ?`, weight, productID)
	return err
}

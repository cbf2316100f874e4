package repos

import (
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/dikaproject/dk-mandiri-backend/internal/domain"
)

type CartRepo struct{ db *sqlx.DB }

func NewCartRepo(db *sqlx.DB) *CartRepo { return &CartRepo{db: db} }

type cartLineRow struct {
	ID             string          `db:"id"`
	UserID         string          `db:"user_id"`
	ProductID      string          `db:"product_id"`
	Weight         decimal.Decimal `db:"weight"`
	CreatedAt      string          `db:"created_at"`
	CategoryID     string          `db:"category_id"`
	Name           string          `db:"name"`
	Description    string          `db:"description"`
	Price          decimal.Decimal `db:"price"`
	CostPrice      decimal.Decimal `db:"cost_price"`
	WeightInStock  decimal.Decimal `db:"weight_in_stock"`
	MinOrderWeight decimal.Decimal `db:"min_order_weight"`
	IsAvailable    bool            `db:"is_available"`
}

// LinesByUser returns the user's cart items joined with their live products.
func (r *CartRepo) LinesByUser(userID string) ([]domain.CartLine, error) {
	var rows []cartLineRow
	err := r.db.Select(&rows, `
	  SELECT ci.id, ci.user_id, ci.product_id, ci.weight, ci.created_at,
	         p.category_id, p.name, p.description, p.price, p.cost_price,
	         p.weight_in_stock, p.min_order_weight, p.is_available
	  FROM cart_items ci JOIN products p ON p.id = ci.product_id
	  WHERE ci.user_id = ?
	  ORDER BY ci.created_at
	`, userID)
	if err != nil {
		return nil, err
	}

	lines := make([]domain.CartLine, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, domain.CartLine{
			CartItem: domain.CartItem{
				ID:        row.ID,
				UserID:    row.UserID,
				ProductID: row.ProductID,
				Weight:    row.Weight,
				CreatedAt: row.CreatedAt,
			},
			Product: domain.Product{
				ID:             row.ProductID,
				CategoryID:     row.CategoryID,
				Name:           row.Name,
				Description:    row.Description,
				Price:          row.Price,
				CostPrice:      row.CostPrice,
				WeightInStock:  row.WeightInStock,
				MinOrderWeight: row.MinOrderWeight,
				IsAvailable:    row.IsAvailable,
			},
		})
	}
	return lines, nil
}

// Upsert adds weight to an existing line for the product or creates one.
func (r *CartRepo) Upsert(userID, productID string, weight decimal.Decimal) error {
	_, err := r.db.Exec(`
		INSERT INTO cart_items(id, user_id, product_id, weight)
		VALUES(?, ?, ?, ?)
		ON CONFLICT(user_id, product_id) DO UPDATE
		SET weight = cart_items.weight + excluded.weight
	`, uuid.NewString(), userID, productID, weight)
	return err
}

func (r *CartRepo) UpdateWeight(userID, itemID string, weight decimal.Decimal) error {
	res, err := r.db.Exec(`UPDATE cart_items SET weight = ? WHERE id = ? AND user_id = ?`,
		weight, itemID, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFound("cart item")
	}
	return nil
}

func (r *CartRepo) Remove(userID, itemID string) error {
	res, err := r.db.Exec(`DELETE FROM cart_items WHERE id = ? AND user_id = ?`, itemID, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFound("cart item")
	}
	return nil
}

// ClearUser deletes all cart lines inside the order-creation commit.
func (r *CartRepo) ClearUser(q sqlx.Ext, userID string) error {
	_, err := q.Exec(`DELETE FROM cart_items WHERE user_id = ?`, userID)
	return err
}

package repos

import (
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/dikaproject/dk-mandiri-backend/internal/domain"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

const orderCols = `
  o.id, o.order_number, o.total_amount, o.shipping_cost, o.status, o.order_type,
  o.shipping_method, o.delivery_address, o.user_id, o.order_date`

// Create inserts the order header inside the checkout commit.
func (r *OrderRepo) Create(q sqlx.Ext, o *domain.Order) error {
	_, err := q.Exec(`
	  INSERT INTO orders
	    (id, order_number, total_amount, shipping_cost, status, order_type, shipping_method, delivery_address, user_id, order_date)
	  VALUES
	    (?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, o.ID, o.OrderNumber, o.TotalAmount, o.ShippingCost, o.Status, o.OrderType, o.ShippingMethod, o.DeliveryAddress, o.UserID)
	return err
}

func (r *OrderRepo) InsertItem(q sqlx.Ext, it *domain.OrderItem) error {
	_, err := q.Exec(`
	  INSERT INTO order_items(id, order_id, product_id, weight, price, cost_price, price_per_unit, cost_per_unit)
	  VALUES(?, ?, ?, ?, ?, ?, ?, ?)
	`, it.ID, it.OrderID, it.ProductID, it.Weight, it.Price, it.CostPrice, it.PricePerUnit, it.CostPerUnit)
	return err
}

func (r *OrderRepo) UpdateStatus(q sqlx.Ext, id string, status domain.OrderStatus) error {
	_, err := q.Exec(`UPDATE orders SET status = ? WHERE id = ?`, status, id)
	return err
}

func (r *OrderRepo) GetByID(id string) (domain.Order, error) {
	var o domain.Order
	err := r.db.Get(&o, `SELECT `+orderCols+` FROM orders o WHERE o.id = ?`, id)
	return o, err
}

func (r *OrderRepo) GetByNumber(number string) (domain.Order, error) {
	var o domain.Order
	err := r.db.Get(&o, `SELECT `+orderCols+` FROM orders o WHERE o.order_number = ?`, number)
	return o, err
}

type OrderSummary struct {
	ID          string          `db:"id" json:"id"`
	OrderNumber string          `db:"order_number" json:"orderNumber"`
	OrderDate   string          `db:"order_date" json:"orderDate"`
	TotalAmount decimal.Decimal `db:"total_amount" json:"totalAmount"`
	Status      string          `db:"status" json:"status"`
	TxStatus    string          `db:"tx_status" json:"paymentStatus"`
	TxMethod    string          `db:"tx_method" json:"paymentMethod"`
	ItemCount   int             `db:"item_count" json:"itemCount"`
}

// ListByUser returns the user's orders newest first, optionally filtered by
// order status.
func (r *OrderRepo) ListByUser(userID, status string) ([]OrderSummary, error) {
	query := `
	  SELECT o.id, o.order_number, o.order_date, o.total_amount, o.status,
	         COALESCE(t.status, 'PENDING') AS tx_status,
	         COALESCE(t.payment_method, '') AS tx_method,
	         (SELECT COUNT(*) FROM order_items oi WHERE oi.order_id = o.id) AS item_count
	  FROM orders o
	  LEFT JOIN transactions t ON t.order_id = o.id
	  WHERE o.user_id = ?`
	args := []any{userID}
	if status != "" {
		query += ` AND o.status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY datetime(o.order_date) DESC`

	var out []OrderSummary
	err := r.db.Select(&out, query, args...)
	return out, err
}

type OrderItemDetail struct {
	ID           string          `db:"id"`
	ProductID    string          `db:"product_id"`
	ProductName  string          `db:"product_name"`
	Weight       decimal.Decimal `db:"weight"`
	PricePerUnit decimal.Decimal `db:"price_per_unit"`
	Price        decimal.Decimal `db:"price"`
}

func (r *OrderRepo) ItemDetails(orderID string) ([]OrderItemDetail, error) {
	var out []OrderItemDetail
	err := r.db.Select(&out, `
	  SELECT oi.id, oi.product_id, p.name AS product_name, oi.weight, oi.price_per_unit, oi.price
	  FROM order_items oi JOIN products p ON p.id = oi.product_id
	  WHERE oi.order_id = ?
	  ORDER BY p.name`, orderID)
	return out, err
}

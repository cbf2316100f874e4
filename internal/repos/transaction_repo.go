package repos

import (
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/dikaproject/dk-mandiri-backend/internal/domain"
)

type TransactionRepo struct{ db *sqlx.DB }

func NewTransactionRepo(db *sqlx.DB) *TransactionRepo { return &TransactionRepo{db: db} }

const txCols = `
  t.id, t.order_id, t.amount, t.payment_method, t.status, t.service_fee,
  t.payment_proof, t.transaction_date, t.completion_details`

func (r *TransactionRepo) Create(q sqlx.Ext, t *domain.Transaction) error {
	_, err := q.Exec(`
	  INSERT INTO transactions(id, order_id, amount, payment_method, status, service_fee, payment_proof, transaction_date, completion_details)
	  VALUES(?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, ?)
	`, t.ID, t.OrderID, t.Amount, t.PaymentMethod, t.Status, t.ServiceFee, t.PaymentProof, t.CompletionDetails)
	return err
}

func (r *TransactionRepo) GetByID(id string) (domain.Transaction, error) {
	var t domain.Transaction
	err := r.db.Get(&t, `SELECT `+txCols+` FROM transactions t WHERE t.id = ?`, id)
	return t, err
}

func (r *TransactionRepo) GetByOrderID(orderID string) (domain.Transaction, error) {
	var t domain.Transaction
	err := r.db.Get(&t, `SELECT `+txCols+` FROM transactions t WHERE t.order_id = ?`, orderID)
	return t, err
}

func (r *TransactionRepo) UpdateStatus(q sqlx.Ext, id string, status domain.TransactionStatus) error {
	_, err := q.Exec(`UPDATE transactions SET status = ? WHERE id = ?`, status, id)
	return err
}

// UpdatePayment records the provider-reported method along with the status,
// as webhook notifications carry both.
func (r *TransactionRepo) UpdatePayment(q sqlx.Ext, id string, status domain.TransactionStatus, method string) error {
	_, err := q.Exec(`UPDATE transactions SET status = ?, payment_method = ? WHERE id = ?`, status, method, id)
	return err
}

func (r *TransactionRepo) SetCompletion(q sqlx.Ext, id string, d domain.CompletionDetails) error {
	_, err := q.Exec(`UPDATE transactions SET completion_details = ? WHERE id = ?`, d, id)
	return err
}

// SetProof attaches a payment-proof reference and resets the transaction to
// PENDING for admin verification.
func (r *TransactionRepo) SetProof(id, proof string) error {
	_, err := r.db.Exec(`UPDATE transactions SET payment_proof = ?, status = 'PENDING' WHERE id = ?`, proof, id)
	return err
}

func (r *TransactionRepo) InsertHistory(q sqlx.Ext, h *domain.TransactionHistory) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	_, err := q.Exec(`
	  INSERT INTO transaction_history(id, transaction_id, product_name, category_name, price, total_price, quantity)
	  VALUES(?, ?, ?, ?, ?, ?, ?)
	`, h.ID, h.TransactionID, h.ProductName, h.CategoryName, h.Price, h.TotalPrice, h.Quantity)
	return err
}

type TransactionSummary struct {
	ID            string                   `db:"id" json:"id"`
	Amount        decimal.Decimal          `db:"amount" json:"amount"`
	PaymentMethod string                   `db:"payment_method" json:"paymentMethod"`
	Status        string                   `db:"status" json:"status"`
	PaymentProof  string                   `db:"payment_proof" json:"paymentProof,omitempty"`
	Date          string                   `db:"transaction_date" json:"transactionDate"`
	OrderID       string                   `db:"order_id" json:"orderId"`
	OrderNumber   string                   `db:"order_number" json:"orderNumber"`
	OrderType     string                   `db:"order_type" json:"orderType"`
	CustomerName  string                   `db:"customer_name" json:"customerName"`
	CustomerPhone string                   `db:"customer_phone" json:"customerPhone"`
	Completion    domain.CompletionDetails `db:"completion_details" json:"completionDetails,omitempty"`
}

// ListAll is the admin transaction feed, newest first. For POS sales the
// walk-in customer recorded in the completion details overrides the account
// holder's name.
func (r *TransactionRepo) ListAll() ([]TransactionSummary, error) {
	var out []TransactionSummary
	err := r.db.Select(&out, `
	  SELECT t.id, t.amount, t.payment_method, t.status, t.payment_proof,
	         t.transaction_date, t.order_id, o.order_number, o.order_type,
	         u.username AS customer_name, u.phone AS customer_phone,
	         t.completion_details
	  FROM transactions t
	  JOIN orders o ON o.id = t.order_id
	  JOIN users u ON u.id = o.user_id
	  ORDER BY datetime(t.transaction_date) DESC`)
	if err != nil {
		return nil, err
	}
	for i := range out {
		if out[i].OrderType == string(domain.OrderOffline) && out[i].Completion.CustomerName != "" {
			out[i].CustomerName = out[i].Completion.CustomerName
		}
	}
	return out, nil
}

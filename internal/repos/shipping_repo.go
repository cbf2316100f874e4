package repos

import (
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dikaproject/dk-mandiri-backend/internal/domain"
)

type ShippingRepo struct{ db *sqlx.DB }

func NewShippingRepo(db *sqlx.DB) *ShippingRepo { return &ShippingRepo{db: db} }

func (r *ShippingRepo) GetByOrder(orderID string) (domain.Shipping, error) {
	var s domain.Shipping
	err := r.db.Get(&s, `
	  SELECT id, order_id, delivery_status, staff_name, notes, recipient_name,
	         COALESCE(delivery_date,'') AS delivery_date, COALESCE(updated_at,'') AS updated_at
	  FROM shippings WHERE order_id = ?`, orderID)
	return s, err
}

// Upsert creates the shipping record on first dispatch and updates it on
// every later transition; there is at most one per order.
func (r *ShippingRepo) Upsert(q sqlx.Ext, s *domain.Shipping) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	_, err := q.Exec(`
	  INSERT INTO shippings(id, order_id, delivery_status, staff_name, notes, recipient_name, delivery_date, updated_at)
	  VALUES(?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	  ON CONFLICT(order_id) DO UPDATE SET
	    delivery_status = excluded.delivery_status,
	    staff_name = CASE WHEN excluded.staff_name != '' THEN excluded.staff_name ELSE shippings.staff_name END,
	    notes = CASE WHEN excluded.notes != '' THEN excluded.notes ELSE shippings.notes END,
	    recipient_name = CASE WHEN excluded.recipient_name != '' THEN excluded.recipient_name ELSE shippings.recipient_name END,
	    updated_at = CURRENT_TIMESTAMP
	`, s.ID, s.OrderID, s.DeliveryStatus, s.StaffName, s.Notes, s.RecipientName)
	return err
}

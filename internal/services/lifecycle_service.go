package services

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/dikaproject/dk-mandiri-backend/internal/domain"
	applog "github.com/dikaproject/dk-mandiri-backend/internal/log"
	"github.com/dikaproject/dk-mandiri-backend/internal/repos"
)

// LifecycleService owns every post-creation status change: admin updates,
// payment-gateway webhooks, and manual verification. Each transition is one
// atomic commit; notifications always run after it and never unwind it.
type LifecycleService struct {
	DB       *sqlx.DB
	Orders   *repos.OrderRepo
	Txns     *repos.TransactionRepo
	Ship     *repos.ShippingRepo
	Users    *repos.UserRepo
	Notify   Notifier
	OpsPhone string
}

type StatusUpdateInput struct {
	Status        domain.OrderStatus
	StaffName     string
	Notes         string
	RecipientName string
}

// UpdateOrderStatus applies an admin transition. Moving to SHIPPED creates or
// updates the shipping record; moving to DELIVERED closes it out.
func (s *LifecycleService) UpdateOrderStatus(orderID string, in StatusUpdateInput) (domain.Order, error) {
	order, err := s.getOrder(orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if !domain.CanTransition(order.Status, in.Status) {
		return domain.Order{}, &domain.IllegalTransitionError{From: order.Status, To: in.Status}
	}

	txn, txnErr := s.Txns.GetByOrderID(order.ID)
	if txnErr != nil && !errors.Is(txnErr, sql.ErrNoRows) {
		return domain.Order{}, txnErr
	}

	var shipping domain.Shipping
	err = repos.RunAtomic(s.DB, func(tx *sqlx.Tx) error {
		if err := s.Orders.UpdateStatus(tx, order.ID, in.Status); err != nil {
			return err
		}
		// A still-pending payment follows the order: confirming the order
		// settles it, cancelling the order fails it.
		if txnErr == nil && txn.Status == domain.TxPending {
			if ts, ok := domain.TxStatusFor(in.Status); ok {
				if err := s.Txns.UpdateStatus(tx, txn.ID, ts); err != nil {
					return err
				}
			}
		}
		switch in.Status {
		case domain.OrderShipped:
			shipping = domain.Shipping{
				OrderID:        order.ID,
				DeliveryStatus: domain.DeliveryInTransit,
				StaffName:      in.StaffName,
				Notes:          in.Notes,
			}
			return s.Ship.Upsert(tx, &shipping)
		case domain.OrderDelivered:
			shipping = domain.Shipping{
				OrderID:        order.ID,
				DeliveryStatus: domain.DeliveryDelivered,
				RecipientName:  in.RecipientName,
			}
			return s.Ship.Upsert(tx, &shipping)
		}
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}
	order.Status = in.Status

	if in.Status == domain.OrderShipped {
		s.notifyShipping(order, shipping)
	}
	return order, nil
}

// MidtransStatus is the fixed provider-status mapping table.
func MidtransStatus(transactionStatus, fraudStatus string) (domain.TransactionStatus, bool) {
	switch transactionStatus {
	case "capture":
		switch fraudStatus {
		case "challenge":
			return domain.TxPending, true
		case "accept":
			return domain.TxSuccess, true
		}
		return "", false
	case "settlement":
		return domain.TxSuccess, true
	case "cancel", "deny", "expire":
		return domain.TxFailed, true
	case "pending":
		return domain.TxPending, true
	}
	return "", false
}

type PaymentNotification struct {
	OrderNumber       string `json:"order_id"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status"`
	PaymentType       string `json:"payment_type"`
}

// HandlePaymentNotification applies a webhook from the payment provider.
// Replays are tolerated: the PENDING→PROCESSING transition and its
// confirmation message fire only when the order is still PENDING.
func (s *LifecycleService) HandlePaymentNotification(n PaymentNotification) error {
	status, ok := MidtransStatus(n.TransactionStatus, n.FraudStatus)
	if !ok {
		return domain.Validationf("unknown transaction status %q", n.TransactionStatus)
	}

	order, err := s.Orders.GetByNumber(n.OrderNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFound("order")
		}
		return err
	}
	txn, err := s.Txns.GetByOrderID(order.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFound("transaction")
		}
		return err
	}

	promote := status == domain.TxSuccess && order.Status == domain.OrderPending
	err = repos.RunAtomic(s.DB, func(tx *sqlx.Tx) error {
		if err := s.Txns.UpdatePayment(tx, txn.ID, status, n.PaymentType); err != nil {
			return err
		}
		if promote {
			return s.Orders.UpdateStatus(tx, order.ID, domain.OrderProcessing)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if promote {
		s.notifyPayment(order, n.PaymentType)
	}
	return nil
}

// VerifyPayment is the manual path: an admin approves or rejects an uploaded
// payment proof. SUCCESS promotes the order to PROCESSING; FAILED cancels it.
// Both require the order to still be in a state that admits the transition,
// so a second verification after cancellation fails as illegal.
func (s *LifecycleService) VerifyPayment(transactionID string, status domain.TransactionStatus) (domain.Transaction, error) {
	if status != domain.TxSuccess && status != domain.TxFailed {
		return domain.Transaction{}, domain.Validationf("invalid verification status %q", status)
	}

	txn, err := s.getTransaction(transactionID)
	if err != nil {
		return domain.Transaction{}, err
	}
	order, err := s.getOrder(txn.OrderID)
	if err != nil {
		return domain.Transaction{}, err
	}

	target := domain.OrderProcessing
	if status == domain.TxFailed {
		target = domain.OrderCancelled
	}
	if !domain.CanTransition(order.Status, target) {
		return domain.Transaction{}, &domain.IllegalTransitionError{From: order.Status, To: target}
	}

	err = repos.RunAtomic(s.DB, func(tx *sqlx.Tx) error {
		if err := s.Txns.UpdateStatus(tx, txn.ID, status); err != nil {
			return err
		}
		return s.Orders.UpdateStatus(tx, order.ID, target)
	})
	if err != nil {
		return domain.Transaction{}, err
	}
	txn.Status = status

	if status == domain.TxSuccess {
		method := txn.PaymentMethod
		if method == "" {
			method = "Manual Transfer"
		}
		s.notifyPayment(order, method)
	}
	return txn, nil
}

type ShippingUpdateInput struct {
	DeliveryStatus domain.DeliveryStatus
	StaffName      string
	Notes          string
	RecipientName  string
}

// UpdateShipping edits the shipping record directly. Creating one for an
// order that has none also moves the order to SHIPPED, which must be a legal
// transition.
func (s *LifecycleService) UpdateShipping(orderID string, in ShippingUpdateInput) (domain.Shipping, error) {
	order, err := s.getOrder(orderID)
	if err != nil {
		return domain.Shipping{}, err
	}

	_, getErr := s.Ship.GetByOrder(orderID)
	creating := errors.Is(getErr, sql.ErrNoRows)
	if getErr != nil && !creating {
		return domain.Shipping{}, getErr
	}
	if creating && !domain.CanTransition(order.Status, domain.OrderShipped) {
		return domain.Shipping{}, &domain.IllegalTransitionError{From: order.Status, To: domain.OrderShipped}
	}

	status := in.DeliveryStatus
	if status == "" {
		status = domain.DeliveryPending
	}
	shipping := domain.Shipping{
		OrderID:        orderID,
		DeliveryStatus: status,
		StaffName:      in.StaffName,
		Notes:          in.Notes,
		RecipientName:  in.RecipientName,
	}

	err = repos.RunAtomic(s.DB, func(tx *sqlx.Tx) error {
		if err := s.Ship.Upsert(tx, &shipping); err != nil {
			return err
		}
		if creating {
			return s.Orders.UpdateStatus(tx, order.ID, domain.OrderShipped)
		}
		return nil
	})
	if err != nil {
		return domain.Shipping{}, err
	}

	if status == domain.DeliveryInTransit || creating {
		s.notifyShipping(order, shipping)
	}
	return shipping, nil
}

// AttachProof stores a payment-proof reference on the transaction. Only the
// order's owner (or an admin) may attach one; anyone else sees not-found.
func (s *LifecycleService) AttachProof(transactionID, userID string, isAdmin bool, proof string) error {
	txn, err := s.getTransaction(transactionID)
	if err != nil {
		return err
	}
	order, err := s.getOrder(txn.OrderID)
	if err != nil {
		return err
	}
	if order.UserID != userID && !isAdmin {
		return domain.NotFound("transaction")
	}
	return s.Txns.SetProof(txn.ID, proof)
}

// notifyShipping is best-effort; when the customer message fails, a fallback
// note goes to the ops contact, also best-effort.
func (s *LifecycleService) notifyShipping(order domain.Order, shipping domain.Shipping) {
	user, err := s.Users.ByID(order.UserID)
	if err != nil || user.Phone == "" {
		return
	}
	err = s.Notify.SendShippingNotification(user.Phone, ShippingNotification{
		CustomerName:   user.Username,
		OrderNumber:    order.OrderNumber,
		DeliveryStatus: string(shipping.DeliveryStatus),
		StaffName:      shipping.StaffName,
		Notes:          shipping.Notes,
	})
	if err != nil {
		applog.Sideline("shipping.notify.fail", err, map[string]any{"order_number": order.OrderNumber})
		if opsErr := s.Notify.SendMessage(s.OpsPhone,
			"Failed to send shipping notification to customer for order "+order.OrderNumber); opsErr != nil {
			applog.Sideline("shipping.notify.ops_fail", opsErr, map[string]any{"order_number": order.OrderNumber})
		}
	}
}

func (s *LifecycleService) notifyPayment(order domain.Order, method string) {
	user, err := s.Users.ByID(order.UserID)
	if err != nil || user.Phone == "" {
		return
	}
	if err := s.Notify.SendPaymentConfirmation(user.Phone, PaymentConfirmation{
		CustomerName:  user.Username,
		OrderNumber:   order.OrderNumber,
		Amount:        order.TotalAmount,
		PaymentMethod: method,
	}); err != nil {
		applog.Sideline("payment.notify.fail", err, map[string]any{"order_number": order.OrderNumber})
	}
}

func (s *LifecycleService) getOrder(id string) (domain.Order, error) {
	order, err := s.Orders.GetByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, domain.NotFound("order")
		}
		return domain.Order{}, err
	}
	return order, nil
}

func (s *LifecycleService) getTransaction(id string) (domain.Transaction, error) {
	txn, err := s.Txns.GetByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Transaction{}, domain.NotFound("transaction")
		}
		return domain.Transaction{}, err
	}
	return txn, nil
}

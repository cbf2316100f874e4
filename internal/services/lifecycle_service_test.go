package services_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dikaproject/dk-mandiri-backend/internal/domain"
	"github.com/dikaproject/dk-mandiri-backend/internal/services"
)

func TestMidtransStatusMapping(t *testing.T) {
	cases := []struct {
		txStatus, fraud string
		want            domain.TransactionStatus
		ok              bool
	}{
		{"capture", "challenge", domain.TxPending, true},
		{"capture", "accept", domain.TxSuccess, true},
		{"capture", "reject", "", false},
		{"settlement", "", domain.TxSuccess, true},
		{"cancel", "", domain.TxFailed, true},
		{"deny", "", domain.TxFailed, true},
		{"expire", "", domain.TxFailed, true},
		{"pending", "", domain.TxPending, true},
		{"refund", "", "", false},
	}
	for _, tc := range cases {
		got, ok := services.MidtransStatus(tc.txStatus, tc.fraud)
		require.Equal(t, tc.ok, ok, "%s/%s", tc.txStatus, tc.fraud)
		require.Equal(t, tc.want, got, "%s/%s", tc.txStatus, tc.fraud)
	}
}

func placeTestOrder(t *testing.T, e *env, payment string) services.PlacedOrder {
	t.Helper()
	require.NoError(t, e.carts.Upsert("u-buyer", "ikan-tenggiri", d("2000")))
	placed, err := e.orderSvc.Place(services.PlaceOrderInput{
		UserID:         "u-buyer",
		ShippingMethod: domain.ShippingPickup,
		PaymentMethod:  payment,
	})
	require.NoError(t, err)
	return placed
}

func TestPaymentNotification_PromotesOnce(t *testing.T) {
	e := newEnv(t)
	placed := placeTestOrder(t, e, domain.PaymentMidtrans)

	n := services.PaymentNotification{
		OrderNumber:       placed.OrderNumber,
		TransactionStatus: "settlement",
		PaymentType:       "qris",
	}
	require.NoError(t, e.lifecycle.HandlePaymentNotification(n))

	order, err := e.orders.GetByID(placed.OrderID)
	require.NoError(t, err)
	require.Equal(t, domain.OrderProcessing, order.Status)

	txn, err := e.txns.GetByOrderID(placed.OrderID)
	require.NoError(t, err)
	require.Equal(t, domain.TxSuccess, txn.Status)
	require.Equal(t, "qris", txn.PaymentMethod)
	require.Equal(t, 1, e.notify.count("payment_confirmation"))

	// A replayed webhook updates nothing and notifies no one again
	require.NoError(t, e.lifecycle.HandlePaymentNotification(n))
	order, err = e.orders.GetByID(placed.OrderID)
	require.NoError(t, err)
	require.Equal(t, domain.OrderProcessing, order.Status)
	require.Equal(t, 1, e.notify.count("payment_confirmation"))
}

func TestPaymentNotification_UnknownStatus(t *testing.T) {
	e := newEnv(t)
	placed := placeTestOrder(t, e, domain.PaymentMidtrans)

	err := e.lifecycle.HandlePaymentNotification(services.PaymentNotification{
		OrderNumber:       placed.OrderNumber,
		TransactionStatus: "refund",
	})
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve), "got %v", err)
}

func TestVerifyPayment_FailureIsTerminal(t *testing.T) {
	e := newEnv(t)
	placed := placeTestOrder(t, e, domain.PaymentTransfer)
	txn, err := e.txns.GetByOrderID(placed.OrderID)
	require.NoError(t, err)

	_, err = e.lifecycle.VerifyPayment(txn.ID, domain.TxFailed)
	require.NoError(t, err)

	order, err := e.orders.GetByID(placed.OrderID)
	require.NoError(t, err)
	require.Equal(t, domain.OrderCancelled, order.Status)

	// Cancellation does not restock; the weighed-out fish is already spoken for
	require.Equal(t, "8000", e.stock(t, "ikan-tenggiri"))

	// A later approval of the same transaction is an illegal transition
	_, err = e.lifecycle.VerifyPayment(txn.ID, domain.TxSuccess)
	var it *domain.IllegalTransitionError
	require.True(t, errors.As(err, &it), "got %v", err)
}

func TestUpdateOrderStatus_IllegalJump(t *testing.T) {
	e := newEnv(t)
	placed := placeTestOrder(t, e, domain.PaymentCash)

	_, err := e.lifecycle.UpdateOrderStatus(placed.OrderID, services.StatusUpdateInput{
		Status: domain.OrderDelivered,
	})
	var it *domain.IllegalTransitionError
	require.True(t, errors.As(err, &it), "got %v", err)
}

func TestUpdateOrderStatus_ShippedSurvivesNotifierOutage(t *testing.T) {
	e := newEnv(t)
	placed := placeTestOrder(t, e, domain.PaymentCash)

	_, err := e.lifecycle.UpdateOrderStatus(placed.OrderID, services.StatusUpdateInput{
		Status: domain.OrderProcessing,
	})
	require.NoError(t, err)

	e.notify.err = errors.New("fonnte: status 503")
	order, err := e.lifecycle.UpdateOrderStatus(placed.OrderID, services.StatusUpdateInput{
		Status:    domain.OrderShipped,
		StaffName: "Kurir Budi",
		Notes:     "berangkat pagi",
	})
	require.NoError(t, err, "message failure must not unwind the transition")
	require.Equal(t, domain.OrderShipped, order.Status)

	stored, err := e.orders.GetByID(placed.OrderID)
	require.NoError(t, err)
	require.Equal(t, domain.OrderShipped, stored.Status)

	ship, err := e.ship.GetByOrder(placed.OrderID)
	require.NoError(t, err)
	require.Equal(t, domain.DeliveryInTransit, ship.DeliveryStatus)
	require.Equal(t, "Kurir Budi", ship.StaffName)

	// Customer send failed, so the fallback note went to the ops contact
	require.Equal(t, 1, e.notify.count("shipping_notification"))
	require.Equal(t, 1, e.notify.count("message"))
}

func TestUpdateShipping_CreateRequiresLegalTransition(t *testing.T) {
	e := newEnv(t)
	placed := placeTestOrder(t, e, domain.PaymentCash)

	// PENDING cannot jump straight to SHIPPED
	_, err := e.lifecycle.UpdateShipping(placed.OrderID, services.ShippingUpdateInput{
		DeliveryStatus: domain.DeliveryInTransit,
		StaffName:      "Kurir Budi",
	})
	var it *domain.IllegalTransitionError
	require.True(t, errors.As(err, &it), "got %v", err)

	_, err = e.lifecycle.UpdateOrderStatus(placed.OrderID, services.StatusUpdateInput{Status: domain.OrderProcessing})
	require.NoError(t, err)

	ship, err := e.lifecycle.UpdateShipping(placed.OrderID, services.ShippingUpdateInput{
		DeliveryStatus: domain.DeliveryInTransit,
		StaffName:      "Kurir Budi",
	})
	require.NoError(t, err)
	require.Equal(t, domain.DeliveryInTransit, ship.DeliveryStatus)

	order, err := e.orders.GetByID(placed.OrderID)
	require.NoError(t, err)
	require.Equal(t, domain.OrderShipped, order.Status)
}

func TestAttachProof_OwnerOnly(t *testing.T) {
	e := newEnv(t)
	placed := placeTestOrder(t, e, domain.PaymentTransfer)
	txn, err := e.txns.GetByOrderID(placed.OrderID)
	require.NoError(t, err)

	err = e.lifecycle.AttachProof(txn.ID, "u-other", false, "uploads/proof.jpg")
	var nf *domain.NotFoundError
	require.True(t, errors.As(err, &nf), "foreign transaction must read as missing, got %v", err)

	require.NoError(t, e.lifecycle.AttachProof(txn.ID, "u-buyer", false, "uploads/proof.jpg"))
	stored, err := e.txns.GetByID(txn.ID)
	require.NoError(t, err)
	require.Equal(t, "uploads/proof.jpg", stored.PaymentProof)
	require.Equal(t, domain.TxPending, stored.Status, "proof upload resets to pending verification")
}

package services_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dikaproject/dk-mandiri-backend/internal/domain"
	"github.com/dikaproject/dk-mandiri-backend/internal/services"
)

func TestPOSCreate(t *testing.T) {
	e := newEnv(t)

	res, err := e.pos.Create(services.POSInput{
		CustomerName:  "Bu Sari",
		CustomerPhone: "6285112223334",
		PaymentMethod: domain.PaymentCash,
		StaffName:     "Admin DK",
		StaffUserID:   "u-staff",
		Items: []services.POSItemInput{
			{ProductID: "ikan-tenggiri", Weight: d("1500")},
		},
	})
	require.NoError(t, err)
	require.Equal(t, domain.TxSuccess, res.Status)
	require.True(t, res.Amount.Equal(d("127500")), "amount %s", res.Amount)
	require.NotEmpty(t, res.OrderNumber)

	order, err := e.orders.GetByID(res.OrderID)
	require.NoError(t, err)
	require.Equal(t, domain.OrderDelivered, order.Status, "a counter sale is born complete")
	require.Equal(t, domain.OrderOffline, order.OrderType)
	require.Equal(t, "u-staff", order.UserID, "unregistered phone falls back to the staff account")

	txn, err := e.txns.GetByID(res.TransactionID)
	require.NoError(t, err)
	require.Equal(t, "Admin DK", txn.CompletionDetails.CompletedBy)
	require.Equal(t, "Bu Sari", txn.CompletionDetails.CustomerName)
	require.Equal(t, "6285112223334", txn.CompletionDetails.CustomerPhone)
	require.False(t, txn.CompletionDetails.CompletedAt.IsZero())

	require.Equal(t, "8500", e.stock(t, "ikan-tenggiri"))

	var histories int
	require.NoError(t, e.db.Get(&histories, `SELECT COUNT(*) FROM transaction_history WHERE transaction_id = ?`, txn.ID))
	require.Equal(t, 1, histories)

	require.Equal(t, 1, e.notify.count("order_complete"))
}

func TestPOSCreate_RegisteredCustomerOwnsOrder(t *testing.T) {
	e := newEnv(t)

	res, err := e.pos.Create(services.POSInput{
		CustomerName:  "Dika",
		CustomerPhone: "6281234567890", // u-buyer's registered phone
		PaymentMethod: domain.PaymentCash,
		StaffName:     "Admin DK",
		StaffUserID:   "u-staff",
		Items: []services.POSItemInput{
			{ProductID: "udang-vaname", Weight: d("500")},
		},
	})
	require.NoError(t, err)

	order, err := e.orders.GetByID(res.OrderID)
	require.NoError(t, err)
	require.Equal(t, "u-buyer", order.UserID)
}

func TestPOSCreate_Validation(t *testing.T) {
	e := newEnv(t)
	var ve *domain.ValidationError

	_, err := e.pos.Create(services.POSInput{StaffUserID: "u-staff"})
	require.True(t, errors.As(err, &ve), "no items: %v", err)

	_, err = e.pos.Create(services.POSInput{
		Items: []services.POSItemInput{{ProductID: "ikan-tenggiri", Weight: d("1000")}},
	})
	require.True(t, errors.As(err, &ve), "no staff account: %v", err)

	// Below the product's minimum order weight
	_, err = e.pos.Create(services.POSInput{
		StaffUserID: "u-staff",
		Items:       []services.POSItemInput{{ProductID: "ikan-tenggiri", Weight: d("100")}},
	})
	require.True(t, errors.As(err, &ve), "below minimum: %v", err)
}

func TestSendReceipt(t *testing.T) {
	e := newEnv(t)

	res, err := e.pos.Create(services.POSInput{
		CustomerName:  "Bu Sari",
		CustomerPhone: "6285112223334",
		PaymentMethod: domain.PaymentCash,
		StaffName:     "Admin DK",
		StaffUserID:   "u-staff",
		Items:         []services.POSItemInput{{ProductID: "ikan-tenggiri", Weight: d("1500")}},
	})
	require.NoError(t, err)

	require.NoError(t, e.pos.SendReceipt(res.TransactionID))
	require.Equal(t, 1, e.notify.count("pos_receipt"))

	e.notify.err = errors.New("fonnte: status 503")
	err = e.pos.SendReceipt(res.TransactionID)
	var ee *domain.ExternalServiceError
	require.True(t, errors.As(err, &ee), "got %v", err)
}

func TestSendReceipt_NoPhoneRecorded(t *testing.T) {
	e := newEnv(t)

	res, err := e.pos.Create(services.POSInput{
		PaymentMethod: domain.PaymentCash,
		StaffName:     "Admin DK",
		StaffUserID:   "u-staff",
		Items:         []services.POSItemInput{{ProductID: "ikan-tenggiri", Weight: d("1500")}},
	})
	require.NoError(t, err)

	err = e.pos.SendReceipt(res.TransactionID)
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve), "got %v", err)
}

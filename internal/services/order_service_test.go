package services_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/dikaproject/dk-mandiri-backend/internal/domain"
	"github.com/dikaproject/dk-mandiri-backend/internal/services"
)

func TestPlaceOrder_TotalsAndStock(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.carts.Upsert("u-buyer", "ikan-tenggiri", d("2000")))

	placed, err := e.orderSvc.Place(services.PlaceOrderInput{
		UserID:         "u-buyer",
		ShippingMethod: domain.ShippingPickup,
		PaymentMethod:  domain.PaymentMidtrans,
		ShippingCost:   d("15000"),
	})
	require.NoError(t, err)

	// 170,000 subtotal + 5,950 fee + 15,000 shipping
	require.True(t, placed.TotalAmount.Equal(d("190950")), "total %s", placed.TotalAmount)
	require.Equal(t, domain.OrderPending, placed.Status)
	require.Equal(t, "snap-token", placed.SnapToken)
	require.Equal(t, int64(190950), e.gateway.lastGross)

	order, err := e.orders.GetByID(placed.OrderID)
	require.NoError(t, err)
	require.Equal(t, domain.OrderOffline, order.OrderType, "pickup orders are offline")

	txn, err := e.txns.GetByOrderID(placed.OrderID)
	require.NoError(t, err)
	require.Equal(t, domain.TxPending, txn.Status)
	require.True(t, txn.ServiceFee.Equal(d("5950")))

	require.Equal(t, "8000", e.stock(t, "ikan-tenggiri"))

	lines, err := e.carts.LinesByUser("u-buyer")
	require.NoError(t, err)
	require.Empty(t, lines, "cart is cleared by the same commit")

	require.Equal(t, 1, e.notify.count("order_confirmation"))
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	e := newEnv(t)
	_, err := e.orderSvc.Place(services.PlaceOrderInput{
		UserID:         "u-buyer",
		ShippingMethod: domain.ShippingPickup,
		PaymentMethod:  domain.PaymentCash,
	})
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve), "got %v", err)
}

func TestPlaceOrder_DeliveryAddress(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.carts.Upsert("u-buyer", "ikan-tenggiri", d("1000")))

	// No address given
	_, err := e.orderSvc.Place(services.PlaceOrderInput{
		UserID:         "u-buyer",
		ShippingMethod: domain.ShippingDelivery,
		PaymentMethod:  domain.PaymentTransfer,
	})
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve), "got %v", err)

	// Someone else's address reads as missing
	addr := domain.Address{
		UserID: "u-other", RecipientName: "Rara", Phone: "6289876543210",
		Province: "Jawa Tengah", City: "Semarang", District: "Tugu",
		PostalCode: "50151", FullAddress: "Jl. Pantai 1",
	}
	require.NoError(t, e.addresses.Create(&addr))
	_, err = e.orderSvc.Place(services.PlaceOrderInput{
		UserID:            "u-buyer",
		ShippingMethod:    domain.ShippingDelivery,
		PaymentMethod:     domain.PaymentTransfer,
		DeliveryAddressID: addr.ID,
	})
	var nf *domain.NotFoundError
	require.True(t, errors.As(err, &nf), "got %v", err)

	// Own address lands denormalized on the order
	own := domain.Address{
		UserID: "u-buyer", RecipientName: "Dika", Phone: "6281234567890",
		Province: "Jawa Tengah", City: "Semarang", District: "Tugu",
		PostalCode: "50151", FullAddress: "Jl. Laut 2",
	}
	require.NoError(t, e.addresses.Create(&own))
	placed, err := e.orderSvc.Place(services.PlaceOrderInput{
		UserID:            "u-buyer",
		ShippingMethod:    domain.ShippingDelivery,
		PaymentMethod:     domain.PaymentTransfer,
		DeliveryAddressID: own.ID,
		ShippingCost:      d("10000"),
	})
	require.NoError(t, err)

	order, err := e.orders.GetByID(placed.OrderID)
	require.NoError(t, err)
	require.Equal(t, domain.OrderOnline, order.OrderType)
	require.Contains(t, order.DeliveryAddress, "Jl. Laut 2")
	require.Contains(t, order.DeliveryAddress, "Semarang")
	// transfer carries no gateway fee
	require.True(t, placed.TotalAmount.Equal(d("95000")), "total %s", placed.TotalAmount)
	require.Empty(t, placed.SnapToken)
}

func TestPlaceOrder_GatewayDownOrderSurvives(t *testing.T) {
	e := newEnv(t)
	e.gateway.err = errors.New("timeout awaiting response")
	require.NoError(t, e.carts.Upsert("u-buyer", "ikan-tenggiri", d("2000")))

	placed, err := e.orderSvc.Place(services.PlaceOrderInput{
		UserID:         "u-buyer",
		ShippingMethod: domain.ShippingPickup,
		PaymentMethod:  domain.PaymentMidtrans,
	})
	require.NoError(t, err, "token failure must not fail the order")
	require.Empty(t, placed.SnapToken)

	// The order is durable and stock is spent
	_, err = e.orders.GetByID(placed.OrderID)
	require.NoError(t, err)
	require.Equal(t, "8000", e.stock(t, "ikan-tenggiri"))
}

// Two buyers race for the same stock. The conditional decrement admits exactly
// one; the loser's commit rolls back wholesale, cart included.
func TestPlaceOrder_ConcurrentOversell(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.carts.Upsert("u-buyer", "ikan-tenggiri", d("6000")))
	require.NoError(t, e.carts.Upsert("u-other", "ikan-tenggiri", d("6000")))

	results := make([]error, 2)
	var g errgroup.Group
	for i, uid := range []string{"u-buyer", "u-other"} {
		i, uid := i, uid
		g.Go(func() error {
			_, err := e.orderSvc.Place(services.PlaceOrderInput{
				UserID:         uid,
				ShippingMethod: domain.ShippingPickup,
				PaymentMethod:  domain.PaymentCash,
			})
			results[i] = err
			return nil
		})
	}
	require.NoError(t, g.Wait())

	var oks, conflicts int
	for _, err := range results {
		if err == nil {
			oks++
			continue
		}
		var ce *domain.ConflictError
		require.True(t, errors.As(err, &ce), "unexpected error: %v", err)
		conflicts++
	}
	require.Equal(t, 1, oks)
	require.Equal(t, 1, conflicts)

	require.Equal(t, "4000", e.stock(t, "ikan-tenggiri"))

	var orders, txns int
	require.NoError(t, e.db.Get(&orders, `SELECT COUNT(*) FROM orders`))
	require.NoError(t, e.db.Get(&txns, `SELECT COUNT(*) FROM transactions`))
	require.Equal(t, 1, orders, "the losing commit leaves no order behind")
	require.Equal(t, 1, txns)

	// The loser keeps their cart
	var carts int
	require.NoError(t, e.db.Get(&carts, `SELECT COUNT(*) FROM cart_items`))
	require.Equal(t, 1, carts)
}

package services_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/dikaproject/dk-mandiri-backend/internal/domain"
	"github.com/dikaproject/dk-mandiri-backend/internal/services"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestLineTotal(t *testing.T) {
	// 2000 g at Rp 85,000/kg
	require.True(t, services.LineTotal(d("85000"), d("2000")).Equal(d("170000")))
	// fractional weights keep full precision
	require.True(t, services.LineTotal(d("85000"), d("750")).Equal(d("63750")))
	require.True(t, services.LineCost(d("70000"), d("2000")).Equal(d("140000")))
}

func TestServiceFee_OnlyOnGatewayPayments(t *testing.T) {
	sub := d("170000")
	require.True(t, services.ServiceFee(sub, domain.PaymentMidtrans).Equal(d("5950")))
	require.True(t, services.ServiceFee(sub, domain.PaymentCash).IsZero())
	require.True(t, services.ServiceFee(sub, domain.PaymentTransfer).IsZero())
}

func TestGrandTotal(t *testing.T) {
	total := services.GrandTotal(d("170000"), d("5950"), d("15000"))
	require.True(t, total.Equal(d("190950")))
}

func TestRoundRupiah(t *testing.T) {
	require.Equal(t, int64(190950), services.RoundRupiah(d("190950")))
	require.Equal(t, int64(5951), services.RoundRupiah(d("5950.5")))
	require.Equal(t, int64(5950), services.RoundRupiah(d("5950.4")))
}

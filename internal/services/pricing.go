package services

import (
	"github.com/shopspring/decimal"

	"github.com/dikaproject/dk-mandiri-backend/internal/domain"
)

// Pricing is pure arithmetic: prices are per kilogram, weights are grams,
// amounts are rupiah. Full precision is kept internally; rounding happens
// only at the gateway boundary (RoundRupiah).

var (
	gramsPerKg = decimal.NewFromInt(1000)
	// 3.5% surcharge, charged only on the online-gateway payment path.
	serviceFeeRate = decimal.RequireFromString("0.035")
)

func LineTotal(pricePerKg, weightGrams decimal.Decimal) decimal.Decimal {
	return pricePerKg.Mul(weightGrams).Div(gramsPerKg)
}

// LineCost is LineTotal over the cost price; kept separate so call sites
// read as what they compute.
func LineCost(costPerKg, weightGrams decimal.Decimal) decimal.Decimal {
	return costPerKg.Mul(weightGrams).Div(gramsPerKg)
}

func Subtotal(lines []domain.CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(LineTotal(l.Product.Price, l.Weight))
	}
	return total
}

func ServiceFee(subtotal decimal.Decimal, paymentMethod string) decimal.Decimal {
	if paymentMethod != domain.PaymentMidtrans {
		return decimal.Zero
	}
	return subtotal.Mul(serviceFeeRate)
}

func GrandTotal(subtotal, serviceFee, shippingCost decimal.Decimal) decimal.Decimal {
	return subtotal.Add(serviceFee).Add(shippingCost)
}

// RoundRupiah rounds half-up to a whole rupiah for the gateway and display
// layers, which reject fractional amounts.
func RoundRupiah(d decimal.Decimal) int64 {
	return d.Round(0).IntPart()
}

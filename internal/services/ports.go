package services

import "github.com/shopspring/decimal"

// PaymentGateway issues a hosted-checkout token for an already-committed
// order. Implementations must report failure without touching local state;
// callers treat any error as "no token", never as an order failure.
type PaymentGateway interface {
	CreateTransactionToken(orderNumber string, grossAmount int64, items []SnapItem, customer SnapCustomer) (string, error)
}

// SnapItem amounts are whole rupiah; quantity is always 1 because the price
// already reflects the weighed-out line total.
type SnapItem struct {
	ID       string `json:"id"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
	Name     string `json:"name"`
}

type SnapCustomer struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

// Notifier delivers WhatsApp messages. Every call is fire-and-forget from
// the caller's perspective: failures are logged, never propagated to the
// request once the local commit has succeeded.
type Notifier interface {
	SendOrderConfirmation(phone string, data OrderConfirmation) error
	SendPaymentConfirmation(phone string, data PaymentConfirmation) error
	SendShippingNotification(phone string, data ShippingNotification) error
	SendOrderComplete(phone string, data OrderCompletion) error
	SendPOSReceipt(phone string, data Receipt) error
	SendMessage(phone, message string) error
}

type OrderConfirmation struct {
	CustomerName string
	OrderNumber  string
	OrderDate    string
	TotalAmount  decimal.Decimal
	OrderType    string
}

type PaymentConfirmation struct {
	CustomerName  string
	OrderNumber   string
	Amount        decimal.Decimal
	PaymentMethod string
}

type ShippingNotification struct {
	CustomerName   string
	OrderNumber    string
	DeliveryStatus string
	StaffName      string
	Notes          string
}

type OrderCompletion struct {
	CustomerName string
	OrderNumber  string
	Amount       decimal.Decimal
	OrderType    string
	StaffName    string
	Notes        string
}

type ReceiptItem struct {
	Name     string
	WeightKg decimal.Decimal
	Price    decimal.Decimal
}

type Receipt struct {
	CustomerName  string
	OrderNumber   string
	Date          string
	Items         []ReceiptItem
	TotalAmount   decimal.Decimal
	PaymentMethod string
	StaffName     string
}

package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "PENDING"
	OrderProcessing OrderStatus = "PROCESSING"
	OrderShipped    OrderStatus = "SHIPPED"
	OrderDelivered  OrderStatus = "DELIVERED"
	OrderCancelled  OrderStatus = "CANCELLED"
)

type OrderType string

const (
	OrderOnline  OrderType = "ONLINE"
	OrderOffline OrderType = "OFFLINE"
)

type TransactionStatus string

const (
	TxPending TransactionStatus = "PENDING"
	TxSuccess TransactionStatus = "SUCCESS"
	TxFailed  TransactionStatus = "FAILED"
)

type DeliveryStatus string

const (
	DeliveryPending    DeliveryStatus = "PENDING"
	DeliveryInTransit  DeliveryStatus = "IN_DELIVERY"
	DeliveryDelivered  DeliveryStatus = "DELIVERED"
)

// Shipping/payment method sentinels used by the checkout flow.
const (
	ShippingPickup   = "pickup"
	ShippingDelivery = "delivery"

	PaymentMidtrans = "midtrans"
	PaymentTransfer = "transfer"
	PaymentCash     = "cash"
)

// orderTransitions is the only place a status change may be authorized.
// DELIVERED and CANCELLED are terminal.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:    {OrderProcessing, OrderCancelled},
	OrderProcessing: {OrderShipped, OrderCancelled},
	OrderShipped:    {OrderDelivered},
}

func CanTransition(from, to OrderStatus) bool {
	for _, s := range orderTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func ValidOrderStatus(s string) bool {
	switch OrderStatus(s) {
	case OrderPending, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// TxStatusFor maps an order status to the transaction status it implies when
// an admin moves an order through the lifecycle.
func TxStatusFor(s OrderStatus) (TransactionStatus, bool) {
	switch s {
	case OrderProcessing, OrderShipped, OrderDelivered:
		return TxSuccess, true
	case OrderCancelled:
		return TxFailed, true
	}
	return "", false
}

type Order struct {
	ID              string          `db:"id"`
	OrderNumber     string          `db:"order_number"`
	TotalAmount     decimal.Decimal `db:"total_amount"`
	ShippingCost    decimal.Decimal `db:"shipping_cost"`
	Status          OrderStatus     `db:"status"`
	OrderType       OrderType       `db:"order_type"`
	ShippingMethod  string          `db:"shipping_method"`
	DeliveryAddress string          `db:"delivery_address"`
	UserID          string          `db:"user_id"`
	OrderDate       string          `db:"order_date"`
}

type OrderItem struct {
	ID           string          `db:"id"`
	OrderID      string          `db:"order_id"`
	ProductID    string          `db:"product_id"`
	Weight       decimal.Decimal `db:"weight"`
	Price        decimal.Decimal `db:"price"`
	CostPrice    decimal.Decimal `db:"cost_price"`
	PricePerUnit decimal.Decimal `db:"price_per_unit"`
	CostPerUnit  decimal.Decimal `db:"cost_per_unit"`
}

type Transaction struct {
	ID                string            `db:"id"`
	OrderID           string            `db:"order_id"`
	Amount            decimal.Decimal   `db:"amount"`
	PaymentMethod     string            `db:"payment_method"`
	Status            TransactionStatus `db:"status"`
	ServiceFee        decimal.Decimal   `db:"service_fee"`
	PaymentProof      string            `db:"payment_proof"`
	TransactionDate   string            `db:"transaction_date"`
	CompletionDetails CompletionDetails `db:"completion_details"`
}

// CompletionDetails records who closed out a transaction and, for POS sales,
// the walk-in customer. Stored as a JSON column; the zero value maps to NULL.
type CompletionDetails struct {
	CompletedBy   string    `json:"completedBy,omitempty"`
	CompletedAt   time.Time `json:"completedAt,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	CustomerName  string    `json:"customerName,omitempty"`
	CustomerPhone string    `json:"customerPhone,omitempty"`
}

func (d CompletionDetails) IsZero() bool { return d == CompletionDetails{} }

func (d CompletionDetails) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	b, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (d *CompletionDetails) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = CompletionDetails{}
		return nil
	case string:
		if v == "" {
			*d = CompletionDetails{}
			return nil
		}
		return json.Unmarshal([]byte(v), d)
	case []byte:
		if len(v) == 0 {
			*d = CompletionDetails{}
			return nil
		}
		return json.Unmarshal(v, d)
	}
	return fmt.Errorf("completion details: cannot scan %T", src)
}

type Shipping struct {
	ID             string         `db:"id" json:"id"`
	OrderID        string         `db:"order_id" json:"orderId"`
	DeliveryStatus DeliveryStatus `db:"delivery_status" json:"deliveryStatus"`
	StaffName      string         `db:"staff_name" json:"staffName"`
	Notes          string         `db:"notes" json:"notes"`
	RecipientName  string         `db:"recipient_name" json:"recipientName"`
	DeliveryDate   string         `db:"delivery_date" json:"deliveryDate"`
	UpdatedAt      string         `db:"updated_at" json:"updatedAt"`
}

// TransactionHistory is the per-line sales record written alongside each
// transaction; quantity is in kilograms.
type TransactionHistory struct {
	ID            string          `db:"id"`
	TransactionID string          `db:"transaction_id"`
	ProductName   string          `db:"product_name"`
	CategoryName  string          `db:"category_name"`
	Price         decimal.Decimal `db:"price"`
	TotalPrice    decimal.Decimal `db:"total_price"`
	Quantity      decimal.Decimal `db:"quantity"`
}

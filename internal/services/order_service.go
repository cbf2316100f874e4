package services

import (
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/dikaproject/dk-mandiri-backend/internal/domain"
	applog "github.com/dikaproject/dk-mandiri-backend/internal/log"
	"github.com/dikaproject/dk-mandiri-backend/internal/repos"
)

// OrderService is the order builder: it turns a cart snapshot plus checkout
// choices into one atomically-committed order aggregate, then runs the
// best-effort side calls (gateway token, WhatsApp confirmation) strictly
// after the commit.
type OrderService struct {
	DB        *sqlx.DB
	Carts     *repos.CartRepo
	Products  *repos.ProductRepo
	Addresses *repos.AddressRepo
	Orders    *repos.OrderRepo
	Txns      *repos.TransactionRepo
	Users     *repos.UserRepo
	Inv       *InventoryService
	Gateway   PaymentGateway
	Notify    Notifier
}

type PlaceOrderInput struct {
	UserID            string
	ShippingMethod    string // pickup | delivery
	PaymentMethod     string // midtrans | transfer | cash
	DeliveryAddressID string
	ShippingCost      decimal.Decimal
}

type PlacedOrder struct {
	OrderID     string          `json:"id"`
	OrderNumber string          `json:"orderNumber"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Status      domain.OrderStatus `json:"status"`
	SnapToken   string          `json:"snapToken,omitempty"`
}

// NewOrderNumber builds the externally visible identifier, distinct from the
// internal order id.
func NewOrderNumber() string {
	return fmt.Sprintf("ORD-%d-%d", time.Now().UnixMilli(), rand.Intn(1000))
}

func (s *OrderService) Place(in PlaceOrderInput) (PlacedOrder, error) {
	lines, err := s.Carts.LinesByUser(in.UserID)
	if err != nil {
		return PlacedOrder{}, err
	}
	if len(lines) == 0 {
		return PlacedOrder{}, domain.Validationf("cart is empty")
	}

	user, err := s.Users.ByID(in.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return PlacedOrder{}, domain.NotFound("user")
		}
		return PlacedOrder{}, err
	}

	// Resolve the delivery address unless the order is picked up in store.
	// Ownership is enforced by the query itself.
	fullAddress := "Pickup at Store"
	recipientName := user.Username
	recipientPhone := user.Phone
	if in.ShippingMethod != domain.ShippingPickup {
		if in.DeliveryAddressID == "" {
			return PlacedOrder{}, domain.Validationf("delivery address is required")
		}
		addr, err := s.Addresses.GetOwned(in.DeliveryAddressID, in.UserID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return PlacedOrder{}, domain.NotFound("delivery address")
			}
			return PlacedOrder{}, err
		}
		fullAddress = addr.Formatted()
		if addr.RecipientName != "" {
			recipientName = addr.RecipientName
		}
		if addr.Phone != "" {
			recipientPhone = addr.Phone
		}
	}

	// Fail fast on the first violation; the decrement guard re-checks under
	// the commit anyway.
	for _, l := range lines {
		if err := s.Inv.CheckAvailability(l.Product, l.Weight); err != nil {
			return PlacedOrder{}, err
		}
	}

	subtotal := Subtotal(lines)
	serviceFee := ServiceFee(subtotal, in.PaymentMethod)
	grandTotal := GrandTotal(subtotal, serviceFee, in.ShippingCost)

	orderType := domain.OrderOnline
	if in.ShippingMethod == domain.ShippingPickup {
		orderType = domain.OrderOffline
	}

	order := domain.Order{
		ID:              uuid.NewString(),
		OrderNumber:     NewOrderNumber(),
		TotalAmount:     grandTotal,
		ShippingCost:    in.ShippingCost,
		Status:          domain.OrderPending,
		OrderType:       orderType,
		ShippingMethod:  in.ShippingMethod,
		DeliveryAddress: fullAddress,
		UserID:          in.UserID,
	}
	txn := domain.Transaction{
		ID:            uuid.NewString(),
		OrderID:       order.ID,
		Amount:        grandTotal,
		PaymentMethod: in.PaymentMethod,
		Status:        domain.TxPending,
		ServiceFee:    serviceFee,
	}

	// Category names for the history rows are read outside the commit; they
	// are labels, not part of the consistency boundary.
	categories := make(map[string]string, len(lines))
	for _, l := range lines {
		categories[l.ProductID] = s.Products.CategoryName(l.ProductID)
	}

	// All-or-nothing: order, items, transaction, history, stock decrements,
	// and the cart clear either all land or none do.
	err = repos.RunAtomic(s.DB, func(tx *sqlx.Tx) error {
		if err := s.Orders.Create(tx, &order); err != nil {
			return err
		}
		for _, l := range lines {
			item := domain.OrderItem{
				ID:           uuid.NewString(),
				OrderID:      order.ID,
				ProductID:    l.ProductID,
				Weight:       l.Weight,
				Price:        LineTotal(l.Product.Price, l.Weight),
				CostPrice:    LineCost(l.Product.CostPrice, l.Weight),
				PricePerUnit: l.Product.Price,
				CostPerUnit:  l.Product.CostPrice,
			}
			if err := s.Orders.InsertItem(tx, &item); err != nil {
				return err
			}
			if err := s.Inv.Decrement(tx, l.ProductID, l.Weight); err != nil {
				return err
			}
		}
		if err := s.Txns.Create(tx, &txn); err != nil {
			return err
		}
		for _, l := range lines {
			h := domain.TransactionHistory{
				TransactionID: txn.ID,
				ProductName:   l.Product.Name,
				CategoryName:  categories[l.ProductID],
				Price:         l.Product.Price,
				TotalPrice:    LineTotal(l.Product.Price, l.Weight),
				Quantity:      l.Weight.Div(gramsPerKg).Round(2),
			}
			if err := s.Txns.InsertHistory(tx, &h); err != nil {
				return err
			}
		}
		return s.Carts.ClearUser(tx, in.UserID)
	})
	if err != nil {
		return PlacedOrder{}, err
	}

	result := PlacedOrder{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		TotalAmount: order.TotalAmount,
		Status:      order.Status,
	}

	// Post-commit side effects. The order is durable at this point; a failed
	// token request just means the response carries no token and the order
	// stays payable by other means.
	if in.PaymentMethod == domain.PaymentMidtrans {
		token, err := s.requestSnapToken(order, lines, serviceFee, SnapCustomer{
			Name:    recipientName,
			Email:   user.Email,
			Phone:   recipientPhone,
			Address: fullAddress,
		})
		if err != nil {
			applog.Sideline("order.snap_token.fail", err, map[string]any{"order_number": order.OrderNumber})
		} else {
			result.SnapToken = token
		}
	}

	if user.Phone != "" {
		if err := s.Notify.SendOrderConfirmation(user.Phone, OrderConfirmation{
			CustomerName: user.Username,
			OrderNumber:  order.OrderNumber,
			OrderDate:    time.Now().Format("02 January 2006"),
			TotalAmount:  order.TotalAmount,
			OrderType:    string(order.OrderType),
		}); err != nil {
			applog.Sideline("order.notify.fail", err, map[string]any{"order_number": order.OrderNumber})
		}
	}

	return result, nil
}

// requestSnapToken rebuilds the line items as whole-rupiah amounts; the
// gateway's gross amount must equal the sum of its rounded items, not the
// unrounded order total.
func (s *OrderService) requestSnapToken(order domain.Order, lines []domain.CartLine, serviceFee decimal.Decimal, customer SnapCustomer) (string, error) {
	items := make([]SnapItem, 0, len(lines)+2)
	for _, l := range lines {
		items = append(items, SnapItem{
			ID:       l.ProductID,
			Price:    RoundRupiah(LineTotal(l.Product.Price, l.Weight)),
			Quantity: 1,
			Name:     truncate(fmt.Sprintf("%s (%sg)", l.Product.Name, l.Weight), 50),
		})
	}
	if serviceFee.IsPositive() {
		items = append(items, SnapItem{
			ID:       "service-fee",
			Price:    RoundRupiah(serviceFee),
			Quantity: 1,
			Name:     "Biaya Layanan (3.5%)",
		})
	}
	if order.ShippingCost.IsPositive() {
		items = append(items, SnapItem{
			ID:       "shipping",
			Price:    RoundRupiah(order.ShippingCost),
			Quantity: 1,
			Name:     "Ongkos Kirim",
		})
	}

	var gross int64
	for _, it := range items {
		gross += it.Price * int64(it.Quantity)
	}

	return s.Gateway.CreateTransactionToken(order.OrderNumber, gross, items, customer)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

package services

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/dikaproject/dk-mandiri-backend/internal/domain"
	applog "github.com/dikaproject/dk-mandiri-backend/internal/log"
	"github.com/dikaproject/dk-mandiri-backend/internal/repos"
)

// POSService is the in-person checkout: same aggregate as the online order
// builder, but the order is born DELIVERED with a SUCCESS transaction and
// the staff member on record. No gateway token is ever requested.
type POSService struct {
	DB       *sqlx.DB
	Products *repos.ProductRepo
	Orders   *repos.OrderRepo
	Txns     *repos.TransactionRepo
	Users    *repos.UserRepo
	Inv      *InventoryService
	Notify   Notifier
}

type POSItemInput struct {
	ProductID string
	Weight    decimal.Decimal // grams
}

type POSInput struct {
	OrderNumber     string // optional; generated when empty
	CustomerName    string
	CustomerPhone   string
	DeliveryAddress string
	PaymentMethod   string
	ShippingMethod  string
	StaffName       string
	StaffUserID     string // the operating admin account
	Items           []POSItemInput
}

type POSResult struct {
	TransactionID string             `json:"transactionId"`
	OrderID       string             `json:"orderId"`
	OrderNumber   string             `json:"orderNumber"`
	Amount        decimal.Decimal    `json:"amount"`
	PaymentMethod string             `json:"paymentMethod"`
	Status        domain.TransactionStatus `json:"status"`
}

func (s *POSService) Create(in POSInput) (POSResult, error) {
	if len(in.Items) == 0 {
		return POSResult{}, domain.Validationf("transaction has no items")
	}
	if in.StaffUserID == "" {
		return POSResult{}, domain.Validationf("operating staff account is required")
	}

	// A walk-in customer with a registered phone owns the order; otherwise
	// it falls back to the operating staff account.
	ownerID := in.StaffUserID
	if in.CustomerPhone != "" {
		if u, err := s.Users.ByPhone(in.CustomerPhone); err == nil {
			ownerID = u.ID
		} else if !errors.Is(err, sql.ErrNoRows) {
			return POSResult{}, err
		}
	}

	// Resolve products and price every line server-side; the request never
	// carries amounts.
	type posLine struct {
		product domain.Product
		weight  decimal.Decimal
	}
	lines := make([]posLine, 0, len(in.Items))
	total := decimal.Zero
	for _, it := range in.Items {
		p, err := s.Products.Get(it.ProductID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return POSResult{}, domain.NotFound("product")
			}
			return POSResult{}, err
		}
		if err := s.Inv.CheckAvailability(p, it.Weight); err != nil {
			return POSResult{}, err
		}
		lines = append(lines, posLine{product: p, weight: it.Weight})
		total = total.Add(LineTotal(p.Price, it.Weight))
	}

	orderNumber := in.OrderNumber
	if orderNumber == "" {
		orderNumber = NewOrderNumber()
	}
	deliveryAddress := in.DeliveryAddress
	if deliveryAddress == "" {
		deliveryAddress = "In-store purchase"
	}
	shippingMethod := in.ShippingMethod
	if shippingMethod == "" {
		shippingMethod = domain.ShippingPickup
	}
	customerName := in.CustomerName
	if customerName == "" {
		customerName = "Walk-in Customer"
	}

	order := domain.Order{
		ID:              uuid.NewString(),
		OrderNumber:     orderNumber,
		TotalAmount:     total,
		Status:          domain.OrderDelivered,
		OrderType:       domain.OrderOffline,
		ShippingMethod:  shippingMethod,
		DeliveryAddress: deliveryAddress,
		UserID:          ownerID,
	}
	txn := domain.Transaction{
		ID:            uuid.NewString(),
		OrderID:       order.ID,
		Amount:        total,
		PaymentMethod: in.PaymentMethod,
		Status:        domain.TxSuccess,
		CompletionDetails: domain.CompletionDetails{
			CompletedBy:   in.StaffName,
			CompletedAt:   time.Now(),
			Notes:         "POS Transaction",
			CustomerName:  customerName,
			CustomerPhone: in.CustomerPhone,
		},
	}

	err := repos.RunAtomic(s.DB, func(tx *sqlx.Tx) error {
		if err := s.Orders.Create(tx, &order); err != nil {
			return err
		}
		for _, l := range lines {
			item := domain.OrderItem{
				ID:           uuid.NewString(),
				OrderID:      order.ID,
				ProductID:    l.product.ID,
				Weight:       l.weight,
				Price:        LineTotal(l.product.Price, l.weight),
				CostPrice:    LineCost(l.product.CostPrice, l.weight),
				PricePerUnit: l.product.Price,
				CostPerUnit:  l.product.CostPrice,
			}
			if err := s.Orders.InsertItem(tx, &item); err != nil {
				return err
			}
			if err := s.Inv.Decrement(tx, l.product.ID, l.weight); err != nil {
				return err
			}
		}
		if err := s.Txns.Create(tx, &txn); err != nil {
			return err
		}
		for _, l := range lines {
			h := domain.TransactionHistory{
				TransactionID: txn.ID,
				ProductName:   l.product.Name,
				CategoryName:  s.Products.CategoryName(l.product.ID),
				Price:         l.product.Price,
				TotalPrice:    LineTotal(l.product.Price, l.weight),
				Quantity:      l.weight.Div(gramsPerKg).Round(2),
			}
			if err := s.Txns.InsertHistory(tx, &h); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return POSResult{}, err
	}

	if in.CustomerPhone != "" {
		if err := s.Notify.SendOrderComplete(in.CustomerPhone, OrderCompletion{
			CustomerName: customerName,
			OrderNumber:  order.OrderNumber,
			Amount:       total,
			OrderType:    string(domain.OrderOffline),
			StaffName:    in.StaffName,
			Notes:        "POS Transaction",
		}); err != nil {
			applog.Sideline("pos.notify.fail", err, map[string]any{"order_number": order.OrderNumber})
		}
	}

	return POSResult{
		TransactionID: txn.ID,
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		Amount:        total,
		PaymentMethod: in.PaymentMethod,
		Status:        txn.Status,
	}, nil
}

// SendReceipt resends the WhatsApp receipt for a POS sale; the customer
// phone comes from the completion details captured at the counter.
func (s *POSService) SendReceipt(transactionID string) error {
	txn, err := s.Txns.GetByID(transactionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFound("transaction")
		}
		return err
	}
	if txn.CompletionDetails.CustomerPhone == "" {
		return domain.Validationf("customer phone number not found")
	}

	order, err := s.Orders.GetByID(txn.OrderID)
	if err != nil {
		return err
	}
	details, err := s.Orders.ItemDetails(order.ID)
	if err != nil {
		return err
	}

	items := make([]ReceiptItem, 0, len(details))
	for _, d := range details {
		items = append(items, ReceiptItem{
			Name:     d.ProductName,
			WeightKg: d.Weight.Div(gramsPerKg),
			Price:    d.Price,
		})
	}
	customerName := txn.CompletionDetails.CustomerName
	if customerName == "" {
		customerName = "Valued Customer"
	}
	staffName := txn.CompletionDetails.CompletedBy
	if staffName == "" {
		staffName = "Staff"
	}

	err = s.Notify.SendPOSReceipt(txn.CompletionDetails.CustomerPhone, Receipt{
		CustomerName:  customerName,
		OrderNumber:   order.OrderNumber,
		Date:          txn.TransactionDate,
		Items:         items,
		TotalAmount:   txn.Amount,
		PaymentMethod: txn.PaymentMethod,
		StaffName:     staffName,
	})
	if err != nil {
		return domain.ExternalError("whatsapp", err)
	}
	return nil
}

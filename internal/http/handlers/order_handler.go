package handlers

import (
	"database/sql"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/dikaproject/dk-mandiri-backend/internal/domain"
	applog "github.com/dikaproject/dk-mandiri-backend/internal/log"
	"github.com/dikaproject/dk-mandiri-backend/internal/repos"
	"github.com/dikaproject/dk-mandiri-backend/internal/services"
	"github.com/dikaproject/dk-mandiri-backend/internal/validate"
)

type placeOrderRequest struct {
	ShippingMethod    string          `json:"shippingMethod"`
	PaymentMethod     string          `json:"paymentMethod"`
	DeliveryAddressID string          `json:"deliveryAddressId"`
	ShippingCost      decimal.Decimal `json:"shippingCost"`
}

func (d *Deps) PlaceOrder(c *fiber.Ctx) error {
	var req placeOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "body")
	}
	switch req.PaymentMethod {
	case domain.PaymentMidtrans, domain.PaymentTransfer, domain.PaymentCash:
	default:
		return badRequest(c, "paymentMethod")
	}
	if req.ShippingCost.IsNegative() {
		return badRequest(c, "shippingCost")
	}

	u := currentUser(c)
	placed, err := d.Orders.Place(services.PlaceOrderInput{
		UserID:            u.ID,
		ShippingMethod:    validate.ShippingMethod(req.ShippingMethod),
		PaymentMethod:     req.PaymentMethod,
		DeliveryAddressID: req.DeliveryAddressID,
		ShippingCost:      req.ShippingCost,
	})
	if err != nil {
		return respondError(c, err)
	}
	applog.Audit(c, "order.place", map[string]any{
		"user_id":      u.ID,
		"order_number": placed.OrderNumber,
		"total":        placed.TotalAmount.String(),
	})
	return c.Status(fiber.StatusCreated).JSON(placed)
}

func (d *Deps) ListOrders(c *fiber.Ctx) error {
	status := c.Query("status")
	if status != "" && !domain.ValidOrderStatus(status) {
		return badRequest(c, "status")
	}
	out, err := d.OrderRepo.ListByUser(currentUser(c).ID, status)
	if err != nil {
		return respondError(c, err)
	}
	if out == nil {
		out = []repos.OrderSummary{}
	}
	return c.JSON(out)
}

type orderItemResponse struct {
	ID         string          `json:"id"`
	ProductID  string          `json:"productId"`
	Name       string          `json:"name"`
	Weight     decimal.Decimal `json:"weight"`
	PricePerKg decimal.Decimal `json:"pricePerKg"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

type orderDetailResponse struct {
	ID              string              `json:"id"`
	OrderNumber     string              `json:"orderNumber"`
	OrderDate       string              `json:"orderDate"`
	Status          domain.OrderStatus  `json:"status"`
	OrderType       domain.OrderType    `json:"orderType"`
	ShippingMethod  string              `json:"shippingMethod"`
	DeliveryAddress string              `json:"deliveryAddress"`
	Items           []orderItemResponse `json:"items"`
	Subtotal        decimal.Decimal     `json:"subtotal"`
	ServiceFee      decimal.Decimal     `json:"serviceFee"`
	ShippingCost    decimal.Decimal     `json:"shippingCost"`
	TotalAmount     decimal.Decimal     `json:"totalAmount"`
	PaymentMethod   string              `json:"paymentMethod"`
	PaymentStatus   string              `json:"paymentStatus"`
	TransactionID   string              `json:"transactionId,omitempty"`
}

// GetOrder returns the full order aggregate. A foreign order reads the same
// as a missing one unless the caller is an admin.
func (d *Deps) GetOrder(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "id")
	}
	u := currentUser(c)

	order, err := d.OrderRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return respondError(c, domain.NotFound("order"))
		}
		return respondError(c, err)
	}
	if order.UserID != u.ID && u.Role != "ADMIN" {
		return respondError(c, domain.NotFound("order"))
	}

	details, err := d.OrderRepo.ItemDetails(order.ID)
	if err != nil {
		return respondError(c, err)
	}

	resp := orderDetailResponse{
		ID:              order.ID,
		OrderNumber:     order.OrderNumber,
		OrderDate:       order.OrderDate,
		Status:          order.Status,
		OrderType:       order.OrderType,
		ShippingMethod:  order.ShippingMethod,
		DeliveryAddress: order.DeliveryAddress,
		Items:           []orderItemResponse{},
		ShippingCost:    order.ShippingCost,
		TotalAmount:     order.TotalAmount,
	}
	subtotal := decimal.Zero
	for _, it := range details {
		resp.Items = append(resp.Items, orderItemResponse{
			ID:         it.ID,
			ProductID:  it.ProductID,
			Name:       it.ProductName,
			Weight:     it.Weight,
			PricePerKg: it.PricePerUnit,
			TotalPrice: it.Price,
		})
		subtotal = subtotal.Add(it.Price)
	}
	resp.Subtotal = subtotal

	txn, err := d.TxnRepo.GetByOrderID(order.ID)
	if err == nil {
		resp.ServiceFee = txn.ServiceFee
		resp.PaymentMethod = txn.PaymentMethod
		resp.PaymentStatus = string(txn.Status)
		resp.TransactionID = txn.ID
	} else if !errors.Is(err, sql.ErrNoRows) {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

type statusUpdateRequest struct {
	Status        string `json:"status"`
	StaffName     string `json:"staffName"`
	Notes         string `json:"notes"`
	RecipientName string `json:"recipientName"`
}

func (d *Deps) UpdateOrderStatus(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "id")
	}
	var req statusUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "body")
	}
	if !domain.ValidOrderStatus(req.Status) {
		return badRequest(c, "status")
	}
	status := domain.OrderStatus(req.Status)

	order, err := d.Lifecycle.UpdateOrderStatus(id, services.StatusUpdateInput{
		Status:        status,
		StaffName:     req.StaffName,
		Notes:         req.Notes,
		RecipientName: req.RecipientName,
	})
	if err != nil {
		return respondError(c, err)
	}
	applog.Audit(c, "order.status", map[string]any{
		"order_id": order.ID,
		"status":   string(order.Status),
		"admin_id": currentUser(c).ID,
	})
	return c.JSON(fiber.Map{
		"id":          order.ID,
		"orderNumber": order.OrderNumber,
		"status":      order.Status,
	})
}

func (d *Deps) GetShipping(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "id")
	}
	u := currentUser(c)

	order, err := d.OrderRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return respondError(c, domain.NotFound("order"))
		}
		return respondError(c, err)
	}
	if order.UserID != u.ID && u.Role != "ADMIN" {
		return respondError(c, domain.NotFound("order"))
	}

	ship, err := d.ShipRepo.GetByOrder(order.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return respondError(c, domain.NotFound("shipping record"))
		}
		return respondError(c, err)
	}
	return c.JSON(ship)
}

type shippingUpdateRequest struct {
	DeliveryStatus string `json:"deliveryStatus"`
	StaffName      string `json:"staffName"`
	Notes          string `json:"notes"`
	RecipientName  string `json:"recipientName"`
}

func (d *Deps) UpdateShipping(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "id")
	}
	var req shippingUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "body")
	}
	status := domain.DeliveryStatus(req.DeliveryStatus)
	switch status {
	case "", domain.DeliveryPending, domain.DeliveryInTransit, domain.DeliveryDelivered:
	default:
		return badRequest(c, "deliveryStatus")
	}

	ship, err := d.Lifecycle.UpdateShipping(id, services.ShippingUpdateInput{
		DeliveryStatus: status,
		StaffName:      req.StaffName,
		Notes:          req.Notes,
		RecipientName:  req.RecipientName,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(ship)
}

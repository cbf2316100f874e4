package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/dikaproject/dk-mandiri-backend/internal/domain"
	applog "github.com/dikaproject/dk-mandiri-backend/internal/log"
	"github.com/dikaproject/dk-mandiri-backend/internal/services"
	"github.com/dikaproject/dk-mandiri-backend/internal/validate"
)

type posItemRequest struct {
	ProductID string          `json:"productId"`
	Weight    decimal.Decimal `json:"weight"`
}

type posRequest struct {
	OrderNumber     string           `json:"orderNumber"`
	CustomerName    string           `json:"customerName"`
	CustomerPhone   string           `json:"customerPhone"`
	DeliveryAddress string           `json:"deliveryAddress"`
	PaymentMethod   string           `json:"paymentMethod"`
	ShippingMethod  string           `json:"shippingMethod"`
	StaffName       string           `json:"staffName"`
	Items           []posItemRequest `json:"items"`
}

func (d *Deps) CreatePOSTransaction(c *fiber.Ctx) error {
	var req posRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "body")
	}
	if req.PaymentMethod == "" {
		req.PaymentMethod = domain.PaymentCash
	}
	if req.CustomerPhone != "" {
		phone, ok := validate.Phone(req.CustomerPhone)
		if !ok {
			return badRequest(c, "customerPhone")
		}
		req.CustomerPhone = phone
	}

	items := make([]services.POSItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		productID, ok := validate.ID(it.ProductID)
		if !ok {
			return badRequest(c, "productId")
		}
		if !it.Weight.IsPositive() {
			return badRequest(c, "weight")
		}
		items = append(items, services.POSItemInput{ProductID: productID, Weight: it.Weight})
	}

	staff := currentUser(c)
	staffName := req.StaffName
	if staffName == "" {
		staffName = staff.Username
	}

	res, err := d.POS.Create(services.POSInput{
		OrderNumber:     req.OrderNumber,
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		DeliveryAddress: req.DeliveryAddress,
		PaymentMethod:   req.PaymentMethod,
		ShippingMethod:  req.ShippingMethod,
		StaffName:       staffName,
		StaffUserID:     staff.ID,
		Items:           items,
	})
	if err != nil {
		return respondError(c, err)
	}
	applog.Audit(c, "pos.create", map[string]any{
		"order_number": res.OrderNumber,
		"amount":       res.Amount.String(),
		"staff_id":     staff.ID,
	})
	return c.Status(fiber.StatusCreated).JSON(res)
}

func (d *Deps) SendPOSReceipt(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "id")
	}
	if err := d.POS.SendReceipt(id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "receipt sent"})
}

package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dikaproject/dk-mandiri-backend/internal/domain"
	applog "github.com/dikaproject/dk-mandiri-backend/internal/log"
	"github.com/dikaproject/dk-mandiri-backend/internal/validate"
)

func (d *Deps) ListAddresses(c *fiber.Ctx) error {
	out, err := d.Addresses.ListByUser(currentUser(c).ID)
	if err != nil {
		return respondError(c, err)
	}
	if out == nil {
		out = []domain.Address{}
	}
	return c.JSON(out)
}

type createAddressRequest struct {
	RecipientName string `json:"recipientName"`
	Phone         string `json:"phone"`
	Province      string `json:"province"`
	City          string `json:"city"`
	District      string `json:"district"`
	PostalCode    string `json:"postalCode"`
	FullAddress   string `json:"fullAddress"`
	IsPrimary     bool   `json:"isPrimary"`
}

func (d *Deps) CreateAddress(c *fiber.Ctx) error {
	var req createAddressRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "body")
	}
	name, ok := validate.Name(req.RecipientName)
	if !ok {
		return badRequest(c, "recipientName")
	}
	phone, ok := validate.Phone(req.Phone)
	if !ok {
		return badRequest(c, "phone")
	}
	if req.FullAddress == "" {
		return badRequest(c, "fullAddress")
	}

	u := currentUser(c)
	addr := domain.Address{
		UserID:        u.ID,
		RecipientName: name,
		Phone:         phone,
		Province:      req.Province,
		City:          req.City,
		District:      req.District,
		PostalCode:    req.PostalCode,
		FullAddress:   req.FullAddress,
		IsPrimary:     req.IsPrimary,
	}
	if err := d.Addresses.Create(&addr); err != nil {
		return respondError(c, err)
	}
	applog.Audit(c, "address.create", map[string]any{"user_id": u.ID, "address_id": addr.ID})
	return c.Status(fiber.StatusCreated).JSON(addr)
}

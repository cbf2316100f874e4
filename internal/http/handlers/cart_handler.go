package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	applog "github.com/dikaproject/dk-mandiri-backend/internal/log"
	"github.com/dikaproject/dk-mandiri-backend/internal/validate"
)

func (d *Deps) ViewCart(c *fiber.Ctx) error {
	view, err := d.Carts.View(currentUser(c).ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(view)
}

type addCartRequest struct {
	ProductID string          `json:"productId"`
	Weight    decimal.Decimal `json:"weight"`
}

func (d *Deps) AddToCart(c *fiber.Ctx) error {
	var req addCartRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "body")
	}
	productID, ok := validate.ID(req.ProductID)
	if !ok {
		return badRequest(c, "productId")
	}
	if !req.Weight.IsPositive() {
		return badRequest(c, "weight")
	}

	u := currentUser(c)
	if err := d.Carts.Add(u.ID, productID, req.Weight); err != nil {
		return respondError(c, err)
	}
	applog.Audit(c, "cart.add", map[string]any{"user_id": u.ID, "product_id": productID, "weight": req.Weight.String()})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "added to cart"})
}

type updateCartRequest struct {
	Weight decimal.Decimal `json:"weight"`
}

func (d *Deps) UpdateCartItem(c *fiber.Ctx) error {
	itemID, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "id")
	}
	var req updateCartRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "body")
	}
	if !req.Weight.IsPositive() {
		return badRequest(c, "weight")
	}
	if err := d.Carts.UpdateWeight(currentUser(c).ID, itemID, req.Weight); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "cart updated"})
}

func (d *Deps) RemoveCartItem(c *fiber.Ctx) error {
	itemID, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "id")
	}
	if err := d.Carts.Remove(currentUser(c).ID, itemID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "item removed"})
}

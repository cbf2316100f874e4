package handlers

import (
	"database/sql"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/dikaproject/dk-mandiri-backend/internal/domain"
	"github.com/dikaproject/dk-mandiri-backend/internal/validate"
)

func (d *Deps) ListProducts(c *fiber.Ctx) error {
	out, err := d.Products.ListAvailable()
	if err != nil {
		return respondError(c, err)
	}
	if out == nil {
		out = []domain.Product{}
	}
	return c.JSON(out)
}

func (d *Deps) GetProduct(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "id")
	}
	p, err := d.Products.Get(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return respondError(c, domain.NotFound("product"))
		}
		return respondError(c, err)
	}
	return c.JSON(p)
}

package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/dikaproject/dk-mandiri-backend/internal/domain"
	applog "github.com/dikaproject/dk-mandiri-backend/internal/log"
)

// respondError maps the domain error taxonomy onto HTTP statuses. Anything
// unrecognized is a 500 with a generic body; details stay in the log.
func respondError(c *fiber.Ctx, err error) error {
	var (
		ve *domain.ValidationError
		ce *domain.ConflictError
		nf *domain.NotFoundError
		it *domain.IllegalTransitionError
		ee *domain.ExternalServiceError
	)
	switch {
	case errors.As(err, &ve):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": ve.Msg})
	case errors.As(err, &ce):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": ce.Msg})
	case errors.As(err, &nf):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": nf.Error()})
	case errors.As(err, &it):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": it.Error()})
	case errors.As(err, &ee):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"message": "external service unavailable"})
	}
	applog.Error(c, "server.error", err, nil)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "something went wrong"})
}

func badRequest(c *fiber.Ctx, field string) error {
	applog.Security(c, "validation.fail", map[string]any{"field": field})
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid " + field})
}

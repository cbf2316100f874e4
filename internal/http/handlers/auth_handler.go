package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	applog "github.com/dikaproject/dk-mandiri-backend/internal/log"
	"github.com/dikaproject/dk-mandiri-backend/internal/services"
	"github.com/dikaproject/dk-mandiri-backend/internal/validate"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (d *Deps) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "body")
	}
	email, ok := validate.Email(req.Email)
	if !ok {
		return badRequest(c, "email")
	}

	sid := uuid.NewString()
	u, err := d.Auth.Login(sid, email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrBadCreds) {
			applog.Security(c, "login.fail", map[string]any{"email": email})
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "invalid email or password"})
		}
		return respondError(c, err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     "sid",
		Value:    sid,
		HTTPOnly: true,
		SameSite: "Lax",
		Expires:  time.Now().Add(24 * time.Hour),
	})
	applog.Audit(c, "login.ok", map[string]any{"user_id": u.ID})
	return c.JSON(fiber.Map{
		"id":       u.ID,
		"username": u.Username,
		"email":    u.Email,
		"role":     u.Role,
	})
}

func (d *Deps) Logout(c *fiber.Ctx) error {
	if sid := c.Cookies("sid"); sid != "" {
		_ = d.Auth.Logout(sid)
	}
	c.Cookie(&fiber.Cookie{Name: "sid", Value: "", Expires: time.Now().Add(-time.Hour), HTTPOnly: true})
	return c.JSON(fiber.Map{"message": "logged out"})
}

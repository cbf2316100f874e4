package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dikaproject/dk-mandiri-backend/internal/domain"
	applog "github.com/dikaproject/dk-mandiri-backend/internal/log"
	"github.com/dikaproject/dk-mandiri-backend/internal/repos"
	"github.com/dikaproject/dk-mandiri-backend/internal/services"
	"github.com/dikaproject/dk-mandiri-backend/internal/validate"
)

// PaymentNotification is the payment-provider webhook. It must answer 200 for
// anything it processed, including replays, or the provider keeps retrying.
func (d *Deps) PaymentNotification(c *fiber.Ctx) error {
	var n services.PaymentNotification
	if err := c.BodyParser(&n); err != nil {
		return badRequest(c, "body")
	}
	if n.OrderNumber == "" {
		return badRequest(c, "order_id")
	}

	if err := d.Lifecycle.HandlePaymentNotification(n); err != nil {
		return respondError(c, err)
	}
	applog.Audit(c, "payment.notification", map[string]any{
		"order_number": n.OrderNumber,
		"status":       n.TransactionStatus,
	})
	return c.JSON(fiber.Map{"message": "OK"})
}

type verifyRequest struct {
	Status string `json:"status"`
}

func (d *Deps) VerifyPayment(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "id")
	}
	var req verifyRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "body")
	}

	txn, err := d.Lifecycle.VerifyPayment(id, domain.TransactionStatus(req.Status))
	if err != nil {
		return respondError(c, err)
	}
	applog.Audit(c, "payment.verify", map[string]any{
		"transaction_id": txn.ID,
		"status":         string(txn.Status),
		"admin_id":       currentUser(c).ID,
	})
	return c.JSON(fiber.Map{
		"id":     txn.ID,
		"status": txn.Status,
	})
}

type proofRequest struct {
	PaymentProof string `json:"paymentProof"`
}

func (d *Deps) AttachProof(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "id")
	}
	var req proofRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "body")
	}
	if req.PaymentProof == "" {
		return badRequest(c, "paymentProof")
	}

	u := currentUser(c)
	if err := d.Lifecycle.AttachProof(id, u.ID, u.Role == "ADMIN", req.PaymentProof); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "payment proof uploaded"})
}

func (d *Deps) ListTransactions(c *fiber.Ctx) error {
	out, err := d.TxnRepo.ListAll()
	if err != nil {
		return respondError(c, err)
	}
	if out == nil {
		out = []repos.TransactionSummary{}
	}
	return c.JSON(out)
}

package gateway

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/dikaproject/dk-mandiri-backend/internal/services"
)

// Snap requests hosted-checkout tokens from the Midtrans Snap API. It is
// only ever called after the local order commit; any error here is reported
// to the caller and must never roll anything back.
type Snap struct {
	BaseURL     string
	ServerKey   string
	FrontendURL string
	Timeout     time.Duration
}

func NewSnap(baseURL, serverKey, frontendURL string) *Snap {
	return &Snap{BaseURL: baseURL, ServerKey: serverKey, FrontendURL: frontendURL, Timeout: 15 * time.Second}
}

var _ services.PaymentGateway = (*Snap)(nil)

type snapRequest struct {
	TransactionDetails struct {
		OrderID     string `json:"order_id"`
		GrossAmount int64  `json:"gross_amount"`
	} `json:"transaction_details"`
	ItemDetails     []services.SnapItem `json:"item_details"`
	CustomerDetails struct {
		FirstName string `json:"first_name"`
		Email     string `json:"email"`
		Phone     string `json:"phone"`
	} `json:"customer_details"`
	Callbacks struct {
		Finish string `json:"finish"`
	} `json:"callbacks"`
}

type snapResponse struct {
	Token        string   `json:"token"`
	RedirectURL  string   `json:"redirect_url"`
	ErrorMessage []string `json:"error_messages"`
}

func (s *Snap) CreateTransactionToken(orderNumber string, grossAmount int64, items []services.SnapItem, customer services.SnapCustomer) (string, error) {
	var body snapRequest
	body.TransactionDetails.OrderID = orderNumber
	body.TransactionDetails.GrossAmount = grossAmount
	body.ItemDetails = items
	body.CustomerDetails.FirstName = customer.Name
	body.CustomerDetails.Email = customer.Email
	phone := customer.Phone
	if phone == "" {
		phone = "-"
	}
	body.CustomerDetails.Phone = phone
	body.Callbacks.Finish = s.FrontendURL + "/order"

	agent := fiber.AcquireAgent()
	req := agent.Request()
	req.Header.SetMethod(fiber.MethodPost)
	req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(s.ServerKey+":")))
	req.Header.SetContentType(fiber.MIMEApplicationJSON)
	req.SetRequestURI(s.BaseURL + "/snap/v1/transactions")
	if err := agent.Parse(); err != nil {
		return "", err
	}

	var out snapResponse
	code, _, errs := agent.JSON(body).Timeout(s.Timeout).Struct(&out)
	if len(errs) > 0 {
		return "", errs[0]
	}
	if code != fiber.StatusCreated || out.Token == "" {
		if len(out.ErrorMessage) > 0 {
			return "", fmt.Errorf("midtrans: %s", out.ErrorMessage[0])
		}
		return "", fmt.Errorf("midtrans: status %d", code)
	}
	return out.Token, nil
}

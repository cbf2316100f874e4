package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/dikaproject/dk-mandiri-backend/internal/services"
)

// Fonnte delivers WhatsApp messages through the Fonnte HTTP API. Every send
// is bounded by a request timeout; a timeout is a delivery failure, not a
// system error.
type Fonnte struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

func NewFonnte(baseURL, token string) *Fonnte {
	return &Fonnte{BaseURL: baseURL, Token: token, Timeout: 15 * time.Second}
}

var _ services.Notifier = (*Fonnte)(nil)

func (f *Fonnte) SendMessage(phone, message string) error {
	agent := fiber.AcquireAgent()
	req := agent.Request()
	req.Header.SetMethod(fiber.MethodPost)
	req.Header.Set("Authorization", f.Token)
	req.SetRequestURI(f.BaseURL + "/send")
	if err := agent.Parse(); err != nil {
		return err
	}

	args := fiber.AcquireArgs()
	defer fiber.ReleaseArgs(args)
	args.Set("target", formatPhone(phone))
	args.Set("message", message)

	code, body, errs := agent.Form(args).Timeout(f.Timeout).Bytes()
	if len(errs) > 0 {
		return errs[0]
	}
	if code >= 300 {
		return fmt.Errorf("fonnte: status %d: %s", code, body)
	}
	return nil
}

func (f *Fonnte) SendOrderConfirmation(phone string, d services.OrderConfirmation) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Halo %s,\n\nPesanan Anda di DK Mandiri telah berhasil dibuat!\n\n", d.CustomerName)
	fmt.Fprintf(&b, "*Detail Pesanan:*\nNo. Pesanan: %s\nTanggal: %s\nTotal: Rp %s\n\n", d.OrderNumber, d.OrderDate, d.TotalAmount.StringFixed(0))
	if d.OrderType == "OFFLINE" {
		b.WriteString("Anda telah memilih untuk mengambil pesanan langsung di toko kami.\nHarap melakukan pembayaran terlebih dahulu, atau lakukan pembayaran di tempat.\n\n")
	} else {
		b.WriteString("Silahkan lakukan pembayaran untuk memproses pesanan Anda.\nTidak merasa memesan? Hubungi kami segera!\n\n")
	}
	b.WriteString("Terima kasih telah berbelanja di DK Mandiri!")
	return f.SendMessage(phone, b.String())
}

func (f *Fonnte) SendPaymentConfirmation(phone string, d services.PaymentConfirmation) error {
	msg := fmt.Sprintf(
		"Halo %s,\n\nPembayaran untuk pesanan *#%s* telah kami terima!\n\nJumlah: Rp %s\nMetode: %s\n\nPesanan Anda sedang kami proses. Terima kasih!",
		d.CustomerName, d.OrderNumber, d.Amount.StringFixed(0), d.PaymentMethod)
	return f.SendMessage(phone, msg)
}

func (f *Fonnte) SendShippingNotification(phone string, d services.ShippingNotification) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Halo %s,\n\nPesanan *#%s* sedang dalam pengiriman!\n\nStatus: %s\nKurir: %s\n", d.CustomerName, d.OrderNumber, d.DeliveryStatus, d.StaffName)
	if d.Notes != "" {
		fmt.Fprintf(&b, "Catatan: %s\n", d.Notes)
	}
	b.WriteString("\nMohon siapkan penerimaan pesanan Anda. Terima kasih!")
	return f.SendMessage(phone, b.String())
}

func (f *Fonnte) SendOrderComplete(phone string, d services.OrderCompletion) error {
	msg := fmt.Sprintf(
		"Halo %s,\n\nPesanan *#%s* telah selesai!\n\nTotal: Rp %s\nDilayani oleh: %s\n\nTerima kasih telah berbelanja di DK Mandiri!",
		d.CustomerName, d.OrderNumber, d.Amount.StringFixed(0), d.StaffName)
	return f.SendMessage(phone, msg)
}

func (f *Fonnte) SendPOSReceipt(phone string, d services.Receipt) error {
	var b strings.Builder
	fmt.Fprintf(&b, "*Struk Pembelian DK Mandiri*\n\nNo. Pesanan: %s\nTanggal: %s\nPelanggan: %s\n\n", d.OrderNumber, d.Date, d.CustomerName)
	for _, it := range d.Items {
		fmt.Fprintf(&b, "- %s %s kg: Rp %s\n", it.Name, it.WeightKg.String(), it.Price.StringFixed(0))
	}
	fmt.Fprintf(&b, "\nTotal: Rp %s\nPembayaran: %s\nKasir: %s\n\nTerima kasih!", d.TotalAmount.StringFixed(0), d.PaymentMethod, d.StaffName)
	return f.SendMessage(phone, b.String())
}

// formatPhone normalizes a local 08xx number to its international form.
func formatPhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if strings.HasPrefix(phone, "0") {
		return "62" + phone[1:]
	}
	return phone
}

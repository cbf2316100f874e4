package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"

	"github.com/dikaproject/dk-mandiri-backend/internal/repos"
	"github.com/dikaproject/dk-mandiri-backend/internal/services"
)

// Deps carries every service the HTTP layer needs. Built once in main and
// handed to Register.
type Deps struct {
	Auth      *services.AuthService
	Carts     *services.CartService
	Orders    *services.OrderService
	Lifecycle *services.LifecycleService
	POS       *services.POSService
	Products  *repos.ProductRepo
	Addresses *repos.AddressRepo
	OrderRepo *repos.OrderRepo
	TxnRepo   *repos.TransactionRepo
	ShipRepo  *repos.ShippingRepo
}

// NewDeps wires repositories, services, and external adapters over one DB
// handle.
func NewDeps(db *sqlx.DB, gateway services.PaymentGateway, notify services.Notifier, opsPhone string) *Deps {
	users := repos.NewUserRepo(db)
	products := repos.NewProductRepo(db)
	carts := repos.NewCartRepo(db)
	addresses := repos.NewAddressRepo(db)
	orders := repos.NewOrderRepo(db)
	txns := repos.NewTransactionRepo(db)
	ship := repos.NewShippingRepo(db)

	inv := &services.InventoryService{Products: products}

	return &Deps{
		Auth:  &services.AuthService{Users: users},
		Carts: services.NewCartService(carts, products, inv),
		Orders: &services.OrderService{
			DB: db, Carts: carts, Products: products, Addresses: addresses,
			Orders: orders, Txns: txns, Users: users, Inv: inv,
			Gateway: gateway, Notify: notify,
		},
		Lifecycle: &services.LifecycleService{
			DB: db, Orders: orders, Txns: txns, Ship: ship, Users: users,
			Notify: notify, OpsPhone: opsPhone,
		},
		POS: &services.POSService{
			DB: db, Products: products, Orders: orders, Txns: txns,
			Users: users, Inv: inv, Notify: notify,
		},
		Products:  products,
		Addresses: addresses,
		OrderRepo: orders,
		TxnRepo:   txns,
		ShipRepo:  ship,
	}
}

// Register mounts every route under /api.
func Register(app *fiber.App, d *Deps) {
	api := app.Group("/api")

	api.Post("/auth/login", d.Login)
	api.Post("/auth/logout", d.Logout)

	api.Get("/products", d.ListProducts)
	api.Get("/products/:id", d.GetProduct)

	// Public webhook endpoint; the provider does not hold a session.
	api.Post("/transactions/notification", d.PaymentNotification)

	user := api.Group("", RequireUser(d.Auth))
	user.Get("/cart", d.ViewCart)
	user.Post("/cart", d.AddToCart)
	user.Patch("/cart/:id", d.UpdateCartItem)
	user.Delete("/cart/:id", d.RemoveCartItem)
	user.Get("/addresses", d.ListAddresses)
	user.Post("/addresses", d.CreateAddress)
	user.Post("/orders", d.PlaceOrder)
	user.Get("/orders", d.ListOrders)
	user.Get("/orders/:id", d.GetOrder)
	user.Get("/orders/:id/shipping", d.GetShipping)
	user.Post("/transactions/:id/proof", d.AttachProof)

	admin := api.Group("", RequireAdmin(d.Auth))
	admin.Patch("/orders/:id/status", d.UpdateOrderStatus)
	admin.Put("/orders/:id/shipping", d.UpdateShipping)
	admin.Get("/transactions", d.ListTransactions)
	admin.Patch("/transactions/:id/verify", d.VerifyPayment)
	admin.Post("/pos/transactions", d.CreatePOSTransaction)
	admin.Post("/pos/transactions/:id/receipt", d.SendPOSReceipt)
}

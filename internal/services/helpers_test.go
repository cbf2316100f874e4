package services_test

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"github.com/dikaproject/dk-mandiri-backend/internal/repos"
	"github.com/dikaproject/dk-mandiri-backend/internal/services"
)

// memdb opens a throwaway file-backed database so concurrent writers contend
// on real SQLite locking rather than on separate in-memory instances.
func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") + "?_pragma=busy_timeout(5000)"
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := repos.EnsureSchema(db); err != nil {
		t.Fatal(err)
	}

	db.MustExec(`INSERT INTO categories(id,name) VALUES ('ikan-segar','Ikan Segar')`)
	db.MustExec(`INSERT INTO products(id,category_id,name,description,price,cost_price,weight_in_stock,min_order_weight) VALUES
	  ('ikan-tenggiri','ikan-segar','Ikan Tenggiri','',85000,70000,10000,500),
	  ('udang-vaname','ikan-segar','Udang Vaname','',95000,80000,5000,250)`)
	db.MustExec(`INSERT INTO users(id,username,email,phone,password_hash,role) VALUES
	  ('u-buyer','Dika','dika@example.com','6281234567890','x','USER'),
	  ('u-other','Rara','rara@example.com','6289876543210','x','USER'),
	  ('u-staff','Admin DK','admin@example.com','6281227848422','x','ADMIN')`)
	return db
}

type fakeGateway struct {
	mu        sync.Mutex
	token     string
	err       error
	calls     int
	lastGross int64
	lastItems []services.SnapItem
}

func (g *fakeGateway) CreateTransactionToken(orderNumber string, gross int64, items []services.SnapItem, customer services.SnapCustomer) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.lastGross = gross
	g.lastItems = items
	if g.err != nil {
		return "", g.err
	}
	if g.token == "" {
		return "snap-token", nil
	}
	return g.token, nil
}

type fakeNotifier struct {
	mu    sync.Mutex
	err   error
	calls []string
}

func (n *fakeNotifier) record(name string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, name)
	return n.err
}

func (n *fakeNotifier) count(name string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, v := range n.calls {
		if v == name {
			c++
		}
	}
	return c
}

func (n *fakeNotifier) SendOrderConfirmation(phone string, d services.OrderConfirmation) error {
	return n.record("order_confirmation")
}
func (n *fakeNotifier) SendPaymentConfirmation(phone string, d services.PaymentConfirmation) error {
	return n.record("payment_confirmation")
}
func (n *fakeNotifier) SendShippingNotification(phone string, d services.ShippingNotification) error {
	return n.record("shipping_notification")
}
func (n *fakeNotifier) SendOrderComplete(phone string, d services.OrderCompletion) error {
	return n.record("order_complete")
}
func (n *fakeNotifier) SendPOSReceipt(phone string, d services.Receipt) error {
	return n.record("pos_receipt")
}
func (n *fakeNotifier) SendMessage(phone, message string) error {
	return n.record("message")
}

// env wires the full service stack over one test database with fake external
// adapters.
type env struct {
	db        *sqlx.DB
	carts     *repos.CartRepo
	products  *repos.ProductRepo
	orders    *repos.OrderRepo
	txns      *repos.TransactionRepo
	ship      *repos.ShippingRepo
	users     *repos.UserRepo
	addresses *repos.AddressRepo
	gateway   *fakeGateway
	notify    *fakeNotifier
	cartSvc   *services.CartService
	orderSvc  *services.OrderService
	lifecycle *services.LifecycleService
	pos       *services.POSService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := memdb(t)
	e := &env{
		db:        db,
		carts:     repos.NewCartRepo(db),
		products:  repos.NewProductRepo(db),
		orders:    repos.NewOrderRepo(db),
		txns:      repos.NewTransactionRepo(db),
		ship:      repos.NewShippingRepo(db),
		users:     repos.NewUserRepo(db),
		addresses: repos.NewAddressRepo(db),
		gateway:   &fakeGateway{},
		notify:    &fakeNotifier{},
	}
	inv := services.NewInventoryService(e.products)
	e.cartSvc = services.NewCartService(e.carts, e.products, inv)
	e.orderSvc = &services.OrderService{
		DB: db, Carts: e.carts, Products: e.products, Addresses: e.addresses,
		Orders: e.orders, Txns: e.txns, Users: e.users, Inv: inv,
		Gateway: e.gateway, Notify: e.notify,
	}
	e.lifecycle = &services.LifecycleService{
		DB: db, Orders: e.orders, Txns: e.txns, Ship: e.ship, Users: e.users,
		Notify: e.notify, OpsPhone: "6281227848422",
	}
	e.pos = &services.POSService{
		DB: db, Products: e.products, Orders: e.orders, Txns: e.txns,
		Users: e.users, Inv: inv, Notify: e.notify,
	}
	return e
}

func (e *env) stock(t *testing.T, productID string) string {
	t.Helper()
	var s string
	if err := e.db.Get(&s, `SELECT CAST(weight_in_stock AS TEXT) FROM products WHERE id = ?`, productID); err != nil {
		t.Fatal(err)
	}
	return s
}

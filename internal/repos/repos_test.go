package repos_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"github.com/dikaproject/dk-mandiri-backend/internal/domain"
	"github.com/dikaproject/dk-mandiri-backend/internal/repos"
)

func testdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite", "file:"+filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, repos.EnsureSchema(db))
	db.MustExec(`INSERT INTO categories(id,name) VALUES ('ikan-segar','Ikan Segar')`)
	db.MustExec(`INSERT INTO products(id,category_id,name,price,cost_price,weight_in_stock,min_order_weight)
	  VALUES ('ikan-tenggiri','ikan-segar','Ikan Tenggiri',85000,70000,10000,500)`)
	db.MustExec(`INSERT INTO users(id,username,email,phone,password_hash,role)
	  VALUES ('u-buyer','Dika','dika@example.com','6281234567890','x','USER')`)
	db.MustExec(`INSERT INTO orders(id,order_number,total_amount,user_id)
	  VALUES ('o1','ORD-1-1',170000,'u-buyer')`)
	return db
}

func TestDecrementStock_Guard(t *testing.T) {
	db := testdb(t)
	r := repos.NewProductRepo(db)

	require.NoError(t, r.DecrementStock(db, "ikan-tenggiri", decimal.NewFromInt(6000)))

	// 4000 g left; another 6000 must be refused without touching the row
	err := r.DecrementStock(db, "ikan-tenggiri", decimal.NewFromInt(6000))
	var ce *domain.ConflictError
	require.True(t, errors.As(err, &ce), "got %v", err)

	p, err := r.Get("ikan-tenggiri")
	require.NoError(t, err)
	require.True(t, p.WeightInStock.Equal(decimal.NewFromInt(4000)), "stock %s", p.WeightInStock)
}

func TestShippingUpsert_KeepsEarlierDetails(t *testing.T) {
	db := testdb(t)
	r := repos.NewShippingRepo(db)

	first := domain.Shipping{
		OrderID:        "o1",
		DeliveryStatus: domain.DeliveryInTransit,
		StaffName:      "Kurir Budi",
		Notes:          "berangkat pagi",
	}
	require.NoError(t, r.Upsert(db, &first))

	// Closing out the delivery without restating staff or notes keeps them
	second := domain.Shipping{
		OrderID:        "o1",
		DeliveryStatus: domain.DeliveryDelivered,
		RecipientName:  "Dika",
	}
	require.NoError(t, r.Upsert(db, &second))

	got, err := r.GetByOrder("o1")
	require.NoError(t, err)
	require.Equal(t, first.ID, got.ID, "still one record per order")
	require.Equal(t, domain.DeliveryDelivered, got.DeliveryStatus)
	require.Equal(t, "Kurir Budi", got.StaffName)
	require.Equal(t, "berangkat pagi", got.Notes)
	require.Equal(t, "Dika", got.RecipientName)
}

func TestCompletionDetailsRoundTrip(t *testing.T) {
	db := testdb(t)
	r := repos.NewTransactionRepo(db)

	txn := domain.Transaction{
		ID:      "t1",
		OrderID: "o1",
		Amount:  decimal.NewFromInt(170000),
		Status:  domain.TxPending,
	}
	require.NoError(t, r.Create(db, &txn))

	// No completion details were set, so the column stays NULL
	var isNull bool
	require.NoError(t, db.Get(&isNull, `SELECT completion_details IS NULL FROM transactions WHERE id = 't1'`))
	require.True(t, isNull)

	got, err := r.GetByID("t1")
	require.NoError(t, err)
	require.True(t, got.CompletionDetails.IsZero())
}

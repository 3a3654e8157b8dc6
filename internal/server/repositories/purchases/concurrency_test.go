package purchases

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/modelmart/modelmart/internal/common"
	"github.com/modelmart/modelmart/internal/server/models"
)

// modernc sqlite accepts the $N placeholders the repository uses, which
// lets the conditional insert run against a real database here.
func setupSQLiteDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", filepath.Join(t.TempDir(), "purchases.db"))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("sql.Open error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE purchases (
		id TEXT PRIMARY KEY,
		buyer TEXT NOT NULL,
		listing_id INTEGER NOT NULL,
		amount_e8s INTEGER NOT NULL,
		UNIQUE (buyer, listing_id)
	)`)
	if err != nil {
		t.Fatalf("create table error: %v", err)
	}
	return db
}

func TestCreate_ConcurrentAttemptsKeepOnePurchase(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewPostgresRepository(db)

	const attempts = 16
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = repo.Create(context.Background(), &models.Purchase{
				ID:           fmt.Sprintf("33333333-0000-0000-0000-%012d", i),
				Buyer:        "buyer-principal",
				ListingIndex: 7,
				AmountE8s:    150_000_000,
			})
		}(i)
	}
	wg.Wait()

	var recorded, rejected int
	for _, err := range errs {
		switch {
		case err == nil:
			recorded++
		case errors.Is(err, common.ErrorAlreadyPurchased):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if recorded != 1 {
		t.Fatalf("expected exactly one recorded purchase, got %d", recorded)
	}
	if rejected != attempts-1 {
		t.Fatalf("expected %d rejected duplicates, got %d", attempts-1, rejected)
	}

	ok, err := repo.Exists(context.Background(), "buyer-principal", 7)
	if err != nil {
		t.Fatalf("Exists error: %v", err)
	}
	if !ok {
		t.Fatal("expected the purchase to exist")
	}

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM purchases`).Scan(&n); err != nil {
		t.Fatalf("count error: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected a single row, got %d", n)
	}
}

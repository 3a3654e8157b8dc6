package payments

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/modelmart/modelmart/internal/common"
	"github.com/modelmart/modelmart/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestUpsert_InsertsOrReplaces(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+payments\s*\(principal,\s*amount_e8s\)\s*VALUES\s*\(\$1,\s*\$2\)\s*ON\s+CONFLICT\s*\(principal\)\s+DO\s+UPDATE`

	mock.ExpectExec(q).
		WithArgs("principal-1", int64(40_000)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Upsert(context.Background(), &models.PaymentRecord{
		Principal: "principal-1",
		AmountE8s: 40_000,
	})
	if err != nil {
		t.Fatalf("Upsert error: %v", err)
	}
}

func TestUpsert_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^INSERT\s+INTO\s+payments`).
		WillReturnError(errors.New("db down"))

	err := repo.Upsert(context.Background(), &models.PaymentRecord{Principal: "p", AmountE8s: 1})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetByPrincipal_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"principal", "amount_e8s", "confirmed_at"}).
		AddRow("principal-1", int64(40_000), time.Now())
	mock.ExpectQuery(`(?s)^SELECT\s+principal,\s*amount_e8s,\s*confirmed_at\s+FROM\s+payments\s+WHERE\s+principal\s*=\s*\$1`).
		WithArgs("principal-1").
		WillReturnRows(rows)

	got, err := repo.GetByPrincipal(context.Background(), "principal-1")
	if err != nil {
		t.Fatalf("GetByPrincipal error: %v", err)
	}
	if got.AmountE8s != 40_000 {
		t.Fatalf("unexpected payment: %+v", got)
	}
}

func TestGetByPrincipal_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^SELECT\s+principal`).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByPrincipal(context.Background(), "absent")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

package payments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/modelmart/modelmart/internal/common"
	"github.com/modelmart/modelmart/internal/dbx"
	"github.com/modelmart/modelmart/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Upsert(ctx context.Context, payment *models.PaymentRecord) error {

	query :=
		`INSERT INTO payments (principal, amount_e8s)
		 VALUES ($1, $2)
		 ON CONFLICT (principal) DO UPDATE SET
		     amount_e8s = excluded.amount_e8s,
		     confirmed_at = now()
		 `

	_, err := r.db.ExecContext(ctx, query, payment.Principal, payment.AmountE8s)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) GetByPrincipal(ctx context.Context, principal string) (*models.PaymentRecord, error) {

	query :=
		`SELECT principal, amount_e8s, confirmed_at FROM payments
		 WHERE principal = $1
		 `

	payment := &models.PaymentRecord{}
	err := r.db.QueryRowContext(ctx, query, principal).
		Scan(&payment.Principal, &payment.AmountE8s, &payment.ConfirmedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return payment, nil
}

package journal

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/modelmart/modelmart/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Pending(ctx context.Context, principal string) (*PendingPayment, error) {
	p := &PendingPayment{}
	err := r.db.QueryRowContext(ctx, `
		SELECT principal, amount_e8s, block_height, created_at
		FROM pending_payments WHERE principal = ?
	`, principal).Scan(&p.Principal, &p.AmountE8s, &p.BlockHeight, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pending payment[%s]: %w", principal, err)
	}
	return p, nil
}

func (r *SQLiteRepository) Record(ctx context.Context, p *PendingPayment) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pending_payments (principal, amount_e8s, block_height) VALUES (?, ?, ?)
		ON CONFLICT(principal) DO UPDATE SET
			amount_e8s = excluded.amount_e8s,
			block_height = excluded.block_height
	`, p.Principal, p.AmountE8s, p.BlockHeight)
	if err != nil {
		return fmt.Errorf("failed to record pending payment[%s]: %w", p.Principal, err)
	}
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context, principal string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM pending_payments WHERE principal = ?`, principal)
	if err != nil {
		return fmt.Errorf("failed to clear pending payment[%s]: %w", principal, err)
	}
	return nil
}

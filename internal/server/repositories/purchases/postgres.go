package purchases

import (
	"context"
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

func (r *PostgresRepository) Create(ctx context.Context, purchase *models.Purchase) error {

	query :=
		`INSERT INTO purchases (id, buyer, listing_id, amount_e8s)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (buyer, listing_id) DO NOTHING
		 `

	result, err := r.db.ExecContext(ctx, query,
		purchase.ID, purchase.Buyer, purchase.ListingIndex, purchase.AmountE8s)

	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if rows == 0 {
		return common.ErrorAlreadyPurchased
	}

	return nil
}

func (r *PostgresRepository) Exists(ctx context.Context, buyer string, listingIndex uint64) (bool, error) {

	query :=
		`SELECT EXISTS (
		     SELECT 1 FROM purchases WHERE buyer = $1 AND listing_id = $2
		 )`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, buyer, listingIndex).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	return exists, nil
}

package listings

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

const listingColumns = `id, name, description, category, price, api_endpoint, image, size_bytes, wallet_principal, uploader, artifact_key, created_at`

func (r *PostgresRepository) Create(ctx context.Context, listing *models.Listing) (*models.Listing, error) {

	query :=
		`INSERT INTO listings (name, description, category, price, api_endpoint, image, size_bytes, wallet_principal, uploader, artifact_key)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		listing.Name, listing.Description, listing.Category, listing.Price,
		listing.APIEndpoint, listing.Image, listing.SizeBytes,
		listing.WalletPrincipal, listing.Uploader, listing.ArtifactKey).
		Scan(&listing.Index, &listing.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return listing, nil
}

func (r *PostgresRepository) Update(ctx context.Context, listing *models.Listing) error {

	query :=
		`UPDATE listings
		 SET name = $1, description = $2, category = $3, price = $4,
		     api_endpoint = $5, image = $6, size_bytes = $7,
		     wallet_principal = $8, artifact_key = $9
		 WHERE id = $10
		 `

	result, err := r.db.ExecContext(ctx, query,
		listing.Name, listing.Description, listing.Category, listing.Price,
		listing.APIEndpoint, listing.Image, listing.SizeBytes,
		listing.WalletPrincipal, listing.ArtifactKey, listing.Index)

	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if rows == 0 {
		return common.ErrorNotFound
	}

	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, index uint64) error {

	result, err := r.db.ExecContext(ctx, `DELETE FROM listings WHERE id = $1`, index)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if rows == 0 {
		return common.ErrorNotFound
	}

	return nil
}

func (r *PostgresRepository) GetByIndex(ctx context.Context, index uint64) (*models.Listing, error) {

	query := `SELECT ` + listingColumns + ` FROM listings WHERE id = $1`

	listing := &models.Listing{}
	err := r.db.QueryRowContext(ctx, query, index).Scan(
		&listing.Index, &listing.Name, &listing.Description, &listing.Category,
		&listing.Price, &listing.APIEndpoint, &listing.Image, &listing.SizeBytes,
		&listing.WalletPrincipal, &listing.Uploader, &listing.ArtifactKey, &listing.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return listing, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]models.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings ORDER BY id`
	return r.queryListings(ctx, query)
}

func (r *PostgresRepository) ListByUploader(ctx context.Context, uploader string) ([]models.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE uploader = $1 ORDER BY id`
	return r.queryListings(ctx, query, uploader)
}

func (r *PostgresRepository) queryListings(ctx context.Context, query string, args ...any) ([]models.Listing, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.Listing
	for rows.Next() {
		var listing models.Listing
		if err := rows.Scan(
			&listing.Index, &listing.Name, &listing.Description, &listing.Category,
			&listing.Price, &listing.APIEndpoint, &listing.Image, &listing.SizeBytes,
			&listing.WalletPrincipal, &listing.Uploader, &listing.ArtifactKey, &listing.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, listing)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

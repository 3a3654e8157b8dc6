package listings

import (
	"context"

	"github.com/modelmart/modelmart/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, listing *models.Listing) (*models.Listing, error)
	Update(ctx context.Context, listing *models.Listing) error
	Delete(ctx context.Context, index uint64) error
	GetByIndex(ctx context.Context, index uint64) (*models.Listing, error)
	List(ctx context.Context) ([]models.Listing, error)
	ListByUploader(ctx context.Context, uploader string) ([]models.Listing, error)
}

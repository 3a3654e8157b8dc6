package purchases

import (
	"context"

	"github.com/modelmart/modelmart/internal/server/models"
)

type Repository interface {
	// Create inserts the purchase if the buyer does not own the listing
	// yet; an existing (buyer, listing) pair yields
	// common.ErrorAlreadyPurchased. The check and insert are one atomic
	// statement, so concurrent buys cannot both succeed.
	Create(ctx context.Context, purchase *models.Purchase) error
	Exists(ctx context.Context, buyer string, listingIndex uint64) (bool, error)
}

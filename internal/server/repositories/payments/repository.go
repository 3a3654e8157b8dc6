package payments

import (
	"context"

	"github.com/modelmart/modelmart/internal/server/models"
)

type Repository interface {
	// Upsert writes the payment record for its principal, replacing any
	// previous one. Repeated confirmations are therefore idempotent.
	Upsert(ctx context.Context, payment *models.PaymentRecord) error
	GetByPrincipal(ctx context.Context, principal string) (*models.PaymentRecord, error)
}

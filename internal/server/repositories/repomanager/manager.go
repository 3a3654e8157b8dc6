package repomanager

import (
	"context"
	"database/sql"

	"github.com/modelmart/modelmart/internal/dbx"
	"github.com/modelmart/modelmart/internal/server/repositories/listings"
	"github.com/modelmart/modelmart/internal/server/repositories/payments"
	"github.com/modelmart/modelmart/internal/server/repositories/purchases"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Listings(db dbx.DBTX) listings.Repository
	Payments(db dbx.DBTX) payments.Repository
	Purchases(db dbx.DBTX) purchases.Repository
}

// Package grpc exposes the broker service over gRPC with the CBOR
// codec. Handlers translate wire messages to service calls and map
// service errors to status codes at the boundary.
package grpc

import (
	"context"
	"net"

	"google.golang.org/grpc"

	"github.com/modelmart/modelmart/internal/logging"
	"github.com/modelmart/modelmart/internal/rpc"
	"github.com/modelmart/modelmart/internal/server/models"
)

// SessionService opens broker sessions from wallet-key proofs.
type SessionService interface {
	Challenge(ctx context.Context, publicKeyDER []byte) ([]byte, error)
	OpenSession(ctx context.Context, publicKeyDER, nonce, signature []byte) (string, string, error)
}

// ListingService covers payments, paid listing mutations, and catalogue
// queries.
type ListingService interface {
	ConfirmPayment(ctx context.Context, principal string, amountE8s uint64) (string, error)
	HasPayment(ctx context.Context, principal string) (bool, uint64, error)
	StoreListing(ctx context.Context, uploader string, listing *models.Listing) (*models.Listing, string, error)
	UpdateListing(ctx context.Context, uploader string, listing *models.Listing) (string, error)
	DeleteListing(ctx context.Context, uploader string, index uint64) (string, error)
	GetListing(ctx context.Context, index uint64) (*models.Listing, error)
	ListListings(ctx context.Context, uploader string) ([]models.Listing, error)
	PresignUpload(ctx context.Context) (string, string, error)
}

// PurchaseService records purchases and answers entitlement queries.
type PurchaseService interface {
	RecordPurchase(ctx context.Context, buyer string, index uint64, amountE8s uint64) (string, error)
	HasPurchased(ctx context.Context, buyer string, index uint64) (bool, error)
	PresignDownload(ctx context.Context, caller string, index uint64) (string, error)
}

type GRPCServer struct {
	address   string
	sessions  SessionService
	listings  ListingService
	purchases PurchaseService
	logger    logging.Logger
	jwtSecret []byte
}

func NewGRPCServer(a string, l logging.Logger, ss SessionService, ls ListingService, ps PurchaseService, secretKey string) (*GRPCServer, error) {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		sessions:  ss,
		listings:  ls,
		purchases: ps,
		jwtSecret: []byte(secretKey),
	}, nil
}

func (s *GRPCServer) Run(ctx context.Context) error {

	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := grpc.NewServer(
		grpc.ForceServerCodec(rpc.Codec{}),
		grpc.ChainUnaryInterceptor(s.sessionTokenInterceptor),
	)

	rpc.RegisterBrokerServer(srv, s)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", s.address)

	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}

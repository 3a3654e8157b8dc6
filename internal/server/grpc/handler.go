package grpc

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/modelmart/modelmart/internal/common"
	"github.com/modelmart/modelmart/internal/rpc"
	"github.com/modelmart/modelmart/internal/server/models"
)

func (s *GRPCServer) Ping(ctx context.Context, req *rpc.PingRequest) (*rpc.PingResponse, error) {

	return &rpc.PingResponse{Status: "OK"}, nil

}

func (s *GRPCServer) Challenge(ctx context.Context, req *rpc.ChallengeRequest) (*rpc.ChallengeResponse, error) {

	nonce, err := s.sessions.Challenge(ctx, req.PublicKeyDER)
	if err != nil {
		return nil, s.mapError(ctx, err)
	}

	return &rpc.ChallengeResponse{Nonce: nonce}, nil

}

func (s *GRPCServer) OpenSession(ctx context.Context, req *rpc.OpenSessionRequest) (*rpc.OpenSessionResponse, error) {

	token, principal, err := s.sessions.OpenSession(ctx, req.PublicKeyDER, req.Nonce, req.Signature)
	if err != nil {
		return nil, s.mapError(ctx, err)
	}

	s.logger.Info(ctx, "Session opened", "principal", principal)
	return &rpc.OpenSessionResponse{Token: token, Principal: principal}, nil

}

func (s *GRPCServer) HasPayment(ctx context.Context, req *rpc.HasPaymentRequest) (*rpc.HasPaymentResponse, error) {

	exists, amount, err := s.listings.HasPayment(ctx, req.Principal)
	if err != nil {
		return nil, s.mapError(ctx, err)
	}

	return &rpc.HasPaymentResponse{Exists: exists, AmountE8s: amount}, nil

}

func (s *GRPCServer) ConfirmPayment(ctx context.Context, req *rpc.ConfirmPaymentRequest) (*rpc.ConfirmPaymentResponse, error) {

	principal, ok := principalFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing principal")
	}

	receipt, err := s.listings.ConfirmPayment(ctx, principal, req.AmountE8s)
	if err != nil {
		return nil, s.mapError(ctx, err)
	}

	s.logger.Info(ctx, "Payment confirmed", "principal", principal, "amount_e8s", req.AmountE8s)
	return &rpc.ConfirmPaymentResponse{Receipt: receipt}, nil

}

func (s *GRPCServer) StoreListing(ctx context.Context, req *rpc.StoreListingRequest) (*rpc.StoreListingResponse, error) {

	principal, ok := principalFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing principal")
	}

	listing, err := draftToModel(req.Draft, 0, req.SizeBytes)
	if err != nil {
		return nil, s.mapError(ctx, err)
	}

	created, receipt, err := s.listings.StoreListing(ctx, principal, listing)
	if err != nil {
		return nil, s.mapError(ctx, err)
	}

	s.logger.Info(ctx, "Listing stored", "index", created.Index, "uploader", principal)
	return &rpc.StoreListingResponse{Receipt: receipt, Index: created.Index}, nil

}

func (s *GRPCServer) UpdateListing(ctx context.Context, req *rpc.UpdateListingRequest) (*rpc.UpdateListingResponse, error) {

	principal, ok := principalFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing principal")
	}

	listing, err := draftToModel(req.Draft, req.Index, req.SizeBytes)
	if err != nil {
		return nil, s.mapError(ctx, err)
	}

	receipt, err := s.listings.UpdateListing(ctx, principal, listing)
	if err != nil {
		return nil, s.mapError(ctx, err)
	}

	s.logger.Info(ctx, "Listing updated", "index", req.Index, "uploader", principal)
	return &rpc.UpdateListingResponse{Receipt: receipt}, nil

}

func (s *GRPCServer) DeleteListing(ctx context.Context, req *rpc.DeleteListingRequest) (*rpc.DeleteListingResponse, error) {

	principal, ok := principalFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing principal")
	}

	receipt, err := s.listings.DeleteListing(ctx, principal, req.Index)
	if err != nil {
		return nil, s.mapError(ctx, err)
	}

	s.logger.Info(ctx, "Listing deleted", "index", req.Index, "uploader", principal)
	return &rpc.DeleteListingResponse{Receipt: receipt}, nil

}

func (s *GRPCServer) GetListing(ctx context.Context, req *rpc.GetListingRequest) (*rpc.GetListingResponse, error) {

	listing, err := s.listings.GetListing(ctx, req.Index)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return &rpc.GetListingResponse{}, nil
		}
		return nil, s.mapError(ctx, err)
	}

	wire := listingToWire(listing)
	return &rpc.GetListingResponse{Listing: &wire}, nil

}

func (s *GRPCServer) ListListings(ctx context.Context, req *rpc.ListListingsRequest) (*rpc.ListListingsResponse, error) {

	listings, err := s.listings.ListListings(ctx, req.Uploader)
	if err != nil {
		return nil, s.mapError(ctx, err)
	}

	out := make([]rpc.Listing, 0, len(listings))
	for i := range listings {
		out = append(out, listingToWire(&listings[i]))
	}

	return &rpc.ListListingsResponse{Listings: out}, nil

}

func (s *GRPCServer) HasPurchased(ctx context.Context, req *rpc.HasPurchasedRequest) (*rpc.HasPurchasedResponse, error) {

	purchased, err := s.purchases.HasPurchased(ctx, req.Principal, req.Index)
	if err != nil {
		return nil, s.mapError(ctx, err)
	}

	return &rpc.HasPurchasedResponse{Purchased: purchased}, nil

}

func (s *GRPCServer) RecordPurchase(ctx context.Context, req *rpc.RecordPurchaseRequest) (*rpc.RecordPurchaseResponse, error) {

	principal, ok := principalFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing principal")
	}

	receipt, err := s.purchases.RecordPurchase(ctx, principal, req.Index, req.AmountE8s)
	if err != nil {
		return nil, s.mapError(ctx, err)
	}

	s.logger.Info(ctx, "Purchase recorded", "index", req.Index, "buyer", principal)
	return &rpc.RecordPurchaseResponse{Receipt: receipt}, nil

}

func (s *GRPCServer) PresignUpload(ctx context.Context, req *rpc.PresignUploadRequest) (*rpc.PresignUploadResponse, error) {

	if _, ok := principalFromContext(ctx); !ok {
		return nil, status.Error(codes.Unauthenticated, "missing principal")
	}

	key, url, err := s.listings.PresignUpload(ctx)
	if err != nil {
		return nil, s.mapError(ctx, err)
	}

	return &rpc.PresignUploadResponse{Key: key, URL: url}, nil

}

func (s *GRPCServer) PresignDownload(ctx context.Context, req *rpc.PresignDownloadRequest) (*rpc.PresignDownloadResponse, error) {

	principal, ok := principalFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing principal")
	}

	url, err := s.purchases.PresignDownload(ctx, principal, req.Index)
	if err != nil {
		return nil, s.mapError(ctx, err)
	}

	return &rpc.PresignDownloadResponse{URL: url}, nil

}

// mapError translates service errors to gRPC status codes. Messages on
// permission and conflict errors are matched by the client, so they use
// the sentinel text verbatim.
func (s *GRPCServer) mapError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, common.ErrorNotFound.Error())
	case errors.Is(err, common.ErrorNotUploader):
		return status.Error(codes.PermissionDenied, common.ErrorNotUploader.Error())
	case errors.Is(err, common.ErrorNoPayment):
		return status.Error(codes.FailedPrecondition, common.ErrorNoPayment.Error())
	case errors.Is(err, common.ErrorAlreadyPurchased):
		return status.Error(codes.AlreadyExists, common.ErrorAlreadyPurchased.Error())
	case errors.Is(err, common.ErrorAlreadyExists):
		return status.Error(codes.AlreadyExists, common.ErrorAlreadyExists.Error())
	case errors.Is(err, common.ErrorValidation):
		return status.Error(codes.InvalidArgument, common.ErrorValidation.Error())
	case errors.Is(err, common.ErrorUnauthorized):
		return status.Error(codes.PermissionDenied, common.ErrorUnauthorized.Error())
	default:
		s.logger.Error(ctx, err.Error())
		return status.Error(codes.Internal, "internal error")
	}
}

func draftToModel(draft rpc.ListingDraft, index uint64, sizeBytes uint64) (*models.Listing, error) {
	price, err := decimal.NewFromString(draft.Price)
	if err != nil {
		return nil, common.ErrorValidation
	}

	return &models.Listing{
		Index:           index,
		Name:            draft.Name,
		Description:     draft.Description,
		Category:        draft.Category,
		Price:           price,
		APIEndpoint:     draft.APIEndpoint,
		Image:           draft.Image,
		SizeBytes:       sizeBytes,
		WalletPrincipal: draft.WalletPrincipal,
		ArtifactKey:     draft.ArtifactKey,
	}, nil
}

func listingToWire(l *models.Listing) rpc.Listing {
	return rpc.Listing{
		Index:           l.Index,
		Name:            l.Name,
		Description:     l.Description,
		Category:        l.Category,
		Price:           l.Price.String(),
		APIEndpoint:     l.APIEndpoint,
		Image:           l.Image,
		SizeBytes:       l.SizeBytes,
		WalletPrincipal: l.WalletPrincipal,
		Uploader:        l.Uploader,
		ArtifactKey:     l.ArtifactKey,
		CreatedAtUnix:   l.CreatedAt.Unix(),
	}
}

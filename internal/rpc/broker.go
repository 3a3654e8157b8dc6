package rpc

import (
	"context"

	"google.golang.org/grpc"
)

// BrokerServiceName is the fully qualified gRPC service name.
const BrokerServiceName = "modelmart.broker.Broker"

// Full method names for the broker service.
const (
	BrokerPingMethod            = "/modelmart.broker.Broker/Ping"
	BrokerChallengeMethod       = "/modelmart.broker.Broker/Challenge"
	BrokerOpenSessionMethod     = "/modelmart.broker.Broker/OpenSession"
	BrokerHasPaymentMethod      = "/modelmart.broker.Broker/HasPayment"
	BrokerConfirmPaymentMethod  = "/modelmart.broker.Broker/ConfirmPayment"
	BrokerStoreListingMethod    = "/modelmart.broker.Broker/StoreListing"
	BrokerUpdateListingMethod   = "/modelmart.broker.Broker/UpdateListing"
	BrokerDeleteListingMethod   = "/modelmart.broker.Broker/DeleteListing"
	BrokerGetListingMethod      = "/modelmart.broker.Broker/GetListing"
	BrokerListListingsMethod    = "/modelmart.broker.Broker/ListListings"
	BrokerHasPurchasedMethod    = "/modelmart.broker.Broker/HasPurchased"
	BrokerRecordPurchaseMethod  = "/modelmart.broker.Broker/RecordPurchase"
	BrokerPresignUploadMethod   = "/modelmart.broker.Broker/PresignUpload"
	BrokerPresignDownloadMethod = "/modelmart.broker.Broker/PresignDownload"
)

// BrokerServer is the server-side contract of the broker service.
// Implementations are registered via RegisterBrokerServer.
type BrokerServer interface {
	Ping(ctx context.Context, req *PingRequest) (*PingResponse, error)
	Challenge(ctx context.Context, req *ChallengeRequest) (*ChallengeResponse, error)
	OpenSession(ctx context.Context, req *OpenSessionRequest) (*OpenSessionResponse, error)
	HasPayment(ctx context.Context, req *HasPaymentRequest) (*HasPaymentResponse, error)
	ConfirmPayment(ctx context.Context, req *ConfirmPaymentRequest) (*ConfirmPaymentResponse, error)
	StoreListing(ctx context.Context, req *StoreListingRequest) (*StoreListingResponse, error)
	UpdateListing(ctx context.Context, req *UpdateListingRequest) (*UpdateListingResponse, error)
	DeleteListing(ctx context.Context, req *DeleteListingRequest) (*DeleteListingResponse, error)
	GetListing(ctx context.Context, req *GetListingRequest) (*GetListingResponse, error)
	ListListings(ctx context.Context, req *ListListingsRequest) (*ListListingsResponse, error)
	HasPurchased(ctx context.Context, req *HasPurchasedRequest) (*HasPurchasedResponse, error)
	RecordPurchase(ctx context.Context, req *RecordPurchaseRequest) (*RecordPurchaseResponse, error)
	PresignUpload(ctx context.Context, req *PresignUploadRequest) (*PresignUploadResponse, error)
	PresignDownload(ctx context.Context, req *PresignDownloadRequest) (*PresignDownloadResponse, error)
}

// RegisterBrokerServer registers srv on s under the broker service
// descriptor.
func RegisterBrokerServer(s grpc.ServiceRegistrar, srv BrokerServer) {
	s.RegisterService(&BrokerServiceDesc, srv)
}

// unary builds a grpc.MethodDesc handler for a single broker method.
// The shape mirrors what protoc-gen-go-grpc emits, shared across methods
// since no generator is involved.
func unary[Req any, Resp any](fullMethod string, call func(BrokerServer, context.Context, *Req) (*Resp, error)) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(BrokerServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(BrokerServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// BrokerServiceDesc is the grpc.ServiceDesc for the broker service.
var BrokerServiceDesc = grpc.ServiceDesc{
	ServiceName: BrokerServiceName,
	HandlerType: (*BrokerServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Ping",
			Handler:    unary(BrokerPingMethod, BrokerServer.Ping),
		},
		{
			MethodName: "Challenge",
			Handler:    unary(BrokerChallengeMethod, BrokerServer.Challenge),
		},
		{
			MethodName: "OpenSession",
			Handler:    unary(BrokerOpenSessionMethod, BrokerServer.OpenSession),
		},
		{
			MethodName: "HasPayment",
			Handler:    unary(BrokerHasPaymentMethod, BrokerServer.HasPayment),
		},
		{
			MethodName: "ConfirmPayment",
			Handler:    unary(BrokerConfirmPaymentMethod, BrokerServer.ConfirmPayment),
		},
		{
			MethodName: "StoreListing",
			Handler:    unary(BrokerStoreListingMethod, BrokerServer.StoreListing),
		},
		{
			MethodName: "UpdateListing",
			Handler:    unary(BrokerUpdateListingMethod, BrokerServer.UpdateListing),
		},
		{
			MethodName: "DeleteListing",
			Handler:    unary(BrokerDeleteListingMethod, BrokerServer.DeleteListing),
		},
		{
			MethodName: "GetListing",
			Handler:    unary(BrokerGetListingMethod, BrokerServer.GetListing),
		},
		{
			MethodName: "ListListings",
			Handler:    unary(BrokerListListingsMethod, BrokerServer.ListListings),
		},
		{
			MethodName: "HasPurchased",
			Handler:    unary(BrokerHasPurchasedMethod, BrokerServer.HasPurchased),
		},
		{
			MethodName: "RecordPurchase",
			Handler:    unary(BrokerRecordPurchaseMethod, BrokerServer.RecordPurchase),
		},
		{
			MethodName: "PresignUpload",
			Handler:    unary(BrokerPresignUploadMethod, BrokerServer.PresignUpload),
		},
		{
			MethodName: "PresignDownload",
			Handler:    unary(BrokerPresignDownloadMethod, BrokerServer.PresignDownload),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "broker.cbor",
}

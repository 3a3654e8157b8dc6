package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/modelmart/modelmart/internal/common"
	"github.com/modelmart/modelmart/internal/rpc"
	"github.com/modelmart/modelmart/internal/server/auth"
)

type ctxKey string

const principalKey ctxKey = "principal"

// authRequiredMethods lists the broker methods that demand a valid
// session token. Everything else is public.
var authRequiredMethods = map[string]bool{
	rpc.BrokerConfirmPaymentMethod:  true,
	rpc.BrokerStoreListingMethod:    true,
	rpc.BrokerUpdateListingMethod:   true,
	rpc.BrokerDeleteListingMethod:   true,
	rpc.BrokerRecordPurchaseMethod:  true,
	rpc.BrokerPresignUploadMethod:   true,
	rpc.BrokerPresignDownloadMethod: true,
}

func (s *GRPCServer) sessionTokenInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {

	if authRequiredMethods[info.FullMethod] {

		var token string
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			values := md.Get(common.SessionTokenHeaderName)
			if len(values) > 0 {
				token = values[0]
			}
		}
		if len(token) == 0 {
			return nil, status.Error(codes.Unauthenticated, "missing token")
		}

		principal, err := auth.GetPrincipalFromToken(token, s.jwtSecret)
		if err != nil {
			if errors.Is(err, common.ErrTokenExpired) {
				// clients match this exact message to re-handshake
				return nil, status.Error(codes.Unauthenticated, common.ErrTokenExpired.Error())
			}
			return nil, status.Error(codes.Unauthenticated, "invalid token")
		}

		ctx = context.WithValue(ctx, principalKey, principal)

	}

	return handler(ctx, req)
}

// principalFromContext returns the authenticated caller principal put
// there by the interceptor.
func principalFromContext(ctx context.Context) (string, bool) {
	principal, ok := ctx.Value(principalKey).(string)
	return principal, ok && principal != ""
}

// Package broker is the client side of the marketplace broker service:
// session handshake, payment bookkeeping, listing mutations and queries,
// all over the deterministic CBOR codec.
package broker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/modelmart/modelmart/internal/client/wallet"
	"github.com/modelmart/modelmart/internal/common"
	"github.com/modelmart/modelmart/internal/rpc"
)

type Client struct {
	endpointURL string
	conn        *grpc.ClientConn
	session     *wallet.Session
	timeout     time.Duration

	mu    sync.Mutex
	token string

	// invoke is a seam for tests; defaults to conn.Invoke.
	invoke func(ctx context.Context, method string, req, resp any) error
}

func withSessionToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.SessionTokenHeaderName)
	md.Set(common.SessionTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (c *Client) sessionToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

func (c *Client) setSessionToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// sessionTokenInterceptor attaches the session token to every outgoing
// call and, when the server reports it expired, re-runs the handshake
// once and retries.
func (c *Client) sessionTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {

	if token := c.sessionToken(); token != "" {
		ctx = withSessionToken(ctx, token)
	}

	err := invoker(ctx, method, req, reply, cc, opts...)
	if err == nil {
		return nil
	}

	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	if st.Code() != codes.Unauthenticated {
		return err
	}
	if st.Message() != common.ErrTokenExpired.Error() {
		return err
	}
	if _, ok := c.session.Identity(); !ok {
		return err
	}

	if hErr := c.Handshake(ctx); hErr != nil {
		return err
	}

	ctx = withSessionToken(ctx, c.sessionToken())
	return invoker(ctx, method, req, reply, cc, opts...)
}

func NewClient(endpointURL string, session *wallet.Session, timeout time.Duration) (*Client, error) {
	c := &Client{endpointURL: endpointURL, session: session, timeout: timeout}

	conn, err := grpc.NewClient(endpointURL,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.ForceCodec(rpc.Codec{})),
		grpc.WithUnaryInterceptor(c.sessionTokenInterceptor),
	)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.invoke = func(ctx context.Context, method string, req, resp any) error {
		return conn.Invoke(ctx, method, req, resp)
	}
	return c, nil
}

func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

func (c *Client) call(ctx context.Context, method string, req, resp any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return c.invoke(ctx, method, req, resp)
}

func (c *Client) Ping(ctx context.Context) error {
	resp := &rpc.PingResponse{}
	if err := c.call(ctx, rpc.BrokerPingMethod, &rpc.PingRequest{}, resp); err != nil {
		return c.mapError(err)
	}
	if resp.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}

// Handshake proves possession of the wallet key and stores the resulting
// session token for subsequent calls.
func (c *Client) Handshake(ctx context.Context) error {
	id, ok := c.session.Identity()
	if !ok {
		return ErrNoIdentity
	}

	chResp := &rpc.ChallengeResponse{}
	chReq := &rpc.ChallengeRequest{PublicKeyDER: id.PublicKeyDER()}
	if err := c.call(ctx, rpc.BrokerChallengeMethod, chReq, chResp); err != nil {
		return c.mapError(err)
	}

	sig, err := id.Sign(chResp.Nonce)
	if err != nil {
		return fmt.Errorf("failed to sign challenge: %w", err)
	}

	osResp := &rpc.OpenSessionResponse{}
	osReq := &rpc.OpenSessionRequest{
		PublicKeyDER: id.PublicKeyDER(),
		Nonce:        chResp.Nonce,
		Signature:    sig,
	}
	if err := c.call(ctx, rpc.BrokerOpenSessionMethod, osReq, osResp); err != nil {
		return c.mapError(err)
	}

	if osResp.Principal != id.Principal().String() {
		return fmt.Errorf("broker resolved principal %s, expected %s", osResp.Principal, id.Principal())
	}

	c.setSessionToken(osResp.Token)
	return nil
}

func (c *Client) HasPayment(ctx context.Context, principal string) (bool, uint64, error) {
	resp := &rpc.HasPaymentResponse{}
	req := &rpc.HasPaymentRequest{Principal: principal}
	if err := c.call(ctx, rpc.BrokerHasPaymentMethod, req, resp); err != nil {
		return false, 0, c.mapError(err)
	}
	return resp.Exists, resp.AmountE8s, nil
}

func (c *Client) ConfirmPayment(ctx context.Context, amountE8s uint64) (string, error) {
	resp := &rpc.ConfirmPaymentResponse{}
	req := &rpc.ConfirmPaymentRequest{AmountE8s: amountE8s}
	if err := c.call(ctx, rpc.BrokerConfirmPaymentMethod, req, resp); err != nil {
		return "", c.mapError(err)
	}
	return resp.Receipt, nil
}

func (c *Client) StoreListing(ctx context.Context, draft rpc.ListingDraft, sizeBytes uint64) (string, uint64, error) {
	resp := &rpc.StoreListingResponse{}
	req := &rpc.StoreListingRequest{Draft: draft, SizeBytes: sizeBytes}
	if err := c.call(ctx, rpc.BrokerStoreListingMethod, req, resp); err != nil {
		return "", 0, c.mapError(err)
	}
	return resp.Receipt, resp.Index, nil
}

func (c *Client) UpdateListing(ctx context.Context, index uint64, draft rpc.ListingDraft, sizeBytes uint64) (string, error) {
	resp := &rpc.UpdateListingResponse{}
	req := &rpc.UpdateListingRequest{Index: index, Draft: draft, SizeBytes: sizeBytes}
	if err := c.call(ctx, rpc.BrokerUpdateListingMethod, req, resp); err != nil {
		return "", c.mapError(err)
	}
	return resp.Receipt, nil
}

func (c *Client) DeleteListing(ctx context.Context, index uint64) (string, error) {
	resp := &rpc.DeleteListingResponse{}
	req := &rpc.DeleteListingRequest{Index: index}
	if err := c.call(ctx, rpc.BrokerDeleteListingMethod, req, resp); err != nil {
		return "", c.mapError(err)
	}
	return resp.Receipt, nil
}

func (c *Client) GetListing(ctx context.Context, index uint64) (*rpc.Listing, error) {
	resp := &rpc.GetListingResponse{}
	req := &rpc.GetListingRequest{Index: index}
	if err := c.call(ctx, rpc.BrokerGetListingMethod, req, resp); err != nil {
		return nil, c.mapError(err)
	}
	if resp.Listing == nil {
		return nil, common.ErrorNotFound
	}
	return resp.Listing, nil
}

// ListListings returns all listings, or one uploader's listings when
// uploader is non-empty.
func (c *Client) ListListings(ctx context.Context, uploader string) ([]rpc.Listing, error) {
	resp := &rpc.ListListingsResponse{}
	req := &rpc.ListListingsRequest{Uploader: uploader}
	if err := c.call(ctx, rpc.BrokerListListingsMethod, req, resp); err != nil {
		return nil, c.mapError(err)
	}
	return resp.Listings, nil
}

func (c *Client) HasPurchased(ctx context.Context, principal string, index uint64) (bool, error) {
	resp := &rpc.HasPurchasedResponse{}
	req := &rpc.HasPurchasedRequest{Principal: principal, Index: index}
	if err := c.call(ctx, rpc.BrokerHasPurchasedMethod, req, resp); err != nil {
		return false, c.mapError(err)
	}
	return resp.Purchased, nil
}

func (c *Client) RecordPurchase(ctx context.Context, index uint64, amountE8s uint64) (string, error) {
	resp := &rpc.RecordPurchaseResponse{}
	req := &rpc.RecordPurchaseRequest{Index: index, AmountE8s: amountE8s}
	if err := c.call(ctx, rpc.BrokerRecordPurchaseMethod, req, resp); err != nil {
		return "", c.mapError(err)
	}
	return resp.Receipt, nil
}

func (c *Client) PresignUpload(ctx context.Context) (string, string, error) {
	resp := &rpc.PresignUploadResponse{}
	if err := c.call(ctx, rpc.BrokerPresignUploadMethod, &rpc.PresignUploadRequest{}, resp); err != nil {
		return "", "", c.mapError(err)
	}
	return resp.Key, resp.URL, nil
}

func (c *Client) PresignDownload(ctx context.Context, index uint64) (string, error) {
	resp := &rpc.PresignDownloadResponse{}
	req := &rpc.PresignDownloadRequest{Index: index}
	if err := c.call(ctx, rpc.BrokerPresignDownloadMethod, req, resp); err != nil {
		return "", c.mapError(err)
	}
	return resp.URL, nil
}

func (c *Client) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		if st.Message() == common.ErrorNotUploader.Error() {
			return common.ErrorNotUploader
		}
		return common.ErrorUnauthorized
	case codes.NotFound:
		return common.ErrorNotFound
	case codes.AlreadyExists:
		if st.Message() == common.ErrorAlreadyPurchased.Error() {
			return common.ErrorAlreadyPurchased
		}
		return common.ErrorAlreadyExists
	case codes.FailedPrecondition:
		return common.ErrorNoPayment
	case codes.InvalidArgument:
		return common.ErrorValidation
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}

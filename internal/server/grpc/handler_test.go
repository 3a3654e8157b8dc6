package grpc

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/modelmart/modelmart/internal/common"
	"github.com/modelmart/modelmart/internal/logging"
	"github.com/modelmart/modelmart/internal/rpc"
	"github.com/modelmart/modelmart/internal/server/models"
)

// ---- test logger ----

type nopLogger struct{}

func (n nopLogger) Debug(context.Context, string, ...any) {}
func (n nopLogger) Info(context.Context, string, ...any)  {}
func (n nopLogger) Warn(context.Context, string, ...any)  {}
func (n nopLogger) Error(context.Context, string, ...any) {}
func (n nopLogger) With(...any) logging.Logger            { return n }

// ---- fakes ----

type fakeSessions struct {
	nonce     []byte
	nonceErr  error
	token     string
	principal string
	openErr   error
}

func (f *fakeSessions) Challenge(ctx context.Context, publicKeyDER []byte) ([]byte, error) {
	return f.nonce, f.nonceErr
}
func (f *fakeSessions) OpenSession(ctx context.Context, publicKeyDER, nonce, signature []byte) (string, string, error) {
	return f.token, f.principal, f.openErr
}

type fakeListings struct {
	confirmReceipt string
	confirmErr     error

	hasPayment bool
	amountE8s  uint64
	hasErr     error

	stored     *models.Listing
	storedOut  *models.Listing
	storeErr   error
	updated    *models.Listing
	updateErr  error
	deletedIdx []uint64
	deleteErr  error

	getOut  *models.Listing
	getErr  error
	listOut []models.Listing
	listErr error

	putKey string
	putURL string
	putErr error
}

func (f *fakeListings) ConfirmPayment(ctx context.Context, principal string, amountE8s uint64) (string, error) {
	return f.confirmReceipt, f.confirmErr
}
func (f *fakeListings) HasPayment(ctx context.Context, principal string) (bool, uint64, error) {
	return f.hasPayment, f.amountE8s, f.hasErr
}
func (f *fakeListings) StoreListing(ctx context.Context, uploader string, listing *models.Listing) (*models.Listing, string, error) {
	if f.storeErr != nil {
		return nil, "", f.storeErr
	}
	f.stored = listing
	return f.storedOut, "rcpt", nil
}
func (f *fakeListings) UpdateListing(ctx context.Context, uploader string, listing *models.Listing) (string, error) {
	if f.updateErr != nil {
		return "", f.updateErr
	}
	f.updated = listing
	return "rcpt", nil
}
func (f *fakeListings) DeleteListing(ctx context.Context, uploader string, index uint64) (string, error) {
	if f.deleteErr != nil {
		return "", f.deleteErr
	}
	f.deletedIdx = append(f.deletedIdx, index)
	return "rcpt", nil
}
func (f *fakeListings) GetListing(ctx context.Context, index uint64) (*models.Listing, error) {
	return f.getOut, f.getErr
}
func (f *fakeListings) ListListings(ctx context.Context, uploader string) ([]models.Listing, error) {
	return f.listOut, f.listErr
}
func (f *fakeListings) PresignUpload(ctx context.Context) (string, string, error) {
	return f.putKey, f.putURL, f.putErr
}

type fakePurchases struct {
	recordID  string
	recordErr error

	purchased bool
	hasErr    error

	url    string
	urlErr error
}

func (f *fakePurchases) RecordPurchase(ctx context.Context, buyer string, index uint64, amountE8s uint64) (string, error) {
	return f.recordID, f.recordErr
}
func (f *fakePurchases) HasPurchased(ctx context.Context, buyer string, index uint64) (bool, error) {
	return f.purchased, f.hasErr
}
func (f *fakePurchases) PresignDownload(ctx context.Context, caller string, index uint64) (string, error) {
	return f.url, f.urlErr
}

// ---- helpers ----

func newServer(ss SessionService, ls ListingService, ps PurchaseService) *GRPCServer {
	return &GRPCServer{
		address:   "127.0.0.1:0",
		sessions:  ss,
		listings:  ls,
		purchases: ps,
		logger:    nopLogger{},
		jwtSecret: []byte("k"),
	}
}

func ctxWithPrincipal(principal string) context.Context {
	return context.WithValue(context.Background(), principalKey, principal)
}

func testDraft() rpc.ListingDraft {
	return rpc.ListingDraft{
		Name:            "resnet-50",
		Category:        "image",
		Price:           "1.5",
		WalletPrincipal: "2vxsx-fae",
	}
}

// ---- tests ----

func TestPing_OK(t *testing.T) {
	s := newServer(&fakeSessions{}, &fakeListings{}, &fakePurchases{})
	resp, err := s.Ping(context.Background(), &rpc.PingRequest{})
	if err != nil {
		t.Fatalf("Ping error: %v", err)
	}
	if resp.Status != "OK" {
		t.Fatalf("unexpected status: %q", resp.Status)
	}
}

func TestChallengeAndOpenSession(t *testing.T) {
	ss := &fakeSessions{nonce: []byte("n"), token: "tok", principal: "p1"}
	s := newServer(ss, &fakeListings{}, &fakePurchases{})

	cr, err := s.Challenge(context.Background(), &rpc.ChallengeRequest{PublicKeyDER: []byte("der")})
	if err != nil {
		t.Fatalf("Challenge error: %v", err)
	}
	if string(cr.Nonce) != "n" {
		t.Fatalf("unexpected nonce: %q", cr.Nonce)
	}

	or, err := s.OpenSession(context.Background(), &rpc.OpenSessionRequest{})
	if err != nil {
		t.Fatalf("OpenSession error: %v", err)
	}
	if or.Token != "tok" || or.Principal != "p1" {
		t.Fatalf("unexpected response: %+v", or)
	}
}

func TestOpenSession_Unauthorized(t *testing.T) {
	s := newServer(&fakeSessions{openErr: common.ErrorUnauthorized}, &fakeListings{}, &fakePurchases{})
	_, err := s.OpenSession(context.Background(), &rpc.OpenSessionRequest{})
	if status.Code(err) != codes.PermissionDenied {
		t.Fatalf("want PermissionDenied, got %v", status.Code(err))
	}
}

func TestHasPayment_OK(t *testing.T) {
	s := newServer(&fakeSessions{}, &fakeListings{hasPayment: true, amountE8s: 40_000}, &fakePurchases{})
	resp, err := s.HasPayment(context.Background(), &rpc.HasPaymentRequest{Principal: "p1"})
	if err != nil {
		t.Fatalf("HasPayment error: %v", err)
	}
	if !resp.Exists || resp.AmountE8s != 40_000 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestConfirmPayment_RequiresPrincipal(t *testing.T) {
	s := newServer(&fakeSessions{}, &fakeListings{confirmReceipt: "rcpt"}, &fakePurchases{})

	_, err := s.ConfirmPayment(context.Background(), &rpc.ConfirmPaymentRequest{AmountE8s: 1})
	if status.Code(err) != codes.Unauthenticated {
		t.Fatalf("want Unauthenticated, got %v", status.Code(err))
	}

	resp, err := s.ConfirmPayment(ctxWithPrincipal("p1"), &rpc.ConfirmPaymentRequest{AmountE8s: 1})
	if err != nil {
		t.Fatalf("ConfirmPayment error: %v", err)
	}
	if resp.Receipt != "rcpt" {
		t.Fatalf("unexpected receipt: %q", resp.Receipt)
	}
}

func TestStoreListing_OK(t *testing.T) {
	ls := &fakeListings{storedOut: &models.Listing{Index: 42}}
	s := newServer(&fakeSessions{}, ls, &fakePurchases{})

	resp, err := s.StoreListing(ctxWithPrincipal("p1"), &rpc.StoreListingRequest{
		Draft:     testDraft(),
		SizeBytes: 2000,
	})
	if err != nil {
		t.Fatalf("StoreListing error: %v", err)
	}
	if resp.Index != 42 {
		t.Fatalf("unexpected index: %d", resp.Index)
	}
	if !ls.stored.Price.Equal(decimal.RequireFromString("1.5")) {
		t.Fatalf("price not converted: %v", ls.stored.Price)
	}
	if ls.stored.SizeBytes != 2000 {
		t.Fatalf("size not carried: %d", ls.stored.SizeBytes)
	}
}

func TestStoreListing_BadPrice(t *testing.T) {
	s := newServer(&fakeSessions{}, &fakeListings{}, &fakePurchases{})

	draft := testDraft()
	draft.Price = "not-a-number"
	_, err := s.StoreListing(ctxWithPrincipal("p1"), &rpc.StoreListingRequest{Draft: draft})
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("want InvalidArgument, got %v", status.Code(err))
	}
}

func TestStoreListing_NoPayment(t *testing.T) {
	s := newServer(&fakeSessions{}, &fakeListings{storeErr: common.ErrorNoPayment}, &fakePurchases{})

	_, err := s.StoreListing(ctxWithPrincipal("p1"), &rpc.StoreListingRequest{Draft: testDraft()})
	if status.Code(err) != codes.FailedPrecondition {
		t.Fatalf("want FailedPrecondition, got %v", status.Code(err))
	}
	if status.Convert(err).Message() != common.ErrorNoPayment.Error() {
		t.Fatalf("unexpected message: %q", status.Convert(err).Message())
	}
}

func TestUpdateListing_NotUploaderMessage(t *testing.T) {
	s := newServer(&fakeSessions{}, &fakeListings{updateErr: common.ErrorNotUploader}, &fakePurchases{})

	_, err := s.UpdateListing(ctxWithPrincipal("p2"), &rpc.UpdateListingRequest{Index: 7, Draft: testDraft()})
	if status.Code(err) != codes.PermissionDenied {
		t.Fatalf("want PermissionDenied, got %v", status.Code(err))
	}
	if status.Convert(err).Message() != common.ErrorNotUploader.Error() {
		t.Fatalf("unexpected message: %q", status.Convert(err).Message())
	}
}

func TestDeleteListing_OK(t *testing.T) {
	ls := &fakeListings{}
	s := newServer(&fakeSessions{}, ls, &fakePurchases{})

	resp, err := s.DeleteListing(ctxWithPrincipal("p1"), &rpc.DeleteListingRequest{Index: 7})
	if err != nil {
		t.Fatalf("DeleteListing error: %v", err)
	}
	if resp.Receipt == "" {
		t.Fatalf("empty receipt")
	}
	if len(ls.deletedIdx) != 1 || ls.deletedIdx[0] != 7 {
		t.Fatalf("unexpected deletes: %v", ls.deletedIdx)
	}
}

func TestGetListing_NotFoundReturnsEmpty(t *testing.T) {
	s := newServer(&fakeSessions{}, &fakeListings{getErr: common.ErrorNotFound}, &fakePurchases{})

	resp, err := s.GetListing(context.Background(), &rpc.GetListingRequest{Index: 99})
	if err != nil {
		t.Fatalf("GetListing error: %v", err)
	}
	if resp.Listing != nil {
		t.Fatalf("expected nil listing, got %+v", resp.Listing)
	}
}

func TestGetListing_OK(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s := newServer(&fakeSessions{}, &fakeListings{getOut: &models.Listing{
		Index:     7,
		Name:      "resnet-50",
		Price:     decimal.RequireFromString("1.5"),
		CreatedAt: created,
	}}, &fakePurchases{})

	resp, err := s.GetListing(context.Background(), &rpc.GetListingRequest{Index: 7})
	if err != nil {
		t.Fatalf("GetListing error: %v", err)
	}
	if resp.Listing == nil || resp.Listing.Index != 7 || resp.Listing.Price != "1.5" {
		t.Fatalf("unexpected listing: %+v", resp.Listing)
	}
	if resp.Listing.CreatedAtUnix != created.Unix() {
		t.Fatalf("created_at mismatch: %d", resp.Listing.CreatedAtUnix)
	}
}

func TestListListings_OK(t *testing.T) {
	s := newServer(&fakeSessions{}, &fakeListings{listOut: []models.Listing{
		{Index: 1}, {Index: 2},
	}}, &fakePurchases{})

	resp, err := s.ListListings(context.Background(), &rpc.ListListingsRequest{})
	if err != nil {
		t.Fatalf("ListListings error: %v", err)
	}
	if len(resp.Listings) != 2 {
		t.Fatalf("unexpected count: %d", len(resp.Listings))
	}
}

func TestRecordPurchase_DuplicateMessage(t *testing.T) {
	s := newServer(&fakeSessions{}, &fakeListings{}, &fakePurchases{recordErr: common.ErrorAlreadyPurchased})

	_, err := s.RecordPurchase(ctxWithPrincipal("p1"), &rpc.RecordPurchaseRequest{Index: 7, AmountE8s: 1})
	if status.Code(err) != codes.AlreadyExists {
		t.Fatalf("want AlreadyExists, got %v", status.Code(err))
	}
	if status.Convert(err).Message() != common.ErrorAlreadyPurchased.Error() {
		t.Fatalf("unexpected message: %q", status.Convert(err).Message())
	}
}

func TestHasPurchased_OK(t *testing.T) {
	s := newServer(&fakeSessions{}, &fakeListings{}, &fakePurchases{purchased: true})

	resp, err := s.HasPurchased(context.Background(), &rpc.HasPurchasedRequest{Principal: "p1", Index: 7})
	if err != nil {
		t.Fatalf("HasPurchased error: %v", err)
	}
	if !resp.Purchased {
		t.Fatalf("expected purchased")
	}
}

func TestPresignUpload_OK(t *testing.T) {
	s := newServer(&fakeSessions{}, &fakeListings{putKey: "listings/x", putURL: "http://signed-put"}, &fakePurchases{})

	resp, err := s.PresignUpload(ctxWithPrincipal("p1"), &rpc.PresignUploadRequest{})
	if err != nil {
		t.Fatalf("PresignUpload error: %v", err)
	}
	if resp.Key != "listings/x" || resp.URL != "http://signed-put" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestPresignDownload_Unauthorized(t *testing.T) {
	s := newServer(&fakeSessions{}, &fakeListings{}, &fakePurchases{urlErr: common.ErrorUnauthorized})

	_, err := s.PresignDownload(ctxWithPrincipal("p1"), &rpc.PresignDownloadRequest{Index: 7})
	if status.Code(err) != codes.PermissionDenied {
		t.Fatalf("want PermissionDenied, got %v", status.Code(err))
	}
}

func TestMapError_Internal(t *testing.T) {
	s := newServer(&fakeSessions{}, &fakeListings{listErr: errors.New("db down")}, &fakePurchases{})

	_, err := s.ListListings(context.Background(), &rpc.ListListingsRequest{})
	if status.Code(err) != codes.Internal {
		t.Fatalf("want Internal, got %v", status.Code(err))
	}
	if status.Convert(err).Message() != "internal error" {
		t.Fatalf("internal details leaked: %q", status.Convert(err).Message())
	}
}

package services

import (
	"context"
	"errors"
	"testing"

	"github.com/modelmart/modelmart/internal/common"
	"github.com/modelmart/modelmart/internal/server/models"
)

const buyerPrincipal = "aaaaa-aa"

func newPurchaseService(t *testing.T, rm *fakeRepoManager, store ArtifactStore) *PurchaseService {
	t.Helper()
	if store == nil {
		store = &fakeArtifacts{}
	}
	return NewPurchaseService(newSQLMockDB(t), rm, store)
}

func TestRecordPurchase_Success(t *testing.T) {
	rm := &fakeRepoManager{
		listings:  &fakeListingsRepo{getOut: &models.Listing{Index: 7}},
		purchases: &fakePurchasesRepo{},
	}
	s := newPurchaseService(t, rm, nil)

	id, err := s.RecordPurchase(context.Background(), buyerPrincipal, 7, 150_000_000)
	if err != nil {
		t.Fatalf("RecordPurchase error: %v", err)
	}
	if id == "" {
		t.Fatalf("empty purchase id")
	}
	if len(rm.purchases.created) != 1 {
		t.Fatalf("expected 1 purchase, got %d", len(rm.purchases.created))
	}
	p := rm.purchases.created[0]
	if p.Buyer != buyerPrincipal || p.ListingIndex != 7 || p.AmountE8s != 150_000_000 {
		t.Fatalf("unexpected purchase: %+v", p)
	}
}

func TestRecordPurchase_Duplicate(t *testing.T) {
	rm := &fakeRepoManager{
		listings:  &fakeListingsRepo{getOut: &models.Listing{Index: 7}},
		purchases: &fakePurchasesRepo{createErr: common.ErrorAlreadyPurchased},
	}
	s := newPurchaseService(t, rm, nil)

	_, err := s.RecordPurchase(context.Background(), buyerPrincipal, 7, 1)
	if !errors.Is(err, common.ErrorAlreadyPurchased) {
		t.Fatalf("expected ErrorAlreadyPurchased, got %v", err)
	}
}

func TestRecordPurchase_UnknownListing(t *testing.T) {
	rm := &fakeRepoManager{
		listings:  &fakeListingsRepo{getErr: common.ErrorNotFound},
		purchases: &fakePurchasesRepo{},
	}
	s := newPurchaseService(t, rm, nil)

	_, err := s.RecordPurchase(context.Background(), buyerPrincipal, 99, 1)
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
	if len(rm.purchases.created) != 0 {
		t.Fatalf("purchase must not be recorded")
	}
}

func TestHasPurchased(t *testing.T) {
	rm := &fakeRepoManager{purchases: &fakePurchasesRepo{existsOut: true}}
	s := newPurchaseService(t, rm, nil)

	ok, err := s.HasPurchased(context.Background(), buyerPrincipal, 7)
	if err != nil {
		t.Fatalf("HasPurchased error: %v", err)
	}
	if !ok {
		t.Fatalf("expected purchased")
	}
}

func TestPresignDownload_Buyer(t *testing.T) {
	rm := &fakeRepoManager{
		listings:  &fakeListingsRepo{getOut: &models.Listing{Index: 7, Uploader: uploaderPrincipal, ArtifactKey: "k"}},
		purchases: &fakePurchasesRepo{existsOut: true},
	}
	s := newPurchaseService(t, rm, &fakeArtifacts{getURL: "http://signed-get"})

	url, err := s.PresignDownload(context.Background(), buyerPrincipal, 7)
	if err != nil {
		t.Fatalf("PresignDownload error: %v", err)
	}
	if url != "http://signed-get" {
		t.Fatalf("unexpected url %q", url)
	}
}

func TestPresignDownload_UploaderWithoutPurchase(t *testing.T) {
	rm := &fakeRepoManager{
		listings:  &fakeListingsRepo{getOut: &models.Listing{Index: 7, Uploader: uploaderPrincipal, ArtifactKey: "k"}},
		purchases: &fakePurchasesRepo{existsOut: false},
	}
	s := newPurchaseService(t, rm, &fakeArtifacts{getURL: "http://signed-get"})

	if _, err := s.PresignDownload(context.Background(), uploaderPrincipal, 7); err != nil {
		t.Fatalf("uploader must be able to download: %v", err)
	}
}

func TestPresignDownload_NotEntitled(t *testing.T) {
	rm := &fakeRepoManager{
		listings:  &fakeListingsRepo{getOut: &models.Listing{Index: 7, Uploader: uploaderPrincipal, ArtifactKey: "k"}},
		purchases: &fakePurchasesRepo{existsOut: false},
	}
	s := newPurchaseService(t, rm, nil)

	_, err := s.PresignDownload(context.Background(), buyerPrincipal, 7)
	if !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("expected ErrorUnauthorized, got %v", err)
	}
}

func TestPresignDownload_NoArtifact(t *testing.T) {
	rm := &fakeRepoManager{
		listings:  &fakeListingsRepo{getOut: &models.Listing{Index: 7, Uploader: uploaderPrincipal}},
		purchases: &fakePurchasesRepo{existsOut: true},
	}
	s := newPurchaseService(t, rm, nil)

	_, err := s.PresignDownload(context.Background(), buyerPrincipal, 7)
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

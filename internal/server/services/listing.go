package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/modelmart/modelmart/internal/common"
	"github.com/modelmart/modelmart/internal/icp"
	"github.com/modelmart/modelmart/internal/logging"
	"github.com/modelmart/modelmart/internal/server/models"
	"github.com/modelmart/modelmart/internal/server/repositories/repomanager"
)

// ArtifactStore abstracts the object storage backend for model
// artifacts.
type ArtifactStore interface {
	GetPresignedPutUrl(ctx context.Context) (string, string, error)
	GetPresignedGetUrl(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

// Listing categories accepted by the marketplace.
var listingCategories = map[string]bool{
	"image": true,
	"text":  true,
	"audio": true,
}

// ListingService implements the paid listing mutations and the public
// catalogue queries. Mutations require a confirmed payment record for
// the caller; update and delete additionally require ownership.
type ListingService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	artifacts   ArtifactStore
	logger      logging.Logger
}

// NewListingService constructs a ListingService.
func NewListingService(db *sql.DB, m repomanager.RepositoryManager, artifacts ArtifactStore, logger logging.Logger) *ListingService {
	return &ListingService{
		db:          db,
		repomanager: m,
		artifacts:   artifacts,
		logger:      logger,
	}
}

// ConfirmPayment records a confirmed publishing payment for the
// principal and returns a receipt. Re-confirming replaces the record,
// so the operation is idempotent.
func (s *ListingService) ConfirmPayment(ctx context.Context, principal string, amountE8s uint64) (string, error) {
	repo := s.repomanager.Payments(s.db)

	err := repo.Upsert(ctx, &models.PaymentRecord{Principal: principal, AmountE8s: amountE8s})
	if err != nil {
		return "", fmt.Errorf("error confirming payment: %w", err)
	}

	return uuid.New().String(), nil
}

// HasPayment reports whether a confirmed payment record exists for the
// principal, and its amount.
func (s *ListingService) HasPayment(ctx context.Context, principal string) (bool, uint64, error) {
	repo := s.repomanager.Payments(s.db)

	payment, err := repo.GetByPrincipal(ctx, principal)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return false, 0, nil
		}
		return false, 0, fmt.Errorf("error checking payment: %w", err)
	}

	return true, payment.AmountE8s, nil
}

// StoreListing creates a listing for the uploader. The caller must hold
// a confirmed payment record.
func (s *ListingService) StoreListing(ctx context.Context, uploader string, listing *models.Listing) (*models.Listing, string, error) {
	if err := validateListing(listing); err != nil {
		return nil, "", err
	}
	if err := s.requirePayment(ctx, uploader); err != nil {
		return nil, "", err
	}

	listing.Uploader = uploader

	repo := s.repomanager.Listings(s.db)
	created, err := repo.Create(ctx, listing)
	if err != nil {
		return nil, "", fmt.Errorf("error creating listing: %w", err)
	}

	return created, uuid.New().String(), nil
}

// UpdateListing replaces the mutable fields of the uploader's listing.
func (s *ListingService) UpdateListing(ctx context.Context, uploader string, listing *models.Listing) (string, error) {
	if err := validateListing(listing); err != nil {
		return "", err
	}

	repo := s.repomanager.Listings(s.db)

	current, err := repo.GetByIndex(ctx, listing.Index)
	if err != nil {
		return "", err
	}
	if current.Uploader != uploader {
		return "", common.ErrorNotUploader
	}

	if err := s.requirePayment(ctx, uploader); err != nil {
		return "", err
	}

	listing.Uploader = current.Uploader
	if err := repo.Update(ctx, listing); err != nil {
		return "", fmt.Errorf("error updating listing: %w", err)
	}

	return uuid.New().String(), nil
}

// DeleteListing removes the uploader's listing and releases its stored
// artifact, if any.
func (s *ListingService) DeleteListing(ctx context.Context, uploader string, index uint64) (string, error) {
	repo := s.repomanager.Listings(s.db)

	current, err := repo.GetByIndex(ctx, index)
	if err != nil {
		return "", err
	}
	if current.Uploader != uploader {
		return "", common.ErrorNotUploader
	}

	if err := s.requirePayment(ctx, uploader); err != nil {
		return "", err
	}

	if err := repo.Delete(ctx, index); err != nil {
		return "", fmt.Errorf("error deleting listing: %w", err)
	}

	if current.ArtifactKey != "" {
		if err := s.artifacts.Delete(ctx, current.ArtifactKey); err != nil {
			s.logger.Warn(ctx, "failed to release artifact", "key", current.ArtifactKey, "error", err)
		}
	}

	return uuid.New().String(), nil
}

// GetListing returns the listing at index.
func (s *ListingService) GetListing(ctx context.Context, index uint64) (*models.Listing, error) {
	repo := s.repomanager.Listings(s.db)
	return repo.GetByIndex(ctx, index)
}

// ListListings returns the catalogue, optionally filtered to one
// uploader.
func (s *ListingService) ListListings(ctx context.Context, uploader string) ([]models.Listing, error) {
	repo := s.repomanager.Listings(s.db)
	if uploader == "" {
		return repo.List(ctx)
	}
	return repo.ListByUploader(ctx, uploader)
}

// PresignUpload returns a fresh artifact key and a presigned PUT URL.
func (s *ListingService) PresignUpload(ctx context.Context) (string, string, error) {
	return s.artifacts.GetPresignedPutUrl(ctx)
}

func (s *ListingService) requirePayment(ctx context.Context, principal string) error {
	repo := s.repomanager.Payments(s.db)

	_, err := repo.GetByPrincipal(ctx, principal)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNoPayment
		}
		return fmt.Errorf("error checking payment: %w", err)
	}
	return nil
}

func validateListing(listing *models.Listing) error {
	if listing.Name == "" {
		return common.ErrorValidation
	}
	if !listingCategories[listing.Category] {
		return common.ErrorValidation
	}
	if listing.Price.IsNegative() {
		return common.ErrorValidation
	}
	if _, err := icp.FromText(listing.WalletPrincipal); err != nil {
		return common.ErrorValidation
	}
	return nil
}

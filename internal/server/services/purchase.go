package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/modelmart/modelmart/internal/common"
	"github.com/modelmart/modelmart/internal/server/models"
	"github.com/modelmart/modelmart/internal/server/repositories/repomanager"
)

// PurchaseService records purchases and answers entitlement queries.
type PurchaseService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	artifacts   ArtifactStore
}

// NewPurchaseService constructs a PurchaseService.
func NewPurchaseService(db *sql.DB, m repomanager.RepositoryManager, artifacts ArtifactStore) *PurchaseService {
	return &PurchaseService{
		db:          db,
		repomanager: m,
		artifacts:   artifacts,
	}
}

// RecordPurchase grants the buyer access to the listing. A repeated
// purchase of the same listing yields common.ErrorAlreadyPurchased; the
// insert is a single conditional statement, so at most one purchase per
// (buyer, listing) survives concurrent calls.
func (s *PurchaseService) RecordPurchase(ctx context.Context, buyer string, index uint64, amountE8s uint64) (string, error) {
	listingRepo := s.repomanager.Listings(s.db)
	if _, err := listingRepo.GetByIndex(ctx, index); err != nil {
		return "", err
	}

	purchase := &models.Purchase{
		ID:           uuid.New().String(),
		Buyer:        buyer,
		ListingIndex: index,
		AmountE8s:    amountE8s,
	}

	repo := s.repomanager.Purchases(s.db)
	if err := repo.Create(ctx, purchase); err != nil {
		if errors.Is(err, common.ErrorAlreadyPurchased) {
			return "", err
		}
		return "", fmt.Errorf("error recording purchase: %w", err)
	}

	return purchase.ID, nil
}

// HasPurchased reports whether the buyer owns the listing. The query has
// no side effects.
func (s *PurchaseService) HasPurchased(ctx context.Context, buyer string, index uint64) (bool, error) {
	repo := s.repomanager.Purchases(s.db)
	return repo.Exists(ctx, buyer, index)
}

// PresignDownload returns a presigned GET URL for the listing's
// artifact. Only the uploader and buyers who purchased the listing may
// download it.
func (s *PurchaseService) PresignDownload(ctx context.Context, caller string, index uint64) (string, error) {
	listingRepo := s.repomanager.Listings(s.db)

	listing, err := listingRepo.GetByIndex(ctx, index)
	if err != nil {
		return "", err
	}
	if listing.ArtifactKey == "" {
		return "", common.ErrorNotFound
	}

	if listing.Uploader != caller {
		purchased, err := s.repomanager.Purchases(s.db).Exists(ctx, caller, index)
		if err != nil {
			return "", fmt.Errorf("error checking purchase: %w", err)
		}
		if !purchased {
			return "", common.ErrorUnauthorized
		}
	}

	return s.artifacts.GetPresignedGetUrl(ctx, listing.ArtifactKey)
}

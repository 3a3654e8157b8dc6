// Package models holds the broker's database entities.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Listing is a marketplace entry. SizeBytes is the deterministic encoded
// size of the draft it was last paid for; delete pricing reads it back.
type Listing struct {
	Index           uint64
	Name            string
	Description     string
	Category        string
	Price           decimal.Decimal
	APIEndpoint     string
	Image           string
	SizeBytes       uint64
	WalletPrincipal string
	Uploader        string
	ArtifactKey     string
	CreatedAt       time.Time
}

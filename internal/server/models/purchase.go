package models

import "time"

// Purchase grants a buyer access to one listing. The (Buyer, ListingIndex)
// pair is unique.
type Purchase struct {
	ID           string
	Buyer        string
	ListingIndex uint64
	AmountE8s    uint64
	PurchasedAt  time.Time
}

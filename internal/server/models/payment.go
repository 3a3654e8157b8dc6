package models

import "time"

// PaymentRecord is a confirmed publishing payment, keyed by principal.
// Records are upserted and survive use so confirmation stays idempotent.
type PaymentRecord struct {
	Principal   string
	AmountE8s   uint64
	ConfirmedAt time.Time
}

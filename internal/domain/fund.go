package domain

import (
	"encoding/json"
	"time"
)

// AnonymousDonorName is recorded when the donor declines to share a name.
const AnonymousDonorName = "Anonymous Donor"

// Fund is the ledger entry for one completed donation. Uniqueness is keyed
// on PaymentIntentID; the database is the source of truth for duplicates.
type Fund struct {
	ID              string
	UserEmail       string
	UserName        string
	AmountMinor     int64
	Currency        string
	PaymentIntentID string
	Status          string
	Metadata        json.RawMessage
	CreatedAt       time.Time
}

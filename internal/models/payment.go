package models

import (
	"time"
)

// PaymentKind classifies a payment record.
type PaymentKind string

const (
	PaymentDeposit PaymentKind = "deposit"
)

// PaymentStatus tracks the escrow provider's view of a payment.
type PaymentStatus string

const (
	PaymentInitiated PaymentStatus = "initiated"
	PaymentConfirmed PaymentStatus = "confirmed"
	PaymentFailed    PaymentStatus = "failed"
)

// Payment is a record appended to the payments collection when a
// reservation is initiated. Settlement is the escrow provider's job.
type Payment struct {
	ID           string        `json:"id"`
	ListingID    string        `json:"listing_id"`
	Kind         PaymentKind   `json:"kind"`
	Amount       float64       `json:"amount"`
	CurrencyCode string        `json:"currency_code"`
	Status       PaymentStatus `json:"status"`
	CreatedAt    time.Time     `json:"created_at"`
}

// Transaction records the escrow provider's settlement outcome for a payment.
type Transaction struct {
	ID           string        `json:"id"`
	PaymentID    string        `json:"payment_id"`
	ListingID    string        `json:"listing_id"`
	Amount       float64       `json:"amount"`
	CurrencyCode string        `json:"currency_code"`
	Status       PaymentStatus `json:"status"`
	Reference    string        `json:"reference,omitempty"` // provider-side reference
	CreatedAt    time.Time     `json:"created_at"`
}

// PaymentIntent is the descriptor handed to the external escrow provider.
// It does not mark the listing as reserved; that is the provider's
// confirmation callback's effect.
type PaymentIntent struct {
	PaymentID    string  `json:"payment_id"`
	ListingID    string  `json:"listing_id"`
	ListingTitle string  `json:"listing_title"`
	Amount       float64 `json:"amount"`
	CurrencyCode string  `json:"currency_code"`
	Rate         float64 `json:"rate"`
}

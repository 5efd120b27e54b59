package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/Alilen9/renthub-sub001/internal/models"
	"github.com/Alilen9/renthub-sub001/internal/store"
)

// DefaultDepositRate is the fraction of the listing price required up front
// to reserve it, unless overridden by configuration.
const DefaultDepositRate = 0.10

// ComputeDeposit returns price*rate rounded to the currency's minor-unit
// precision (two decimal places).
func ComputeDeposit(price, rate float64) float64 {
	return math.Round(price*rate*100) / 100
}

// IReservationService defines the interface for reservation operations.
type IReservationService interface {
	// InitiateReservation computes the deposit for a listing, records a
	// payment and returns the intent descriptor for the escrow provider.
	// It does not mark the listing as reserved; that is an effect of the
	// provider's confirmation.
	InitiateReservation(ctx context.Context, listingID string) (*models.PaymentIntent, error)

	// RecordTransaction appends the escrow provider's settlement outcome
	// for a previously initiated payment to the transactions collection.
	RecordTransaction(ctx context.Context, paymentID string, status models.PaymentStatus, reference string) (*models.Transaction, error)
}

// reservationService implements IReservationService.
type reservationService struct {
	store       store.Store
	listings    IListingService
	depositRate float64
}

// NewReservationService creates a new ReservationService. A non-positive
// rate falls back to DefaultDepositRate.
func NewReservationService(st store.Store, listings IListingService, depositRate float64) IReservationService {
	if depositRate <= 0 {
		depositRate = DefaultDepositRate
	}
	return &reservationService{store: st, listings: listings, depositRate: depositRate}
}

func (s *reservationService) InitiateReservation(ctx context.Context, listingID string) (*models.PaymentIntent, error) {
	listing, err := s.listings.FindByID(ctx, listingID)
	if err != nil {
		return nil, err
	}

	deposit := ComputeDeposit(listing.Price.Value, s.depositRate)
	payment := models.Payment{
		ID:           uuid.NewString(),
		ListingID:    listing.ID,
		Kind:         models.PaymentDeposit,
		Amount:       deposit,
		CurrencyCode: listing.Price.CurrencyCode,
		Status:       models.PaymentInitiated,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.Append(ctx, store.CollectionPayments, payment); err != nil {
		return nil, fmt.Errorf("failed to persist payment %s: %w", payment.ID, err)
	}

	return &models.PaymentIntent{
		PaymentID:    payment.ID,
		ListingID:    listing.ID,
		ListingTitle: listing.Title,
		Amount:       deposit,
		CurrencyCode: payment.CurrencyCode,
		Rate:         s.depositRate,
	}, nil
}

func (s *reservationService) RecordTransaction(ctx context.Context, paymentID string, status models.PaymentStatus, reference string) (*models.Transaction, error) {
	payment, err := s.findPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	tx := models.Transaction{
		ID:           uuid.NewString(),
		PaymentID:    payment.ID,
		ListingID:    payment.ListingID,
		Amount:       payment.Amount,
		CurrencyCode: payment.CurrencyCode,
		Status:       status,
		Reference:    reference,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.Append(ctx, store.CollectionTransactions, tx); err != nil {
		return nil, fmt.Errorf("failed to persist transaction %s: %w", tx.ID, err)
	}
	return &tx, nil
}

func (s *reservationService) findPayment(ctx context.Context, paymentID string) (*models.Payment, error) {
	raws, err := s.store.GetCollection(ctx, store.CollectionPayments)
	if err != nil {
		return nil, err
	}
	for _, raw := range raws {
		var p models.Payment
		if err := json.Unmarshal(raw, &p); err != nil {
			continue
		}
		if p.ID == paymentID {
			return &p, nil
		}
	}
	return nil, &models.NotFoundError{Entity: "payment", ID: paymentID}
}

package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alilen9/renthub-sub001/internal/models"
	"github.com/Alilen9/renthub-sub001/internal/store"
)

func TestComputeDeposit(t *testing.T) {
	assert.Equal(t, 15000.0, ComputeDeposit(150000, 0.10))
	assert.Equal(t, 8000.0, ComputeDeposit(80000, 0.10))
	assert.Equal(t, 0.0, ComputeDeposit(0, 0.10))

	// Rounded to the currency's minor unit.
	assert.Equal(t, 3333.33, ComputeDeposit(33333.33, 0.10))
	assert.Equal(t, 0.13, ComputeDeposit(1.25, 0.10))
}

func newReservationFixture(t *testing.T) (store.Store, IListingService, IReservationService) {
	t.Helper()
	st := store.NewMemoryStore()
	listings := NewListingService(st, "KES")
	reservations := NewReservationService(st, listings, DefaultDepositRate)
	return st, listings, reservations
}

func TestInitiateReservation(t *testing.T) {
	st, listings, reservations := newReservationFixture(t)
	ctx := context.Background()

	d := publishableDraft()
	d.Price = &models.Price{Value: 150000}
	listing, err := listings.Publish(ctx, d)
	require.NoError(t, err)

	intent, err := reservations.InitiateReservation(ctx, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, 15000.0, intent.Amount)
	assert.Equal(t, listing.ID, intent.ListingID)
	assert.Equal(t, "Studio", intent.ListingTitle)
	assert.Equal(t, "KES", intent.CurrencyCode)
	assert.Equal(t, 0.10, intent.Rate)
	require.NotEmpty(t, intent.PaymentID)

	// The payment record landed in the payments collection.
	raws, err := st.GetCollection(ctx, store.CollectionPayments)
	require.NoError(t, err)
	require.Len(t, raws, 1)
	var payment models.Payment
	require.NoError(t, json.Unmarshal(raws[0], &payment))
	assert.Equal(t, intent.PaymentID, payment.ID)
	assert.Equal(t, models.PaymentInitiated, payment.Status)
	assert.Equal(t, models.PaymentDeposit, payment.Kind)
}

func TestInitiateReservation_ListingNotFound(t *testing.T) {
	_, _, reservations := newReservationFixture(t)

	_, err := reservations.InitiateReservation(context.Background(), "missing")
	var nf *models.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "listing", nf.Entity)
}

func TestRecordTransaction(t *testing.T) {
	st, listings, reservations := newReservationFixture(t)
	ctx := context.Background()

	listing, err := listings.Publish(ctx, publishableDraft())
	require.NoError(t, err)
	intent, err := reservations.InitiateReservation(ctx, listing.ID)
	require.NoError(t, err)

	tx, err := reservations.RecordTransaction(ctx, intent.PaymentID, models.PaymentConfirmed, "escrow-ref-123")
	require.NoError(t, err)
	assert.Equal(t, intent.PaymentID, tx.PaymentID)
	assert.Equal(t, listing.ID, tx.ListingID)
	assert.Equal(t, intent.Amount, tx.Amount)
	assert.Equal(t, models.PaymentConfirmed, tx.Status)

	raws, err := st.GetCollection(ctx, store.CollectionTransactions)
	require.NoError(t, err)
	assert.Len(t, raws, 1)
}

func TestRecordTransaction_PaymentNotFound(t *testing.T) {
	_, _, reservations := newReservationFixture(t)

	_, err := reservations.RecordTransaction(context.Background(), "missing", models.PaymentConfirmed, "")
	var nf *models.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "payment", nf.Entity)
}

func TestNewReservationService_DefaultsRate(t *testing.T) {
	st := store.NewMemoryStore()
	listings := NewListingService(st, "KES")
	reservations := NewReservationService(st, listings, 0)
	ctx := context.Background()

	d := publishableDraft()
	d.Price = &models.Price{Value: 150000}
	listing, err := listings.Publish(ctx, d)
	require.NoError(t, err)

	intent, err := reservations.InitiateReservation(ctx, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, 15000.0, intent.Amount)
}

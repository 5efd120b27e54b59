package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Alilen9/renthub-sub001/internal/models"
	"github.com/Alilen9/renthub-sub001/internal/services"
)

// ReservationHandler handles deposit reservations and escrow callbacks.
type ReservationHandler struct {
	reservationService services.IReservationService
}

// NewReservationHandler creates a new ReservationHandler.
func NewReservationHandler(reservationService services.IReservationService) *ReservationHandler {
	return &ReservationHandler{reservationService: reservationService}
}

// InitiateReservation handles POST /v1/listing/:id/reserve
func (h *ReservationHandler) InitiateReservation(c *gin.Context) {
	intent, err := h.reservationService.InitiateReservation(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, intent)
}

// RecordTransaction handles POST /v1/payment/:id/transaction. Called by the
// escrow provider's webhook with the settlement outcome.
func (h *ReservationHandler) RecordTransaction(c *gin.Context) {
	var req struct {
		Status    models.PaymentStatus `json:"status"`
		Reference string               `json:"reference"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	switch req.Status {
	case models.PaymentConfirmed, models.PaymentFailed:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be confirmed or failed"})
		return
	}

	txn, err := h.reservationService.RecordTransaction(c.Request.Context(), c.Param("id"), req.Status, req.Reference)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, txn)
}

package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"github.com/Alilen9/renthub-sub001/internal/models"
	"github.com/Alilen9/renthub-sub001/internal/services"
	"github.com/Alilen9/renthub-sub001/internal/tasks"
)

// IAsynqClient defines the interface for the Asynq client methods used by
// the handlers. This allows easier mocking than using the concrete
// asynq.Client.
type IAsynqClient interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// FaultHandler handles REST requests for the fault lifecycle.
type FaultHandler struct {
	faultService  services.IFaultService
	taskClient    IAsynqClient
	landlordEmail string
}

// NewFaultHandler creates a new FaultHandler. landlordEmail receives
// new-fault notifications; lifecycle updates go to the reporting tenant.
func NewFaultHandler(faultService services.IFaultService, taskClient IAsynqClient, landlordEmail string) *FaultHandler {
	return &FaultHandler{
		faultService:  faultService,
		taskClient:    taskClient,
		landlordEmail: landlordEmail,
	}
}

// writeServiceError maps the service error taxonomy onto HTTP statuses.
func writeServiceError(c *gin.Context, err error) {
	var verr *models.ValidationError
	var terr *models.InvalidTransitionError
	var nerr *models.NotFoundError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "fields": verr.Fields})
	case errors.As(err, &terr):
		c.JSON(http.StatusConflict, gin.H{"error": terr.Error()})
	case errors.As(err, &nerr):
		c.JSON(http.StatusNotFound, gin.H{"error": nerr.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// enqueueFaultNotify enqueues a notification task. Enqueue failures are
// logged, not surfaced; the fault mutation has already been persisted.
func (h *FaultHandler) enqueueFaultNotify(ctx context.Context, f *models.Fault, event string) {
	// New reports go to the landlord for triage; lifecycle updates go back
	// to the reporting tenant.
	recipient := f.TenantEmail
	if event == tasks.EventFaultReported {
		recipient = h.landlordEmail
	}
	task, err := tasks.NewFaultNotifyTask(tasks.FaultNotifyPayload{
		FaultID:         f.ID,
		Event:           event,
		Recipient:       recipient,
		FaultTitle:      f.Title,
		TenantName:      f.TenantName,
		ServiceProvider: f.ServiceProvider,
	})
	if err != nil {
		log.Printf("Failed to build %s notification for fault %s: %v", event, f.ID, err)
		return
	}
	if _, err := h.taskClient.EnqueueContext(ctx, task); err != nil {
		log.Printf("Failed to enqueue %s notification for fault %s: %v", event, f.ID, err)
	}
}

// ReportFault handles POST /v1/fault
func (h *FaultHandler) ReportFault(c *gin.Context) {
	var in services.FaultInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	fault, err := h.faultService.Report(c.Request.Context(), in)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	h.enqueueFaultNotify(c.Request.Context(), fault, tasks.EventFaultReported)
	c.JSON(http.StatusCreated, fault)
}

// GetFaultByID handles GET /v1/fault/:id
func (h *FaultHandler) GetFaultByID(c *gin.Context) {
	fault, err := h.faultService.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, fault)
}

// ListFaults handles GET /v1/fault with optional tenant and status filters.
// With no filter, every fault is returned in report order.
func (h *FaultHandler) ListFaults(c *gin.Context) {
	ctx := c.Request.Context()

	var faults []models.Fault
	var err error
	switch {
	case c.Query("tenant") != "":
		faults, err = h.faultService.ListByTenant(ctx, c.Query("tenant"))
	case c.Query("status") != "":
		faults, err = h.faultService.ListByStatus(ctx, models.FaultStatus(strings.ToLower(c.Query("status"))))
	default:
		faults, err = h.faultService.List(ctx)
	}
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": faults})
}

// AssignFault handles POST /v1/fault/:id/assign
func (h *FaultHandler) AssignFault(c *gin.Context) {
	var req struct {
		ServiceProvider    string `json:"service_provider"`
		ExpectedCompletion string `json:"expected_completion"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	fault, err := h.faultService.Assign(c.Request.Context(), c.Param("id"), req.ServiceProvider, req.ExpectedCompletion)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	h.enqueueFaultNotify(c.Request.Context(), fault, tasks.EventFaultAssigned)
	c.JSON(http.StatusOK, fault)
}

// UpdateFaultProgress handles POST /v1/fault/:id/progress
func (h *FaultHandler) UpdateFaultProgress(c *gin.Context) {
	var req struct {
		Progress int `json:"progress"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	fault, err := h.faultService.UpdateProgress(c.Request.Context(), c.Param("id"), req.Progress)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, fault)
}

// ResolveFault handles POST /v1/fault/:id/resolve
func (h *FaultHandler) ResolveFault(c *gin.Context) {
	var req struct {
		Response string `json:"response"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	fault, err := h.faultService.Resolve(c.Request.Context(), c.Param("id"), req.Response)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	h.enqueueFaultNotify(c.Request.Context(), fault, tasks.EventFaultResolved)
	c.JSON(http.StatusOK, fault)
}

// SetFaultPriority handles POST /v1/fault/:id/priority
func (h *FaultHandler) SetFaultPriority(c *gin.Context) {
	var req struct {
		Priority models.FaultPriority `json:"priority"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	fault, err := h.faultService.SetPriority(c.Request.Context(), c.Param("id"), req.Priority)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, fault)
}

// AppendFaultMessage handles POST /v1/fault/:id/message
func (h *FaultHandler) AppendFaultMessage(c *gin.Context) {
	var req struct {
		Sender  models.MessageSender `json:"sender"`
		Content string               `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	fault, err := h.faultService.AppendMessage(c.Request.Context(), c.Param("id"), req.Sender, req.Content)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	h.enqueueFaultNotify(c.Request.Context(), fault, tasks.EventFaultMessage)
	c.JSON(http.StatusOK, fault)
}

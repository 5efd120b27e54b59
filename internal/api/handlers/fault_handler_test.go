package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alilen9/renthub-sub001/internal/api/handlers"
	"github.com/Alilen9/renthub-sub001/internal/models"
	"github.com/Alilen9/renthub-sub001/internal/services"
	"github.com/Alilen9/renthub-sub001/internal/store"
	"github.com/Alilen9/renthub-sub001/internal/tasks"
)

// stubTaskClient records enqueued tasks without a Redis connection.
type stubTaskClient struct {
	enqueued []*asynq.Task
}

func (s *stubTaskClient) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	s.enqueued = append(s.enqueued, task)
	return &asynq.TaskInfo{ID: "stub", Type: task.Type()}, nil
}

func setupFaultRouter(t *testing.T) (*gin.Engine, services.IFaultService, *stubTaskClient) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	faultService := services.NewFaultService(store.NewMemoryStore())
	taskClient := &stubTaskClient{}
	handler := handlers.NewFaultHandler(faultService, taskClient, "landlord@example.com")

	r := gin.New()
	r.POST("/v1/fault", handler.ReportFault)
	r.GET("/v1/fault", handler.ListFaults)
	r.GET("/v1/fault/:id", handler.GetFaultByID)
	r.POST("/v1/fault/:id/assign", handler.AssignFault)
	r.POST("/v1/fault/:id/progress", handler.UpdateFaultProgress)
	r.POST("/v1/fault/:id/resolve", handler.ResolveFault)
	r.POST("/v1/fault/:id/message", handler.AppendFaultMessage)
	return r, faultService, taskClient
}

func postJSON(t *testing.T, r *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestFaultHandler_ReportFault_Success(t *testing.T) {
	r, _, taskClient := setupFaultRouter(t)

	w := postJSON(t, r, "/v1/fault", services.FaultInput{
		Title:       "Leaking pipe",
		Description: "Kitchen pipe leaking under the sink",
		TenantName:  "Alice",
		TenantEmail: "alice@example.com",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	var fault models.Fault
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fault))
	assert.NotEmpty(t, fault.ID)
	assert.Equal(t, models.FaultPending, fault.Status)

	require.Len(t, taskClient.enqueued, 1)
	assert.Equal(t, "fault:notify", taskClient.enqueued[0].Type())
}

func TestFaultHandler_NotificationRecipients(t *testing.T) {
	r, _, taskClient := setupFaultRouter(t)

	w := postJSON(t, r, "/v1/fault", services.FaultInput{
		Title:       "Leaking pipe",
		Description: "Kitchen pipe leaking under the sink",
		TenantName:  "Alice",
		TenantEmail: "alice@example.com",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var fault models.Fault
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fault))

	w = postJSON(t, r, "/v1/fault/"+fault.ID+"/assign", gin.H{
		"service_provider": "Acme Plumbing",
	})
	require.Equal(t, http.StatusOK, w.Code)

	require.Len(t, taskClient.enqueued, 2)

	// The new report goes to the landlord for triage.
	var reported tasks.FaultNotifyPayload
	require.NoError(t, json.Unmarshal(taskClient.enqueued[0].Payload(), &reported))
	assert.Equal(t, tasks.EventFaultReported, reported.Event)
	assert.Equal(t, "landlord@example.com", reported.Recipient)

	// The assignment update goes back to the reporting tenant.
	var assigned tasks.FaultNotifyPayload
	require.NoError(t, json.Unmarshal(taskClient.enqueued[1].Payload(), &assigned))
	assert.Equal(t, tasks.EventFaultAssigned, assigned.Event)
	assert.Equal(t, "alice@example.com", assigned.Recipient)
}

func TestFaultHandler_ReportFault_ValidationError(t *testing.T) {
	r, _, taskClient := setupFaultRouter(t)

	w := postJSON(t, r, "/v1/fault", services.FaultInput{Title: "No reporter"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var respBody map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &respBody))
	assert.Contains(t, respBody["fields"], "description")
	assert.Contains(t, respBody["fields"], "tenant_name")
	assert.Empty(t, taskClient.enqueued)
}

func TestFaultHandler_AssignThenResolve(t *testing.T) {
	r, faultService, taskClient := setupFaultRouter(t)

	fault, err := faultService.Report(context.Background(), services.FaultInput{
		Title:       "Broken heater",
		Description: "No hot water in unit 4",
		TenantName:  "Bob",
	})
	require.NoError(t, err)

	w := postJSON(t, r, "/v1/fault/"+fault.ID+"/assign", gin.H{
		"service_provider":    "Acme Plumbing",
		"expected_completion": "2026-09-05",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w = postJSON(t, r, "/v1/fault/"+fault.ID+"/resolve", gin.H{"response": "Heater element replaced"})
	assert.Equal(t, http.StatusOK, w.Code)

	var resolved models.Fault
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resolved))
	assert.Equal(t, models.FaultResolved, resolved.Status)
	assert.Equal(t, "Heater element replaced", resolved.Response)

	// assigned + resolved notifications
	assert.Len(t, taskClient.enqueued, 2)
}

func TestFaultHandler_ResolvePending_Conflict(t *testing.T) {
	r, faultService, _ := setupFaultRouter(t)

	fault, err := faultService.Report(context.Background(), services.FaultInput{
		Title:       "Cracked window",
		Description: "Living room window cracked",
		TenantName:  "Bob",
	})
	require.NoError(t, err)

	w := postJSON(t, r, "/v1/fault/"+fault.ID+"/resolve", gin.H{"response": "done"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestFaultHandler_GetFaultByID_NotFound(t *testing.T) {
	r, _, _ := setupFaultRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/v1/fault/missing-id", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFaultHandler_ListFaults_ByTenant(t *testing.T) {
	r, faultService, _ := setupFaultRouter(t)

	for _, name := range []string{"Alice", "Alice", "Bob"} {
		_, err := faultService.Report(context.Background(), services.FaultInput{
			Title:       "Issue for " + name,
			Description: "description",
			TenantName:  name,
		})
		require.NoError(t, err)
	}

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/v1/fault?tenant=Alice", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var respBody struct {
		Data []models.Fault `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &respBody))
	assert.Len(t, respBody.Data, 2)
}

func TestFaultHandler_ListFaults_NoFilterReturnsAll(t *testing.T) {
	r, faultService, _ := setupFaultRouter(t)
	ctx := context.Background()

	pending, err := faultService.Report(ctx, services.FaultInput{
		Title:       "Cracked tile",
		Description: "Hallway tile cracked",
		TenantName:  "Alice",
	})
	require.NoError(t, err)
	assigned, err := faultService.Report(ctx, services.FaultInput{
		Title:       "Leaking tap",
		Description: "Bathroom tap leaking",
		TenantName:  "Bob",
	})
	require.NoError(t, err)
	_, err = faultService.Assign(ctx, assigned.ID, "Acme Plumbing", "")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/v1/fault", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var respBody struct {
		Data []models.Fault `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &respBody))
	require.Len(t, respBody.Data, 2)
	assert.Equal(t, pending.ID, respBody.Data[0].ID)
	assert.Equal(t, models.FaultAssigned, respBody.Data[1].Status)

	// An explicit status filter still narrows the view.
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/v1/fault?status=assigned", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &respBody))
	require.Len(t, respBody.Data, 1)
	assert.Equal(t, assigned.ID, respBody.Data[0].ID)
}

func TestFaultHandler_AppendMessage(t *testing.T) {
	r, faultService, _ := setupFaultRouter(t)

	fault, err := faultService.Report(context.Background(), services.FaultInput{
		Title:       "Blocked drain",
		Description: "Bathroom drain blocked",
		TenantName:  "Alice",
	})
	require.NoError(t, err)

	w := postJSON(t, r, "/v1/fault/"+fault.ID+"/message", gin.H{
		"sender":  "tenant",
		"content": "Any update on this?",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var updated models.Fault
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	require.Len(t, updated.Messages, 1)
	assert.Equal(t, "Any update on this?", updated.Messages[0].Content)
}

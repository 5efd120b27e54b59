package services

import (
	"strings"
	"time"

	"github.com/Alilen9/renthub-sub001/internal/models"
)

// The fault lifecycle engine. Every transition is a pure function of
// (current fault, action) -> new fault value; persistence is the fault
// service's job after a successful transition, never done here.

// FaultInput carries the descriptive fields of a new fault report.
type FaultInput struct {
	Title        string `json:"title"`
	Category     string `json:"category"`
	Description  string `json:"description"`
	PropertyType string `json:"property_type"`
	PropertyArea string `json:"property_area"`
	UnitNumber   string `json:"unit_number"`
	MediaURL     string `json:"media_url"`
	TenantName   string `json:"tenant_name"`
	TenantEmail  string `json:"tenant_email"`
	TenantPhone  string `json:"tenant_phone"`
}

// NewFault creates a fault in pending state with an empty message thread.
// Title, description and the reporter's name are required.
func NewFault(in FaultInput) (models.Fault, error) {
	var missing []string
	if strings.TrimSpace(in.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(in.Description) == "" {
		missing = append(missing, "description")
	}
	if strings.TrimSpace(in.TenantName) == "" {
		missing = append(missing, "tenant_name")
	}
	if len(missing) > 0 {
		return models.Fault{}, models.NewValidationError(missing...)
	}

	return models.Fault{
		Title:        in.Title,
		Category:     in.Category,
		Description:  in.Description,
		PropertyType: in.PropertyType,
		PropertyArea: in.PropertyArea,
		UnitNumber:   in.UnitNumber,
		MediaURL:     in.MediaURL,
		TenantName:   in.TenantName,
		TenantEmail:  in.TenantEmail,
		TenantPhone:  in.TenantPhone,
		Status:       models.FaultPending,
		DateReported: time.Now().UTC(),
		Messages:     []models.FaultMessage{},
	}, nil
}

// AssignFault moves a pending fault to assigned and records the service
// provider. Progress starts at zero.
func AssignFault(f models.Fault, serviceProvider, expectedCompletion string) (models.Fault, error) {
	if strings.TrimSpace(serviceProvider) == "" {
		return f, models.NewValidationError("service_provider")
	}
	if f.Status != models.FaultPending {
		return f, &models.InvalidTransitionError{Status: f.Status, Action: "assign"}
	}
	progress := 0
	f.ServiceProvider = serviceProvider
	f.ServiceProviderProgress = &progress
	f.ExpectedCompletion = expectedCompletion
	f.Status = models.FaultAssigned
	return f, nil
}

// UpdateFaultProgress sets the provider's progress on an assigned fault,
// clamped to [0,100]. Reaching 100 does not resolve the fault; resolution
// is an explicit landlord action.
func UpdateFaultProgress(f models.Fault, progress int) (models.Fault, error) {
	if f.Status != models.FaultAssigned {
		return f, &models.InvalidTransitionError{Status: f.Status, Action: "update progress on"}
	}
	if progress < 0 {
		progress = 0
	} else if progress > 100 {
		progress = 100
	}
	f.ServiceProviderProgress = &progress
	return f, nil
}

// ResolveFault closes an assigned fault with the landlord's optional
// closing response. A pending fault must be assigned first.
func ResolveFault(f models.Fault, response string) (models.Fault, error) {
	if f.Status != models.FaultAssigned {
		return f, &models.InvalidTransitionError{Status: f.Status, Action: "resolve"}
	}
	f.Status = models.FaultResolved
	f.Response = response
	return f, nil
}

// SetFaultPriority records the landlord's priority. Legal in any
// non-terminal state; never affects status.
func SetFaultPriority(f models.Fault, priority models.FaultPriority) (models.Fault, error) {
	if !models.ValidPriority(priority) {
		return f, models.NewValidationError("priority")
	}
	if f.Status == models.FaultResolved {
		return f, &models.InvalidTransitionError{Status: f.Status, Action: "prioritize"}
	}
	f.Priority = priority
	return f, nil
}

// AppendFaultMessage appends to the landlord/tenant thread. Legal in any
// state, including resolved, so post-resolution follow-up stays possible.
// Thread order is insertion order; a skewed clock producing an earlier
// timestamp than the last message does not reorder anything.
func AppendFaultMessage(f models.Fault, sender models.MessageSender, content string) (models.Fault, error) {
	if sender != models.SenderLandlord && sender != models.SenderTenant {
		return f, models.NewValidationError("sender")
	}
	if strings.TrimSpace(content) == "" {
		return f, models.NewValidationError("content")
	}

	// Copy before appending so the input fault value stays untouched.
	messages := make([]models.FaultMessage, len(f.Messages), len(f.Messages)+1)
	copy(messages, f.Messages)
	f.Messages = append(messages, models.FaultMessage{
		Sender:    sender,
		Content:   content,
		Timestamp: time.Now().UTC(),
	})
	return f, nil
}

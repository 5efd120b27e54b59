package models

import (
	"time"
)

// FaultStatus is the lifecycle state of a reported fault.
type FaultStatus string

const (
	FaultPending  FaultStatus = "pending"
	FaultAssigned FaultStatus = "assigned"
	FaultResolved FaultStatus = "resolved"
)

// FaultPriority is set by the landlord; absent means unprioritized.
type FaultPriority string

const (
	PriorityHigh   FaultPriority = "high"
	PriorityMedium FaultPriority = "medium"
	PriorityLow    FaultPriority = "low"
)

// ValidPriority reports whether p is one of the known priority levels.
func ValidPriority(p FaultPriority) bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// MessageSender identifies which of the two thread participants wrote a message.
type MessageSender string

const (
	SenderLandlord MessageSender = "landlord"
	SenderTenant   MessageSender = "tenant"
)

// FaultMessage is one entry in a fault's landlord/tenant thread.
// Thread order is insertion order; timestamps are informational only.
type FaultMessage struct {
	Sender    MessageSender `json:"sender"`
	Content   string        `json:"content"`
	Timestamp time.Time     `json:"timestamp"`
}

// Fault is a tenant-reported maintenance issue tracked through
// pending -> assigned -> resolved.
type Fault struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Category     string `json:"category"`
	Description  string `json:"description"`
	PropertyType string `json:"property_type"`
	PropertyArea string `json:"property_area"`
	UnitNumber   string `json:"unit_number,omitempty"`
	MediaURL     string `json:"media_url,omitempty"`

	TenantName  string `json:"tenant_name"`
	TenantEmail string `json:"tenant_email,omitempty"`
	TenantPhone string `json:"tenant_phone,omitempty"`

	Status       FaultStatus `json:"status"`
	DateReported time.Time   `json:"date_reported"`

	ServiceProvider         string `json:"service_provider,omitempty"`
	ServiceProviderProgress *int   `json:"service_provider_progress,omitempty"` // 0-100, meaningful only while assigned
	ExpectedCompletion      string `json:"expected_completion,omitempty"`       // YYYY-MM-DD

	Response string        `json:"response,omitempty"`
	Priority FaultPriority `json:"priority,omitempty"`

	Messages []FaultMessage `json:"messages"`
}

// LastMessage returns the most recently appended message, or nil for an empty thread.
func (f *Fault) LastMessage() *FaultMessage {
	if len(f.Messages) == 0 {
		return nil
	}
	return &f.Messages[len(f.Messages)-1]
}

package tasks

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alilen9/renthub-sub001/internal/config"
)

type captureSender struct {
	to      []string
	subject string
	body    string
	calls   int
}

func (c *captureSender) Send(ctx context.Context, to []string, subject, body string) error {
	c.to = to
	c.subject = subject
	c.body = body
	c.calls++
	return nil
}

func TestNewFaultNotifyTask(t *testing.T) {
	task, err := NewFaultNotifyTask(FaultNotifyPayload{
		FaultID:    "f-1",
		Event:      EventFaultReported,
		Recipient:  "landlord@example.com",
		FaultTitle: "Leaking pipe",
		TenantName: "Alice",
	})
	require.NoError(t, err)
	assert.Equal(t, TypeFaultNotify, task.Type())

	var payload FaultNotifyPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, "f-1", payload.FaultID)
	assert.Equal(t, EventFaultReported, payload.Event)
}

func TestHandleFaultNotifyTask_SendsEmail(t *testing.T) {
	sender := &captureSender{}
	processor := NewTaskProcessor(&config.Config{}, sender, nil)

	task, err := NewFaultNotifyTask(FaultNotifyPayload{
		FaultID:         "f-2",
		Event:           EventFaultAssigned,
		Recipient:       "alice@example.com",
		FaultTitle:      "Leaking pipe",
		TenantName:      "Alice",
		ServiceProvider: "Acme Plumbing",
	})
	require.NoError(t, err)

	require.NoError(t, processor.HandleFaultNotifyTask(context.Background(), task))
	assert.Equal(t, 1, sender.calls)
	assert.Equal(t, []string{"alice@example.com"}, sender.to)
	assert.Contains(t, sender.subject, "assigned")
	assert.Contains(t, sender.body, "Acme Plumbing")
}

func TestHandleFaultNotifyTask_NoRecipientIsNoop(t *testing.T) {
	sender := &captureSender{}
	processor := NewTaskProcessor(&config.Config{}, sender, nil)

	task, err := NewFaultNotifyTask(FaultNotifyPayload{
		FaultID:    "f-3",
		Event:      EventFaultResolved,
		FaultTitle: "Leaking pipe",
	})
	require.NoError(t, err)

	require.NoError(t, processor.HandleFaultNotifyTask(context.Background(), task))
	assert.Equal(t, 0, sender.calls)
}

func TestFaultNotification_Events(t *testing.T) {
	base := FaultNotifyPayload{FaultID: "f-4", FaultTitle: "Broken lock", TenantName: "Bob"}

	base.Event = EventFaultReported
	subject, body := FaultNotification(base)
	assert.Contains(t, subject, "New fault reported")
	assert.Contains(t, body, "Bob")

	base.Event = EventFaultResolved
	subject, _ = FaultNotification(base)
	assert.Contains(t, subject, "resolved")

	base.Event = EventFaultMessage
	_, body = FaultNotification(base)
	assert.Contains(t, body, "new message")
}

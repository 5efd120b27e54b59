package tasks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // registered for image.Decode
	"log"
	"net/http"
	"time"

	"github.com/hibiken/asynq"
	"github.com/nfnt/resize"
	"github.com/redis/go-redis/v9"

	"github.com/Alilen9/renthub-sub001/internal/config"
	"github.com/Alilen9/renthub-sub001/internal/email"
	"github.com/Alilen9/renthub-sub001/internal/storage"
)

// Task types.
const (
	TypeFaultNotify  = "fault:notify"
	TypeImageProcess = "image:process"
)

// Fault workflow events that trigger a notification email.
const (
	EventFaultReported = "reported"
	EventFaultAssigned = "assigned"
	EventFaultResolved = "resolved"
	EventFaultMessage  = "message"
)

// FaultNotifyPayload is self-contained so the worker needs no store lookup.
type FaultNotifyPayload struct {
	FaultID         string `json:"fault_id"`
	Event           string `json:"event"`
	Recipient       string `json:"recipient"`
	FaultTitle      string `json:"fault_title"`
	TenantName      string `json:"tenant_name"`
	ServiceProvider string `json:"service_provider,omitempty"`
}

// ImageProcessPayload asks the image worker to fetch, resize and re-upload
// a piece of listing media.
type ImageProcessPayload struct {
	ListingID string `json:"listing_id"`
	SourceURL string `json:"source_url"`
	Key       string `json:"key"`
}

// NewFaultNotifyTask builds an enqueueable fault notification task.
func NewFaultNotifyTask(p FaultNotifyPayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to encode fault notify payload: %w", err)
	}
	return asynq.NewTask(TypeFaultNotify, payload), nil
}

// NewImageProcessTask builds an enqueueable image processing task.
func NewImageProcessTask(p ImageProcessPayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image process payload: %w", err)
	}
	return asynq.NewTask(TypeImageProcess, payload, asynq.Queue("images")), nil
}

// NewClient creates an asynq client over the given Redis connection.
func NewClient(rdb *redis.Client) *asynq.Client {
	return asynq.NewClient(asynq.RedisClientOpt{
		Addr:     rdb.Options().Addr,
		Password: rdb.Options().Password,
		DB:       rdb.Options().DB,
	})
}

// TaskProcessor holds the dependencies needed by task handlers.
type TaskProcessor struct {
	cfg         *config.Config
	emailSender email.Sender
	media       storage.IMediaStorage
	httpClient  *http.Client
}

// NewTaskProcessor creates a TaskProcessor.
func NewTaskProcessor(cfg *config.Config, emailSender email.Sender, media storage.IMediaStorage) *TaskProcessor {
	return &TaskProcessor{
		cfg:         cfg,
		emailSender: emailSender,
		media:       media,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
	}
}

// SetupServer configures and returns an asynq server with the handlers
// appropriate for the worker mode registered on its mux.
func SetupServer(rdb *redis.Client, processor *TaskProcessor) (*asynq.Server, *asynq.ServeMux) {
	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     rdb.Options().Addr,
			Password: rdb.Options().Password,
			DB:       rdb.Options().DB,
		},
		asynq.Config{
			Queues: map[string]int{
				"default": 6,
				"images":  3,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.Printf("[asynq] task %s failed: %v (payload: %s)", task.Type(), err, task.Payload())
			}),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeFaultNotify, processor.HandleFaultNotifyTask)
	mux.HandleFunc(TypeImageProcess, processor.HandleImageProcessTask)
	return srv, mux
}

// HandleFaultNotifyTask sends the notification email for a fault event.
func (p *TaskProcessor) HandleFaultNotifyTask(ctx context.Context, t *asynq.Task) error {
	var payload FaultNotifyPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to decode fault notify payload: %w", err)
	}
	if payload.Recipient == "" {
		// Reporter left no email; nothing to deliver.
		return nil
	}

	subject, body := FaultNotification(payload)
	if err := p.emailSender.Send(ctx, []string{payload.Recipient}, subject, body); err != nil {
		return fmt.Errorf("failed to send fault %s notification: %w", payload.FaultID, err)
	}
	return nil
}

// FaultNotification renders the subject and body for a fault event email.
func FaultNotification(p FaultNotifyPayload) (subject, body string) {
	switch p.Event {
	case EventFaultReported:
		subject = fmt.Sprintf("New fault reported: %s", p.FaultTitle)
		body = fmt.Sprintf("%s reported a new fault: %q (ref %s).\nReview it and assign a service provider.", p.TenantName, p.FaultTitle, p.FaultID)
	case EventFaultAssigned:
		subject = fmt.Sprintf("Your fault has been assigned: %s", p.FaultTitle)
		body = fmt.Sprintf("Your fault %q (ref %s) has been assigned to %s.", p.FaultTitle, p.FaultID, p.ServiceProvider)
	case EventFaultResolved:
		subject = fmt.Sprintf("Your fault has been resolved: %s", p.FaultTitle)
		body = fmt.Sprintf("Your fault %q (ref %s) has been marked as resolved.", p.FaultTitle, p.FaultID)
	default:
		subject = fmt.Sprintf("Update on fault: %s", p.FaultTitle)
		body = fmt.Sprintf("There is a new message on fault %q (ref %s).", p.FaultTitle, p.FaultID)
	}
	return subject, body
}

// HandleImageProcessTask downloads a media object, constrains it to the
// configured max dimension and re-uploads the JPEG under a processed key.
func (p *TaskProcessor) HandleImageProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload ImageProcessPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to decode image process payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, payload.SourceURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build download request for %s: %w", payload.SourceURL, err)
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download %s: %w", payload.SourceURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download of %s returned status %d", payload.SourceURL, resp.StatusCode)
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to decode image for listing %s: %w", payload.ListingID, err)
	}

	maxDim := uint(p.cfg.ImageMaxDimension)
	resized := resize.Thumbnail(maxDim, maxDim, img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: 85}); err != nil {
		return fmt.Errorf("failed to encode processed image: %w", err)
	}

	processedKey := fmt.Sprintf("processed/%s/%s.jpg", payload.ListingID, payload.Key)
	if err := p.media.Upload(ctx, processedKey, "image/jpeg", &buf); err != nil {
		return fmt.Errorf("failed to store processed image for listing %s: %w", payload.ListingID, err)
	}
	log.Printf("Processed image %s for listing %s", processedKey, payload.ListingID)
	return nil
}

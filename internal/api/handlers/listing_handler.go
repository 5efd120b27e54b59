package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Alilen9/renthub-sub001/internal/models"
	"github.com/Alilen9/renthub-sub001/internal/services"
	"github.com/Alilen9/renthub-sub001/internal/storage"
	"github.com/Alilen9/renthub-sub001/internal/tasks"
)

// ListingHandler handles REST requests for listing drafts and publication.
type ListingHandler struct {
	listingService services.IListingService
	mediaStorage   storage.IMediaStorage
	taskClient     IAsynqClient
}

// NewListingHandler creates a new ListingHandler.
func NewListingHandler(listingService services.IListingService, mediaStorage storage.IMediaStorage, taskClient IAsynqClient) *ListingHandler {
	return &ListingHandler{
		listingService: listingService,
		mediaStorage:   mediaStorage,
		taskClient:     taskClient,
	}
}

// PublishListing handles POST /v1/listing
func (h *ListingHandler) PublishListing(c *gin.Context) {
	var draft models.ListingDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	listing, err := h.listingService.Publish(c.Request.Context(), draft)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	// Queue thumbnail generation for any media already uploaded.
	for _, m := range listing.Media {
		if m.Kind != models.MediaImage || !m.Uploaded || m.URL == "" {
			continue
		}
		task, err := tasks.NewImageProcessTask(tasks.ImageProcessPayload{
			ListingID: listing.ID,
			SourceURL: m.URL,
			Key:       m.Key,
		})
		if err != nil {
			log.Printf("Failed to build image task for listing %s: %v", listing.ID, err)
			continue
		}
		if _, err := h.taskClient.EnqueueContext(c.Request.Context(), task); err != nil {
			log.Printf("Failed to enqueue image task for listing %s: %v", listing.ID, err)
		}
	}

	c.JSON(http.StatusCreated, listing)
}

// GetListingByID handles GET /v1/listing/:id
func (h *ListingHandler) GetListingByID(c *gin.Context) {
	listing, err := h.listingService.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, listing)
}

// ListListings handles GET /v1/listing
func (h *ListingHandler) ListListings(c *gin.Context) {
	listings, err := h.listingService.List(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": listings})
}

// PresignMediaUpload handles POST /v1/listing/media/presign. It hands the
// client a pre-signed PUT URL so media bytes never pass through the API.
func (h *ListingHandler) PresignMediaUpload(c *gin.Context) {
	var req struct {
		Filename    string `json:"filename"`
		ContentType string `json:"content_type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.Filename == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "filename is required"})
		return
	}
	if req.ContentType == "" {
		req.ContentType = "application/octet-stream"
	}

	url, key, err := h.mediaStorage.GeneratePresignedPutURL(c.Request.Context(), "listings", req.Filename, req.ContentType)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate upload URL"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url, "key": key})
}

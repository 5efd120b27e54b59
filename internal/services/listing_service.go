package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/Alilen9/renthub-sub001/internal/models"
	"github.com/Alilen9/renthub-sub001/internal/store"
)

// Draft helpers are pure: they return new draft values and persist nothing.
// A draft only touches the store when it is published.

// SetDraftField sets a single named field on the draft and returns the
// updated value. Unknown field names and mismatched value types fail with
// a ValidationError naming the field.
func SetDraftField(d models.ListingDraft, field string, value interface{}) (models.ListingDraft, error) {
	switch field {
	case "title":
		v, ok := value.(string)
		if !ok {
			return d, models.NewValidationError(field)
		}
		d.Title = v
	case "price":
		switch v := value.(type) {
		case float64:
			d.Price = &models.Price{Value: v}
		case models.Price:
			price := v
			d.Price = &price
		default:
			return d, models.NewValidationError(field)
		}
	case "location":
		v, ok := value.(models.ListingLocation)
		if !ok {
			return d, models.NewValidationError(field)
		}
		d.Location = v
	case "house_type":
		v, ok := value.(string)
		if !ok {
			return d, models.NewValidationError(field)
		}
		d.HouseType = v
	case "amenities":
		v, ok := value.([]string)
		if !ok {
			return d, models.NewValidationError(field)
		}
		amenities := make([]string, len(v))
		copy(amenities, v)
		d.Amenities = amenities
	case "visibility":
		v, ok := value.(models.Visibility)
		if !ok {
			return d, models.NewValidationError(field)
		}
		d.Visibility = v
	case "package":
		v, ok := value.(models.PackageTier)
		if !ok {
			return d, models.NewValidationError(field)
		}
		d.Package = v
	default:
		return d, models.NewValidationError(field)
	}
	return d, nil
}

// AddDraftMedia appends a media item to the draft, defaulting untagged
// items to images.
func AddDraftMedia(d models.ListingDraft, item models.MediaItem) models.ListingDraft {
	if item.Kind == "" {
		item.Kind = models.MediaImage
	}
	media := make([]models.MediaItem, len(d.Media), len(d.Media)+1)
	copy(media, d.Media)
	d.Media = append(media, item)
	return d
}

// DraftMissingFields returns the field names that still block publication.
func DraftMissingFields(d models.ListingDraft) []string {
	var missing []string
	if d.Title == "" {
		missing = append(missing, "title")
	}
	if d.Price == nil || d.Price.Value <= 0 {
		missing = append(missing, "price")
	}
	if !d.Location.Valid() {
		missing = append(missing, "location")
	}
	return missing
}

// IListingService defines the interface for listing operations.
type IListingService interface {
	Publish(ctx context.Context, draft models.ListingDraft) (*models.Listing, error)
	FindByID(ctx context.Context, id string) (*models.Listing, error)
	List(ctx context.Context) ([]models.Listing, error)
}

// listingService implements IListingService over the collection store.
type listingService struct {
	store               store.Store
	defaultCurrencyCode string
}

// NewListingService creates a new ListingService.
func NewListingService(st store.Store, defaultCurrencyCode string) IListingService {
	return &listingService{store: st, defaultCurrencyCode: defaultCurrencyCode}
}

// Publish validates the draft, assigns an id and appends the resulting
// listing to the listings collection. On failure the ValidationError names
// every missing field so the caller can surface them all at once.
func (s *listingService) Publish(ctx context.Context, draft models.ListingDraft) (*models.Listing, error) {
	if missing := DraftMissingFields(draft); len(missing) > 0 {
		return nil, models.NewValidationError(missing...)
	}

	price := *draft.Price
	if price.CurrencyCode == "" {
		price.CurrencyCode = s.defaultCurrencyCode
	}

	listing := models.Listing{
		ID:          uuid.NewString(),
		Title:       draft.Title,
		Price:       price,
		Location:    draft.Location,
		HouseType:   draft.HouseType,
		Amenities:   draft.Amenities,
		Media:       draft.Media,
		Visibility:  draft.Visibility,
		Package:     draft.Package,
		PublishedAt: time.Now().UTC(),
	}
	if listing.Amenities == nil {
		listing.Amenities = []string{}
	}
	if listing.Media == nil {
		listing.Media = []models.MediaItem{}
	}

	if err := s.store.Append(ctx, store.CollectionListings, listing); err != nil {
		return nil, fmt.Errorf("failed to persist listing %s: %w", listing.ID, err)
	}
	return &listing, nil
}

// FindByID scans the listings collection for the given id.
func (s *listingService) FindByID(ctx context.Context, id string) (*models.Listing, error) {
	listings, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range listings {
		if listings[i].ID == id {
			return &listings[i], nil
		}
	}
	return nil, &models.NotFoundError{Entity: "listing", ID: id}
}

// List returns all published listings in publication order.
func (s *listingService) List(ctx context.Context) ([]models.Listing, error) {
	raws, err := s.store.GetCollection(ctx, store.CollectionListings)
	if err != nil {
		return nil, err
	}
	listings := make([]models.Listing, 0, len(raws))
	for _, raw := range raws {
		var l models.Listing
		if err := json.Unmarshal(raw, &l); err != nil {
			log.Printf("skipping undecodable listing record: %v", err)
			continue
		}
		listings = append(listings, l)
	}
	return listings, nil
}

package models

import (
	"time"
)

// Price defines the structure for monetary values.
type Price struct {
	Value        float64 `json:"value"`
	CurrencyCode string  `json:"currency_code"`
}

// MediaKind tags a media item attached to a listing or draft.
type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
	Media360   MediaKind = "360"
)

// MediaItem is either an already-persisted object (Key set, Uploaded true)
// or a pending client-side file handle (Filename only).
type MediaItem struct {
	Kind     MediaKind `json:"kind"`
	Key      string    `json:"key,omitempty"` // storage object key once uploaded
	URL      string    `json:"url,omitempty"`
	Filename string    `json:"filename,omitempty"`
	Uploaded bool      `json:"uploaded"`
}

// ListingLocation holds coordinates (nullable until geocoded) plus
// optional human-readable address parts.
type ListingLocation struct {
	Lat     *float64 `json:"lat"`
	Lng     *float64 `json:"lng"`
	Address string   `json:"address,omitempty"`
	County  string   `json:"county,omitempty"`
}

// Valid reports whether the location has usable coordinates.
func (l ListingLocation) Valid() bool {
	return l.Lat != nil && l.Lng != nil
}

// Visibility controls how widely a published listing is advertised.
type Visibility string

const (
	VisibilityLocal         Visibility = "local"
	VisibilityNational      Visibility = "national"
	VisibilityInternational Visibility = "international"
)

// PackageTier is the landlord's chosen advertising package.
type PackageTier string

const (
	PackageFree     PackageTier = "free"
	PackageStandard PackageTier = "standard"
	PackagePremium  PackageTier = "premium"
)

// ListingDraft is an in-progress listing before publication. It has no ID;
// one is assigned when the draft is published into the listings collection.
type ListingDraft struct {
	Title      string          `json:"title"`
	Price      *Price          `json:"price,omitempty"` // unset while incomplete
	Location   ListingLocation `json:"location"`
	HouseType  string          `json:"house_type"`
	Amenities  []string        `json:"amenities"`
	Media      []MediaItem     `json:"media"`
	Visibility Visibility      `json:"visibility,omitempty"`
	Package    PackageTier     `json:"package,omitempty"`
}

// Listing is a published rental listing.
type Listing struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Price       Price           `json:"price"`
	Location    ListingLocation `json:"location"`
	HouseType   string          `json:"house_type"`
	Amenities   []string        `json:"amenities"`
	Media       []MediaItem     `json:"media"`
	Visibility  Visibility      `json:"visibility,omitempty"`
	Package     PackageTier     `json:"package,omitempty"`
	PublishedAt time.Time       `json:"published_at"`
}

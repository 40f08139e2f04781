package models

import (
	"github.com/deppfellow/lightbnb/internal/validation"
	"github.com/shopspring/decimal"
)

// Property is a row of the properties table.
//
// CostPerNight is stored in minor currency units (cents), matching the
// INTEGER column.
type Property struct {
	ID                int64  `json:"id"`
	OwnerID           int64  `json:"owner_id"`
	Title             string `json:"title"`
	Description       string `json:"description"`
	ThumbnailPhotoURL string `json:"thumbnail_photo_url"`
	CoverPhotoURL     string `json:"cover_photo_url"`
	CostPerNight      int64  `json:"cost_per_night"`
	Street            string `json:"street"`
	City              string `json:"city"`
	Province          string `json:"province"`
	PostCode          string `json:"post_code"`
	Country           string `json:"country"`
	ParkingSpaces     int32  `json:"parking_spaces"`
	NumberOfBathrooms int32  `json:"number_of_bathrooms"`
	NumberOfBedrooms  int32  `json:"number_of_bedrooms"`
}

// PropertyListing is a search result: a property with its review statistics.
//
// AverageRating is null for properties nobody has reviewed yet.
type PropertyListing struct {
	Property
	AverageRating decimal.NullDecimal `json:"average_rating"`
	ReviewCount   int64               `json:"review_count"`
}

// NewProperty is the input of repository.PropertyRepository.AddProperty.
type NewProperty struct {
	OwnerID           int64  `json:"owner_id" validate:"required,gt=0"`
	Title             string `json:"title" validate:"required,max=255"`
	Description       string `json:"description"`
	ThumbnailPhotoURL string `json:"thumbnail_photo_url" validate:"omitempty,url,max=255"`
	CoverPhotoURL     string `json:"cover_photo_url" validate:"omitempty,url,max=255"`
	CostPerNight      int64  `json:"cost_per_night" validate:"gte=0"`
	Street            string `json:"street" validate:"required,max=255"`
	City              string `json:"city" validate:"required,max=255"`
	Province          string `json:"province" validate:"required,max=255"`
	PostCode          string `json:"post_code" validate:"required,max=255"`
	Country           string `json:"country" validate:"required,max=255"`
	ParkingSpaces     int32  `json:"parking_spaces" validate:"gte=0"`
	NumberOfBathrooms int32  `json:"number_of_bathrooms" validate:"gte=0"`
	NumberOfBedrooms  int32  `json:"number_of_bedrooms" validate:"gte=0"`
}

func (p NewProperty) Validate() error {
	return validation.Struct(p)
}

// PropertyFilter is the optional filter set of a property search.
//
// A zero field means "no filter": an empty City, a nil pointer. A
// MinimumRating of 0 is also no filter.
// Prices are in the same minor units as Property.CostPerNight.
type PropertyFilter struct {
	City                 string   `json:"city,omitempty" validate:"max=255"`
	OwnerID              *int64   `json:"owner_id,omitempty" validate:"omitempty,gt=0"`
	MinimumPricePerNight *int64   `json:"minimum_price_per_night,omitempty" validate:"omitempty,gte=0"`
	MaximumPricePerNight *int64   `json:"maximum_price_per_night,omitempty" validate:"omitempty,gte=0"`
	MinimumRating        *float64 `json:"minimum_rating,omitempty" validate:"omitempty,gte=0,lte=5"`
}

// Validate checks tags plus the one cross-field rule: a price range whose
// minimum exceeds its maximum can never match anything.
func (f PropertyFilter) Validate() error {
	if err := validation.Struct(f); err != nil {
		return err
	}

	if f.MinimumPricePerNight != nil && f.MaximumPricePerNight != nil &&
		*f.MinimumPricePerNight > *f.MaximumPricePerNight {
		return validation.CustomValidationErrors{
			{Field: "minimum_price_per_night", Message: "must not exceed maximum_price_per_night"},
		}
	}

	return nil
}

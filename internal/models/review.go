package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/deppfellow/lightbnb/internal/validation"
	"github.com/spf13/cast"
)

// PropertyReview is a row of the property_reviews table.
type PropertyReview struct {
	ID            int64  `json:"id"`
	GuestID       int64  `json:"guest_id"`
	PropertyID    int64  `json:"property_id"`
	ReservationID int64  `json:"reservation_id"`
	Rating        int    `json:"rating"`
	Message       string `json:"message"`
}

// PropertyReviewDetail is a review as listed on a property page: the review
// with its author, the property title and the stay it refers to.
type PropertyReviewDetail struct {
	ID            int64     `json:"id"`
	Rating        int       `json:"review_rating"`
	Message       string    `json:"review_text"`
	GuestName     string    `json:"name"`
	PropertyTitle string    `json:"property_title"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
}

// Rating is a review score. Forms post it as a string, so it decodes from a
// JSON number or a numeric string ("4" -> 4).
type Rating int

// UnmarshalJSON accepts 4, 4.0 and "4".
func (r *Rating) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	v, err := ParseRating(raw)
	if err != nil {
		return err
	}

	*r = v
	return nil
}

// ParseRating coerces v into a Rating. Fractional values are rejected
// rather than truncated.
func ParseRating(v any) (Rating, error) {
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, fmt.Errorf("rating must be a whole number: %w", err)
	}

	i := cast.ToInt(f)
	if float64(i) != f {
		return 0, fmt.Errorf("rating must be a whole number, got %v", v)
	}

	return Rating(i), nil
}

// NewReview is the input of repository.ReviewRepository.AddReview.
type NewReview struct {
	GuestID       int64  `json:"guest_id" validate:"required,gt=0"`
	PropertyID    int64  `json:"property_id" validate:"required,gt=0"`
	ReservationID int64  `json:"reservation_id" validate:"required,gt=0"`
	Rating        Rating `json:"rating" validate:"gte=1,lte=5"`
	Message       string `json:"message" validate:"max=2000"`
}

func (r NewReview) Validate() error {
	return validation.Struct(r)
}

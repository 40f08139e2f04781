package models

import (
	"time"

	"github.com/deppfellow/lightbnb/internal/validation"
	"github.com/shopspring/decimal"
)

// Reservation is a row of the reservations table. Dates are DATE columns,
// so only the calendar day is meaningful.
type Reservation struct {
	ID         int64     `json:"id"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	PropertyID int64     `json:"property_id"`
	GuestID    int64     `json:"guest_id"`
}

// GuestReservation is a reservation joined with the property it books and
// that property's average rating.
type GuestReservation struct {
	Reservation
	Property      Property            `json:"property"`
	AverageRating decimal.NullDecimal `json:"average_rating"`
}

// NewReservation is the input of repository.ReservationRepository.AddReservation.
type NewReservation struct {
	StartDate  time.Time `json:"start_date" validate:"required"`
	EndDate    time.Time `json:"end_date" validate:"required,gtfield=StartDate"`
	PropertyID int64     `json:"property_id" validate:"required,gt=0"`
	GuestID    int64     `json:"guest_id" validate:"required,gt=0"`
}

func (r NewReservation) Validate() error {
	return validation.Struct(r)
}

// ReservationPatch is a partial update: nil fields are left untouched.
type ReservationPatch struct {
	StartDate  *time.Time `json:"start_date,omitempty"`
	EndDate    *time.Time `json:"end_date,omitempty"`
	PropertyID *int64     `json:"property_id,omitempty" validate:"omitempty,gt=0"`
}

// IsEmpty reports whether the patch changes nothing.
func (p ReservationPatch) IsEmpty() bool {
	return p.StartDate == nil && p.EndDate == nil && p.PropertyID == nil
}

// Validate rejects an empty patch and, when both dates are given, a range
// that does not move forward in time.
func (p ReservationPatch) Validate() error {
	if err := validation.Struct(p); err != nil {
		return err
	}

	if p.IsEmpty() {
		return validation.CustomValidationErrors{
			{Field: "reservation", Message: "at least one field must be provided"},
		}
	}

	if p.StartDate != nil && p.EndDate != nil && !p.EndDate.After(*p.StartDate) {
		return validation.CustomValidationErrors{
			{Field: "end_date", Message: "must be after start_date"},
		}
	}

	return nil
}

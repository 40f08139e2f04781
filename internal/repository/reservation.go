package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/deppfellow/lightbnb/internal/errs"
	"github.com/deppfellow/lightbnb/internal/models"
	"github.com/deppfellow/lightbnb/internal/query"
	"github.com/deppfellow/lightbnb/internal/sqlerr"
	"github.com/jackc/pgx/v5"
)

type ReservationRepository struct {
	querier
}

const guestReservationColumns = `reservations.id, reservations.start_date, reservations.end_date,
	reservations.property_id, reservations.guest_id, ` + query.PropertyColumns + `,
	AVG(property_reviews.rating) AS average_rating`

// guestReservationsSQL lists a guest's reservations with their property.
// %s is the date predicate and %s the sort direction.
const guestReservationsSQL = `SELECT ` + guestReservationColumns + `
FROM reservations
JOIN properties ON reservations.property_id = properties.id
LEFT JOIN property_reviews ON properties.id = property_reviews.property_id
WHERE reservations.guest_id = $1 AND %s
GROUP BY properties.id, reservations.id
ORDER BY reservations.start_date %s
LIMIT $2`

var (
	upcomingReservationsSQL = fmt.Sprintf(guestReservationsSQL, "reservations.start_date > now()::date", "ASC")
	pastReservationsSQL     = fmt.Sprintf(guestReservationsSQL, "reservations.end_date < now()::date", "DESC")
)

func reservationFields(r *models.Reservation) []any {
	return []any{&r.ID, &r.StartDate, &r.EndDate, &r.PropertyID, &r.GuestID}
}

// AddReservation inserts a reservation and returns the stored row.
func (r *ReservationRepository) AddReservation(ctx context.Context, res models.NewReservation) (models.Reservation, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	stmt := `INSERT INTO reservations (start_date, end_date, property_id, guest_id)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + query.ReservationColumns

	var out models.Reservation
	err := r.db.QueryRow(ctx, stmt, res.StartDate, res.EndDate, res.PropertyID, res.GuestID).
		Scan(reservationFields(&out)...)
	if err != nil {
		return models.Reservation{}, sqlerr.HandleError(err)
	}

	return out, nil
}

// GetUpcomingReservations returns the guest's reservations starting after
// today, soonest first. limit <= 0 means 10.
func (r *ReservationRepository) GetUpcomingReservations(ctx context.Context, guestID int64, limit int) ([]models.GuestReservation, error) {
	return r.listGuestReservations(ctx, upcomingReservationsSQL, guestID, limit)
}

// GetFulfilledReservations is the same listing as GetUpcomingReservations,
// kept under the name the reservations page has always used.
func (r *ReservationRepository) GetFulfilledReservations(ctx context.Context, guestID int64, limit int) ([]models.GuestReservation, error) {
	return r.GetUpcomingReservations(ctx, guestID, limit)
}

// GetPastReservations returns the guest's reservations that ended before
// today, most recent first. limit <= 0 means 10.
func (r *ReservationRepository) GetPastReservations(ctx context.Context, guestID int64, limit int) ([]models.GuestReservation, error) {
	return r.listGuestReservations(ctx, pastReservationsSQL, guestID, limit)
}

func (r *ReservationRepository) listGuestReservations(ctx context.Context, stmt string, guestID int64, limit int) ([]models.GuestReservation, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(ctx, stmt, guestID, query.NormalizeLimit(limit))
	if err != nil {
		return nil, sqlerr.HandleError(err)
	}

	reservations, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.GuestReservation, error) {
		var gr models.GuestReservation
		dest := append(reservationFields(&gr.Reservation), propertyFields(&gr.Property)...)
		dest = append(dest, &gr.AverageRating)
		err := row.Scan(dest...)
		return gr, err
	})
	if err != nil {
		return nil, sqlerr.HandleError(err)
	}

	if reservations == nil {
		reservations = []models.GuestReservation{}
	}

	return reservations, nil
}

// GetReservation returns the reservation with id, or nil when there is none.
func (r *ReservationRepository) GetReservation(ctx context.Context, id int64) (*models.Reservation, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var out models.Reservation
	err := r.db.QueryRow(ctx, `SELECT `+query.ReservationColumns+` FROM reservations WHERE id = $1`, id).
		Scan(reservationFields(&out)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, sqlerr.HandleError(err)
	}

	return &out, nil
}

// UpdateReservation applies the non-nil fields of patch and returns the
// updated row. An empty patch is rejected before touching the database.
func (r *ReservationRepository) UpdateReservation(ctx context.Context, id int64, patch models.ReservationPatch) (models.Reservation, error) {
	stmt, args, ok := query.ReservationPatch(id, patch)
	if !ok {
		return models.Reservation{}, errs.NewInvalidError("Nothing to update", []errs.FieldError{
			{Field: "reservation", Error: "at least one field must be provided"},
		})
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var out models.Reservation
	err := r.db.QueryRow(ctx, stmt, args...).Scan(reservationFields(&out)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Reservation{}, sqlerr.NotFound("reservations")
	}
	if err != nil {
		return models.Reservation{}, sqlerr.HandleError(err)
	}

	return out, nil
}

// DeleteReservation removes the reservation with id.
func (r *ReservationRepository) DeleteReservation(ctx context.Context, id int64) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM reservations WHERE id = $1`, id)
	if err != nil {
		return sqlerr.HandleError(err)
	}

	if tag.RowsAffected() == 0 {
		return sqlerr.NotFound("reservations")
	}

	return nil
}

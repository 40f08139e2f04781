package repository

import (
	"context"

	"github.com/deppfellow/lightbnb/internal/models"
	"github.com/deppfellow/lightbnb/internal/sqlerr"
	"github.com/jackc/pgx/v5"
)

type ReviewRepository struct {
	querier
}

const reviewsByPropertySQL = `SELECT property_reviews.id, property_reviews.rating, COALESCE(property_reviews.message, ''),
	users.name, properties.title, reservations.start_date, reservations.end_date
FROM property_reviews
JOIN reservations ON property_reviews.reservation_id = reservations.id
JOIN properties ON property_reviews.property_id = properties.id
JOIN users ON property_reviews.guest_id = users.id
WHERE properties.id = $1
ORDER BY reservations.start_date ASC`

// GetReviewsByProperty lists the property's reviews in stay order, each with
// its author's name and the dates of the stay.
func (r *ReviewRepository) GetReviewsByProperty(ctx context.Context, propertyID int64) ([]models.PropertyReviewDetail, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(ctx, reviewsByPropertySQL, propertyID)
	if err != nil {
		return nil, sqlerr.HandleError(err)
	}

	reviews, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.PropertyReviewDetail, error) {
		var d models.PropertyReviewDetail
		err := row.Scan(&d.ID, &d.Rating, &d.Message, &d.GuestName, &d.PropertyTitle, &d.StartDate, &d.EndDate)
		return d, err
	})
	if err != nil {
		return nil, sqlerr.HandleError(err)
	}

	if reviews == nil {
		reviews = []models.PropertyReviewDetail{}
	}

	return reviews, nil
}

// AddReview inserts a review for a stay and returns the stored row.
func (r *ReviewRepository) AddReview(ctx context.Context, review models.NewReview) (models.PropertyReview, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	stmt := `INSERT INTO property_reviews (guest_id, property_id, reservation_id, rating, message)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, guest_id, property_id, reservation_id, rating, COALESCE(message, '')`

	var out models.PropertyReview
	err := r.db.QueryRow(ctx, stmt,
		review.GuestID, review.PropertyID, review.ReservationID, int(review.Rating), review.Message,
	).Scan(&out.ID, &out.GuestID, &out.PropertyID, &out.ReservationID, &out.Rating, &out.Message)
	if err != nil {
		return models.PropertyReview{}, sqlerr.HandleError(err)
	}

	return out, nil
}

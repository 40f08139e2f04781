package repository

import (
	"context"

	"github.com/deppfellow/lightbnb/internal/models"
	"github.com/deppfellow/lightbnb/internal/query"
	"github.com/deppfellow/lightbnb/internal/sqlerr"
	"github.com/jackc/pgx/v5"
)

type PropertyRepository struct {
	querier
}

// propertyFields returns scan destinations for query.PropertyColumns.
func propertyFields(p *models.Property) []any {
	return []any{
		&p.ID, &p.OwnerID, &p.Title, &p.Description,
		&p.ThumbnailPhotoURL, &p.CoverPhotoURL, &p.CostPerNight,
		&p.Street, &p.City, &p.Province, &p.PostCode, &p.Country,
		&p.ParkingSpaces, &p.NumberOfBathrooms, &p.NumberOfBedrooms,
	}
}

// GetAllProperties returns up to limit properties matching filter, cheapest
// first, with their average rating and review count. limit <= 0 means 10.
func (r *PropertyRepository) GetAllProperties(ctx context.Context, filter models.PropertyFilter, limit int) ([]models.PropertyListing, error) {
	stmt, args := query.PropertySearch(filter, limit)
	return r.Search(ctx, stmt, args)
}

// Search runs a statement built by query.PropertySearch. It is split out so
// callers that cache by statement only build it once.
func (r *PropertyRepository) Search(ctx context.Context, stmt string, args []any) ([]models.PropertyListing, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(ctx, stmt, args...)
	if err != nil {
		return nil, sqlerr.HandleError(err)
	}

	listings, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.PropertyListing, error) {
		var l models.PropertyListing
		dest := append(propertyFields(&l.Property), &l.AverageRating, &l.ReviewCount)
		err := row.Scan(dest...)
		return l, err
	})
	if err != nil {
		return nil, sqlerr.HandleError(err)
	}

	if listings == nil {
		listings = []models.PropertyListing{}
	}

	return listings, nil
}

// AddProperty inserts a property and returns the stored row.
func (r *PropertyRepository) AddProperty(ctx context.Context, p models.NewProperty) (models.Property, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	stmt := `INSERT INTO properties (
			owner_id, title, description, thumbnail_photo_url, cover_photo_url,
			cost_per_night, street, city, province, post_code, country,
			parking_spaces, number_of_bathrooms, number_of_bedrooms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING ` + query.PropertyColumns

	var out models.Property
	err := r.db.QueryRow(ctx, stmt,
		p.OwnerID, p.Title, p.Description, p.ThumbnailPhotoURL, p.CoverPhotoURL,
		p.CostPerNight, p.Street, p.City, p.Province, p.PostCode, p.Country,
		p.ParkingSpaces, p.NumberOfBathrooms, p.NumberOfBedrooms,
	).Scan(propertyFields(&out)...)
	if err != nil {
		return models.Property{}, sqlerr.HandleError(err)
	}

	return out, nil
}

package query

import (
	"strings"

	"github.com/deppfellow/lightbnb/internal/models"
)

// PropertyColumns lists the properties columns in models.Property field
// order, qualified so they survive the review join. Description is the one
// nullable text column.
const PropertyColumns = `properties.id, properties.owner_id, properties.title, COALESCE(properties.description, '') AS description,
	properties.thumbnail_photo_url, properties.cover_photo_url, properties.cost_per_night,
	properties.street, properties.city, properties.province, properties.post_code, properties.country,
	properties.parking_spaces, properties.number_of_bathrooms, properties.number_of_bedrooms`

const propertySearchBase = `SELECT ` + PropertyColumns + `,
	AVG(property_reviews.rating) AS average_rating,
	COUNT(property_reviews.rating) AS review_count
FROM properties
LEFT JOIN property_reviews ON properties.id = property_reviews.property_id`

// PropertySearch builds the listing query for f.
//
// Row filters go in a single WHERE joined by AND; the rating threshold is a
// HAVING on the grouped average. A threshold of 0 filters nothing, so
// properties without reviews stay in the results. Results are ordered by nightly cost and the
// limit is always the final argument.
func PropertySearch(f models.PropertyFilter, limit int) (string, []any) {
	var (
		b          builder
		predicates []string
	)

	if f.City != "" {
		predicates = append(predicates, "properties.city ILIKE "+b.bind("%"+EscapeLike(f.City)+"%"))
	}
	if f.OwnerID != nil {
		predicates = append(predicates, "properties.owner_id = "+b.bind(*f.OwnerID))
	}
	if f.MinimumPricePerNight != nil {
		predicates = append(predicates, "properties.cost_per_night >= "+b.bind(*f.MinimumPricePerNight))
	}
	if f.MaximumPricePerNight != nil {
		predicates = append(predicates, "properties.cost_per_night <= "+b.bind(*f.MaximumPricePerNight))
	}

	var sb strings.Builder
	sb.WriteString(propertySearchBase)

	if len(predicates) > 0 {
		sb.WriteString("\nWHERE ")
		sb.WriteString(strings.Join(predicates, " AND "))
	}

	sb.WriteString("\nGROUP BY properties.id")

	if f.MinimumRating != nil && *f.MinimumRating > 0 {
		sb.WriteString("\nHAVING AVG(property_reviews.rating) >= ")
		sb.WriteString(b.bind(*f.MinimumRating))
	}

	sb.WriteString("\nORDER BY properties.cost_per_night ASC")
	sb.WriteString("\nLIMIT ")
	sb.WriteString(b.bind(NormalizeLimit(limit)))

	return sb.String(), b.args
}

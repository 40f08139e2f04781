package service

import (
	"context"

	"github.com/deppfellow/lightbnb/internal/models"
	"github.com/deppfellow/lightbnb/internal/query"
	"github.com/deppfellow/lightbnb/internal/validation"
	"github.com/rs/zerolog"
)

// PropertyStore is implemented by repository.PropertyRepository.
type PropertyStore interface {
	Search(ctx context.Context, stmt string, args []any) ([]models.PropertyListing, error)
	AddProperty(ctx context.Context, p models.NewProperty) (models.Property, error)
}

type PropertyService struct {
	properties PropertyStore
	cache      SearchCache
	log        *zerolog.Logger
}

// NewPropertyService builds the service. cache may be nil.
func NewPropertyService(properties PropertyStore, cache SearchCache, log *zerolog.Logger) *PropertyService {
	return &PropertyService{properties: properties, cache: cache, log: log}
}

// Search validates filter and returns the matching listings, from the cache
// when possible. Cache failures fall through to the database.
func (s *PropertyService) Search(ctx context.Context, filter models.PropertyFilter, limit int) ([]models.PropertyListing, error) {
	if err := validation.Check(filter); err != nil {
		return nil, fail(ctx, s.log, "property.search", err)
	}

	stmt, args := query.PropertySearch(filter, limit)
	log := loggerFor(ctx, s.log)

	// One key per search: results read before an Invalidate are written
	// to the old generation.
	var key string
	if s.cache != nil {
		k, err := s.cache.Key(ctx, stmt, args)
		if err != nil {
			log.Warn().Err(err).Msg("search cache read failed")
		} else {
			key = k
			listings, ok, err := s.cache.Get(ctx, key)
			switch {
			case err != nil:
				log.Warn().Err(err).Msg("search cache read failed")
			case ok:
				log.Debug().Int("results", len(listings)).Msg("search cache hit")
				return listings, nil
			}
		}
	}

	listings, err := s.properties.Search(ctx, stmt, args)
	if err != nil {
		return nil, fail(ctx, s.log, "property.search", err)
	}

	if key != "" {
		if err := s.cache.Set(ctx, key, listings); err != nil {
			log.Warn().Err(err).Msg("search cache write failed")
		}
	}

	return listings, nil
}

// Add validates and stores a property, then drops cached searches.
func (s *PropertyService) Add(ctx context.Context, in models.NewProperty) (models.Property, error) {
	if err := validation.Check(in); err != nil {
		return models.Property{}, fail(ctx, s.log, "property.add", err)
	}

	property, err := s.properties.AddProperty(ctx, in)
	if err != nil {
		return models.Property{}, fail(ctx, s.log, "property.add", err)
	}

	invalidateSearches(ctx, s.log, s.cache, "property.add")

	return property, nil
}

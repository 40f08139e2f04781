package service

import (
	"context"

	"github.com/deppfellow/lightbnb/internal/models"
	"github.com/deppfellow/lightbnb/internal/validation"
	"github.com/rs/zerolog"
)

// ReviewStore is implemented by repository.ReviewRepository.
type ReviewStore interface {
	GetReviewsByProperty(ctx context.Context, propertyID int64) ([]models.PropertyReviewDetail, error)
	AddReview(ctx context.Context, review models.NewReview) (models.PropertyReview, error)
}

type ReviewService struct {
	reviews ReviewStore
	cache   SearchCache
	log     *zerolog.Logger
}

// NewReviewService builds the service. cache may be nil.
func NewReviewService(reviews ReviewStore, cache SearchCache, log *zerolog.Logger) *ReviewService {
	return &ReviewService{reviews: reviews, cache: cache, log: log}
}

func (s *ReviewService) ByProperty(ctx context.Context, propertyID int64) ([]models.PropertyReviewDetail, error) {
	reviews, err := s.reviews.GetReviewsByProperty(ctx, propertyID)
	if err != nil {
		return nil, fail(ctx, s.log, "review.by_property", err)
	}
	return reviews, nil
}

// Add stores a review. Average ratings change with it, so cached searches
// are dropped.
func (s *ReviewService) Add(ctx context.Context, in models.NewReview) (models.PropertyReview, error) {
	if err := validation.Check(in); err != nil {
		return models.PropertyReview{}, fail(ctx, s.log, "review.add", err)
	}

	review, err := s.reviews.AddReview(ctx, in)
	if err != nil {
		return models.PropertyReview{}, fail(ctx, s.log, "review.add", err)
	}

	invalidateSearches(ctx, s.log, s.cache, "review.add")

	return review, nil
}

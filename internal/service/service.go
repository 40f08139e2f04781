// Package service contains the business logic.
//
// It sits in front of the repository layer: inputs are validated here,
// passwords are hashed here, and the property search cache is consulted
// and invalidated here. Failures are logged with New Relic trace context
// when a transaction travels in the context.
package service

import (
	"context"

	"github.com/deppfellow/lightbnb/internal/errs"
	"github.com/deppfellow/lightbnb/internal/logger"
	"github.com/deppfellow/lightbnb/internal/models"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"
)

// loggerFor returns base enriched with the trace ids of the New Relic
// transaction in ctx, if any.
func loggerFor(ctx context.Context, base *zerolog.Logger) zerolog.Logger {
	return logger.WithTraceContext(*base, newrelic.FromContext(ctx))
}

// fail logs err for operation op and returns it unchanged.
//
// Expected outcomes (bad input, missing rows, wrong credentials, constraint
// violations) are logged at warn. Anything else is an error and is noticed
// on the New Relic transaction.
func fail(ctx context.Context, base *zerolog.Logger, op string, err error) error {
	log := loggerFor(ctx, base)

	switch errs.KindOf(err) {
	case errs.KindInvalid, errs.KindNotFound, errs.KindUnauthorized, errs.KindConstraint:
		log.Warn().Err(err).Str("operation", op).Msg("operation rejected")
	default:
		if txn := newrelic.FromContext(ctx); txn != nil {
			txn.NoticeError(nrpkgerrors.Wrap(err))
		}
		log.Error().Err(err).Str("operation", op).Msg("operation failed")
	}

	return err
}

// SearchCache is the part of cache.SearchCache the services use.
type SearchCache interface {
	Key(ctx context.Context, stmt string, args []any) (string, error)
	Get(ctx context.Context, key string) ([]models.PropertyListing, bool, error)
	Set(ctx context.Context, key string, listings []models.PropertyListing) error
	Invalidate(ctx context.Context) error
}

// invalidateSearches drops cached searches after a write that changes them.
// A failure only means stale results until the TTL runs out, so it is
// logged and not returned.
func invalidateSearches(ctx context.Context, base *zerolog.Logger, c SearchCache, op string) {
	if c == nil {
		return
	}
	if err := c.Invalidate(ctx); err != nil {
		log := loggerFor(ctx, base)
		log.Warn().Err(err).Str("operation", op).Msg("failed to invalidate search cache")
	}
}

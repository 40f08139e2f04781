package repository

import (
	"context"
	"time"

	"github.com/deppfellow/lightbnb/internal/database"
)

// DefaultQueryTimeout bounds a statement when no timeout is configured.
const DefaultQueryTimeout = 3 * time.Second

// Repositories is a container for all repository instances.
type Repositories struct {
	Users        *UserRepository
	Properties   *PropertyRepository
	Reservations *ReservationRepository
	Reviews      *ReviewRepository
}

// NewRepositories builds every repository on top of db.
//
// queryTimeout is applied to each statement on top of the caller's own
// deadline; zero or less falls back to DefaultQueryTimeout.
func NewRepositories(db database.DBTX, queryTimeout time.Duration) *Repositories {
	q := querier{db: db, timeout: queryTimeout}
	if q.timeout <= 0 {
		q.timeout = DefaultQueryTimeout
	}

	return &Repositories{
		Users:        &UserRepository{q},
		Properties:   &PropertyRepository{q},
		Reservations: &ReservationRepository{q},
		Reviews:      &ReviewRepository{q},
	}
}

// querier is embedded by every repository.
type querier struct {
	db      database.DBTX
	timeout time.Duration
}

// withTimeout derives the per-statement context.
func (q querier) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, q.timeout)
}

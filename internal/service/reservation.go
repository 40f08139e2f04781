package service

import (
	"context"

	"github.com/deppfellow/lightbnb/internal/models"
	"github.com/deppfellow/lightbnb/internal/validation"
	"github.com/rs/zerolog"
)

// ReservationStore is implemented by repository.ReservationRepository.
type ReservationStore interface {
	AddReservation(ctx context.Context, res models.NewReservation) (models.Reservation, error)
	GetUpcomingReservations(ctx context.Context, guestID int64, limit int) ([]models.GuestReservation, error)
	GetFulfilledReservations(ctx context.Context, guestID int64, limit int) ([]models.GuestReservation, error)
	GetPastReservations(ctx context.Context, guestID int64, limit int) ([]models.GuestReservation, error)
	GetReservation(ctx context.Context, id int64) (*models.Reservation, error)
	UpdateReservation(ctx context.Context, id int64, patch models.ReservationPatch) (models.Reservation, error)
	DeleteReservation(ctx context.Context, id int64) error
}

type ReservationService struct {
	reservations ReservationStore
	log          *zerolog.Logger
}

func NewReservationService(reservations ReservationStore, log *zerolog.Logger) *ReservationService {
	return &ReservationService{reservations: reservations, log: log}
}

func (s *ReservationService) Add(ctx context.Context, in models.NewReservation) (models.Reservation, error) {
	if err := validation.Check(in); err != nil {
		return models.Reservation{}, fail(ctx, s.log, "reservation.add", err)
	}

	res, err := s.reservations.AddReservation(ctx, in)
	if err != nil {
		return models.Reservation{}, fail(ctx, s.log, "reservation.add", err)
	}
	return res, nil
}

func (s *ReservationService) Upcoming(ctx context.Context, guestID int64, limit int) ([]models.GuestReservation, error) {
	list, err := s.reservations.GetUpcomingReservations(ctx, guestID, limit)
	if err != nil {
		return nil, fail(ctx, s.log, "reservation.upcoming", err)
	}
	return list, nil
}

func (s *ReservationService) Fulfilled(ctx context.Context, guestID int64, limit int) ([]models.GuestReservation, error) {
	list, err := s.reservations.GetFulfilledReservations(ctx, guestID, limit)
	if err != nil {
		return nil, fail(ctx, s.log, "reservation.fulfilled", err)
	}
	return list, nil
}

func (s *ReservationService) Past(ctx context.Context, guestID int64, limit int) ([]models.GuestReservation, error) {
	list, err := s.reservations.GetPastReservations(ctx, guestID, limit)
	if err != nil {
		return nil, fail(ctx, s.log, "reservation.past", err)
	}
	return list, nil
}

// Get returns the reservation with id, or nil when there is none.
func (s *ReservationService) Get(ctx context.Context, id int64) (*models.Reservation, error) {
	res, err := s.reservations.GetReservation(ctx, id)
	if err != nil {
		return nil, fail(ctx, s.log, "reservation.get", err)
	}
	return res, nil
}

// Update applies a partial change. When only one date is patched it is
// checked against the stored other date.
func (s *ReservationService) Update(ctx context.Context, id int64, patch models.ReservationPatch) (models.Reservation, error) {
	if err := validation.Check(patch); err != nil {
		return models.Reservation{}, fail(ctx, s.log, "reservation.update", err)
	}

	if (patch.StartDate == nil) != (patch.EndDate == nil) {
		current, err := s.reservations.GetReservation(ctx, id)
		if err != nil {
			return models.Reservation{}, fail(ctx, s.log, "reservation.update", err)
		}
		if current != nil {
			merged := models.ReservationPatch{StartDate: &current.StartDate, EndDate: &current.EndDate}
			if patch.StartDate != nil {
				merged.StartDate = patch.StartDate
			}
			if patch.EndDate != nil {
				merged.EndDate = patch.EndDate
			}
			if err := validation.Check(merged); err != nil {
				return models.Reservation{}, fail(ctx, s.log, "reservation.update", err)
			}
		}
	}

	res, err := s.reservations.UpdateReservation(ctx, id, patch)
	if err != nil {
		return models.Reservation{}, fail(ctx, s.log, "reservation.update", err)
	}
	return res, nil
}

func (s *ReservationService) Delete(ctx context.Context, id int64) error {
	if err := s.reservations.DeleteReservation(ctx, id); err != nil {
		return fail(ctx, s.log, "reservation.delete", err)
	}
	return nil
}

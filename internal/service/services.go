package service

import (
	"github.com/deppfellow/lightbnb/internal/repository"
	"github.com/deppfellow/lightbnb/internal/server"
)

type Services struct {
	Users        *UserService
	Properties   *PropertyService
	Reservations *ReservationService
	Reviews      *ReviewService
}

func NewService(s *server.Server, repos *repository.Repositories) (*Services, error) {
	var searchCache SearchCache
	if s.Cache != nil {
		searchCache = s.Cache
	}

	return &Services{
		Users:        NewUserService(repos.Users, s.Config.Auth.BcryptCost, s.Logger),
		Properties:   NewPropertyService(repos.Properties, searchCache, s.Logger),
		Reservations: NewReservationService(repos.Reservations, s.Logger),
		Reviews:      NewReviewService(repos.Reviews, searchCache, s.Logger),
	}, nil
}

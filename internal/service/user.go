package service

import (
	"context"
	"strings"

	"github.com/deppfellow/lightbnb/internal/errs"
	"github.com/deppfellow/lightbnb/internal/lib/utils"
	"github.com/deppfellow/lightbnb/internal/models"
	"github.com/deppfellow/lightbnb/internal/validation"
	"github.com/rs/zerolog"
)

// UserStore is implemented by repository.UserRepository.
type UserStore interface {
	GetUserWithEmail(ctx context.Context, email string) (*models.User, error)
	GetUserWithID(ctx context.Context, id int64) (*models.User, error)
	AddUser(ctx context.Context, user models.NewUser) (models.User, error)
}

type UserService struct {
	users      UserStore
	bcryptCost int
	log        *zerolog.Logger
}

func NewUserService(users UserStore, bcryptCost int, log *zerolog.Logger) *UserService {
	return &UserService{users: users, bcryptCost: bcryptCost, log: log}
}

// Register validates the sign-up, hashes the password and stores the user.
// Emails are stored lowercased so the unique index matches the
// case-insensitive lookups.
func (s *UserService) Register(ctx context.Context, in models.RegisterUser) (models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if err := validation.Check(in); err != nil {
		return models.User{}, fail(ctx, s.log, "user.register", err)
	}

	hash, err := utils.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return models.User{}, fail(ctx, s.log, "user.register", errs.NewInternalError(err))
	}

	user, err := s.users.AddUser(ctx, models.NewUser{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
	})
	if err != nil {
		return models.User{}, fail(ctx, s.log, "user.register", err)
	}

	log := loggerFor(ctx, s.log)
	log.Info().Int64("user_id", user.ID).Msg("user registered")

	return user, nil
}

// Authenticate returns the user whose email and password match. An unknown
// email and a wrong password fail the same way.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	user, err := s.users.GetUserWithEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return models.User{}, fail(ctx, s.log, "user.authenticate", err)
	}

	if user == nil || !utils.CheckPasswordHash(password, user.Password) {
		return models.User{}, fail(ctx, s.log, "user.authenticate", errs.NewUnauthorizedError("Invalid email or password"))
	}

	return *user, nil
}

// GetByEmail returns the user with email, or nil when there is none.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.users.GetUserWithEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, fail(ctx, s.log, "user.get_by_email", err)
	}
	return user, nil
}

// GetByID returns the user with id, or nil when there is none.
func (s *UserService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.users.GetUserWithID(ctx, id)
	if err != nil {
		return nil, fail(ctx, s.log, "user.get_by_id", err)
	}
	return user, nil
}

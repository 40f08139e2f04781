package models

import (
	"fmt"

	"github.com/deppfellow/lightbnb/internal/validation"
)

// User is a row of the users table.
//
// Password holds the bcrypt hash and is never serialized.
type User struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"-"`
}

// NewUser is the input of repository.UserRepository.AddUser.
//
// PasswordHash must already be hashed; the repository stores it verbatim.
type NewUser struct {
	Name         string `json:"name" validate:"required,max=255"`
	Email        string `json:"email" validate:"required,email,max=255"`
	PasswordHash string `json:"-" validate:"required"`
}

func (u NewUser) Validate() error {
	return validation.Struct(u)
}

// RegisterUser is what a caller submits to sign up: the plain text password
// is only ever seen by the service layer, which hashes it.
type RegisterUser struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8"`
}

// MaxPasswordBytes is the most bcrypt will hash.
const MaxPasswordBytes = 72

func (u RegisterUser) Validate() error {
	if err := validation.Struct(u); err != nil {
		return err
	}

	if len(u.Password) > MaxPasswordBytes {
		return validation.CustomValidationErrors{
			{Field: "password", Message: fmt.Sprintf("must be at most %d bytes", MaxPasswordBytes)},
		}
	}

	return nil
}

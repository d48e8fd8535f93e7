package auth

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jrsteele09/academy-admin/internal/validation"
	"github.com/pkg/errors"
)

// Validator checks login input before anything is sent to the backend.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	return &Validator{validate: validation.New()}
}

// ValidateLogin trims the request in place and checks it.
func (v *Validator) ValidateLogin(req *LoginRequest) error {
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		return ErrMissingCredentials
	}

	if err := v.validate.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				if fe.Field() == "email" {
					return ErrInvalidEmail
				}
			}
		}
		return errors.Wrap(err, "[Validator.ValidateLogin]")
	}
	return nil
}

package dto

import (
	"errors"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

var patternPhone = regexp.MustCompile(`^\(\d{3}\)\s\d{3}-\d{4}$`)

// CreateContactRequest payload for new contacts.
type CreateContactRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Validate runs validation rules.
func (r CreateContactRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Phone, validation.Required,
			validation.Match(patternPhone).Error("phone must be in the format: (xxx) xxx-xxxx")),
	)
}

// UpdateContactRequest payload with optional fields; at least one must be set.
type UpdateContactRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Phone *string `json:"phone"`
}

// Validate runs validation rules.
func (r UpdateContactRequest) Validate() error {
	if r.Name == nil && r.Email == nil && r.Phone == nil {
		return errors.New("body must have at least one field")
	}
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.NilOrNotEmpty),
		validation.Field(&r.Email, validation.NilOrNotEmpty, is.Email),
		validation.Field(&r.Phone, validation.NilOrNotEmpty,
			validation.Match(patternPhone).Error("phone must be in the format: (xxx) xxx-xxxx")),
	)
}

// SetFavoriteRequest payload for toggling the favorite flag.
type SetFavoriteRequest struct {
	Favorite *bool `json:"favorite"`
}

// Validate runs validation rules.
func (r SetFavoriteRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Favorite, validation.NotNil),
	)
}

// ContactResponse is the public representation of a contact.
type ContactResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Favorite bool   `json:"favorite"`
}

package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/contacts-api/internal/domain"
	"github.com/spec-kit/contacts-api/internal/events"
	"github.com/spec-kit/contacts-api/internal/repository"
	apperrors "github.com/spec-kit/contacts-api/pkg/util"
)

// ContactService manages the authenticated user's address book.
type ContactService struct {
	contacts   repository.ContactRepository
	dispatcher events.Dispatcher
}

// NewContactService builds the service.
func NewContactService(contacts repository.ContactRepository, dispatcher events.Dispatcher) *ContactService {
	return &ContactService{contacts: contacts, dispatcher: dispatcher}
}

// ContactInput carries fields for creating a contact.
type ContactInput struct {
	Name  string
	Email string
	Phone string
}

// ContactPatch carries optional fields for updating a contact.
type ContactPatch struct {
	Name     *string
	Email    *string
	Phone    *string
	Favorite *bool
}

// List returns the owner's contacts, optionally filtered and paginated.
func (s *ContactService) List(ctx context.Context, ownerID string, filter repository.ContactFilter) ([]*domain.Contact, error) {
	return s.contacts.List(ctx, ownerID, filter)
}

// Get returns one contact; other users' contacts behave as absent.
func (s *ContactService) Get(ctx context.Context, ownerID, id string) (*domain.Contact, error) {
	contact, err := s.contacts.GetByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("contact", nil)
		}
		return nil, err
	}
	return contact, nil
}

// Create adds a contact owned by ownerID.
func (s *ContactService) Create(ctx context.Context, ownerID string, input ContactInput) (*domain.Contact, error) {
	contact := &domain.Contact{
		Name:    input.Name,
		Email:   input.Email,
		Phone:   input.Phone,
		OwnerID: ownerID,
	}
	if err := s.contacts.Create(ctx, contact); err != nil {
		return nil, err
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventContactCreated,
			UserID:    ownerID,
			Timestamp: time.Now(),
			Payload:   events.ContactCreatedPayload{ContactID: contact.ID, Name: contact.Name},
		})
	}
	return contact, nil
}

// Update applies a partial patch to a contact.
func (s *ContactService) Update(ctx context.Context, ownerID, id string, patch ContactPatch) (*domain.Contact, error) {
	contact, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		contact.Name = *patch.Name
	}
	if patch.Email != nil {
		contact.Email = *patch.Email
	}
	if patch.Phone != nil {
		contact.Phone = *patch.Phone
	}
	if patch.Favorite != nil {
		contact.Favorite = *patch.Favorite
	}

	if err := s.contacts.Update(ctx, contact); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("contact", nil)
		}
		return nil, err
	}
	return contact, nil
}

// Delete removes a contact.
func (s *ContactService) Delete(ctx context.Context, ownerID, id string) (*domain.Contact, error) {
	contact, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if err := s.contacts.Delete(ctx, ownerID, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("contact", nil)
		}
		return nil, err
	}
	return contact, nil
}

// SetFavorite toggles the favorite flag.
func (s *ContactService) SetFavorite(ctx context.Context, ownerID, id string, favorite bool) (*domain.Contact, error) {
	contact, err := s.contacts.SetFavorite(ctx, ownerID, id, favorite)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("contact", nil)
		}
		return nil, err
	}
	return contact, nil
}

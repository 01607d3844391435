package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered EventType = "user_registered"
	EventUserVerified   EventType = "user_verified"
	EventUserSignedIn   EventType = "user_signed_in"
	EventUserSignedOut  EventType = "user_signed_out"
	EventAvatarUpdated  EventType = "avatar_updated"
	EventContactCreated EventType = "contact_created"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	UserID    string      `json:"user_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	Email        string `json:"email"`
	Subscription string `json:"subscription"`
}

// AvatarUpdatedPayload payload.
type AvatarUpdatedPayload struct {
	AvatarURL string `json:"avatar_url"`
}

// ContactCreatedPayload payload.
type ContactCreatedPayload struct {
	ContactID string `json:"contact_id"`
	Name      string `json:"name"`
}

package domain

import "time"

// Contact is an address-book entry owned by a single user.
type Contact struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	Favorite  bool
	OwnerID   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

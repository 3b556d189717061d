package domain

import (
	"context"
	"time"

	listing "github.com/Abdurahmanit/GroupProject/classifieds-service/internal/listing/domain"
)

type User struct {
	ID           string         `json:"id"`
	Username     string         `json:"username"`
	Email        string         `json:"email"`
	ContactNo    string         `json:"contact_no"`
	PasswordHash string         `json:"-"`
	Role         listing.Role   `json:"role"`
	Photo        *listing.Image `json:"photo,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// Actor returns the identity this user acts as.
func (u *User) Actor() listing.Actor {
	return listing.Actor{ID: u.ID, Role: u.Role}
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	Count(ctx context.Context) (int64, error)
}

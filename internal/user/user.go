package user

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a user with the given ID does not exist.
var ErrNotFound = errors.New("user not found")

const (
	RoleAdmin  = "admin"
	RoleVendor = "vendor"

	StatusActive   = "active"
	StatusInactive = "inactive"
)

// User is the account record. Credential handling lives in the auth
// collaborator; this record exists for display and audit resolution.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Store interface {
	Create(ctx context.Context, u *User) error
	Get(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]*User, error)
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, id string) error
}

package domain

import (
	"context"
	"time"
)

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	PasswordHash string    `json:"-"`
	IsStaff      bool      `json:"is_staff"`
	Profile      Profile   `json:"profile"`
	DateJoined   time.Time `json:"date_joined"`
}

// Profile always exists for a user; it is written in the same transaction
// that creates the account.
type Profile struct {
	Avatar   string `json:"avatar"`
	Bio      string `json:"bio"`
	Location string `json:"location"`
}

type ProfilePatch struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
	Bio       *string `json:"bio"`
	Location  *string `json:"location"`
	Avatar    *string `json:"-"`
}

type UserRepository interface {
	CreateUserWithProfile(ctx context.Context, user *User) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	GetUserByID(ctx context.Context, id int64) (*User, error)
	UpdateProfile(ctx context.Context, userID int64, patch ProfilePatch) (*User, error)
	// ListCustomers returns non-staff accounts, newest first.
	ListCustomers(ctx context.Context, limit, offset int) ([]User, error)
}

package user

import (
	"errors"
	"time"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already taken")
)

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Redact returns a copy of the user with the password hash cleared.
// Applying it twice yields the same value as applying it once.
func (u User) Redact() User {
	u.PasswordHash = ""
	return u
}

// Registered is the signup response body.
type Registered struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// SignedIn is the signin response body.
type SignedIn struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func NewRegistered(u User) Registered {
	return Registered{ID: u.ID, Email: u.Email}
}

func NewSignedIn(u User) SignedIn {
	return SignedIn{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

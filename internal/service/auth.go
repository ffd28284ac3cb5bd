package service

import (
	"context"
	"errors"

	"github.com/jforshea/authhub/internal/domain/user"
	"github.com/jforshea/authhub/internal/security"
)

// Client-facing messages are fixed per error kind so callers cannot tell
// apart the underlying causes.
var (
	ErrDuplicateEmail     = errors.New("User with that email already exists")
	ErrInvalidCredentials = errors.New("Wrong credentials provided")
	ErrInternal           = errors.New("Something went wrong")
)

// Small interfaces so tests can fake the collaborators easily.

type UserStore interface {
	Create(ctx context.Context, u user.User) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id int64) (user.User, error)
}

type TokenIssuer interface {
	SessionCookie(userID int64) (string, error)
	ClearCookie() string
}

type UserCache interface {
	Get(ctx context.Context, id int64) (user.User, bool)
	Set(ctx context.Context, u user.User)
}

type Auth struct {
	store  UserStore
	tokens TokenIssuer
	cache  UserCache // optional
}

func NewAuth(store UserStore, tokens TokenIssuer, cache UserCache) *Auth {
	return &Auth{
		store:  store,
		tokens: tokens,
		cache:  cache,
	}
}

type RegisterInput struct {
	Email     string
	FirstName string
	LastName  string
	Password  string
}

// Register hashes the plaintext password, persists the user and returns
// the created record with the hash redacted. Uniqueness is enforced by
// the store; a pre-check here would be a check-then-act race.
func (a *Auth) Register(ctx context.Context, in RegisterInput) (user.User, error) {
	hash, err := security.HashPassword(in.Password)

	if err != nil {
		return user.User{}, ErrInternal
	}

	created, err := a.store.Create(ctx, user.User{
		Email:        in.Email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: hash,
	})

	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			return user.User{}, ErrDuplicateEmail
		}

		return user.User{}, ErrInternal
	}

	return created.Redact(), nil
}

// Authenticate verifies the credential pair against the store. A lookup
// miss and a password mismatch return the identical error so responses
// cannot be used to enumerate accounts; any other store failure is an
// internal error, not a credential rejection.
func (a *Auth) Authenticate(ctx context.Context, email, password string) (user.User, error) {
	found, err := a.store.GetByEmail(ctx, email)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, ErrInvalidCredentials
		}

		return user.User{}, ErrInternal
	}

	if !security.CheckPassword(found.PasswordHash, password) {
		return user.User{}, ErrInvalidCredentials
	}

	return found.Redact(), nil
}

// UserByID resolves the user behind a verified session token. Results
// are cached redacted, so the hash never reaches the cache.
func (a *Auth) UserByID(ctx context.Context, id int64) (user.User, error) {
	if a.cache != nil {
		if cached, ok := a.cache.Get(ctx, id); ok {
			return cached, nil
		}
	}

	found, err := a.store.GetByID(ctx, id)

	if err != nil {
		return user.User{}, err
	}

	redacted := found.Redact()

	if a.cache != nil {
		a.cache.Set(ctx, redacted)
	}

	return redacted, nil
}

func (a *Auth) SessionCookie(userID int64) (string, error) {
	return a.tokens.SessionCookie(userID)
}

func (a *Auth) LogoutCookie() string {
	return a.tokens.ClearCookie()
}

package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// CookieName is the cookie carrying the session token.
const CookieName = "Authentication"

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	UserID int64  `json:"userId"`
	JTI    string `json:"jti"`
	jwt.RegisteredClaims
}

// Manager signs and verifies the session tokens and renders them as
// Set-Cookie values.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Sign issues an HS256 token for the given user id, valid for the
// configured TTL.
func (m *Manager) Sign(userID int64) (string, error) {
	now := time.Now().UTC()

	claims := Claims{
		UserID: userID,
		JTI:    uuid.NewString(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			Subject:   strconv.FormatInt(userID, 10),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// SessionCookie issues a token and wraps it in the cookie attribute
// string the signin response sets.
func (m *Manager) SessionCookie(userID int64) (string, error) {
	token, err := m.Sign(userID)

	if err != nil {
		return "", err
	}

	maxAge := int(m.ttl.Seconds())

	return fmt.Sprintf("%s=%s; HttpOnly; Path=/; Max-Age=%d", CookieName, token, maxAge), nil
}

// ClearCookie returns the cookie attribute string that makes the client
// drop the session cookie immediately.
func (m *Manager) ClearCookie() string {
	return fmt.Sprintf("%s=; HttpOnly; Path=/; Max-Age=0", CookieName)
}

// Verify checks signature and expiry and returns the embedded claims.
func (m *Manager) Verify(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		// Enforce HS256

		_, ok := t.Method.(*jwt.SigningMethodHMAC)

		if !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})

	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)

	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

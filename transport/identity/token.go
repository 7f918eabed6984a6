package identity

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/AntonStoeckl/reviewfeed/moviereviews/shared/core"
)

const bearerPrefix = "Bearer "

var (
	// ErrInvalidToken is returned for a present but unusable bearer token.
	ErrInvalidToken = errors.New("invalid bearer token")

	// ErrEmptySecret is returned when the manager is built without a signing secret.
	ErrEmptySecret = errors.New("jwt secret must not be empty")
)

// Claims are the JWT claims of a viewer token.
type Claims struct {
	Name   string `json:"name,omitempty"`
	Avatar string `json:"avatar,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies viewer tokens.
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	clock  func() time.Time
}

// Option defines a functional option for configuring TokenManager.
type Option func(*TokenManager)

// WithClock replaces time.Now for issuing and verifying.
func WithClock(clock func() time.Time) Option {
	return func(m *TokenManager) {
		m.clock = clock
	}
}

// NewTokenManager creates a TokenManager signing with secret.
func NewTokenManager(secret string, issuer string, ttl time.Duration, options ...Option) (*TokenManager, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}

	m := &TokenManager{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		clock:  time.Now,
	}

	for _, option := range options {
		option(m)
	}

	return m, nil
}

// Issue creates a signed token for viewer.
func (m *TokenManager) Issue(viewer core.Viewer) (string, error) {
	if !viewer.IsAuthenticated() {
		return "", core.ErrAuthenticationRequired
	}

	now := m.clock()
	claims := Claims{
		Name:   viewer.DisplayName,
		Avatar: viewer.AvatarURL,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   viewer.ID,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}

	return signed, nil
}

// Verify checks signature, issuer and expiry and returns the viewer the token names.
func (m *TokenManager) Verify(token string) (core.Viewer, error) {
	claims := &Claims{}

	parsed, err := jwt.ParseWithClaims(
		token,
		claims,
		func(*jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.clock),
	)
	if err != nil {
		return core.Anonymous(), errors.Join(ErrInvalidToken, err)
	}

	if !parsed.Valid || claims.Subject == "" {
		return core.Anonymous(), ErrInvalidToken
	}

	return core.Viewer{
		ID:          claims.Subject,
		DisplayName: claims.Name,
		AvatarURL:   claims.Avatar,
	}, nil
}

// ViewerFromRequest reads the Authorization header. No header means the anonymous viewer.
func (m *TokenManager) ViewerFromRequest(r *http.Request) (core.Viewer, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return core.Anonymous(), nil
	}

	if !strings.HasPrefix(header, bearerPrefix) {
		return core.Anonymous(), ErrInvalidToken
	}

	return m.Verify(strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix)))
}

// Package auth issues and verifies the JWT bearer tokens of the API.
package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/cafecanaima/canaima/canaima"
	"github.com/cafecanaima/canaima/canaima/httperr"
	"github.com/diamondburned/duration"
	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// Issuer is the iss claim of every token.
const Issuer = "canaima"

var ErrInvalidToken = httperr.New(401, "invalid or expired token")

type AuthConfig struct {
	JWTSecret     string `toml:"jwtSecret"`
	TokenLifespan string `toml:"tokenLifespan"`

	tokenLifespan time.Duration
}

func NewConfig() AuthConfig {
	return AuthConfig{
		TokenLifespan: "7d",
	}
}

func (c *AuthConfig) Validate() error {
	if len(c.JWTSecret) < 32 {
		return errors.New("`jwtSecret' must be at least 32 characters")
	}

	d, err := duration.ParseDuration(c.TokenLifespan)
	if err != nil {
		return errors.Wrap(err, "invalid token lifespan")
	}
	c.tokenLifespan = time.Duration(d)

	return nil
}

// Claims is the payload of every token.
type Claims struct {
	UserID     int64              `json:"uid"`
	Permission canaima.Permission `json:"perm"`
	jwt.RegisteredClaims
}

// Signer signs and verifies tokens with a HS256 key.
type Signer struct {
	key      []byte
	lifespan time.Duration
	now      func() time.Time
}

func NewSigner(cfg AuthConfig) (*Signer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Signer{
		key:      []byte(cfg.JWTSecret),
		lifespan: cfg.tokenLifespan,
		now:      time.Now,
	}, nil
}

// Sign issues a token for the given user.
func (s *Signer) Sign(u canaima.UserPart) (string, error) {
	var now = s.now()

	claims := Claims{
		UserID:     u.ID,
		Permission: u.Permission,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.lifespan)),
		},
	}

	t, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", errors.Wrap(err, "Failed to sign token")
	}

	return t, nil
}

// Verify parses the token and returns its claims.
func (s *Signer) Verify(token string) (*Claims, error) {
	claims := &Claims{}

	t, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithTimeFunc(s.now),
	)

	if err != nil || !t.Valid || claims.UserID == 0 {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// TokenFromRequest returns the bearer token of the request, or an empty string
// if there is none. The "token" cookie is accepted as a fallback.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}

	if c, err := r.Cookie("token"); err == nil {
		return c.Value
	}

	return ""
}

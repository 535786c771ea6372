// Package session mints and verifies signed admin session tokens.
package session

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/devsphere/devsphere/internal/platform/errors"
	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidOrExpired indicates a token that fails verification or has
// passed its embedded expiry.
var ErrInvalidOrExpired = apperrors.New(apperrors.CodeSessionInvalid, "invalid or expired token")

// Claims captures the identity embedded in a session token.
type Claims struct {
	AdminID string
	Email   string
	Role    string
}

// tokenClaims is the internal claims type used for JWT signing and parsing.
type tokenClaims struct {
	jwt.RegisteredClaims
	AdminID string `json:"id"`
	Email   string `json:"email"`
	Role    string `json:"role"`
}

// Issuer signs and verifies session tokens with a shared HMAC secret.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer builds a session issuer from configuration.
func NewIssuer(cfg Config, now func() time.Time) (*Issuer, error) {
	secret := strings.TrimSpace(cfg.Secret)
	if secret == "" {
		return nil, fmt.Errorf("session secret is required")
	}
	ttl := cfg.TTL
	if ttl == 0 {
		ttl = 7 * 24 * time.Hour
	}
	if now == nil {
		now = time.Now
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, now: now}, nil
}

// TTL returns the validity window applied to minted tokens.
func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

// Mint produces a signed token embedding the admin identity, valid for one
// validity window from now.
func (i *Issuer) Mint(adminID, email, role string) (string, error) {
	if strings.TrimSpace(adminID) == "" {
		return "", fmt.Errorf("admin id is required")
	}
	issuedAt := i.now().UTC()
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(i.ttl)),
		},
		AdminID: adminID,
		Email:   email,
		Role:    role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Verify checks a token's signature and expiry and returns the embedded
// identity. Any failure is reported as ErrInvalidOrExpired; callers never
// learn whether the signature or the expiry was at fault.
func (i *Issuer) Verify(token string) (Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Claims{}, ErrInvalidOrExpired
	}

	var parsed tokenClaims
	_, err := jwt.ParseWithClaims(token, &parsed, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return Claims{}, ErrInvalidOrExpired
	}
	if strings.TrimSpace(parsed.AdminID) == "" {
		return Claims{}, ErrInvalidOrExpired
	}

	return Claims{
		AdminID: parsed.AdminID,
		Email:   parsed.Email,
		Role:    parsed.Role,
	}, nil
}

// Package otp issues and checks one-time email verification passcodes.
package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// codeMin and codeSpan bound generated codes to the full six-digit decimal
// range; a leading zero is impossible by construction.
const (
	codeMin  = 100000
	codeSpan = 900000
)

// Issuer produces one-time passcodes with a fixed validity window.
type Issuer struct {
	ttl time.Duration
	now func() time.Time
}

// Code is an issued passcode together with its expiry instant.
type Code struct {
	Value     string
	ExpiresAt time.Time
}

// NewIssuer builds an issuer. A zero ttl falls back to the configured default
// and a nil clock falls back to time.Now.
func NewIssuer(cfg Config, now func() time.Time) *Issuer {
	ttl := cfg.TTL
	if ttl == 0 {
		ttl = 10 * time.Minute
	}
	if now == nil {
		now = time.Now
	}
	return &Issuer{ttl: ttl, now: now}
}

// TTL returns the validity window applied to issued codes.
func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

// Issue produces a uniformly random six-digit code expiring one validity
// window from now.
func (i *Issuer) Issue() (Code, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeSpan))
	if err != nil {
		return Code{}, fmt.Errorf("generate otp: %w", err)
	}
	return Code{
		Value:     fmt.Sprintf("%06d", n.Int64()+codeMin),
		ExpiresAt: i.now().UTC().Add(i.ttl),
	}, nil
}

// Expired reports whether a code's validity window has passed.
//
// The boundary is exclusive: a check at exactly the expiry instant still
// counts as valid.
func Expired(expiresAt time.Time, now time.Time) bool {
	return now.After(expiresAt)
}

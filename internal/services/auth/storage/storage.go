// Package storage defines persistence interfaces for admin identity records.
package storage

import (
	"context"
	"time"

	apperrors "github.com/devsphere/devsphere/internal/platform/errors"
	"github.com/devsphere/devsphere/internal/services/auth/admin"
)

var (
	// ErrNotFound indicates a requested record is missing.
	ErrNotFound = apperrors.New(apperrors.CodeNotFound, "record not found")
	// ErrDuplicateEmail indicates the email's unique index already holds a record.
	ErrDuplicateEmail = apperrors.New(apperrors.CodeEmailConflict, "email already registered")
	// ErrOTPConflict indicates the stored passcode changed between read and
	// consume, so the conditional update matched nothing.
	ErrOTPConflict = apperrors.New(apperrors.CodeOTPNotPending, "stored passcode changed concurrently")
)

// AdminStore persists admin identity records.
//
// Default reads omit credential material (password hash and passcode fields);
// the WithSecrets variant opts into the full projection. Concurrent sign-ups
// race on the email unique index and the loser receives ErrDuplicateEmail.
type AdminStore interface {
	// CreateAdmin inserts a new admin record.
	CreateAdmin(ctx context.Context, a admin.Admin) error
	// GetAdminByEmail fetches an admin without credential material.
	GetAdminByEmail(ctx context.Context, email string) (admin.Admin, error)
	// GetAdminByEmailWithSecrets fetches an admin including the password hash
	// and any pending passcode.
	GetAdminByEmailWithSecrets(ctx context.Context, email string) (admin.Admin, error)
	// GetAdminByID fetches an admin without credential material.
	GetAdminByID(ctx context.Context, adminID string) (admin.Admin, error)
	// SetOTP stores a pending passcode and its expiry on the admin record.
	SetOTP(ctx context.Context, adminID string, code string, expiresAt time.Time, now time.Time) error
	// ConsumeOTP marks the admin verified and clears the passcode, keyed on
	// the expected stored code so a concurrent resend cannot be consumed by a
	// stale submission. Returns ErrOTPConflict when the stored code differs.
	ConsumeOTP(ctx context.Context, adminID string, code string, now time.Time) error
	// LinkGoogle attaches a Google identity, marks the email verified, and
	// refreshes the avatar when one is supplied.
	LinkGoogle(ctx context.Context, adminID string, googleID string, avatar string, now time.Time) error
}

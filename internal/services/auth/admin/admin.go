// Package admin provides the admin identity model and credential rules.
package admin

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	apperrors "github.com/devsphere/devsphere/internal/platform/errors"
	"github.com/devsphere/devsphere/internal/platform/id"
	"golang.org/x/crypto/bcrypt"
)

// Role identifies the privilege tier of an admin account.
type Role string

const (
	// RoleAdmin is the default role assigned on sign-up.
	RoleAdmin Role = "admin"
	// RoleSuperadmin marks elevated accounts provisioned out of band.
	RoleSuperadmin Role = "superadmin"
)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 8

// passwordHashCost matches the cost the platform has always hashed with.
const passwordHashCost = 12

var (
	// ErrEmptyEmail indicates a missing email address.
	ErrEmptyEmail = apperrors.New(apperrors.CodeInvalidArgument, "email is required")
	// ErrInvalidEmail indicates an email that does not match the accepted format.
	ErrInvalidEmail = apperrors.New(apperrors.CodeInvalidArgument, "email address is invalid")
	// ErrEmptyName indicates a missing display name.
	ErrEmptyName = apperrors.New(apperrors.CodeInvalidArgument, "name is required")
	// ErrPasswordTooShort indicates a password below the minimum length.
	ErrPasswordTooShort = apperrors.New(apperrors.CodeInvalidArgument, "password must be at least 8 characters")

	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)
)

// Admin is the stored identity record for an administrator.
//
// PasswordHash, OTP, and OTPExpiry are credential material: default store
// reads omit them and they never serialize to JSON.
type Admin struct {
	ID              string     `bson:"_id" json:"id"`
	Email           string     `bson:"email" json:"email"`
	PasswordHash    string     `bson:"passwordHash,omitempty" json:"-"`
	Name            string     `bson:"name" json:"name"`
	Avatar          string     `bson:"avatar,omitempty" json:"avatar,omitempty"`
	Role            Role       `bson:"role" json:"role"`
	GoogleID        string     `bson:"googleId,omitempty" json:"-"`
	IsEmailVerified bool       `bson:"isEmailVerified" json:"isEmailVerified"`
	OTP             string     `bson:"otp,omitempty" json:"-"`
	OTPExpiry       *time.Time `bson:"otpExpiry,omitempty" json:"-"`
	CreatedAt       time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time  `bson:"updatedAt" json:"updatedAt"`
}

// PublicView is the subset of an Admin safe to return to a client.
type PublicView struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   Role   `json:"role"`
	Avatar string `json:"avatar,omitempty"`
}

// PublicView returns the client-safe projection of the admin.
func (a Admin) PublicView() PublicView {
	return PublicView{
		ID:     a.ID,
		Email:  a.Email,
		Name:   a.Name,
		Role:   a.Role,
		Avatar: a.Avatar,
	}
}

// CreateAdminInput describes the metadata needed to create an admin.
type CreateAdminInput struct {
	Email    string
	Name     string
	Avatar   string
	GoogleID string
	Verified bool
}

// NormalizeEmail lowercases and trims an email address for identity lookups.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ValidateEmail enforces the canonical address format used as identity key.
func ValidateEmail(s string) error {
	if s == "" {
		return ErrEmptyEmail
	}
	if !emailPattern.MatchString(s) {
		return ErrInvalidEmail
	}
	return nil
}

// ValidatePassword enforces the minimum password length.
func ValidatePassword(s string) error {
	if len(s) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

// New creates a durable admin identity from validated input.
//
// This is the canonical point where untrusted sign-up data becomes a stable
// identity used by session issuance and event administration.
func New(input CreateAdminInput, now func() time.Time, idGenerator func() (string, error)) (Admin, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	normalized, err := NormalizeCreateAdminInput(input)
	if err != nil {
		return Admin{}, err
	}

	adminID, err := idGenerator()
	if err != nil {
		return Admin{}, fmt.Errorf("generate admin id: %w", err)
	}

	createdAt := now().UTC()
	return Admin{
		ID:              adminID,
		Email:           normalized.Email,
		Name:            normalized.Name,
		Avatar:          normalized.Avatar,
		Role:            RoleAdmin,
		GoogleID:        normalized.GoogleID,
		IsEmailVerified: normalized.Verified,
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
	}, nil
}

// NormalizeCreateAdminInput trims and normalizes input before validation.
func NormalizeCreateAdminInput(input CreateAdminInput) (CreateAdminInput, error) {
	input.Email = NormalizeEmail(input.Email)
	if err := ValidateEmail(input.Email); err != nil {
		return CreateAdminInput{}, err
	}
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return CreateAdminInput{}, ErrEmptyName
	}
	input.Avatar = strings.TrimSpace(input.Avatar)
	input.GoogleID = strings.TrimSpace(input.GoogleID)
	return input, nil
}

// HashPassword derives the stored credential hash for a password.
func HashPassword(password string) (string, error) {
	if err := ValidatePassword(password); err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordHashCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// ComparePassword reports whether a candidate password matches the stored hash.
func ComparePassword(hash, candidate string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(candidate)) == nil
}

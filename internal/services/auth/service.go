// Package auth orchestrates admin sign-up, sign-in, and email verification.
package auth

import (
	"context"
	"errors"
	"log"
	"time"

	apperrors "github.com/devsphere/devsphere/internal/platform/errors"
	"github.com/devsphere/devsphere/internal/platform/id"
	"github.com/devsphere/devsphere/internal/services/auth/admin"
	"github.com/devsphere/devsphere/internal/services/auth/otp"
	"github.com/devsphere/devsphere/internal/services/auth/session"
	"github.com/devsphere/devsphere/internal/services/auth/storage"
	"github.com/devsphere/devsphere/internal/services/mail"
)

// Result is the uniform outcome shape for every auth operation.
//
// Token never serializes: the HTTP layer reads it to set or clear the
// session cookie and clients only ever see the cookie.
type Result struct {
	Success     bool              `json:"success"`
	Message     string            `json:"message"`
	Admin       *admin.PublicView `json:"admin,omitempty"`
	RequiresOTP bool              `json:"requiresOTP,omitempty"`
	Token       string            `json:"-"`
}

// SignUpInput carries the sign-up form fields.
type SignUpInput struct {
	Email    string
	Password string
	Name     string
}

// SignInInput carries the sign-in form fields.
type SignInInput struct {
	Email    string
	Password string
}

// VerifyOTPInput carries an email verification attempt.
type VerifyOTPInput struct {
	Email string
	Code  string
}

// GoogleSignInInput carries a server-validated Google identity.
type GoogleSignInInput struct {
	Email    string
	Name     string
	GoogleID string
	Avatar   string
}

// Service orchestrates the admin authentication flows.
//
// Expected outcomes (bad credentials, expired passcodes, conflicts) come
// back as a failed Result with a nil error; a non-nil error always means
// infrastructure trouble the caller should report generically.
type Service struct {
	store       storage.AdminStore
	otp         *otp.Issuer
	sessions    *session.Issuer
	mail        *mail.Dispatcher
	now         func() time.Time
	idGenerator func() (string, error)
	log         *log.Logger
}

// NewService wires the orchestrator's collaborators. A nil clock falls back
// to time.Now, a nil id generator to the platform default, and a nil logger
// to the standard logger.
func NewService(store storage.AdminStore, issuer *otp.Issuer, sessions *session.Issuer, dispatcher *mail.Dispatcher, now func() time.Time, idGenerator func() (string, error), logger *log.Logger) *Service {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Service{
		store:       store,
		otp:         issuer,
		sessions:    sessions,
		mail:        dispatcher,
		now:         now,
		idGenerator: idGenerator,
		log:         logger,
	}
}

// SignUp creates an unverified admin and emails a verification passcode.
//
// Email delivery is detached: a failed send is logged by the dispatcher and
// the sign-up still reports success.
func (s *Service) SignUp(ctx context.Context, input SignUpInput) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	hash, err := admin.HashPassword(input.Password)
	if err != nil {
		return rejected(err)
	}

	record, err := admin.New(admin.CreateAdminInput{
		Email: input.Email,
		Name:  input.Name,
	}, s.now, s.idGenerator)
	if err != nil {
		return rejected(err)
	}
	record.PasswordHash = hash

	if err := s.store.CreateAdmin(ctx, record); err != nil {
		if errors.Is(err, storage.ErrDuplicateEmail) {
			return Result{Message: "Email already registered"}, nil
		}
		return Result{}, err
	}

	if err := s.issueOTP(ctx, record); err != nil {
		return Result{}, err
	}

	return Result{
		Success: true,
		Message: "Admin created. Please check your email for the verification code.",
	}, nil
}

// SignIn checks credentials and mints a session for verified admins.
//
// Unknown email, absent hash, and wrong password all produce the same
// message so the response never confirms whether an account exists. An
// unverified admin receives a fresh passcode instead of a session.
func (s *Service) SignIn(ctx context.Context, input SignInInput) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	record, err := s.store.GetAdminByEmailWithSecrets(ctx, admin.NormalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Result{Message: "Invalid credentials"}, nil
		}
		return Result{}, err
	}
	if record.PasswordHash == "" || !admin.ComparePassword(record.PasswordHash, input.Password) {
		return Result{Message: "Invalid credentials"}, nil
	}

	if !record.IsEmailVerified {
		if err := s.issueOTP(ctx, record); err != nil {
			return Result{}, err
		}
		return Result{
			Message:     "Please verify your email. Check your inbox for the verification code.",
			RequiresOTP: true,
		}, nil
	}

	token, err := s.sessions.Mint(record.ID, record.Email, string(record.Role))
	if err != nil {
		return Result{}, err
	}

	view := record.PublicView()
	return Result{
		Success: true,
		Message: "Sign in successful",
		Admin:   &view,
		Token:   token,
	}, nil
}

// VerifyOTP checks a pending passcode, marks the admin verified, and mints
// a session. The stored record is the arbiter: consumption is conditional on
// the exact code still being pending, so a concurrent resend invalidates a
// stale submission.
func (s *Service) VerifyOTP(ctx context.Context, input VerifyOTPInput) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	record, err := s.store.GetAdminByEmailWithSecrets(ctx, admin.NormalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Result{Message: "Admin not found"}, nil
		}
		return Result{}, err
	}

	if record.OTP == "" || record.OTPExpiry == nil {
		return Result{Message: "No OTP found. Please request a new one."}, nil
	}
	if otp.Expired(*record.OTPExpiry, s.now().UTC()) {
		return Result{Message: "OTP expired. Please request a new one."}, nil
	}
	if record.OTP != input.Code {
		return Result{Message: "Invalid OTP"}, nil
	}

	if err := s.store.ConsumeOTP(ctx, record.ID, input.Code, s.now().UTC()); err != nil {
		if errors.Is(err, storage.ErrOTPConflict) {
			return Result{Message: "No OTP found. Please request a new one."}, nil
		}
		return Result{}, err
	}

	s.mail.Dispatch(mail.WelcomeMessage(record.Email, record.Name))

	token, err := s.sessions.Mint(record.ID, record.Email, string(record.Role))
	if err != nil {
		return Result{}, err
	}

	view := record.PublicView()
	return Result{
		Success: true,
		Message: "Email verified successfully",
		Admin:   &view,
		Token:   token,
	}, nil
}

// SignInWithGoogle signs in a server-validated Google identity, creating or
// linking the admin record as needed. Repeated calls with the same identity
// converge on the same record.
func (s *Service) SignInWithGoogle(ctx context.Context, input GoogleSignInInput) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	email := admin.NormalizeEmail(input.Email)
	record, err := s.store.GetAdminByEmail(ctx, email)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		record, err = admin.New(admin.CreateAdminInput{
			Email:    email,
			Name:     input.Name,
			Avatar:   input.Avatar,
			GoogleID: input.GoogleID,
			Verified: true,
		}, s.now, s.idGenerator)
		if err != nil {
			return rejected(err)
		}
		if err := s.store.CreateAdmin(ctx, record); err != nil {
			// Lost a creation race; the winner's record is the identity.
			if !errors.Is(err, storage.ErrDuplicateEmail) {
				return Result{}, err
			}
			s.log.Printf("google sign-in: concurrent creation detected, reusing existing record")
			record, err = s.store.GetAdminByEmail(ctx, email)
			if err != nil {
				return Result{}, err
			}
		}
	case err != nil:
		return Result{}, err
	}

	if record.GoogleID == "" {
		if err := s.store.LinkGoogle(ctx, record.ID, input.GoogleID, input.Avatar, s.now().UTC()); err != nil {
			return Result{}, err
		}
		record.GoogleID = input.GoogleID
		record.IsEmailVerified = true
		if input.Avatar != "" {
			record.Avatar = input.Avatar
		}
	}

	token, err := s.sessions.Mint(record.ID, record.Email, string(record.Role))
	if err != nil {
		return Result{}, err
	}

	view := record.PublicView()
	return Result{
		Success: true,
		Message: "Google sign in successful",
		Admin:   &view,
		Token:   token,
	}, nil
}

// ResendOTP issues a fresh passcode for an unverified admin.
func (s *Service) ResendOTP(ctx context.Context, email string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	record, err := s.store.GetAdminByEmail(ctx, admin.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Result{Message: "Admin not found"}, nil
		}
		return Result{}, err
	}
	if record.IsEmailVerified {
		return Result{Message: "Email already verified"}, nil
	}

	if err := s.issueOTP(ctx, record); err != nil {
		return Result{}, err
	}

	return Result{
		Success: true,
		Message: "Verification code sent to your email",
	}, nil
}

// CurrentAdmin resolves a session token to the current persisted admin.
//
// The token only carries identity; the record is re-fetched so the response
// reflects changes made after the session was minted.
func (s *Service) CurrentAdmin(ctx context.Context, token string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if token == "" {
		return Result{Message: "Not authenticated"}, nil
	}

	claims, err := s.sessions.Verify(token)
	if err != nil {
		return Result{Message: "Invalid or expired token"}, nil
	}

	record, err := s.store.GetAdminByID(ctx, claims.AdminID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Result{Message: "Admin not found"}, nil
		}
		return Result{}, err
	}

	view := record.PublicView()
	return Result{
		Success: true,
		Message: "Authenticated",
		Admin:   &view,
	}, nil
}

// SignOut always succeeds; the HTTP layer clears the cookie.
func (s *Service) SignOut() Result {
	return Result{Success: true, Message: "Signed out successfully"}
}

// issueOTP stores a fresh passcode on the record and dispatches the
// verification email without waiting on delivery.
func (s *Service) issueOTP(ctx context.Context, record admin.Admin) error {
	code, err := s.otp.Issue()
	if err != nil {
		return err
	}
	if err := s.store.SetOTP(ctx, record.ID, code.Value, code.ExpiresAt, s.now().UTC()); err != nil {
		return err
	}
	s.mail.Dispatch(mail.OTPMessage(record.Email, record.Name, code.Value))
	return nil
}

// rejected converts an input validation error into a failed result; other
// errors pass through for generic reporting.
func rejected(err error) (Result, error) {
	if apperrors.CodeOf(err) == apperrors.CodeInvalidArgument {
		return Result{Message: err.Error()}, nil
	}
	return Result{}, err
}

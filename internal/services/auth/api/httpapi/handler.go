// Package httpapi exposes the admin authentication flows over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/devsphere/devsphere/internal/services/auth"
	"github.com/devsphere/devsphere/internal/services/auth/session"
)

// maxBodyBytes bounds auth request bodies; the largest legitimate payload is
// a short JSON form.
const maxBodyBytes = 16 << 10

// Service is the auth orchestrator surface the handler depends on.
type Service interface {
	SignUp(ctx context.Context, input auth.SignUpInput) (auth.Result, error)
	SignIn(ctx context.Context, input auth.SignInInput) (auth.Result, error)
	VerifyOTP(ctx context.Context, input auth.VerifyOTPInput) (auth.Result, error)
	SignInWithGoogle(ctx context.Context, input auth.GoogleSignInInput) (auth.Result, error)
	ResendOTP(ctx context.Context, email string) (auth.Result, error)
	CurrentAdmin(ctx context.Context, token string) (auth.Result, error)
	SignOut() auth.Result
}

// GoogleResolver turns a client-supplied access token into a verified
// Google identity. Resolution happens server-side so the handler never
// trusts identity fields from the request body.
type GoogleResolver interface {
	Resolve(ctx context.Context, accessToken string) (auth.GoogleSignInInput, error)
}

// Handler serves the two-endpoint auth surface.
type Handler struct {
	service       Service
	google        GoogleResolver
	cookieTTL     time.Duration
	secureCookies bool
	log           *log.Logger
}

// NewHandler builds the auth HTTP handler. The cookie TTL should match the
// session issuer's token TTL so the cookie and the token expire together.
func NewHandler(service Service, google GoogleResolver, cookieTTL time.Duration, secureCookies bool, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{
		service:       service,
		google:        google,
		cookieTTL:     cookieTTL,
		secureCookies: secureCookies,
		log:           logger,
	}
}

// RegisterRoutes wires auth routes into the provided mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	if mux == nil {
		return
	}
	mux.HandleFunc("/api/auth", h.HandleAuth)
}

// HandleAuth dispatches the auth endpoint by method: POST runs an action,
// GET resolves the current admin from the session cookie.
func (h *Handler) HandleAuth(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handleAction(w, r)
	case http.MethodGet:
		h.handleCurrentAdmin(w, r)
	default:
		w.Header().Set("Allow", http.MethodGet+", "+http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// actionEnvelope carries the discriminator; the selected action re-decodes
// the same body into its own request type.
type actionEnvelope struct {
	Action string `json:"action"`
}

type signUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type googleSignInRequest struct {
	AccessToken string `json:"accessToken"`
}

type resendOTPRequest struct {
	Email string `json:"email"`
}

func (h *Handler) handleAction(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeResult(w, http.StatusBadRequest, auth.Result{Message: "Invalid request body"})
		return
	}

	var envelope actionEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		writeResult(w, http.StatusBadRequest, auth.Result{Message: "Invalid request body"})
		return
	}

	ctx := r.Context()
	var result auth.Result
	switch envelope.Action {
	case "signup":
		var req signUpRequest
		if err := json.Unmarshal(body, &req); err != nil {
			writeResult(w, http.StatusBadRequest, auth.Result{Message: "Invalid request body"})
			return
		}
		result, err = h.service.SignUp(ctx, auth.SignUpInput(req))

	case "signin":
		var req signInRequest
		if err := json.Unmarshal(body, &req); err != nil {
			writeResult(w, http.StatusBadRequest, auth.Result{Message: "Invalid request body"})
			return
		}
		result, err = h.service.SignIn(ctx, auth.SignInInput(req))

	case "verify-otp":
		var req verifyOTPRequest
		if err := json.Unmarshal(body, &req); err != nil {
			writeResult(w, http.StatusBadRequest, auth.Result{Message: "Invalid request body"})
			return
		}
		result, err = h.service.VerifyOTP(ctx, auth.VerifyOTPInput{Email: req.Email, Code: req.OTP})

	case "google-signin":
		var req googleSignInRequest
		if err := json.Unmarshal(body, &req); err != nil {
			writeResult(w, http.StatusBadRequest, auth.Result{Message: "Invalid request body"})
			return
		}
		result, err = h.googleSignIn(ctx, req.AccessToken)

	case "signout":
		session.ClearCookie(w, h.secureCookies)
		writeResult(w, http.StatusOK, h.service.SignOut())
		return

	case "resend-otp":
		var req resendOTPRequest
		if err := json.Unmarshal(body, &req); err != nil {
			writeResult(w, http.StatusBadRequest, auth.Result{Message: "Invalid request body"})
			return
		}
		result, err = h.service.ResendOTP(ctx, req.Email)

	default:
		writeResult(w, http.StatusBadRequest, auth.Result{Message: "Invalid action"})
		return
	}

	if err != nil {
		h.log.Printf("auth action %q failed: %v", envelope.Action, err)
		writeResult(w, http.StatusInternalServerError, auth.Result{Message: "Authentication failed"})
		return
	}

	if result.Token != "" {
		session.WriteCookie(w, result.Token, h.cookieTTL, h.secureCookies)
	}
	writeResult(w, http.StatusOK, result)
}

// googleSignIn resolves the access token to a verified identity before
// handing it to the orchestrator. An unresolvable token reads as a failed
// sign-in rather than an infrastructure error.
func (h *Handler) googleSignIn(ctx context.Context, accessToken string) (auth.Result, error) {
	if h.google == nil {
		return auth.Result{Message: "Google sign in is not configured"}, nil
	}
	identity, err := h.google.Resolve(ctx, accessToken)
	if err != nil {
		h.log.Printf("google identity resolution failed: %v", err)
		return auth.Result{Message: "Google sign in failed"}, nil
	}
	return h.service.SignInWithGoogle(ctx, identity)
}

func (h *Handler) handleCurrentAdmin(w http.ResponseWriter, r *http.Request) {
	token, _ := session.ReadCookie(r)
	result, err := h.service.CurrentAdmin(r.Context(), token)
	if err != nil {
		h.log.Printf("current admin lookup failed: %v", err)
		writeResult(w, http.StatusInternalServerError, auth.Result{Message: "Failed to get admin"})
		return
	}

	status := http.StatusOK
	if !result.Success {
		status = http.StatusUnauthorized
	}
	writeResult(w, status, result)
}

func writeResult(w http.ResponseWriter, status int, result auth.Result) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		log.Printf("encode auth response: %v", err)
	}
}

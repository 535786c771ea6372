package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/devsphere/devsphere/internal/platform/timeouts"
	"github.com/devsphere/devsphere/internal/services/auth"
)

// googleUserinfoURL is the OpenID Connect userinfo endpoint; it validates
// the access token and returns the claims the token grants access to.
const googleUserinfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

// GoogleUserinfoResolver validates Google access tokens against the
// userinfo endpoint and extracts the identity claims.
type GoogleUserinfoResolver struct {
	client   *http.Client
	endpoint string
}

// GoogleResolverOption adjusts a resolver; used by tests to point the
// resolver at a local endpoint.
type GoogleResolverOption func(*GoogleUserinfoResolver)

// WithGoogleEndpoint overrides the userinfo endpoint URL.
func WithGoogleEndpoint(url string) GoogleResolverOption {
	return func(r *GoogleUserinfoResolver) {
		r.endpoint = url
	}
}

// WithGoogleHTTPClient overrides the HTTP client.
func WithGoogleHTTPClient(client *http.Client) GoogleResolverOption {
	return func(r *GoogleUserinfoResolver) {
		r.client = client
	}
}

// NewGoogleUserinfoResolver builds a resolver with a bounded request
// timeout.
func NewGoogleUserinfoResolver(opts ...GoogleResolverOption) *GoogleUserinfoResolver {
	r := &GoogleUserinfoResolver{
		client:   &http.Client{Timeout: timeouts.OutboundRequest},
		endpoint: googleUserinfoURL,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// userinfoClaims is the subset of the userinfo response the platform uses.
type userinfoClaims struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// Resolve exchanges an access token for verified identity claims.
//
// The email must be present and marked verified by Google; anything else is
// rejected because the email becomes the account identity key.
func (r *GoogleUserinfoResolver) Resolve(ctx context.Context, accessToken string) (auth.GoogleSignInInput, error) {
	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		return auth.GoogleSignInInput{}, fmt.Errorf("access token is required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.endpoint, nil)
	if err != nil {
		return auth.GoogleSignInInput{}, fmt.Errorf("build userinfo request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := r.client.Do(req)
	if err != nil {
		return auth.GoogleSignInInput{}, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return auth.GoogleSignInInput{}, fmt.Errorf("userinfo endpoint rejected token: status %d", resp.StatusCode)
	}

	var claims userinfoClaims
	if err := json.NewDecoder(resp.Body).Decode(&claims); err != nil {
		return auth.GoogleSignInInput{}, fmt.Errorf("decode userinfo response: %w", err)
	}
	if claims.Sub == "" || claims.Email == "" {
		return auth.GoogleSignInInput{}, fmt.Errorf("userinfo response missing identity claims")
	}
	if !claims.EmailVerified {
		return auth.GoogleSignInInput{}, fmt.Errorf("google account email is not verified")
	}

	name := claims.Name
	if name == "" {
		name = claims.Email
	}
	return auth.GoogleSignInInput{
		Email:    claims.Email,
		Name:     name,
		GoogleID: claims.Sub,
		Avatar:   claims.Picture,
	}, nil
}

package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGoogleUserinfoResolver(t *testing.T) {
	t.Run("resolves verified claims", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("Authorization"); got != "Bearer ya29.token" {
				t.Errorf("Authorization = %q, want bearer token", got)
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"sub":"g-1","email":"ada@example.com","email_verified":true,"name":"Ada Lovelace","picture":"https://example.com/a.png"}`))
		}))
		defer srv.Close()

		resolver := NewGoogleUserinfoResolver(WithGoogleEndpoint(srv.URL), WithGoogleHTTPClient(srv.Client()))
		identity, err := resolver.Resolve(context.Background(), "ya29.token")
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if identity.GoogleID != "g-1" || identity.Email != "ada@example.com" || identity.Name != "Ada Lovelace" || identity.Avatar != "https://example.com/a.png" {
			t.Errorf("identity = %+v", identity)
		}
	})

	t.Run("falls back to email when name is absent", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"sub":"g-1","email":"ada@example.com","email_verified":true}`))
		}))
		defer srv.Close()

		resolver := NewGoogleUserinfoResolver(WithGoogleEndpoint(srv.URL), WithGoogleHTTPClient(srv.Client()))
		identity, err := resolver.Resolve(context.Background(), "ya29.token")
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if identity.Name != "ada@example.com" {
			t.Errorf("name = %q, want email fallback", identity.Name)
		}
	})

	t.Run("rejects an unverified email", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"sub":"g-1","email":"ada@example.com","email_verified":false}`))
		}))
		defer srv.Close()

		resolver := NewGoogleUserinfoResolver(WithGoogleEndpoint(srv.URL), WithGoogleHTTPClient(srv.Client()))
		if _, err := resolver.Resolve(context.Background(), "ya29.token"); err == nil {
			t.Fatal("expected error for unverified email")
		}
	})

	t.Run("rejects a token the endpoint refuses", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		resolver := NewGoogleUserinfoResolver(WithGoogleEndpoint(srv.URL), WithGoogleHTTPClient(srv.Client()))
		if _, err := resolver.Resolve(context.Background(), "expired"); err == nil {
			t.Fatal("expected error for rejected token")
		}
	})

	t.Run("rejects an empty token without a network call", func(t *testing.T) {
		resolver := NewGoogleUserinfoResolver(WithGoogleEndpoint("http://127.0.0.1:0"))
		if _, err := resolver.Resolve(context.Background(), "  "); err == nil {
			t.Fatal("expected error for empty token")
		}
	})
}

package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/oauth2"
)

// fakeGoogle stands in for both the token endpoint and the userinfo endpoint.
func fakeGoogle(t *testing.T, userinfo string, userinfoStatus int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"test-token","token_type":"Bearer","expires_in":3600}`)
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(userinfoStatus)
		fmt.Fprint(w, userinfo)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testProvider(srv *httptest.Server) *GoogleProvider {
	return &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     "client",
			ClientSecret: "secret",
			RedirectURL:  "http://localhost/google_login",
			Endpoint: oauth2.Endpoint{
				AuthURL:  srv.URL + "/auth",
				TokenURL: srv.URL + "/token",
			},
		},
		userinfoURL: srv.URL + "/userinfo",
	}
}

func TestFetchIdentity(t *testing.T) {
	srv := fakeGoogle(t, `{"id":"g-1","email":"Student@Example.COM","name":"Student","picture":"http://pic"}`, http.StatusOK)
	p := testProvider(srv)

	id, err := p.FetchIdentity(context.Background(), "code-123")
	if err != nil {
		t.Fatalf("FetchIdentity: %v", err)
	}
	if id.GoogleID != "g-1" {
		t.Errorf("expected google id g-1, got %q", id.GoogleID)
	}
	if id.Email != "student@example.com" {
		t.Errorf("expected lowercased email, got %q", id.Email)
	}
	if id.Name != "Student" {
		t.Errorf("expected name Student, got %q", id.Name)
	}
}

func TestFetchIdentityMissingEmail(t *testing.T) {
	srv := fakeGoogle(t, `{"id":"g-1","name":"No Email"}`, http.StatusOK)
	p := testProvider(srv)

	_, err := p.FetchIdentity(context.Background(), "code-123")
	if err == nil {
		t.Fatal("expected error for missing email")
	}
	if !strings.Contains(err.Error(), "missing email") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestFetchIdentityUserinfoError(t *testing.T) {
	srv := fakeGoogle(t, `{"error":"unauthorized"}`, http.StatusUnauthorized)
	p := testProvider(srv)

	_, err := p.FetchIdentity(context.Background(), "code-123")
	if err == nil {
		t.Fatal("expected error for non-200 userinfo")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthCodeURLCarriesState(t *testing.T) {
	srv := fakeGoogle(t, `{}`, http.StatusOK)
	p := testProvider(srv)

	u := p.AuthCodeURL("state-xyz")
	if !strings.Contains(u, "state=state-xyz") {
		t.Errorf("state missing from auth URL: %s", u)
	}
	if !strings.HasPrefix(u, srv.URL+"/auth") {
		t.Errorf("unexpected auth URL: %s", u)
	}
}

package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/singhsimarjot13/Aptuquest-2025/internal/model"
)

// IdentityProvider resolves an OAuth authorization code into an identity.
// Handlers depend on this interface so tests can authenticate without Google.
type IdentityProvider interface {
	AuthCodeURL(state string) string
	FetchIdentity(ctx context.Context, code string) (model.Identity, error)
}

const googleUserinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// GoogleProvider implements IdentityProvider against Google's OAuth endpoints.
type GoogleProvider struct {
	config      *oauth2.Config
	userinfoURL string
}

// NewGoogleProvider builds a provider for the authorization-code flow.
// redirectURL must be the absolute URL of the /google_login route.
func NewGoogleProvider(clientID, clientSecret, redirectURL string) *GoogleProvider {
	return &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes: []string{
				"openid",
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		userinfoURL: googleUserinfoURL,
	}
}

// AuthCodeURL returns the Google consent page URL carrying the given state.
func (g *GoogleProvider) AuthCodeURL(state string) string {
	return g.config.AuthCodeURL(state)
}

// FetchIdentity exchanges the authorization code and fetches the userinfo
// document. Emails are normalized to lower case.
func (g *GoogleProvider) FetchIdentity(ctx context.Context, code string) (model.Identity, error) {
	tok, err := g.config.Exchange(ctx, code)
	if err != nil {
		return model.Identity{}, fmt.Errorf("exchange code: %w", err)
	}

	client := g.config.Client(ctx, tok)
	resp, err := client.Get(g.userinfoURL)
	if err != nil {
		return model.Identity{}, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return model.Identity{}, fmt.Errorf("userinfo returned %d: %s", resp.StatusCode, body)
	}

	var id model.Identity
	if err := json.NewDecoder(resp.Body).Decode(&id); err != nil {
		return model.Identity{}, fmt.Errorf("decode userinfo: %w", err)
	}
	if id.Email == "" {
		return model.Identity{}, fmt.Errorf("userinfo missing email")
	}
	id.Email = strings.ToLower(id.Email)
	return id, nil
}

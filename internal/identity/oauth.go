package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

// OAuthManager holds one oauth2 config per supported provider and performs
// the code-exchange plus userinfo lookup that completes a social sign-in.
type OAuthManager struct {
	configs  map[string]*oauth2.Config
	userinfo map[string]string
}

// OAuthCredentials carries the client registrations for the supported
// providers. RedirectBase is the callback prefix; the provider name is
// appended to it (e.g. <base>/google/callback).
type OAuthCredentials struct {
	GoogleClientID       string
	GoogleClientSecret   string
	FacebookClientID     string
	FacebookClientSecret string
	RedirectBase         string
}

func NewOAuthManager(creds OAuthCredentials) *OAuthManager {
	return &OAuthManager{
		configs: map[string]*oauth2.Config{
			ProviderGoogle: {
				ClientID:     creds.GoogleClientID,
				ClientSecret: creds.GoogleClientSecret,
				Endpoint:     endpoints.Google,
				RedirectURL:  creds.RedirectBase + "/" + ProviderGoogle + "/callback",
				Scopes:       []string{"openid", "email", "profile"},
			},
			ProviderFacebook: {
				ClientID:     creds.FacebookClientID,
				ClientSecret: creds.FacebookClientSecret,
				Endpoint:     endpoints.Facebook,
				RedirectURL:  creds.RedirectBase + "/" + ProviderFacebook + "/callback",
				Scopes:       []string{"email", "public_profile"},
			},
		},
		userinfo: map[string]string{
			ProviderGoogle:   "https://openidconnect.googleapis.com/v1/userinfo",
			ProviderFacebook: "https://graph.facebook.com/me?fields=id,name,email",
		},
	}
}

func (m *OAuthManager) config(provider string) (*oauth2.Config, error) {
	cfg, ok := m.configs[provider]
	if !ok {
		return nil, NewError(fmt.Sprintf("unsupported oauth provider %q", provider))
	}
	return cfg, nil
}

// AuthCodeURL returns the provider's consent page URL for the given state.
func (m *OAuthManager) AuthCodeURL(provider, state string) (string, error) {
	cfg, err := m.config(provider)
	if err != nil {
		return "", err
	}
	return cfg.AuthCodeURL(state), nil
}

// Complete exchanges the authorization code and fetches the userinfo
// document, returning the external account's email and display name.
func (m *OAuthManager) Complete(ctx context.Context, provider, code string) (email, name string, err error) {
	cfg, err := m.config(provider)
	if err != nil {
		return "", "", err
	}
	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return "", "", NewError("oauth code exchange failed: " + err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.userinfo[provider], nil)
	if err != nil {
		return "", "", err
	}
	resp, err := cfg.Client(ctx, tok).Do(req)
	if err != nil {
		return "", "", NewError("oauth userinfo request failed: " + err.Error())
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return "", "", NewError(fmt.Sprintf("oauth userinfo request failed: %s", resp.Status))
	}

	var doc struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return "", "", err
	}
	if doc.Email == "" {
		return "", "", NewError("oauth provider returned no email address")
	}
	return doc.Email, doc.Name, nil
}

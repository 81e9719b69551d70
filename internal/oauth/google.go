// Package oauth implements the Google authorization-code flow used for
// social sign-in.
package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	googleAuthURL     = "https://accounts.google.com/o/oauth2/v2/auth"
	googleTokenURL    = "https://oauth2.googleapis.com/token"
	googleUserinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
)

// Config identifies the registered OAuth client.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// Profile is the subset of the Google userinfo payload the site uses.
type Profile struct {
	Sub        string `json:"id"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
}

// Client drives the authorization-code flow against Google. The
// endpoint URLs are fields so tests can point the client at a local
// server.
type Client struct {
	cfg         Config
	httpClient  *http.Client
	authURL     string
	tokenURL    string
	userinfoURL string
}

// NewClient builds a Google OAuth client from the registered app
// credentials.
func NewClient(cfg Config) *Client {
	return &Client{
		cfg:         cfg,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		authURL:     googleAuthURL,
		tokenURL:    googleTokenURL,
		userinfoURL: googleUserinfoURL,
	}
}

// Enabled reports whether OAuth credentials were configured at all.
func (c *Client) Enabled() bool {
	return c.cfg.ClientID != "" && c.cfg.ClientSecret != ""
}

// NewState returns an unguessable per-request state value.
func NewState() string {
	return uuid.NewString()
}

// AuthURL builds the consent-screen URL the browser is redirected to.
func (c *Client) AuthURL(state string) string {
	params := url.Values{
		"response_type": {"code"},
		"client_id":     {c.cfg.ClientID},
		"redirect_uri":  {c.cfg.RedirectURL},
		"scope":         {"openid profile"},
		"state":         {state},
	}
	return c.authURL + "?" + params.Encode()
}

// Exchange trades the callback's authorization code for the user's
// profile.
func (c *Client) Exchange(ctx context.Context, code string) (Profile, error) {
	token, err := c.exchangeCode(ctx, code)
	if err != nil {
		return Profile{}, fmt.Errorf("token exchange: %w", err)
	}
	profile, err := c.fetchProfile(ctx, token)
	if err != nil {
		return Profile{}, fmt.Errorf("fetch userinfo: %w", err)
	}
	return profile, nil
}

func (c *Client) exchangeCode(ctx context.Context, code string) (string, error) {
	params := url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"client_id":     {c.cfg.ClientID},
		"client_secret": {c.cfg.ClientSecret},
		"redirect_uri":  {c.cfg.RedirectURL},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(params.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	var result struct {
		AccessToken string `json:"access_token"`
		Error       string `json:"error"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("parse token response: %w", err)
	}
	if result.Error != "" {
		return "", fmt.Errorf("provider error: %s", result.Error)
	}
	if result.AccessToken == "" {
		return "", fmt.Errorf("token response missing access_token")
	}
	return result.AccessToken, nil
}

func (c *Client) fetchProfile(ctx context.Context, accessToken string) (Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.userinfoURL, nil)
	if err != nil {
		return Profile{}, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Profile{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Profile{}, fmt.Errorf("userinfo status %d", resp.StatusCode)
	}
	var profile Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return Profile{}, fmt.Errorf("parse userinfo: %w", err)
	}
	if profile.Sub == "" {
		return Profile{}, fmt.Errorf("userinfo missing id")
	}
	return profile, nil
}

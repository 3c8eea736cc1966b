package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"stage-cue/internal/cache"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// userInfoURL is Google's profile endpoint
const userInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// GoogleOAuthConfig holds the OAuth configuration
type GoogleOAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	config       *oauth2.Config
	userInfoURL  string
}

// GoogleUserInfo represents user information from Google
type GoogleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// NewGoogleOAuthConfig creates a new Google OAuth configuration
func NewGoogleOAuthConfig(clientID, clientSecret, redirectURL string) *GoogleOAuthConfig {
	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}

	return &GoogleOAuthConfig{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		config:       config,
		userInfoURL:  userInfoURL,
	}
}

// GetAuthURL generates the OAuth authorization URL with state
func (g *GoogleOAuthConfig) GetAuthURL(state string) string {
	return g.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange exchanges the authorization code for a token
func (g *GoogleOAuthConfig) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := g.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code for token: %w", err)
	}
	return token, nil
}

// GetUserInfo retrieves user information from Google using the access token
func (g *GoogleOAuthConfig) GetUserInfo(ctx context.Context, token *oauth2.Token) (*GoogleUserInfo, error) {
	client := g.config.Client(ctx, token)
	resp, err := client.Get(g.userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to get user info: status %d, body: %s", resp.StatusCode, string(body))
	}

	var userInfo GoogleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}
	if userInfo.ID == "" || userInfo.Email == "" {
		return nil, fmt.Errorf("google profile is missing id or email")
	}

	return &userInfo, nil
}

// GenerateStateToken generates a random state token for CSRF protection
func GenerateStateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate state token: %w", err)
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// StateTTL is how long a login attempt may take
const StateTTL = 10 * time.Minute

// StateStore manages OAuth state tokens for CSRF protection
type StateStore struct {
	states *cache.Cache[bool]
}

// NewStateStore creates a new state store
func NewStateStore() *StateStore {
	return NewStateStoreWithClock(time.Now)
}

// NewStateStoreWithClock creates a state store on an injected clock
func NewStateStoreWithClock(now cache.Clock) *StateStore {
	return &StateStore{states: cache.NewWithClock[bool](StateTTL, now)}
}

// Store stores a state token with expiration
func (s *StateStore) Store(state string) {
	s.states.Set(state, true)
}

// Verify verifies and removes a state token. Tokens are single use.
func (s *StateStore) Verify(state string) bool {
	ok := s.states.Has(state)
	s.states.Delete(state)
	return ok
}

// Cleanup removes expired state tokens
func (s *StateStore) Cleanup() {
	s.states.Cleanup()
}

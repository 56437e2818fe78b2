package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/twitch"
)

const (
	// TwitchName is the provider name used in identity ids.
	TwitchName = "twitch"

	defaultTwitchUsersURL = "https://api.twitch.tv/helix/users"
)

// TwitchProvider signs users in with their Twitch account.
type TwitchProvider struct {
	config   *oauth2.Config
	usersURL string
}

// TwitchOption customizes a TwitchProvider.
type TwitchOption func(*TwitchProvider)

// WithTwitchEndpoint overrides the OAuth endpoints.
func WithTwitchEndpoint(ep oauth2.Endpoint) TwitchOption {
	return func(p *TwitchProvider) { p.config.Endpoint = ep }
}

// WithTwitchUsersURL overrides the Helix users endpoint.
func WithTwitchUsersURL(url string) TwitchOption {
	return func(p *TwitchProvider) { p.usersURL = url }
}

// NewTwitchProvider configures the Twitch OAuth client. redirectURL is the
// absolute /auth/callback URL of this site.
func NewTwitchProvider(clientID, clientSecret, redirectURL string, opts ...TwitchOption) *TwitchProvider {
	p := &TwitchProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     twitch.Endpoint,
			RedirectURL:  redirectURL,
			Scopes:       []string{"user:read:email"},
		},
		usersURL: defaultTwitchUsersURL,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *TwitchProvider) Name() string { return TwitchName }

func (p *TwitchProvider) AuthCodeURL(state string) string {
	if p.config.ClientID == "" {
		return ""
	}
	return p.config.AuthCodeURL(state)
}

type helixUsers struct {
	Data []struct {
		ID              string `json:"id"`
		Login           string `json:"login"`
		DisplayName     string `json:"display_name"`
		ProfileImageURL string `json:"profile_image_url"`
	} `json:"data"`
}

// Exchange trades the authorization code for a token and loads the account.
func (p *TwitchProvider) Exchange(ctx context.Context, code string) (*Identity, error) {
	tok, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("twitch token exchange: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.usersURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Client-Id", p.config.ClientID)

	resp, err := p.config.Client(ctx, tok).Do(req)
	if err != nil {
		return nil, fmt.Errorf("twitch users request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("twitch users request: unexpected status %d", resp.StatusCode)
	}

	var users helixUsers
	if err := json.NewDecoder(resp.Body).Decode(&users); err != nil {
		return nil, fmt.Errorf("twitch users response: %w", err)
	}
	if len(users.Data) == 0 || strings.TrimSpace(users.Data[0].ID) == "" {
		return nil, fmt.Errorf("twitch users response: no account")
	}

	u := users.Data[0]
	return &Identity{
		ID:          IdentityID(TwitchName, u.ID),
		Provider:    TwitchName,
		Subject:     u.ID,
		Login:       u.Login,
		DisplayName: u.DisplayName,
		AvatarURL:   u.ProfileImageURL,
	}, nil
}

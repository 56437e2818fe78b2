package auth

import (
	"context"
	"errors"
	"net/url"
	"strings"
)

// DevName is the provider name of DevProvider.
const DevName = "dev"

// DevProvider signs in without an external service. It exists for local
// development when no OAuth client is configured and must not be used in production.
type DevProvider struct {
	callbackURL string
}

// NewDevProvider returns a provider that redirects straight back to callbackURL.
func NewDevProvider(callbackURL string) *DevProvider {
	return &DevProvider{callbackURL: callbackURL}
}

func (p *DevProvider) Name() string { return DevName }

// AuthCodeURL points at the callback with a fixed code.
func (p *DevProvider) AuthCodeURL(state string) string {
	v := url.Values{}
	v.Set("code", "dev-user")
	v.Set("state", state)
	return p.callbackURL + "?" + v.Encode()
}

// Exchange treats the code as the account login.
func (p *DevProvider) Exchange(_ context.Context, code string) (*Identity, error) {
	login := strings.TrimSpace(code)
	if login == "" {
		return nil, errors.New("empty code")
	}
	return &Identity{
		ID:          IdentityID(DevName, login),
		Provider:    DevName,
		Subject:     login,
		Login:       login,
		DisplayName: login,
	}, nil
}

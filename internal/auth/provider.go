// Package auth delegates sign-in to an OAuth identity provider.
package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNoRedirect is returned when a provider yields no authorization URL.
var ErrNoRedirect = errors.New("identity provider returned no redirect target")

// profileNamespace scopes name-based profile ids to this application.
var profileNamespace = uuid.NewSHA1(uuid.NameSpaceDNS, []byte("capes.app"))

// Identity is an authenticated account as reported by the identity provider.
type Identity struct {
	ID          string `json:"id"`
	Provider    string `json:"provider"`
	Subject     string `json:"subject"`
	Login       string `json:"login"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
}

// Provider starts and completes the authorization-code flow of one identity provider.
type Provider interface {
	Name() string
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*Identity, error)
}

// IdentityID derives the stable opaque id of a provider account.
func IdentityID(provider, subject string) string {
	return uuid.NewSHA1(profileNamespace, []byte(provider+":"+subject)).String()
}

// NewState returns an unguessable value binding a callback to the browser that started sign-in.
func NewState() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

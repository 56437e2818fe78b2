package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestIdentityID(t *testing.T) {
	a := IdentityID("twitch", "123")
	assert.Equal(t, a, IdentityID("twitch", "123"), "ids are stable")
	assert.NotEqual(t, a, IdentityID("twitch", "124"))
	assert.NotEqual(t, a, IdentityID("dev", "123"))
	assert.Len(t, a, 36)
}

func TestNewState(t *testing.T) {
	a, err := NewState()
	require.NoError(t, err)
	b, err := NewState()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func newFakeTwitch(t *testing.T, users any) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.Form.Get("code") != "good-code" {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid_grant"})
			return
		}
		assert.Equal(t, "client", r.Form.Get("client_id"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "tok", "token_type": "bearer", "expires_in": 3600,
		})
	})
	mux.HandleFunc("/helix/users", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "client", r.Header.Get("Client-Id"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(users)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestTwitch(srv *httptest.Server) *TwitchProvider {
	return NewTwitchProvider("client", "secret", "http://localhost:3000/auth/callback",
		WithTwitchEndpoint(oauth2.Endpoint{
			AuthURL:   srv.URL + "/oauth2/authorize",
			TokenURL:  srv.URL + "/oauth2/token",
			AuthStyle: oauth2.AuthStyleInParams,
		}),
		WithTwitchUsersURL(srv.URL+"/helix/users"),
	)
}

func TestTwitchProvider_AuthCodeURL(t *testing.T) {
	p := NewTwitchProvider("client", "secret", "http://localhost:3000/auth/callback")
	raw := p.AuthCodeURL("st4te")
	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "id.twitch.tv", u.Host)
	assert.Equal(t, "st4te", u.Query().Get("state"))
	assert.Equal(t, "http://localhost:3000/auth/callback", u.Query().Get("redirect_uri"))
	assert.Equal(t, "user:read:email", u.Query().Get("scope"))

	assert.Empty(t, NewTwitchProvider("", "", "x").AuthCodeURL("s"), "no client id, no redirect")
}

func TestTwitchProvider_Exchange(t *testing.T) {
	srv := newFakeTwitch(t, map[string]any{"data": []map[string]string{{
		"id": "4242", "login": "panam", "display_name": "Panam", "profile_image_url": "https://img/p.png",
	}}})
	p := newTestTwitch(srv)

	id, err := p.Exchange(context.Background(), "good-code")
	require.NoError(t, err)
	assert.Equal(t, &Identity{
		ID:          IdentityID(TwitchName, "4242"),
		Provider:    TwitchName,
		Subject:     "4242",
		Login:       "panam",
		DisplayName: "Panam",
		AvatarURL:   "https://img/p.png",
	}, id)

	_, err = p.Exchange(context.Background(), "bad-code")
	assert.Error(t, err)
}

func TestTwitchProvider_Exchange_NoAccount(t *testing.T) {
	srv := newFakeTwitch(t, map[string]any{"data": []any{}})
	_, err := newTestTwitch(srv).Exchange(context.Background(), "good-code")
	assert.ErrorContains(t, err, "no account")
}

func TestDevProvider(t *testing.T) {
	p := NewDevProvider("http://localhost:3000/auth/callback")
	u, err := url.Parse(p.AuthCodeURL("s1"))
	require.NoError(t, err)
	assert.Equal(t, "/auth/callback", u.Path)
	assert.Equal(t, "s1", u.Query().Get("state"))

	id, err := p.Exchange(context.Background(), u.Query().Get("code"))
	require.NoError(t, err)
	assert.Equal(t, IdentityID(DevName, "dev-user"), id.ID)

	_, err = p.Exchange(context.Background(), " ")
	assert.Error(t, err)
}

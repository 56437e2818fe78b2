// Package session issues signed session cookies and resolves where a visitor may go.
package session

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"time"

	"capes/internal/auth"
	"capes/internal/cache"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/hkdf"
)

const (
	// CookieName is the session cookie.
	CookieName = "capes_session"
	// StateCookieName carries the OAuth state between /login and /auth/callback.
	StateCookieName = "capes_oauth_state"

	// Lifetime is how long a session stays valid.
	Lifetime = 7 * 24 * time.Hour
	// StateLifetime bounds the sign-in round trip.
	StateLifetime = 10 * time.Minute

	issuer   = "capes-web"
	audience = "capes-client"
)

var (
	// ErrInvalidSession is returned for tokens that are malformed, expired or forged.
	ErrInvalidSession = errors.New("invalid session")
	// ErrRevokedSession is returned for tokens that were signed out.
	ErrRevokedSession = errors.New("session revoked")
)

// Claims is the JWT payload of a session.
type Claims struct {
	Provider string `json:"prv,omitempty"`
	Login    string `json:"login,omitempty"`
	Name     string `json:"name,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
	jwt.RegisteredClaims
}

// Manager signs and verifies session tokens. Revocations live in Redis; with no
// client configured, sign-out only clears the cookie.
type Manager struct {
	key      []byte
	stateKey []byte
	redis    *redis.Client
	secure   bool
	now      func() time.Time
}

// NewManager derives the signing key from secret.
func NewManager(secret string, rdb *redis.Client, secure bool) (*Manager, error) {
	if secret == "" {
		return nil, errors.New("session secret is empty")
	}
	key, err := deriveKey(secret, "session-signing")
	if err != nil {
		return nil, err
	}
	stateKey, err := deriveKey(secret, "oauth-state")
	if err != nil {
		return nil, err
	}
	return &Manager{key: key, stateKey: stateKey, redis: rdb, secure: secure, now: time.Now}, nil
}

func deriveKey(secret, purpose string) ([]byte, error) {
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), []byte(issuer), []byte(purpose)), key); err != nil {
		return nil, fmt.Errorf("derive %s key: %w", purpose, err)
	}
	return key, nil
}

// Issue signs a session for id.
func (m *Manager) Issue(id auth.Identity) (string, time.Time, error) {
	now := m.now()
	exp := now.Add(Lifetime)
	claims := Claims{
		Provider: id.Provider,
		Login:    id.Login,
		Name:     id.DisplayName,
		Avatar:   id.AvatarURL,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.ID,
			Issuer:    issuer,
			Audience:  jwt.ClaimStrings{audience},
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.key)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

func hmacKey(key []byte) jwt.Keyfunc {
	return func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return key, nil
	}
}

func (m *Manager) parseClaims(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, hmacKey(m.key),
		jwt.WithIssuer(issuer),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return nil, ErrInvalidSession
	}
	return claims, nil
}

// Parse verifies token and returns the identity it carries.
func (m *Manager) Parse(ctx context.Context, token string) (*auth.Identity, error) {
	claims, err := m.parseClaims(token)
	if err != nil {
		return nil, err
	}
	if m.redis != nil && claims.ID != "" {
		n, err := m.redis.Exists(ctx, cache.RevokedSessionKey(claims.ID)).Result()
		if err != nil {
			return nil, fmt.Errorf("check session revocation: %w", err)
		}
		if n > 0 {
			return nil, ErrRevokedSession
		}
	}
	return &auth.Identity{
		ID:          claims.Subject,
		Provider:    claims.Provider,
		Login:       claims.Login,
		DisplayName: claims.Name,
		AvatarURL:   claims.Avatar,
	}, nil
}

// Revoke records token as signed out until it would have expired anyway.
// Invalid tokens are ignored.
func (m *Manager) Revoke(ctx context.Context, token string) error {
	if m.redis == nil {
		return nil
	}
	claims, err := m.parseClaims(token)
	if err != nil || claims.ID == "" {
		return nil
	}
	ttl := claims.ExpiresAt.Time.Sub(m.now())
	if ttl <= 0 {
		return nil
	}
	return m.redis.Set(ctx, cache.RevokedSessionKey(claims.ID), "1", ttl).Err()
}

// SetCookie stores token in the session cookie.
func (m *Manager) SetCookie(c *fiber.Ctx, token string, exp time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  exp,
		HTTPOnly: true,
		Secure:   m.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// ClearCookie expires the session cookie.
func (m *Manager) ClearCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   m.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// SetStateCookie remembers the OAuth state for the callback. The cookie value is
// signed with its own key and expires after StateLifetime.
func (m *Manager) SetStateCookie(c *fiber.Ctx, state string) error {
	exp := m.now().Add(StateLifetime)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:        state,
		Issuer:    issuer,
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString(m.stateKey)
	if err != nil {
		return err
	}
	c.Cookie(&fiber.Cookie{
		Name:     StateCookieName,
		Value:    signed,
		Path:     "/auth",
		Expires:  exp,
		HTTPOnly: true,
		Secure:   m.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return nil
}

// TakeStateCookie returns the remembered OAuth state, or "" when it is missing,
// forged or expired. The cookie is cleared so a state is accepted once.
func (m *Manager) TakeStateCookie(c *fiber.Ctx) string {
	raw := c.Cookies(StateCookieName)
	c.Cookie(&fiber.Cookie{
		Name:     StateCookieName,
		Value:    "",
		Path:     "/auth",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   m.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	if raw == "" {
		return ""
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, hmacKey(m.stateKey),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !parsed.Valid {
		return ""
	}
	return claims.ID
}

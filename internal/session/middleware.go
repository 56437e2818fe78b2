package session

import (
	"errors"

	"capes/internal/auth"
	"capes/internal/middleware"
	"capes/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Fiber locals set by the session middleware.
const (
	IdentityKey       = "identity"
	ProfileIDKey      = "profileID"
	ProfileContextKey = "profileContext"
)

// LoadIdentity parses the session cookie, when present, into the request locals.
// Bad or revoked sessions are cleared and the request continues signed out.
func (m *Manager) LoadIdentity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(CookieName)
		if token == "" {
			return c.Next()
		}

		id, err := m.Parse(c.UserContext(), token)
		switch {
		case errors.Is(err, ErrInvalidSession), errors.Is(err, ErrRevokedSession):
			m.ClearCookie(c)
			return c.Next()
		case err != nil:
			middleware.Logger.WarnContext(c.UserContext(), "Session check failed, continuing signed out",
				"error", err,
			)
			return c.Next()
		}

		c.Locals(IdentityKey, id)
		c.Locals(ProfileIDKey, id.ID)
		c.SetUserContext(middleware.WithProfileID(c.UserContext(), id.ID))
		return c.Next()
	}
}

// IdentityFrom returns the signed-in identity of the request, or nil.
func IdentityFrom(c *fiber.Ctx) *auth.Identity {
	id, _ := c.Locals(IdentityKey).(*auth.Identity)
	return id
}

// ProfileContextFrom returns the ProfileContext placed by RequireReady or RequireIdentity.
func ProfileContextFrom(c *fiber.Ctx) *ProfileContext {
	pc, _ := c.Locals(ProfileContextKey).(*ProfileContext)
	return pc
}

func deny(c *fiber.Ctx, d Decision, api bool) error {
	if !api {
		return c.Redirect(d.RedirectTarget())
	}
	if d.Outcome == Unauthenticated {
		return models.RespondWithError(c, fiber.StatusUnauthorized, models.NewUnauthenticatedError())
	}
	return models.RespondWithError(c, fiber.StatusForbidden, models.NewProfileIncompleteError())
}

// RequireReady lets only signed-in visitors with a complete profile through.
// Pages redirect, API routes (api=true) answer 401 or 403.
func RequireReady(g *Gate, api bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := IdentityFrom(c)
		d, err := g.Resolve(c.UserContext(), id)
		if err != nil {
			return err
		}
		if d.Outcome != Ready {
			return deny(c, d, api)
		}
		c.Locals(ProfileContextKey, NewProfileContext(*id, d.Profile, g.store))
		return c.Next()
	}
}

// RequireIdentity lets any signed-in visitor through, complete or not. Pages
// send visitors whose profile is already complete to the home page.
func RequireIdentity(g *Gate, api bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := IdentityFrom(c)
		d, err := g.Resolve(c.UserContext(), id)
		if err != nil {
			return err
		}
		if d.Outcome == Unauthenticated {
			return deny(c, d, api)
		}
		if d.Outcome == Ready && !api {
			return c.Redirect("/")
		}
		c.Locals(ProfileContextKey, NewProfileContext(*id, d.Profile, g.store))
		return c.Next()
	}
}

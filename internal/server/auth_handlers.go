package server

import (
	"capes/internal/auth"
	"capes/internal/middleware"
	"capes/internal/session"

	"github.com/gofiber/fiber/v2"
)

// LoginPage handles GET /login
func (s *Server) LoginPage(c *fiber.Ctx) error {
	if session.IdentityFrom(c) != nil {
		return c.Redirect("/")
	}
	return s.render(c, "login", fiber.Map{"Title": "Sign in"})
}

// ErrorPage handles GET /error, where failed sign-ins end up.
func (s *Server) ErrorPage(c *fiber.Ctx) error {
	return s.render(c, "error", fiber.Map{
		"Title":      "Authentication Error",
		"Heading":    "Authentication Error",
		"Message":    "There was an error during authentication. Please try again.",
		"RetryURL":   "/login",
		"RetryLabel": "Try Again",
	})
}

func (s *Server) signInFailed(c *fiber.Ctx, reason string, err error) error {
	middleware.Logger.ErrorContext(c.UserContext(), "Sign-in failed",
		"provider", s.provider.Name(),
		"reason", reason,
		"error", err,
	)
	return c.Redirect("/error", fiber.StatusSeeOther)
}

// SignIn handles GET and POST /auth/signin by sending the browser to the
// identity provider.
func (s *Server) SignIn(c *fiber.Ctx) error {
	state, err := auth.NewState()
	if err != nil {
		return s.signInFailed(c, "state", err)
	}
	if err := s.sessions.SetStateCookie(c, state); err != nil {
		return s.signInFailed(c, "state", err)
	}

	target := s.provider.AuthCodeURL(state)
	if target == "" {
		return s.signInFailed(c, "redirect", auth.ErrNoRedirect)
	}
	return c.Redirect(target, fiber.StatusSeeOther)
}

// Callback handles GET /auth/callback, the provider's redirect back to us.
func (s *Server) Callback(c *fiber.Ctx) error {
	expected := s.sessions.TakeStateCookie(c)

	if providerErr := c.Query("error"); providerErr != "" {
		return s.signInFailed(c, "provider", fiber.NewError(fiber.StatusBadGateway,
			providerErr+": "+c.Query("error_description")))
	}
	if expected == "" || c.Query("state") != expected {
		return s.signInFailed(c, "state mismatch", nil)
	}
	code := c.Query("code")
	if code == "" {
		return s.signInFailed(c, "missing code", nil)
	}

	id, err := s.provider.Exchange(c.UserContext(), code)
	if err != nil {
		return s.signInFailed(c, "exchange", err)
	}

	token, exp, err := s.sessions.Issue(*id)
	if err != nil {
		return s.signInFailed(c, "session", err)
	}
	s.sessions.SetCookie(c, token, exp)

	middleware.Logger.InfoContext(middleware.WithProfileID(c.UserContext(), id.ID), "Signed in",
		"provider", id.Provider,
	)
	return c.Redirect("/", fiber.StatusSeeOther)
}

// SignOut handles POST /auth/signout
func (s *Server) SignOut(c *fiber.Ctx) error {
	if token := c.Cookies(session.CookieName); token != "" {
		if err := s.sessions.Revoke(c.UserContext(), token); err != nil {
			middleware.Logger.WarnContext(c.UserContext(), "Session revocation failed", "error", err)
		}
	}
	s.sessions.ClearCookie(c)
	return c.Redirect("/login", fiber.StatusSeeOther)
}

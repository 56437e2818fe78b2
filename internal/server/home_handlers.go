package server

import (
	"capes/internal/events"
	"capes/internal/featureflags"
	"capes/internal/middleware"
	"capes/internal/session"

	"github.com/gofiber/fiber/v2"
)

const forYouLimit = 3

// Home handles GET /, the dashboard of a visitor with a complete profile.
func (s *Server) Home(c *fiber.Ctx) error {
	pc := session.ProfileContextFrom(c)
	p := pc.Profile()

	showForYou := s.featureFlags.Enabled(featureflags.ForYouStrip, pc.Identity.ID)
	forYou := []events.EventItem{}
	if showForYou {
		catalog, err := s.catalogService.Catalog(c.UserContext())
		if err != nil {
			// The strip is optional; the page still renders without it.
			middleware.Logger.WarnContext(c.UserContext(), "For-you catalog unavailable", "error", err)
		} else {
			forYou = events.ForProfile(catalog.Items(), p.Country, p.Interests, forYouLimit)
		}
	}

	return s.render(c, "home", fiber.Map{
		"Title":      "Home",
		"Name":       pc.DisplayName(),
		"Country":    p.Country,
		"EventCount": p.EventCount,
		"Interests":  p.Interests,
		"ShowForYou": showForYou,
		"ForYou":     forYou,
	})
}

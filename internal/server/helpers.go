package server

import (
	"errors"
	"net/url"
	"strings"

	"capes/internal/events"
	"capes/internal/middleware"
	"capes/internal/models"
	"capes/internal/session"
	"capes/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// mapServiceError picks the HTTP status for an error returned by a service.
func mapServiceError(err error) int {
	switch models.ErrorCode(err) {
	case models.CodeNotFound:
		return fiber.StatusNotFound
	case models.CodeValidation:
		return fiber.StatusBadRequest
	case models.CodeUnauthenticated:
		return fiber.StatusUnauthorized
	case models.CodeUnauthorized, models.CodeProfileIncomplete:
		return fiber.StatusForbidden
	default:
		return fiber.StatusInternalServerError
	}
}

// respondServiceError writes a JSON error for err. Unexpected errors are logged
// and their details withheld; validation errors list the offending fields.
func respondServiceError(c *fiber.Ctx, err error) error {
	status := mapServiceError(err)
	if status >= fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "Request failed",
			"path", c.Path(),
			"error", err,
		)
		return models.RespondWithError(c, status, models.NewInternalError(err))
	}

	var fields validation.Errors
	if errors.As(err, &fields) {
		var appErr *models.AppError
		message := err.Error()
		if errors.As(err, &appErr) {
			message = appErr.Message
		}
		return c.Status(status).JSON(fiber.Map{
			"error":  message,
			"code":   models.CodeValidation,
			"fields": fields,
		})
	}
	return models.RespondWithError(c, status, err)
}

func isAPIRequest(c *fiber.Ctx) bool {
	p := c.Path()
	return strings.HasPrefix(p, "/api/") || p == "/api" || strings.HasPrefix(p, "/health")
}

// handleError is the Fiber error handler. API routes answer JSON; pages render
// the not-found or generic error page.
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	status := mapServiceError(err)
	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
	}

	if isAPIRequest(c) {
		if fe != nil {
			return c.Status(status).JSON(models.ErrorResponse{Error: fe.Message})
		}
		return respondServiceError(c, err)
	}

	if status >= fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "Page failed",
			"path", c.Path(),
			"error", err,
		)
	}
	if status == fiber.StatusNotFound {
		return s.renderNotFound(c, "The page you are looking for does not exist.")
	}
	return s.renderStatus(c, status, "error", fiber.Map{
		"Title":      "Something went wrong",
		"Heading":    "Something went wrong",
		"Message":    "We could not load this page. Please try again.",
		"RetryURL":   c.OriginalURL(),
		"RetryLabel": "Try again",
	})
}

// viewerName is the name shown in the top bar, or "" for signed-out visitors.
func viewerName(c *fiber.Ctx) string {
	if pc := session.ProfileContextFrom(c); pc != nil {
		return pc.DisplayName()
	}
	if id := session.IdentityFrom(c); id != nil {
		if id.DisplayName != "" {
			return id.DisplayName
		}
		return id.Login
	}
	return ""
}

func (s *Server) render(c *fiber.Ctx, name string, data fiber.Map) error {
	return s.renderStatus(c, fiber.StatusOK, name, data)
}

func (s *Server) renderStatus(c *fiber.Ctx, status int, name string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	if _, ok := data["Title"]; !ok {
		data["Title"] = "Capes"
	}
	data["Viewer"] = viewerName(c)

	c.Status(status)
	if err := c.Render(name, data); err != nil {
		middleware.Logger.ErrorContext(c.UserContext(), "Template render failed",
			"template", name,
			"error", err,
		)
		return c.Status(fiber.StatusInternalServerError).SendString("Internal server error")
	}
	return nil
}

func (s *Server) renderNotFound(c *fiber.Ctx, message string) error {
	return s.renderStatus(c, fiber.StatusNotFound, "not_found", fiber.Map{
		"Title":   "Not found",
		"Message": message,
	})
}

// requestGone reports whether the client or the server gave up on the request,
// in which case a late result must not be rendered.
func requestGone(c *fiber.Ctx) bool {
	return c.UserContext().Err() != nil || c.Context().Err() != nil
}

// filterFromQuery reads the event filter from the query string.
func filterFromQuery(c *fiber.Ctx) events.FilterState {
	return events.ParseFilterState(func(key string) string {
		return c.Query(key)
	})
}

// eventsURL links to the events page for f with extra parameters added.
func eventsURL(f events.FilterState, extra url.Values) string {
	v := f.Values()
	for key, values := range extra {
		for _, value := range values {
			v.Add(key, value)
		}
	}
	if len(v) == 0 {
		return "/events"
	}
	return "/events?" + v.Encode()
}

func (s *Server) pageSize() int {
	if s.config == nil || s.config.EventsPageSize <= 0 {
		return events.DefaultPageSize
	}
	return s.config.EventsPageSize
}

// profileIDFrom returns the signed-in profile id of the request.
func profileIDFrom(c *fiber.Ctx) string {
	if id := session.IdentityFrom(c); id != nil {
		return id.ID
	}
	return ""
}

// missingFields lists the completion fields p still lacks.
func missingFields(p *models.Profile) []string {
	missing := []string{}
	if p == nil || strings.TrimSpace(p.Username) == "" {
		missing = append(missing, "username")
	}
	if p == nil || strings.TrimSpace(p.Country) == "" {
		missing = append(missing, "country")
	}
	if p == nil || len(p.Interests) == 0 {
		missing = append(missing, "interests")
	}
	return missing
}

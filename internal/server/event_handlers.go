package server

import (
	"context"
	"net/url"
	"strconv"

	"capes/internal/events"
	"capes/internal/featureflags"
	"capes/internal/models"
	"capes/internal/service"

	"github.com/gofiber/fiber/v2"
)

const (
	viewParam     = "view"
	viewPaged     = "paged"
	viewSectioned = "sectioned"
	pageParam     = "page"
)

// pagedView decides the layout of the events page. An explicit view parameter
// wins over the rollout flag.
func (s *Server) pagedView(c *fiber.Ctx) bool {
	switch c.Query(viewParam) {
	case viewPaged:
		return true
	case viewSectioned:
		return false
	}
	return s.featureFlags.Enabled(featureflags.PagedEvents, profileIDFrom(c))
}

// EventsPage handles GET /events
func (s *Server) EventsPage(c *fiber.Ctx) error {
	filter := filterFromQuery(c)
	paged := s.pagedView(c)

	result, catalog, err := s.catalogService.Search(c.UserContext(), filter)
	if err != nil {
		return err
	}
	if requestGone(c) {
		return nil
	}

	keep := url.Values{}
	toggle := url.Values{viewParam: {viewPaged}}
	toggleLabel := "Paged view"
	if paged {
		keep.Set(viewParam, viewPaged)
		toggle.Set(viewParam, viewSectioned)
		toggleLabel = "Sectioned view"
	}

	data := fiber.Map{
		"Title":     "Events",
		"Filter":    filter,
		"Vocab":     events.VocabularyFor(catalog),
		"Paged":     paged,
		"ResetURL":  eventsURL(events.FilterState{}, keep),
		"ViewURL":   eventsURL(filter, toggle),
		"ViewLabel": toggleLabel,
		"Empty":     len(result) == 0,
	}

	if paged {
		page := events.Paginate(result, c.QueryInt(pageParam, 1), s.pageSize())
		data["Page"] = page
		data["PrevURL"] = eventsURL(filter, url.Values{
			viewParam: {viewPaged}, pageParam: {strconv.Itoa(page.PrevPage())},
		})
		data["NextURL"] = eventsURL(filter, url.Values{
			viewParam: {viewPaged}, pageParam: {strconv.Itoa(page.NextPage())},
		})
	} else {
		data["Sections"] = events.Sectionize(result)
	}

	return s.render(c, "events", data)
}

// EventDetailPage handles GET /events/:id
func (s *Server) EventDetailPage(c *fiber.Ctx) error {
	item, err := s.catalogService.Find(c.UserContext(), c.Params("id"))
	if err != nil {
		if models.IsNotFound(err) {
			return s.renderNotFound(c, "Event not found.")
		}
		return err
	}

	attendance, err := s.rsvpService.Attendance(c.UserContext(), item.ID, profileIDFrom(c))
	if err != nil {
		return err
	}

	flash := ""
	switch c.Query("rsvp") {
	case "going":
		flash = "You're going!"
	case "cancelled":
		flash = "Your RSVP was cancelled."
	}

	return s.render(c, "event_detail", fiber.Map{
		"Title":      item.Title,
		"Event":      item,
		"Attendance": attendance,
		"Flash":      flash,
	})
}

// RSVPSubmit handles POST /events/:id/rsvp from the detail page form.
func (s *Server) RSVPSubmit(c *fiber.Ctx) error {
	id := c.Params("id")
	profileID := profileIDFrom(c)

	var err error
	outcome := "going"
	if c.FormValue("action") == "cancel" {
		outcome = "cancelled"
		_, err = s.rsvpService.Cancel(c.UserContext(), id, profileID)
	} else {
		_, err = s.rsvpService.RSVP(c.UserContext(), id, profileID)
	}
	if err != nil {
		if models.IsNotFound(err) {
			return s.renderNotFound(c, "Event not found.")
		}
		return err
	}
	return c.Redirect("/events/"+url.PathEscape(id)+"?rsvp="+outcome, fiber.StatusSeeOther)
}

// ListEvents handles GET /api/events
// @Summary List events
// @Description Filters the catalog and returns it either paged or sectioned
// @Tags events
// @Produce json
// @Param q query string false "Search text"
// @Param country query string false "Country"
// @Param fandom query string false "Fandom"
// @Param date query string false "Date bucket (today, weekend, month)"
// @Param view query string false "paged or sectioned"
// @Param page query int false "Page number"
// @Success 200 {object} object{filter=events.FilterState,page=events.Page,sections=events.Sections}
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /events [get]
func (s *Server) ListEvents(c *fiber.Ctx) error {
	filter := filterFromQuery(c)
	result, catalog, err := s.catalogService.Search(c.UserContext(), filter)
	if err != nil {
		return respondServiceError(c, err)
	}

	resp := fiber.Map{
		"filter":     filter,
		"vocabulary": events.VocabularyFor(catalog),
	}
	if s.pagedView(c) {
		resp["page"] = events.Paginate(result, c.QueryInt(pageParam, 1), s.pageSize())
	} else {
		resp["sections"] = events.Sectionize(result)
	}
	return c.JSON(resp)
}

// GetEvent handles GET /api/events/:id
// @Summary Get an event
// @Tags events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} object{event=events.EventItem,attendance=service.Attendance}
// @Failure 404 {object} models.ErrorResponse
// @Router /events/{id} [get]
func (s *Server) GetEvent(c *fiber.Ctx) error {
	item, err := s.catalogService.Find(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondServiceError(c, err)
	}
	attendance, err := s.rsvpService.Attendance(c.UserContext(), item.ID, profileIDFrom(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"event": item, "attendance": attendance})
}

// CreateRSVP handles POST /api/events/:id/rsvp
// @Summary RSVP to an event
// @Tags events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} service.Attendance
// @Failure 404 {object} models.ErrorResponse
// @Router /events/{id}/rsvp [post]
func (s *Server) CreateRSVP(c *fiber.Ctx) error {
	return s.respondAttendance(c, s.rsvpService.RSVP)
}

// DeleteRSVP handles DELETE /api/events/:id/rsvp
// @Summary Cancel an RSVP
// @Tags events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} service.Attendance
// @Failure 404 {object} models.ErrorResponse
// @Router /events/{id}/rsvp [delete]
func (s *Server) DeleteRSVP(c *fiber.Ctx) error {
	return s.respondAttendance(c, s.rsvpService.Cancel)
}

type attendanceFunc func(ctx context.Context, eventID, profileID string) (service.Attendance, error)

func (s *Server) respondAttendance(c *fiber.Ctx, fn attendanceFunc) error {
	attendance, err := fn(c.UserContext(), c.Params("id"), profileIDFrom(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(attendance)
}

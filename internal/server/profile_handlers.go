package server

import (
	"errors"

	"capes/internal/interests"
	"capes/internal/middleware"
	"capes/internal/models"
	"capes/internal/service"
	"capes/internal/session"
	"capes/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// Completion form actions.
const (
	actionToggle = "toggle"
	actionAdd    = "add"
	actionSave   = "save"
)

type countryOption struct {
	Name     string
	Selected bool
}

// profileForm is the state of the completion form between round trips.
type profileForm struct {
	Username  string
	Country   string
	Selection *interests.Selection
}

func formFromProfile(p *models.Profile) profileForm {
	f := profileForm{Selection: interests.NewSelection(nil)}
	if p != nil {
		f.Username = p.Username
		f.Country = p.Country
		f.Selection = interests.NewSelection(p.Interests)
	}
	return f
}

func formFromRequest(c *fiber.Ctx) profileForm {
	var labels []string
	for _, raw := range c.Request().PostArgs().PeekMulti("interests") {
		labels = append(labels, string(raw))
	}
	return profileForm{
		Username:  c.FormValue("username"),
		Country:   c.FormValue("country"),
		Selection: interests.NewSelection(labels),
	}
}

func countryOptions(selected string) []countryOption {
	out := make([]countryOption, 0, len(interests.Countries)+1)
	found := false
	for _, name := range interests.Countries {
		isSelected := name == selected
		found = found || isSelected
		out = append(out, countryOption{Name: name, Selected: isSelected})
	}
	if selected != "" && !found {
		out = append(out, countryOption{Name: selected, Selected: true})
	}
	return out
}

func (s *Server) renderProfileForm(c *fiber.Ctx, status int, f profileForm, errMsg string, fieldErrs validation.Errors) error {
	return s.renderStatus(c, status, "complete_profile", fiber.Map{
		"Title":       "Complete your profile",
		"Username":    f.Username,
		"Country":     f.Country,
		"Countries":   countryOptions(f.Country),
		"Options":     interests.OptionsFor(f.Selection),
		"Custom":      interests.Custom(f.Selection),
		"Selected":    []string(f.Selection.Labels()),
		"Count":       f.Selection.Count(),
		"Submittable": interests.Submittable(f.Username, f.Country, f.Selection),
		"MaxUsername": validation.MaxUsernameLength,
		"MaxInterest": validation.MaxInterestLength,
		"Error":       errMsg,
		"FieldErrors": fieldErrs,
	})
}

// CompleteProfilePage handles GET /complete-profile
func (s *Server) CompleteProfilePage(c *fiber.Ctx) error {
	pc := session.ProfileContextFrom(c)
	return s.renderProfileForm(c, fiber.StatusOK, formFromProfile(pc.Profile()), "", nil)
}

// CompleteProfileSubmit handles POST /complete-profile. Toggle and add only
// edit the form; save validates and persists it.
func (s *Server) CompleteProfileSubmit(c *fiber.Ctx) error {
	pc := session.ProfileContextFrom(c)
	f := formFromRequest(c)

	switch c.FormValue("action") {
	case actionToggle:
		f.Selection.Toggle(c.FormValue("label"))
	case actionAdd:
		f.Selection.AddCustom(c.FormValue("custom"))
	case actionSave:
		saved, err := s.profileService.SaveProfile(c.UserContext(), pc.Identity.ID, service.SaveProfileInput{
			Username:  f.Username,
			Country:   f.Country,
			Interests: f.Selection.Labels(),
		})
		if err != nil {
			if requestGone(c) {
				return nil
			}
			var (
				fieldErrs validation.Errors
				appErr    *models.AppError
			)
			msg := "Please fix the highlighted fields."
			switch {
			case errors.As(err, &fieldErrs):
			case errors.As(err, &appErr) && appErr.Code == models.CodeValidation:
				msg = appErr.Message
			default:
				msg = "Something went wrong while saving. Please try again."
				middleware.Logger.ErrorContext(c.UserContext(), "Profile save failed", "error", err)
			}
			return s.renderProfileForm(c, fiber.StatusUnprocessableEntity, f, msg, fieldErrs)
		}
		pc.Set(saved)
		return c.Redirect("/", fiber.StatusSeeOther)
	}

	return s.renderProfileForm(c, fiber.StatusOK, f, "", nil)
}

type profileRequest struct {
	Username  string   `json:"username"`
	Country   string   `json:"country"`
	Interests []string `json:"interests"`
}

// GetMyProfile handles GET /api/profile/me
// @Summary Get my profile
// @Description Returns the signed-in visitor's profile and whether it is complete
// @Tags profile
// @Produce json
// @Success 200 {object} object{profile=models.Profile,complete=bool}
// @Failure 401 {object} models.ErrorResponse
// @Router /profile/me [get]
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	p := session.ProfileContextFrom(c).Profile()
	return c.JSON(fiber.Map{
		"profile":  p,
		"complete": s.profileService.IsComplete(p),
	})
}

// UpdateMyProfile handles PUT /api/profile/me
// @Summary Save my profile
// @Description Validates and saves username, country and interests
// @Tags profile
// @Accept json
// @Produce json
// @Param request body object{username=string,country=string,interests=[]string} true "Profile fields"
// @Success 200 {object} models.Profile
// @Failure 400 {object} object{error=string,code=string,fields=object}
// @Failure 401 {object} models.ErrorResponse
// @Router /profile/me [put]
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req profileRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	pc := session.ProfileContextFrom(c)
	saved, err := s.profileService.SaveProfile(c.UserContext(), pc.Identity.ID, service.SaveProfileInput{
		Username:  req.Username,
		Country:   req.Country,
		Interests: req.Interests,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	pc.Set(saved)
	return c.JSON(saved)
}

// GetMyCompleteness handles GET /api/profile/me/completeness
// @Summary Check profile completeness
// @Tags profile
// @Produce json
// @Success 200 {object} object{complete=bool,missing=[]string,redirect=string}
// @Failure 401 {object} models.ErrorResponse
// @Router /profile/me/completeness [get]
func (s *Server) GetMyCompleteness(c *fiber.Ctx) error {
	p := session.ProfileContextFrom(c).Profile()
	redirect := ""
	if !p.IsComplete() {
		redirect = "/complete-profile"
	}
	return c.JSON(fiber.Map{
		"complete": p.IsComplete(),
		"missing":  missingFields(p),
		"redirect": redirect,
	})
}

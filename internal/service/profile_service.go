// Package service holds the application's business operations on top of the repositories.
package service

import (
	"context"
	"errors"

	"capes/internal/models"
	"capes/internal/observability"
	"capes/internal/repository"
	"capes/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

// ProfileService reads and writes the profile of an authenticated identity.
type ProfileService struct {
	profiles repository.ProfileRepository
}

// SaveProfileInput carries the onboarding fields of the completion form.
type SaveProfileInput struct {
	Username  string
	Country   string
	Interests []string
}

func NewProfileService(profiles repository.ProfileRepository) *ProfileService {
	return &ProfileService{profiles: profiles}
}

// FetchProfile returns the stored profile, or (nil, nil) when none exists.
func (s *ProfileService) FetchProfile(ctx context.Context, id string) (*models.Profile, error) {
	return s.profiles.GetByID(ctx, id)
}

// EnsureProfileWithDefaults returns the existing profile, creating {id, bio: DefaultBio}
// first when there is none.
func (s *ProfileService) EnsureProfileWithDefaults(ctx context.Context, id string) (p *models.Profile, err error) {
	ctx, span := observability.StartSpan(ctx, "service.EnsureProfileWithDefaults", attribute.String("profile.id", id))
	defer func() { observability.EndSpan(span, err) }()

	p, err = s.profiles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p != nil {
		return p, nil
	}
	return s.profiles.EnsureDefault(ctx, id)
}

// IsComplete reports whether p has a username, a country and at least one interest.
func (s *ProfileService) IsComplete(p *models.Profile) bool {
	return p.IsComplete()
}

// SaveProfile validates the onboarding fields and upserts them with the default bio.
// Validation failures carry validation.Errors in their chain.
func (s *ProfileService) SaveProfile(ctx context.Context, id string, in SaveProfileInput) (p *models.Profile, err error) {
	ctx, span := observability.StartSpan(ctx, "service.SaveProfile", attribute.String("profile.id", id))
	defer func() {
		observability.ProfileSaves.WithLabelValues(saveOutcome(err)).Inc()
		observability.EndSpan(span, err)
	}()

	form := validation.ProfileForm{
		Username:  in.Username,
		Country:   in.Country,
		Interests: append([]string(nil), in.Interests...),
	}
	if verr := validation.ValidateProfile(&form); verr != nil {
		return nil, &models.AppError{Code: models.CodeValidation, Message: verr.Error(), Err: verr}
	}

	row := &models.Profile{
		ID:        id,
		Username:  form.Username,
		Country:   form.Country,
		Interests: models.Labels(form.Interests),
		Bio:       models.DefaultBio,
	}
	if err := s.profiles.Save(ctx, row); err != nil {
		return nil, err
	}

	saved, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if saved == nil {
		return nil, models.NewInternalError(errors.New("profile missing after save"))
	}
	return saved, nil
}

func saveOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case models.ErrorCode(err) == models.CodeValidation:
		return "invalid"
	default:
		return "error"
	}
}

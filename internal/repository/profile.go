package repository

import (
	"context"
	"errors"
	"time"

	"capes/internal/models"
	"capes/internal/validation"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProfileRepository defines persistence operations for profiles.
type ProfileRepository interface {
	// GetByID returns (nil, nil) when no profile row exists.
	GetByID(ctx context.Context, id string) (*models.Profile, error)
	// EnsureDefault inserts {id, bio: DefaultBio} unless the row exists and
	// returns the stored row. Concurrent calls converge on one row.
	EnsureDefault(ctx context.Context, id string) (*models.Profile, error)
	// Save upserts the onboarding fields of p.
	Save(ctx context.Context, p *models.Profile) error
	// AdjustEventCount adds delta to the profile's RSVP counter, never going below zero.
	AdjustEventCount(ctx context.Context, id string, delta int) error
}

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository returns a new ProfileRepository implementation.
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	ctx, cancel := withReadTimeout(ctx)
	defer cancel()

	var profile models.Profile
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &profile, nil
}

func (r *profileRepository) EnsureDefault(ctx context.Context, id string) (*models.Profile, error) {
	row := &models.Profile{ID: id, Bio: models.DefaultBio}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"bio"}),
		}).
		Create(row).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	profile, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, models.NewInternalError(errors.New("profile missing after upsert"))
	}
	return profile, nil
}

func (r *profileRepository) Save(ctx context.Context, p *models.Profile) error {
	p.UpdatedAt = time.Now().UTC()
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"username", "country", "interests", "bio", "updated_at"}),
		}).
		Create(p).Error
	if err != nil {
		if isUniqueConstraintError(err, "username") {
			taken := validation.Errors{"username": validation.MsgUsernameTaken}
			return &models.AppError{Code: models.CodeValidation, Message: validation.MsgUsernameTaken, Err: taken}
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *profileRepository) AdjustEventCount(ctx context.Context, id string, delta int) error {
	err := r.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("id = ?", id).
		UpdateColumn("event_count", gorm.Expr("CASE WHEN event_count + ? < 0 THEN 0 ELSE event_count + ? END", delta, delta)).
		Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

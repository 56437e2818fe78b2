package repository

import (
	"context"

	"capes/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RSVPRepository defines persistence operations for event RSVPs.
type RSVPRepository interface {
	// Create records the RSVP and reports whether a new row was written.
	Create(ctx context.Context, eventID, profileID string) (bool, error)
	// Delete removes the RSVP and reports whether a row was removed.
	Delete(ctx context.Context, eventID, profileID string) (bool, error)
	Exists(ctx context.Context, eventID, profileID string) (bool, error)
	Count(ctx context.Context, eventID string) (int64, error)
}

type rsvpRepository struct {
	db *gorm.DB
}

// NewRSVPRepository returns a new RSVPRepository implementation.
func NewRSVPRepository(db *gorm.DB) RSVPRepository {
	return &rsvpRepository{db: db}
}

func (r *rsvpRepository) Create(ctx context.Context, eventID, profileID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.EventRSVP{EventID: eventID, ProfileID: profileID})
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *rsvpRepository) Delete(ctx context.Context, eventID, profileID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("event_id = ? AND profile_id = ?", eventID, profileID).
		Delete(&models.EventRSVP{})
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *rsvpRepository) Exists(ctx context.Context, eventID, profileID string) (bool, error) {
	ctx, cancel := withReadTimeout(ctx)
	defer cancel()

	var n int64
	err := r.db.WithContext(ctx).Model(&models.EventRSVP{}).
		Where("event_id = ? AND profile_id = ?", eventID, profileID).
		Count(&n).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return n > 0, nil
}

func (r *rsvpRepository) Count(ctx context.Context, eventID string) (int64, error) {
	ctx, cancel := withReadTimeout(ctx)
	defer cancel()

	var n int64
	if err := r.db.WithContext(ctx).Model(&models.EventRSVP{}).Where("event_id = ?", eventID).Count(&n).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}

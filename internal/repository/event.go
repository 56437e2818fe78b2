package repository

import (
	"context"
	"errors"

	"capes/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EventRepository defines persistence operations for catalog events.
type EventRepository interface {
	ListAll(ctx context.Context) ([]models.Event, error)
	GetByID(ctx context.Context, id string) (*models.Event, error)
	UpsertMany(ctx context.Context, events []models.Event) error
	Count(ctx context.Context) (int64, error)
}

type eventRepository struct {
	db *gorm.DB
}

// NewEventRepository returns a new EventRepository implementation.
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

// ListAll returns every event in catalog order.
func (r *eventRepository) ListAll(ctx context.Context) ([]models.Event, error) {
	ctx, cancel := withReadTimeout(ctx)
	defer cancel()

	var events []models.Event
	if err := r.db.WithContext(ctx).Order("position ASC").Order("id ASC").Find(&events).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return events, nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	ctx, cancel := withReadTimeout(ctx)
	defer cancel()

	var event models.Event
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Event", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &event, nil
}

// UpsertMany inserts events or overwrites existing rows with the same id.
func (r *eventRepository) UpsertMany(ctx context.Context, events []models.Event) error {
	if len(events) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		CreateInBatches(events, 100).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *eventRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Event{}).Count(&n).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}

package seed

import (
	"context"
	"fmt"
	"time"

	"capes/internal/events"
	"capes/internal/models"
	"capes/internal/service"

	"gorm.io/gorm"
)

// Options control what Seeder.Run writes.
type Options struct {
	// Demo includes the built-in demo catalog ahead of generated events.
	Demo bool
	// Count is the number of generated events.
	Count int
	// Clean deletes existing events and RSVPs first.
	Clean bool
	Seed  int64
	Start time.Time
}

// Seeder writes events into the database through the catalog service, so
// the cached catalog is invalidated the same way an operator import would be.
type Seeder struct {
	db      *gorm.DB
	catalog *service.CatalogService
}

func NewSeeder(db *gorm.DB, catalog *service.CatalogService) *Seeder {
	return &Seeder{db: db, catalog: catalog}
}

// ClearAll removes every event and RSVP and resets profile event counts.
func (s *Seeder) ClearAll(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		if err := all.Delete(&models.EventRSVP{}).Error; err != nil {
			return fmt.Errorf("clear rsvps: %w", err)
		}
		if err := all.Delete(&models.Event{}).Error; err != nil {
			return fmt.Errorf("clear events: %w", err)
		}
		if err := all.Model(&models.Profile{}).Update("event_count", 0).Error; err != nil {
			return fmt.Errorf("reset event counts: %w", err)
		}
		return nil
	})
}

// Run seeds the events table and returns the number of events written.
func (s *Seeder) Run(ctx context.Context, opts Options) (int, error) {
	if opts.Clean {
		if err := s.ClearAll(ctx); err != nil {
			return 0, err
		}
	}

	var items []events.EventItem
	if opts.Demo {
		demo, err := s.catalog.Demo()
		if err != nil {
			return 0, err
		}
		items = append(items, demo.Items()...)
	}
	if opts.Count > 0 {
		start := opts.Start
		if start.IsZero() {
			start = time.Now()
		}
		items = append(items, NewFactory(opts.Seed, start).BuildEvents(opts.Count)...)
	}
	if len(items) == 0 {
		return 0, nil
	}
	return s.catalog.Store(ctx, items)
}

package service

import (
	"context"
	"errors"
	"log/slog"

	"capes/internal/cache"
	"capes/internal/middleware"
	"capes/internal/observability"
	"capes/internal/repository"

	"github.com/redis/go-redis/v9"
)

var errNoEventStore = errors.New("no event store configured")

// RSVPService records which profiles plan to attend which events.
type RSVPService struct {
	rsvps    repository.RSVPRepository
	profiles repository.ProfileRepository
	catalog  *CatalogService
	redis    *redis.Client
}

// Attendance summarizes an event's RSVPs for one viewer.
type Attendance struct {
	Count int64 `json:"count"`
	Going bool  `json:"going"`
}

func NewRSVPService(rsvps repository.RSVPRepository, profiles repository.ProfileRepository, catalog *CatalogService, rdb *redis.Client) *RSVPService {
	return &RSVPService{rsvps: rsvps, profiles: profiles, catalog: catalog, redis: rdb}
}

// RSVP marks profileID as attending eventID. Repeating it changes nothing.
func (s *RSVPService) RSVP(ctx context.Context, eventID, profileID string) (Attendance, error) {
	if _, err := s.catalog.Find(ctx, eventID); err != nil {
		return Attendance{}, err
	}
	created, err := s.rsvps.Create(ctx, eventID, profileID)
	if err != nil {
		return Attendance{}, err
	}
	if created {
		observability.RSVPs.WithLabelValues("create").Inc()
		s.afterChange(ctx, eventID, profileID, 1)
	}
	return s.Attendance(ctx, eventID, profileID)
}

// Cancel withdraws an RSVP. Cancelling a missing RSVP is not an error.
func (s *RSVPService) Cancel(ctx context.Context, eventID, profileID string) (Attendance, error) {
	if _, err := s.catalog.Find(ctx, eventID); err != nil {
		return Attendance{}, err
	}
	deleted, err := s.rsvps.Delete(ctx, eventID, profileID)
	if err != nil {
		return Attendance{}, err
	}
	if deleted {
		observability.RSVPs.WithLabelValues("delete").Inc()
		s.afterChange(ctx, eventID, profileID, -1)
	}
	return s.Attendance(ctx, eventID, profileID)
}

// Attendance returns the attendee count, cached briefly, and whether profileID is going.
func (s *RSVPService) Attendance(ctx context.Context, eventID, profileID string) (Attendance, error) {
	var count int64
	_, err := cache.Aside(ctx, s.redis, cache.RSVPCountKey(eventID), &count, cache.RSVPCountTTL, func(ctx context.Context) error {
		n, err := s.rsvps.Count(ctx, eventID)
		count = n
		return err
	})
	if err != nil {
		return Attendance{}, err
	}

	going := false
	if profileID != "" {
		if going, err = s.rsvps.Exists(ctx, eventID, profileID); err != nil {
			return Attendance{}, err
		}
	}
	return Attendance{Count: count, Going: going}, nil
}

func (s *RSVPService) afterChange(ctx context.Context, eventID, profileID string, delta int) {
	cache.Invalidate(ctx, s.redis, cache.RSVPCountKey(eventID))
	if err := s.profiles.AdjustEventCount(ctx, profileID, delta); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to update profile event count",
			slog.String("event_id", eventID), slog.String("error", err.Error()))
	}
}

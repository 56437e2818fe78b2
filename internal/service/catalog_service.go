package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"capes/internal/cache"
	"capes/internal/config"
	"capes/internal/events"
	"capes/internal/middleware"
	"capes/internal/models"
	"capes/internal/observability"
	"capes/internal/repository"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
)

// CatalogService resolves the event catalog from the embedded demo data or
// from the events table, caching the latter in Redis.
type CatalogService struct {
	source string
	events repository.EventRepository
	redis  *redis.Client
	ttl    time.Duration

	demoOnce sync.Once
	demo     *events.Catalog
	demoErr  error
}

// NewCatalogService builds a catalog service. source is config.CatalogSourceStatic
// or config.CatalogSourceDatabase; anything else behaves as static.
func NewCatalogService(source string, eventRepo repository.EventRepository, rdb *redis.Client, ttl time.Duration) *CatalogService {
	if ttl <= 0 {
		ttl = cache.CatalogTTL
	}
	return &CatalogService{source: source, events: eventRepo, redis: rdb, ttl: ttl}
}

// Source names the backing catalog source.
func (s *CatalogService) Source() string {
	if s.source == config.CatalogSourceDatabase && s.events != nil {
		return config.CatalogSourceDatabase
	}
	return config.CatalogSourceStatic
}

// Demo returns the embedded demo catalog, parsed once.
func (s *CatalogService) Demo() (*events.Catalog, error) {
	s.demoOnce.Do(func() {
		s.demo, s.demoErr = events.LoadDemoCatalog()
	})
	if s.demoErr != nil {
		return nil, models.NewInternalError(s.demoErr)
	}
	return s.demo, nil
}

// Catalog returns the current catalog.
func (s *CatalogService) Catalog(ctx context.Context) (c *events.Catalog, err error) {
	if s.Source() == config.CatalogSourceStatic {
		return s.Demo()
	}

	ctx, span := observability.StartSpan(ctx, "service.Catalog", attribute.String("catalog.source", s.Source()))
	defer func() { observability.EndSpan(span, err) }()

	var items []events.EventItem
	hit, err := cache.Aside(ctx, s.redis, cache.CatalogKey(s.Source()), &items, s.ttl, func(ctx context.Context) error {
		rows, err := s.events.ListAll(ctx)
		if err != nil {
			return err
		}
		items = make([]events.EventItem, 0, len(rows))
		for _, row := range rows {
			items = append(items, events.FromModel(row))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	observability.CatalogCacheLookups.WithLabelValues(hitLabel(hit)).Inc()

	c, err = events.NewCatalog(items)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return c, nil
}

// Find returns one event or a NOT_FOUND error.
func (s *CatalogService) Find(ctx context.Context, id string) (events.EventItem, error) {
	c, err := s.Catalog(ctx)
	if err != nil {
		return events.EventItem{}, err
	}
	item, ok := c.Find(id)
	if !ok {
		return events.EventItem{}, models.NewNotFoundError("Event", id)
	}
	return item, nil
}

// Search applies f to the catalog. It also returns the catalog for building
// the filter vocabularies.
func (s *CatalogService) Search(ctx context.Context, f events.FilterState) ([]events.EventItem, *events.Catalog, error) {
	c, err := s.Catalog(ctx)
	if err != nil {
		return nil, nil, err
	}
	if f.Date != nil {
		middleware.Logger.DebugContext(ctx, "date filter is not applied", slog.String("date", string(*f.Date)))
	}
	result := events.Apply(c.Items(), f)
	observability.FilterResultSize.Observe(float64(len(result)))
	return result, c, nil
}

// SeedDemo writes the demo catalog into the events table and drops the cached copy.
func (s *CatalogService) SeedDemo(ctx context.Context) (int, error) {
	demo, err := s.Demo()
	if err != nil {
		return 0, err
	}
	return s.Store(ctx, demo.Items())
}

// Store upserts items into the events table in the given order and invalidates the cache.
func (s *CatalogService) Store(ctx context.Context, items []events.EventItem) (int, error) {
	if s.events == nil {
		return 0, models.NewInternalError(errNoEventStore)
	}
	rows := make([]models.Event, len(items))
	for i, item := range items {
		rows[i] = item.Model(i + 1)
	}
	if err := s.events.UpsertMany(ctx, rows); err != nil {
		return 0, err
	}
	s.Invalidate(ctx)
	return len(rows), nil
}

// Invalidate drops the cached database catalog.
func (s *CatalogService) Invalidate(ctx context.Context) {
	cache.Invalidate(ctx, s.redis, cache.CatalogKey(config.CatalogSourceDatabase))
}

func hitLabel(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}

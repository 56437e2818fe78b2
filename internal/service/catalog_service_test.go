package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"capes/internal/cache"
	"capes/internal/config"
	"capes/internal/events"
	"capes/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func dbRows() []models.Event {
	at := time.Date(2025, 12, 1, 19, 0, 0, 0, time.UTC)
	return []models.Event{
		{ID: "x", Title: "Gunpla Build Night", Location: "Japan", StartsAt: at, Fandom: "Gundam", Tags: models.StringList{"models"}, Kind: "irl", Position: 1},
		{ID: "y", Title: "Sailor Moon Rewatch", Location: "Canada", StartsAt: at, Fandom: "Sailor Moon", Tags: models.StringList{"watch party"}, Kind: "virtual", Trending: true, Position: 2},
	}
}

func TestCatalogService_Static(t *testing.T) {
	t.Parallel()

	svc := NewCatalogService(config.CatalogSourceStatic, nil, nil, 0)
	assert.Equal(t, config.CatalogSourceStatic, svc.Source())

	c, err := svc.Catalog(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, c.Len())

	item, err := svc.Find(context.Background(), "2")
	require.NoError(t, err)
	assert.Equal(t, "Hyrule Fan Orchestra", item.Title)

	_, err = svc.Find(context.Background(), "nope")
	assert.True(t, models.IsNotFound(err))
}

func TestCatalogService_DatabaseWithoutRepoFallsBackToStatic(t *testing.T) {
	t.Parallel()
	svc := NewCatalogService(config.CatalogSourceDatabase, nil, nil, 0)
	assert.Equal(t, config.CatalogSourceStatic, svc.Source())
}

func TestCatalogService_DatabaseCacheAside(t *testing.T) {
	t.Parallel()

	mr, rdb := setupRedis(t)
	repo := &eventRepoStub{rows: dbRows()}
	svc := NewCatalogService(config.CatalogSourceDatabase, repo, rdb, time.Minute)
	ctx := context.Background()

	first, err := svc.Catalog(ctx)
	require.NoError(t, err)
	second, err := svc.Catalog(ctx)
	require.NoError(t, err)

	assert.Equal(t, first.Items(), second.Items())
	assert.Equal(t, 1, repo.listCalls, "second read is served from Redis")
	assert.True(t, mr.Exists(cache.CatalogKey(config.CatalogSourceDatabase)))
	assert.Equal(t, []string{"Gundam", "Sailor Moon"}, second.Fandoms())

	svc.Invalidate(ctx)
	_, err = svc.Catalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.listCalls)
}

func TestCatalogService_DatabaseError(t *testing.T) {
	t.Parallel()

	repo := &eventRepoStub{listErr: models.NewInternalError(errors.New("db down"))}
	svc := NewCatalogService(config.CatalogSourceDatabase, repo, nil, time.Minute)

	_, err := svc.Catalog(context.Background())
	assert.Equal(t, models.CodeInternal, models.ErrorCode(err))
}

func TestCatalogService_Search(t *testing.T) {
	t.Parallel()

	svc := NewCatalogService(config.CatalogSourceStatic, nil, nil, 0)
	zelda := "Zelda"
	month := events.DateMonth

	got, c, err := svc.Search(context.Background(), events.FilterState{Fandom: &zelda, Date: &month})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "2", got[0].ID)
	assert.Equal(t, 3, c.Len())
}

func TestCatalogService_SeedDemo(t *testing.T) {
	t.Parallel()

	mr, rdb := setupRedis(t)
	require.NoError(t, mr.Set(cache.CatalogKey(config.CatalogSourceDatabase), "[]"))

	repo := &eventRepoStub{}
	svc := NewCatalogService(config.CatalogSourceDatabase, repo, rdb, time.Minute)

	n, err := svc.SeedDemo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	require.Len(t, repo.upserted, 3)
	assert.Equal(t, 1, repo.upserted[0].Position)
	assert.Equal(t, "Cosplay Meetup: Night City", repo.upserted[0].Title)
	assert.False(t, mr.Exists(cache.CatalogKey(config.CatalogSourceDatabase)), "seeding drops the cached catalog")

	_, err = NewCatalogService(config.CatalogSourceStatic, nil, nil, 0).SeedDemo(context.Background())
	assert.Error(t, err)
}

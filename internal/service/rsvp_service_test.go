package service

import (
	"context"
	"testing"

	"capes/internal/cache"
	"capes/internal/config"
	"capes/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRSVPService(t *testing.T) {
	t.Parallel()

	mr, rdb := setupRedis(t)
	profiles := noopProfileRepo()
	counts := map[string]int{}
	profiles.adjustFn = func(_ context.Context, id string, delta int) error {
		counts[id] += delta
		return nil
	}
	catalog := NewCatalogService(config.CatalogSourceStatic, nil, nil, 0)
	svc := NewRSVPService(newRSVPRepoStub(), profiles, catalog, rdb)
	ctx := context.Background()

	a, err := svc.Attendance(ctx, "1", "p1")
	require.NoError(t, err)
	assert.Equal(t, Attendance{Count: 0, Going: false}, a)
	assert.True(t, mr.Exists(cache.RSVPCountKey("1")))

	a, err = svc.RSVP(ctx, "1", "p1")
	require.NoError(t, err)
	assert.Equal(t, Attendance{Count: 1, Going: true}, a, "the cached count is dropped on change")

	a, err = svc.RSVP(ctx, "1", "p1")
	require.NoError(t, err)
	assert.Equal(t, Attendance{Count: 1, Going: true}, a)
	assert.Equal(t, 1, counts["p1"], "repeated RSVPs count once")

	a, err = svc.Attendance(ctx, "1", "")
	require.NoError(t, err)
	assert.Equal(t, Attendance{Count: 1, Going: false}, a)

	a, err = svc.Cancel(ctx, "1", "p1")
	require.NoError(t, err)
	assert.Equal(t, Attendance{Count: 0, Going: false}, a)
	assert.Equal(t, 0, counts["p1"])

	_, err = svc.Cancel(ctx, "1", "p1")
	require.NoError(t, err)
	assert.Equal(t, 0, counts["p1"])
}

func TestRSVPService_UnknownEvent(t *testing.T) {
	t.Parallel()

	catalog := NewCatalogService(config.CatalogSourceStatic, nil, nil, 0)
	svc := NewRSVPService(newRSVPRepoStub(), noopProfileRepo(), catalog, nil)

	_, err := svc.RSVP(context.Background(), "missing", "p1")
	assert.True(t, models.IsNotFound(err))
	_, err = svc.Cancel(context.Background(), "missing", "p1")
	assert.True(t, models.IsNotFound(err))
}

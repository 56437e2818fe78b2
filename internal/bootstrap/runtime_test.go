package bootstrap

import (
	"path/filepath"
	"testing"

	"capes/internal/config"
	"capes/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func sqliteConfig(t *testing.T, source string) *config.Config {
	t.Helper()
	mr := miniredis.RunT(t)
	return &config.Config{
		Env:           "test",
		DBDriver:      "sqlite",
		DBSQLitePath:  filepath.Join(t.TempDir(), "capes.db"),
		RedisURL:      mr.Addr(),
		CatalogSource: source,
	}
}

func closeAll(t *testing.T, db *gorm.DB, rdb *redis.Client) {
	t.Helper()
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
		if rdb != nil {
			_ = rdb.Close()
		}
	})
}

func countEvents(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.Event{}).Count(&n).Error)
	return n
}

func TestInitRuntime_SeedsEmptyDatabaseCatalog(t *testing.T) {
	cfg := sqliteConfig(t, config.CatalogSourceDatabase)

	db, rdb, err := InitRuntime(cfg, Options{SeedCatalog: true})
	require.NoError(t, err)
	closeAll(t, db, rdb)

	assert.NotNil(t, rdb)
	assert.Equal(t, int64(3), countEvents(t, db))

	// A second start leaves existing rows alone.
	require.NoError(t, db.Where("id = ?", "3").Delete(&models.Event{}).Error)
	db2, rdb2, err := InitRuntime(cfg, Options{SeedCatalog: true})
	require.NoError(t, err)
	closeAll(t, db2, rdb2)
	assert.Equal(t, int64(2), countEvents(t, db2))
}

func TestInitRuntime_StaticCatalogIsNotSeeded(t *testing.T) {
	cfg := sqliteConfig(t, config.CatalogSourceStatic)

	db, rdb, err := InitRuntime(cfg, Options{SeedCatalog: true})
	require.NoError(t, err)
	closeAll(t, db, rdb)
	assert.Zero(t, countEvents(t, db))
}

func TestInitRuntime_WithoutRedis(t *testing.T) {
	cfg := sqliteConfig(t, config.CatalogSourceStatic)
	cfg.RedisURL = "redis://%zz"

	db, rdb, err := InitRuntime(cfg, Options{})
	require.NoError(t, err)
	closeAll(t, db, rdb)
	assert.Nil(t, rdb)
}

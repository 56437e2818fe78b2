package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"capes/internal/database"
	"capes/internal/models"
	"capes/internal/validation"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	return gormDB, mock
}

func TestProfileRepository_GetByID_NotFoundIsNil(t *testing.T) {
	repo := NewProfileRepository(setupTestDB(t))

	p, err := repo.GetByID(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestProfileRepository_GetByID_DatabaseError(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewProfileRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "profiles" WHERE id = \$1`).
		WithArgs("p1", 1).
		WillReturnError(errors.New("connection reset"))

	p, err := repo.GetByID(context.Background(), "p1")
	assert.Nil(t, p)
	require.Error(t, err)
	assert.Equal(t, models.CodeInternal, models.ErrorCode(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepository_GetByID_Found(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewProfileRepository(db)

	rows := sqlmock.NewRows([]string{"id", "username", "country", "bio", "interests"}).
		AddRow("p1", "mia", "Japan", models.DefaultBio, `{"2":"Manga","1":"Anime"}`)
	mock.ExpectQuery(`SELECT \* FROM "profiles" WHERE id = \$1`).
		WithArgs("p1", 1).
		WillReturnRows(rows)

	p, err := repo.GetByID(context.Background(), "p1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "mia", p.Username)
	assert.Equal(t, models.Labels{"Anime", "Manga"}, p.Interests)
	assert.True(t, p.IsComplete())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepository_EnsureDefault(t *testing.T) {
	repo := NewProfileRepository(setupTestDB(t))
	ctx := context.Background()

	p, err := repo.EnsureDefault(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", p.ID)
	assert.Equal(t, models.DefaultBio, p.Bio)
	assert.Empty(t, p.Username)
	assert.Empty(t, p.Interests)
	assert.False(t, p.IsComplete())

	require.NoError(t, repo.Save(ctx, &models.Profile{
		ID: "p1", Username: "mia", Country: "Japan", Interests: models.Labels{"Anime"}, Bio: models.DefaultBio,
	}))

	again, err := repo.EnsureDefault(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "mia", again.Username, "an existing profile keeps its onboarding fields")
	assert.True(t, again.IsComplete())
}

func TestProfileRepository_EnsureDefault_Concurrent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = repo.EnsureDefault(ctx, "new-visitor")
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	var rows []models.Profile
	require.NoError(t, db.Where("id = ?", "new-visitor").Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, models.DefaultBio, rows[0].Bio)
	assert.Empty(t, rows[0].Username)
	assert.Empty(t, rows[0].Country)
	assert.Empty(t, rows[0].Interests)
}

func TestProfileRepository_Save(t *testing.T) {
	repo := NewProfileRepository(setupTestDB(t))
	ctx := context.Background()

	_, err := repo.EnsureDefault(ctx, "p1")
	require.NoError(t, err)

	require.NoError(t, repo.Save(ctx, &models.Profile{
		ID: "p1", Username: "mia", Country: "Japan", Interests: models.Labels{"Anime", "VTubers"}, Bio: models.DefaultBio,
	}))
	require.NoError(t, repo.Save(ctx, &models.Profile{
		ID: "p1", Username: "mia", Country: "Canada", Interests: models.Labels{"Gaming"}, Bio: models.DefaultBio,
	}))

	got, err := repo.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Canada", got.Country)
	assert.Equal(t, models.Labels{"Gaming"}, got.Interests)

	require.NoError(t, repo.Save(ctx, &models.Profile{ID: "fresh", Username: "nico", Country: "Japan", Interests: models.Labels{"Anime"}}))
	fresh, err := repo.GetByID(ctx, "fresh")
	require.NoError(t, err)
	require.NotNil(t, fresh, "save creates the row when missing")
}

func TestProfileRepository_Save_UsernameTaken(t *testing.T) {
	repo := NewProfileRepository(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &models.Profile{ID: "a", Username: "mia", Country: "Japan", Interests: models.Labels{"Anime"}}))
	err := repo.Save(ctx, &models.Profile{ID: "b", Username: "mia", Country: "Japan", Interests: models.Labels{"Anime"}})
	require.Error(t, err)
	assert.Equal(t, models.CodeValidation, models.ErrorCode(err))
	var fields validation.Errors
	require.ErrorAs(t, err, &fields)
	assert.Equal(t, validation.Errors{"username": "Username is already taken"}, fields)

	// Blank usernames of fresh profiles do not collide.
	_, err = repo.EnsureDefault(ctx, "c")
	require.NoError(t, err)
	_, err = repo.EnsureDefault(ctx, "d")
	require.NoError(t, err)
}

func TestProfileRepository_AdjustEventCount(t *testing.T) {
	repo := NewProfileRepository(setupTestDB(t))
	ctx := context.Background()

	_, err := repo.EnsureDefault(ctx, "p1")
	require.NoError(t, err)

	require.NoError(t, repo.AdjustEventCount(ctx, "p1", 1))
	require.NoError(t, repo.AdjustEventCount(ctx, "p1", 1))
	require.NoError(t, repo.AdjustEventCount(ctx, "p1", -5))

	p, err := repo.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Zero(t, p.EventCount)

	require.NoError(t, repo.AdjustEventCount(ctx, "p1", 1))
	p, err = repo.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, p.EventCount)
}

func TestIsUniqueConstraintError(t *testing.T) {
	assert.False(t, isUniqueConstraintError(nil, ""))
	assert.True(t, isUniqueConstraintError(&pgconn.PgError{Code: "23505", ConstraintName: "idx_profiles_username"}, "username"))
	assert.False(t, isUniqueConstraintError(&pgconn.PgError{Code: "23505", ConstraintName: "profiles_pkey"}, "username"))
	assert.False(t, isUniqueConstraintError(&pgconn.PgError{Code: "23503"}, ""))
	assert.True(t, isUniqueConstraintError(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), ""))
	assert.True(t, isUniqueConstraintError(errors.New("UNIQUE constraint failed: profiles.username"), "username"))
	assert.False(t, isUniqueConstraintError(errors.New("no such table"), ""))
}

func seedEvents(t *testing.T, repo EventRepository) {
	t.Helper()
	start := time.Date(2025, 10, 1, 18, 0, 0, 0, time.UTC)
	require.NoError(t, repo.UpsertMany(context.Background(), []models.Event{
		{ID: "b", Title: "Second", StartsAt: start, Position: 2, Tags: models.StringList{"x"}},
		{ID: "a", Title: "First", StartsAt: start, Position: 1, Kind: "virtual"},
		{ID: "c", Title: "Third", StartsAt: start, Position: 3},
	}))
}

func TestEventRepository(t *testing.T) {
	repo := NewEventRepository(setupTestDB(t))
	ctx := context.Background()

	seedEvents(t, repo)

	list, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{list[0].ID, list[1].ID, list[2].ID})
	assert.Equal(t, models.StringList{"x"}, list[1].Tags)

	require.NoError(t, repo.UpsertMany(ctx, []models.Event{{ID: "a", Title: "First (updated)", StartsAt: time.Now(), Position: 1}}))
	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	got, err := repo.GetByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "First (updated)", got.Title)

	_, err = repo.GetByID(ctx, "zzz")
	assert.True(t, models.IsNotFound(err))

	assert.NoError(t, repo.UpsertMany(ctx, nil))
}

func TestEventRepository_ListAll_DatabaseError(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewEventRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "events"`).WillReturnError(errors.New("timeout"))

	_, err := repo.ListAll(context.Background())
	assert.Equal(t, models.CodeInternal, models.ErrorCode(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRSVPRepository(t *testing.T) {
	repo := NewRSVPRepository(setupTestDB(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, "e1", "p1")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.Create(ctx, "e1", "p1")
	require.NoError(t, err)
	assert.False(t, created, "RSVP is idempotent")

	_, err = repo.Create(ctx, "e1", "p2")
	require.NoError(t, err)

	n, err := repo.Count(ctx, "e1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	ok, err := repo.Exists(ctx, "e1", "p1")
	require.NoError(t, err)
	assert.True(t, ok)

	deleted, err := repo.Delete(ctx, "e1", "p1")
	require.NoError(t, err)
	assert.True(t, deleted)
	deleted, err = repo.Delete(ctx, "e1", "p1")
	require.NoError(t, err)
	assert.False(t, deleted)

	ok, err = repo.Exists(ctx, "e1", "p1")
	require.NoError(t, err)
	assert.False(t, ok)
}

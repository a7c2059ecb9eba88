package activity

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/bluemoon-apartment/bluemoon-backend/internal/db/models"
	"github.com/bluemoon-apartment/bluemoon-backend/internal/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func seedLogs(t *testing.T, db *gorm.DB, base time.Time) {
	t.Helper()
	testutil.CreateActivityLog(t, db, "u-1", "vehicles_create", "vehicles", models.ActivityStatusSuccess, base.Add(-3*time.Hour))
	testutil.CreateActivityLog(t, db, "u-1", "vehicles_delete", "vehicles", models.ActivityStatusWarning, base.Add(-2*time.Hour))
	testutil.CreateActivityLog(t, db, "u-2", "bills_create", "bills", models.ActivityStatusSuccess, base.Add(-1*time.Hour))
	testutil.CreateActivityLog(t, db, "u-2", "login", "auth", models.ActivityStatusSuccess, base)
}

func TestGormStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := NewGormStore(db)

	id := "12"
	log := &models.ActivityLog{
		UserID:       "u-1",
		Username:     "alice",
		Action:       "vehicles_delete",
		ResourceType: "vehicles",
		ResourceID:   &id,
		Details:      datatypes.JSON(`{"method":"DELETE","path":"/api/vehicles/12","statusCode":200}`),
		IPAddress:    "127.0.0.1",
		UserAgent:    "test-agent",
		Status:       models.ActivityStatusSuccess,
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, store.Create(context.Background(), log))
	assert.NotZero(t, log.ID)

	var saved models.ActivityLog
	require.NoError(t, db.First(&saved, log.ID).Error)
	assert.Equal(t, "alice", saved.Username)
	require.NotNil(t, saved.ResourceID)
	assert.Equal(t, "12", *saved.ResourceID)
	assert.JSONEq(t, string(log.Details), string(saved.Details))
}

func TestGormStore_List(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := NewGormStore(db)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	seedLogs(t, db, base)
	ctx := context.Background()

	logs, total, err := store.List(ctx, Filter{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	require.Len(t, logs, 4)
	assert.Equal(t, "login", logs[0].Action, "newest first")

	logs, total, err = store.List(ctx, Filter{UserID: "u-1", Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, logs, 2)

	logs, total, err = store.List(ctx, Filter{Page: 2, PageSize: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	require.Len(t, logs, 1)
	assert.Equal(t, "vehicles_create", logs[0].Action)

	start := base.Add(-150 * time.Minute)
	end := base.Add(-30 * time.Minute)
	logs, total, err = store.List(ctx, Filter{StartTime: &start, EndTime: &end, Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, logs, 2)

	_, total, err = store.List(ctx, Filter{Status: models.ActivityStatusWarning, ResourceType: "vehicles"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestGormStore_Stats(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := NewGormStore(db)
	seedLogs(t, db, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))

	stats, err := store.Stats(context.Background(), Filter{})
	require.NoError(t, err)

	assert.Equal(t, int64(4), stats.Total)
	assert.Len(t, stats.ByAction, 4)
	require.Len(t, stats.ByResourceType, 3)
	assert.Equal(t, Count{Key: "vehicles", Count: 2}, stats.ByResourceType[0])
	require.Len(t, stats.ByStatus, 2)
	assert.Equal(t, Count{Key: models.ActivityStatusSuccess, Count: 3}, stats.ByStatus[0])
}

func TestGormStore_OlderThan(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := NewGormStore(db)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	seedLogs(t, db, base)
	ctx := context.Background()
	cutoff := base.Add(-90 * time.Minute)

	first, err := store.FindOlderThan(ctx, cutoff, 0, 1)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, "vehicles_create", first[0].Action)

	rest, err := store.FindOlderThan(ctx, cutoff, first[0].ID, 10)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, "vehicles_delete", rest[0].Action)

	deleted, err := store.DeleteOlderThan(ctx, cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	var remaining int64
	require.NoError(t, db.Model(&models.ActivityLog{}).Count(&remaining).Error)
	assert.Equal(t, int64(2), remaining)
}

func TestGormStore_DeleteOlderThan_SQL(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	gdb, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	cutoff := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "activity_logs" WHERE created_at < $1`)).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 7))

	deleted, err := NewGormStore(gdb).DeleteOlderThan(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(7), deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookdesk/internal/models"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "bookdesk.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSnapshotRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	cfg := models.ScheduleConfig{
		DurationMinutes: 45,
		Week: map[models.Weekday][]models.TimeBlock{
			models.Monday:  {{StartHour: 9, EndHour: 13}, {StartHour: 14, EndHour: 17}},
			models.Friday:  {},
			models.Default: {{StartHour: 10, EndHour: 16}},
		},
	}

	require.NoError(t, db.SaveSnapshot(ctx, cfg))

	got, err := db.LoadSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestLoadSnapshotEmpty(t *testing.T) {
	db := openTestDB(t)

	_, err := db.LoadSnapshot(context.Background())
	assert.Error(t, err)
}

func TestSaveSnapshotOverwrites(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	first := models.ScheduleConfig{DurationMinutes: 30}
	second := models.ScheduleConfig{DurationMinutes: 90}

	require.NoError(t, db.SaveSnapshot(ctx, first))
	require.NoError(t, db.SaveSnapshot(ctx, second))

	got, err := db.LoadSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 90, got.DurationMinutes)

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM schedule_snapshots`).Scan(&count))
	assert.Equal(t, 1, count, "snapshot table holds a single row")
}

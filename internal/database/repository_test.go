package database

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autorandr/autorandr-launcher/internal/models"
)

func openTestRepo(t *testing.T) *Repository {
	t.Helper()

	db, err := Connect(filepath.Join(t.TempDir(), "nested", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Initialize())

	return NewRepository(db)
}

func TestGetDefaultDBPath(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/var/tmp/state")
	path, err := GetDefaultDBPath()
	require.NoError(t, err)
	assert.Equal(t, "/var/tmp/state/autorandr-launcher/history.db", path)

	t.Setenv("XDG_STATE_HOME", "")
	t.Setenv("HOME", "/home/tester")
	path, err = GetDefaultDBPath()
	require.NoError(t, err)
	assert.Equal(t, "/home/tester/.local/state/autorandr-launcher/history.db", path)
}

func TestRecordAndListLaunches(t *testing.T) {
	repo := openTestRepo(t)
	base := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

	for i, code := range []int{0, 1, 0} {
		ev := &models.LaunchEvent{
			ServerTimestamp: uint32(100 + i),
			StartedAt:       base.Add(time.Duration(i) * time.Minute),
			DurationMs:      250,
			ExitCode:        code,
			DisplayServer:   "x11",
		}
		require.NoError(t, repo.RecordLaunch(ev))
		assert.NotZero(t, ev.ID)
	}

	recent, err := repo.RecentLaunches(2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, uint32(102), recent[0].ServerTimestamp)
	assert.Equal(t, uint32(101), recent[1].ServerTimestamp)

	total, failed, err := repo.CountLaunches()
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, int64(1), failed)
}

func TestStartFailureCountsAsFailed(t *testing.T) {
	repo := openTestRepo(t)

	require.NoError(t, repo.RecordLaunch(&models.LaunchEvent{
		ServerTimestamp: 9,
		StartedAt:       time.Now(),
		ExitCode:        127,
		Error:           "failed to start /usr/bin/autorandr: no such file or directory",
		DisplayServer:   "x11",
	}))

	_, failed, err := repo.CountLaunches()
	require.NoError(t, err)
	assert.Equal(t, int64(1), failed)
}

func TestRecordError(t *testing.T) {
	repo := openTestRepo(t)

	require.NoError(t, repo.RecordError("wait", errors.New("X protocol error: BadWindow")))

	logs, err := repo.RecentErrors(10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "wait", logs[0].Stage)
	assert.Contains(t, logs[0].ErrorMsg, "BadWindow")
}

func TestDeleteOlderThan(t *testing.T) {
	repo := openTestRepo(t)
	now := time.Now()

	require.NoError(t, repo.RecordLaunch(&models.LaunchEvent{ServerTimestamp: 1, StartedAt: now.Add(-48 * time.Hour), DisplayServer: "x11"}))
	require.NoError(t, repo.RecordLaunch(&models.LaunchEvent{ServerTimestamp: 2, StartedAt: now, DisplayServer: "x11"}))

	deleted, err := repo.DeleteOlderThan(now.Add(-24 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	recent, err := repo.RecentLaunches(10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, uint32(2), recent[0].ServerTimestamp)
}

func TestDeleteOlderThanFreesRows(t *testing.T) {
	repo := openTestRepo(t)
	old := time.Now().Add(-48 * time.Hour)

	for i := 1; i <= 3; i++ {
		require.NoError(t, repo.RecordLaunch(&models.LaunchEvent{ServerTimestamp: uint32(i), StartedAt: old, DisplayServer: "x11"}))
	}
	require.NoError(t, repo.db.Create(&models.ErrorLog{Timestamp: old, Stage: "wait", ErrorMsg: "bad request"}).Error)

	deleted, err := repo.DeleteOlderThan(time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(4), deleted)

	var launches, logs int64
	require.NoError(t, repo.db.Unscoped().Model(&models.LaunchEvent{}).Count(&launches).Error)
	require.NoError(t, repo.db.Unscoped().Model(&models.ErrorLog{}).Count(&logs).Error)
	assert.Zero(t, launches)
	assert.Zero(t, logs)
}

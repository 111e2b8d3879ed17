package cleanup_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"separation-service/ddd/infrastructure/cleanup"
)

func waitForGone(t *testing.T, path string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("%s was not deleted in time", path)
}

func TestScheduleDeletion_FiresAfterDelay(t *testing.T) {
	s := cleanup.NewScheduler()
	defer s.Stop()

	path := filepath.Join(t.TempDir(), "clip_vocals_only.mp4")
	require.NoError(t, os.WriteFile(path, []byte("mp4"), 0o644))

	s.ScheduleDeletion(path, 30*time.Millisecond)
	assert.Equal(t, 1, s.PendingCount())

	// 窗口未到之前产物仍在
	_, err := os.Stat(path)
	assert.NoError(t, err)

	waitForGone(t, path)
	assert.Equal(t, 0, s.PendingCount())
}

func TestScheduleDirectoryDeletion_RemovesWholeTree(t *testing.T) {
	s := cleanup.NewScheduler()
	defer s.Stop()

	dir := filepath.Join(t.TempDir(), "song")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vocals.wav"), []byte("wav"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "accompaniment.wav"), []byte("wav"), 0o644))

	s.ScheduleDirectoryDeletion(dir, 20*time.Millisecond)
	waitForGone(t, dir)
}

func TestStop_CancelsPendingDeletions(t *testing.T) {
	s := cleanup.NewScheduler()

	path := filepath.Join(t.TempDir(), "keep.mp4")
	require.NoError(t, os.WriteFile(path, []byte("mp4"), 0o644))

	s.ScheduleDeletion(path, 50*time.Millisecond)
	require.NoError(t, s.Stop())
	assert.Equal(t, 0, s.PendingCount())

	time.Sleep(100 * time.Millisecond)
	_, err := os.Stat(path)
	assert.NoError(t, err, "cancelled deletion must not fire")

	// 停止后新的注册被丢弃
	s.ScheduleDeletion(path, time.Millisecond)
	assert.Equal(t, 0, s.PendingCount())
}

func TestScheduleDeletion_MissingTargetIsHarmless(t *testing.T) {
	s := cleanup.NewScheduler()
	defer s.Stop()

	s.ScheduleDeletion(filepath.Join(t.TempDir(), "already-gone.mp3"), time.Millisecond)

	deadline := time.Now().Add(time.Second)
	for s.PendingCount() > 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	assert.Equal(t, 0, s.PendingCount())
}

func TestSweepStale_RemovesOnlyOldEntries(t *testing.T) {
	s := cleanup.NewScheduler()
	defer s.Stop()

	dir := t.TempDir()
	stale := filepath.Join(dir, "old_vocals_only.mp4")
	fresh := filepath.Join(dir, "fresh_vocals_only.mp4")
	require.NoError(t, os.WriteFile(stale, []byte("mp4"), 0o644))
	require.NoError(t, os.WriteFile(fresh, []byte("mp4"), 0o644))

	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(stale, old, old))

	s.SweepStale([]string{dir}, 10*time.Minute)

	_, err := os.Stat(stale)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(fresh)
	assert.NoError(t, err)
}

func TestSweepStale_MissingDirIsSkipped(t *testing.T) {
	s := cleanup.NewScheduler()
	defer s.Stop()

	// 不存在的目录直接跳过，不panic不报错
	s.SweepStale([]string{filepath.Join(t.TempDir(), "nope")}, time.Minute)
}

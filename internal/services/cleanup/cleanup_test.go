package cleanup

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string, age time.Duration) {
	t.Helper()
	mod := time.Now().Add(-age)
	require.NoError(t, os.Chtimes(path, mod, mod))
}

func TestSweep(t *testing.T) {
	dir := t.TempDir()

	staleSegments := filepath.Join(dir, "voice_segments_123")
	require.NoError(t, os.Mkdir(staleSegments, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(staleSegments, "segment_000.mp3"), []byte("x"), 0o644))
	touch(t, staleSegments, 3*time.Hour)

	freshSegments := filepath.Join(dir, "voice_segments_456")
	require.NoError(t, os.Mkdir(freshSegments, 0o755))

	staleSource := filepath.Join(dir, "voice_source_789.m4a")
	require.NoError(t, os.WriteFile(staleSource, []byte("x"), 0o644))
	touch(t, staleSource, 3*time.Hour)

	unrelated := filepath.Join(dir, "keep_me.txt")
	require.NoError(t, os.WriteFile(unrelated, []byte("x"), 0o644))
	touch(t, unrelated, 48*time.Hour)

	svc := NewService(dir, time.Hour, time.Minute)
	assert.Equal(t, 2, svc.Sweep())

	assert.NoDirExists(t, staleSegments)
	assert.NoFileExists(t, staleSource)
	assert.DirExists(t, freshSegments)
	assert.FileExists(t, unrelated)

	assert.Equal(t, 0, svc.Sweep())
}

func TestSweep_MissingDir(t *testing.T) {
	svc := NewService(filepath.Join(t.TempDir(), "absent"), time.Hour, time.Minute)
	assert.Equal(t, 0, svc.Sweep())
}

func TestStartStop(t *testing.T) {
	dir := t.TempDir()
	stale := filepath.Join(dir, "voice_segments_1")
	require.NoError(t, os.Mkdir(stale, 0o755))
	touch(t, stale, 2*time.Hour)

	svc := NewService(dir, time.Hour, 10*time.Millisecond)
	svc.Start(context.Background())
	defer svc.Stop()

	// the initial sweep runs synchronously
	assert.NoDirExists(t, stale)

	later := filepath.Join(dir, "voice_segments_2")
	require.NoError(t, os.Mkdir(later, 0o755))
	touch(t, later, 2*time.Hour)
	assert.Eventually(t, func() bool {
		_, err := os.Stat(later)
		return os.IsNotExist(err)
	}, time.Second, 10*time.Millisecond)
}

package audio

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteToneFile_RoundTripsHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sample_5s.wav")

	require.NoError(t, WriteToneFile(path, DefaultToneOptions()))

	info, err := Inspect(path)
	require.NoError(t, err)
	assert.Equal(t, 16000, info.SampleRate)
	assert.Equal(t, 1, info.Channels)
	assert.Equal(t, 16, info.BitDepth)
	assert.InDelta(t, float64(5*time.Second), float64(info.Duration), float64(10*time.Millisecond))
}

func TestWriteToneFile_RejectsBadOptions(t *testing.T) {
	dir := t.TempDir()

	err := WriteToneFile(filepath.Join(dir, "a.wav"), ToneOptions{Seconds: 0, SampleRate: 16000})
	assert.Error(t, err)

	err = WriteToneFile(filepath.Join(dir, "b.wav"), ToneOptions{Seconds: 1, SampleRate: 0})
	assert.Error(t, err)
}

func TestInspect_NotWav(t *testing.T) {
	_, err := Inspect(filepath.Join(t.TempDir(), "missing.wav"))
	assert.Error(t, err)
}

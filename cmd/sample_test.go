package cmd

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/killallgit/voicenote-api/pkg/audio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleCommandWritesTone(t *testing.T) {
	out := filepath.Join(t.TempDir(), "nested", "tone.wav")

	output, err := execute(t, "sample", "--seconds", "2", "--rate", "8000", "--out", out)
	require.NoError(t, err)
	assert.Contains(t, output, "Wrote "+out)

	info, err := audio.Inspect(out)
	require.NoError(t, err)
	assert.Equal(t, 8000, info.SampleRate)
	assert.Equal(t, 1, info.Channels)
	assert.InDelta(t, float64(2*time.Second), float64(info.Duration), float64(10*time.Millisecond))
}

func TestSampleCommandRejectsZeroLength(t *testing.T) {
	_, err := execute(t, "sample", "--seconds", "0", "--out", filepath.Join(t.TempDir(), "x.wav"))
	assert.Error(t, err)
}

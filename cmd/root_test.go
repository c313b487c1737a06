package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	tests := []struct {
		name           string
		args           []string
		wantErr        bool
		expectedOutput string
	}{
		{
			name:           "root command without args shows help",
			args:           []string{},
			expectedOutput: "Voicenote API",
		},
		{
			name:           "root command with help flag",
			args:           []string{"--help"},
			expectedOutput: "Available Commands:",
		},
		{
			name:    "root command with invalid flag",
			args:    []string{"--invalid-flag"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.args...)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			if tt.expectedOutput != "" {
				assert.Contains(t, out, tt.expectedOutput)
			}
		})
	}
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	for _, name := range []string{"serve", "process", "ingest", "migrate", "sample", "version"} {
		cmd, _, err := NewRootCmd().Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestLogFlags(t *testing.T) {
	cmd := NewRootCmd()

	logFlag := cmd.PersistentFlags().Lookup("log-level")
	require.NotNil(t, logFlag)
	assert.Equal(t, "", logFlag.DefValue, "empty level defers to logging.level")

	jsonFlag := cmd.PersistentFlags().Lookup("json-logs")
	require.NotNil(t, jsonFlag)
	assert.Equal(t, "false", jsonFlag.DefValue)
}

func TestLoadConfigReadsEnvironment(t *testing.T) {
	dir := isolate(t)
	t.Setenv("VOICENOTE_PROCESSING_SEGMENT_SECONDS", "90")

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, dir+"/voicenote.db", cfg.Database.Path)
	assert.Equal(t, 90, cfg.Processing.SegmentSeconds)
}

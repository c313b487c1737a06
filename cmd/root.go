package cmd

import (
	"fmt"
	"os"

	"github.com/killallgit/voicenote-api/pkg/config"
	"github.com/killallgit/voicenote-api/pkg/logging"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "voicenote-api",
	Short: "Voice recording to transcript note service",
	Long: `Voicenote API - turns uploaded voice recordings into transcript notes

Every recording is probed with ffprobe, cut into fixed-length segments with
ffmpeg, transcribed through an OpenAI compatible speech recognition service
and merged into a single note.

Features:
  • Multipart upload endpoint with MIME and size validation
  • Bounded parallel transcription with retry and backoff
  • SQLite or PostgreSQL metadata, filesystem or S3 audio storage
  • Prometheus metrics and structured logs`,
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// NewRootCmd returns the root command (exported for testing)
func NewRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error); overrides logging.level")
	rootCmd.PersistentFlags().Bool("json-logs", false, "enable JSON formatted logs")
}

// setupLogging configures zerolog from the flags, falling back to the
// configuration for commands that load it.
func setupLogging(cmd *cobra.Command, _ []string) error {
	level, _ := cmd.Flags().GetString("log-level")
	jsonLogs, _ := cmd.Flags().GetBool("json-logs")

	format := "console"
	if needsConfig(cmd) {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if level == "" {
			level = cfg.Logging.Level
		}
		format = cfg.Logging.Format
	}
	if jsonLogs {
		format = "json"
	}
	logging.Setup(level, format)
	return nil
}

func needsConfig(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "version", "help", "sample":
		return false
	}
	return true
}

// loadConfig initializes viper once and returns the current configuration
func loadConfig() (*config.Config, error) {
	if err := config.Init(); err != nil {
		return nil, fmt.Errorf("error initializing config: %w", err)
	}
	cfg, err := config.GetConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

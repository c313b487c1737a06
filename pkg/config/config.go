package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	apperrors "github.com/killallgit/voicenote-api/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override (VOICENOTE_SERVER_PORT, ...)
const EnvPrefix = "VOICENOTE"

// DefaultASRPrompt steers the recognizer towards standard Persian orthography
// for lecture recordings.
const DefaultASRPrompt = "متن این فایل صوتی مربوط به یک جلسهٔ آموزشی به زبان فارسی است.\n" +
	"لطفاً واژگان را با املای رایج فارسی بنویس و اعداد را به صورت رقم ثبت کن.\n" +
	"نام‌های علمی و اصطلاحات را همان‌گونه که ادا می‌شود ثبت کن.\n" +
	"از حدس‌زدن یا افزودن کلمات خودداری کن؛ فقط آنچه گفته می‌شود را بنویس."

// DefaultMimeTypes are the upload content types accepted by the voices endpoint
var DefaultMimeTypes = []string{
	"audio/m4a",
	"audio/mp4",
	"audio/aac",
	"audio/ogg",
	"audio/wav",
	"audio/x-m4a",
	"audio/mpeg",
}

// legacyEnv maps config keys to the unprefixed variable names older deployments export.
var legacyEnv = map[string]string{
	"asr.api_key":                "OPENAI_API_KEY",
	"asr.base_url":               "OPENAI_BASE_URL",
	"asr.model":                  "ASR_MODEL",
	"processing.segment_seconds": "SEGMENT_SECONDS",
}

var (
	once    sync.Once
	initErr error
)

// Init initializes the configuration system
// This should be called once at application startup
func Init() error {
	once.Do(func() {
		initErr = load("./config/settings.yaml")
	})
	return initErr
}

// load reads defaults, the optional settings file and the environment into viper.
func load(configPath string) error {
	setDefaults()

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	for key, legacy := range legacyEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := viper.BindEnv(key, prefixed, legacy); err != nil {
			return fmt.Errorf("binding env for %s: %w", key, err)
		}
	}

	configPath = filepath.Clean(configPath)
	viper.SetConfigFile(configPath)
	if err := viper.ReadInConfig(); err != nil {
		// A missing settings file is fine, defaults and env apply
		if !os.IsNotExist(err) {
			return fmt.Errorf("error reading config file %s: %w", configPath, err)
		}
	}

	if err := validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// GetConfig returns the current configuration as a struct
// Init() must be called before using this
func GetConfig() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &config, nil
}

// Get returns a config value by key using Viper directly
func Get(key string) any {
	return viper.Get(key)
}

// GetString returns a string config value
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetDuration returns a time.Duration config value
func GetDuration(key string) time.Duration {
	return viper.GetDuration(key)
}

// validate checks hard errors and auto-corrects values that have a safe fallback
func validate() error {
	port := viper.GetInt("server.port")
	if port <= 0 || port > 65535 {
		return apperrors.Newf(apperrors.ErrCodeConfigInvalid, "invalid server port: %d", port)
	}

	switch driver := viper.GetString("database.driver"); driver {
	case "sqlite":
		if viper.GetString("database.path") == "" {
			return apperrors.New(apperrors.ErrCodeConfigInvalid, "database.path is required for the sqlite driver")
		}
	case "postgres":
		if viper.GetString("database.dsn") == "" {
			return apperrors.New(apperrors.ErrCodeConfigInvalid, "database.dsn is required for the postgres driver")
		}
	default:
		return apperrors.Newf(apperrors.ErrCodeConfigInvalid, "unsupported database driver: %q", driver)
	}

	switch backend := viper.GetString("storage.backend"); backend {
	case "filesystem":
	case "s3":
		if viper.GetString("storage.s3.bucket") == "" {
			return apperrors.New(apperrors.ErrCodeConfigInvalid, "storage.s3.bucket is required for the s3 backend")
		}
	default:
		return apperrors.Newf(apperrors.ErrCodeConfigInvalid, "unsupported storage backend: %q", backend)
	}

	if viper.GetInt("processing.segment_seconds") <= 0 {
		log.Warn().Int("value", viper.GetInt("processing.segment_seconds")).Msg("processing.segment_seconds must be positive, using 150")
		viper.Set("processing.segment_seconds", 150)
	}
	if viper.GetInt("processing.default_duration") <= 0 {
		viper.Set("processing.default_duration", 300)
	}
	if f := viper.GetString("processing.note_format"); f != "txt" && f != "md" {
		log.Warn().Str("value", f).Msg("processing.note_format must be txt or md, using txt")
		viper.Set("processing.note_format", "txt")
	}
	if viper.GetInt("asr.max_retries") < 0 {
		viper.Set("asr.max_retries", 0)
	}
	if viper.GetInt("asr.max_concurrency") <= 0 {
		viper.Set("asr.max_concurrency", 3)
	}
	if viper.GetInt64("upload.max_size") <= 0 {
		viper.Set("upload.max_size", 30*1024*1024)
	}

	if viper.GetString("asr.api_key") == "" {
		if isProduction() {
			return apperrors.New(apperrors.ErrCodeConfigInvalid, "asr.api_key must be set in production")
		}
		log.Warn().Msg("No ASR API key configured, every segment will be marked failed")
	}

	return nil
}

func isProduction() bool {
	env := viper.GetString("environment")
	return env == "production" || env == "prod"
}

// Validate validates a Config struct (for testing)
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return apperrors.Newf(apperrors.ErrCodeConfigInvalid, "invalid server port: %d", c.Server.Port)
	}
	if c.Processing.SegmentSeconds <= 0 {
		c.Processing.SegmentSeconds = 150
	}
	if c.Processing.DefaultDuration <= 0 {
		c.Processing.DefaultDuration = 300
	}
	// negative disables reclaiming
	if c.Processing.StaleAfter == 0 {
		c.Processing.StaleAfter = 2 * time.Hour
	}
	if c.ASR.MaxConcurrency <= 0 {
		c.ASR.MaxConcurrency = 3
	}
	if c.ASR.MaxRetries < 0 {
		c.ASR.MaxRetries = 0
	}
	return nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("environment", "development")

	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 60*time.Second)
	// Uploads are processed synchronously, so writes must outlive a full run
	viper.SetDefault("server.write_timeout", 30*time.Minute)
	viper.SetDefault("server.shutdown_timeout", 10*time.Second)
	viper.SetDefault("server.max_header_bytes", 1048576)

	// Database defaults
	viper.SetDefault("database.driver", "sqlite")
	viper.SetDefault("database.path", "./data/voicenote.db")
	viper.SetDefault("database.dsn", "")
	viper.SetDefault("database.max_connections", 10)
	viper.SetDefault("database.max_idle_connections", 5)
	viper.SetDefault("database.connection_max_lifetime", 30*time.Minute)
	viper.SetDefault("database.verbose", false)

	// Storage defaults
	viper.SetDefault("storage.backend", "filesystem")
	viper.SetDefault("storage.media_root", "./media")
	viper.SetDefault("storage.temp_dir", "")
	viper.SetDefault("storage.max_temp_age", 6*time.Hour)
	viper.SetDefault("storage.cleanup_interval", 1*time.Hour)
	viper.SetDefault("storage.s3.bucket", "")
	viper.SetDefault("storage.s3.region", "us-east-1")
	viper.SetDefault("storage.s3.endpoint", "")
	viper.SetDefault("storage.s3.prefix", "")
	viper.SetDefault("storage.s3.access_key_id", "")
	viper.SetDefault("storage.s3.secret_access_key", "")
	viper.SetDefault("storage.s3.use_path_style", false)

	// Processing defaults
	viper.SetDefault("processing.ffmpeg_path", "ffmpeg")
	viper.SetDefault("processing.ffprobe_path", "ffprobe")
	viper.SetDefault("processing.version_timeout", 5*time.Second)
	viper.SetDefault("processing.probe_timeout", 10*time.Second)
	viper.SetDefault("processing.segment_timeout", 30*time.Second)
	viper.SetDefault("processing.segment_seconds", 150)
	viper.SetDefault("processing.default_duration", 300)
	viper.SetDefault("processing.note_format", "txt")
	viper.SetDefault("processing.stale_after", 2*time.Hour)

	// ASR defaults
	viper.SetDefault("asr.api_key", "")
	viper.SetDefault("asr.base_url", "https://api.openai.com/v1")
	viper.SetDefault("asr.model", "whisper-1")
	viper.SetDefault("asr.language", "fa")
	viper.SetDefault("asr.prompt", DefaultASRPrompt)
	viper.SetDefault("asr.max_retries", 2)
	viper.SetDefault("asr.backoff_base", 1*time.Second)
	viper.SetDefault("asr.max_concurrency", 3)
	viper.SetDefault("asr.request_timeout", 5*time.Minute)

	// Upload defaults
	viper.SetDefault("upload.max_size", 30*1024*1024)
	viper.SetDefault("upload.allowed_mime_types", DefaultMimeTypes)

	// Rate limiting defaults
	viper.SetDefault("rate_limiting.enabled", true)
	viper.SetDefault("rate_limiting.rps", 1.0)
	viper.SetDefault("rate_limiting.burst", 5)

	// Security defaults
	viper.SetDefault("security.enable_cors", true)
	viper.SetDefault("security.cors_origins", []string{"*"})

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "console")

	// Monitoring defaults
	viper.SetDefault("monitoring.enabled", true)
	viper.SetDefault("monitoring.metrics_path", "/metrics")
}

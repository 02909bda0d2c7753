package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Upload      UploadConfig    `toml:"upload"`
	Pipeline    PipelineConfig  `toml:"pipeline"`
	WebSocket   WebSocketConfig `toml:"websocket"`
	Logging     LoggingConfig   `toml:"logging"`
	Gemini      GeminiConfig    `toml:"gemini"`
	Claude      ClaudeConfig    `toml:"claude"`
	LLM         LLMConfig       `toml:"llm"`
	Cleanup     CleanupConfig   `toml:"cleanup"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

// UploadConfig controls media upload acceptance and file storage
type UploadConfig struct {
	Dir           string `toml:"dir"`              // Directory for uploaded media files
	MaxFileSizeMB int    `toml:"max_file_size_mb"` // Reject uploads larger than this
}

// PipelineConfig controls the analysis pipeline and its worker pool
type PipelineConfig struct {
	Concurrency      int     `toml:"concurrency"`        // Number of concurrent analysis workers
	QueueSize        int     `toml:"queue_size"`         // Pending job queue capacity
	MaxFrames        int     `toml:"max_frames"`         // Hard cap on analyzed video frames per run
	FrameRate        float64 `toml:"frame_rate"`         // Baseline frame sampling rate (fps)
	LongVideoSeconds float64 `toml:"long_video_seconds"` // Halve the sampling rate past this duration
	SummaryCaptions  int     `toml:"summary_captions"`   // Max distinct captions in the visual summary
}

// WebSocketConfig controls event delivery to WebSocket subscribers.
// Terminal events (analysis_complete, error) are never throttled.
type WebSocketConfig struct {
	ProgressThrottle string `toml:"progress_throttle"` // Min interval between progress events ("" = none)
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

// GeminiConfig contains configuration for Google Gemini multimodal analysis
type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`     // User must provide API key (GEMINI_API_KEY or config)
	Model       string  `toml:"model"`       // Model for vision and audio analysis
	Timeout     string  `toml:"timeout"`     // e.g. "5m"
	Temperature float32 `toml:"temperature"` // Generation temperature
}

// ClaudeConfig contains configuration for Anthropic Claude text generation
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`     // User must provide API key (ANTHROPIC_API_KEY or config)
	Model       string  `toml:"model"`       // Model for question answering and summaries
	MaxTokens   int     `toml:"max_tokens"`  // Max tokens per completion
	Timeout     string  `toml:"timeout"`     // e.g. "5m"
	Temperature float32 `toml:"temperature"` // Generation temperature
}

// LLMConfig selects the default text-generation provider
type LLMConfig struct {
	DefaultProvider string `toml:"default_provider"` // "claude" or "gemini"
}

// CleanupConfig controls scheduled eviction of stale work directories
// and finished pipeline registry entries
type CleanupConfig struct {
	Enabled  bool   `toml:"enabled"`
	Schedule string `toml:"schedule"` // Cron schedule format (with seconds)
	TTL      string `toml:"ttl"`      // Evict finished entries older than this
}

// NewDefaultConfig creates a configuration with default values.
// Only user-facing settings are exposed in mediascope.toml; technical
// parameters are hardcoded here for production stability.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data",
			},
		},
		Upload: UploadConfig{
			Dir:           "./storage",
			MaxFileSizeMB: 100,
		},
		Pipeline: PipelineConfig{
			Concurrency:      2, // Analysis runs are provider-bound; keep parallelism low
			QueueSize:        64,
			MaxFrames:        10,
			FrameRate:        1.0,
			LongVideoSeconds: 30,
			SummaryCaptions:  5,
		},
		WebSocket: WebSocketConfig{
			ProgressThrottle: "", // Checkpoints are sparse; no throttling by default
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout", "file"},
		},
		Gemini: GeminiConfig{
			APIKey:      "",
			Model:       "gemini-2.0-flash",
			Timeout:     "5m",
			Temperature: 0.2, // Low temperature for extraction-style analysis
		},
		Claude: ClaudeConfig{
			APIKey:      "",
			Model:       "claude-3-5-haiku-20241022",
			MaxTokens:   1024,
			Timeout:     "5m",
			Temperature: 0.5,
		},
		LLM: LLMConfig{
			DefaultProvider: "claude",
		},
		Cleanup: CleanupConfig{
			Enabled:  true,
			Schedule: "0 */30 * * * *", // Every 30 minutes
			TTL:      "2h",
		},
	}
}

// LoadFromFiles loads configuration from multiple files with priority:
// defaults -> file1 -> file2 -> ... -> env. Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("MEDIASCOPE_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	if port := os.Getenv("MEDIASCOPE_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("MEDIASCOPE_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if path := os.Getenv("MEDIASCOPE_STORAGE_PATH"); path != "" {
		config.Storage.Badger.Path = path
	}
	if dir := os.Getenv("MEDIASCOPE_UPLOAD_DIR"); dir != "" {
		config.Upload.Dir = dir
	}
	if size := os.Getenv("MEDIASCOPE_MAX_FILE_SIZE_MB"); size != "" {
		if s, err := strconv.Atoi(size); err == nil {
			config.Upload.MaxFileSizeMB = s
		}
	}
	if level := os.Getenv("MEDIASCOPE_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	// Provider-standard variable names first, MEDIASCOPE_ prefix wins
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		config.Gemini.APIKey = key
	}
	if key := os.Getenv("MEDIASCOPE_GEMINI_API_KEY"); key != "" {
		config.Gemini.APIKey = key
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		config.Claude.APIKey = key
	}
	if key := os.Getenv("MEDIASCOPE_CLAUDE_API_KEY"); key != "" {
		config.Claude.APIKey = key
	}
	if provider := os.Getenv("MEDIASCOPE_LLM_PROVIDER"); provider != "" {
		config.LLM.DefaultProvider = provider
	}
}

// ApplyFlagOverrides applies command-line flag overrides (highest priority)
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port != 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// ValidateCleanupSchedule validates a cron schedule expression (with seconds field)
func ValidateCleanupSchedule(schedule string) error {
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cleanup schedule %q: %w", schedule, err)
	}
	return nil
}

// ParseDurationOr parses a duration string, falling back to a default on error
func ParseDurationOr(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

// IsProduction returns true when running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

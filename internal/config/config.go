// Package config provides configuration management for the Cutdesk Agent.
// Configuration is loaded from environment variables with sensible defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	// Default values
	DefaultPort     = 8686
	DefaultLogLevel = "info"
	DefaultDataDir  = ".cutdesk"

	// Environment variable names
	EnvPort     = "CUTDESK_PORT"
	EnvLogLevel = "CUTDESK_LOG_LEVEL"
	EnvDataDir  = "CUTDESK_DATA_DIR"

	// Analysis environment variable names
	EnvOpenAIAPIKey    = "CUTDESK_OPENAI_API_KEY"
	EnvOpenAIBaseURL   = "CUTDESK_OPENAI_BASE_URL"
	EnvAnalysisModel   = "CUTDESK_ANALYSIS_MODEL"
	EnvTranscribeModel = "CUTDESK_TRANSCRIBE_MODEL"

	// Tool override environment variable names
	EnvFFmpegPath  = "CUTDESK_FFMPEG"
	EnvFFprobePath = "CUTDESK_FFPROBE"

	EnvHeadless = "CUTDESK_HEADLESS"

	// Database filename
	DBFilename = "cutdesk.db"

	// Defaults for the analysis collaborator
	DefaultAnalysisModel     = "gpt-4.1-mini"
	DefaultTranscribeModel   = "whisper-1"
	DefaultAnalysisTimeout   = 300 // seconds per clip
	DefaultTranscribeTimeout = 900 // seconds per clip

	// Render defaults
	DefaultRenderTimeout = 1800 // 30 minutes
)

// Config defines the application configuration interface
type Config interface {
	Port() int
	LogLevel() string
	DataDir() string
	DBPath() string
	WorkDir() string
	OpenAIAPIKey() string
	OpenAIBaseURL() string
	AnalysisModel() string
	TranscribeModel() string
	AnalysisTimeout() time.Duration
	TranscribeTimeout() time.Duration
	RenderTimeout() time.Duration
	FFmpegPath() string
	FFprobePath() string
	Headless() bool
}

// EnvConfig reads configuration from environment variables
type EnvConfig struct {
	port     int
	logLevel string
	dataDir  string

	openAIAPIKey    string
	openAIBaseURL   string
	analysisModel   string
	transcribeModel string

	ffmpegPath  string
	ffprobePath string

	headless bool
}

// New creates a new EnvConfig with defaults and environment variable overrides
func New() (*EnvConfig, error) {
	cfg := &EnvConfig{
		port:     DefaultPort,
		logLevel: DefaultLogLevel,
		dataDir:  defaultDataDir(),
	}

	// Override port from environment
	if p := os.Getenv(EnvPort); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		if port < 1 || port > 65535 {
			return nil, fmt.Errorf("invalid %s: port must be between 1 and 65535", EnvPort)
		}
		cfg.port = port
	}

	// Override log level from environment
	if ll := os.Getenv(EnvLogLevel); ll != "" {
		cfg.logLevel = ll
	}

	// Override data directory from environment
	if dd := os.Getenv(EnvDataDir); dd != "" {
		cfg.dataDir = dd
	}

	cfg.openAIAPIKey = os.Getenv(EnvOpenAIAPIKey)
	cfg.openAIBaseURL = os.Getenv(EnvOpenAIBaseURL)
	cfg.analysisModel = os.Getenv(EnvAnalysisModel)
	cfg.transcribeModel = os.Getenv(EnvTranscribeModel)
	cfg.ffmpegPath = os.Getenv(EnvFFmpegPath)
	cfg.ffprobePath = os.Getenv(EnvFFprobePath)

	if h := os.Getenv(EnvHeadless); h == "1" || h == "true" {
		cfg.headless = true
	}

	return cfg, nil
}

// Port returns the HTTP server port
func (c *EnvConfig) Port() int {
	return c.port
}

// LogLevel returns the log level (debug, info, warn, error)
func (c *EnvConfig) LogLevel() string {
	return c.logLevel
}

// DataDir returns the data directory path
func (c *EnvConfig) DataDir() string {
	return c.dataDir
}

// DBPath returns the full path to the SQLite database file
func (c *EnvConfig) DBPath() string {
	return filepath.Join(c.dataDir, DBFilename)
}

// WorkDir returns the scratch directory for extracted audio and render parts
func (c *EnvConfig) WorkDir() string {
	return filepath.Join(c.dataDir, "work")
}

// OpenAIAPIKey returns the API key for the analysis collaborator.
// Empty means analysis runs against the offline stub.
func (c *EnvConfig) OpenAIAPIKey() string {
	return c.openAIAPIKey
}

// OpenAIBaseURL returns an override base URL for OpenAI-compatible providers
func (c *EnvConfig) OpenAIBaseURL() string {
	return c.openAIBaseURL
}

func (c *EnvConfig) AnalysisModel() string {
	if c.analysisModel != "" {
		return c.analysisModel
	}
	return DefaultAnalysisModel
}

func (c *EnvConfig) TranscribeModel() string {
	if c.transcribeModel != "" {
		return c.transcribeModel
	}
	return DefaultTranscribeModel
}

func (c *EnvConfig) AnalysisTimeout() time.Duration {
	return time.Duration(DefaultAnalysisTimeout) * time.Second
}

func (c *EnvConfig) TranscribeTimeout() time.Duration {
	return time.Duration(DefaultTranscribeTimeout) * time.Second
}

func (c *EnvConfig) RenderTimeout() time.Duration {
	return time.Duration(DefaultRenderTimeout) * time.Second
}

// FFmpegPath returns the ffmpeg binary to invoke (default: from PATH)
func (c *EnvConfig) FFmpegPath() string {
	if c.ffmpegPath != "" {
		return c.ffmpegPath
	}
	return "ffmpeg"
}

// FFprobePath returns the ffprobe binary to invoke (default: from PATH)
func (c *EnvConfig) FFprobePath() string {
	if c.ffprobePath != "" {
		return c.ffprobePath
	}
	return "ffprobe"
}

// Headless disables the system tray (useful on servers and in CI)
func (c *EnvConfig) Headless() bool {
	return c.headless
}

// defaultDataDir returns the default data directory path
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home is not available
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

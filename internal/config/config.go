// Package config loads application configuration from environment
// variables (prefix BILANZIEREN) layered over an optional YAML file.
// Environment values take precedence over the file, the file over
// built-in defaults.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix is the prefix of every configuration environment variable.
const EnvPrefix = "BILANZIEREN"

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Limits    LimitsConfig    `yaml:"limits" envconfig:"LIMITS"`
	WebSocket WebSocketConfig `yaml:"websocket" envconfig:"WEBSOCKET"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"15s"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"http://localhost:8080"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS" default:"true"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"50"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"25"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/bilanzieren.log"`
}

// LimitsConfig bounds the resources one deployment will hold. Tables
// live wholly in memory, so the upload and workspace caps are the
// actual memory guardrails.
type LimitsConfig struct {
	MaxUploadBytes int64 `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES" default:"10485760"`
	MaxWorkspaces  int   `yaml:"max_workspaces" envconfig:"MAX_WORKSPACES" default:"64"`
	PreviewRowCap  int   `yaml:"preview_row_cap" envconfig:"PREVIEW_ROW_CAP" default:"500"`
	KeywordCap     int   `yaml:"keyword_cap" envconfig:"KEYWORD_CAP" default:"200"`
}

// WebSocketConfig contains WebSocket configuration
type WebSocketConfig struct {
	ReadBufferSize  int           `yaml:"read_buffer_size" envconfig:"READ_BUFFER_SIZE" default:"1024"`
	WriteBufferSize int           `yaml:"write_buffer_size" envconfig:"WRITE_BUFFER_SIZE" default:"1024"`
	WriteWait       time.Duration `yaml:"write_wait" envconfig:"WRITE_WAIT" default:"10s"`
	PongWait        time.Duration `yaml:"pong_wait" envconfig:"PONG_WAIT" default:"60s"`
}

// Load loads configuration from environment variables and, when
// present, a config.yaml next to the working directory.
func Load() (*Config, error) {
	return LoadFrom("config.yaml")
}

// LoadFrom loads configuration with an explicit config file path. A
// missing file is not an error; the defaults and environment cover it.
func LoadFrom(configFile string) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			fileCfg, err := loadFromFile(configFile)
			if err != nil {
				return nil, fmt.Errorf("failed to load config from file: %w", err)
			}
			cfg = merge(*fileCfg, cfg)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// loadFromFile loads configuration from a YAML file and fills the
// gaps with the envconfig defaults so a sparse file stays valid.
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := envconfig.Process("_BILANZIEREN_FILE_DEFAULTS", &cfg); err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// merge overlays env config on top of file config: any env field left
// at its envconfig default yields to the file's value only when the
// corresponding environment variable was not set explicitly.
func merge(fileCfg, envCfg Config) Config {
	out := fileCfg
	overlay := func(envVar string, apply func()) {
		if _, set := os.LookupEnv(EnvPrefix + "_" + envVar); set {
			apply()
		}
	}

	overlay("SERVER_PORT", func() { out.Server.Port = envCfg.Server.Port })
	overlay("SERVER_READ_TIMEOUT", func() { out.Server.ReadTimeout = envCfg.Server.ReadTimeout })
	overlay("SERVER_WRITE_TIMEOUT", func() { out.Server.WriteTimeout = envCfg.Server.WriteTimeout })
	overlay("SERVER_IDLE_TIMEOUT", func() { out.Server.IdleTimeout = envCfg.Server.IdleTimeout })
	overlay("SERVER_REQUEST_TIMEOUT", func() { out.Server.RequestTimeout = envCfg.Server.RequestTimeout })
	overlay("SERVER_SHUTDOWN_TIMEOUT", func() { out.Server.ShutdownTimeout = envCfg.Server.ShutdownTimeout })
	overlay("SECURITY_ALLOWED_ORIGINS", func() { out.Security.AllowedOrigins = envCfg.Security.AllowedOrigins })
	overlay("SECURITY_ENABLE_CORS", func() { out.Security.EnableCORS = envCfg.Security.EnableCORS })
	overlay("SECURITY_RATE_LIMIT_ENABLED", func() { out.Security.RateLimit.Enabled = envCfg.Security.RateLimit.Enabled })
	overlay("SECURITY_RATE_LIMIT_RPS", func() { out.Security.RateLimit.RPS = envCfg.Security.RateLimit.RPS })
	overlay("SECURITY_RATE_LIMIT_BURST", func() { out.Security.RateLimit.Burst = envCfg.Security.RateLimit.Burst })
	overlay("LOGGING_LEVEL", func() { out.Logging.Level = envCfg.Logging.Level })
	overlay("LOGGING_OUTPUT", func() { out.Logging.Output = envCfg.Logging.Output })
	overlay("LOGGING_FILE_PATH", func() { out.Logging.FilePath = envCfg.Logging.FilePath })
	overlay("LIMITS_MAX_UPLOAD_BYTES", func() { out.Limits.MaxUploadBytes = envCfg.Limits.MaxUploadBytes })
	overlay("LIMITS_MAX_WORKSPACES", func() { out.Limits.MaxWorkspaces = envCfg.Limits.MaxWorkspaces })
	overlay("LIMITS_PREVIEW_ROW_CAP", func() { out.Limits.PreviewRowCap = envCfg.Limits.PreviewRowCap })
	overlay("LIMITS_KEYWORD_CAP", func() { out.Limits.KeywordCap = envCfg.Limits.KeywordCap })
	overlay("WEBSOCKET_READ_BUFFER_SIZE", func() { out.WebSocket.ReadBufferSize = envCfg.WebSocket.ReadBufferSize })
	overlay("WEBSOCKET_WRITE_BUFFER_SIZE", func() { out.WebSocket.WriteBufferSize = envCfg.WebSocket.WriteBufferSize })
	overlay("WEBSOCKET_WRITE_WAIT", func() { out.WebSocket.WriteWait = envCfg.WebSocket.WriteWait })
	overlay("WEBSOCKET_PONG_WAIT", func() { out.WebSocket.PongWait = envCfg.WebSocket.PongWait })

	return out
}

// validate checks configuration values
func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid logging level: %s", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Output) {
	case "console", "file", "both":
	default:
		return fmt.Errorf("invalid logging output: %s", c.Logging.Output)
	}
	if c.Limits.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload bytes must be positive")
	}
	if c.Limits.MaxWorkspaces <= 0 {
		return fmt.Errorf("max workspaces must be positive")
	}
	if c.Limits.PreviewRowCap <= 0 {
		return fmt.Errorf("preview row cap must be positive")
	}
	if c.Limits.KeywordCap <= 0 {
		return fmt.Errorf("keyword cap must be positive")
	}
	if c.Security.RateLimit.Enabled {
		if c.Security.RateLimit.RPS <= 0 || c.Security.RateLimit.Burst <= 0 {
			return fmt.Errorf("rate limit rps and burst must be positive when enabled")
		}
	}
	return nil
}

// ListenAddr returns the address the HTTP server binds to.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the dynamics harvester
type Config struct {
	// Bilibili API settings
	API APIConfig `yaml:"api" json:"api"`

	// Feed pagination settings
	Fetch FetchConfig `yaml:"fetch" json:"fetch"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Batch roster settings
	Batch BatchConfig `yaml:"batch" json:"batch"`

	// Preview server settings
	Preview PreviewConfig `yaml:"preview" json:"preview"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// APIConfig holds Bilibili API client configuration
type APIConfig struct {
	UserAgent       string        `yaml:"user_agent" json:"user_agent"`
	Timeout         time.Duration `yaml:"timeout" json:"timeout"`
	DownloadRetries int           `yaml:"download_retries" json:"download_retries"`
	RetryDelay      time.Duration `yaml:"retry_delay" json:"retry_delay"`
}

// FetchConfig holds feed pagination configuration
type FetchConfig struct {
	// PageDelay is the pause between consecutive feed page requests. It is a
	// politeness throttle, not a retry mechanism.
	PageDelay time.Duration `yaml:"page_delay" json:"page_delay"`
}

// OutputConfig holds archive directory configuration
type OutputConfig struct {
	BaseDirectory string `yaml:"base_directory" json:"base_directory"`
}

// BatchConfig holds roster-driven batch run configuration
type BatchConfig struct {
	RosterFile string        `yaml:"roster_file" json:"roster_file"`
	UserDelay  time.Duration `yaml:"user_delay" json:"user_delay"`
	FailFast   bool          `yaml:"fail_fast" json:"fail_fast"`
}

// PreviewConfig holds preview web server configuration
type PreviewConfig struct {
	ListenAddr   string        `yaml:"listen_addr" json:"listen_addr"`
	OpenBrowser  bool          `yaml:"open_browser" json:"open_browser"`
	BrowserDelay time.Duration `yaml:"browser_delay" json:"browser_delay"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			UserAgent:       "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
			Timeout:         30 * time.Second,
			DownloadRetries: 3,
			RetryDelay:      2 * time.Second,
		},
		Fetch: FetchConfig{
			PageDelay: time.Second,
		},
		Output: OutputConfig{
			BaseDirectory: "./opus",
		},
		Batch: BatchConfig{
			RosterFile: "./user_list.txt",
			UserDelay:  time.Second,
			FailFast:   false,
		},
		Preview: PreviewConfig{
			ListenAddr:   "127.0.0.1:5000",
			OpenBrowser:  true,
			BrowserDelay: time.Second,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if userAgent := os.Getenv("BILIDYN_USER_AGENT"); userAgent != "" {
		c.API.UserAgent = userAgent
	}
	if timeout := os.Getenv("BILIDYN_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			c.API.Timeout = d
		}
	}
	if retries := os.Getenv("BILIDYN_DOWNLOAD_RETRIES"); retries != "" {
		var val int
		fmt.Sscanf(retries, "%d", &val)
		if val >= 0 {
			c.API.DownloadRetries = val
		}
	}
	if delay := os.Getenv("BILIDYN_PAGE_DELAY"); delay != "" {
		if d, err := time.ParseDuration(delay); err == nil && d >= 0 {
			c.Fetch.PageDelay = d
		}
	}
	if outputDir := os.Getenv("BILIDYN_OUTPUT_DIR"); outputDir != "" {
		c.Output.BaseDirectory = outputDir
	}
	if roster := os.Getenv("BILIDYN_ROSTER_FILE"); roster != "" {
		c.Batch.RosterFile = roster
	}
	if delay := os.Getenv("BILIDYN_USER_DELAY"); delay != "" {
		if d, err := time.ParseDuration(delay); err == nil && d >= 0 {
			c.Batch.UserDelay = d
		}
	}
	if addr := os.Getenv("BILIDYN_LISTEN_ADDR"); addr != "" {
		c.Preview.ListenAddr = addr
	}
	if logLevel := os.Getenv("BILIDYN_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFile := os.Getenv("BILIDYN_LOG_FILE"); logFile != "" {
		c.Logging.File = logFile
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	// Check in order of precedence
	locations := []string{
		".bilidyn.yaml",
		".bilidyn.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "bilidyn", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "bilidyn", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".bilidyn.yaml"),
		filepath.Join(os.Getenv("HOME"), ".bilidyn.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.API.UserAgent == "" {
		errs = append(errs, errors.New("user agent is required"))
	}
	if c.API.Timeout <= 0 {
		errs = append(errs, errors.New("API timeout must be positive"))
	}
	if c.API.DownloadRetries < 0 {
		errs = append(errs, errors.New("download retries cannot be negative"))
	}

	if c.Fetch.PageDelay < 0 {
		errs = append(errs, errors.New("page delay cannot be negative"))
	}

	if c.Output.BaseDirectory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}

	if c.Batch.RosterFile == "" {
		errs = append(errs, errors.New("roster file is required"))
	}
	if c.Batch.UserDelay < 0 {
		errs = append(errs, errors.New("user delay cannot be negative"))
	}

	if c.Preview.ListenAddr == "" {
		errs = append(errs, errors.New("preview listen address is required"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if outputDir, ok := flags["output"].(string); ok && outputDir != "" {
		c.Output.BaseDirectory = outputDir
	}
	if pageDelay, ok := flags["page-delay"].(time.Duration); ok && pageDelay >= 0 {
		c.Fetch.PageDelay = pageDelay
	}
	if timeout, ok := flags["timeout"].(time.Duration); ok && timeout > 0 {
		c.API.Timeout = timeout
	}
	if retries, ok := flags["download-retries"].(int); ok && retries >= 0 {
		c.API.DownloadRetries = retries
	}
	if roster, ok := flags["roster"].(string); ok && roster != "" {
		c.Batch.RosterFile = roster
	}
	if userDelay, ok := flags["user-delay"].(time.Duration); ok && userDelay >= 0 {
		c.Batch.UserDelay = userDelay
	}
	if failFast, ok := flags["fail-fast"].(bool); ok {
		c.Batch.FailFast = failFast
	}
	if addr, ok := flags["addr"].(string); ok && addr != "" {
		c.Preview.ListenAddr = addr
	}
	if open, ok := flags["open"].(bool); ok {
		c.Preview.OpenBrowser = open
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFile, ok := flags["log-file"].(string); ok && logFile != "" {
		c.Logging.File = logFile
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".bilidyn.env"))

	// Start with defaults
	config := DefaultConfig()

	// Load from config file
	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Override with environment variables (includes values from .env)
	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Override with command line flags
	config.MergeCommandLineFlags(flags)

	// Validate final configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

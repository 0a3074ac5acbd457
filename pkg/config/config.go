package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultUserAgent is sent with every feed request
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 6.1; Win64; x64; rv:56.0) Gecko/20100101 Firefox/56.0"

// DefaultLogFile is the run log written next to the working directory
const DefaultLogFile = "logs/reddit_update.log"

// Config holds all configuration options for the subreddit downloader
type Config struct {
	// Feed source settings
	Reddit RedditConfig `yaml:"reddit" json:"reddit"`

	// Which posts reach the resolver
	Filter FilterConfig `yaml:"filter" json:"filter"`

	// Download settings
	Download DownloadConfig `yaml:"download" json:"download"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Notification preferences
	Notifications NotificationConfig `yaml:"notifications" json:"notifications"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// RedditConfig holds feed-specific configuration
type RedditConfig struct {
	BaseURL           string `yaml:"base_url" json:"base_url"`
	UserAgent         string `yaml:"user_agent" json:"user_agent"`
	RequestsPerMinute int    `yaml:"requests_per_minute" json:"requests_per_minute"`
}

// FilterConfig holds the post filters and run limits
type FilterConfig struct {
	MinScore     int    `yaml:"min_score" json:"min_score"`
	SFWOnly      bool   `yaml:"sfw" json:"sfw"`
	NSFWOnly     bool   `yaml:"nsfw" json:"nsfw"`
	TitleRegex   string `yaml:"title_regex" json:"title_regex"`
	MaxDownloads int    `yaml:"max_downloads" json:"max_downloads"`
	Update       bool   `yaml:"update" json:"update"`
	LastID       string `yaml:"last_id" json:"last_id"`
}

// DownloadConfig holds download-specific configuration
type DownloadConfig struct {
	Timeout        time.Duration `yaml:"timeout" json:"timeout"`
	RetryAttempts  int           `yaml:"retry_attempts" json:"retry_attempts"`
	Delay          time.Duration `yaml:"delay" json:"delay"`
	ResolveWorkers int           `yaml:"resolve_workers" json:"resolve_workers"`
}

// OutputConfig holds output directory configuration
type OutputConfig struct {
	Directory string `yaml:"directory" json:"directory"`
}

// NotificationConfig holds notification preferences
type NotificationConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level   string `yaml:"level" json:"level"`
	File    string `yaml:"file" json:"file"`
	Console bool   `yaml:"console" json:"console"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Reddit: RedditConfig{
			BaseURL:           "http://www.reddit.com",
			UserAgent:         DefaultUserAgent,
			RequestsPerMinute: 30,
		},
		Download: DownloadConfig{
			Timeout:        30 * time.Second,
			RetryAttempts:  3,
			Delay:          2 * time.Second,
			ResolveWorkers: 1,
		},
		Output: OutputConfig{
			Directory: "./downloads",
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  DefaultLogFile,
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	var errs []error

	if baseURL := os.Getenv("REDDITGRAB_BASE_URL"); baseURL != "" {
		c.Reddit.BaseURL = baseURL
	}
	if userAgent := os.Getenv("REDDITGRAB_USER_AGENT"); userAgent != "" {
		c.Reddit.UserAgent = userAgent
	}
	if rpm := os.Getenv("REDDITGRAB_REQUESTS_PER_MINUTE"); rpm != "" {
		val, err := strconv.Atoi(rpm)
		if err != nil {
			errs = append(errs, fmt.Errorf("REDDITGRAB_REQUESTS_PER_MINUTE: %w", err))
		} else if val > 0 {
			c.Reddit.RequestsPerMinute = val
		}
	}

	if outputDir := os.Getenv("REDDITGRAB_OUTPUT_DIR"); outputDir != "" {
		c.Output.Directory = outputDir
	}

	if delay := os.Getenv("REDDITGRAB_DOWNLOAD_DELAY"); delay != "" {
		d, err := time.ParseDuration(delay)
		if err != nil {
			errs = append(errs, fmt.Errorf("REDDITGRAB_DOWNLOAD_DELAY: %w", err))
		} else {
			c.Download.Delay = d
		}
	}
	if attempts := os.Getenv("REDDITGRAB_RETRY_ATTEMPTS"); attempts != "" {
		val, err := strconv.Atoi(attempts)
		if err != nil {
			errs = append(errs, fmt.Errorf("REDDITGRAB_RETRY_ATTEMPTS: %w", err))
		} else {
			c.Download.RetryAttempts = val
		}
	}

	if notifEnabled := os.Getenv("REDDITGRAB_NOTIFICATIONS_ENABLED"); notifEnabled != "" {
		c.Notifications.Enabled = strings.ToLower(notifEnabled) == "true"
	}

	if logLevel := os.Getenv("REDDITGRAB_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFile, ok := os.LookupEnv("REDDITGRAB_LOG_FILE"); ok {
		c.Logging.File = logFile
	}

	return errors.Join(errs...)
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
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
	home := os.Getenv("HOME")
	locations := []string{
		".redditgrab.yaml",
		".redditgrab.yml",
		filepath.Join(home, ".config", "redditgrab", "config.yaml"),
		filepath.Join(home, ".redditgrab.yaml"),
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

	if c.Reddit.BaseURL == "" {
		errs = append(errs, errors.New("reddit base URL is required"))
	}
	if c.Reddit.UserAgent == "" {
		errs = append(errs, errors.New("user agent is required"))
	}
	if c.Reddit.RequestsPerMinute <= 0 {
		errs = append(errs, errors.New("requests per minute must be positive"))
	}

	if c.Filter.MinScore < 0 {
		errs = append(errs, errors.New("minimum score cannot be negative"))
	}
	if c.Filter.MaxDownloads < 0 {
		errs = append(errs, errors.New("number of downloads cannot be negative"))
	}
	if c.Filter.SFWOnly && c.Filter.NSFWOnly {
		errs = append(errs, errors.New("sfw and nsfw filters are mutually exclusive"))
	}
	if c.Filter.TitleRegex != "" {
		if _, err := regexp.Compile(c.Filter.TitleRegex); err != nil {
			errs = append(errs, fmt.Errorf("invalid title regex: %w", err))
		}
	}

	if c.Download.Timeout <= 0 {
		errs = append(errs, errors.New("download timeout must be positive"))
	}
	if c.Download.RetryAttempts < 1 {
		errs = append(errs, errors.New("retry attempts must be at least 1"))
	}
	if c.Download.Delay < 0 {
		errs = append(errs, errors.New("download delay cannot be negative"))
	}
	if c.Download.ResolveWorkers < 1 || c.Download.ResolveWorkers > 10 {
		errs = append(errs, errors.New("resolve workers must be between 1 and 10"))
	}

	if c.Output.Directory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	return errors.Join(errs...)
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration.
// Only keys present in the map are applied.
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if outputDir, ok := flags["output"].(string); ok && outputDir != "" {
		c.Output.Directory = outputDir
	}
	if last, ok := flags["last"].(string); ok {
		c.Filter.LastID = last
	}
	if score, ok := flags["score"].(int); ok {
		c.Filter.MinScore = score
	}
	if num, ok := flags["num"].(int); ok {
		c.Filter.MaxDownloads = num
	}
	if update, ok := flags["update"].(bool); ok {
		c.Filter.Update = update
	}

	if sfw, ok := flags["sfw"].(bool); ok {
		c.Filter.SFWOnly = sfw
	}
	if nsfw, ok := flags["nsfw"].(bool); ok {
		c.Filter.NSFWOnly = nsfw
	}
	if regex, ok := flags["regex"].(string); ok {
		c.Filter.TitleRegex = regex
	}
	if delay, ok := flags["delay"].(time.Duration); ok {
		c.Download.Delay = delay
	}
	if workers, ok := flags["workers"].(int); ok {
		c.Download.ResolveWorkers = workers
	}
	if notify, ok := flags["notify"].(bool); ok {
		c.Notifications.Enabled = notify
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFile, ok := flags["log-file"].(string); ok {
		c.Logging.File = logFile
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// godotenv never overrides variables that are already set
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".redditgrab.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

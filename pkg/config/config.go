package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// AppName is used for config file names, env prefixes and the XDG directory
const AppName = "flareparser"

// EnvPrefix prefixes every environment variable the parser reads
const EnvPrefix = "FLARE_"

// Config holds all configuration options for the wallpaper parser
type Config struct {
	// Target site and request headers
	Site SiteConfig `yaml:"site" json:"site"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Download settings
	Download DownloadConfig `yaml:"download" json:"download"`

	// Retry settings for transient network failures
	Retry RetryConfig `yaml:"retry" json:"retry"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// SiteConfig describes the listing URL templates and static request headers
type SiteConfig struct {
	BaseURL string `yaml:"base_url" json:"base_url"`
	// SearchTemplate takes the escaped tag (%s) and the page number (%d)
	SearchTemplate string `yaml:"search_template" json:"search_template"`
	// MainPageTemplate takes the page number (%d)
	MainPageTemplate string            `yaml:"main_page_template" json:"main_page_template"`
	Headers          map[string]string `yaml:"headers" json:"headers"`
}

// OutputConfig holds output directory configuration
type OutputConfig struct {
	RootDirectory       string `yaml:"root_directory" json:"root_directory"`
	FilePrefix          string `yaml:"file_prefix" json:"file_prefix"`
	OverwriteExisting   bool   `yaml:"overwrite_existing" json:"overwrite_existing"`
	RenameAfterDownload bool   `yaml:"rename_after_download" json:"rename_after_download"`
}

// DownloadConfig holds download-specific configuration
type DownloadConfig struct {
	// Workers sizes the download pool; 0 means one worker per CPU
	Workers int `yaml:"workers" json:"workers"`
	// ParseWorkers sizes the HTML parse pool; 0 means one worker per CPU
	ParseWorkers int           `yaml:"parse_workers" json:"parse_workers"`
	Timeout      time.Duration `yaml:"timeout" json:"timeout"`
	// MaxPages caps pagination; 0 means until the listing runs out
	MaxPages int `yaml:"max_pages" json:"max_pages"`
}

// RetryConfig holds retry configuration for transient failures
type RetryConfig struct {
	Enabled        bool          `yaml:"enabled" json:"enabled"`
	MaxAttempts    int           `yaml:"max_attempts" json:"max_attempts"`
	InitialBackoff time.Duration `yaml:"initial_backoff" json:"initial_backoff"`
	MaxBackoff     time.Duration `yaml:"max_backoff" json:"max_backoff"`
	Multiplier     float64       `yaml:"multiplier" json:"multiplier"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultUserAgent is sent when no header set is configured
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36"

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			BaseURL:          "https://www.wallpaperflare.com",
			SearchTemplate:   "/search?wallpaper=%s&page=%d",
			MainPageTemplate: "/index.php?c=main&m=portal_loadmore&page=%d",
			Headers: map[string]string{
				"User-Agent":      DefaultUserAgent,
				"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
				"Accept-Language": "en-US,en;q=0.9",
			},
		},
		Output: OutputConfig{
			RootDirectory:       ".",
			FilePrefix:          "wallpaper_flare",
			OverwriteExisting:   false,
			RenameAfterDownload: true,
		},
		Download: DownloadConfig{
			Workers:      0,
			ParseWorkers: 0,
			Timeout:      30 * time.Second,
			MaxPages:     0,
		},
		Retry: RetryConfig{
			Enabled:        true,
			MaxAttempts:    3,
			InitialBackoff: 1 * time.Second,
			MaxBackoff:     30 * time.Second,
			Multiplier:     2.0,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	var errs []error

	if v := os.Getenv(EnvPrefix + "BASE_URL"); v != "" {
		c.Site.BaseURL = v
	}
	if v := os.Getenv(EnvPrefix + "USER_AGENT"); v != "" {
		if c.Site.Headers == nil {
			c.Site.Headers = make(map[string]string)
		}
		c.Site.Headers["User-Agent"] = v
	}
	if v := os.Getenv(EnvPrefix + "ROOT_DIR"); v != "" {
		c.Output.RootDirectory = v
	}
	if v := os.Getenv(EnvPrefix + "OVERWRITE"); v != "" {
		c.Output.OverwriteExisting = strings.EqualFold(v, "true")
	}
	if v := os.Getenv(EnvPrefix + "WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sWORKERS: %w", EnvPrefix, err))
		} else {
			c.Download.Workers = n
		}
	}
	if v := os.Getenv(EnvPrefix + "MAX_PAGES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sMAX_PAGES: %w", EnvPrefix, err))
		} else {
			c.Download.MaxPages = n
		}
	}
	if v := os.Getenv(EnvPrefix + "MAX_RETRIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sMAX_RETRIES: %w", EnvPrefix, err))
		} else {
			c.Retry.MaxAttempts = n
		}
	}
	if v := os.Getenv(EnvPrefix + "LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}

	return errors.Join(errs...)
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		path = FindConfigFile()
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

// SearchPaths lists the locations checked for a config file, in order of precedence
func SearchPaths() []string {
	paths := []string{
		"." + AppName + ".yaml",
		"." + AppName + ".yml",
		filepath.Join(xdg.ConfigHome, AppName, "config.yaml"),
		filepath.Join(xdg.ConfigHome, AppName, "config.yml"),
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, "."+AppName+".yaml"))
	}
	return paths
}

// FindConfigFile returns the first existing config file from SearchPaths
func FindConfigFile() string {
	for _, loc := range SearchPaths() {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}
	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	u, err := url.Parse(c.Site.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("site base URL must be an absolute http(s) URL, got %q", c.Site.BaseURL))
	}
	if formatVerbs(c.Site.SearchTemplate) != "sd" {
		errs = append(errs, fmt.Errorf("search template must contain %%s (tag) followed by %%d (page), got %q", c.Site.SearchTemplate))
	}
	if formatVerbs(c.Site.MainPageTemplate) != "d" {
		errs = append(errs, fmt.Errorf("main page template must contain exactly one %%d (page), got %q", c.Site.MainPageTemplate))
	}

	if c.Output.RootDirectory == "" {
		errs = append(errs, errors.New("output root directory is required"))
	}
	if c.Output.FilePrefix == "" || strings.ContainsAny(c.Output.FilePrefix, `/\.`) {
		errs = append(errs, fmt.Errorf("file prefix %q must be non-empty and contain no path separators or dots", c.Output.FilePrefix))
	}

	if c.Download.Workers < 0 {
		errs = append(errs, errors.New("download workers cannot be negative"))
	}
	if c.Download.ParseWorkers < 0 {
		errs = append(errs, errors.New("parse workers cannot be negative"))
	}
	if c.Download.Timeout <= 0 {
		errs = append(errs, errors.New("download timeout must be positive"))
	}
	if c.Download.MaxPages < 0 {
		errs = append(errs, errors.New("max pages cannot be negative"))
	}

	if c.Retry.Enabled {
		if c.Retry.MaxAttempts < 1 || c.Retry.MaxAttempts > 10 {
			errs = append(errs, errors.New("retry max attempts must be between 1 and 10"))
		}
		if c.Retry.Multiplier < 1 {
			errs = append(errs, errors.New("retry multiplier must be at least 1"))
		}
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "disabled": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Errorf("invalid log level %q", c.Logging.Level))
	}

	return errors.Join(errs...)
}

// formatVerbs returns the fmt verbs of tmpl in order, ignoring %% escapes
func formatVerbs(tmpl string) string {
	var verbs strings.Builder
	for i := 0; i < len(tmpl); i++ {
		if tmpl[i] != '%' {
			continue
		}
		if i+1 == len(tmpl) {
			verbs.WriteByte('%')
			break
		}
		i++
		if tmpl[i] != '%' {
			verbs.WriteByte(tmpl[i])
		}
	}
	return verbs.String()
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration.
// Only keys present in the map are applied.
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if v, ok := flags["base-url"].(string); ok && v != "" {
		c.Site.BaseURL = v
	}
	if v, ok := flags["user-agent"].(string); ok && v != "" {
		if c.Site.Headers == nil {
			c.Site.Headers = make(map[string]string)
		}
		c.Site.Headers["User-Agent"] = v
	}
	if v, ok := flags["root-dir"].(string); ok && v != "" {
		c.Output.RootDirectory = v
	}
	if v, ok := flags["overwrite"].(bool); ok {
		c.Output.OverwriteExisting = v
	}
	if v, ok := flags["rename"].(bool); ok {
		c.Output.RenameAfterDownload = v
	}
	if v, ok := flags["workers"].(int); ok {
		c.Download.Workers = v
	}
	if v, ok := flags["max-pages"].(int); ok {
		c.Download.MaxPages = v
	}
	if v, ok := flags["timeout"].(time.Duration); ok && v > 0 {
		c.Download.Timeout = v
	}
	if v, ok := flags["max-retries"].(int); ok {
		c.Retry.MaxAttempts = v
	}
	if v, ok := flags["log-level"].(string); ok && v != "" {
		c.Logging.Level = v
	}
	if v, ok := flags["log-file"].(string); ok && v != "" {
		c.Logging.File = v
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(xdg.ConfigHome, AppName, ".env"))

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

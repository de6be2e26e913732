package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Search    SearchConfig    `toml:"search"`
	Stocks    StocksConfig    `toml:"stocks"`
	Intents   IntentsConfig   `toml:"intents"`
	Documents DocumentsConfig `toml:"documents"`
	Photos    PhotosConfig    `toml:"photos"`
	Transit   TransitConfig   `toml:"transit"`
	Storage   StorageConfig   `toml:"storage"`
	Logging   LoggingConfig   `toml:"logging"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

// SearchConfig controls the web answer pipeline.
type SearchConfig struct {
	// Depth bounds both the number of candidate pages inspected per pass
	// and the number of search/inspect passes before giving up.
	Depth             int      `toml:"depth"`
	MaxResults        int      `toml:"max_results"`
	MinScoreThreshold int      `toml:"min_score_threshold"`
	ImportantPhrases  []string `toml:"important_phrases"`
	FallbackToChat    bool     `toml:"fallback_to_chat"`
	LoopUntilSuccess  bool     `toml:"loop_until_success"`
	Region            string   `toml:"region"`
}

// StocksConfig controls symbol resolution and price retrieval.
type StocksConfig struct {
	DefaultLanguage string `toml:"default_language"`
	// NameToSymbol is the exact-match shortlist scanned before the fuzzy
	// stage. Scanned longest-name-first so overlapping names resolve
	// deterministically.
	NameToSymbol map[string]string `toml:"name_to_symbol"`
	ProviderURL  string            `toml:"provider_url"`
	CacheTTL     string            `toml:"cache_ttl"`
}

// IntentsConfig holds per-intent trigger words and enable flags.
// Disabled intents degrade to the default web answer path.
type IntentsConfig struct {
	TransportEnabled  bool     `toml:"transport_enabled"`
	DocumentEnabled   bool     `toml:"document_enabled"`
	StockEnabled      bool     `toml:"stock_enabled"`
	PhotoEnabled      bool     `toml:"photo_enabled"`
	TransportTriggers []string `toml:"transport_triggers"`
	DocumentTriggers  []string `toml:"document_triggers"`
	StockTriggers     []string `toml:"stock_triggers"`
	PhotoTriggers     []string `toml:"photo_triggers"`
}

// DocumentsConfig contains local document search settings.
type DocumentsConfig struct {
	Dir          string `toml:"dir"`
	ContextLines int    `toml:"context_lines"`
}

// PhotosConfig contains photo lookup settings.
type PhotosConfig struct {
	Dir string `toml:"dir"`
}

// TransitConfig contains ResRobot API settings. The access token is only
// read from the environment, never from a file.
type TransitConfig struct {
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"-"`
}

// StorageConfig contains storage layer settings.
type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig contains BadgerDB-specific settings.
type BadgerConfig struct {
	Path string `toml:"path"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level      string   `toml:"level"`
	Outputs    []string `toml:"outputs"`
	FilePath   string   `toml:"file_path"`
	MaxSizeMB  int      `toml:"max_size_mb"`
	MaxBackups int      `toml:"max_backups"`
}

// LoadFromFile loads configuration with priority: defaults -> file -> env.
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files with priority:
// defaults -> file1 -> file2 -> ... -> env.
// Later files override earlier files.
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

		err = toml.Unmarshal(data, config)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies ANSWERD_* environment variable overrides to config.
func applyEnvOverrides(config *Config) {
	if port := os.Getenv("ANSWERD_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("ANSWERD_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if badgerPath := os.Getenv("ANSWERD_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}
	if level := os.Getenv("ANSWERD_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if region := os.Getenv("ANSWERD_SEARCH_REGION"); region != "" {
		config.Search.Region = region
	}
	if token := os.Getenv("TRAFIKLAB_API_TOKEN"); token != "" {
		config.Transit.APIKey = token
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config.
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// Validate checks mandatory fields and returns a list of issues.
func (c *Config) Validate() []string {
	var issues []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		issues = append(issues, fmt.Sprintf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Search.Depth <= 0 {
		issues = append(issues, "search.depth must be positive")
	}
	if c.Search.MinScoreThreshold <= 0 {
		issues = append(issues, "search.min_score_threshold must be positive")
	}
	if c.Stocks.DefaultLanguage == "" {
		issues = append(issues, "stocks.default_language must be set")
	}
	if c.Storage.Badger.Path == "" {
		issues = append(issues, "storage.badger.path must be set")
	}

	return issues
}

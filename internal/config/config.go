// Package config declares the TOML configuration: data sources, scan and
// listing limits, ignore patterns, and logging.
package config

import (
	"github.com/mark3labs/mcp-datasource-server/internal/contentscan"
)

// Config represents the application configuration.
type Config struct {
	Logging        LoggingConfig  `toml:"logging"`
	Scan           ScanConfig     `toml:"scan"`
	Listing        ListingConfig  `toml:"listing"`
	Search         SearchConfig   `toml:"search"`
	IgnorePatterns []string       `toml:"ignore_patterns"`
	Sources        []SourceConfig `toml:"sources"`
}

// LoggingConfig contains log output settings. Logs go to stderr so the
// stdio MCP transport keeps stdout to itself; File adds a rotating copy.
type LoggingConfig struct {
	Level      string `toml:"level"`
	Format     string `toml:"format"`
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
}

// ScanConfig tunes the content scanner.
type ScanConfig struct {
	WholeFileLimit int64 `toml:"whole_file_limit"`
	ChunkSize      int   `toml:"chunk_size"`
	Overlap        int   `toml:"overlap"`
}

// ListingConfig bounds resource listing pages.
type ListingConfig struct {
	DefaultPageSize int `toml:"default_page_size"`
	MaxPageSize     int `toml:"max_page_size"`
}

// SearchConfig tunes the search coordinator.
type SearchConfig struct {
	Workers int `toml:"workers"`
}

// SourceConfig declares one data source. Provider selects which of the
// remaining fields apply.
type SourceConfig struct {
	ID       string `toml:"id"`
	Provider string `toml:"provider"`

	// filesystem
	Root string `toml:"root"`

	// mcp: command line of a stdio server
	Command string   `toml:"command"`
	Args    []string `toml:"args"`
	Env     []string `toml:"env"`

	// notion/googledocs inline token
	Token string `toml:"token"`

	// googledocs token read from a file instead
	TokenFile string `toml:"token_file"`

	// notion/googledocs endpoint override, used by tests
	Endpoint string `toml:"endpoint"`
}

// Default returns a Config with sensible defaults and no sources.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		Scan: ScanConfig{
			WholeFileLimit: contentscan.DefaultWholeFileLimit,
			ChunkSize:      contentscan.DefaultChunkSize,
			Overlap:        contentscan.DefaultOverlap,
		},
		Listing: ListingConfig{
			DefaultPageSize: 100,
			MaxPageSize:     1000,
		},
		Search: SearchConfig{
			Workers: 8,
		},
		IgnorePatterns: []string{".*", "node_modules", "vendor"},
	}
}

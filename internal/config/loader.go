package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/mark3labs/mcp-datasource-server/internal/datasource"
)

// Load reads and parses the configuration file.
func Load(path string) (*Config, error) {
	expandedPath, err := expandPath(path)
	if err != nil {
		return nil, fmt.Errorf("failed to expand config path: %w", err)
	}

	data, err := os.ReadFile(expandedPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s (run 'config init' to create)", expandedPath)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, fmt.Errorf("failed to expand paths: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// expandPath expands a leading ~ to the home directory.
func expandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(home, path[1:]), nil
}

// expandPaths expands ~ in all path fields.
func (c *Config) expandPaths() error {
	var err error

	c.Logging.File, err = expandPath(c.Logging.File)
	if err != nil {
		return err
	}

	for i := range c.Sources {
		c.Sources[i].Root, err = expandPath(c.Sources[i].Root)
		if err != nil {
			return err
		}
		c.Sources[i].TokenFile, err = expandPath(c.Sources[i].TokenFile)
		if err != nil {
			return err
		}
	}

	return nil
}

var validProviders = map[string]bool{
	"filesystem": true,
	"mcp":        true,
	"notion":     true,
	"googledocs": true,
}

// Validate checks that the configuration is usable before any source is
// built: provider names, per-provider required fields, unique ids, compiling
// ignore patterns, and limit sanity.
func (c *Config) Validate() error {
	var errs []error

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level must be debug, info, warn or error, got '%s'", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be 'text' or 'json', got '%s'", c.Logging.Format))
	}

	if c.Scan.WholeFileLimit < 0 {
		errs = append(errs, errors.New("scan.whole_file_limit must not be negative"))
	}
	if c.Scan.Overlap > 0 && c.Scan.ChunkSize > 0 && c.Scan.Overlap >= c.Scan.ChunkSize {
		errs = append(errs, errors.New("scan.overlap must be smaller than scan.chunk_size"))
	}

	if c.Listing.DefaultPageSize < 1 {
		errs = append(errs, errors.New("listing.default_page_size must be at least 1"))
	}
	if c.Listing.MaxPageSize < c.Listing.DefaultPageSize {
		errs = append(errs, errors.New("listing.max_page_size must be at least listing.default_page_size"))
	}

	if c.Search.Workers < 1 {
		errs = append(errs, errors.New("search.workers must be at least 1"))
	}

	if _, err := datasource.CompileIgnores(c.IgnorePatterns); err != nil {
		errs = append(errs, fmt.Errorf("ignore_patterns: %w", err))
	}

	seen := make(map[string]bool)
	for i, src := range c.Sources {
		name := src.ID
		if name == "" {
			name = fmt.Sprintf("sources[%d]", i)
			errs = append(errs, fmt.Errorf("%s: id is required", name))
		}
		if seen[src.ID] && src.ID != "" {
			errs = append(errs, fmt.Errorf("duplicate source id '%s'", src.ID))
		}
		seen[src.ID] = true

		if !validProviders[src.Provider] {
			errs = append(errs, fmt.Errorf("%s: provider must be filesystem, mcp, notion or googledocs, got '%s'", name, src.Provider))
			continue
		}
		switch src.Provider {
		case "filesystem":
			if src.Root == "" {
				errs = append(errs, fmt.Errorf("%s: root is required for filesystem sources", name))
			}
		case "mcp":
			if src.Command == "" {
				errs = append(errs, fmt.Errorf("%s: command is required for mcp sources", name))
			}
		case "notion":
			if src.Token == "" {
				errs = append(errs, fmt.Errorf("%s: token is required for notion sources", name))
			}
		case "googledocs":
			if src.Token == "" && src.TokenFile == "" && src.Endpoint == "" {
				errs = append(errs, fmt.Errorf("%s: token or token_file is required for googledocs sources", name))
			}
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

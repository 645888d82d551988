// Package sources turns the configuration file into a live data source
// registry. It is the only place that knows which provider package backs
// which configured provider name.
package sources

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-datasource-server/internal/config"
	"github.com/mark3labs/mcp-datasource-server/internal/datasource"
	"github.com/mark3labs/mcp-datasource-server/internal/datasource/filesystem"
	"github.com/mark3labs/mcp-datasource-server/internal/datasource/googledocs"
	"github.com/mark3labs/mcp-datasource-server/internal/datasource/mcpconn"
	"github.com/mark3labs/mcp-datasource-server/internal/datasource/notion"
)

// Build constructs an accessor for every configured source and registers
// them in declaration order. The returned close function shuts down any MCP
// server processes Build spawned; it is safe to call when none were needed.
func Build(ctx context.Context, cfg *config.Config, log *slog.Logger) (*datasource.Registry, func() error, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	ignore, err := datasource.CompileIgnores(cfg.IgnorePatterns)
	if err != nil {
		return nil, nil, fmt.Errorf("compiling ignore patterns: %w", err)
	}

	var closers []func() error
	closeAll := func() error {
		var errs []error
		for _, c := range closers {
			if err := c(); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}

	reg := datasource.NewRegistry()
	for _, sc := range cfg.Sources {
		acc, closeFn, err := build(ctx, sc, cfg, ignore, log)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("data source %s: %w", sc.ID, err)
		}
		if closeFn != nil {
			closers = append(closers, closeFn)
		}
		if err := reg.Add(acc); err != nil {
			closeAll()
			return nil, nil, err
		}
		log.Info("registered data source", "id", acc.ID(), "provider", acc.Provider())
	}
	return reg, closeAll, nil
}

func build(ctx context.Context, sc config.SourceConfig, cfg *config.Config, ignore *datasource.IgnoreList, log *slog.Logger) (datasource.Accessor, func() error, error) {
	switch datasource.ProviderType(sc.Provider) {
	case datasource.ProviderFilesystem:
		acc, err := filesystem.New(filesystem.Config{
			ID:              sc.ID,
			Root:            sc.Root,
			Ignore:          ignore,
			DefaultPageSize: cfg.Listing.DefaultPageSize,
			MaxPageSize:     cfg.Listing.MaxPageSize,
		}, log)
		return acc, nil, err

	case datasource.ProviderMCP:
		return mcpconn.Dial(ctx, mcpconn.DialConfig{
			ID:      sc.ID,
			Command: sc.Command,
			Args:    sc.Args,
			Env:     sc.Env,
		}, log)

	case datasource.ProviderNotion:
		acc, err := notion.New(notion.Config{
			ID:      sc.ID,
			Token:   sc.Token,
			BaseURL: sc.Endpoint,
		}, log)
		return acc, nil, err

	case datasource.ProviderGoogleDocs:
		acc, err := googledocs.New(ctx, googledocs.Config{
			ID:          sc.ID,
			AccessToken: sc.Token,
			TokenFile:   sc.TokenFile,
			BaseURL:     sc.Endpoint,
		}, log)
		return acc, nil, err
	}
	return nil, nil, fmt.Errorf("unknown provider %q", sc.Provider)
}

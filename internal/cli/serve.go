package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/mark3labs/mcp-datasource-server/datasourceserver"
	"github.com/mark3labs/mcp-datasource-server/datasourceserver/handler"
	"github.com/mark3labs/mcp-datasource-server/internal/config"
	"github.com/mark3labs/mcp-datasource-server/internal/contentscan"
	"github.com/mark3labs/mcp-datasource-server/internal/datasource"
	"github.com/mark3labs/mcp-datasource-server/internal/logging"
	"github.com/mark3labs/mcp-datasource-server/internal/sources"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server (stdio transport)",
	Long: `Start the MCP (Model Context Protocol) server using stdio transport.

This lets AI assistants search and read the data sources named in the
configuration file.

Add to Claude Desktop config (~/Library/Application Support/Claude/claude_desktop_config.json):

{
  "mcpServers": {
    "datasources": {
      "command": "/path/to/datasource-server",
      "args": ["serve"]
    }
  }
}`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logging.Init(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to init logging: %w", err)
	}

	// Handle interrupt
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		cancel()
	}()

	// Build the configured data sources
	reg, closeSources, err := sources.Build(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeSources()

	ignore, err := datasource.CompileIgnores(cfg.IgnorePatterns)
	if err != nil {
		return err
	}

	// Create MCP server
	datasourceserver.Version = version
	srv, err := datasourceserver.NewDatasourceServer(reg, handler.Options{
		Scanner: contentscan.New(contentscan.Config{
			WholeFileLimit: cfg.Scan.WholeFileLimit,
			ChunkSize:      cfg.Scan.ChunkSize,
			Overlap:        cfg.Scan.Overlap,
		}, log),
		Ignore:  ignore,
		Workers: cfg.Search.Workers,
		Logger:  log,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	log.Info("serving on stdio", "version", version, "sources", len(reg.All()))

	// Run server
	return server.ServeStdio(srv)
}

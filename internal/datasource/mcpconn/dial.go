package mcpconn

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
)

// DialConfig describes how to launch and identify a stdio MCP server.
type DialConfig struct {
	ID      string
	Command string
	Args    []string
	Env     []string

	ClientName         string
	ClientVersion      string
	MetadataVisitLimit int
}

// Dial launches the server process, runs the MCP handshake, and returns an
// accessor bound to the connection plus a close function that tears it down.
func Dial(ctx context.Context, cfg DialConfig, log *slog.Logger) (*Accessor, func() error, error) {
	if cfg.Command == "" {
		return nil, nil, fmt.Errorf("mcp source %s has no command", cfg.ID)
	}
	if cfg.ClientName == "" {
		cfg.ClientName = "datasource-server"
	}
	if cfg.ClientVersion == "" {
		cfg.ClientVersion = "dev"
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	cli, err := client.NewStdioMCPClient(cfg.Command, cfg.Env, cfg.Args...)
	if err != nil {
		return nil, nil, fmt.Errorf("starting mcp server for %s: %w", cfg.ID, err)
	}

	initRequest := mcp.InitializeRequest{}
	initRequest.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initRequest.Params.ClientInfo = mcp.Implementation{
		Name:    cfg.ClientName,
		Version: cfg.ClientVersion,
	}
	result, err := cli.Initialize(ctx, initRequest)
	if err != nil {
		cli.Close()
		return nil, nil, fmt.Errorf("initializing mcp server for %s: %w", cfg.ID, err)
	}

	acc, err := New(Config{
		ID:                 cfg.ID,
		ServerName:         result.ServerInfo.Name,
		MetadataVisitLimit: cfg.MetadataVisitLimit,
	}, cli, log)
	if err != nil {
		cli.Close()
		return nil, nil, err
	}

	log.Info("connected to mcp server",
		"source", cfg.ID,
		"server", result.ServerInfo.Name,
		"version", result.ServerInfo.Version)
	return acc, cli.Close, nil
}

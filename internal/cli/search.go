package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mark3labs/mcp-datasource-server/internal/config"
	"github.com/mark3labs/mcp-datasource-server/internal/contentscan"
	"github.com/mark3labs/mcp-datasource-server/internal/datasource"
	"github.com/mark3labs/mcp-datasource-server/internal/datasource/filesystem"
	"github.com/mark3labs/mcp-datasource-server/internal/search"
	"github.com/mark3labs/mcp-datasource-server/internal/sources"
)

var (
	searchSource        string
	searchPath          string
	searchPattern       string
	searchCaseSensitive bool
	searchAfter         string
	searchBefore        string
	searchMinSize       int64
	searchMaxSize       int64
)

var searchCmd = &cobra.Command{
	Use:   "search [content-pattern]",
	Short: "Search a data source for matching resources",
	Long: `Search one configured data source by content and metadata.

The positional argument is a regular expression matched against resource
content. All criteria are optional; a search with none lists every
resource in scope.

Examples:
  datasource-server search "TODO"
  datasource-server search --pattern "**/*.md" --max-size 10000
  datasource-server search hello --source workspace --path docs --case-sensitive`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchSource, "source", "",
		"data source id (default: first filesystem source)")
	searchCmd.Flags().StringVar(&searchPath, "path", "",
		"path inside the source to scope the search to")
	searchCmd.Flags().StringVar(&searchPattern, "pattern", "",
		"glob matched against relative resource paths")
	searchCmd.Flags().BoolVar(&searchCaseSensitive, "case-sensitive", false,
		"match content case-sensitively")
	searchCmd.Flags().StringVar(&searchAfter, "modified-after", "",
		"only resources modified on or after this date (YYYY-MM-DD or RFC 3339)")
	searchCmd.Flags().StringVar(&searchBefore, "modified-before", "",
		"only resources modified on or before this date (YYYY-MM-DD or RFC 3339)")
	searchCmd.Flags().Int64Var(&searchMinSize, "min-size", 0, "minimum size in bytes")
	searchCmd.Flags().Int64Var(&searchMaxSize, "max-size", 0, "maximum size in bytes")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	// One-shot commands keep stderr quiet; only serve runs with the
	// configured logger.
	reg, closeSources, err := sources.Build(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer closeSources()

	var acc datasource.Accessor
	if searchSource != "" {
		acc, err = reg.Get(searchSource)
	} else {
		acc, err = reg.Default()
	}
	if err != nil {
		return err
	}
	if err := datasource.RequireCapability(acc, datasource.CapabilitySearch); err != nil {
		return err
	}
	fsAcc, ok := acc.(*filesystem.Accessor)
	if !ok {
		return fmt.Errorf("data source %q cannot run content searches", acc.ID())
	}

	root, err := fsAcc.ResolvePath(searchPath)
	if err != nil {
		return err
	}

	in := search.Input{
		ResourcePattern: searchPattern,
		CaseSensitive:   searchCaseSensitive,
		DateAfter:       searchAfter,
		DateBefore:      searchBefore,
	}
	if len(args) == 1 {
		in.ContentPattern = args[0]
	}
	if cmd.Flags().Changed("min-size") {
		in.SizeMin = &searchMinSize
	}
	if cmd.Flags().Changed("max-size") {
		in.SizeMax = &searchMaxSize
	}

	criteria, err := search.ParseCriteria(in)
	if err != nil {
		return err
	}

	ignore, err := datasource.CompileIgnores(cfg.IgnorePatterns)
	if err != nil {
		return err
	}

	scanner := contentscan.New(contentscan.Config{
		WholeFileLimit: cfg.Scan.WholeFileLimit,
		ChunkSize:      cfg.Scan.ChunkSize,
		Overlap:        cfg.Scan.Overlap,
	}, nil)
	co := search.NewCoordinator(scanner, ignore, cfg.Search.Workers, nil)

	res, err := co.Search(ctx, root, criteria)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	// Output
	return output(outputFmt, res)
}

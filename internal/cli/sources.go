package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mark3labs/mcp-datasource-server/internal/config"
	"github.com/mark3labs/mcp-datasource-server/internal/datasource"
	"github.com/mark3labs/mcp-datasource-server/internal/sources"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources [id]",
	Short: "List configured data sources or summarize one",
	Long: `Without arguments, list every configured data source with its provider
and capabilities. With a source id, aggregate that source's metadata
summary: resource counts, date ranges and type histograms.

Examples:
  datasource-server sources
  datasource-server sources workspace
  datasource-server sources wiki -o json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSources,
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

func runSources(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	reg, closeSources, err := sources.Build(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer closeSources()

	if len(args) == 1 {
		acc, err := reg.Get(args[0])
		if err != nil {
			return err
		}
		sum, err := acc.Metadata(ctx)
		if err != nil {
			return fmt.Errorf("failed to aggregate metadata: %w", err)
		}
		return output(outputFmt, sum)
	}

	all := reg.All()
	rows := make([]sourceRow, 0, len(all))
	for _, acc := range all {
		row := sourceRow{ID: acc.ID(), Provider: string(acc.Provider())}
		for _, c := range []datasource.Capability{
			datasource.CapabilityRead,
			datasource.CapabilityWrite,
			datasource.CapabilityList,
			datasource.CapabilitySearch,
		} {
			if acc.HasCapability(c) {
				row.Capabilities = append(row.Capabilities, string(c))
			}
		}
		if t, ok := acc.(datasource.Templated); ok {
			row.URITemplate = t.URITemplate()
		}
		rows = append(rows, row)
	}

	// Output
	return output(outputFmt, rows)
}

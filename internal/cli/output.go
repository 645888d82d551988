package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/mark3labs/mcp-datasource-server/internal/datasource"
	"github.com/mark3labs/mcp-datasource-server/internal/search"
)

// sourceRow is one line of the sources listing.
type sourceRow struct {
	ID           string   `json:"id"`
	Provider     string   `json:"provider"`
	Capabilities []string `json:"capabilities"`
	URITemplate  string   `json:"uriTemplate,omitempty"`
}

// output writes data in the format selected by --output.
func output(format string, data interface{}) error {
	switch format {
	case "json":
		return jsonTo(os.Stdout, data)
	case "table", "":
		return tableTo(os.Stdout, data)
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

// jsonTo writes data as indented JSON to the given writer
func jsonTo(w io.Writer, data interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// tableTo writes data as a formatted table to the given writer
func tableTo(w io.Writer, data interface{}) error {
	switch v := data.(type) {
	case *search.Result:
		return searchTable(w, v)
	case []sourceRow:
		return sourcesTable(w, v)
	case *datasource.Summary:
		return summaryTable(w, v)
	default:
		return fmt.Errorf("unsupported data type for table output: %T", data)
	}
}

func searchTable(w io.Writer, res *search.Result) error {
	if res.CriteriaDescription != "" {
		fmt.Fprintf(w, "Criteria: %s\n\n", res.CriteriaDescription)
	}

	if len(res.Matches) == 0 {
		fmt.Fprintln(w, "No resources found.")
	} else {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "PATH\tSIZE\tMODIFIED")
		fmt.Fprintln(tw, "----\t----\t--------")
		for _, m := range res.Matches {
			size := ""
			if m.SizeBytes != nil {
				size = humanize.Bytes(uint64(*m.SizeBytes))
			}
			modified := ""
			if m.LastModified != nil {
				modified = m.LastModified.Format("2006-01-02 15:04")
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\n", m.RelativePath, size, modified)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if len(res.ErrorsEncountered) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Errors encountered:")
		for _, e := range res.ErrorsEncountered {
			fmt.Fprintf(w, "  %s\n", e)
		}
	}

	return nil
}

func sourcesTable(w io.Writer, rows []sourceRow) error {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No data sources configured.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPROVIDER\tCAPABILITIES\tURI TEMPLATE")
	fmt.Fprintln(tw, "--\t--------\t------------\t------------")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			r.ID, r.Provider, strings.Join(r.Capabilities, ", "), r.URITemplate)
	}
	return tw.Flush()
}

func summaryTable(w io.Writer, sum *datasource.Summary) error {
	fmt.Fprintf(w, "Source:            %s (%s)\n", sum.SourceID, sum.Provider)
	fmt.Fprintf(w, "Total resources:   %d\n", sum.TotalResources)
	for _, kind := range sortedKeys(sum.ResourceTypes) {
		fmt.Fprintf(w, "  %s: %d\n", kind, sum.ResourceTypes[datasource.Kind(kind)])
	}

	switch {
	case sum.Filesystem != nil:
		s := sum.Filesystem
		fmt.Fprintf(w, "Files:             %d\n", s.TotalFiles)
		fmt.Fprintf(w, "Directories:       %d\n", s.TotalDirectories)
		fmt.Fprintf(w, "Deepest path:      %d levels\n", s.DeepestPathDepth)
		fmt.Fprintf(w, "Largest file:      %s\n", humanize.Bytes(uint64(s.LargestFileSize)))
		printDate(w, "Oldest file:       ", s.OldestFileDate)
		printDate(w, "Newest file:       ", s.NewestFileDate)
		printLimits(w, s.Capabilities, s.PracticalLimits, false)
	case sum.MCP != nil:
		s := sum.MCP
		fmt.Fprintf(w, "Server:            %s\n", s.ServerName)
		fmt.Fprintf(w, "Templates:         %d\n", s.ResourceTemplates)
		printLimits(w, s.Capabilities, s.PracticalLimits, s.Truncated)
	case sum.Notion != nil:
		s := sum.Notion
		fmt.Fprintf(w, "Pages:             %d\n", s.TotalPages)
		fmt.Fprintf(w, "Databases:         %d\n", s.TotalDatabases)
		printDate(w, "Oldest edit:       ", s.OldestEditDate)
		printDate(w, "Newest edit:       ", s.NewestEditDate)
		printLimits(w, s.Capabilities, s.PracticalLimits, s.Truncated)
	case sum.GoogleDocs != nil:
		s := sum.GoogleDocs
		fmt.Fprintf(w, "Documents:         %d\n", s.TotalDocuments)
		if s.LargestFileSize > 0 {
			fmt.Fprintf(w, "Largest document:  %s\n", humanize.Bytes(uint64(s.LargestFileSize)))
		}
		printDate(w, "Oldest modified:   ", s.OldestModified)
		printDate(w, "Newest modified:   ", s.NewestModified)
		printLimits(w, s.Capabilities, s.PracticalLimits, s.Truncated)
	}

	return nil
}

func printDate(w io.Writer, label string, t *time.Time) {
	if t != nil {
		fmt.Fprintf(w, "%s%s\n", label, t.Format("2006-01-02"))
	}
}

func printLimits(w io.Writer, caps []datasource.Capability, limits datasource.PracticalLimits, truncated bool) {
	if truncated {
		fmt.Fprintln(w, "Counts are lower bounds: the listing was truncated at the visit limit.")
	}
	names := make([]string, len(caps))
	for i, c := range caps {
		names[i] = string(c)
	}
	fmt.Fprintf(w, "Capabilities:      %s\n", strings.Join(names, ", "))
	fmt.Fprintf(w, "Page size:         %d recommended, %d max\n",
		limits.RecommendedPageSize, limits.MaxPageSize)
}

func sortedKeys(m map[datasource.Kind]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	return keys
}

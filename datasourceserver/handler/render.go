package handler

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/mark3labs/mcp-datasource-server/internal/datasource"
	"github.com/mark3labs/mcp-datasource-server/internal/guidance"
	"github.com/mark3labs/mcp-datasource-server/internal/search"
)

// descriptorLine formats one resource the way directory listings do.
func descriptorLine(d datasource.Descriptor) string {
	tag := "[FILE]"
	switch d.Kind {
	case datasource.KindDirectory:
		tag = "[DIR] "
	case datasource.KindOther:
		tag = "[RES] "
	}
	name := d.RelativePath
	if name == "" {
		name = d.DisplayName
	}
	line := fmt.Sprintf("%s %s (%s)", tag, name, d.URI)
	if d.SizeBytes != nil {
		line += " - " + humanize.Bytes(uint64(*d.SizeBytes))
	}
	return line
}

func renderSearchResult(res *search.Result) string {
	var sb strings.Builder
	switch {
	case len(res.Matches) == 0 && res.CriteriaDescription == "":
		sb.WriteString("No resources found\n")
	case len(res.Matches) == 0:
		sb.WriteString(fmt.Sprintf("No resources found matching %s\n", res.CriteriaDescription))
	case res.CriteriaDescription == "":
		sb.WriteString(fmt.Sprintf("Found %d resources:\n\n", len(res.Matches)))
	default:
		sb.WriteString(fmt.Sprintf("Found %d resources matching %s:\n\n", len(res.Matches), res.CriteriaDescription))
	}
	for _, m := range res.Matches {
		sb.WriteString(descriptorLine(m))
		sb.WriteString("\n")
	}
	if len(res.ErrorsEncountered) > 0 {
		sb.WriteString("\nErrors encountered:\n")
		for _, e := range res.ErrorsEncountered {
			sb.WriteString(fmt.Sprintf("- %s\n", e))
		}
	}
	return sb.String()
}

func renderListing(sourceID, scope string, listing *datasource.Listing) string {
	where := sourceID
	if scope != "" {
		where = fmt.Sprintf("%s under %s", sourceID, scope)
	}
	if len(listing.Resources) == 0 {
		return fmt.Sprintf("No resources in %s\n", where)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Resources in %s:\n\n", where))
	for _, d := range listing.Resources {
		sb.WriteString(descriptorLine(d))
		sb.WriteString("\n")
	}
	sb.WriteString(fmt.Sprintf("\nURI template: %s\n", listing.URITemplate))
	if listing.NextPageToken != "" {
		sb.WriteString(fmt.Sprintf("More resources available: pass page_token %q to continue.\n", listing.NextPageToken))
	}
	return sb.String()
}

func renderSummary(sum *datasource.Summary) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Metadata for %s (%s):\n\n", sum.SourceID, sum.Provider))
	sb.WriteString(fmt.Sprintf("Total resources: %d\n", sum.TotalResources))
	if len(sum.ResourceTypes) > 0 {
		byKind := make(map[string]int, len(sum.ResourceTypes))
		for k, v := range sum.ResourceTypes {
			byKind[string(k)] = v
		}
		for _, kv := range sortedCounts(byKind) {
			sb.WriteString(fmt.Sprintf("  %s: %d\n", kv.key, kv.count))
		}
	}

	switch {
	case sum.Filesystem != nil:
		renderFilesystemStats(&sb, sum.Filesystem)
	case sum.MCP != nil:
		renderMCPStats(&sb, sum.MCP)
	case sum.Notion != nil:
		renderNotionStats(&sb, sum.Notion)
	case sum.GoogleDocs != nil:
		renderGoogleDocsStats(&sb, sum.GoogleDocs)
	}
	return sb.String()
}

func renderFilesystemStats(sb *strings.Builder, s *datasource.FilesystemStats) {
	sb.WriteString(fmt.Sprintf("Files: %d\n", s.TotalFiles))
	sb.WriteString(fmt.Sprintf("Directories: %d\n", s.TotalDirectories))
	sb.WriteString(fmt.Sprintf("Deepest path depth: %d\n", s.DeepestPathDepth))
	sb.WriteString(fmt.Sprintf("Largest file: %s\n", humanize.Bytes(uint64(s.LargestFileSize))))
	if s.OldestFileDate != nil && s.NewestFileDate != nil {
		sb.WriteString(fmt.Sprintf("Oldest file: %s\n", s.OldestFileDate.Format(time.RFC3339)))
		sb.WriteString(fmt.Sprintf("Newest file: %s\n", s.NewestFileDate.Format(time.RFC3339)))
	}
	renderLimits(sb, s.Capabilities, s.PracticalLimits, false)
	if len(s.FileExtensions) > 0 {
		sb.WriteString("Extensions:\n")
		for _, kv := range sortedCounts(s.FileExtensions) {
			key := kv.key
			if key == "" {
				key = "(none)"
			}
			sb.WriteString(fmt.Sprintf("  %s: %d\n", key, kv.count))
		}
	}
}

func renderMCPStats(sb *strings.Builder, s *datasource.MCPStats) {
	sb.WriteString(fmt.Sprintf("Server: %s\n", s.ServerName))
	sb.WriteString(fmt.Sprintf("Resource templates: %d\n", s.ResourceTemplates))
	renderLimits(sb, s.Capabilities, s.PracticalLimits, s.Truncated)
	renderMIMETypes(sb, s.MIMETypes)
}

func renderNotionStats(sb *strings.Builder, s *datasource.NotionStats) {
	sb.WriteString(fmt.Sprintf("Pages: %d\n", s.TotalPages))
	sb.WriteString(fmt.Sprintf("Databases: %d\n", s.TotalDatabases))
	if s.OldestEditDate != nil && s.NewestEditDate != nil {
		sb.WriteString(fmt.Sprintf("Oldest edit: %s\n", s.OldestEditDate.Format(time.RFC3339)))
		sb.WriteString(fmt.Sprintf("Newest edit: %s\n", s.NewestEditDate.Format(time.RFC3339)))
	}
	renderLimits(sb, s.Capabilities, s.PracticalLimits, s.Truncated)
}

func renderGoogleDocsStats(sb *strings.Builder, s *datasource.GoogleDocsStats) {
	sb.WriteString(fmt.Sprintf("Documents: %d\n", s.TotalDocuments))
	if s.LargestFileSize > 0 {
		sb.WriteString(fmt.Sprintf("Largest document: %s\n", humanize.Bytes(uint64(s.LargestFileSize))))
	}
	if s.OldestModified != nil && s.NewestModified != nil {
		sb.WriteString(fmt.Sprintf("Oldest modified: %s\n", s.OldestModified.Format(time.RFC3339)))
		sb.WriteString(fmt.Sprintf("Newest modified: %s\n", s.NewestModified.Format(time.RFC3339)))
	}
	renderLimits(sb, s.Capabilities, s.PracticalLimits, s.Truncated)
	renderMIMETypes(sb, s.MIMETypes)
}

func renderLimits(sb *strings.Builder, caps []datasource.Capability, limits datasource.PracticalLimits, truncated bool) {
	if truncated {
		sb.WriteString("Counts are lower bounds: the listing was truncated at the visit limit.\n")
	}
	parts := make([]string, len(caps))
	for i, c := range caps {
		parts[i] = string(c)
	}
	sb.WriteString(fmt.Sprintf("Capabilities: %s\n", strings.Join(parts, ", ")))
	if limits.MaxPageSize > 0 {
		sb.WriteString(fmt.Sprintf("Recommended page size: %d (max %d)\n", limits.RecommendedPageSize, limits.MaxPageSize))
	} else {
		sb.WriteString(fmt.Sprintf("Recommended page size: %d\n", limits.RecommendedPageSize))
	}
}

func renderMIMETypes(sb *strings.Builder, types map[string]int) {
	if len(types) == 0 {
		return
	}
	sb.WriteString("MIME types:\n")
	for _, kv := range sortedCounts(types) {
		sb.WriteString(fmt.Sprintf("  %s: %d\n", kv.key, kv.count))
	}
}

func renderGuidance(p datasource.ProviderType, g *guidance.Guidance) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Content type guidance for %s sources:\n\n", p))
	sb.WriteString(fmt.Sprintf("Primary content type: %s\n", g.PrimaryContentType))
	sb.WriteString(fmt.Sprintf("Preferred content type: %s\n", g.PreferredContentType))
	sb.WriteString(fmt.Sprintf("Accepted content types: %s\n", strings.Join(g.AcceptedContentTypes, ", ")))
	if len(g.AcceptedEditTypes) > 0 {
		sb.WriteString(fmt.Sprintf("Accepted edit types: %s\n", strings.Join(g.AcceptedEditTypes, ", ")))
	} else {
		sb.WriteString("Accepted edit types: none (read-only)\n")
	}
	for _, ex := range g.Examples {
		sb.WriteString(fmt.Sprintf("\n%s (%s)\n%s\n", ex.Title, ex.Section, ex.Body))
	}
	if len(g.Notes) > 0 {
		sb.WriteString("\nNotes:\n")
		for _, n := range g.Notes {
			sb.WriteString(fmt.Sprintf("- %s\n", n))
		}
	}
	return sb.String()
}

// keyCount orders histogram entries by count, then key, so renderings are
// deterministic.
type keyCount struct {
	key   string
	count int
}

func sortedCounts(m map[string]int) []keyCount {
	out := make([]keyCount, 0, len(m))
	for k, v := range m {
		out = append(out, keyCount{key: k, count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].key < out[j].key
	})
	return out
}

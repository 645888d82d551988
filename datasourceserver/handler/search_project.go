package handler

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mark3labs/mcp-datasource-server/internal/datasource"
	"github.com/mark3labs/mcp-datasource-server/internal/datasource/filesystem"
	"github.com/mark3labs/mcp-datasource-server/internal/search"
)

// HandleSearchProject runs a combined-criteria search over one data source.
// Every criterion is optional and all present criteria must hold for a
// resource to match; a call with no criteria matches everything under the
// search root.
func (h *DatasourceHandler) HandleSearchProject(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var in search.Input
	if v, err := request.RequireString("content_pattern"); err == nil {
		in.ContentPattern = v
	}
	if v, err := request.RequireBool("case_sensitive"); err == nil {
		in.CaseSensitive = v
	}
	if v, err := request.RequireString("resource_pattern"); err == nil {
		in.ResourcePattern = v
	}
	if v, err := request.RequireFloat("size_min"); err == nil {
		n := int64(v)
		in.SizeMin = &n
	}
	if v, err := request.RequireFloat("size_max"); err == nil {
		n := int64(v)
		in.SizeMax = &n
	}
	if v, err := request.RequireString("date_after"); err == nil {
		in.DateAfter = v
	}
	if v, err := request.RequireString("date_before"); err == nil {
		in.DateBefore = v
	}

	sourceID := ""
	if v, err := request.RequireString("source"); err == nil {
		sourceID = v
	}
	subPath := ""
	if v, err := request.RequireString("path"); err == nil {
		subPath = v
	}

	acc, err := h.resolveSource(sourceID)
	if err != nil {
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf("Error: %v", err),
				},
			},
			IsError: true,
		}, nil
	}
	if err := datasource.RequireCapability(acc, datasource.CapabilitySearch); err != nil {
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf("Error: %v", err),
				},
			},
			IsError: true,
		}, nil
	}
	fsAcc, ok := acc.(*filesystem.Accessor)
	if !ok {
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf("Error: data source %q cannot run content searches", acc.ID()),
				},
			},
			IsError: true,
		}, nil
	}
	root, err := fsAcc.ResolvePath(subPath)
	if err != nil {
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf("Error: %v", err),
				},
			},
			IsError: true,
		}, nil
	}

	invocation := uuid.NewString()
	h.log.Info("search started",
		"invocation", invocation,
		"source", acc.ID(),
		"path", subPath,
		"criteria", search.DescribeInput(in))

	criteria, err := search.ParseCriteria(in)
	if err != nil {
		// Invalid criteria still produce a well-formed result: zero matches,
		// the described criteria, and the engine's message among the errors.
		res := &search.Result{
			Matches:             []datasource.Descriptor{},
			CriteriaDescription: search.DescribeInput(in),
			ErrorsEncountered:   []string{err.Error()},
		}
		h.log.Warn("search rejected criteria", "invocation", invocation, "error", err)
		return h.searchResult(fsAcc, subPath, res)
	}

	res, err := h.coordinator.Search(ctx, root, criteria)
	if err != nil {
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf("Error: %v", err),
				},
			},
			IsError: true,
		}, nil
	}

	h.log.Info("search finished",
		"invocation", invocation,
		"matches", len(res.Matches),
		"errors", len(res.ErrorsEncountered))
	return h.searchResult(fsAcc, subPath, res)
}

// searchResult packages a search outcome as rendered text plus the
// structured result embedded as a JSON resource.
func (h *DatasourceHandler) searchResult(acc *filesystem.Accessor, scope string, res *search.Result) (*mcp.CallToolResult, error) {
	jsonData, err := json.Marshal(res)
	if err != nil {
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf("Error encoding search results: %v", err),
				},
			},
			IsError: true,
		}, nil
	}
	uri, err := acc.URIForResource(scope)
	if err != nil {
		uri = acc.URITemplate()
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: renderSearchResult(res),
			},
			mcp.EmbeddedResource{
				Type: "resource",
				Resource: mcp.TextResourceContents{
					URI:      uri,
					MIMEType: "application/json",
					Text:     string(jsonData),
				},
			},
		},
	}, nil
}

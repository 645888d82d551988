package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mark3labs/mcp-datasource-server/internal/datasource"
	"github.com/mark3labs/mcp-datasource-server/internal/guidance"
)

// HandleLoadDatasource serves metadata summaries, resource listings, and
// usage guidance for one data source, selected by return_type. "both" is
// metadata plus resources, "combined" is all three.
func (h *DatasourceHandler) HandleLoadDatasource(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	returnType, err := request.RequireString("return_type")
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

	var wantMetadata, wantResources, wantInstructions bool
	switch returnType {
	case "metadata":
		wantMetadata = true
	case "resources":
		wantResources = true
	case "both":
		wantMetadata, wantResources = true, true
	case "instructions":
		wantInstructions = true
	case "combined":
		wantMetadata, wantResources, wantInstructions = true, true, true
	default:
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf("Error: invalid return_type %q: expected metadata, resources, both, instructions, or combined", returnType),
				},
			},
			IsError: true,
		}, nil
	}

	sourceID := ""
	if v, err := request.RequireString("source"); err == nil {
		sourceID = v
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

	invocation := uuid.NewString()
	h.log.Info("load started",
		"invocation", invocation,
		"source", acc.ID(),
		"return_type", returnType)

	payload := loadPayload{Source: acc.ID(), Provider: acc.Provider()}
	var sections []string
	scope := ""

	if wantMetadata {
		sum, err := acc.Metadata(ctx)
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
		payload.Summary = sum
		sections = append(sections, renderSummary(sum))
	}

	if wantResources {
		if err := datasource.RequireCapability(acc, datasource.CapabilityList); err != nil {
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
		var q datasource.ListQuery
		if v, err := request.RequireString("path"); err == nil {
			q.Path = v
		}
		if v, err := request.RequireFloat("depth"); err == nil {
			q.Depth = int(v)
		}
		if v, err := request.RequireFloat("page_size"); err == nil {
			q.PageSize = int(v)
		}
		if v, err := request.RequireString("page_token"); err == nil {
			q.PageToken = v
		}
		scope = q.Path

		listing, err := acc.ListResources(ctx, q)
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
		payload.Listing = listing
		sections = append(sections, renderListing(acc.ID(), q.Path, listing))
	}

	if wantInstructions {
		g, err := guidance.Build(acc.Provider(), instructionFilters(request))
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
		payload.Guidance = g
		sections = append(sections, renderGuidance(acc.Provider(), g))
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf("Error encoding result: %v", err),
				},
			},
			IsError: true,
		}, nil
	}

	uri, err := acc.URIForResource(scope)
	if err != nil {
		uri = ""
	}

	h.log.Info("load finished",
		"invocation", invocation,
		"source", acc.ID(),
		"return_type", returnType)
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: strings.Join(sections, "\n"),
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

// instructionFilters builds guidance filters from the request. It returns
// nil when no filter parameter is present so Build yields the full guidance.
func instructionFilters(request mcp.CallToolRequest) *guidance.InstructionFilters {
	var f guidance.InstructionFilters
	set := false
	if v, err := request.RequireString("content_types"); err == nil {
		f.ContentTypes = splitCSV(v)
		set = true
	}
	if v, err := request.RequireString("operations"); err == nil {
		f.Operations = splitCSV(v)
		set = true
	}
	if v, err := request.RequireString("edit_types"); err == nil {
		f.EditTypes = splitCSV(v)
		set = true
	}
	if v, err := request.RequireString("sections"); err == nil {
		f.Sections = splitCSV(v)
		set = true
	}
	if v, err := request.RequireBool("include_overview"); err == nil {
		f.IncludeOverview = &v
		set = true
	}
	if !set {
		return nil
	}
	return &f
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

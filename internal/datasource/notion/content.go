package notion

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// blockList is the blocks children API response format.
type blockList struct {
	Results    []json.RawMessage `json:"results"`
	NextCursor string            `json:"next_cursor"`
	HasMore    bool              `json:"has_more"`
}

// PageText reads a page's block children and flattens them to plain text,
// one block per line. Only top-level blocks are fetched; that is enough for
// content preview without descending nested toggles and columns.
func (a *Accessor) PageText(ctx context.Context, pageID string) (string, error) {
	var lines []string
	cursor := ""
	for {
		res, err := a.blockChildren(ctx, pageID, cursor)
		if err != nil {
			return "", err
		}
		for _, raw := range res.Results {
			if t := blockText(raw); t != "" {
				lines = append(lines, t)
			}
		}
		if !res.HasMore || res.NextCursor == "" {
			break
		}
		cursor = res.NextCursor
	}
	return strings.Join(lines, "\n"), nil
}

// blockChildren runs one GET /v1/blocks/{id}/children call.
func (a *Accessor) blockChildren(ctx context.Context, pageID, cursor string) (*blockList, error) {
	u := fmt.Sprintf("%s/v1/blocks/%s/children?page_size=%d", a.baseURL, url.PathEscape(pageID), MaxPageSize)
	if cursor != "" {
		u += "&start_cursor=" + url.QueryEscape(cursor)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+a.token)
	httpReq.Header.Set("Notion-Version", NotionVersion)

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("notion API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("notion API error (status %d): %s", resp.StatusCode, string(body))
	}

	var res blockList
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &res, nil
}

// blockText extracts the readable text from one block. Every text-bearing
// block type nests a rich_text array under a key named after the type, so
// extraction works without enumerating the block vocabulary.
func blockText(raw json.RawMessage) string {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil || envelope.Type == "" {
		return ""
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return ""
	}
	payload, ok := fields[envelope.Type]
	if !ok {
		return ""
	}
	var content struct {
		RichText []richText `json:"rich_text"`
	}
	if err := json.Unmarshal(payload, &content); err != nil {
		return ""
	}
	return joinRichText(content.RichText)
}

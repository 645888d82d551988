package googledocs

import (
	"context"
	"fmt"
	"io"
)

// ExportText downloads a document rendered as plain text through the Drive
// export endpoint.
func (a *Accessor) ExportText(ctx context.Context, docID string) (string, error) {
	resp, err := a.srv.Files.Export(docID, "text/plain").Context(ctx).Download()
	if err != nil {
		return "", fmt.Errorf("failed to export document %s: %w", docID, err)
	}
	defer resp.Body.Close()

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read exported document %s: %w", docID, err)
	}
	return string(content), nil
}

// Package filesystem exposes a directory tree as a data source. The accessor
// is confined to its configured root: paths are resolved against it and
// anything escaping it is reported as not found rather than leaked.
package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/djherbis/times"
	"github.com/yosida95/uritemplate/v3"

	"github.com/mark3labs/mcp-datasource-server/internal/datasource"
)

const (
	// DefaultPageSize is used when a listing request carries no hint.
	DefaultPageSize = 100
	// MaxPageSize caps any requested page size.
	MaxPageSize = 1000
)

// Config describes one filesystem source.
type Config struct {
	ID              string
	Root            string
	Ignore          *datasource.IgnoreList
	DefaultPageSize int
	MaxPageSize     int
}

// Accessor implements datasource.Accessor over a local directory tree.
type Accessor struct {
	id              string
	root            string
	ignore          *datasource.IgnoreList
	defaultPageSize int
	maxPageSize     int
	template        *uritemplate.Template
	log             *slog.Logger
}

// New validates the root and builds the accessor. The root must be an
// existing directory.
func New(cfg Config, log *slog.Logger) (*Accessor, error) {
	if cfg.ID == "" {
		return nil, fmt.Errorf("filesystem source has no id")
	}
	abs, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path %s: %w", cfg.Root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to access directory %s: %w", abs, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", abs)
	}

	raw := "file://" + filepath.ToSlash(filepath.Clean(abs)) + "/{+path}"
	tmpl, err := uritemplate.New(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid uri template for %s: %w", abs, err)
	}

	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = DefaultPageSize
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = MaxPageSize
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	return &Accessor{
		id:              cfg.ID,
		root:            filepath.Clean(abs),
		ignore:          cfg.Ignore,
		defaultPageSize: cfg.DefaultPageSize,
		maxPageSize:     cfg.MaxPageSize,
		template:        tmpl,
		log:             log,
	}, nil
}

func (a *Accessor) ID() string { return a.id }

func (a *Accessor) Provider() datasource.ProviderType { return datasource.ProviderFilesystem }

// Root returns the absolute source root, the scope handed to the search
// coordinator.
func (a *Accessor) Root() string { return a.root }

func (a *Accessor) HasCapability(c datasource.Capability) bool {
	switch c {
	case datasource.CapabilityRead, datasource.CapabilityWrite,
		datasource.CapabilityList, datasource.CapabilitySearch:
		return true
	}
	return false
}

// Capabilities lists the supported operations for metadata reporting.
func (a *Accessor) Capabilities() []datasource.Capability {
	return []datasource.Capability{
		datasource.CapabilityRead,
		datasource.CapabilityWrite,
		datasource.CapabilityList,
		datasource.CapabilitySearch,
	}
}

// URITemplate returns the canonical template for this source, for example
// "file:///home/user/project/{+path}".
func (a *Accessor) URITemplate() string { return a.template.Raw() }

// URIForResource expands the source template for a root-relative path.
func (a *Accessor) URIForResource(rel string) (string, error) {
	rel = strings.TrimPrefix(path.Clean("/"+rel), "/")
	return a.template.Expand(uritemplate.Values{
		"path": uritemplate.String(rel),
	})
}

// ResolvePath maps a root-relative path to an absolute one, refusing
// anything that escapes the root. Escapes surface as NotFoundError so
// callers cannot probe the tree outside the source.
func (a *Accessor) ResolvePath(rel string) (string, error) {
	if rel == "" || rel == "." {
		return a.root, nil
	}
	abs := filepath.Clean(filepath.Join(a.root, filepath.FromSlash(rel)))
	if abs != a.root && !strings.HasPrefix(abs, a.root+string(filepath.Separator)) {
		return "", &datasource.NotFoundError{Source: a.id, Path: rel}
	}
	return abs, nil
}

// Contains reports whether an absolute path falls inside the source root.
func (a *Accessor) Contains(abs string) bool {
	abs = filepath.Clean(abs)
	return abs == a.root || strings.HasPrefix(abs, a.root+string(filepath.Separator))
}

// listCursor resumes a listing. The fingerprint ties the token to the query
// that produced it; a token for different parameters restarts from zero.
type listCursor struct {
	Offset      int    `json:"offset"`
	Fingerprint string `json:"fingerprint"`
}

// ListResources returns one lexical depth-first page of the tree under the
// query path. Depth 1 (the default) lists immediate children only.
func (a *Accessor) ListResources(ctx context.Context, q datasource.ListQuery) (*datasource.Listing, error) {
	depth := q.Depth
	if depth <= 0 {
		depth = 1
	}
	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = a.defaultPageSize
	}
	if pageSize > a.maxPageSize {
		pageSize = a.maxPageSize
	}

	start, err := a.ResolvePath(q.Path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(start)
	if err != nil {
		return nil, &datasource.NotFoundError{Source: a.id, Path: q.Path}
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("listing scope %q is not a directory", q.Path)
	}

	var all []datasource.Descriptor
	a.appendEntries(ctx, start, relRoot(a.root, start), depth, &all)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fingerprint := fmt.Sprintf("%s|%d|%d", q.Path, depth, pageSize)
	offset := 0
	if q.PageToken != "" {
		var cur listCursor
		if err := datasource.DecodeCursor(q.PageToken, &cur); err != nil || cur.Fingerprint != fingerprint {
			// Stale or foreign token: restart rather than guess.
			a.log.Warn("stale page token, restarting listing", "source", a.id, "path", q.Path)
		} else {
			offset = cur.Offset
		}
	}
	if offset > len(all) {
		offset = len(all)
	}

	end := offset + pageSize
	if end > len(all) {
		end = len(all)
	}
	listing := &datasource.Listing{
		Resources:   all[offset:end],
		URITemplate: a.URITemplate(),
	}
	if end < len(all) {
		token, err := datasource.EncodeCursor(listCursor{Offset: end, Fingerprint: fingerprint})
		if err != nil {
			return nil, err
		}
		listing.NextPageToken = token
	}
	return listing, nil
}

// appendEntries walks dir depth-first in lexical order, collecting
// descriptors until remaining depth is exhausted. Unreadable entries are
// skipped; a listing should degrade, not fail, on one bad directory.
func (a *Accessor) appendEntries(ctx context.Context, dir, relDir string, remaining int, out *[]datasource.Descriptor) {
	if remaining <= 0 || ctx.Err() != nil {
		return
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		a.log.Debug("skipping unreadable directory", "source", a.id, "dir", dir, "error", err)
		return
	}
	for _, e := range entries {
		if ctx.Err() != nil {
			return
		}
		rel := path.Join(relDir, e.Name())
		if a.ignore.Match(rel) {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			a.log.Debug("skipping unreadable entry", "source", a.id, "path", rel, "error", err)
			continue
		}
		abs := filepath.Join(dir, e.Name())
		*out = append(*out, a.descriptor(abs, rel, fi))
		if e.IsDir() {
			a.appendEntries(ctx, abs, rel, remaining-1, out)
		}
	}
}

// descriptor builds the immutable descriptor for one entry. Creation and
// access times ride along in ProviderExtra when the platform reports them;
// MIME detection would need a content read, so listings leave it unset.
func (a *Accessor) descriptor(abs, rel string, fi fs.FileInfo) datasource.Descriptor {
	d := datasource.Descriptor{
		URI:          "file://" + abs,
		DisplayName:  fi.Name(),
		RelativePath: rel,
		Kind:         datasource.KindFile,
		LastModified: datasource.TimePtr(fi.ModTime()),
	}
	if fi.IsDir() {
		d.Kind = datasource.KindDirectory
	} else {
		d.SizeBytes = datasource.Int64Ptr(fi.Size())
	}
	if spec, err := times.Stat(abs); err == nil {
		extra := map[string]string{
			"accessed": spec.AccessTime().UTC().Format(time.RFC3339),
		}
		if spec.HasBirthTime() {
			extra["created"] = spec.BirthTime().UTC().Format(time.RFC3339)
		}
		d.ProviderExtra = extra
	}
	return d
}

// Metadata aggregates the whole tree at stat level: counts, extremes, depth,
// and the extension histogram. No file content is read.
func (a *Accessor) Metadata(ctx context.Context) (*datasource.Summary, error) {
	stats := &datasource.FilesystemStats{
		FileExtensions: make(map[string]int),
		Capabilities:   a.Capabilities(),
	}
	types := make(map[datasource.Kind]int)
	var oldest, newest time.Time

	err := filepath.WalkDir(a.root, func(p string, d fs.DirEntry, err error) error {
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		if err != nil {
			return nil // skip unreadable entries, keep aggregating
		}
		rel := relRoot(a.root, p)
		if rel == "" {
			return nil
		}
		if a.ignore.Match(rel) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if depth := strings.Count(rel, "/") + 1; depth > stats.DeepestPathDepth {
			stats.DeepestPathDepth = depth
		}
		if d.IsDir() {
			stats.TotalDirectories++
			types[datasource.KindDirectory]++
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return nil
		}
		stats.TotalFiles++
		types[datasource.KindFile]++
		if fi.Size() > stats.LargestFileSize {
			stats.LargestFileSize = fi.Size()
		}
		mod := fi.ModTime()
		if oldest.IsZero() || mod.Before(oldest) {
			oldest = mod
		}
		if newest.IsZero() || mod.After(newest) {
			newest = mod
		}
		stats.FileExtensions[strings.ToLower(filepath.Ext(fi.Name()))]++
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !oldest.IsZero() {
		stats.OldestFileDate = datasource.TimePtr(oldest)
		stats.NewestFileDate = datasource.TimePtr(newest)
	}
	total := stats.TotalFiles + stats.TotalDirectories
	stats.PracticalLimits = datasource.PracticalLimits{
		RecommendedPageSize: recommendedPageSize(total, stats.TotalDirectories, a.maxPageSize),
		MaxPageSize:         a.maxPageSize,
	}

	return &datasource.Summary{
		SourceID:       a.id,
		Provider:       datasource.ProviderFilesystem,
		TotalResources: total,
		ResourceTypes:  types,
		Filesystem:     stats,
	}, nil
}

// recommendedPageSize suggests a page size that covers a typical directory's
// fan-out in one page, for callers that want a representative sample rather
// than the whole tree.
func recommendedPageSize(totalResources, totalDirectories, maxPage int) int {
	fanOut := totalResources / (totalDirectories + 1)
	rec := ((fanOut / 10) + 1) * 10
	if rec < 10 {
		rec = 10
	}
	if rec > maxPage {
		rec = maxPage
	}
	return rec
}

// relRoot is relSlash against the accessor root.
func relRoot(root, p string) string {
	rel, err := filepath.Rel(root, p)
	if err != nil || rel == "." {
		return ""
	}
	return filepath.ToSlash(rel)
}

package search

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/mark3labs/mcp-datasource-server/internal/contentscan"
	"github.com/mark3labs/mcp-datasource-server/internal/datasource"
)

// Result is the outcome of one search. A failed search is still a
// well-formed Result: zero matches plus the diagnostics in
// ErrorsEncountered, so formatters never need to special-case failure.
type Result struct {
	Matches             []datasource.Descriptor `json:"matches"`
	CriteriaDescription string                  `json:"criteriaDescription"`
	ErrorsEncountered   []string                `json:"errorsEncountered,omitempty"`
}

// Coordinator runs searches over filesystem-rooted resource trees. Each
// resource moves through path filter, then metadata filter, then content
// scan, ordered cheapest first: path filtering needs no I/O beyond the
// directory listing, metadata filtering needs a stat, and only resources
// surviving both are ever opened.
//
// The same Coordinator may serve concurrent searches; all per-search state
// lives in the call.
type Coordinator struct {
	scanner *contentscan.Scanner
	ignore  *datasource.IgnoreList
	workers int
	log     *slog.Logger
}

// NewCoordinator wires a coordinator. A nil scanner gets defaults, workers
// <= 0 means one worker per CPU, and a nil logger disables logging.
func NewCoordinator(scanner *contentscan.Scanner, ignore *datasource.IgnoreList, workers int, log *slog.Logger) *Coordinator {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if scanner == nil {
		scanner = contentscan.New(contentscan.Config{}, log)
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Coordinator{scanner: scanner, ignore: ignore, workers: workers, log: log}
}

// candidate is a resource that passed the path and metadata filters, held in
// walk order until its content verdict arrives.
type candidate struct {
	desc datasource.Descriptor
	path string
}

// Search walks the tree under root and returns the resources matching the
// criteria, in deterministic depth-first lexical order.
//
// Per-resource failures (an unreadable file, a stat error) are recorded in
// ErrorsEncountered and skipped, never fatal. A missing or non-directory
// root aborts before traversal with a NotFoundError. Cancellation stops new
// work promptly and returns the partial result collected so far, marked with
// a diagnostic line.
func (co *Coordinator) Search(ctx context.Context, root string, c *Criteria) (*Result, error) {
	res := &Result{CriteriaDescription: c.Describe()}

	info, err := os.Stat(root)
	if err != nil {
		return nil, &datasource.NotFoundError{Path: root}
	}
	if !info.IsDir() {
		return nil, &datasource.NotFoundError{Path: root}
	}

	var ordered []candidate
	_ = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return fs.SkipAll
		}
		if err != nil {
			res.ErrorsEncountered = append(res.ErrorsEncountered, fmt.Sprintf("%s: %v", p, err))
			return nil
		}
		rel := relSlash(root, p)
		if rel == "" {
			return nil // the root itself is the scope, not a result
		}
		if co.ignore.Match(rel) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		// Path filter: a directory that fails it is still descended, since
		// its children may match.
		if !c.PathPass(rel) {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			res.ErrorsEncountered = append(res.ErrorsEncountered, fmt.Sprintf("%s: %v", rel, err))
			return nil
		}
		desc := descriptorFor(p, rel, fi)
		if !c.MetadataPass(desc) {
			return nil
		}
		if d.IsDir() {
			// Directories have no content to search.
			if !c.HasContentFilter() {
				ordered = append(ordered, candidate{desc: desc})
			}
			return nil
		}
		ordered = append(ordered, candidate{desc: desc, path: p})
		return nil
	})

	if !c.HasContentFilter() {
		for _, cand := range ordered {
			res.Matches = append(res.Matches, cand.desc)
		}
		return co.finish(ctx, res), nil
	}

	// Content scans fan out across workers so one slow file cannot stall the
	// rest; verdicts land by index and matches are assembled back in walk
	// order.
	verdicts := make([]bool, len(ordered))
	scanErrs := make([]error, len(ordered))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(co.workers)
	for i, cand := range ordered {
		g.Go(func() error {
			found, err := co.scanner.ScanFile(gctx, cand.path, c.ContentRegexp())
			if err != nil {
				scanErrs[i] = err
				return nil // one resource failing never aborts the search
			}
			verdicts[i] = found
			return nil
		})
	}
	_ = g.Wait()

	for i, cand := range ordered {
		if err := scanErrs[i]; err != nil {
			if ctx.Err() == nil {
				res.ErrorsEncountered = append(res.ErrorsEncountered, fmt.Sprintf("%s: %v", cand.desc.RelativePath, err))
			}
			continue
		}
		if verdicts[i] {
			res.Matches = append(res.Matches, cand.desc)
		}
	}
	return co.finish(ctx, res), nil
}

// finish stamps a cancellation diagnostic on partial results and logs the
// outcome.
func (co *Coordinator) finish(ctx context.Context, res *Result) *Result {
	if err := ctx.Err(); err != nil {
		res.ErrorsEncountered = append(res.ErrorsEncountered, fmt.Sprintf("search interrupted: %v", err))
	}
	co.log.Debug("search finished",
		"matches", len(res.Matches),
		"errors", len(res.ErrorsEncountered),
		"criteria", res.CriteriaDescription)
	return res
}

// descriptorFor builds the immutable descriptor yielded for a matched
// resource. MIME detection would need a content read, so listings leave it
// unset.
func descriptorFor(abs, rel string, fi fs.FileInfo) datasource.Descriptor {
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
	return d
}

// relSlash returns p relative to root with forward slashes, or "" for the
// root itself.
func relSlash(root, p string) string {
	rel, err := filepath.Rel(root, p)
	if err != nil || rel == "." {
		return ""
	}
	return filepath.ToSlash(rel)
}

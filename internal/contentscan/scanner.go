// Package contentscan answers "does this resource contain a match for this
// pattern" without ever missing a match that straddles an internal read
// boundary.
//
// Small resources are read whole and tested once. Resources above the
// whole-file limit are scanned in chunks, keeping the trailing overlap of the
// previous window in place so the regexp is always tested against the
// combined boundary region. Any match no wider than the overlap is therefore
// guaranteed to be seen even when it spans two reads.
package contentscan

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"

	"github.com/gabriel-vasile/mimetype"
)

const (
	// DefaultWholeFileLimit is the size at or below which a resource is read
	// in one piece. Agent-scale projects are made of source and text files,
	// so this covers nearly everything.
	DefaultWholeFileLimit = 8 * 1024 * 1024
	// DefaultChunkSize is the read size used above the whole-file limit.
	DefaultChunkSize = 256 * 1024
	// DefaultOverlap is the number of trailing bytes retained between chunks.
	// It bounds the widest match that survives a chunk boundary.
	DefaultOverlap = 64 * 1024
)

// Config tunes the scanner. Zero values fall back to the defaults.
type Config struct {
	WholeFileLimit int64
	ChunkSize      int
	Overlap        int
}

// Scanner is a reusable content matcher. It is safe for concurrent use, as
// each scan keeps its own buffers.
type Scanner struct {
	cfg Config
	log *slog.Logger
}

// New returns a Scanner with defaults applied. A nil logger disables logging.
func New(cfg Config, log *slog.Logger) *Scanner {
	if cfg.WholeFileLimit <= 0 {
		cfg.WholeFileLimit = DefaultWholeFileLimit
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if cfg.Overlap <= 0 {
		cfg.Overlap = DefaultOverlap
	}
	if cfg.Overlap >= cfg.ChunkSize {
		cfg.Overlap = cfg.ChunkSize / 2
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Scanner{cfg: cfg, log: log}
}

// ScanFile reports whether the file contains a match for re. Binary content
// is not searched and reports no match. Case folding is the caller's concern:
// compile the pattern with (?i) for insensitive scans, the scanner never
// rewrites the bytes it reads.
func (s *Scanner) ScanFile(ctx context.Context, path string, re *regexp.Regexp) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return false, err
	}
	return s.ScanReader(ctx, f, info.Size(), re)
}

// ScanReader scans r for a match. size < 0 means unknown and forces the
// chunked path.
func (s *Scanner) ScanReader(ctx context.Context, r io.Reader, size int64, re *regexp.Regexp) (bool, error) {
	if re == nil {
		return false, fmt.Errorf("contentscan: nil pattern")
	}
	if size >= 0 && size <= s.cfg.WholeFileLimit {
		return s.scanWhole(ctx, r, re)
	}
	return s.scanChunked(ctx, r, re)
}

func (s *Scanner) scanWhole(ctx context.Context, r io.Reader, re *regexp.Regexp) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	content, err := io.ReadAll(r)
	if err != nil {
		return false, err
	}
	if !isTextContent(content) {
		return false, nil
	}
	return re.Match(content), nil
}

// scanChunked keeps a sliding window of the previous overlap plus the next
// chunk and tests the combined window each round, so a match that starts in
// one chunk and ends in the next is still found.
func (s *Scanner) scanChunked(ctx context.Context, r io.Reader, re *regexp.Regexp) (bool, error) {
	window := make([]byte, 0, s.cfg.ChunkSize+s.cfg.Overlap)
	chunk := make([]byte, s.cfg.ChunkSize)
	sniffed := false

	for {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		n, rerr := io.ReadFull(r, chunk)
		if n > 0 {
			window = append(window, chunk[:n]...)
			if !sniffed {
				if !isTextContent(window) {
					return false, nil
				}
				sniffed = true
			}
			if re.Match(window) {
				return true, nil
			}
			if len(window) > s.cfg.Overlap {
				keep := len(window) - s.cfg.Overlap
				copy(window, window[keep:])
				window = window[:s.cfg.Overlap]
			}
		}
		switch rerr {
		case nil:
		case io.EOF, io.ErrUnexpectedEOF:
			return false, nil
		default:
			return false, rerr
		}
	}
}

// isTextContent walks the detected MIME hierarchy looking for text/plain,
// which is how the mimetype library models "this is some kind of text".
// Empty content counts as text.
func isTextContent(data []byte) bool {
	if len(data) == 0 {
		return true
	}
	for m := mimetype.Detect(data); m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}

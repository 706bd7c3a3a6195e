// Package walker traverses a scan root and yields candidate files for
// analysis. Traversal is read-only: the walker never mutates scanned files.
package walker

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/scanward/scanward/internal/audit"
	"github.com/scanward/scanward/pkg/shared/errors"
)

// DefaultLanguages maps supported source extensions to language names.
var DefaultLanguages = map[string]string{
	".py":    "python",
	".js":    "javascript",
	".jsx":   "javascript",
	".ts":    "typescript",
	".tsx":   "typescript",
	".java":  "java",
	".cpp":   "cpp",
	".c":     "c",
	".php":   "php",
	".rb":    "ruby",
	".go":    "go",
	".rs":    "rust",
	".cs":    "csharp",
	".swift": "swift",
}

// DefaultExcludes are directory names pruned on every walk regardless of
// user-supplied globs.
var DefaultExcludes = []string{
	"node_modules", "vendor", "venv", "env", "dist", "build", ".git",
}

// Options control a single traversal.
type Options struct {
	// Extensions maps allowed extensions to language names. Nil means
	// DefaultLanguages.
	Extensions map[string]string
	// ExcludeGlobs are matched against directory base names and
	// root-relative paths; matching directories are pruned, not descended.
	ExcludeGlobs []string
	// MaxBytes caps how much of a file is handed to analysis. Larger files
	// are truncated and flagged; they stay pattern-eligible on the prefix
	// but are excluded from AI analysis.
	MaxBytes int64
	// AIEligibleBytes is the AI-eligibility cap on content length.
	AIEligibleBytes int
}

// Item is one walked file: its record plus the (possibly truncated) content.
type Item struct {
	Record  audit.FileRecord
	Content []byte
}

// Walker traverses directory trees guarding against symlink cycles.
type Walker struct {
	opts   Options
	logger hclog.Logger
}

func New(opts Options, logger hclog.Logger) *Walker {
	if opts.Extensions == nil {
		opts.Extensions = DefaultLanguages
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = 1 << 20
	}
	if opts.AIEligibleBytes <= 0 {
		opts.AIEligibleBytes = 2000
	}
	return &Walker{opts: opts, logger: logger}
}

// Walk traverses root and invokes yield for every candidate file in lexical
// order. Unreadable files produce a record with the Error field set;
// traversal continues. The walk stops early when yield returns false.
func (w *Walker) Walk(root string, yield func(Item) bool) error {
	visited := make(map[string]struct{})
	stopped := false
	return w.walk(root, root, visited, yield, &stopped)
}

func (w *Walker) walk(scanRoot, dir string, visited map[string]struct{}, yield func(Item) bool, stopped *bool) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if *stopped {
			return filepath.SkipAll
		}
		if walkErr != nil {
			w.logger.Debug("walk error, skipping entry", "path", path, "err", walkErr)
			return nil
		}

		if d.IsDir() {
			if path != dir && w.excluded(scanRoot, path) {
				return filepath.SkipDir
			}
			// Every directory's real path is recorded as it is entered so
			// a later symlink to it, or a second route into it, is cut.
			if real, err := filepath.EvalSymlinks(path); err == nil {
				if _, seen := visited[real]; seen && path != dir {
					w.logger.Debug("directory already walked, skipping", "path", path, "target", real)
					return filepath.SkipDir
				}
				visited[real] = struct{}{}
			}
			return nil
		}

		// Symlinks are followed manually so that cycles can be cut on
		// resolved real paths.
		if d.Type()&fs.ModeSymlink != 0 {
			return w.followSymlink(scanRoot, path, visited, yield, stopped)
		}

		if !w.wanted(path) {
			return nil
		}
		if !yield(w.readItem(path)) {
			*stopped = true
			return filepath.SkipAll
		}
		return nil
	})
}

// followSymlink resolves a symlink entry; directory targets are traversed
// with the shared visited set unless their real path was already seen.
func (w *Walker) followSymlink(scanRoot, path string, visited map[string]struct{}, yield func(Item) bool, stopped *bool) error {
	real, err := filepath.EvalSymlinks(path)
	if err != nil {
		w.logger.Debug("broken symlink, skipping", "path", path, "err", err)
		return nil
	}
	info, err := os.Stat(real)
	if err != nil {
		return nil
	}
	if !info.IsDir() {
		if w.wanted(path) {
			if !yield(w.readItem(path)) {
				*stopped = true
				return filepath.SkipAll
			}
		}
		return nil
	}
	if _, seen := visited[real]; seen {
		w.logger.Debug("symlink cycle cut", "path", path, "target", real)
		return nil
	}
	if w.excluded(scanRoot, path) {
		return nil
	}
	// WalkDir lstats its root, so the resolved target is walked rather than
	// the symlink path itself.
	return w.walk(scanRoot, real, visited, yield, stopped)
}

// wanted reports whether the file extension is on the allow-list.
func (w *Walker) wanted(path string) bool {
	_, ok := w.opts.Extensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// excluded reports whether a directory matches the default set or any
// user-supplied glob, against both its base name and root-relative path.
func (w *Walker) excluded(scanRoot, dir string) bool {
	base := filepath.Base(dir)
	for _, name := range DefaultExcludes {
		if base == name {
			return true
		}
	}
	if strings.HasPrefix(base, ".") {
		return true
	}
	rel, err := filepath.Rel(scanRoot, dir)
	if err != nil {
		rel = dir
	}
	for _, glob := range w.opts.ExcludeGlobs {
		if ok, _ := filepath.Match(glob, base); ok {
			return true
		}
		if ok, _ := filepath.Match(glob, rel); ok {
			return true
		}
	}
	return false
}

// readItem builds the file record and loads up to MaxBytes of content.
func (w *Walker) readItem(path string) Item {
	language := w.opts.Extensions[strings.ToLower(filepath.Ext(path))]
	record := audit.FileRecord{
		Path:     path,
		Language: language,
	}

	info, err := os.Stat(path)
	if err != nil {
		record.Error = errors.NewFileAccessError(path, err).Error()
		return Item{Record: record}
	}
	record.ByteSize = info.Size()

	f, err := os.Open(path)
	if err != nil {
		record.Error = errors.NewFileAccessError(path, err).Error()
		return Item{Record: record}
	}
	defer f.Close()

	limit := w.opts.MaxBytes
	content := make([]byte, 0, min64(record.ByteSize, limit))
	buf := make([]byte, 32*1024)
	var total int64
	for total < limit {
		n, readErr := f.Read(buf)
		if n > 0 {
			take := int64(n)
			if total+take > limit {
				take = limit - total
			}
			content = append(content, buf[:take]...)
			total += take
		}
		if readErr != nil {
			break
		}
	}
	if record.ByteSize > limit {
		record.Truncated = true
	}

	record.LineCount = countLines(content)
	record.AIEligible = !record.Truncated && len(content) <= w.opts.AIEligibleBytes
	return Item{Record: record, Content: content}
}

func countLines(content []byte) int {
	if len(content) == 0 {
		return 0
	}
	n := 1
	for _, b := range content {
		if b == '\n' {
			n++
		}
	}
	return n
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

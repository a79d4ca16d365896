// Package discovery finds audio files beneath a folder by extension.
//
// Paths are returned exactly as the walk produces them (the root joined with
// each relative name) and are used as fingerprint cache keys verbatim.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"

	"dupefinder/internal/logging"
)

// Finder walks a tree and keeps files whose extension is allowed.
type Finder struct {
	extensions []string
	logger     *slog.Logger
}

// New returns a Finder for the given extensions (".mp3" or "mp3"). Matching
// is case-insensitive.
func New(extensions []string, logger *slog.Logger) *Finder {
	fold := cases.Fold()
	normalized := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		normalized = append(normalized, fold.String(ext))
	}
	return &Finder{
		extensions: normalized,
		logger:     logging.NewComponentLogger(logger, "discovery"),
	}
}

// Matches reports whether name ends with an allowed extension.
func (f *Finder) Matches(name string) bool {
	return f.matches(cases.Fold(), name)
}

func (f *Finder) matches(fold cases.Caser, name string) bool {
	folded := fold.String(name)
	for _, ext := range f.extensions {
		if strings.HasSuffix(folded, ext) {
			return true
		}
	}
	return false
}

// Find returns matching files under root in lexical walk order. Unreadable
// subdirectories are logged and skipped; an unreadable root is an error.
// A symlinked root is followed; symlinked directories below it are not.
func (f *Finder) Find(ctx context.Context, root string) ([]string, error) {
	fold := cases.Fold()
	walkRoot := followRoot(root)
	var files []string
	err := filepath.WalkDir(walkRoot, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if path == walkRoot {
				return err
			}
			logging.WarnWithContext(f.logger, "skipping unreadable path", "discovery_walk_error",
				logging.Path(path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check permissions on the directory"),
				logging.String(logging.FieldImpact, "audio files below this path are not scanned"))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !d.Type().IsRegular() && d.Type()&fs.ModeSymlink == 0 {
			return nil
		}
		if f.matches(fold, d.Name()) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	f.logger.Debug("discovered audio files",
		logging.String("root", root),
		logging.Int("count", len(files)))
	return files, nil
}

// followRoot appends a separator to root so the walk resolves a symlinked
// root while children keep the caller's spelling as their prefix.
func followRoot(root string) string {
	if root == "" || os.IsPathSeparator(root[len(root)-1]) {
		return root
	}
	return root + string(filepath.Separator)
}

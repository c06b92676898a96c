// Package corpus loads a static corpus of source files into memory and
// restores missing corpus directories from their archives.
package corpus

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/hyperjump/sdkchat/internal/fileid"
	"github.com/hyperjump/sdkchat/internal/models"
	"go.uber.org/zap"
)

// SkippedFile records a file that could not be read or decoded.
type SkippedFile struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Report is the outcome of a corpus load. Documents are in walk order:
// roots in the order given, files in lexical order within each root.
type Report struct {
	Documents []*models.Document `json:"-"`
	Skipped   []SkippedFile      `json:"skipped"`
	Bytes     int64              `json:"bytes"`
}

// Loader reads every file under a set of corpus roots.
type Loader struct {
	logger     *zap.Logger
	archiveExt string
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLogger sets the logger used for skip warnings and progress.
func WithLogger(l *zap.Logger) LoaderOption {
	return func(ld *Loader) {
		if l != nil {
			ld.logger = l
		}
	}
}

// WithArchiveExt sets the suffix appended to a root to find its archive. Default ".zip".
func WithArchiveExt(ext string) LoaderOption {
	return func(ld *Loader) {
		if ext != "" {
			ld.archiveExt = ext
		}
	}
}

// NewLoader creates a loader.
func NewLoader(opts ...LoaderOption) *Loader {
	ld := &Loader{logger: zap.NewNop(), archiveExt: ".zip"}
	for _, opt := range opts {
		opt(ld)
	}
	return ld
}

// Load walks each root recursively and reads every non-directory entry as text.
// Files that cannot be read are logged, recorded in Report.Skipped, and left out;
// they never abort the load. A root that cannot be opened is an error.
func (ld *Loader) Load(ctx context.Context, roots []string) (*Report, error) {
	start := time.Now()
	report := &Report{}
	for _, root := range roots {
		if err := ld.loadRoot(ctx, root, report); err != nil {
			return nil, err
		}
	}
	ld.logger.Info("corpus loaded",
		zap.Int("documents", len(report.Documents)),
		zap.Int("skipped", len(report.Skipped)),
		zap.Int64("bytes", report.Bytes),
		zap.Duration("duration", time.Since(start)))
	return report, nil
}

func (ld *Loader) loadRoot(ctx context.Context, root string, report *Report) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("absolute path: %w", err)
	}
	// WalkDir does not follow a symlinked root, so walk its target and report
	// paths under the configured root. Links below the root are not followed.
	walkRoot, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		return fmt.Errorf("stat corpus root: %w", err)
	}
	info, err := os.Stat(walkRoot)
	if err != nil {
		return fmt.Errorf("stat corpus root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("corpus root is not a directory: %s", absRoot)
	}
	return filepath.WalkDir(walkRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			if path == walkRoot {
				return walkErr
			}
			ld.skip(report, underRoot(absRoot, walkRoot, path), walkErr)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		// Symlinked directories are not descended into.
		if d.Type()&fs.ModeSymlink != 0 {
			if fi, statErr := os.Stat(path); statErr == nil && fi.IsDir() {
				return nil
			}
		}
		path = underRoot(absRoot, walkRoot, path)
		doc, readErr := readDocument(absRoot, path)
		if readErr != nil {
			ld.skip(report, path, readErr)
			return nil
		}
		report.Documents = append(report.Documents, doc)
		report.Bytes += doc.Size
		ld.logger.Debug("corpus file loaded",
			zap.String("path", path),
			zap.String("id", fileid.Short(doc.ID, 12)),
			zap.Int64("size", doc.Size))
		return nil
	})
}

// underRoot rewrites a path found under walkRoot to the same path under root.
func underRoot(root, walkRoot, path string) string {
	if root == walkRoot {
		return path
	}
	rel, err := filepath.Rel(walkRoot, path)
	if err != nil {
		return path
	}
	return filepath.Join(root, rel)
}

func (ld *Loader) skip(report *Report, path string, err error) {
	ld.logger.Warn("Could not read file", zap.String("path", path), zap.Error(err))
	report.Skipped = append(report.Skipped, SkippedFile{Path: path, Reason: err.Error()})
}

func readDocument(root, path string) (*models.Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text, err := decodeText(raw)
	if err != nil {
		return nil, err
	}
	return &models.Document{
		ID:      fileid.ForPath(root, path),
		Path:    path,
		Content: text,
		Size:    int64(len(raw)),
	}, nil
}

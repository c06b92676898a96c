package corpus

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

var (
	// ErrMissingCorpus is returned when neither a corpus directory nor its archive exists.
	ErrMissingCorpus = errors.New("corpus missing")
	// ErrUnsafeArchiveEntry is returned for archive entries that would land outside the destination.
	ErrUnsafeArchiveEntry = errors.New("unsafe archive entry")
)

// MissingCorpusError names the archive that was expected for a missing corpus directory.
type MissingCorpusError struct {
	Directory string
	Archive   string
}

func (e *MissingCorpusError) Error() string {
	return fmt.Sprintf("the zip file %s does not exist; please ensure the file is present (corpus directory %s not found)", e.Archive, e.Directory)
}

func (e *MissingCorpusError) Unwrap() error { return ErrMissingCorpus }

// ArchivePath returns the archive expected beside root.
func (ld *Loader) ArchivePath(root string) string {
	return filepath.Clean(root) + ld.archiveExt
}

// EnsureRoots makes sure every root exists as a directory. A missing root is
// extracted from its archive; if the archive is missing too, a
// *MissingCorpusError naming the archive is returned.
func (ld *Loader) EnsureRoots(ctx context.Context, roots []string) error {
	for _, root := range roots {
		info, err := os.Stat(root)
		if err == nil {
			if !info.IsDir() {
				return fmt.Errorf("corpus root is not a directory: %s", root)
			}
			continue
		}
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("stat corpus root: %w", err)
		}
		archive := ld.ArchivePath(root)
		if _, err := os.Stat(archive); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return &MissingCorpusError{Directory: root, Archive: archive}
			}
			return fmt.Errorf("stat corpus archive: %w", err)
		}
		n, err := extractZip(ctx, archive, root)
		if err != nil {
			return fmt.Errorf("extract %s: %w", archive, err)
		}
		ld.logger.Info("Extracted SDK", zap.String("archive", archive), zap.String("directory", root), zap.Int("files", n))
	}
	return nil
}

// extractZip unpacks archive into dest. Entries are first written to a
// sibling temporary directory which is renamed into place on success, so a
// failed extraction never leaves a half-populated dest behind.
func extractZip(ctx context.Context, archive, dest string) (int, error) {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return 0, err
	}
	defer r.Close()

	dest = filepath.Clean(dest)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return 0, err
	}
	tmp, err := os.MkdirTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".extract-*")
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = os.RemoveAll(tmp)
		}
	}()

	n := 0
	for _, f := range r.File {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		if !filepath.IsLocal(f.Name) {
			return n, fmt.Errorf("%w: %s", ErrUnsafeArchiveEntry, f.Name)
		}
		target := filepath.Join(tmp, f.Name)
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return n, err
			}
			continue
		}
		if err := writeEntry(f, target); err != nil {
			return n, fmt.Errorf("%s: %w", f.Name, err)
		}
		n++
	}
	if err := os.Rename(tmp, dest); err != nil {
		return n, err
	}
	committed = true
	return n, nil
}

func writeEntry(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	src, err := f.Open()
	if err != nil {
		return err
	}
	defer src.Close()
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

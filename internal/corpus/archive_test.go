package corpus

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeZip(t *testing.T, path string, entries map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	for name, body := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestEnsureRoots_existingDirectoryUntouched(t *testing.T) {
	root := t.TempDir()
	if err := NewLoader().EnsureRoots(context.Background(), []string{root}); err != nil {
		t.Fatal(err)
	}
}

func TestEnsureRoots_extractsArchive(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "sdk")
	writeZip(t, root+".zip", map[string]string{
		"src/Button.cs":   "class Button {}",
		"docs/readme.md":  "# SDK",
		"src/nested/x.cs": "x",
	})
	if err := NewLoader().EnsureRoots(context.Background(), []string{root}); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(root, "src", "Button.cs"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "class Button {}" {
		t.Errorf("content = %q", data)
	}
	report, err := NewLoader().Load(context.Background(), []string{root})
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Documents) != 3 {
		t.Errorf("documents = %d, want 3", len(report.Documents))
	}
	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if strings.Contains(e.Name(), ".extract-") {
			t.Errorf("temporary directory left behind: %s", e.Name())
		}
	}
}

func TestEnsureRoots_missingArchive(t *testing.T) {
	root := filepath.Join(t.TempDir(), "sdk")
	err := NewLoader().EnsureRoots(context.Background(), []string{root})
	if !errors.Is(err, ErrMissingCorpus) {
		t.Fatalf("err = %v, want ErrMissingCorpus", err)
	}
	var mce *MissingCorpusError
	if !errors.As(err, &mce) {
		t.Fatalf("err = %T, want *MissingCorpusError", err)
	}
	if mce.Archive != root+".zip" {
		t.Errorf("archive = %s, want %s", mce.Archive, root+".zip")
	}
	if !strings.Contains(err.Error(), root+".zip") {
		t.Errorf("message should name the archive: %s", err)
	}
}

func TestEnsureRoots_customExtension(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "sdk")
	writeZip(t, root+".pkg", map[string]string{"a.cs": "a"})
	if err := NewLoader(WithArchiveExt(".pkg")).EnsureRoots(context.Background(), []string{root}); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(root, "a.cs")); err != nil {
		t.Fatal(err)
	}
}

func TestEnsureRoots_rejectsZipSlip(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "sdk")
	writeZip(t, root+".zip", map[string]string{"../evil.cs": "boom"})
	err := NewLoader().EnsureRoots(context.Background(), []string{root})
	if !errors.Is(err, ErrUnsafeArchiveEntry) {
		t.Fatalf("err = %v, want ErrUnsafeArchiveEntry", err)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "evil.cs")); statErr == nil {
		t.Error("entry escaped destination")
	}
	if _, statErr := os.Stat(root); statErr == nil {
		t.Error("failed extraction must not leave the root in place")
	}
}

func TestEnsureRoots_rootIsFile(t *testing.T) {
	root := filepath.Join(t.TempDir(), "sdk")
	writeFile(t, root, []byte("not a dir"))
	if err := NewLoader().EnsureRoots(context.Background(), []string{root}); err == nil {
		t.Fatal("expected error for file root")
	}
}

// Package fileid derives stable document IDs for corpus files.
package fileid

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strings"
)

const prefix = "file:"

// ForPath returns the document ID for path under root. The ID hashes the
// slash-separated path relative to root plus the root's base name, so the
// same corpus extracted to different parent directories yields the same IDs.
// If path is not under root, the cleaned path itself is hashed.
func ForPath(root, path string) string {
	key := filepath.Clean(path)
	if rel, err := filepath.Rel(filepath.Clean(root), key); err == nil && !strings.HasPrefix(rel, "..") {
		key = filepath.Base(filepath.Clean(root)) + "/" + filepath.ToSlash(rel)
	}
	hash := sha256.Sum256([]byte(key))
	return prefix + hex.EncodeToString(hash[:])
}

// Short returns the first n hex characters of the ID, for log fields.
func Short(id string, n int) string {
	id = strings.TrimPrefix(id, prefix)
	if n <= 0 || len(id) <= n {
		return id
	}
	return id[:n]
}

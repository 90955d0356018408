// Package replacer performs literal, in-place string substitution in files.
package replacer

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/renameio/v2"
)

var (
	// ErrEmptyPattern is returned when asked to replace the empty string.
	ErrEmptyPattern = errors.New("replacement pattern is empty")
	// ErrMultiline is returned when old or new spans lines, which would change the line count.
	ErrMultiline = errors.New("replacement text must not contain line breaks")
)

// Replace substitutes every literal occurrence of old with new in content.
// It returns the transformed content and the number of substitutions.
func Replace(content []byte, old, new string) ([]byte, int) {
	if old == "" {
		return content, 0
	}
	n := bytes.Count(content, []byte(old))
	if n == 0 {
		return content, 0
	}
	return bytes.ReplaceAll(content, []byte(old), []byte(new)), n
}

// Validate reports whether old/new form a usable literal replacement pair.
func Validate(old, new string) error {
	if old == "" {
		return ErrEmptyPattern
	}
	if strings.ContainsAny(old, "\r\n") || strings.ContainsAny(new, "\r\n") {
		return ErrMultiline
	}
	return nil
}

// ReplaceInFile rewrites the file at path, replacing every occurrence of old with new.
// Files without an occurrence are not touched. The rewrite goes through a temporary
// file in the same directory that is renamed over the original, so a failure leaves
// the original content in place.
func ReplaceInFile(path, old, new string) (int, error) {
	if err := Validate(old, new); err != nil {
		return 0, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	if !info.Mode().IsRegular() {
		return 0, fmt.Errorf("%s is not a regular file", path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	replaced, n := Replace(content, old, new)
	if n == 0 {
		return 0, nil
	}

	if err := WriteFileAtomic(path, replaced, info.Mode().Perm()); err != nil {
		return 0, err
	}
	return n, nil
}

// WriteFileAtomic writes data to a temporary file and renames it over path, so
// readers see either the old or the new content. perm is applied as given,
// without the process umask.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	if err := renameio.WriteFile(path, data, perm, renameio.IgnoreUmask()); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

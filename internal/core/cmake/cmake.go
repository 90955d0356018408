// Package cmake reads the project declaration out of a CMakeLists.txt file.
// It does not parse CMake; it only looks for the first line carrying the
// project( marker.
package cmake

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/Masterminds/semver/v3"
)

// ProjectMarker is the substring that introduces a project declaration.
const ProjectMarker = "project("

// ErrNameNotFound is returned when no line carries a usable project declaration.
var ErrNameNotFound = errors.New("project name not found")

// Declaration is the project declaration found in a CMake file.
type Declaration struct {
	Name    string
	Version *semver.Version // nil when no VERSION keyword or it does not parse
	Line    int             // 1-based line number of the declaration
}

// ParseDeclaration scans r line by line and returns the first project declaration.
// The name runs from just after the marker up to the next whitespace, ')' or end of line.
func ParseDeclaration(r io.Reader) (*Declaration, error) {
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		pos := strings.Index(line, ProjectMarker)
		if pos == -1 {
			continue
		}

		rest := strings.TrimLeftFunc(line[pos+len(ProjectMarker):], unicode.IsSpace)
		end := strings.IndexFunc(rest, isNameDelimiter)
		if end == -1 {
			end = len(rest)
		}
		name := rest[:end]
		if name == "" {
			return nil, fmt.Errorf("%w: empty declaration on line %d", ErrNameNotFound, lineNo)
		}

		return &Declaration{
			Name:    name,
			Version: parseVersion(rest[end:]),
			Line:    lineNo,
		}, nil
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return nil, ErrNameNotFound
}

// ReadDeclaration opens the CMake file at path and parses its project declaration.
func ReadDeclaration(path string) (*Declaration, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	decl, err := ParseDeclaration(file)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return decl, nil
}

func isNameDelimiter(r rune) bool {
	return r == ')' || unicode.IsSpace(r)
}

// parseVersion looks for "VERSION <v>" in the remainder of the declaration line.
func parseVersion(rest string) *semver.Version {
	if i := strings.Index(rest, ")"); i != -1 {
		rest = rest[:i]
	}
	fields := strings.Fields(rest)
	for i := 0; i+1 < len(fields); i++ {
		if fields[i] != "VERSION" {
			continue
		}
		v, err := semver.NewVersion(fields[i+1])
		if err != nil {
			return nil
		}
		return v
	}
	return nil
}

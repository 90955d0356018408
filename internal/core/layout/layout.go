// Package layout describes which files of a plugin project carry the project name.
package layout

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the optional per-project layout file, looked up in the project root.
const FileName = "rename-plugin.toml"

// Role tells how a target path is resolved and which progress phase it belongs to.
type Role string

const (
	RoleCMake  Role = "cmake"
	RoleHeader Role = "header" // path is relative to the include directory
	RoleSource Role = "source"
	RoleTest   Role = "test"
)

// Roles lists the known roles in the order their phases run.
var Roles = []Role{RoleCMake, RoleHeader, RoleSource, RoleTest}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// Target is a single file whose content is rewritten during a rename.
type Target struct {
	Role Role   `toml:"role"`
	Path string `toml:"path"`
}

// Layout is the set of paths a rename touches.
type Layout struct {
	ConfigFile  string   `toml:"config_file"`
	IncludeRoot string   `toml:"include_root"`
	Targets     []Target `toml:"target"`
}

// Default returns the layout of the JUCE plugin template.
func Default() *Layout {
	return &Layout{
		ConfigFile:  "plugin/CMakeLists.txt",
		IncludeRoot: "plugin/include",
		Targets: []Target{
			{Role: RoleCMake, Path: "plugin/CMakeLists.txt"},
			{Role: RoleHeader, Path: "PluginEditor.h"},
			{Role: RoleHeader, Path: "PluginProcessor.h"},
			{Role: RoleHeader, Path: "Identifiers.h"},
			{Role: RoleSource, Path: "plugin/source/PluginEditor.cpp"},
			{Role: RoleSource, Path: "plugin/source/PluginProcessor.cpp"},
			{Role: RoleSource, Path: "plugin/source/Common.cpp"},
			{Role: RoleSource, Path: "plugin/source/Identifiers.cpp"},
			{Role: RoleTest, Path: "test/source/AudioProcessorTest.cpp"},
		},
	}
}

// IncludeDir returns the include directory for the given project name, relative to the project root.
func (l *Layout) IncludeDir(name string) string {
	return filepath.Join(filepath.FromSlash(l.IncludeRoot), name)
}

// Resolve returns the path of t relative to the project root when the project is called name.
func (l *Layout) Resolve(t Target, name string) string {
	if t.Role == RoleHeader {
		return filepath.Join(l.IncludeDir(name), filepath.FromSlash(t.Path))
	}
	return filepath.FromSlash(t.Path)
}

// Validate checks that every path is relative and stays inside the project root.
func (l *Layout) Validate() error {
	var errs []error
	if err := checkPath("config_file", l.ConfigFile); err != nil {
		errs = append(errs, err)
	}
	if err := checkPath("include_root", l.IncludeRoot); err != nil {
		errs = append(errs, err)
	}
	if len(l.Targets) == 0 {
		errs = append(errs, errors.New("no targets defined"))
	}

	seen := make(map[pathKey]int, len(l.Targets))
	for i, t := range l.Targets {
		if !t.Role.Valid() {
			errs = append(errs, fmt.Errorf("target %d: unknown role %q", i+1, t.Role))
		}
		if err := checkPath(fmt.Sprintf("target %d", i+1), t.Path); err != nil {
			errs = append(errs, err)
		}
		key := keyOf(t)
		if first, ok := seen[key]; ok {
			errs = append(errs, fmt.Errorf("target %d: %q is the same file as target %d", i+1, t.Path, first))
			continue
		}
		seen[key] = i + 1
	}
	return errors.Join(errs...)
}

// pathKey identifies the file a target points at, whatever its role.
// Header paths live below the include directory, all others below the root.
type pathKey struct {
	inInclude bool
	path      string
}

func keyOf(t Target) pathKey {
	return pathKey{
		inInclude: t.Role == RoleHeader,
		path:      filepath.Clean(filepath.FromSlash(t.Path)),
	}
}

func checkPath(field, p string) error {
	if p == "" {
		return fmt.Errorf("%s: path is empty", field)
	}
	if !filepath.IsLocal(filepath.FromSlash(p)) {
		return fmt.Errorf("%s: path %q must be relative and stay inside the project", field, p)
	}
	return nil
}

// Load reads and validates the layout file at path.
func Load(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var l Layout
	if err := toml.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := l.Validate(); err != nil {
		return nil, fmt.Errorf("invalid layout %s: %w", path, err)
	}
	return &l, nil
}

// ResolveFor picks the layout for the project in dir. An explicit path must exist;
// otherwise dir/rename-plugin.toml is used when present, falling back to Default.
// The second return value names where the layout came from.
func ResolveFor(dir, explicit string) (*Layout, string, error) {
	if explicit != "" {
		l, err := Load(explicit)
		if err != nil {
			return nil, "", err
		}
		return l, explicit, nil
	}

	path := filepath.Join(dir, FileName)
	l, err := Load(path)
	switch {
	case err == nil:
		return l, path, nil
	case errors.Is(err, os.ErrNotExist):
		return Default(), "built-in defaults", nil
	default:
		return nil, "", err
	}
}

// Write encodes the layout as TOML to path, overwriting any existing file.
func Write(path string, l *Layout) error {
	buf := new(bytes.Buffer)
	if err := toml.NewEncoder(buf).Encode(l); err != nil {
		return err
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	_, err = file.Write(buf.Bytes())
	return err
}

// Package renamer renames a plugin project: it moves the include directory and
// rewrites every target file of the layout, replacing the old project name with
// the new one.
//
// A rename runs in two stages. NewPlan checks every precondition and snapshots
// the target files without touching anything. Apply then performs the directory
// rename and the file rewrites. There is no rollback: if Apply fails halfway the
// returned *PartialError lists what was already changed.
package renamer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/nightconcept/rename-plugin/internal/core/cmake"
	"github.com/nightconcept/rename-plugin/internal/core/hasher"
	"github.com/nightconcept/rename-plugin/internal/core/layout"
	"github.com/nightconcept/rename-plugin/internal/core/replacer"
)

var (
	ErrInvalidName     = errors.New("invalid project name")
	ErrPathNotFound    = errors.New("path not found")
	ErrPathConflict    = errors.New("path already exists")
	ErrStale           = errors.New("file changed since the rename was planned")
	ErrDuplicateTarget = errors.New("file listed more than once")
)

// PlannedFile is one target file of a plan.
type PlannedFile struct {
	Target      layout.Target
	Path        string // relative to the root, before the include directory is renamed
	FinalPath   string // relative to the root, after the include directory is renamed
	Hash        string
	Occurrences int
}

// Plan is a validated rename that has not been applied yet.
type Plan struct {
	Root          string
	Layout        *layout.Layout
	Declaration   *cmake.Declaration
	OldName       string
	NewName       string
	OldIncludeDir string
	NewIncludeDir string
	Files         []PlannedFile
}

// Noop reports whether the project already carries the new name.
func (p *Plan) Noop() bool {
	return p.OldName == p.NewName
}

// FilesWithRole returns the planned files with the given role, in layout order.
func (p *Plan) FilesWithRole(role layout.Role) []PlannedFile {
	var out []PlannedFile
	for _, f := range p.Files {
		if f.Target.Role == role {
			out = append(out, f)
		}
	}
	return out
}

// Occurrences returns the total number of substitutions the plan will make.
func (p *Plan) Occurrences() int {
	total := 0
	for _, f := range p.Files {
		total += f.Occurrences
	}
	return total
}

// ValidateName rejects names that cannot be used as a directory name and a
// CMake project token.
func ValidateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: name is empty", ErrInvalidName)
	case name == "." || name == "..":
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	case strings.IndexFunc(name, unicode.IsSpace) != -1:
		return fmt.Errorf("%w: %q contains whitespace", ErrInvalidName, name)
	case strings.ContainsAny(name, `/\)`):
		return fmt.Errorf("%w: %q contains '/', '\\' or ')'", ErrInvalidName, name)
	}
	return nil
}

// Current reads the project declaration from the layout's configuration file.
func Current(root string, l *layout.Layout) (*cmake.Declaration, error) {
	configPath := filepath.Join(root, filepath.FromSlash(l.ConfigFile))
	decl, err := cmake.ReadDeclaration(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: configuration file %s: %w", ErrPathNotFound, configPath, err)
		}
		return nil, err
	}
	return decl, nil
}

// NewPlan reads the current project name and checks that renaming it to newName
// can be carried out. Nothing is modified.
func NewPlan(root string, l *layout.Layout, newName string) (*Plan, error) {
	if err := ValidateName(newName); err != nil {
		return nil, err
	}
	decl, err := Current(root, l)
	if err != nil {
		return nil, err
	}
	return planFrom(root, l, decl, newName)
}

func planFrom(root string, l *layout.Layout, decl *cmake.Declaration, newName string) (*Plan, error) {
	if err := ValidateName(decl.Name); err != nil {
		return nil, fmt.Errorf("declared in %s on line %d: %w", l.ConfigFile, decl.Line, err)
	}

	p := &Plan{
		Root:          root,
		Layout:        l,
		Declaration:   decl,
		OldName:       decl.Name,
		NewName:       newName,
		OldIncludeDir: l.IncludeDir(decl.Name),
		NewIncludeDir: l.IncludeDir(newName),
	}
	if p.Noop() {
		return p, nil
	}
	if err := replacer.Validate(p.OldName, p.NewName); err != nil {
		return nil, err
	}

	oldDir := filepath.Join(root, p.OldIncludeDir)
	info, err := os.Stat(oldDir)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("%w: include directory %s: %w", ErrPathNotFound, oldDir, err)
	case err != nil:
		return nil, err
	case !info.IsDir():
		return nil, fmt.Errorf("include directory %s is not a directory", oldDir)
	}
	if err := checkFree(filepath.Join(root, p.NewIncludeDir)); err != nil {
		return nil, err
	}

	seen := make(map[string]layout.Target, len(l.Targets))
	for _, t := range l.Targets {
		f := PlannedFile{
			Target:    t,
			Path:      l.Resolve(t, p.OldName),
			FinalPath: l.Resolve(t, p.NewName),
		}
		full := filepath.Join(root, f.Path)

		key := filepath.Clean(f.Path)
		if prev, ok := seen[key]; ok {
			return nil, fmt.Errorf("%w: %s target %q and %s target %q are both %s",
				ErrDuplicateTarget, prev.Role, prev.Path, t.Role, t.Path, full)
		}
		seen[key] = t

		info, err := os.Stat(full)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("%w: %s file %s: %w", ErrPathNotFound, t.Role, full, err)
			}
			return nil, err
		}
		if !info.Mode().IsRegular() {
			return nil, fmt.Errorf("%s file %s is not a regular file", t.Role, full)
		}

		content, err := os.ReadFile(full)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", full, err)
		}
		if f.Hash, err = hasher.CalculateSHA256(content); err != nil {
			return nil, err
		}
		_, f.Occurrences = replacer.Replace(content, p.OldName, p.NewName)
		p.Files = append(p.Files, f)
	}
	return p, nil
}

func checkFree(path string) error {
	_, err := os.Lstat(path)
	switch {
	case err == nil:
		return fmt.Errorf("%w: %s: %w", ErrPathConflict, path, os.ErrExist)
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return err
	}
}

// PartialError is returned by Apply when a failure happened after the project
// was already modified.
type PartialError struct {
	Err        error
	DirRenamed bool
	Done       []string // rewritten files, relative to the root
}

func (e *PartialError) Error() string {
	var b strings.Builder
	b.WriteString(e.Err.Error())
	if e.DirRenamed {
		b.WriteString("; the include directory was already renamed")
	}
	if len(e.Done) > 0 {
		fmt.Fprintf(&b, "; already updated: %s", strings.Join(e.Done, ", "))
	}
	return b.String()
}

func (e *PartialError) Unwrap() error { return e.Err }

// Result summarizes an applied plan.
type Result struct {
	Updated      []string // files that had at least one substitution
	Replacements int
}

var phaseLabels = map[layout.Role]string{
	layout.RoleCMake:  "Updating cmake file",
	layout.RoleHeader: "Updating header files",
	layout.RoleSource: "Updating source files",
	layout.RoleTest:   "Updating test files",
}

// Apply carries out the plan. Before anything is modified every file is checked
// against its snapshot and the new include directory is checked again.
func Apply(p *Plan, rep *Reporter) (*Result, error) {
	res := &Result{}
	if p.Noop() {
		return res, nil
	}

	for _, f := range p.Files {
		full := filepath.Join(p.Root, f.Path)
		hash, err := hasher.HashFile(full)
		if err != nil {
			return nil, fmt.Errorf("re-reading %s: %w", full, err)
		}
		if hash != f.Hash {
			return nil, fmt.Errorf("%w: %s", ErrStale, full)
		}
	}

	oldDir := filepath.Join(p.Root, p.OldIncludeDir)
	newDir := filepath.Join(p.Root, p.NewIncludeDir)
	if err := checkFree(newDir); err != nil {
		return nil, err
	}
	rep.Phase("Renaming include directory")
	rep.Detail("  %s -> %s", p.OldIncludeDir, p.NewIncludeDir)
	if err := os.Rename(oldDir, newDir); err != nil {
		return nil, fmt.Errorf("renaming %s to %s: %w", oldDir, newDir, err)
	}

	var done []string
	for _, role := range layout.Roles {
		files := p.FilesWithRole(role)
		if len(files) == 0 {
			continue
		}

		rep.Phase("%s", phaseLabels[role])
		for _, f := range files {
			n, err := replacer.ReplaceInFile(filepath.Join(p.Root, f.FinalPath), p.OldName, p.NewName)
			if err != nil {
				return nil, &PartialError{
					Err:        fmt.Errorf("updating %s: %w", f.FinalPath, err),
					DirRenamed: true,
					Done:       done,
				}
			}
			rep.Detail("  %s: %d replacement(s)", f.FinalPath, n)
			done = append(done, f.FinalPath)
			if n > 0 {
				res.Updated = append(res.Updated, f.FinalPath)
				res.Replacements += n
			}
		}
	}
	return res, nil
}

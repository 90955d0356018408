package renamer

import (
	"github.com/nightconcept/rename-plugin/internal/core/layout"
)

// Options tune a Run.
type Options struct {
	// DryRun validates and prints the plan without changing anything.
	DryRun bool
}

// Run renames the project in root to newName, reporting progress on rep.
// The returned Result is nil for dry runs.
func Run(root string, l *layout.Layout, newName string, opts Options, rep *Reporter) (*Plan, *Result, error) {
	if err := ValidateName(newName); err != nil {
		return nil, nil, err
	}

	rep.Phase("Changing plugin's name to %s. . .", newName)
	decl, err := Current(root, l)
	if err != nil {
		return nil, nil, err
	}
	rep.Phase("Found previous name '%s'. . .", decl.Name)

	plan, err := planFrom(root, l, decl, newName)
	if err != nil {
		return nil, nil, err
	}
	if plan.Noop() {
		rep.Warn("Project is already named '%s', nothing to change.", newName)
		return plan, &Result{}, nil
	}

	if opts.DryRun {
		Describe(plan, rep)
		return plan, nil, nil
	}

	res, err := Apply(plan, rep)
	if err != nil {
		return plan, nil, err
	}
	rep.Success("Name change finished!")
	return plan, res, nil
}

// Describe prints what Apply would do with the plan.
func Describe(p *Plan, rep *Reporter) {
	rep.Warn("Dry run, nothing will be changed.")
	rep.Item("rename %s -> %s", p.OldIncludeDir, p.NewIncludeDir)
	for _, f := range p.Files {
		rep.Item("update %-6s %s (%d occurrence(s))", f.Target.Role, f.FinalPath, f.Occurrences)
	}
	rep.Item("%d replacement(s) in %d file(s)", p.Occurrences(), len(p.Files))
}

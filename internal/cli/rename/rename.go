// Package rename implements the root action of rename-plugin: renaming the
// plugin project found in the working directory.
package rename

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/nightconcept/rename-plugin/internal/core/cmake"
	"github.com/nightconcept/rename-plugin/internal/core/layout"
	"github.com/nightconcept/rename-plugin/internal/core/renamer"
)

// ArgsUsage is shown in the help output for the positional argument.
const ArgsUsage = "<new_name>"

// Flags returns the flags understood by the rename action.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "dir",
			Aliases: []string{"C"},
			Usage:   "Project root containing plugin/ and test/",
			Value:   ".",
		},
		&cli.StringFlag{
			Name:  "layout",
			Usage: "Layout file listing the files to rewrite (default: <dir>/" + layout.FileName + " if present)",
		},
		&cli.BoolFlag{
			Name:    "dry-run",
			Aliases: []string{"n"},
			Usage:   "Check the project and print what would change without changing it",
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "Enable verbose output",
		},
		&cli.BoolFlag{
			Name:  "no-color",
			Usage: "Disable colored output",
		},
	}
}

// Action renames the project to the name given as the only argument.
func Action(c *cli.Context) error {
	if c.NArg() < 1 {
		_ = cli.ShowAppHelp(c)
		return cli.Exit("Error: <new_name> argument is required.", 1)
	}
	if c.NArg() > 1 {
		return cli.Exit(fmt.Sprintf("Error: expected a single <new_name> argument, got %d.", c.NArg()), 1)
	}
	newName := c.Args().First()

	if c.Bool("no-color") {
		color.NoColor = true
	}

	root := c.String("dir")
	l, source, err := layout.ResolveFor(root, c.String("layout"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: Failed to load layout: %v", err), 1)
	}

	rep := renamer.NewReporter(c.App.Writer, c.Bool("verbose"))
	rep.Detail("Using layout from %s", source)

	opts := renamer.Options{DryRun: c.Bool("dry-run")}
	if _, _, err := renamer.Run(root, l, newName, opts, rep); err != nil {
		return cli.Exit(errorMessage(err, l), 1)
	}
	return nil
}

func errorMessage(err error, l *layout.Layout) string {
	var partial *renamer.PartialError
	switch {
	case errors.Is(err, renamer.ErrInvalidName):
		return fmt.Sprintf("Error: %v.", err)
	case errors.Is(err, cmake.ErrNameNotFound):
		return fmt.Sprintf("Error: no %s<name> ...) declaration found in %s: %v", cmake.ProjectMarker, l.ConfigFile, err)
	case errors.Is(err, renamer.ErrPathConflict):
		return fmt.Sprintf("Error: %v. Remove it or choose another name.", err)
	case errors.Is(err, renamer.ErrStale):
		return fmt.Sprintf("Error: %v. Nothing was changed; run the rename again.", err)
	case errors.As(err, &partial):
		return fmt.Sprintf("Error: rename stopped partway and the project is inconsistent: %v", err)
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}

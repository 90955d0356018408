package info

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/nightconcept/rename-plugin/internal/core/layout"
	"github.com/nightconcept/rename-plugin/internal/core/renamer"
	"github.com/nightconcept/rename-plugin/internal/core/replacer"
)

// targetDisplayInfo holds what is shown for one target file.
type targetDisplayInfo struct {
	Role        layout.Role
	Path        string
	Exists      bool
	Occurrences int
	Status      string
}

// InfoCmd shows the current project name and the state of every target file.
var InfoCmd = &cli.Command{
	Name:  "info",
	Usage: "Displays the current plugin name and the files a rename would touch",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "dir",
			Aliases: []string{"C"},
			Usage:   "Project root containing plugin/ and test/",
			Value:   ".",
		},
		&cli.StringFlag{
			Name:  "layout",
			Usage: "Layout file listing the files to rewrite",
		},
	},
	Action: func(c *cli.Context) error {
		root := c.String("dir")
		l, source, err := layout.ResolveFor(root, c.String("layout"))
		if err != nil {
			return cli.Exit(fmt.Sprintf("Error: Failed to load layout: %v", err), 1)
		}

		decl, err := renamer.Current(root, l)
		if err != nil {
			return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
		}

		absRoot, err := filepath.Abs(root)
		if err != nil {
			absRoot = root
		}

		nameColor := color.New(color.FgMagenta, color.Bold, color.Underline).SprintFunc()
		versionColor := color.New(color.FgMagenta).SprintFunc()
		pathColor := color.New(color.FgHiBlack, color.Bold, color.Underline).SprintFunc()
		headerColor := color.New(color.FgCyan, color.Bold).SprintFunc()
		roleColor := color.New(color.FgWhite).SprintFunc()
		okColor := color.New(color.FgGreen).SprintFunc()
		badColor := color.New(color.FgRed).SprintFunc()
		dimColor := color.New(color.FgHiBlack).SprintFunc()

		out := c.App.Writer
		version := "unversioned"
		if decl.Version != nil {
			version = decl.Version.String()
		}
		fmt.Fprintf(out, "%s@%s %s\n", nameColor(decl.Name), versionColor(version), pathColor(absRoot))
		fmt.Fprintf(out, "%s %s\n", dimColor("layout:"), dimColor(source))
		fmt.Fprintln(out)

		includeDir := l.IncludeDir(decl.Name)
		includeStatus := okColor("ok")
		if fi, err := os.Stat(filepath.Join(root, includeDir)); err != nil || !fi.IsDir() {
			includeStatus = badColor("missing")
		}
		fmt.Fprintf(out, "%s %s %s\n", headerColor("include:"), includeDir, includeStatus)
		fmt.Fprintln(out)

		fmt.Fprintln(out, headerColor("targets:"))
		for _, t := range l.Targets {
			d := describeTarget(c.App.ErrWriter, root, l, t, decl.Name)
			status := okColor(d.Status)
			if !d.Exists {
				status = badColor(d.Status)
			}
			fmt.Fprintf(out, "%-8s %s %s\n", roleColor(d.Role), d.Path, status)
		}
		return nil
	},
}

// describeTarget reports read failures other than a missing file on errW.
func describeTarget(errW io.Writer, root string, l *layout.Layout, t layout.Target, name string) targetDisplayInfo {
	d := targetDisplayInfo{Role: t.Role, Path: l.Resolve(t, name)}
	content, err := os.ReadFile(filepath.Join(root, d.Path))
	switch {
	case os.IsNotExist(err):
		d.Status = "missing"
	case err != nil:
		d.Status = "unreadable"
		warn(errW, d.Path, err)
	default:
		d.Exists = true
		_, d.Occurrences = replacer.Replace(content, name, name)
		d.Status = fmt.Sprintf("%d occurrence(s)", d.Occurrences)
	}
	return d
}

func warn(w io.Writer, path string, err error) {
	fmt.Fprintf(w, "Warning: could not read %s: %v\n", path, err)
}

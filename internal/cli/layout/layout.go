// Package layout holds the 'layout' CLI command, which manages the per-project
// layout file.
package layout

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	corelayout "github.com/nightconcept/rename-plugin/internal/core/layout"
)

// NewLayoutCommand returns the 'layout' command and its subcommands.
func NewLayoutCommand() *cli.Command {
	return &cli.Command{
		Name:  "layout",
		Usage: "Manage the " + corelayout.FileName + " file listing the files a rename rewrites",
		Subcommands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Write the default layout to " + corelayout.FileName,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "dir",
						Aliases: []string{"C"},
						Usage:   "Project root to write the layout file into",
						Value:   ".",
					},
					&cli.BoolFlag{
						Name:    "force",
						Aliases: []string{"f"},
						Usage:   "Overwrite an existing layout file",
					},
				},
				Action: initAction,
			},
		},
	}
}

func initAction(c *cli.Context) error {
	path := filepath.Join(c.String("dir"), corelayout.FileName)

	if _, err := os.Stat(path); err == nil && !c.Bool("force") {
		return cli.Exit(fmt.Sprintf("Error: %s already exists. Use --force to overwrite it.", path), 1)
	} else if err != nil && !os.IsNotExist(err) {
		return cli.Exit(fmt.Sprintf("Error: could not check %s: %v", path, err), 1)
	}

	if err := corelayout.Write(path, corelayout.Default()); err != nil {
		return cli.Exit(fmt.Sprintf("Error: Failed to write %s: %v", path, err), 1)
	}

	fmt.Fprintf(c.App.Writer, "Wrote default layout to %s\n", path)
	return nil
}

package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/nightconcept/rename-plugin/internal/cli/info"
	"github.com/nightconcept/rename-plugin/internal/cli/layout"
	"github.com/nightconcept/rename-plugin/internal/cli/rename"
	"github.com/nightconcept/rename-plugin/internal/cli/self"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "v0.1.0"

func main() {
	app := &cli.App{
		Name:      "rename-plugin",
		Usage:     "Rename a JUCE plugin project created from the plugin template",
		UsageText: "rename-plugin [options] <new_name>\nrename-plugin <command> [options]",
		ArgsUsage: rename.ArgsUsage,
		Version:   version,
		Flags:     rename.Flags(),
		Action:    rename.Action,
		Commands: []*cli.Command{
			info.InfoCmd,
			layout.NewLayoutCommand(),
			self.NewSelfCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

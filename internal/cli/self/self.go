package self

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/creativeprojects/go-selfupdate"
	"github.com/urfave/cli/v2"
)

// DefaultRepository is where release binaries of rename-plugin are published.
const DefaultRepository = "nightconcept/rename-plugin"

// NewSelfCommand creates the command for managing the rename-plugin binary itself.
func NewSelfCommand() *cli.Command {
	return &cli.Command{
		Name:  "self",
		Usage: "Manage the rename-plugin application itself",
		Subcommands: []*cli.Command{
			{
				Name:  "update",
				Usage: "Update rename-plugin to the latest version",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "yes",
						Aliases: []string{"y"},
						Usage:   "Automatically confirm the update",
					},
					&cli.BoolFlag{
						Name:  "check",
						Usage: "Check for available updates without installing",
					},
					&cli.StringFlag{
						Name:  "source",
						Usage: "Custom GitHub update source as 'owner/repo'",
					},
					&cli.BoolFlag{
						Name:  "verbose",
						Usage: "Enable verbose output",
					},
				},
				Action: updateAction,
			},
		},
	}
}

// parseCurrentVersion accepts versions with or without a leading 'v'.
func parseCurrentVersion(version string) (*semver.Version, error) {
	v, err := semver.NewVersion(strings.TrimPrefix(version, "v"))
	if err != nil {
		return nil, fmt.Errorf("parsing current version %q: %w", version, err)
	}
	return v, nil
}

// repositorySlug validates an 'owner/repo' source, falling back to DefaultRepository.
func repositorySlug(source string) (string, error) {
	if source == "" {
		return DefaultRepository, nil
	}
	parts := strings.Split(source, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", fmt.Errorf("invalid --source format, expected 'owner/repo', got: %s", source)
	}
	return source, nil
}

// confirm asks a yes/no question and reports whether the answer was yes.
func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s (y/N): ", question)
	input, _ := bufio.NewReader(in).ReadString('\n')
	return strings.TrimSpace(strings.ToLower(input)) == "y"
}

func updateAction(c *cli.Context) error {
	out := c.App.Writer
	verbose := c.Bool("verbose")
	currentVersionStr := c.App.Version

	currentSemVer, err := parseCurrentVersion(currentVersionStr)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v. Ensure version is like vX.Y.Z or X.Y.Z.", err), 1)
	}
	if verbose {
		fmt.Fprintf(out, "rename-plugin current version: %s\n", currentSemVer)
	}

	repoSlug, err := repositorySlug(c.String("source"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v.", err), 1)
	}
	if verbose {
		fmt.Fprintf(out, "Using GitHub source: %s\n", repoSlug)
	}

	ghSource, err := selfupdate.NewGitHubSource(selfupdate.GitHubConfig{})
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error creating GitHub source: %v", err), 1)
	}
	updater, err := selfupdate.NewUpdater(selfupdate.Config{Source: ghSource})
	if err != nil {
		return cli.Exit(fmt.Sprintf("Failed to initialize updater: %v", err), 1)
	}

	if verbose {
		fmt.Fprintln(out, "Checking for latest version...")
	}
	latestRelease, found, err := updater.DetectLatest(c.Context, selfupdate.ParseSlug(repoSlug))
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error detecting latest version: %v", err), 1)
	}
	if !found || !latestRelease.GreaterThan(currentSemVer.String()) {
		fmt.Fprintf(out, "Current version %s is already the latest.\n", currentVersionStr)
		return nil
	}
	if verbose && latestRelease.ReleaseNotes != "" {
		fmt.Fprintf(out, "Release Notes:\n%s\n", latestRelease.ReleaseNotes)
	}

	fmt.Fprintf(out, "New version available: %s (current: %s)\n", latestRelease.Version(), currentVersionStr)
	if c.Bool("check") {
		return nil
	}

	if !c.Bool("yes") && !confirm(c.App.Reader, out, "Do you want to update?") {
		fmt.Fprintln(out, "Update cancelled.")
		return nil
	}

	execPath, err := os.Executable()
	if err != nil {
		return cli.Exit(fmt.Sprintf("Could not get executable path: %v", err), 1)
	}
	fmt.Fprintf(out, "Updating to %s...\n", latestRelease.Version())
	if err := updater.UpdateTo(c.Context, latestRelease, execPath); err != nil {
		return cli.Exit(fmt.Sprintf("Failed to update: %v", err), 1)
	}

	fmt.Fprintf(out, "Successfully updated to version %s.\n", latestRelease.Version())
	return nil
}

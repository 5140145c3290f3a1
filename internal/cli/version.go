package cli

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/tcnksm/go-latest"

	"github.com/company/ai-scaffold/internal/exitcodes"
)

func (a *App) newVersionCmd() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runVersion(cmd.Context(), check)
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "check GitHub for a newer release")
	return cmd
}

func (a *App) runVersion(ctx context.Context, check bool) error {
	a.output.Println("ai-scaffold %s (commit %s, built %s)", a.version, a.commit, a.date)
	a.output.Println("template %s", a.catalog.TemplateVersion)

	if !check {
		return nil
	}
	if a.version == "dev" {
		a.output.Warning("Development build, skipping release check")
		return nil
	}

	githubTag := &latest.GithubTag{
		Owner:      "company",
		Repository: "ai-scaffold",
	}
	res, err := latest.Check(githubTag, a.version)
	if err != nil {
		return &ExitError{Code: exitcodes.NetworkError, Message: "release check failed: " + err.Error()}
	}

	if res.Outdated {
		a.output.Warning("A new version is available: %s (you have %s)", res.Current, a.version)
		a.output.Info("Download it from https://github.com/company/ai-scaffold/releases")
		return nil
	}
	a.output.Success("You are using the latest version: %s", a.version)
	return nil
}

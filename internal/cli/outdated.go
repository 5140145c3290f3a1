package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/company/ai-scaffold/internal/answers"
	"github.com/company/ai-scaffold/internal/catalog"
	"github.com/company/ai-scaffold/internal/detect"
	"github.com/company/ai-scaffold/internal/exitcodes"
	"github.com/company/ai-scaffold/internal/registry"
)

func (a *App) newOutdatedCmd() *cobra.Command {
	var fullChangelog bool

	cmd := &cobra.Command{
		Use:   "outdated [root]",
		Short: "Show whether a newer template version is published",
		Long:  "Compare the project's template version against the template index to show available updates.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runOutdated(cmd.Context(), args, fullChangelog)
		},
	}

	cmd.Flags().BoolVar(&fullChangelog, "changelog", false, "print the template's full CHANGELOG.md")
	return cmd
}

func (a *App) runOutdated(ctx context.Context, args []string, fullChangelog bool) error {
	root, err := a.resolveRoot(args)
	if err != nil {
		return err
	}
	local, err := a.localTemplateVersion(root)
	if err != nil {
		return err
	}

	client := a.newRegistryClient()
	u, err := client.Check(ctx, catalog.TemplateName, local)
	switch {
	case errors.Is(err, registry.ErrInvalidLocalVersion):
		return &ExitError{Code: exitcodes.ConfigError, Message: err.Error()}
	case err != nil:
		return &ExitError{Code: exitcodes.NetworkError, Message: err.Error()}
	}

	a.output.Table(
		[]string{"Template", "Local", "Latest", "Status"},
		[][]string{{u.Template, u.Local, u.Latest, u.Status.String()}},
	)

	if u.Status == registry.Outdated {
		if u.ChangesErr != nil {
			a.output.Warning("Changelog unavailable: %v", u.ChangesErr)
		} else {
			a.output.Info("")
			for _, c := range u.Changes {
				a.output.Title(fmt.Sprintf("%s (%s)", c.Version, c.Date))
				for _, n := range c.Notes {
					a.output.Println("  - %s", n)
				}
			}
		}
		a.output.Info("")
		a.output.Info("See docs/template_updates.md to pull the changes into this project.")
	} else {
		a.output.Info("")
		a.output.Success("Template is up to date")
	}

	if fullChangelog {
		data, dlErr := client.Changelog(ctx, catalog.TemplateName)
		if dlErr != nil {
			return &ExitError{Code: exitcodes.NetworkError, Message: dlErr.Error()}
		}
		a.output.Info("")
		a.output.Println("%s", strings.TrimRight(string(data), "\n"))
	}

	return nil
}

// localTemplateVersion reads the version from .template-version, falling
// back to the one recorded in the context side-file.
func (a *App) localTemplateVersion(root string) (string, error) {
	p, err := detect.Describe(root)
	if err != nil {
		return "", &ExitError{Code: exitcodes.FilesystemError, Message: err.Error()}
	}
	if p.TemplateVersion != "" {
		return p.TemplateVersion, nil
	}

	fs, err := a.openRoot(root)
	if err != nil {
		return "", err
	}
	if rec, loadErr := answers.Load(fs); loadErr == nil && rec.TemplateVersion != "" {
		return rec.TemplateVersion, nil
	}
	return "", &ExitError{
		Code:    exitcodes.ConfigError,
		Message: fmt.Sprintf("no template version recorded in %s", root),
	}
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/company/ai-scaffold/internal/answers"
	"github.com/company/ai-scaffold/internal/exitcodes"
	"github.com/company/ai-scaffold/internal/filemanager"
	"github.com/company/ai-scaffold/internal/render"
	"github.com/company/ai-scaffold/internal/ui"
)

type generateOptions struct {
	from        string
	interactive bool
	noPrune     bool
	force       bool
	features    *featureFlags
}

func (a *App) newGenerateCmd() *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate <output-dir>",
		Short: "Generate a new project and prune the features you turned off",
		Long: "Writes every path of the full layout, saves the answers to " + answers.ContextFile + "\n" +
			"and then removes the paths of disabled features. Unset options take their defaults.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runGenerate(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.from, "from", "", "read answers from a JSON or YAML file")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "prompt for answers and features")
	cmd.Flags().BoolVar(&opts.noPrune, "no-prune", false, "keep the full layout; run prune later")
	cmd.Flags().BoolVar(&opts.force, "force", false, "generate into a non-empty directory")
	opts.features = a.addFeatureFlags(cmd.Flags(), true)
	return cmd
}

func (a *App) runGenerate(ctx context.Context, dir string, opts *generateOptions) error {
	ans, err := a.collectAnswers(opts)
	if err != nil {
		return err
	}
	if err := answers.Validate(ans, a.catalog); err != nil {
		return &ExitError{Code: exitcodes.UsageError, Message: err.Error()}
	}

	fs, err := filemanager.CreateRoot(dir)
	if err != nil {
		return &ExitError{Code: exitcodes.FilesystemError, Message: err.Error()}
	}
	empty, err := filemanager.IsEmptyDir(fs)
	if err != nil {
		return &ExitError{Code: exitcodes.FilesystemError, Message: err.Error()}
	}
	if !empty && !opts.force && opts.interactive && ui.Interactive() {
		confirmed, confirmErr := ui.Confirm(fmt.Sprintf("%s is not empty. Generate into it anyway?", dir))
		if confirmErr != nil {
			return fmt.Errorf("prompt: %w", confirmErr)
		}
		opts.force = confirmed
	}
	if !empty && !opts.force {
		return &ExitError{
			Code:    exitcodes.UsageError,
			Message: fmt.Sprintf("%s is not empty; use --force to generate into it", dir),
		}
	}

	full := ans.Superset(a.catalog)
	a.debugf("generating with flags on: %v", full.EnabledFlags())

	var result *filemanager.GenerateResult
	err = ui.WithSpinner("Generating project...", func() error {
		var genErr error
		result, genErr = filemanager.NewGenerator(fs, a.catalog).Generate(full)
		return genErr
	})
	if err != nil {
		return generateExitError(err)
	}
	a.output.Success("Generated %d files and %d directories in %s", len(result.Files), len(result.Dirs), dir)

	rec := &answers.Record{
		TemplateVersion: a.catalog.TemplateVersion,
		Answers:         ans,
		Generated:       result.Hashes,
	}
	if err := answers.Save(fs, rec); err != nil {
		return &ExitError{Code: exitcodes.FilesystemError, Message: err.Error()}
	}
	a.debugf("saved %s", answers.ContextFile)

	if opts.noPrune {
		a.output.Info("")
		a.output.Info("Skipped pruning. Run 'ai-scaffold prune %s' to remove disabled features.", dir)
		return nil
	}

	loaded, err := a.loadContext(fs, ans)
	if err != nil {
		return err
	}
	report, err := a.pruneTree(fs, loaded)
	if err != nil {
		return err
	}
	a.printPruneReport(report)
	if off := loaded.DisabledFlags(); len(off) > 0 {
		a.output.Info("Disabled features: %s", strings.Join(off, ", "))
	}
	a.printNextSteps(dir)

	if !report.OK() {
		return &ExitError{
			Code:    exitcodes.FilesystemError,
			Message: fmt.Sprintf("%d paths could not be pruned", len(report.Failures)),
		}
	}
	return nil
}

// collectAnswers merges, in increasing priority: catalog defaults, the
// --from file, command-line options and interactive answers.
func (a *App) collectAnswers(opts *generateOptions) (*answers.Answers, error) {
	ans := answers.Defaults(a.catalog)

	if opts.from != "" {
		data, err := os.ReadFile(opts.from)
		if err != nil {
			return nil, &ExitError{Code: exitcodes.ConfigError, Message: fmt.Sprintf("reading %s: %v", opts.from, err)}
		}
		fromFile, err := answers.ParseBlob(a.catalog, data)
		if err != nil {
			return nil, &ExitError{Code: exitcodes.ConfigError, Message: fmt.Sprintf("%s: %v", opts.from, err)}
		}
		ans = fromFile.Complete(a.catalog)
	}

	opts.features.apply(ans)

	if opts.interactive {
		if !ui.Interactive() {
			a.output.Warning("Not running in a terminal, using options and defaults")
			return ans, nil
		}
		if err := a.promptAnswers(ans); err != nil {
			return nil, err
		}
	}
	return ans, nil
}

func (a *App) promptAnswers(ans *answers.Answers) error {
	questions := []ui.Question{
		{Title: "Repository name", Value: &ans.RepoName},
		{Title: "Python package name", Value: &ans.PackageName},
		{Title: "Project description", Value: &ans.Description},
	}
	if err := ui.AskAll(questions); err != nil {
		return fmt.Errorf("prompt: %w", err)
	}

	options := make([]ui.FeatureOption, 0, len(a.catalog.Flags))
	for _, f := range a.catalog.Flags {
		options = append(options, ui.FeatureOption{
			Name:        f.Name,
			Description: f.Help,
			Selected:    ans.Lookup(f.Name),
		})
	}
	selected, err := ui.SelectFeatures(options)
	if err != nil {
		return fmt.Errorf("prompt: %w", err)
	}

	chosen := make(map[string]bool, len(selected))
	for _, name := range selected {
		chosen[name] = true
	}
	for _, f := range a.catalog.Flags {
		ans.Flags[f.Name] = chosen[f.Name]
	}
	return nil
}

func generateExitError(err error) error {
	var writeErr *filemanager.WriteError
	if errors.As(err, &writeErr) {
		return &ExitError{Code: exitcodes.FilesystemError, Message: err.Error()}
	}
	var tokenErr *render.UnresolvedPlaceholderError
	if errors.As(err, &tokenErr) {
		return &ExitError{Code: exitcodes.ConfigError, Message: err.Error()}
	}
	return err
}

func (a *App) printNextSteps(dir string) {
	a.output.Info("")
	a.output.Title("Next steps")
	a.output.Info("  cd %s", dir)
	a.output.Info("  git init")
	a.output.Info("  poetry install")
	a.output.Info("  make dev-up")
}

package cli

import (
	"context"
	"fmt"

	billy "github.com/go-git/go-billy/v5"
	"github.com/spf13/cobra"

	"github.com/company/ai-scaffold/internal/answers"
	"github.com/company/ai-scaffold/internal/exitcodes"
	"github.com/company/ai-scaffold/internal/filemanager"
	"github.com/company/ai-scaffold/internal/injector"
	"github.com/company/ai-scaffold/internal/plan"
	"github.com/company/ai-scaffold/internal/ui"
)

func (a *App) newPruneCmd() *cobra.Command {
	var dryRun bool
	var features *featureFlags

	cmd := &cobra.Command{
		Use:   "prune [root]",
		Short: "Remove the paths of disabled features from a generated project",
		Long: "Reads the answers from $" + answers.EnvContext + ", the file named by $" + answers.EnvContextFile + "\n" +
			"or " + answers.ContextFile + " and deletes what the disabled features own.\n" +
			"Options override the loaded answers. Features the answers do not mention are kept.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runPrune(cmd.Context(), args, features, dryRun)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list what would be removed without deleting anything")
	features = a.addFeatureFlags(cmd.Flags(), false)
	return cmd
}

func (a *App) runPrune(ctx context.Context, args []string, features *featureFlags, dryRun bool) error {
	root, err := a.resolveRoot(args)
	if err != nil {
		return err
	}
	fs, err := a.openRoot(root)
	if err != nil {
		return err
	}

	ans, err := a.loadContext(fs, nil)
	if err != nil {
		return err
	}
	if features.changed() {
		features.apply(ans)
		a.debugf("answers overridden from the command line")
	}

	if dryRun {
		a.printDeletions(fs, ans)
		return nil
	}

	report, err := a.pruneTree(fs, ans)
	if err != nil {
		return err
	}
	a.printPruneReport(report)

	if !report.OK() {
		return &ExitError{
			Code:    exitcodes.FilesystemError,
			Message: fmt.Sprintf("%d paths could not be pruned", len(report.Failures)),
		}
	}
	return nil
}

// pruneTree prunes fs for ans, refreshes the feature blocks and records
// the answers and the hashes of what is left.
func (a *App) pruneTree(fs billy.Filesystem, ans *answers.Answers) (*filemanager.PruneReport, error) {
	var report *filemanager.PruneReport
	err := ui.WithSpinner("Pruning disabled features...", func() error {
		report = filemanager.NewPruner(fs, a.catalog).Prune(ans)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := injector.InjectAll(fs, a.catalog, ans, injector.DefaultTargets()); err != nil {
		return report, &ExitError{Code: exitcodes.FilesystemError, Message: err.Error()}
	}

	hashes, err := filemanager.HashTree(fs)
	if err != nil {
		return report, &ExitError{Code: exitcodes.FilesystemError, Message: err.Error()}
	}

	rec, err := answers.Load(fs)
	if err != nil {
		a.debugf("starting a new %s: %v", answers.ContextFile, err)
		rec = &answers.Record{TemplateVersion: a.catalog.TemplateVersion}
	}
	rec.Answers = ans
	rec.Generated = hashes
	if err := answers.Save(fs, rec); err != nil {
		return report, &ExitError{Code: exitcodes.FilesystemError, Message: err.Error()}
	}
	return report, nil
}

func (a *App) printPruneReport(report *filemanager.PruneReport) {
	if len(report.Removed) == 0 {
		a.output.Success("Nothing to prune")
	} else {
		a.output.Success("Removed %d paths", len(report.Removed))
		for _, p := range report.Removed {
			a.output.Dim("  - %s", p)
		}
	}
	if len(report.Collapsed) > 0 {
		a.output.Success("Removed %d empty directories", len(report.Collapsed))
		for _, p := range report.Collapsed {
			a.output.Dim("  - %s/", p)
		}
	}
	for _, p := range report.Missing {
		a.debugf("already absent: %s", p)
	}
	for _, flag := range report.Skipped {
		a.debugf("kept: %s", flag)
	}
	for _, f := range report.Failures {
		a.output.Warning("%v", f)
	}
}

func (a *App) printDeletions(fs billy.Filesystem, ans *answers.Answers) {
	a.output.Table([]string{"FLAG", "VALUE"}, flagSummary(a.catalog, ans))
	a.output.Info("")

	deletions := plan.Deletions(a.catalog, ans)
	if len(deletions) == 0 {
		a.output.Info("Nothing would be removed")
		return
	}

	rows := make([][]string, 0, len(deletions))
	for _, d := range deletions {
		status := "remove"
		if d.Err != nil {
			status = d.Err.Error()
		} else if _, err := fs.Lstat(d.Path); err != nil {
			status = "absent"
		}
		path := d.Path
		if path == "" {
			path = d.Template
		}
		rows = append(rows, []string{d.Flag, path, status})
	}
	a.output.Table([]string{"FLAG", "PATH", "ACTION"}, rows)
}

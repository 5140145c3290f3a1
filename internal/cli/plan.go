package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/company/ai-scaffold/internal/answers"
	"github.com/company/ai-scaffold/internal/exitcodes"
	"github.com/company/ai-scaffold/internal/plan"
)

func (a *App) newPlanCmd() *cobra.Command {
	var filesOnly bool
	var features *featureFlags

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the tree a set of answers produces, without writing anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runPlan(cmd.Context(), features, filesOnly)
		},
	}

	cmd.Flags().BoolVar(&filesOnly, "files", false, "list files only")
	features = a.addFeatureFlags(cmd.Flags(), true)
	return cmd
}

func (a *App) runPlan(ctx context.Context, features *featureFlags, filesOnly bool) error {
	ans := answers.Defaults(a.catalog)
	features.apply(ans)
	if err := answers.Validate(ans, a.catalog); err != nil {
		return &ExitError{Code: exitcodes.UsageError, Message: err.Error()}
	}

	pruned, err := plan.Pruned(a.catalog, ans)
	if err != nil {
		return &ExitError{Code: exitcodes.ConfigError, Message: err.Error()}
	}
	direct, err := plan.Direct(a.catalog, ans)
	if err != nil {
		return &ExitError{Code: exitcodes.ConfigError, Message: err.Error()}
	}

	paths := pruned.Paths()
	if filesOnly {
		paths = pruned.Files()
	}
	for _, p := range paths {
		if pruned.IsDir(p) {
			a.output.Println("%s/", p)
			continue
		}
		a.output.Println("%s", p)
	}

	if !plan.Equal(direct, pruned) {
		onlyDirect, onlyPruned := plan.Diff(direct, pruned)
		return &ExitError{
			Code: exitcodes.VerificationFailed,
			Message: fmt.Sprintf("generate-then-prune disagrees with direct generation: missing %v, orphaned %v",
				onlyDirect, onlyPruned),
		}
	}
	a.debugf("%d paths, %d files", pruned.Len(), len(pruned.Files()))
	return nil
}

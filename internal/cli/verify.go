package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/company/ai-scaffold/internal/answers"
	"github.com/company/ai-scaffold/internal/exitcodes"
	"github.com/company/ai-scaffold/internal/filemanager"
	"github.com/company/ai-scaffold/internal/injector"
	"github.com/company/ai-scaffold/internal/plan"
)

func (a *App) newVerifyCmd() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "verify [root]",
		Short: "Verify a generated project matches its answers",
		Long: "CI command: checks that every expected path exists, that no disabled feature left\n" +
			"paths behind and that the feature blocks are present. Exit 0 = OK, exit 4 = failed.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runVerify(cmd.Context(), args, strict)
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "also fail on files edited since generation")
	return cmd
}

func (a *App) runVerify(ctx context.Context, args []string, strict bool) error {
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

	expected, err := plan.Pruned(a.catalog, ans)
	if err != nil {
		return &ExitError{Code: exitcodes.ConfigError, Message: err.Error()}
	}

	var hashes map[string]string
	if rec, loadErr := answers.Load(fs); loadErr == nil {
		hashes = rec.Generated
	} else {
		a.debugf("no recorded hashes: %v", loadErr)
	}

	result, err := filemanager.VerifyTree(fs, expected, hashes)
	if err != nil {
		return &ExitError{Code: exitcodes.FilesystemError, Message: err.Error()}
	}

	var missingBlocks []string
	for _, r := range injector.VerifyAll(fs, injector.DefaultTargets()) {
		if r.Exists && !r.HasBlock {
			missingBlocks = append(missingBlocks, r.Filename)
		}
	}

	failed := len(result.Missing) > 0 || len(result.Unexpected) > 0 || len(missingBlocks) > 0
	if strict && len(result.Modified) > 0 {
		failed = true
	}

	if !failed {
		a.output.Success("%d paths match the answers in %s", expected.Len(), root)
		if digest, digestErr := filemanager.TreeDigest(fs); digestErr == nil {
			a.debugf("tree digest %s", digest)
		}
		if len(result.Modified) > 0 {
			a.output.Warning("%d files edited since generation", len(result.Modified))
			for _, f := range result.Modified {
				a.output.Dim("  %s", f)
			}
		}
		return nil
	}

	a.output.Error("Verification failed")
	a.output.Info("")

	a.printPaths("Missing (expected but absent):", result.Missing)
	a.printPaths("Left behind (not expected for these answers):", result.Unexpected)
	if strict {
		a.printPaths("Edited since generation:", result.Modified)
	}
	if len(missingBlocks) > 0 {
		a.output.Println("Missing feature block:")
		for _, f := range missingBlocks {
			a.output.Println("  %s: AI-SCAFFOLD markers not found", f)
		}
		a.output.Info("")
	}

	if len(result.Unexpected) > 0 || len(missingBlocks) > 0 {
		a.output.Println("Run: ai-scaffold prune %s", root)
	}

	return &ExitError{
		Code:    exitcodes.VerificationFailed,
		Message: fmt.Sprintf("verification failed for %s", root),
	}
}

func (a *App) printPaths(title string, paths []string) {
	if len(paths) == 0 {
		return
	}
	a.output.Println("%s", title)
	for _, p := range paths {
		a.output.Println("  %s", p)
	}
	a.output.Info("")
}

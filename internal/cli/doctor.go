package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/company/ai-scaffold/internal/answers"
	"github.com/company/ai-scaffold/internal/catalog"
	"github.com/company/ai-scaffold/internal/detect"
	"github.com/company/ai-scaffold/internal/exitcodes"
	"github.com/company/ai-scaffold/internal/injector"
	"github.com/company/ai-scaffold/internal/plan"
	"github.com/company/ai-scaffold/internal/ui"
)

// maxMismatches bounds how many failing flag combinations doctor prints.
const maxMismatches = 5

func (a *App) newDoctorCmd() *cobra.Command {
	var offline bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose common issues",
		Long: "Checks that the prune rules undo exactly what the generator creates for every\n" +
			"combination of feature flags, that the current project has readable answers\n" +
			"and that the template index is reachable.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDoctor(cmd.Context(), offline)
		},
	}

	cmd.Flags().BoolVar(&offline, "offline", false, "skip the template index check")
	return cmd
}

func (a *App) runDoctor(ctx context.Context, offline bool) error {
	allOK := true

	// 1. Catalog drift
	if errs := a.catalog.Validate(); len(errs) > 0 {
		for _, err := range errs {
			a.output.Error("%v", err)
		}
		allOK = false
	} else {
		a.output.Success("%d entries and %d prune rules agree", len(a.catalog.Entries), len(a.catalog.Rules))
	}

	// 2. Every flag combination
	var mismatches []plan.Mismatch
	err := ui.WithSpinner("Checking every flag combination...", func() error {
		var checkErr error
		mismatches, checkErr = plan.Check(a.catalog, answers.Defaults(a.catalog))
		return checkErr
	})
	combinations := 1 << len(a.catalog.Flags)
	switch {
	case err != nil:
		a.output.Error("Consistency check failed: %v", err)
		allOK = false
	case len(mismatches) > 0:
		a.output.Error("%d of %d flag combinations leave a different tree after pruning", len(mismatches), combinations)
		for i, m := range mismatches {
			if i == maxMismatches {
				a.output.Dim("  ... and %d more", len(mismatches)-maxMismatches)
				break
			}
			a.output.Dim("  %s", m)
		}
		allOK = false
	default:
		a.output.Success("All %d flag combinations prune to the directly generated tree", combinations)
	}

	// 3. Current project
	root, rootErr := a.resolveRoot(nil)
	if rootErr != nil {
		a.output.Info("No generated project here, skipping project checks")
	} else if !a.doctorProject(root) {
		allOK = false
	}

	// 4. Template index reachable (use a short timeout so doctor doesn't hang)
	if !offline {
		indexCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		if _, fetchErr := a.newRegistryClient().FetchIndex(indexCtx); fetchErr != nil {
			a.output.Warning("Template index unreachable: %v", fetchErr)
		} else {
			a.output.Success("Template index reachable")
		}
	}

	if !allOK {
		return &ExitError{Code: exitcodes.VerificationFailed, Message: "doctor found problems"}
	}
	return nil
}

func (a *App) doctorProject(root string) bool {
	ok := true

	p, err := detect.Describe(root)
	if err != nil {
		a.output.Error("Cannot read %s: %v", root, err)
		return false
	}
	a.output.Success("Project at %s: %d files, %d directories", p.Root, p.Files, p.Dirs)

	fs, err := a.openRoot(root)
	if err != nil {
		a.output.Error("%v", err)
		return false
	}

	if p.HasContext {
		if _, loadErr := answers.Load(fs); loadErr != nil {
			a.output.Error("%s invalid: %v", answers.ContextFile, loadErr)
			ok = false
		} else {
			a.output.Success("%s found", answers.ContextFile)
		}
	} else {
		a.output.Warning("%s not found; prune needs $%s or $%s", answers.ContextFile, answers.EnvContext, answers.EnvContextFile)
	}

	for _, r := range injector.VerifyAll(fs, injector.DefaultTargets()) {
		switch {
		case !r.Exists:
			a.output.Warning("%s not found", r.Filename)
		case !r.HasBlock:
			a.output.Warning("%s has no feature block; run: ai-scaffold prune", r.Filename)
		}
	}

	if p.TemplateVersion == "" {
		a.output.Warning("No template version recorded")
	} else if local, verErr := detect.MajorVersion(p.TemplateVersion); verErr != nil {
		a.output.Warning("Unreadable template version %q in %s", p.TemplateVersion, catalog.TemplateVersionFile)
	} else if shipped, verErr := detect.MajorVersion(a.catalog.TemplateVersion); verErr == nil && local != shipped {
		a.output.Warning("Generated from template %s, this build ships %s", p.TemplateVersion, a.catalog.TemplateVersion)
	}

	return ok
}

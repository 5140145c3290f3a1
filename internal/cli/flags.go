package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/company/ai-scaffold/internal/answers"
	"github.com/company/ai-scaffold/internal/exitcodes"
)

func (a *App) newFlagsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "flags [name]",
		Short: "List the feature flags, or show the paths one flag governs",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return a.runFlagDetail(cmd.Context(), args[0])
			}
			return a.runFlags(cmd.Context())
		},
	}
}

func (a *App) runFlags(ctx context.Context) error {
	rows := make([][]string, 0, len(a.catalog.Flags))
	for _, f := range a.catalog.Flags {
		removes := 0
		if r, ok := a.catalog.RuleFor(f.Name); ok {
			removes = len(r.Paths)
		}
		rows = append(rows, []string{
			f.Name,
			answers.FormatChoice(f.Default),
			strconv.Itoa(len(a.catalog.GovernedBy(f.Name))),
			strconv.Itoa(removes),
			f.Help,
		})
	}
	a.output.Table([]string{"FLAG", "DEFAULT", "ENTRIES", "PRUNES", "DESCRIPTION"}, rows)
	return nil
}

func (a *App) runFlagDetail(ctx context.Context, name string) error {
	flag, ok := a.catalog.Lookup(name)
	if !ok {
		return &ExitError{Code: exitcodes.UsageError, Message: fmt.Sprintf("unknown feature flag %q", name)}
	}

	a.output.Title(flag.Name)
	a.output.Info("%s", flag.Help)
	a.output.Info("default: %s", answers.FormatChoice(flag.Default))
	a.output.Info("")

	entries := a.catalog.GovernedBy(flag.Name)
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		p := e.Path
		if e.Dir {
			p += "/"
		}
		rows = append(rows, []string{p, e.When.String()})
	}
	a.output.Table([]string{"CREATES", "WHEN"}, rows)

	rule, ok := a.catalog.RuleFor(flag.Name)
	if !ok {
		return nil
	}
	a.output.Info("")
	a.output.Println("Removed when %s is no:", flag.Name)
	for _, p := range rule.Paths {
		a.output.Println("  %s", p)
	}
	return nil
}

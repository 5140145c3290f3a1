package cli

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/company/ai-scaffold/internal/answers"
	"github.com/company/ai-scaffold/internal/catalog"
)

// choiceValue is a pflag.Value accepting yes or no.
type choiceValue struct {
	on  bool
	set bool
}

func (v *choiceValue) String() string {
	return answers.FormatChoice(v.on)
}

func (v *choiceValue) Set(s string) error {
	on, err := answers.ParseChoice(s)
	if err != nil {
		return err
	}
	v.on = on
	v.set = true
	return nil
}

func (v *choiceValue) Type() string {
	return "yes|no"
}

// featureFlags binds one command-line option per catalog flag plus the
// string answers.
type featureFlags struct {
	choices     map[string]*choiceValue
	order       []string
	repoName    string
	packageName string
	description string
}

// addFeatureFlags registers --<flag> yes|no for every catalog flag. When
// withStrings is set the string answers are registered too.
func (a *App) addFeatureFlags(fs *pflag.FlagSet, withStrings bool) *featureFlags {
	ff := &featureFlags{choices: make(map[string]*choiceValue, len(a.catalog.Flags))}
	for _, f := range a.catalog.Flags {
		v := &choiceValue{on: f.Default}
		ff.choices[f.Name] = v
		ff.order = append(ff.order, f.Name)
		fs.Var(v, f.Name, fmt.Sprintf("%s (default %s)", f.Help, answers.FormatChoice(f.Default)))
	}
	if withStrings {
		fs.StringVar(&ff.repoName, "repo-name", "", "repository name")
		fs.StringVar(&ff.packageName, "package-name", "", "python package name under src/")
		fs.StringVar(&ff.description, "description", "", "one-line project description")
	}
	return ff
}

// apply copies every option given on the command line into ans.
func (ff *featureFlags) apply(ans *answers.Answers) {
	if ans.Flags == nil {
		ans.Flags = make(map[string]bool)
	}
	for _, name := range ff.order {
		if v := ff.choices[name]; v.set {
			ans.Flags[name] = v.on
		}
	}
	if ff.repoName != "" {
		ans.RepoName = ff.repoName
	}
	if ff.packageName != "" {
		ans.PackageName = ff.packageName
	}
	if ff.description != "" {
		ans.Description = ff.description
	}
}

// changed reports whether any option was given.
func (ff *featureFlags) changed() bool {
	for _, v := range ff.choices {
		if v.set {
			return true
		}
	}
	return ff.repoName != "" || ff.packageName != "" || ff.description != ""
}

// flagSummary renders the on/off state of every catalog flag in catalog order.
func flagSummary(cat *catalog.Catalog, ans *answers.Answers) [][]string {
	rows := make([][]string, 0, len(cat.Flags))
	for _, f := range cat.Flags {
		state := "keep"
		if on, known := ans.Enabled(f.Name); known {
			state = answers.FormatChoice(on)
		}
		rows = append(rows, []string{f.Name, state})
	}
	return rows
}

package ui

import (
	"os"

	"github.com/charmbracelet/huh"
)

// IsCI returns true if running in a CI environment.
// gitlab-ci-local sets GITLAB_CI=false, which should not be treated as CI.
func IsCI() bool {
	return isTruthy(os.Getenv("CI")) ||
		isTruthy(os.Getenv("AI_SCAFFOLD_CI")) ||
		isTruthy(os.Getenv("GITHUB_ACTIONS")) ||
		isTruthy(os.Getenv("GITLAB_CI")) ||
		isTruthy(os.Getenv("BITBUCKET_BUILD_NUMBER"))
}

func isTruthy(v string) bool {
	return v != "" && v != "false" && v != "0"
}

// FeatureOption represents a selectable feature flag.
type FeatureOption struct {
	Name        string
	Description string
	Selected    bool
}

// SelectFeatures prompts the user to pick the features to keep. Options
// start with their current value.
func SelectFeatures(features []FeatureOption) ([]string, error) {
	options := make([]huh.Option[string], 0, len(features))
	for _, f := range features {
		label := f.Name
		if f.Description != "" {
			label += " - " + f.Description
		}
		options = append(options, huh.NewOption(label, f.Name).Selected(f.Selected))
	}

	var selected []string
	err := huh.NewMultiSelect[string]().
		Title("Which features should the project include?").
		Options(options...).
		Value(&selected).
		Run()
	return selected, err
}

// Question is a free-form text prompt.
type Question struct {
	Title    string
	Value    *string
	Validate func(string) error
}

// AskAll shows all questions in one form. Each value is pre-filled with
// what it already holds.
func AskAll(questions []Question) error {
	fields := make([]huh.Field, 0, len(questions))
	for _, q := range questions {
		in := huh.NewInput().Title(q.Title).Value(q.Value)
		if q.Validate != nil {
			in = in.Validate(q.Validate)
		}
		fields = append(fields, in)
	}
	return huh.NewForm(huh.NewGroup(fields...)).Run()
}

// Confirm prompts the user for a yes/no confirmation.
func Confirm(title string) (bool, error) {
	var confirmed bool
	err := huh.NewConfirm().
		Title(title).
		Affirmative("Yes").
		Negative("No").
		Value(&confirmed).
		Run()
	return confirmed, err
}

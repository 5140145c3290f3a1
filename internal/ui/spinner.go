package ui

import (
	"os"

	"github.com/charmbracelet/huh/spinner"
	"github.com/mattn/go-isatty"
)

// Interactive reports whether prompts and spinners can be shown: stdout is a
// terminal and we are not in CI.
func Interactive() bool {
	return !IsCI() && isatty.IsTerminal(os.Stdout.Fd())
}

// WithSpinner runs fn behind a spinner. Without a terminal, or in CI, it
// runs fn inline.
func WithSpinner(title string, fn func() error) error {
	if !Interactive() {
		return fn()
	}
	var actionErr error
	err := spinner.New().
		Title(title).
		Action(func() {
			actionErr = fn()
		}).
		Run()
	if err != nil {
		return err
	}
	return actionErr
}

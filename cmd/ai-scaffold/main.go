package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/company/ai-scaffold/internal/cli"
	"github.com/company/ai-scaffold/internal/exitcodes"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	app := cli.NewApp(version, commit, date)
	if err := app.Execute(); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitcodes.GeneralError)
	}
}

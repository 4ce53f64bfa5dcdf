// Command karacalc multiplies arbitrarily large non-negative integers with
// the Karatsuba algorithm, from the command line, an interactive prompt, a
// terminal dashboard or an HTTP API.
package main

import (
	"context"
	"os"

	"github.com/agbru/karacalc/internal/app"
	apperrors "github.com/agbru/karacalc/internal/errors"
)

func main() {
	if app.HasVersionFlag(os.Args[1:]) {
		app.PrintVersion(os.Stdout)
		return
	}

	application, err := app.New(os.Args, os.Stderr)
	if err != nil {
		if app.IsHelpError(err) {
			os.Exit(apperrors.ExitSuccess)
		}
		os.Exit(apperrors.ExitCode(err))
	}

	exitCode := application.Run(context.Background(), os.Stdout)
	os.Exit(exitCode)
}

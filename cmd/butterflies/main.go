// Command butterflies serves and administers the butterfly ratings store.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/butterflies/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err == nil {
		return
	}

	// ExitErrors are already reported by the command that returned them.
	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(cli.GetExitCode(err))
}

// Command synth runs synthesis scenarios and inspects synthesized types.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/synth/internal/cli"
	"github.com/roach88/synth/internal/logger"
)

func main() {
	err := cli.NewRootCommand().Execute()
	logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}

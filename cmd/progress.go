package cmd

import (
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/mattn/go-isatty"
)

// startProgress shows a spinner on stderr while a query runs. It is a no-op when stderr is not a terminal.
func startProgress(suffix string) func() {
	fd := os.Stderr.Fd()
	if noProgress || !(isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)) {
		return func() {}
	}

	// See charsets at
	// https://godoc.org/github.com/briandowns/spinner#pkg-variables
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Writer = os.Stderr
	s.Suffix = " " + suffix
	s.Start()
	return s.Stop
}

package cmd

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/anand-patil-4/AI-TRIP-PLANNER/internal/errs"
	"github.com/anand-patil-4/AI-TRIP-PLANNER/internal/present"
)

func drainStdin() {
	if present.IsInputTTY() {
		return
	}
	_, _ = io.Copy(io.Discard, os.Stdin)
}

func readStdin(r io.Reader) (string, error) {
	bts, err := io.ReadAll(r)
	if err != nil {
		return "", errs.Wrap(err, "Unable to read STDIN.")
	}
	return removeWhitespace(string(bts)), nil
}

func isStderrTTY() bool {
	return isTTY(os.Stderr)
}

// isTTY reports whether v is a file attached to a terminal.
func isTTY(v any) bool {
	f, ok := v.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"

	"github.com/anand-patil-4/AI-TRIP-PLANNER/internal/errs"
	"github.com/anand-patil-4/AI-TRIP-PLANNER/internal/present"
)

func handleError(err error) {
	maybeWriteMemProfile()

	// exhaust stdin
	if !present.IsInputTTY() {
		_, _ = io.ReadAll(os.Stdin)
	}

	format := "\n%s\n\n"

	var ferr flagParseError
	if errors.As(err, &ferr) {
		args := []any{
			fmt.Sprintf(
				"Check out %s %s",
				present.StderrStyles().InlineCode.Render("tripplanner -h"),
				present.StderrStyles().Comment.Render("for help."),
			),
			fmt.Sprintf(
				ferr.ReasonFormat(),
				present.StderrStyles().InlineCode.Render(ferr.Flag()),
			),
		}
		fmt.Fprintf(os.Stderr, format+"%s\n\n", args...)
		return
	}

	var merr errs.Error
	if errors.As(err, &merr) {
		formatArgs := []any{present.StderrStyles().ErrPadding.Render(present.StderrStyles().ErrorHeader.String(), merr.Reason)}
		if merr.Err != huh.ErrUserAborted {
			format += "%s\n\n"
			formatArgs = append(formatArgs, present.StderrStyles().ErrPadding.Render(present.StderrStyles().ErrorDetails.Render(err.Error())))
		}
		if hint := kindHint(merr); hint != "" {
			format += "%s\n\n"
			formatArgs = append(formatArgs, present.StderrStyles().ErrPadding.Render(present.StderrStyles().Comment.Render(hint)))
		}
		fmt.Fprintf(os.Stderr, format, formatArgs...)
		return
	}

	fmt.Fprintf(os.Stderr, format, present.StderrStyles().ErrPadding.Render(present.StderrStyles().ErrorDetails.Render(err.Error())))
}

// kindHint suggests where to look for a classified error.
func kindHint(err error) string {
	switch {
	case errors.Is(err, errs.ErrConfiguration):
		return "Run `tripplanner config edit` to review your settings."
	case errors.Is(err, errs.ErrAuthentication):
		return "Set the provider API key in your environment or settings."
	case errors.Is(err, errs.ErrToolNotFound):
		return "Enable the tool with --tool or configure the MCP server providing it."
	default:
		return ""
	}
}

package cmd

import (
	"fmt"
	"io"
	"slices"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/anand-patil-4/AI-TRIP-PLANNER/internal/config"
	"github.com/anand-patil-4/AI-TRIP-PLANNER/internal/errs"
	"github.com/anand-patil-4/AI-TRIP-PLANNER/internal/present"
	"github.com/anand-patil-4/AI-TRIP-PLANNER/internal/tools"
)

func newToolsCmd(rt *runtime) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the tools the model can call",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if rt.cfgErr != nil {
				return rt.cfgErr
			}
			if all {
				return listBuiltins(cmd.OutOrStdout(), &rt.cfg)
			}
			reg, err := buildRegistry(cmd.Context(), &rt.cfg, zerolog.Nop())
			if err != nil {
				return err
			}
			return listTools(cmd.OutOrStdout(), reg)
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "List every built-in tool, enabled or not")
	return cmd
}

func listTools(w io.Writer, reg *tools.Registry) error {
	if reg.Len() == 0 {
		return errs.Error{
			Reason: "No tools enabled.",
			Err:    errs.UserErrorf("Enable built-in tools with --tool or the tools setting, or configure MCP servers."),
		}
	}
	for _, spec := range reg.Specs() {
		if _, err := fmt.Fprintf(w, "%s %s\n",
			present.StdoutStyles().Flag.Render(spec.Name),
			present.StdoutStyles().Comment.Render(spec.Description),
		); err != nil {
			return fmt.Errorf("write tools: %w", err)
		}
	}
	return nil
}

func listBuiltins(w io.Writer, cfg *config.Config) error {
	for _, name := range tools.BuiltinNames() {
		tool, err := tools.Builtin(name)
		if err != nil {
			return err
		}
		line := fmt.Sprintf("%s %s",
			present.StdoutStyles().Flag.Render(name),
			present.StdoutStyles().Comment.Render(tool.Spec().Description),
		)
		if slices.Contains(cfg.Tools, name) {
			line += present.StdoutStyles().Comment.Render(" (enabled)")
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("write tools: %w", err)
		}
	}
	return nil
}

package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/anand-patil-4/AI-TRIP-PLANNER/internal/config"
	"github.com/anand-patil-4/AI-TRIP-PLANNER/internal/llm"
	"github.com/anand-patil-4/AI-TRIP-PLANNER/internal/present"
	"github.com/anand-patil-4/AI-TRIP-PLANNER/internal/tools"
)

func initRootFlags(cmd *cobra.Command, rt *runtime) {
	cfg := &rt.cfg
	desc := func(name string) string { return present.StdoutStyles().FlagDesc.Render(helpText[name]) }

	flags := cmd.Flags()
	flags.StringVarP(&rt.provider, "provider", "p", "", desc("provider"))
	flags.BoolVarP(&cfg.AskProvider, "ask-provider", "P", cfg.AskProvider, desc("ask-provider"))
	flags.StringVarP(&cfg.Model, "model", "m", cfg.Model, desc("model"))
	flags.StringVar(&cfg.SystemPrompt, "system", cfg.SystemPrompt, desc("system"))
	flags.IntVar(&cfg.MaxSteps, "max-steps", cfg.MaxSteps, desc("max-steps"))
	flags.Float64Var(&cfg.Temperature, "temp", cfg.Temperature, desc("temp"))
	flags.Int64Var(&cfg.MaxTokens, "max-tokens", cfg.MaxTokens, desc("max-tokens"))
	flags.StringVarP(&cfg.HTTPProxy, "http-proxy", "x", cfg.HTTPProxy, desc("http-proxy"))
	flags.StringArrayVar(&cfg.Tools, "tool", cfg.Tools, desc("tool"))
	flags.StringArrayVar(&cfg.MCPDisable, "mcp-disable", cfg.MCPDisable, desc("mcp-disable"))
	flags.Var(newDurationFlag(cfg.MCPTimeout, &cfg.MCPTimeout), "mcp-timeout", desc("mcp-timeout"))
	flags.StringVar(&cfg.Log.Level, "log-level", cfg.Log.Level, desc("log-level"))
	flags.BoolVarP(&cfg.Raw, "raw", "r", cfg.Raw, desc("raw"))
	flags.BoolVarP(&cfg.Quiet, "quiet", "q", cfg.Quiet, desc("quiet"))
	flags.BoolVarP(&cfg.Copy, "copy", "y", cfg.Copy, desc("copy"))
	flags.IntVar(&cfg.WordWrap, "word-wrap", cfg.WordWrap, desc("word-wrap"))
	flags.StringVar(&cfg.Theme, "theme", cfg.Theme, desc("theme"))
	flags.BoolVar(&cfg.JSON, "json", cfg.JSON, desc("json"))
	flags.BoolVarP(&cfg.ShowHelp, "help", "h", false, desc("help"))
	flags.BoolVarP(&cfg.Version, "version", "v", false, desc("version"))
	flags.SortFlags = false

	flags.BoolVar(&memprofile, "memprofile", false, "Write memory profiles to CWD")
	_ = flags.MarkHidden("memprofile")

	_ = cmd.RegisterFlagCompletionFunc("provider", completeFrom(llm.Providers()))
	_ = cmd.RegisterFlagCompletionFunc("tool", completeFrom(tools.BuiltinNames()))
	_ = cmd.RegisterFlagCompletionFunc("log-level", completeFrom([]string{"debug", "info", "warn", "error"}))
	_ = cmd.RegisterFlagCompletionFunc("theme", completeFrom([]string{"charm", "catppuccin", "dracula", "base16"}))
	_ = cmd.RegisterFlagCompletionFunc("mcp-disable", func(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return mcpServerNames(cfg, toComplete), cobra.ShellCompDirectiveNoFileComp
	})

	cmd.MarkFlagsMutuallyExclusive("provider", "ask-provider")
	cmd.MarkFlagsMutuallyExclusive("json", "copy")
}

func completeFrom(values []string) cobra.CompletionFunc {
	return func(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		var out []string
		for _, v := range values {
			if strings.HasPrefix(v, toComplete) {
				out = append(out, v)
			}
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	}
}

func mcpServerNames(cfg *config.Config, prefix string) []string {
	var names []string
	for name := range cfg.MCPServers {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	return names
}

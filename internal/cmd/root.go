package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	glamour "github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/x/exp/ordered"
	"github.com/muesli/termenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/anand-patil-4/AI-TRIP-PLANNER/internal/agent"
	"github.com/anand-patil-4/AI-TRIP-PLANNER/internal/config"
	"github.com/anand-patil-4/AI-TRIP-PLANNER/internal/errs"
	"github.com/anand-patil-4/AI-TRIP-PLANNER/internal/graph"
	"github.com/anand-patil-4/AI-TRIP-PLANNER/internal/llm"
	"github.com/anand-patil-4/AI-TRIP-PLANNER/internal/logging"
	"github.com/anand-patil-4/AI-TRIP-PLANNER/internal/mcp"
	"github.com/anand-patil-4/AI-TRIP-PLANNER/internal/present"
	"github.com/anand-patil-4/AI-TRIP-PLANNER/internal/proto"
	"github.com/anand-patil-4/AI-TRIP-PLANNER/internal/tools"
	"github.com/anand-patil-4/AI-TRIP-PLANNER/internal/tui"
)

type runtime struct {
	build    BuildInfo
	cfg      config.Config
	cfgErr   error
	provider string

	stdin      io.Reader
	stdout     io.Writer
	logw       io.Writer
	newService func(*config.Config, ...agent.Option) *agent.Service
}

func newRuntime(build BuildInfo, cfg config.Config, cfgErr error) *runtime {
	return &runtime{
		build:      normalizeBuildInfo(build),
		cfg:        cfg,
		cfgErr:     cfgErr,
		stdin:      os.Stdin,
		stdout:     os.Stdout,
		logw:       os.Stderr,
		newService: agent.New,
	}
}

// NewRootCmd constructs the Cobra root command.
func NewRootCmd(build BuildInfo, cfg config.Config, cfgErr error) *cobra.Command {
	// XXX: unset error styles in Glamour dark and light styles.
	glamour.DarkStyleConfig.CodeBlock.Chroma.Error.BackgroundColor = new(string)
	glamour.LightStyleConfig.CodeBlock.Chroma.Error.BackgroundColor = new(string)

	return newRootCmd(newRuntime(build, cfg, cfgErr))
}

func newRootCmd(rt *runtime) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tripplanner",
		Short:         "Plan trips with an AI travel agent from the command line.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		Example:       randomExample(),
		RunE: func(cmd *cobra.Command, args []string) error {
			if rt.cfgErr != nil {
				return rt.cfgErr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			cmd.SetContext(ctx)
			return rt.runPlan(cmd, args)
		},
	}

	rootCmd.SetUsageFunc(usageFunc)
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return newFlagParseError(err)
	})

	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	rootCmd.Version = rt.build.Version
	rootCmd.SetVersionTemplate(versionTemplate(rt.build))

	initRootFlags(rootCmd, rt)

	rootCmd.AddCommand(newConfigCmd(rt))
	rootCmd.AddCommand(newToolsCmd(rt))
	rootCmd.AddCommand(newMCPCmd(rt))
	rootCmd.AddCommand(newManCmd(rootCmd))
	rootCmd.AddCommand(newUpgradeCmd(rt))

	rootCmd.InitDefaultCompletionCmd()

	return rootCmd
}

func (rt *runtime) runPlan(cmd *cobra.Command, args []string) error {
	if rt.cfg.ShowHelp {
		drainStdin()
		if err := cmd.Usage(); err != nil {
			return fmt.Errorf("usage: %w", err)
		}
		return nil
	}
	if os.Getenv("VIMRUNTIME") != "" {
		rt.cfg.Quiet = true
	}
	rt.cfg.Provider = ordered.First(strings.ToLower(rt.provider), rt.cfg.Provider)
	if err := rt.cfg.Validate(); err != nil {
		return err //nolint:wrapcheck
	}

	logger, closer, err := logging.New(rt.cfg.Log, rt.logw)
	if err != nil {
		return errs.Wrap(err, "Could not set up logging.")
	}
	defer closer.Close() //nolint:errcheck

	var state proto.State
	if rt.cfg.JSON {
		if state, err = readState(rt.stdin); err != nil {
			return err
		}
	} else {
		prompt, err := rt.readPrompt(args)
		if err != nil {
			return err
		}
		if (prompt == "" || rt.cfg.AskProvider) && isTTY(rt.stdin) {
			if prompt, err = askInfo(&rt.cfg, prompt); err != nil {
				if errors.Is(err, huh.ErrUserAborted) {
					return errs.Error{Err: huh.ErrUserAborted, Reason: "User canceled."}
				}
				return errs.Error{Err: err, Reason: "Prompt failed."}
			}
		}
		if strings.TrimSpace(prompt) == "" {
			return errs.Error{
				Reason: "You haven't provided any prompt input.",
				Err: errs.UserErrorf(
					"You can give your prompt as arguments and/or pipe it from STDIN.\nExample: %s",
					present.StdoutStyles().InlineCode.Render("tripplanner [prompt]"),
				),
			}
		}
		state = proto.NewState(prompt)
	}

	registry, err := buildRegistry(cmd.Context(), &rt.cfg, logger)
	if err != nil {
		return err
	}
	svc := rt.newService(&rt.cfg, agent.WithLogger(logger), agent.WithRegistry(registry))

	res, err := rt.run(cmd.Context(), svc, state)
	if err != nil {
		return err
	}
	return rt.printResult(res)
}

// run executes the agent, with a spinner on stderr when it is a terminal.
func (rt *runtime) run(ctx context.Context, svc *agent.Service, state proto.State) (graph.Result, error) {
	if rt.cfg.Quiet || !isStderrTTY() {
		return svc.Run(ctx, state)
	}

	progress := tui.NewProgress(ctx, present.StderrRenderer(), func(ctx context.Context, observe graph.Observer) (graph.Result, error) {
		return svc.Run(ctx, state, observe)
	})
	opts := []tea.ProgramOption{tea.WithOutput(os.Stderr)}
	if !isTTY(rt.stdin) {
		opts = append(opts, tea.WithInput(nil))
	}
	m, err := tea.NewProgram(progress, opts...).Run()
	if err != nil {
		return graph.Result{}, errs.Error{Err: err, Reason: "Couldn't start Bubble Tea program."}
	}
	progress = m.(*tui.Progress)
	return progress.Result, progress.Err
}

func (rt *runtime) printResult(res graph.Result) error {
	if rt.cfg.JSON {
		enc := json.NewEncoder(rt.stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res.State); err != nil {
			return errs.Wrap(err, "Could not write the conversation.")
		}
		return nil
	}

	last, _ := res.State.Last()
	answer := last.Content
	out := answer
	if isTTY(rt.stdout) && !rt.cfg.Raw {
		wrap := ordered.First(rt.cfg.WordWrap, config.Default().WordWrap)
		if formatted, err := present.RenderMarkdownForTTY(answer, wrap); err == nil {
			out = formatted
		}
	}
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	if _, err := fmt.Fprint(rt.stdout, out); err != nil {
		return errs.Wrap(err, "Could not write the answer.")
	}

	if rt.cfg.Copy {
		_ = clipboard.WriteAll(answer)
		termenv.Copy(answer)
		if !rt.cfg.Quiet {
			present.PrintConfirmation("COPIED", "Answer copied to the clipboard.")
		}
	}
	return nil
}

// readPrompt joins the arguments and piped stdin.
func (rt *runtime) readPrompt(args []string) (string, error) {
	prompt := removeWhitespace(strings.Join(args, " "))
	if isTTY(rt.stdin) {
		return prompt, nil
	}
	stdin, err := readStdin(rt.stdin)
	if err != nil {
		return "", err
	}
	switch {
	case stdin == "":
		return prompt, nil
	case prompt == "":
		return stdin, nil
	default:
		return prompt + "\n\n" + stdin, nil
	}
}

func readState(r io.Reader) (proto.State, error) {
	var state proto.State
	if err := json.NewDecoder(r).Decode(&state); err != nil {
		return state, errs.Wrap(err, "Could not read the conversation from STDIN.")
	}
	return state, nil
}

// buildRegistry gathers the configured built-in tools and the tools of the
// enabled MCP servers.
func buildRegistry(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*tools.Registry, error) {
	reg, err := agent.BuildRegistry(cfg)
	if err != nil {
		return nil, err
	}
	if err := mcp.New(cfg, logger).Register(ctx, reg); err != nil {
		return nil, errs.Wrap(err, "Could not load MCP tools.")
	}
	return reg, nil
}

func removeWhitespace(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	return s
}

// askInfo is the interactive prompt that picks the provider and, when
// missing, the prompt.
func askInfo(cfg *config.Config, prompt string) (string, error) {
	providers := make([]huh.Option[string], 0, len(llm.Providers()))
	for _, name := range llm.Providers() {
		label := name
		if model := cfg.ModelName(name); model != "" {
			label = fmt.Sprintf("%s (%s)", name, model)
		}
		providers = append(providers, huh.NewOption(label, name))
	}

	if err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Choose the provider:").
				Options(providers...).
				Value(&cfg.Provider),
		).WithHideFunc(func() bool {
			return !cfg.AskProvider
		}),
		huh.NewGroup(
			huh.NewText().
				TitleFunc(func() string {
					return fmt.Sprintf("Where do you want to go? (%s)", cfg.Provider)
				}, &cfg.Provider).
				Value(&prompt),
		).WithHideFunc(func() bool {
			return prompt != ""
		}),
	).
		WithTheme(themeFrom(cfg.Theme)).
		Run(); err != nil {
		return "", fmt.Errorf("prompt form: %w", err)
	}
	return prompt, nil
}

func themeFrom(theme string) *huh.Theme {
	switch theme {
	case "dracula":
		return huh.ThemeDracula()
	case "catppuccin":
		return huh.ThemeCatppuccin()
	case "base16":
		return huh.ThemeBase16()
	default:
		return huh.ThemeCharm()
	}
}
